package source

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autorisk/domain/core"
	"autorisk/domain/table"
)

const policyCSV = "modelo,ano,premio1\nCIVIC,2020,2500.00\nGOL,2018,1500.00\n"

func TestRouterLoadsLocalFileRelativeToDataDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "policy.csv"), []byte(policyCSV), 0o644))

	r := NewRouter(Options{DataDir: dir})
	defer r.Close()

	tbl, err := r.Load(context.Background(), table.Declaration{Name: "policy_h1", Locator: "policy.csv", Profile: table.ProfileDelimited})
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, "policy.csv", tbl.Locator)

	tbl, err = r.Load(context.Background(), table.Declaration{Name: "policy_h1", Locator: "file://" + filepath.Join(dir, "policy.csv")})
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())
}

func TestRouterMissingFileIsSourceUnavailable(t *testing.T) {
	r := NewRouter(Options{DataDir: t.TempDir()})

	_, err := r.Load(context.Background(), table.Declaration{Name: "policy_h2", Locator: "nope.csv"})
	require.Error(t, err)
	assert.True(t, core.IsSourceUnavailable(err))
	assert.Contains(t, err.Error(), "policy_h2")
}

func TestRouterHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/policy.csv" {
			http.NotFound(w, req)
			return
		}
		_, _ = io.WriteString(w, policyCSV)
	}))
	defer srv.Close()

	r := NewRouter(Options{HTTPClient: srv.Client()})

	tbl, err := r.Load(context.Background(), table.Declaration{Name: "p", Locator: srv.URL + "/policy.csv", Profile: table.ProfileDelimited})
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())

	_, err = r.Load(context.Background(), table.Declaration{Name: "p", Locator: srv.URL + "/missing.csv"})
	require.Error(t, err)
	assert.True(t, core.IsSourceUnavailable(err))
	assert.Contains(t, err.Error(), "404")
}

func TestRouterHTTPJSONRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"result":{"records":[{"uf":"SP","roubo":"20500"},{"uf":"RJ","roubo":"850"}]}}`)
	}))
	defer srv.Close()

	r := NewRouter(Options{HTTPClient: srv.Client()})

	tbl, err := r.Load(context.Background(), table.Declaration{
		Name:     "crime_api",
		Locator:  srv.URL + "/datastore",
		Profile:  table.ProfileJSON,
		DataPath: "result.records",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, []string{"uf", "roubo"}, tbl.Columns)
	assert.Equal(t, "850", tbl.Rows[1]["roubo"])
}

type stubSource struct {
	body    string
	located []string
}

func (s *stubSource) Open(_ context.Context, locator string) (io.ReadCloser, error) {
	s.located = append(s.located, locator)
	return io.NopCloser(strings.NewReader(s.body)), nil
}

func TestRouterDispatchesOnScheme(t *testing.T) {
	stub := &stubSource{body: policyCSV}
	r := NewRouter(Options{}).WithByteSource("s3", stub)

	tbl, err := r.Load(context.Background(), table.Declaration{Name: "p", Locator: "S3://bucket/casco.csv"})
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, []string{"S3://bucket/casco.csv"}, stub.located)
}

func TestRouterRejectsUnknownProfile(t *testing.T) {
	r := NewRouter(Options{}).WithByteSource("file", &stubSource{body: policyCSV})

	_, err := r.Load(context.Background(), table.Declaration{Name: "p", Locator: "x.parquet", Profile: "parquet"})
	require.Error(t, err)
	assert.True(t, core.IsSourceUnavailable(err))
}

func TestRouterLoadsSQLiteQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policies.db")
	db, err := sqlx.Connect("sqlite", path)
	require.NoError(t, err)
	db.MustExec(`CREATE TABLE casco (modelo TEXT, ano INTEGER, premio1 REAL)`)
	db.MustExec(`INSERT INTO casco VALUES ('CIVIC', 2020, 2500.5), ('GOL', NULL, 1500)`)
	require.NoError(t, db.Close())

	r := NewRouter(Options{})
	defer r.Close()

	tbl, err := r.Load(context.Background(), table.Declaration{
		Name:    "policy_h1",
		Locator: "sqlite://" + path,
		Profile: table.ProfileSQL,
		Query:   "SELECT modelo, ano, premio1 FROM casco ORDER BY modelo",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"modelo", "ano", "premio1"}, tbl.Columns)
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, "2020", tbl.Rows[0]["ano"])
	assert.Equal(t, "2500.5", tbl.Rows[0]["premio1"])
	_, ok := tbl.Rows[1].Value("ano")
	assert.False(t, ok)
}

func TestSplitBucketKey(t *testing.T) {
	bucket, key, err := splitBucketKey("gs://insurance-data/2019/casco_sem1.csv")
	require.NoError(t, err)
	assert.Equal(t, "insurance-data", bucket)
	assert.Equal(t, "2019/casco_sem1.csv", key)

	_, _, err = splitBucketKey("s3://bucket-only")
	assert.Error(t, err)
}

func TestDriverFor(t *testing.T) {
	driver, dsn, err := driverFor("sqlite:///tmp/x.db")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", driver)
	assert.Equal(t, "/tmp/x.db", dsn)

	driver, _, err = driverFor("postgres://u:p@localhost/db?sslmode=disable")
	require.NoError(t, err)
	assert.Equal(t, "postgres", driver)

	driver, dsn, err = driverFor("mysql://u:p@tcp(localhost:3306)/seguros")
	require.NoError(t, err)
	assert.Equal(t, "mysql", driver)
	assert.Equal(t, "u:p@tcp(localhost:3306)/seguros", dsn)

	_, _, err = driverFor("oracle://x")
	assert.Error(t, err)
}
