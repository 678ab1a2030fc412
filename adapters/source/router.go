// Package source fetches declared tables from files, URLs, object stores and
// SQL databases, handing raw bytes to the parser for the table's profile.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"autorisk/adapters/excel"
	"autorisk/adapters/jsonrecords"
	"autorisk/adapters/tabular"
	"autorisk/domain/core"
	"autorisk/domain/table"
	"autorisk/internal"
	"autorisk/ports"
)

// Options configures a Router
type Options struct {
	DataDir    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *internal.Logger
}

// Router implements ports.TableLoader by dispatching on the locator scheme
type Router struct {
	timeout time.Duration
	logger  *internal.Logger

	schemes map[string]ports.ByteSource
	file    ports.ByteSource
	sql     ports.RowQuerier

	text    ports.Parser
	excel   ports.Parser
	records ports.Parser

	closers []io.Closer
}

// NewRouter creates a router with file, http(s), s3, gs, postgres, mysql and sqlite support
func NewRouter(opts Options) *Router {
	logger := opts.Logger
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	httpSrc := NewHTTPSource(opts.HTTPClient)
	gcs := NewGCSSource()
	sqlSrc := NewSQLSource()

	return &Router{
		timeout: opts.Timeout,
		logger:  logger,
		schemes: map[string]ports.ByteSource{
			"http":  httpSrc,
			"https": httpSrc,
			"s3":    NewS3Source(),
			"gs":    gcs,
		},
		file:    NewFileSource(opts.DataDir),
		sql:     sqlSrc,
		text:    tabular.NewParser(),
		excel:   excel.NewReader(),
		records: jsonrecords.NewParser(),
		closers: []io.Closer{gcs, sqlSrc},
	}
}

// WithByteSource overrides the byte source for a scheme; "file" replaces the local source
func (r *Router) WithByteSource(scheme string, src ports.ByteSource) *Router {
	if scheme == "file" {
		r.file = src
		return r
	}
	r.schemes[scheme] = src
	return r
}

// WithRowQuerier overrides the SQL backend
func (r *Router) WithRowQuerier(q ports.RowQuerier) *Router {
	r.sql = q
	return r
}

// Close releases database connections and object-store clients
func (r *Router) Close() error {
	var firstErr error
	for _, c := range r.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Load fetches and parses decl. Any failure is reported as a source-unavailable error.
func (r *Router) Load(ctx context.Context, decl table.Declaration) (*table.Table, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	tbl, err := r.load(ctx, decl)
	if err != nil {
		return nil, core.NewSourceUnavailableError(decl.Name, decl.Locator, err)
	}
	tbl.Locator = core.RedactLocator(decl.Locator)
	r.logger.Debug("loaded table %s from %s in %s (%d rows, %d columns)",
		decl.Name, tbl.Locator, time.Since(start).Round(time.Millisecond), tbl.Len(), len(tbl.Columns))
	return tbl, nil
}

func (r *Router) load(ctx context.Context, decl table.Declaration) (*table.Table, error) {
	if decl.Profile == table.ProfileSQL {
		columns, rows, err := r.sql.QueryTable(ctx, decl.Locator, decl.Query)
		if err != nil {
			return nil, err
		}
		return &table.Table{
			Name:       decl.Name,
			Locator:    decl.Locator,
			Profile:    decl.Profile,
			KeyColumns: decl.KeyColumns,
			Columns:    columns,
			Rows:       rows,
		}, nil
	}

	parser, err := r.parserFor(decl.Profile)
	if err != nil {
		return nil, err
	}

	rc, err := r.byteSourceFor(decl.Locator).Open(ctx, decl.Locator)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return parser.Parse(rc, decl)
}

func (r *Router) parserFor(p table.Profile) (ports.Parser, error) {
	switch {
	case p == table.ProfileXLSX:
		return r.excel, nil
	case p == table.ProfileJSON:
		return r.records, nil
	case p == "" || tabular.Supports(p):
		return r.text, nil
	default:
		return nil, fmt.Errorf("unsupported profile %q", p)
	}
}

func (r *Router) byteSourceFor(locator string) ports.ByteSource {
	if scheme, _, ok := strings.Cut(locator, "://"); ok {
		if src, found := r.schemes[strings.ToLower(scheme)]; found {
			return src
		}
	}
	return r.file
}

// readAllLimited guards in-memory buffering of remote objects
func readAllLimited(rc io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("object exceeds %d bytes", limit)
	}
	return data, nil
}
