package source

import (
	"context"
	"fmt"
	"strings"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"autorisk/domain/core"
	"autorisk/domain/table"
)

// SQLSource runs declared queries against postgres://, mysql:// and sqlite:// locators.
// Connections are opened once per locator and reused.
type SQLSource struct {
	mu  sync.Mutex
	dbs map[string]*sqlx.DB
}

// NewSQLSource creates a SQL row source
func NewSQLSource() *SQLSource {
	return &SQLSource{dbs: make(map[string]*sqlx.DB)}
}

// driverFor maps a locator to a driver name and DSN
func driverFor(locator string) (driver, dsn string, err error) {
	switch {
	case strings.HasPrefix(locator, "postgres://"), strings.HasPrefix(locator, "postgresql://"):
		return "postgres", locator, nil
	case strings.HasPrefix(locator, "mysql://"):
		// go-sql-driver DSN: user:pass@tcp(host:3306)/db
		return "mysql", strings.TrimPrefix(locator, "mysql://"), nil
	case strings.HasPrefix(locator, "sqlite://"):
		return "sqlite", strings.TrimPrefix(locator, "sqlite://"), nil
	default:
		return "", "", fmt.Errorf("locator %q is not a postgres://, mysql:// or sqlite:// database", core.RedactLocator(locator))
	}
}

func (s *SQLSource) db(ctx context.Context, locator string) (*sqlx.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if db, ok := s.dbs[locator]; ok {
		return db, nil
	}
	driver, dsn, err := driverFor(locator)
	if err != nil {
		return nil, err
	}
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}
	s.dbs[locator] = db
	return db, nil
}

// QueryTable runs query and renders every cell as text
func (s *SQLSource) QueryTable(ctx context.Context, locator, query string) ([]string, []table.Row, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil, fmt.Errorf("sql table at %s has no query", core.RedactLocator(locator))
	}
	db, err := s.db(ctx, locator)
	if err != nil {
		return nil, nil, err
	}

	rows, err := db.QueryxContext(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read columns: %w", err)
	}

	var out []table.Row
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row := make(table.Row, len(columns))
		for i, v := range values {
			if text := cellText(v); text != "" {
				row[columns[i]] = text
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("row iteration failed: %w", err)
	}
	return columns, out, nil
}

func cellText(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case []byte:
		return strings.TrimSpace(string(t))
	case string:
		return strings.TrimSpace(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// Close closes every open connection
func (s *SQLSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for locator, db := range s.dbs {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(s.dbs, locator)
	}
	return firstErr
}
