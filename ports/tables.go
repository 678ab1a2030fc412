package ports

import (
	"context"
	"io"

	"autorisk/domain/table"
)

// TableLoader materializes a declared table from its backing source
type TableLoader interface {
	Load(ctx context.Context, decl table.Declaration) (*table.Table, error)
}

// ByteSource opens the raw bytes behind a locator (file path, URL, object key)
type ByteSource interface {
	Open(ctx context.Context, locator string) (io.ReadCloser, error)
}

// RowQuerier runs a query against a database locator and returns a table
type RowQuerier interface {
	QueryTable(ctx context.Context, locator, query string) (columns []string, rows []table.Row, err error)
}

// Parser turns raw bytes into a table according to a declaration's profile
type Parser interface {
	Parse(r io.Reader, decl table.Declaration) (*table.Table, error)
}

// TableStore provides read access to registered tables
type TableStore interface {
	Get(ctx context.Context, name string) (*table.Table, error)
}

// PolicyView provides the combined half-year policy table
type PolicyView interface {
	CombinedPolicyData(ctx context.Context) (*table.Table, error)
}
