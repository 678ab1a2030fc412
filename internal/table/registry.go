// Package table registers, loads and combines the datasets the premium and
// risk analyses read from.
package table

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/gomarkdown/markdown"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"autorisk/domain/core"
	"autorisk/domain/table"
	"autorisk/internal"
	"autorisk/ports"
)

// loadAllLimit bounds concurrent fetches in LoadAll
const loadAllLimit = 4

// Registry maps logical table names to declarations and caches each table
// after its first successful load. Failed loads are not cached.
type Registry struct {
	loader ports.TableLoader
	logger *internal.Logger

	mu     sync.RWMutex
	decls  map[string]table.Declaration
	order  []string
	tables map[string]*table.Table

	group singleflight.Group
}

// NewRegistry creates an empty registry backed by loader
func NewRegistry(loader ports.TableLoader, logger *internal.Logger) *Registry {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &Registry{
		loader: loader,
		logger: logger,
		decls:  make(map[string]table.Declaration),
		tables: make(map[string]*table.Table),
	}
}

// Register adds or replaces a declaration. A table that is already loaded
// cannot be redeclared.
func (r *Registry) Register(decl table.Declaration) error {
	decl.Name = strings.TrimSpace(decl.Name)
	if decl.Name == "" {
		return fmt.Errorf("table declaration has no name")
	}
	if decl.Locator == "" {
		return fmt.Errorf("table %q has no locator", decl.Name)
	}
	if decl.Profile == "" {
		decl.Profile = table.ProfileDelimited
	}
	if !decl.Profile.Valid() {
		return fmt.Errorf("table %q has unknown profile %q", decl.Name, decl.Profile)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, loaded := r.tables[decl.Name]; loaded {
		return fmt.Errorf("table %q is already loaded", decl.Name)
	}
	if _, exists := r.decls[decl.Name]; !exists {
		r.order = append(r.order, decl.Name)
	}
	r.decls[decl.Name] = decl
	return nil
}

// Names returns registered names in registration order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Declaration returns the declaration registered under name
func (r *Registry) Declaration(name string) (table.Declaration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	decl, ok := r.decls[name]
	return decl, ok
}

// Loaded reports whether name has been materialized
func (r *Registry) Loaded(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tables[name]
	return ok
}

// Get returns the named table, loading it on first use. Concurrent first
// callers share a single load and receive the same *Table.
func (r *Registry) Get(ctx context.Context, name string) (*table.Table, error) {
	r.mu.RLock()
	tbl, loaded := r.tables[name]
	decl, registered := r.decls[name]
	r.mu.RUnlock()

	if loaded {
		r.logger.Trace("table %s served from cache", name)
		return tbl, nil
	}
	if !registered {
		return nil, core.NewNotRegisteredError(name)
	}

	v, err, _ := r.group.Do(name, func() (interface{}, error) {
		r.mu.RLock()
		cached, ok := r.tables[name]
		r.mu.RUnlock()
		if ok {
			return cached, nil
		}

		r.logger.Info("loading table %s from %s (%s)", name, core.RedactLocator(decl.Locator), decl.Profile)
		loadedTbl, err := r.loader.Load(ctx, decl)
		if err != nil {
			if !core.IsSourceUnavailable(err) {
				err = core.NewSourceUnavailableError(name, decl.Locator, err)
			}
			r.logger.Warn("failed to load table %s: %v", name, err)
			return nil, err
		}
		loadedTbl.Name = name

		r.mu.Lock()
		defer r.mu.Unlock()
		if existing, ok := r.tables[name]; ok {
			return existing, nil
		}
		r.tables[name] = loadedTbl
		return loadedTbl, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*table.Table), nil
}

// LoadAll materializes every registered table, returning the first failure
func (r *Registry) LoadAll(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(loadAllLimit)

	for _, name := range r.Names() {
		g.Go(func() error {
			_, err := r.Get(gctx, name)
			return err
		})
	}
	return g.Wait()
}

// Info describes one table
type Info struct {
	Name        string      `json:"nome"`
	Description string      `json:"descricao"`
	Locator     string      `json:"origem"`
	Profile     string      `json:"perfil"`
	Rows        int         `json:"registros"`
	Columns     []string    `json:"colunas"`
	KeyColumns  []string    `json:"colunas_chave"`
	Sample      []table.Row `json:"amostra"`
}

// Info loads name and describes it with a three-row sample
func (r *Registry) Info(ctx context.Context, name string) (*Info, error) {
	tbl, err := r.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	decl, _ := r.Declaration(name)

	return &Info{
		Name:        name,
		Description: decl.Description,
		Locator:     core.RedactLocator(decl.Locator),
		Profile:     string(decl.Profile),
		Rows:        tbl.Len(),
		Columns:     tbl.Columns,
		KeyColumns:  decl.KeyColumns,
		Sample:      tbl.Head(3).Rows,
	}, nil
}

// Summary renders every registered table as markdown. Tables that fail to
// load are listed as unavailable rather than failing the summary.
func (r *Registry) Summary(ctx context.Context) string {
	var b strings.Builder
	b.WriteString("# Available tables\n\n")

	for _, name := range r.Names() {
		decl, _ := r.Declaration(name)
		fmt.Fprintf(&b, "## %s\n\n", name)
		if decl.Description != "" {
			fmt.Fprintf(&b, "- Description: %s\n", decl.Description)
		}

		tbl, err := r.Get(ctx, name)
		if err != nil {
			fmt.Fprintf(&b, "- Unavailable: %v\n\n", err)
			continue
		}
		fmt.Fprintf(&b, "- Records: %s\n", thousands(tbl.Len()))
		if len(decl.KeyColumns) > 0 {
			fmt.Fprintf(&b, "- Key columns: %s\n", strings.Join(decl.KeyColumns, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// SummaryHTML renders Summary as HTML
func (r *Registry) SummaryHTML(ctx context.Context) string {
	return string(markdown.ToHTML([]byte(r.Summary(ctx)), nil, nil))
}

// UniqueValues returns the sorted distinct non-empty values of column
func (r *Registry) UniqueValues(ctx context.Context, name, column string) ([]string, error) {
	tbl, err := r.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if !tbl.HasColumn(column) {
		return nil, core.NewInvalidQueryError("column", fmt.Sprintf("%q not in table %q", column, name))
	}
	return tbl.Unique(column), nil
}

// Query applies per-table equality filters. Filters on columns a table does
// not have are ignored.
func (r *Registry) Query(ctx context.Context, filters map[string]map[string]string) (map[string]*table.Table, error) {
	names := make([]string, 0, len(filters))
	for name := range filters {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make(map[string]*table.Table, len(filters))
	for _, name := range names {
		tbl, err := r.Get(ctx, name)
		if err != nil {
			return nil, err
		}
		results[name] = applyFilters(tbl, filters[name])
	}
	return results, nil
}

func applyFilters(tbl *table.Table, filter map[string]string) *table.Table {
	out := tbl
	for column, value := range filter {
		if !tbl.HasColumn(column) {
			continue
		}
		out = out.Where(column, value)
	}
	return out
}

var countPrinter = message.NewPrinter(language.English)

func thousands(n int) string {
	return countPrinter.Sprintf("%d", n)
}
