package table

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"autorisk/domain/core"
	"autorisk/domain/table"
	"autorisk/internal"
)

// Logical names of the half-year policy tables and the combined view
const (
	PolicyH1   = "policy_h1"
	PolicyH2   = "policy_h2"
	PolicyView = "policy"
)

// Columns stamped onto combined rows
const (
	PeriodColumn = "periodo"
	HalfColumn   = "semestre"
)

// Period labels of the two policy halves
const (
	FirstHalfLabel  = "1º Semestre 2019"
	SecondHalfLabel = "2º Semestre 2019"
)

// Combiner concatenates registered tables and memoizes the combined policy view
type Combiner struct {
	registry *Registry
	logger   *internal.Logger

	mu       sync.RWMutex
	view     *table.Table
	degraded string
	group    singleflight.Group
}

// NewCombiner creates a combiner over registry
func NewCombiner(registry *Registry, logger *internal.Logger) *Combiner {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &Combiner{registry: registry, logger: logger}
}

// Registry exposes the underlying registry
func (c *Combiner) Registry() *Registry {
	return c.registry
}

// periodTag maps a logical table name to its period label and half number
func periodTag(name string, position int) (string, string) {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "sem1"), strings.Contains(lower, "h1"):
		return FirstHalfLabel, "1"
	case strings.Contains(lower, "sem2"), strings.Contains(lower, "h2"):
		return SecondHalfLabel, "2"
	default:
		return name, strconv.Itoa(position + 1)
	}
}

// Combine concatenates the named tables in order. With tagPeriods every row
// gets periodo/semestre columns derived from its table's name.
func (c *Combiner) Combine(ctx context.Context, names []string, tagPeriods bool) (*table.Table, error) {
	tables := make([]*table.Table, 0, len(names))
	for _, name := range names {
		tbl, err := c.registry.Get(ctx, name)
		if err != nil {
			return nil, err
		}
		tables = append(tables, tbl)
	}
	return concat(strings.Join(names, "+"), names, tables, tagPeriods), nil
}

func concat(name string, names []string, tables []*table.Table, tagPeriods bool) *table.Table {
	var columns []string
	seen := make(map[string]struct{})
	addColumn := func(col string) {
		if _, ok := seen[col]; !ok {
			seen[col] = struct{}{}
			columns = append(columns, col)
		}
	}

	total := 0
	for _, tbl := range tables {
		for _, col := range tbl.Columns {
			addColumn(col)
		}
		total += tbl.Len()
	}
	if tagPeriods {
		addColumn(PeriodColumn)
		addColumn(HalfColumn)
	}

	rows := make([]table.Row, 0, total)
	for i, tbl := range tables {
		if !tagPeriods {
			rows = append(rows, tbl.Rows...)
			continue
		}
		label, half := periodTag(names[i], i)
		for _, r := range tbl.Rows {
			row := r.Clone(2)
			row[PeriodColumn] = label
			row[HalfColumn] = half
			rows = append(rows, row)
		}
	}

	return &table.Table{Name: name, Columns: columns, Rows: rows}
}

// CombinedPolicyData returns both policy halves as one view. When the second
// half is unavailable the first half alone is served and the reason is kept
// in Degraded. When the first half is unavailable too, an empty view is
// returned with the error and nothing is memoized.
func (c *Combiner) CombinedPolicyData(ctx context.Context) (*table.Table, error) {
	c.mu.RLock()
	view := c.view
	c.mu.RUnlock()
	if view != nil {
		return view, nil
	}

	v, err, _ := c.group.Do(PolicyView, func() (interface{}, error) {
		h1, err1 := c.registry.Get(ctx, PolicyH1)
		h2, err2 := c.registry.Get(ctx, PolicyH2)

		var (
			built  *table.Table
			reason string
		)
		switch {
		case err1 == nil && err2 == nil:
			built = concat(PolicyView, []string{PolicyH1, PolicyH2}, []*table.Table{h1, h2}, true)
			c.logger.Info("combined policy view: %d rows (%d + %d)", built.Len(), h1.Len(), h2.Len())
		case err1 == nil:
			built = concat(PolicyView, []string{PolicyH1}, []*table.Table{h1}, true)
			reason = fmt.Sprintf("second half unavailable, serving first half only: %v", err2)
			c.logger.Warn("combined policy view degraded: %s", reason)
		default:
			c.logger.Error("combined policy view unavailable: %v", err1)
			return nil, err1
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.view == nil {
			c.view = built
			c.degraded = reason
		}
		return c.view, nil
	})
	if err != nil {
		return &table.Table{Name: PolicyView}, err
	}
	return v.(*table.Table), nil
}

// Degraded returns why the combined view is partial, or "" when it is complete
func (c *Combiner) Degraded() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.degraded
}

// UniqueValues is Registry.UniqueValues with the policy pseudo-name resolved
// to the combined view
func (c *Combiner) UniqueValues(ctx context.Context, name, column string) ([]string, error) {
	if name != PolicyView {
		return c.registry.UniqueValues(ctx, name, column)
	}
	view, err := c.CombinedPolicyData(ctx)
	if err != nil {
		return nil, err
	}
	if !view.HasColumn(column) {
		return nil, core.NewInvalidQueryError("column", fmt.Sprintf("%q not in the combined policy view", column))
	}
	return view.Unique(column), nil
}

// PeriodComparison is one group of a two-period metric comparison. Missing
// means are nil when a group exists in only one period.
type PeriodComparison struct {
	Group               map[string]string `json:"grupo"`
	FirstMean           *float64          `json:"media_periodo1"`
	SecondMean          *float64          `json:"media_periodo2"`
	AbsoluteVariation   *float64          `json:"variacao_absoluta"`
	PercentageVariation *float64          `json:"variacao_percentual"`
}

// ComparePeriods averages metric per groupBy key in two tables and reports
// the variation between them. Groups are ordered by key.
func (c *Combiner) ComparePeriods(ctx context.Context, metric string, groupBy []string, first, second string) ([]PeriodComparison, error) {
	if len(groupBy) == 0 {
		return nil, core.NewInvalidQueryError("group_by", "needs at least one column")
	}
	t1, err := c.registry.Get(ctx, first)
	if err != nil {
		return nil, err
	}
	t2, err := c.registry.Get(ctx, second)
	if err != nil {
		return nil, err
	}

	m1, keys1 := groupMeans(t1, metric, groupBy)
	m2, keys2 := groupMeans(t2, metric, groupBy)

	keySet := make(map[string][]string, len(keys1)+len(keys2))
	for k, parts := range keys1 {
		keySet[k] = parts
	}
	for k, parts := range keys2 {
		keySet[k] = parts
	}
	ordered := make([]string, 0, len(keySet))
	for k := range keySet {
		ordered = append(ordered, k)
	}
	sort.Strings(ordered)

	out := make([]PeriodComparison, 0, len(ordered))
	for _, k := range ordered {
		group := make(map[string]string, len(groupBy))
		for i, col := range groupBy {
			group[col] = keySet[k][i]
		}
		cmp := PeriodComparison{Group: group}
		if v, ok := m1[k]; ok {
			cmp.FirstMean = &v
		}
		if v, ok := m2[k]; ok {
			cmp.SecondMean = &v
		}
		if cmp.FirstMean != nil && cmp.SecondMean != nil {
			abs := *cmp.SecondMean - *cmp.FirstMean
			cmp.AbsoluteVariation = &abs
			if *cmp.FirstMean != 0 {
				pct := math.Round(abs / *cmp.FirstMean * 100 * 100) / 100
				cmp.PercentageVariation = &pct
			}
		}
		out = append(out, cmp)
	}
	return out, nil
}

// groupMeans skips rows with a null group column or an unparseable metric
func groupMeans(tbl *table.Table, metric string, groupBy []string) (map[string]float64, map[string][]string) {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	keys := make(map[string][]string)

	for _, r := range tbl.Rows {
		v, ok := r.Float(metric)
		if !ok {
			continue
		}
		parts := make([]string, len(groupBy))
		complete := true
		for i, col := range groupBy {
			parts[i], complete = r.Value(col)
			if !complete {
				break
			}
		}
		if !complete {
			continue
		}
		k := strings.Join(parts, "\x1f")
		sums[k] += v
		counts[k]++
		keys[k] = parts
	}

	means := make(map[string]float64, len(sums))
	for k, s := range sums {
		means[k] = s / float64(counts[k])
	}
	return means, keys
}
