package table

import (
	"context"
	"fmt"

	"autorisk/domain/core"
	"autorisk/domain/table"
)

// JoinType selects which unmatched rows a merge keeps
type JoinType string

const (
	InnerJoin JoinType = "inner"
	LeftJoin  JoinType = "left"
	RightJoin JoinType = "right"
	OuterJoin JoinType = "outer"
)

// Suffixes appended to non-key columns present on both sides of a merge
const (
	LeftSuffix  = "_x"
	RightSuffix = "_y"
)

// Merge joins two registered tables on a shared key column. Either name may
// be the combined policy view. An empty how means an inner join. Null keys
// never match, so they only surface as unmatched rows of left, right or
// outer joins.
func (c *Combiner) Merge(ctx context.Context, left, right, on string, how JoinType) (*table.Table, error) {
	if how == "" {
		how = InnerJoin
	}
	switch how {
	case InnerJoin, LeftJoin, RightJoin, OuterJoin:
	default:
		return nil, core.NewInvalidQueryError("how", fmt.Sprintf("%q is not one of inner, left, right, outer", how))
	}

	lt, err := c.resolve(ctx, left)
	if err != nil {
		return nil, err
	}
	rt, err := c.resolve(ctx, right)
	if err != nil {
		return nil, err
	}
	if !lt.HasColumn(on) || !rt.HasColumn(on) {
		return nil, core.NewInvalidQueryError("on", fmt.Sprintf("%q is not a column of both %s and %s", on, left, right))
	}

	leftNames, rightNames, columns := mergeColumns(lt.Columns, rt.Columns, on)
	var rows []table.Row
	emit := func(l, r table.Row) {
		row := make(table.Row, len(columns))
		for col, v := range l {
			if name, ok := leftNames[col]; ok {
				row[name] = v
			}
		}
		for col, v := range r {
			if name, ok := rightNames[col]; ok && v != "" {
				row[name] = v
			}
		}
		rows = append(rows, row)
	}

	if how == RightJoin {
		index := indexByKey(lt.Rows, on)
		for _, r := range rt.Rows {
			key, _ := r.Value(on)
			matches := index[key]
			if len(matches) == 0 {
				emit(nil, r)
				continue
			}
			for _, i := range matches {
				emit(lt.Rows[i], r)
			}
		}
	} else {
		index := indexByKey(rt.Rows, on)
		matched := make([]bool, len(rt.Rows))
		for _, l := range lt.Rows {
			key, _ := l.Value(on)
			matches := index[key]
			if len(matches) == 0 {
				if how != InnerJoin {
					emit(l, nil)
				}
				continue
			}
			for _, i := range matches {
				matched[i] = true
				emit(l, rt.Rows[i])
			}
		}
		if how == OuterJoin {
			for i, r := range rt.Rows {
				if !matched[i] {
					emit(nil, r)
				}
			}
		}
	}

	c.logger.Debug("merged %s and %s on %s (%s): %d rows", left, right, on, how, len(rows))
	merged := table.New(left+"+"+right, columns, rows)
	merged.KeyColumns = []string{on}
	return merged, nil
}

// resolve returns a registered table or the combined policy view
func (c *Combiner) resolve(ctx context.Context, name string) (*table.Table, error) {
	if name == PolicyView {
		return c.CombinedPolicyData(ctx)
	}
	return c.registry.Get(ctx, name)
}

// indexByKey maps each non-null key to the positions of the rows carrying it
func indexByKey(rows []table.Row, on string) map[string][]int {
	index := make(map[string][]int, len(rows))
	for i, r := range rows {
		if key, ok := r.Value(on); ok {
			index[key] = append(index[key], i)
		}
	}
	return index
}

// mergeColumns lays out left columns then right columns, keeping one copy
// of the key and suffixing the other shared names
func mergeColumns(left, right []string, on string) (map[string]string, map[string]string, []string) {
	inLeft := make(map[string]bool, len(left))
	for _, col := range left {
		inLeft[col] = true
	}
	inRight := make(map[string]bool, len(right))
	for _, col := range right {
		inRight[col] = true
	}

	leftNames := make(map[string]string, len(left))
	rightNames := map[string]string{on: on}
	columns := make([]string, 0, len(left)+len(right)-1)
	for _, col := range left {
		name := col
		if col != on && inRight[col] {
			name = col + LeftSuffix
		}
		leftNames[col] = name
		columns = append(columns, name)
	}
	for _, col := range right {
		if col == on {
			continue
		}
		name := col
		if inLeft[col] {
			name = col + RightSuffix
		}
		rightNames[col] = name
		columns = append(columns, name)
	}
	return leftNames, rightNames, columns
}
