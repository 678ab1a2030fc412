package table

import "autorisk/domain/table"

// Step is one narrowing predicate of a progressive refinement
type Step struct {
	Name string
	Keep func(table.Row) bool
}

// Equals builds a step keeping rows whose column equals value
func Equals(column, value string) Step {
	return Step{
		Name: column,
		Keep: func(r table.Row) bool { return r[column] == value },
	}
}

// Refine applies steps in order. A step that would leave no rows is skipped
// and the previous scope is kept. Returns the final scope and the names of
// the steps that narrowed it.
func Refine(scope *table.Table, steps ...Step) (*table.Table, []string) {
	var applied []string
	for _, step := range steps {
		narrowed := scope.Filter(step.Keep)
		if narrowed.Empty() {
			continue
		}
		scope = narrowed
		applied = append(applied, step.Name)
	}
	return scope, applied
}
