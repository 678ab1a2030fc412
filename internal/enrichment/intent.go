package enrichment

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"autorisk/domain/enrichment"
	"autorisk/domain/table"
	"autorisk/internal/geo"
	tables "autorisk/internal/table"
)

// Keyword lists are matched as substrings of the lower-cased message
var (
	pricingKeywords = []string{"premium", "price", "value", "cost", "prêmio", "premio", "preço", "preco", "valor", "custo"}
	claimsKeywords  = []string{"claim", "accident", "collision", "theft", "sinistro", "acidente", "colisão", "colisao", "roubo", "furto"}
)

// regionWords are matched as whole words; the two-letter ones also name a state
var regionWords = map[string]string{
	"região": "",
	"regiao": "",
	"sp":     "SP",
	"rj":     "RJ",
	"mg":     "MG",
}

// ClassifyIntent finds the model and state a message mentions and the topic it
// asks about. Models come from the policy view and match as whole words; the
// longest matching model wins.
func (e *Enricher) ClassifyIntent(ctx context.Context, text string) (enrichment.Intent, error) {
	intent := enrichment.Intent{Topic: enrichment.TopicGeneral}
	lower := strings.ToLower(text)

	matcher, err := e.matcherFor(ctx)
	if err != nil {
		return intent, err
	}
	if model := matcher.match(lower); model != "" {
		intent.Entities.Model = model
		intent.NeedsData = true
		needTables(&intent, tables.PolicyView, tables.Accidents)
	}

	if hint, state := regionHint(text); hint {
		intent.NeedsData = true
		needTables(&intent, tables.PolicyView)
		if state != "" {
			intent.Entities.State = state
			needTables(&intent, tables.Crime)
		}
	}

	if containsAny(lower, pricingKeywords) {
		intent.Topic = enrichment.TopicPricing
		intent.NeedsData = true
		needTables(&intent, tables.PolicyView)
	}
	if containsAny(lower, claimsKeywords) {
		intent.Topic = enrichment.TopicClaims
		intent.NeedsData = true
	}
	return intent, nil
}

// modelMatcher holds a compiled word pattern per known model, longest first
type modelMatcher struct {
	view     *table.Table
	column   string
	models   []string
	patterns []*regexp.Regexp
}

func newModelMatcher(view *table.Table, column string) *modelMatcher {
	models := view.Unique(column)
	sort.SliceStable(models, func(i, j int) bool { return len(models[i]) > len(models[j]) })

	m := &modelMatcher{view: view, column: column}
	for _, model := range models {
		if model == "" {
			continue
		}
		m.models = append(m.models, model)
		m.patterns = append(m.patterns, wordPattern(strings.ToLower(model)))
	}
	return m
}

// match returns the longest model named in lower, or ""
func (m *modelMatcher) match(lower string) string {
	for i, p := range m.patterns {
		if p.MatchString(lower) {
			return m.models[i]
		}
	}
	return ""
}

// matcherFor returns the model matcher of the current policy view. Patterns
// are compiled once per view and model column.
func (e *Enricher) matcherFor(ctx context.Context) (*modelMatcher, error) {
	view, err := e.view.CombinedPolicyData(ctx)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if m := e.matcher; m != nil && m.view == view && m.column == e.schema.ModelColumn {
		return m, nil
	}
	e.matcher = newModelMatcher(view, e.schema.ModelColumn)
	return e.matcher, nil
}

// wordPattern matches s only when it is not glued to other letters or digits
func wordPattern(s string) *regexp.Regexp {
	return regexp.MustCompile(`(^|[^\p{L}\p{N}])` + regexp.QuoteMeta(s) + `($|[^\p{L}\p{N}])`)
}

// regionHint reports whether text mentions a region and which state code it
// names, if any. "para" is a common preposition, so Pará only counts when
// written with its accent.
func regionHint(text string) (bool, string) {
	hint := false
	state := ""
	for _, w := range geo.Words(strings.ToLower(text)) {
		code, ok := regionWords[w]
		if !ok {
			continue
		}
		hint = true
		if state == "" {
			state = code
		}
	}
	if state != "" {
		return true, state
	}

	code := geo.StateFromName(text)
	if code == "PA" && !strings.Contains(strings.ToLower(text), "pará") {
		code = ""
	}
	if code != "" {
		return true, code
	}
	return hint, ""
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func needTables(intent *enrichment.Intent, names ...string) {
	for _, n := range names {
		if !intent.NeedsTable(n) {
			intent.TablesNeeded = append(intent.TablesNeeded, n)
		}
	}
}
