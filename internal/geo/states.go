// Package geo resolves Brazilian state codes and names found in free text.
package geo

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var states = map[string]string{
	"AC": "Acre",
	"AL": "Alagoas",
	"AP": "Amapá",
	"AM": "Amazonas",
	"BA": "Bahia",
	"CE": "Ceará",
	"DF": "Distrito Federal",
	"ES": "Espírito Santo",
	"GO": "Goiás",
	"MA": "Maranhão",
	"MT": "Mato Grosso",
	"MS": "Mato Grosso do Sul",
	"MG": "Minas Gerais",
	"PA": "Pará",
	"PB": "Paraíba",
	"PR": "Paraná",
	"PE": "Pernambuco",
	"PI": "Piauí",
	"RJ": "Rio de Janeiro",
	"RN": "Rio Grande do Norte",
	"RS": "Rio Grande do Sul",
	"RO": "Rondônia",
	"RR": "Roraima",
	"SC": "Santa Catarina",
	"SP": "São Paulo",
	"SE": "Sergipe",
	"TO": "Tocantins",
}

type foldedName struct {
	code   string
	folded string
}

// foldedNames is ordered longest first so "Mato Grosso do Sul" wins over "Mato Grosso"
var foldedNames = func() []foldedName {
	out := make([]foldedName, 0, len(states))
	for code, name := range states {
		out = append(out, foldedName{code: code, folded: " " + Fold(name) + " "})
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].folded) == len(out[j].folded) {
			return out[i].code < out[j].code
		}
		return len(out[i].folded) > len(out[j].folded)
	})
	return out
}()

// StateName returns the full name for a two-letter code, or "" if unknown
func StateName(code string) string {
	return states[strings.ToUpper(strings.TrimSpace(code))]
}

// IsStateCode reports whether code is a known two-letter code (any case)
func IsStateCode(code string) bool {
	_, ok := states[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}

// ResolveStateCode finds the state a free-text region descriptor refers to.
// A standalone upper-case code ("SP") wins; otherwise the longest full state
// name contained as whole words, ignoring accents and case. Returns "" when
// nothing matches.
func ResolveStateCode(descriptor string) string {
	for _, tok := range Words(descriptor) {
		if len(tok) == 2 && tok == strings.ToUpper(tok) {
			if _, ok := states[tok]; ok {
				return tok
			}
		}
	}
	return StateFromName(descriptor)
}

// StateFromName finds the longest full state name in text, ignoring accents
// and case
func StateFromName(text string) string {
	padded := " " + Normalize(text) + " "
	for _, n := range foldedNames {
		if strings.Contains(padded, n.folded) {
			return n.code
		}
	}
	return ""
}

// Words splits text on anything that is not a letter or digit
func Words(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Fold lower-cases s and strips diacritics
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// Normalize folds s and collapses every non-alphanumeric run to one space
func Normalize(s string) string {
	return strings.Join(Words(Fold(s)), " ")
}

// Title trims s and title-cases every word
func Title(s string) string {
	// a Caser carries state and cannot be shared between goroutines
	return cases.Title(language.BrazilianPortuguese).String(strings.TrimSpace(s))
}
