package enrichment

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/montanaflynn/stats"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"autorisk/domain/enrichment"
	"autorisk/domain/table"
	"autorisk/internal/actuarial"
	tables "autorisk/internal/table"
)

// InlineRowLimit is the largest slice rendered row by row; larger slices are
// summarised per numeric column
const InlineRowLimit = 5

// summaryItems caps the causes and types listed for accidents
const summaryItems = 3

// relevantColumns are the policy columns shown to the generator, in order
func relevantColumns(s actuarial.SchemaMapping) []string {
	return []string{
		s.ModelColumn, "ano", "sexo", s.RegionColumn, s.AgeBandColumn,
		s.PremiumColumn, "freq_sin1", "indeniz1", s.PeriodColumn,
	}
}

var sliceLabels = map[string]string{
	SliceFirstHalf:  tables.FirstHalfLabel,
	SliceSecondHalf: tables.SecondHalfLabel,
}

// FormatForPrompt renders a bundle as the data block of a prompt. An empty
// bundle renders as "".
func FormatForPrompt(b *enrichment.Bundle, schema actuarial.SchemaMapping) string {
	if b == nil || b.Empty() {
		return ""
	}

	p := message.NewPrinter(language.English)
	var sb strings.Builder
	sb.WriteString("\nRELEVANT DATA:\n\n")

	for _, s := range b.Slices {
		if s.Table.Empty() {
			continue
		}
		if label, ok := sliceLabels[s.Name]; ok {
			fmt.Fprintf(&sb, "%s - %s (%d records):\n", s.Name, label, s.Table.Len())
		} else {
			fmt.Fprintf(&sb, "%s (%d records):\n", s.Name, s.Table.Len())
		}
		writeSlice(&sb, s.Table, relevantColumns(schema))
		sb.WriteString("\n")
	}

	if acc := b.Accidents; acc != nil {
		sb.WriteString("ACCIDENT DATA:\n")
		fmt.Fprintf(&sb, "  - Total accidents (2019): %d\n", acc.Total)
		writeCounts(&sb, "Main causes", acc.TopCauses)
		writeCounts(&sb, "Most common types", acc.TopTypes)
		sb.WriteString("\n")
	}

	if th := b.Theft; th != nil {
		sb.WriteString("PUBLIC SAFETY DATA:\n")
		fmt.Fprintf(&sb, "  - State: %s\n", th.State)
		p.Fprintf(&sb, "  - Total robberies (%s): %d\n", th.Year, th.TotalRobberies)
		p.Fprintf(&sb, "  - Total thefts (%s): %d\n", th.Year, th.TotalThefts)
		monthly := 0.0
		if th.MonthlyRobberies != nil {
			monthly = *th.MonthlyRobberies
		}
		fmt.Fprintf(&sb, "  - Monthly mean robberies: %.0f\n", monthly)
		sb.WriteString("\n")
	}

	if delta, ok := halfDelta(b, schema.PremiumColumn); ok {
		sb.WriteString(delta)
	}
	return sb.String()
}

func writeSlice(sb *strings.Builder, t *table.Table, relevant []string) {
	var cols []string
	for _, c := range relevant {
		if c != "" && t.HasColumn(c) {
			cols = append(cols, c)
		}
	}

	if t.Len() <= InlineRowLimit {
		w := tabwriter.NewWriter(sb, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, strings.Join(cols, "\t"))
		for _, r := range t.Rows {
			cells := make([]string, len(cols))
			for i, c := range cols {
				if v, ok := r.Value(c); ok {
					cells[i] = v
				} else {
					cells[i] = "-"
				}
			}
			fmt.Fprintln(w, strings.Join(cells, "\t"))
		}
		w.Flush()
		return
	}

	sb.WriteString("Statistics:\n")
	for _, c := range cols {
		if !t.IsNumeric(c) {
			continue
		}
		values := stats.Float64Data(t.Floats(c))
		mean, _ := values.Mean()
		lo, _ := values.Min()
		hi, _ := values.Max()
		fmt.Fprintf(sb, "  - %s: mean=%.2f, min=%.2f, max=%.2f\n", c, mean, lo, hi)
	}
}

func writeCounts(sb *strings.Builder, title string, counts []table.Count) {
	if len(counts) == 0 {
		return
	}
	fmt.Fprintf(sb, "  - %s:\n", title)
	for i, c := range counts {
		if i == summaryItems {
			break
		}
		fmt.Fprintf(sb, "    * %s: %d cases\n", c.Value, c.Count)
	}
}

// halfDelta renders the half-over-half mean premium change when both halves
// have rows and the first mean is positive
func halfDelta(b *enrichment.Bundle, premiumColumn string) (string, bool) {
	first, second := b.Slice(SliceFirstHalf), b.Slice(SliceSecondHalf)
	if first.Empty() || second.Empty() {
		return "", false
	}

	m1, err := stats.Mean(first.Floats(premiumColumn))
	if err != nil || m1 <= 0 {
		return "", false
	}
	m2, err := stats.Mean(second.Floats(premiumColumn))
	if err != nil {
		return "", false
	}

	return fmt.Sprintf("TEMPORAL ANALYSIS:\n- Mean premium H1: R$ %.2f\n- Mean premium H2: R$ %.2f\n- Variation: %+.2f%%\n\n",
		m1, m2, (m2-m1)/m1*100), true
}
