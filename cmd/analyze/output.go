package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	app "github.com/okian/gametaste/internal/app"
	"github.com/okian/gametaste/internal/domain/model"
)

const (
	formatAuto  = "auto"
	formatJSON  = "json"
	formatTable = "table"
)

// writeAnalysis renders a as tables on a terminal and as JSON otherwise,
// unless format forces one of them.
func writeAnalysis(cmd *cobra.Command, format string, a *app.Analysis) error {
	out := cmd.OutOrStdout()
	if format == formatAuto {
		format = formatJSON
		if isTerminal(out) {
			format = formatTable
		}
	}
	if format == formatJSON {
		return writeJSON(out, a)
	}
	_, err := io.WriteString(out, renderAnalysis(a))
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// writeJSON encodes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderAnalysis(a *app.Analysis) string {
	var b strings.Builder

	if a.Profile != nil {
		fmt.Fprintf(&b, "Profile %s: %d owned, %d played, %.1f hours\n",
			a.Profile.SteamID, a.Profile.Stats.OwnedCount, a.Profile.Stats.PlayedCount, a.Profile.Stats.TotalPlaytimeHours)
	}
	fmt.Fprintf(&b, "Tier %s, primary playstyle %s", a.Tier, a.Report.PrimaryLabel)
	if len(a.Report.SecondaryLabels) > 0 {
		secondary := make([]string, len(a.Report.SecondaryLabels))
		for i, l := range a.Report.SecondaryLabels {
			secondary[i] = string(l)
		}
		fmt.Fprintf(&b, " (also %s)", strings.Join(secondary, ", "))
	}
	fmt.Fprintf(&b, "\nConcentration %.2f, breadth %.2f over %d titles\n\n",
		a.Metrics.ConcentrationRatio, a.Metrics.BreadthScore, a.Metrics.TitleCount)

	genres := make([][]string, len(a.Report.TopGenres))
	for i, g := range a.Report.TopGenres {
		genres[i] = []string{strconv.Itoa(i + 1), g.Label, strconv.FormatFloat(g.Weight, 'f', 2, 64)}
	}
	b.WriteString(renderTable([]string{"#", "Top genre", "Weight"}, genres, []text.Align{text.AlignRight, text.AlignLeft, text.AlignRight}))
	b.WriteString("\n\n")

	recs := make([][]string, len(a.Report.Recommendations))
	for i, r := range a.Report.Recommendations {
		recs[i] = []string{
			strconv.Itoa(i + 1),
			strconv.FormatInt(r.Candidate.ID, 10),
			r.Candidate.Name,
			strconv.FormatFloat(r.Score, 'f', 3, 64),
			strings.Join(r.MatchedLabels, ", "),
			formatPrice(r.Candidate.Price),
		}
	}
	b.WriteString(renderTable(
		[]string{"#", "ID", "Recommendation", "Score", "Matched", "Price"},
		recs,
		[]text.Align{text.AlignRight, text.AlignRight, text.AlignLeft, text.AlignRight, text.AlignLeft, text.AlignRight},
	))
	b.WriteString("\n")

	if a.Narrative != nil {
		fmt.Fprintf(&b, "\n%s: %s\n", a.Narrative.GamerType, a.Narrative.Summary)
	}
	for _, w := range a.Warnings {
		fmt.Fprintf(&b, "warning: %s\n", w)
	}
	return b.String()
}

func renderTable(headers []string, rows [][]string, aligns []text.Align) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, len(headers))
		for i := range headers {
			r[i] = ""
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, len(aligns))
	for i, a := range aligns {
		configs[i] = table.ColumnConfig{Number: i + 1, Align: a, AlignHeader: text.AlignLeft}
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

func formatPrice(p *model.Price) string {
	if p == nil {
		return "-"
	}
	if p.Final == 0 {
		return "free"
	}
	s := fmt.Sprintf("%.2f %s", float64(p.Final)/100, p.Currency)
	if p.DiscountPercent > 0 {
		s += fmt.Sprintf(" (-%d%%)", p.DiscountPercent)
	}
	return s
}
