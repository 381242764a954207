package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"optiscope/domain/optimization"
	"optiscope/internal/analysis"
)

// Markdown renders the report as GitHub-style Markdown with tables
func Markdown(a *analysis.Analysis) []byte {
	var b bytes.Buffer
	p := func(format string, args ...interface{}) { fmt.Fprintf(&b, format, args...) }

	title := "Optimization analysis"
	if a.Source.Name != "" {
		title += ": " + a.Source.Name
	}
	p("# %s\n\n", mdEscape(title))
	p("Run `%s`. Profit >= %s, drawdown <= %s%%, top %d.\n\n",
		a.RunID, num(a.Params.MinProfit), num(a.Params.MaxDrawdown), a.Params.TopN)

	p("## Summary\n\n| Total | Kept | Success rate |\n|---:|---:|---:|\n")
	p("| %d | %d | %.1f%% |\n\n", a.Summary.TotalRows, a.Summary.FilteredRows, a.Summary.SuccessRate)
	if a.Status == analysis.StatusEmpty {
		p("The table has no rows.\n")
		return b.Bytes()
	}
	if a.Status == analysis.StatusNoMatches {
		p("No optimization passed the thresholds.\n\n")
	}

	if m := a.Metrics; m != nil {
		p("## Advanced metrics\n\n| Metric | Value |\n|---|---:|\n")
		for _, row := range metricRows(m) {
			p("| %s | %s |\n", row.label, row.value)
		}
		p("\n")
	}

	p("## Variables\n\n")
	for _, cat := range optimization.Categories {
		cols := a.Categories[cat]
		if len(cols) == 0 {
			continue
		}
		p("- **%s**: %s\n", cat, mdEscape(strings.Join(cols, ", ")))
	}
	p("\n")
	for _, col := range a.Variables.Order {
		s, _ := a.Variables.Get(col)
		p("### %s\n\n", mdEscape(s.Column))
		p("%d distinct values, profit min %s, max %s, mean %s.\n\n",
			s.DistinctValues, num(s.ProfitMin), num(s.ProfitMax), num(s.ProfitMean))
		p("| # | Value | Mean profit | Runs | Total profit |\n|---:|---|---:|---:|---:|\n")
		for i, tv := range s.TopValues {
			p("| %d | %s | %s | %d | %s |\n", i+1, mdEscape(tv.Value.String()), num(tv.MeanProfit), tv.Occurrences, num(tv.TotalProfit))
		}
		p("\n")
	}
	if len(a.Variables.Issues) > 0 {
		p("### Column issues\n\n")
		for _, issue := range a.Variables.Issues {
			p("- %s: %s\n", mdEscape(issue.Column), mdEscape(issue.Reason))
		}
		p("\n")
	}

	columns := rankedColumns(a)
	p("## Top %d optimizations\n\n| Rank | Profit |", len(a.Ranking))
	for _, c := range columns {
		p(" %s |", mdEscape(c))
	}
	p("\n|---:|---:|%s\n", strings.Repeat("---|", len(columns)))
	for _, r := range a.Ranking {
		p("| %d | %s |", r.Rank, num(r.Profit))
		for _, c := range columns {
			p(" %s |", mdEscape(r.Values.Get(c).String()))
		}
		p("\n")
	}
	return b.Bytes()
}

// HTML renders the Markdown report to an HTML fragment
func HTML(a *analysis.Analysis) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	r := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.Safelink | html.SkipHTML})
	return markdown.ToHTML(Markdown(a), p, r)
}

type metricRow struct {
	label string
	value string
}

func metricRows(m *optimization.AdvancedMetrics) []metricRow {
	return []metricRow{
		{"Optimizations", fmt.Sprintf("%d", m.TotalOptimizations)},
		{"Winning / losing", fmt.Sprintf("%d / %d", m.WinningRuns, m.LosingRuns)},
		{"Total profit", num(m.TotalProfit)},
		{"Average profit", num(m.AverageProfit)},
		{"Max profit", num(m.MaxProfit)},
		{"Min profit", num(m.MinProfit)},
		{"Max drawdown", num(m.MaxDrawdown) + "%"},
		{"Average drawdown", num(m.AverageDrawdown) + "%"},
		{"Win rate", fmt.Sprintf("%.1f%%", m.WinRate)},
		{"Average win", num(m.AverageWin)},
		{"Average loss", num(m.AverageLoss)},
		{"Profit factor", num(m.ProfitFactor)},
		{"Risk/reward", num(m.RiskRewardRatio)},
		{"Sharpe ratio", num(m.SharpeRatio)},
		{"Calmar ratio", num(m.CalmarRatio)},
		{"Recovery factor", num(m.RecoveryFactor)},
	}
}

func num(f float64) string { return fmt.Sprintf("%.2f", f) }

// Cell text comes from uploaded files, so every inline marker is escaped and line breaks
// are flattened to keep table rows intact.
var mdReplacer = strings.NewReplacer(
	`\`, `\\`, `|`, `\|`, `*`, `\*`, `_`, `\_`, "`", "\\`", `~`, `\~`,
	`[`, `\[`, `]`, `\]`, `(`, `\(`, `)`, `\)`, `!`, `\!`,
	`&`, `&amp;`, `<`, `&lt;`, `>`, `&gt;`,
	"\r\n", " ", "\n", " ", "\r", " ",
)

func mdEscape(s string) string { return mdReplacer.Replace(s) }
