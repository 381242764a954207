package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"optiscope/domain/optimization"
	"optiscope/internal/analysis"
)

const rule = "--------------------------------------------------------------------------------"

// WriteText renders the plain-text report: summary, variables, best runs and metrics.
func WriteText(w io.Writer, a *analysis.Analysis) error {
	b := bufio.NewWriter(w)
	p := func(format string, args ...interface{}) { fmt.Fprintf(b, format, args...) }

	p("%s\n", strings.Repeat("=", len(rule)))
	p("         OPTIMIZATION ANALYSIS REPORT\n")
	p("%s\n\n", strings.Repeat("=", len(rule)))

	p("SUMMARY\n%s\n", rule[:40])
	if a.Source.Name != "" {
		p("  Source: %s (%s)\n", a.Source.Name, a.Source.Format)
	}
	p("  Run: %s\n", a.RunID)
	p("  Total optimizations: %d\n", a.Summary.TotalRows)
	p("  Kept (profit >= %.2f, drawdown <= %.2f%%): %d\n", a.Params.MinProfit, a.Params.MaxDrawdown, a.Summary.FilteredRows)
	p("  Success rate: %.1f%%\n", a.Summary.SuccessRate)
	if a.Status == analysis.StatusEmpty {
		p("\n  The table has no rows; nothing to analyze.\n")
		return b.Flush()
	}
	if a.Status == analysis.StatusNoMatches {
		p("  No optimization passed the thresholds.\n")
	}
	if a.Classification.DrawdownColumn == "" {
		p("  No drawdown column: drawdown filter skipped\n")
	}
	p("\n")

	p("VARIABLES\n%s\n", rule[:40])
	for _, col := range a.Variables.Order {
		s, _ := a.Variables.Get(col)
		p("\n[%s] (%s)\n", s.Column, s.Category)
		p("   Distinct values tested: %d\n", s.DistinctValues)
		p("   Profit min: %.2f\n", s.ProfitMin)
		p("   Profit max: %.2f\n", s.ProfitMax)
		p("   Profit mean: %.2f\n", s.ProfitMean)
		p("   Top %d values:\n", len(s.TopValues))
		for i, tv := range s.TopValues {
			p("     %d. %s -> %.2f (x%d)\n", i+1, tv.Value, tv.MeanProfit, tv.Occurrences)
		}
	}
	for _, issue := range a.Variables.Issues {
		if issue.Skipped {
			p("\n[%s] skipped: %s\n", issue.Column, issue.Reason)
		}
	}

	p("\nTOP %d OPTIMIZATIONS\n%s\n", len(a.Ranking), rule[:40])
	columns := rankedColumns(a)
	for _, r := range a.Ranking {
		p("\n#%d - Profit: %.2f (row %d)\n", r.Rank, r.Profit, r.RowIndex+1)
		for _, col := range columns {
			p("   %s: %s\n", col, r.Values.Get(col))
		}
	}

	if m := a.Metrics; m != nil {
		p("\nADVANCED METRICS\n%s\n", rule[:40])
		writeMetrics(p, m)
	}
	return b.Flush()
}

func writeMetrics(p func(string, ...interface{}), m *optimization.AdvancedMetrics) {
	p("  Optimizations: %d (%d winning, %d losing)\n", m.TotalOptimizations, m.WinningRuns, m.LosingRuns)
	p("  Total profit: %.2f\n", m.TotalProfit)
	p("  Average profit: %.2f\n", m.AverageProfit)
	p("  Max / min profit: %.2f / %.2f\n", m.MaxProfit, m.MinProfit)
	p("  Max / average drawdown: %.2f%% / %.2f%%\n", m.MaxDrawdown, m.AverageDrawdown)
	p("  Win rate: %.1f%%\n", m.WinRate)
	p("  Average win / loss: %.2f / %.2f\n", m.AverageWin, m.AverageLoss)
	p("  Profit factor: %.2f\n", m.ProfitFactor)
	p("  Risk/reward: %.2f\n", m.RiskRewardRatio)
	p("  Sharpe ratio: %.2f\n", m.SharpeRatio)
	p("  Calmar ratio: %.2f\n", m.CalmarRatio)
	p("  Recovery factor: %.2f\n", m.RecoveryFactor)
}

// rankedColumns is the source column order minus the profit column
func rankedColumns(a *analysis.Analysis) []string {
	out := make([]string, 0, len(a.Columns()))
	for _, c := range a.Columns() {
		if c != a.Classification.ProfitColumn {
			out = append(out, c)
		}
	}
	return out
}
