package report

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"github.com/xuri/excelize/v2"

	"optiscope/domain/optimization"
	"optiscope/internal"
	"optiscope/internal/analysis"
)

func runAnalysis(t *testing.T, table *optimization.Table) *analysis.Analysis {
	t.Helper()
	an := analysis.NewAnalyzer(analysis.WithLogger(internal.NewLogger(internal.LogLevelError)))
	a, err := an.Run(table, optimization.Params{
		Thresholds: optimization.Thresholds{MinProfit: 1000, MaxDrawdown: 10},
		TopN:       2,
	})
	require.NoError(t, err)
	return a
}

func sampleTable() *optimization.Table {
	n := optimization.Number
	s := optimization.String
	table := optimization.NewTable(
		[]string{"Pass", "Profit", "Drawdown", "RSI_Period", "Mode", "Comment"},
		[][]optimization.Value{
			{n(1), n(1500), n(4), n(14), s("fast"), optimization.Null()},
			{n(2), n(2500), n(6), n(21), s("slow|safe"), optimization.Null()},
			{n(3), n(500), n(2), n(14), s("fast"), optimization.Null()},
			{n(4), n(3000), n(12), n(21), s("slow"), optimization.Null()},
			{n(5), n(2000), n(8), n(14), s("slow"), optimization.Null()},
		},
	)
	table.Source = optimization.Source{Name: "runs.csv", Format: "csv"}
	return table
}

func sampleAnalysis(t *testing.T) *analysis.Analysis {
	return runAnalysis(t, sampleTable())
}

func TestWriteJSON(t *testing.T) {
	a := sampleAnalysis(t)
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, a))
	doc := buf.String()
	require.True(t, gjson.Valid(doc))

	assert.Equal(t, a.RunID.String(), gjson.Get(doc, "run_id").String())
	assert.Equal(t, "complete", gjson.Get(doc, "status").String())
	assert.Equal(t, 1000.0, gjson.Get(doc, "parameters.min_profit").Float())
	assert.Equal(t, int64(2), gjson.Get(doc, "parameters.top_n").Int())
	assert.Equal(t, int64(5), gjson.Get(doc, "summary.total_rows").Int())
	assert.Equal(t, int64(3), gjson.Get(doc, "summary.filtered_rows").Int())
	assert.Equal(t, int64(3), gjson.Get(doc, "advanced_metrics.total_optimizations").Int())
	assert.InDelta(t, 6000, gjson.Get(doc, "advanced_metrics.total_profit").Float(), 1e-9)

	assert.Equal(t, `["RSI_Period","Mode"]`, gjson.Get(doc, "variable_stats.#.column").Raw)
	assert.Equal(t, "signal", gjson.Get(doc, "variable_stats.0.category").String())
	assert.Equal(t, int64(21), gjson.Get(doc, "variable_stats.0.top_values.0.value").Int())
	assert.Equal(t, int64(1), gjson.Get(doc, "categories.signal.#").Int())
	assert.Equal(t, "RSI_Period", gjson.Get(doc, "categories.signal.0").String())

	assert.Equal(t, `[2500,2000]`, gjson.Get(doc, "best_optimizations.#.profit").Raw)
	assert.Equal(t, "slow|safe", gjson.Get(doc, "best_optimizations.0.values.Mode").String())
	assert.Equal(t, gjson.Null, gjson.Get(doc, "best_optimizations.0.values.Comment").Type)

	assert.Equal(t, "Comment", gjson.Get(doc, "issues.0.column").String())
	assert.True(t, gjson.Get(doc, "issues.0.skipped").Bool())
	assert.Equal(t, "Profit", gjson.Get(doc, "classification.profit_column").String())
}

func TestWriteJSON_EmptyAnalysis(t *testing.T) {
	a := runAnalysis(t, optimization.NewTable([]string{"Profit"}, nil))
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, a))
	doc := buf.String()

	assert.Equal(t, "empty", gjson.Get(doc, "status").String())
	assert.Equal(t, "[]", gjson.Get(doc, "best_optimizations").Raw)
	assert.Equal(t, "[]", gjson.Get(doc, "variable_stats").Raw)
	assert.Equal(t, "[]", gjson.Get(doc, "issues").Raw)
	assert.Equal(t, 0.0, gjson.Get(doc, "advanced_metrics.sharpe_ratio").Float())
}

func TestSaveJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, SaveJSON(path, sampleAnalysis(t)))

	assert.Error(t, SaveJSON(filepath.Join(t.TempDir(), "missing", "out.json"), sampleAnalysis(t)))
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, sampleAnalysis(t)))
	out := buf.String()

	assert.Contains(t, out, "OPTIMIZATION ANALYSIS REPORT")
	assert.Contains(t, out, "Source: runs.csv (csv)")
	assert.Contains(t, out, "Total optimizations: 5")
	assert.Contains(t, out, "Kept (profit >= 1000.00, drawdown <= 10.00%): 3")
	assert.Contains(t, out, "Success rate: 60.0%")
	assert.Contains(t, out, "[RSI_Period] (signal)")
	assert.Contains(t, out, "1. 21 -> 2500.00 (x1)")
	assert.Contains(t, out, "[Comment] skipped:")
	assert.Contains(t, out, "TOP 2 OPTIMIZATIONS")
	assert.Contains(t, out, "#1 - Profit: 2500.00 (row 2)")
	assert.NotContains(t, out, "   Profit: ", "profit is not repeated among the row values")
	assert.Contains(t, out, "Win rate: 100.0%")
	assert.Less(t, strings.Index(out, "VARIABLES"), strings.Index(out, "TOP 2"))
}

func TestWriteText_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, runAnalysis(t, nil)))
	assert.Contains(t, buf.String(), "nothing to analyze")
	assert.NotContains(t, buf.String(), "ADVANCED METRICS")
}

func TestReports_NoMatches(t *testing.T) {
	an := analysis.NewAnalyzer(analysis.WithLogger(internal.NewLogger(internal.LogLevelError)))
	a, err := an.Run(sampleTable(), optimization.Params{
		Thresholds: optimization.Thresholds{MinProfit: 1e9, MaxDrawdown: 10},
		TopN:       2,
	})
	require.NoError(t, err)
	require.Equal(t, analysis.StatusNoMatches, a.Status)

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, a))
	assert.Contains(t, buf.String(), "No optimization passed the thresholds.")
	assert.Contains(t, string(Markdown(a)), "No optimization passed the thresholds.")

	buf.Reset()
	require.NoError(t, WriteJSON(&buf, a))
	assert.Equal(t, "no_matches", gjson.Get(buf.String(), "status").String())
}

func TestMarkdownAndHTML(t *testing.T) {
	a := sampleAnalysis(t)
	md := string(Markdown(a))
	assert.Contains(t, md, "# Optimization analysis: runs.csv")
	assert.Contains(t, md, "| 5 | 3 | 60.0% |")
	assert.Contains(t, md, "- **signal**: RSI\\_Period")
	assert.Contains(t, md, "## Top 2 optimizations")
	assert.Contains(t, md, `slow\|safe`)

	html := string(HTML(a))
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "Top 2 optimizations</h2>")
	assert.Contains(t, html, "RSI_Period")
	assert.Contains(t, html, "safe")
	assert.NotContains(t, html, "<script")
}

func TestHTML_CellTextIsInert(t *testing.T) {
	n := optimization.Number
	s := optimization.String
	hostile := "[click](javascript:alert(document.cookie))"
	table := optimization.NewTable(
		[]string{"Profit", "Drawdown", "Mode", "Note"},
		[][]optimization.Value{
			{n(2500), n(5), s(hostile), s("line one\nline two")},
			{n(1500), n(4), s("<img src=x onerror=alert(1)>"), s("a & b")},
		},
	)
	a := runAnalysis(t, table)

	md := string(Markdown(a))
	assert.Contains(t, md, `\[click\]\(javascript:alert\(document.cookie\)\)`)
	assert.Contains(t, md, "line one line two")
	assert.NotContains(t, md, "line one\nline two")

	html := string(HTML(a))
	assert.NotContains(t, html, "<a ")
	assert.NotContains(t, html, `href="javascript`)
	assert.NotContains(t, html, "<img")
	assert.Contains(t, html, "[click](javascript:alert(document.cookie))")
	assert.Contains(t, html, "a &amp; b")
}

func TestWorkbook(t *testing.T) {
	a := sampleAnalysis(t)
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, a))

	fx, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer fx.Close()
	assert.Equal(t, []string{"Summary", "Variables", "Top"}, fx.GetSheetList())

	summary, err := fx.GetRows("Summary")
	require.NoError(t, err)
	assert.Equal(t, []string{"Total optimizations", "5"}, summary[6])

	top, err := fx.GetRows("Top")
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, []string{"Rank", "Row", "Profit", "Pass", "Drawdown", "RSI_Period", "Mode", "Comment"}, top[0])
	require.GreaterOrEqual(t, len(top[1]), 7)
	assert.Equal(t, []string{"1", "2", "2500", "2", "6", "21", "slow|safe"}, top[1][:7])

	vars, err := fx.GetRows("Variables")
	require.NoError(t, err)
	assert.Equal(t, "RSI_Period", vars[1][0])
	assert.Equal(t, "signal", vars[1][1])

	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, SaveWorkbook(path, a))
	saved, err := excelize.OpenFile(path)
	require.NoError(t, err)
	saved.Close()
}
