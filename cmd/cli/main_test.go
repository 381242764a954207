package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"optiscope/domain/core"
	"optiscope/domain/optimization"
)

const reportCSV = "Pass;Profit;Drawdown %;RSI_Period;SL_Pips;StartHour\n" +
	"1;8000;3;14;50;8\n" +
	"2;5000;2;21;60;9\n" +
	"3;9500;6,5;21;50;8\n" +
	"4;12000;9;14;40;10\n"

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunAnalyze_AllOutputs(t *testing.T) {
	dir := t.TempDir()
	opts := analyzeOptions{
		params:    optimization.DefaultParams(),
		topValues: 3,
		annualize: 252,
		jsonPath:  filepath.Join(dir, "out.json"),
		xlsxPath:  filepath.Join(dir, "out.xlsx"),
		markdown:  filepath.Join(dir, "out.md"),
	}

	var out bytes.Buffer
	require.NoError(t, runAnalyze(&out, writeCSV(t, reportCSV), opts))

	assert.Contains(t, out.String(), "OPTIMIZATION ANALYSIS REPORT")
	assert.Contains(t, out.String(), "Kept (profit >= 7000.00, drawdown <= 7.00%): 2")
	assert.Contains(t, out.String(), "JSON written: ")
	assert.Contains(t, out.String(), "Workbook written: ")

	doc, err := os.ReadFile(opts.jsonPath)
	require.NoError(t, err)
	assert.Equal(t, `[9500,8000]`, gjson.GetBytes(doc, "best_optimizations.#.profit").Raw)
	assert.Equal(t, "SL_Pips", gjson.GetBytes(doc, "categories.risk_management.0").String())
	assert.Equal(t, "StartHour", gjson.GetBytes(doc, "categories.timing.0").String())

	md, err := os.ReadFile(opts.markdown)
	require.NoError(t, err)
	assert.Contains(t, string(md), "## Top 2 optimizations")

	_, err = os.Stat(opts.xlsxPath)
	assert.NoError(t, err)
}

func TestRunAnalyze_ReportFile(t *testing.T) {
	reportPath := filepath.Join(t.TempDir(), "report.txt")
	var out bytes.Buffer
	err := runAnalyze(&out, writeCSV(t, reportCSV), analyzeOptions{
		params:     optimization.DefaultParams(),
		topValues:  5,
		annualize:  252,
		reportPath: reportPath,
	})
	require.NoError(t, err)
	assert.Equal(t, "Report written: "+reportPath+"\n", out.String())

	text, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Contains(t, string(text), "[RSI_Period] (signal)")
}

func TestRunAnalyze_MissingProfit(t *testing.T) {
	err := runAnalyze(&bytes.Buffer{}, writeCSV(t, "RSI_Period,Drawdown\n14,2\n"), analyzeOptions{
		params: optimization.DefaultParams(),
	})
	assert.True(t, core.IsMissingColumnError(err))
}

func TestAnalyzeCommand(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"analyze", writeCSV(t, reportCSV), "--top", "1", "--min-profit", "0", "--max-drawdown", "100", "--log-level", "ERROR"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "TOP 1 OPTIMIZATIONS")
	assert.Contains(t, out.String(), "#1 - Profit: 12000.00 (row 4)")
}

func TestColumnsCommand(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"columns", writeCSV(t, reportCSV), "--delimiter", ";"})
	require.NoError(t, root.Execute())

	got := out.String()
	assert.Contains(t, got, "report.csv: 6 columns, 4 rows")
	assert.Contains(t, got, "profit:   Profit")
	assert.Contains(t, got, "drawdown: Drawdown %")
	assert.Contains(t, got, "results:  Pass, Profit, Drawdown %")
	assert.Contains(t, got, "signal:")
	assert.Contains(t, got, "RSI_Period")
}

func TestNewLoader_Delimiter(t *testing.T) {
	_, err := newLoader("tab", "")
	assert.NoError(t, err)
	_, err = newLoader(";;", "")
	assert.Error(t, err)

	err = runColumns(&bytes.Buffer{}, filepath.Join(t.TempDir(), "missing.csv"), "", "")
	assert.Error(t, err)
}
