package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"optiscope/internal/analysis"
)

const (
	summarySheet   = "Summary"
	variablesSheet = "Variables"
	topSheet       = "Top"
)

// WriteWorkbook writes an XLSX workbook with Summary, Variables and Top sheets
func WriteWorkbook(w io.Writer, a *analysis.Analysis) error {
	fx, err := buildWorkbook(a)
	if err != nil {
		return err
	}
	defer fx.Close()
	if _, err := fx.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// SaveWorkbook writes the workbook to path
func SaveWorkbook(path string, a *analysis.Analysis) error {
	fx, err := buildWorkbook(a)
	if err != nil {
		return err
	}
	defer fx.Close()
	return fx.SaveAs(path)
}

func buildWorkbook(a *analysis.Analysis) (*excelize.File, error) {
	fx := excelize.NewFile()
	if err := fx.SetSheetName(fx.GetSheetName(0), summarySheet); err != nil {
		fx.Close()
		return nil, err
	}
	for _, name := range []string{variablesSheet, topSheet} {
		if _, err := fx.NewSheet(name); err != nil {
			fx.Close()
			return nil, err
		}
	}

	header, err := fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"2F4F4F"}, Pattern: 1},
	})
	if err != nil {
		fx.Close()
		return nil, err
	}

	for _, write := range []func(*excelize.File, *analysis.Analysis, int) error{
		writeSummarySheet, writeVariablesSheet, writeTopSheet,
	} {
		if err := write(fx, a, header); err != nil {
			fx.Close()
			return nil, fmt.Errorf("failed to build workbook: %w", err)
		}
	}
	return fx, nil
}

func writeSummarySheet(fx *excelize.File, a *analysis.Analysis, header int) error {
	rows := [][]interface{}{
		{"Field", "Value"},
		{"Run", a.RunID.String()},
		{"Source", a.Source.Name},
		{"Min profit", a.Params.MinProfit},
		{"Max drawdown %", a.Params.MaxDrawdown},
		{"Top N", a.Params.TopN},
		{"Total optimizations", a.Summary.TotalRows},
		{"Kept", a.Summary.FilteredRows},
		{"Success rate %", a.Summary.SuccessRate},
	}
	if a.Metrics != nil {
		for _, m := range metricRows(a.Metrics) {
			rows = append(rows, []interface{}{m.label, m.value})
		}
	}
	if err := writeRows(fx, summarySheet, rows); err != nil {
		return err
	}
	return fx.SetCellStyle(summarySheet, "A1", "B1", header)
}

func writeVariablesSheet(fx *excelize.File, a *analysis.Analysis, header int) error {
	rows := [][]interface{}{
		{"Variable", "Category", "Distinct values", "Profit min", "Profit max", "Profit mean", "Rank", "Value", "Mean profit", "Runs", "Total profit"},
	}
	for _, col := range a.Variables.Order {
		s, _ := a.Variables.Get(col)
		for i, tv := range s.TopValues {
			rows = append(rows, []interface{}{
				s.Column, string(s.Category), s.DistinctValues, s.ProfitMin, s.ProfitMax, s.ProfitMean,
				i + 1, tv.Value.Interface(), tv.MeanProfit, tv.Occurrences, tv.TotalProfit,
			})
		}
	}
	if err := writeRows(fx, variablesSheet, rows); err != nil {
		return err
	}
	return fx.SetCellStyle(variablesSheet, "A1", "K1", header)
}

func writeTopSheet(fx *excelize.File, a *analysis.Analysis, header int) error {
	columns := rankedColumns(a)
	head := []interface{}{"Rank", "Row", "Profit"}
	for _, c := range columns {
		head = append(head, c)
	}
	rows := [][]interface{}{head}
	for _, r := range a.Ranking {
		row := []interface{}{r.Rank, r.RowIndex + 1, r.Profit}
		for _, c := range columns {
			row = append(row, r.Values.Get(c).Interface())
		}
		rows = append(rows, row)
	}
	if err := writeRows(fx, topSheet, rows); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(head), 1)
	if err != nil {
		return err
	}
	return fx.SetCellStyle(topSheet, "A1", last, header)
}

func writeRows(fx *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := fx.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
