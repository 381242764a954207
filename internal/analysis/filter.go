package analysis

import (
	"math"

	"optiscope/domain/core"
	"optiscope/domain/optimization"
	"optiscope/internal/classify"
)

// FilteredTable is an owned copy of the rows that passed the profit/drawdown predicate.
// A nil *FilteredTable means filtering has not run; a non-nil one with no rows means it ran
// and nothing qualified.
type FilteredTable struct {
	Columns        []string
	Rows           []optimization.Row
	RowIndex       []int // position of each row in the source table
	Thresholds     optimization.Thresholds
	ProfitColumn   string
	DrawdownColumn string
}

// Len returns the number of rows that passed; zero for a nil table
func (f *FilteredTable) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Rows)
}

// Profits returns the profit of every row in order. Rows only reach a FilteredTable with a
// numeric profit, so the slice has one entry per row.
func (f *FilteredTable) Profits() []float64 {
	out := make([]float64, 0, f.Len())
	if f == nil {
		return out
	}
	for _, row := range f.Rows {
		if p, ok := row.Get(f.ProfitColumn).Float(); ok {
			out = append(out, p)
		}
	}
	return out
}

// Drawdowns returns absolute drawdown values; empty when there is no drawdown column
func (f *FilteredTable) Drawdowns() []float64 {
	out := make([]float64, 0, f.Len())
	if f == nil || f.DrawdownColumn == "" {
		return out
	}
	for _, row := range f.Rows {
		if dd, ok := row.Get(f.DrawdownColumn).Float(); ok {
			out = append(out, math.Abs(dd))
		}
	}
	return out
}

// Table exposes the filtered rows as a plain table so it can be fed back into the engine
func (f *FilteredTable) Table() *optimization.Table {
	if f == nil {
		return nil
	}
	return &optimization.Table{Columns: append([]string(nil), f.Columns...), Rows: f.Rows}
}

// Filter keeps rows with profit >= MinProfit and, when a drawdown column exists,
// |drawdown| <= MaxDrawdown. Row order is preserved. Missing or non-numeric cells fail
// the comparison they take part in.
func Filter(table *optimization.Table, cls classify.Classification, th optimization.Thresholds) (*FilteredTable, error) {
	if th.MaxDrawdown < 0 || math.IsNaN(th.MaxDrawdown) {
		return nil, core.NewInvalidThresholdError("max_drawdown", "must be a non-negative percentage")
	}
	if math.IsNaN(th.MinProfit) {
		return nil, core.NewInvalidThresholdError("min_profit", "must be a number")
	}

	var columns []string
	if table != nil {
		columns = table.Columns
	}
	if !cls.HasProfit() {
		return nil, core.NewMissingColumnError("profit", columns)
	}

	out := &FilteredTable{
		Columns:        append([]string(nil), columns...),
		Rows:           []optimization.Row{},
		RowIndex:       []int{},
		Thresholds:     th,
		ProfitColumn:   cls.ProfitColumn,
		DrawdownColumn: cls.DrawdownColumn,
	}
	if table == nil {
		return out, nil
	}

	for i, row := range table.Rows {
		if !passes(row, out.ProfitColumn, out.DrawdownColumn, th) {
			continue
		}
		out.Rows = append(out.Rows, row.Clone())
		out.RowIndex = append(out.RowIndex, i)
	}
	return out, nil
}

func passes(row optimization.Row, profitCol, drawdownCol string, th optimization.Thresholds) bool {
	profit, ok := row.Get(profitCol).Float()
	if !ok || profit < th.MinProfit {
		return false
	}
	if drawdownCol == "" {
		return true
	}
	dd, ok := row.Get(drawdownCol).Float()
	return ok && math.Abs(dd) <= th.MaxDrawdown
}
