package analysis

import (
	"slices"

	"optiscope/domain/core"
	"optiscope/domain/optimization"
)

// TopN returns the n most profitable filtered runs, best first. Equal profits keep their
// original row order. Asking for more rows than exist returns them all.
func TopN(f *FilteredTable, n int) ([]optimization.RankedOptimization, error) {
	if n < 1 {
		return nil, core.NewInvalidThresholdError("top_n", "must be a positive integer")
	}
	if f == nil {
		return nil, core.ErrNotComputed
	}
	if f.ProfitColumn == "" {
		return nil, core.NewMissingColumnError("profit", f.Columns)
	}

	type candidate struct {
		pos    int
		profit float64
	}
	candidates := make([]candidate, 0, len(f.Rows))
	for i, row := range f.Rows {
		if p, ok := row.Get(f.ProfitColumn).Float(); ok {
			candidates = append(candidates, candidate{pos: i, profit: p})
		}
	}
	slices.SortStableFunc(candidates, func(a, b candidate) int {
		switch {
		case a.profit > b.profit:
			return -1
		case a.profit < b.profit:
			return 1
		}
		return 0
	})
	if len(candidates) > n {
		candidates = candidates[:n]
	}

	ranked := make([]optimization.RankedOptimization, 0, len(candidates))
	for i, c := range candidates {
		src := f.Rows[c.pos]
		values := make(optimization.Row, len(src))
		for _, col := range f.Columns {
			if col == f.ProfitColumn {
				continue
			}
			values[col] = src.Get(col)
		}
		rowIndex := c.pos
		if c.pos < len(f.RowIndex) {
			rowIndex = f.RowIndex[c.pos]
		}
		ranked = append(ranked, optimization.RankedOptimization{
			Rank:     i + 1,
			Profit:   c.profit,
			RowIndex: rowIndex,
			Values:   values,
		})
	}
	return ranked, nil
}
