package analysis

import (
	"fmt"
	"slices"

	"github.com/montanaflynn/stats"

	"optiscope/domain/core"
	"optiscope/domain/optimization"
	"optiscope/internal/classify"
)

// DefaultTopValues is how many best values are kept per variable
const DefaultTopValues = 5

// ColumnIssue records a recoverable problem met while analyzing one column
type ColumnIssue struct {
	Column         string `json:"column"`
	Reason         string `json:"reason"`
	Skipped        bool   `json:"skipped"`
	MalformedCells int    `json:"malformed_cells,omitempty"`
}

// VariableStats is the per-variable result set, ordered like the table's columns
type VariableStats struct {
	Order  []string                             `json:"order"`
	Stats  map[string]optimization.VariableStat `json:"stats"`
	Issues []ColumnIssue                        `json:"issues,omitempty"`
}

// Len returns the number of analyzed variables
func (v VariableStats) Len() int { return len(v.Order) }

// Get returns the stats of one column
func (v VariableStats) Get(column string) (optimization.VariableStat, bool) {
	s, ok := v.Stats[column]
	return s, ok
}

// AnalyzeVariables computes profit statistics for every variable column of the filtered
// table. A column that cannot be analyzed is skipped and reported in Issues; it never stops
// the other columns. A filtered table with no rows yields no stats and no issues.
func AnalyzeVariables(f *FilteredTable, cls classify.Classification, topK int) (VariableStats, error) {
	result := VariableStats{
		Order: []string{},
		Stats: make(map[string]optimization.VariableStat),
	}
	if f == nil {
		return result, core.ErrNotComputed
	}
	if f.ProfitColumn == "" {
		return result, core.NewMissingColumnError("profit", f.Columns)
	}
	if topK < 1 {
		topK = DefaultTopValues
	}
	if f.Len() == 0 {
		return result, nil
	}
	malformedProfit := firstMalformedProfit(f)

	for _, col := range cls.VariableColumns {
		stat, malformed, err := analyzeColumn(f, col, topK)
		if err != nil {
			result.Issues = append(result.Issues, ColumnIssue{
				Column:         col,
				Reason:         err.Error(),
				Skipped:        true,
				MalformedCells: malformed,
			})
			continue
		}
		if malformed > 0 {
			result.Issues = append(result.Issues, ColumnIssue{
				Column:         col,
				Reason:         malformedProfit.Error(),
				MalformedCells: malformed,
			})
		}
		if cat, ok := cls.CategoryOf(col); ok {
			stat.Category = cat
		}
		result.Order = append(result.Order, col)
		result.Stats[col] = stat
	}
	return result, nil
}

// firstMalformedProfit describes the first profit cell that is present but not numeric,
// numbering rows from 1 in source order.
func firstMalformedProfit(f *FilteredTable) error {
	for i, row := range f.Rows {
		p := row.Get(f.ProfitColumn)
		if _, ok := p.Float(); ok || p.IsNull() {
			continue
		}
		line := i + 1
		if i < len(f.RowIndex) {
			line = f.RowIndex[i] + 1
		}
		return core.NewMalformedValueError(f.ProfitColumn, line, p.String())
	}
	return core.ErrMalformedValue
}

// analyzeColumn groups the filtered rows by the column's values. It also returns how many
// profit cells were present but not numeric.
func analyzeColumn(f *FilteredTable, column string, topK int) (optimization.VariableStat, int, error) {
	stat := optimization.VariableStat{Column: column, Category: optimization.CategoryOther}

	obs := make([]observation, 0, len(f.Rows))
	malformed := 0
	for _, row := range f.Rows {
		v := row.Get(column)
		p := row.Get(f.ProfitColumn)
		if v.IsNull() || p.IsNull() {
			continue
		}
		profit, ok := p.Float()
		if !ok {
			malformed++
			continue
		}
		obs = append(obs, observation{value: v, profit: profit})
	}
	if len(obs) == 0 {
		return stat, malformed, fmt.Errorf("%w: column %q has no usable rows", core.ErrEmptyInput, column)
	}

	all := make(stats.Float64Data, len(obs))
	for i, o := range obs {
		all[i] = o.profit
	}
	mean, err := all.Mean()
	if err != nil {
		return stat, malformed, err
	}

	groups := groupObservations(obs)
	values := make([]optimization.TopValue, 0, len(groups))
	for gi, g := range groups {
		profits := make(stats.Float64Data, len(g.Items))
		for i, o := range g.Items {
			profits[i] = o.profit
		}
		gMean, _ := profits.Mean()
		gMin, _ := profits.Min()
		gMax, _ := profits.Max()
		gSum, _ := profits.Sum()

		if gi == 0 || gMin < stat.ProfitMin {
			stat.ProfitMin = gMin
		}
		if gi == 0 || gMax > stat.ProfitMax {
			stat.ProfitMax = gMax
		}
		values = append(values, optimization.TopValue{
			Value:       g.Key,
			MeanProfit:  gMean,
			Occurrences: len(g.Items),
			TotalProfit: gSum,
		})
	}

	// Stable: equal means keep ascending value order.
	slices.SortStableFunc(values, func(a, b optimization.TopValue) int {
		switch {
		case a.MeanProfit > b.MeanProfit:
			return -1
		case a.MeanProfit < b.MeanProfit:
			return 1
		}
		return 0
	})
	if len(values) > topK {
		values = values[:topK]
	}

	stat.DistinctValues = len(groups)
	stat.Rows = len(obs)
	stat.ProfitMean = mean
	stat.TopValues = values
	return stat, malformed, nil
}
