package analysis

import (
	"testing"

	"optiscope/domain/optimization"
	"optiscope/internal/classify"
)

// buildTable converts loosely typed records into a table: float64/int become numbers,
// strings stay strings, nil becomes null.
func buildTable(t *testing.T, columns []string, records ...[]interface{}) *optimization.Table {
	t.Helper()
	rows := make([][]optimization.Value, 0, len(records))
	for _, rec := range records {
		vals := make([]optimization.Value, len(rec))
		for i, cell := range rec {
			switch x := cell.(type) {
			case nil:
				vals[i] = optimization.Null()
			case int:
				vals[i] = optimization.Number(float64(x))
			case float64:
				vals[i] = optimization.Number(x)
			case string:
				vals[i] = optimization.String(x)
			default:
				t.Fatalf("unsupported cell type %T", cell)
			}
		}
		rows = append(rows, vals)
	}
	return optimization.NewTable(columns, rows)
}

func mustFilter(t *testing.T, table *optimization.Table, minProfit, maxDD float64) *FilteredTable {
	t.Helper()
	f, err := Filter(table, classify.Classify(table.Columns), optimization.Thresholds{MinProfit: minProfit, MaxDrawdown: maxDD})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	return f
}

func profitsOf(ranked []optimization.RankedOptimization) []float64 {
	out := make([]float64, len(ranked))
	for i, r := range ranked {
		out[i] = r.Profit
	}
	return out
}

// sampleTable is a small optimization report with mixed variable types.
func sampleTable(t *testing.T) *optimization.Table {
	return buildTable(t,
		[]string{"Pass", "Profit", "Drawdown %", "RSI_Period", "SL_Points", "Mode"},
		[]interface{}{1, 8000, 3.0, 14, 50, "fast"},
		[]interface{}{2, 5000, -9.0, 14, 60, "slow"},
		[]interface{}{3, 9000, -2.0, 21, 50, "fast"},
		[]interface{}{4, 7500, 6.5, 21, 70, "slow"},
		[]interface{}{5, 12000, 7.5, 28, 50, "fast"},
		[]interface{}{6, 7000, 7.0, 28, 40, nil},
		[]interface{}{7, "n/a", 1.0, 14, 50, "fast"},
		[]interface{}{8, 9000, nil, 21, 50, "slow"},
	)
}
