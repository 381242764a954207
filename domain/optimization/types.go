package optimization

// Thresholds are the filter parameters of one analysis run
type Thresholds struct {
	MinProfit   float64 `json:"min_profit"`
	MaxDrawdown float64 `json:"max_drawdown"` // percentage magnitude
}

// Params are everything the caller controls for one run
type Params struct {
	Thresholds
	TopN int `json:"top_n"`
}

// DefaultParams mirrors the defaults the original optimizer workflow used
func DefaultParams() Params {
	return Params{
		Thresholds: Thresholds{MinProfit: 7000, MaxDrawdown: 7.0},
		TopN:       10,
	}
}

// TopValue aggregates the runs sharing one value of a variable
type TopValue struct {
	Value       Value   `json:"value"`
	MeanProfit  float64 `json:"mean_profit"`
	Occurrences int     `json:"occurrences"`
	TotalProfit float64 `json:"total_profit"`
}

// VariableStat summarizes how profit varies with one input variable
type VariableStat struct {
	Column         string     `json:"column"`
	Category       Category   `json:"category"`
	DistinctValues int        `json:"distinct_values"`
	Rows           int        `json:"rows"`
	ProfitMin      float64    `json:"profit_min"`
	ProfitMax      float64    `json:"profit_max"`
	ProfitMean     float64    `json:"profit_mean"` // over all rows, not the mean of group means
	TopValues      []TopValue `json:"top_values"`
}

// RankedOptimization is one filtered run in the top-N list
type RankedOptimization struct {
	Rank     int     `json:"rank"`
	Profit   float64 `json:"profit"`
	RowIndex int     `json:"row_index"` // position in the source table
	Values   Row     `json:"values"`    // every other column, as loaded
}

// AdvancedMetrics are whole-dataset trading metrics over the filtered runs
type AdvancedMetrics struct {
	TotalOptimizations int     `json:"total_optimizations"`
	TotalProfit        float64 `json:"total_profit"`
	AverageProfit      float64 `json:"average_profit"`
	MaxProfit          float64 `json:"max_profit"`
	MinProfit          float64 `json:"min_profit"`
	MaxDrawdown        float64 `json:"max_drawdown"`
	AverageDrawdown    float64 `json:"average_drawdown"`
	WinRate            float64 `json:"win_rate"`
	ProfitFactor       float64 `json:"profit_factor"`
	RiskRewardRatio    float64 `json:"risk_reward_ratio"`
	SharpeRatio        float64 `json:"sharpe_ratio"`
	CalmarRatio        float64 `json:"calmar_ratio"`
	RecoveryFactor     float64 `json:"recovery_factor"`
	WinningRuns        int     `json:"winning_runs"`
	LosingRuns         int     `json:"losing_runs"`
	AverageWin         float64 `json:"average_win"`
	AverageLoss        float64 `json:"average_loss"`
}

// Summary is the headline count of a run
type Summary struct {
	TotalRows    int     `json:"total_rows"`
	FilteredRows int     `json:"filtered_rows"`
	SuccessRate  float64 `json:"success_rate"` // percent of rows passing the filter
}

// NewSummary derives the success rate, zero when there are no rows
func NewSummary(total, filtered int) Summary {
	s := Summary{TotalRows: total, FilteredRows: filtered}
	if total > 0 {
		s.SuccessRate = float64(filtered) / float64(total) * 100
	}
	return s
}

// Category is the semantic bucket of a variable column
type Category string

const (
	CategorySignal         Category = "signal"
	CategoryRiskManagement Category = "risk_management"
	CategoryTiming         Category = "timing"
	CategoryFilter         Category = "filter"
	CategoryOther          Category = "other"
)

// Categories lists every bucket in classification priority order, "other" last
var Categories = []Category{
	CategorySignal,
	CategoryRiskManagement,
	CategoryTiming,
	CategoryFilter,
	CategoryOther,
}
