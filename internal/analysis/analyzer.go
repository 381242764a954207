// Package analysis is the optimization-run engine: filter, per-variable statistics,
// top-N ranking and whole-dataset trading metrics.
package analysis

import (
	"math"
	"time"

	"optiscope/domain/core"
	"optiscope/domain/optimization"
	"optiscope/internal"
	"optiscope/internal/classify"
)

// Status tells a complete run apart from one that had nothing to analyze
type Status string

const (
	StatusComplete Status = "complete"
	// StatusEmpty means the input table had no rows.
	StatusEmpty Status = "empty"
	// StatusNoMatches means rows were read but none passed the thresholds.
	StatusNoMatches Status = "no_matches"
)

// Analysis is the immutable outcome of one run over a table
type Analysis struct {
	RunID          core.RunID                         `json:"run_id"`
	CreatedAt      time.Time                          `json:"created_at"`
	Source         optimization.Source                `json:"source"`
	Params         optimization.Params                `json:"parameters"`
	Status         Status                             `json:"status"`
	Classification classify.Classification            `json:"classification"`
	Filtered       *FilteredTable                     `json:"-"`
	Variables      VariableStats                      `json:"variables"`
	Categories     map[optimization.Category][]string `json:"categories"`
	Ranking        []optimization.RankedOptimization  `json:"best_optimizations"`
	Metrics        *optimization.AdvancedMetrics      `json:"advanced_metrics"`
	Summary        optimization.Summary               `json:"summary"`
}

// Columns returns the source column order
func (a *Analysis) Columns() []string {
	if a.Filtered == nil {
		return nil
	}
	return a.Filtered.Columns
}

// Analyzer runs the pipeline. It holds configuration only; every Run builds fresh state.
type Analyzer struct {
	policy    classify.Policy
	topValues int
	metrics   MetricsCalculator
	logger    *internal.Logger
}

// Option configures an Analyzer
type Option func(*Analyzer)

// WithPolicy replaces the column classification policy
func WithPolicy(p classify.Policy) Option {
	return func(a *Analyzer) { a.policy = p }
}

// WithTopValues sets how many best values are kept per variable
func WithTopValues(k int) Option {
	return func(a *Analyzer) {
		if k > 0 {
			a.topValues = k
		}
	}
}

// WithAnnualizationFactor sets the periods per year used by the Calmar ratio
func WithAnnualizationFactor(factor float64) Option {
	return func(a *Analyzer) { a.metrics = NewMetricsCalculator(factor) }
}

// WithLogger replaces the default logger
func WithLogger(l *internal.Logger) Option {
	return func(a *Analyzer) { a.logger = l }
}

// NewAnalyzer creates an analyzer with the default policy, top-5 values and a
// 252-period annualization factor
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		policy:    classify.DefaultPolicy(),
		topValues: DefaultTopValues,
		metrics:   NewMetricsCalculator(DefaultAnnualizationFactor),
		logger:    internal.DefaultLogger,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With("Analyzer")
	return a
}

// Classify applies the analyzer's policy to a column list
func (a *Analyzer) Classify(columns []string) classify.Classification {
	return a.policy.Classify(columns)
}

// Run executes classify, filter, variable statistics, ranking and metrics over table.
//
// An empty or nil table is not an error: the result has StatusEmpty, zero rows everywhere
// and all-zero metrics. When rows exist but none pass the thresholds the stages still run
// over the empty selection and the status is StatusNoMatches. A table without a profit
// column fails the whole run with core.ErrMissingColumn. Problems confined to one variable
// column are reported in Variables.Issues.
func (a *Analyzer) Run(table *optimization.Table, params optimization.Params) (*Analysis, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}

	var columns []string
	if table != nil {
		columns = table.Columns
	}
	cls := a.policy.Classify(columns)

	result := &Analysis{
		RunID:          core.NewRunID(),
		CreatedAt:      time.Now().UTC(),
		Params:         params,
		Status:         StatusComplete,
		Classification: cls,
		Categories:     cls.Buckets(),
	}
	if table != nil {
		result.Source = table.Source
	}

	if table.Len() == 0 {
		a.logger.Warn("run %s: %v", result.RunID, core.ErrEmptyInput)
		return emptyAnalysis(result, columns, params.Thresholds), nil
	}

	if !cls.HasProfit() {
		a.logger.Error("run %s: no profit column among %v", result.RunID, columns)
		return nil, core.NewMissingColumnError("profit", columns)
	}
	a.logger.Debug("run %s: profit column %q, drawdown column %q, %d variables",
		result.RunID, cls.ProfitColumn, cls.DrawdownColumn, len(cls.VariableColumns))
	if !cls.HasDrawdown() {
		a.logger.Warn("run %s: no drawdown column, drawdown filter skipped", result.RunID)
	}

	filtered, err := Filter(table, cls, params.Thresholds)
	if err != nil {
		return nil, err
	}
	result.Filtered = filtered
	result.Summary = optimization.NewSummary(table.Len(), filtered.Len())
	a.logger.Info("run %s: %d/%d optimizations kept (profit >= %.2f, drawdown <= %.2f%%)",
		result.RunID, filtered.Len(), table.Len(), params.MinProfit, params.MaxDrawdown)
	if filtered.Len() == 0 {
		result.Status = StatusNoMatches
	}

	result.Variables, err = AnalyzeVariables(filtered, cls, a.topValues)
	if err != nil {
		return nil, err
	}
	for _, issue := range result.Variables.Issues {
		if issue.Skipped {
			a.logger.Warn("run %s: variable %q skipped: %s", result.RunID, issue.Column, issue.Reason)
		} else {
			a.logger.Debug("run %s: variable %q: %d malformed profit cells ignored", result.RunID, issue.Column, issue.MalformedCells)
		}
	}

	result.Ranking, err = TopN(filtered, params.TopN)
	if err != nil {
		return nil, err
	}

	result.Metrics, err = a.metrics.Compute(filtered)
	if err != nil {
		return nil, err
	}

	return result, nil
}

func emptyAnalysis(result *Analysis, columns []string, th optimization.Thresholds) *Analysis {
	cls := result.Classification
	result.Status = StatusEmpty
	result.Filtered = &FilteredTable{
		Columns:        append([]string{}, columns...),
		Rows:           []optimization.Row{},
		RowIndex:       []int{},
		Thresholds:     th,
		ProfitColumn:   cls.ProfitColumn,
		DrawdownColumn: cls.DrawdownColumn,
	}
	result.Variables = VariableStats{Order: []string{}, Stats: map[string]optimization.VariableStat{}}
	result.Ranking = []optimization.RankedOptimization{}
	result.Metrics = &optimization.AdvancedMetrics{}
	result.Summary = optimization.NewSummary(0, 0)
	return result
}

func validateParams(p optimization.Params) error {
	if p.MaxDrawdown < 0 || math.IsNaN(p.MaxDrawdown) {
		return core.NewInvalidThresholdError("max_drawdown", "must be a non-negative percentage")
	}
	if math.IsNaN(p.MinProfit) {
		return core.NewInvalidThresholdError("min_profit", "must be a number")
	}
	if p.TopN < 1 {
		return core.NewInvalidThresholdError("top_n", "must be a positive integer")
	}
	return nil
}
