// Package report renders an Analysis as text, JSON, Markdown/HTML and XLSX.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"optiscope/domain/core"
	"optiscope/domain/optimization"
	"optiscope/internal/analysis"
	"optiscope/internal/classify"
)

// Export is the machine-readable shape of an Analysis
type Export struct {
	RunID             core.RunID                         `json:"run_id"`
	CreatedAt         time.Time                          `json:"created_at"`
	Status            analysis.Status                    `json:"status"`
	Source            optimization.Source                `json:"source"`
	Parameters        optimization.Params                `json:"parameters"`
	Summary           optimization.Summary               `json:"summary"`
	AdvancedMetrics   optimization.AdvancedMetrics       `json:"advanced_metrics"`
	Classification    classify.Classification            `json:"classification"`
	Categories        map[optimization.Category][]string `json:"categories"`
	VariableStats     []optimization.VariableStat        `json:"variable_stats"`
	BestOptimizations []optimization.RankedOptimization  `json:"best_optimizations"`
	Issues            []analysis.ColumnIssue             `json:"issues"`
}

// NewExport flattens an Analysis, keeping variables in table column order
func NewExport(a *analysis.Analysis) Export {
	e := Export{
		RunID:             a.RunID,
		CreatedAt:         a.CreatedAt,
		Status:            a.Status,
		Source:            a.Source,
		Parameters:        a.Params,
		Summary:           a.Summary,
		Classification:    a.Classification,
		Categories:        a.Categories,
		VariableStats:     make([]optimization.VariableStat, 0, a.Variables.Len()),
		BestOptimizations: a.Ranking,
		Issues:            a.Variables.Issues,
	}
	if a.Metrics != nil {
		e.AdvancedMetrics = *a.Metrics
	}
	for _, col := range a.Variables.Order {
		if s, ok := a.Variables.Get(col); ok {
			e.VariableStats = append(e.VariableStats, s)
		}
	}
	if e.BestOptimizations == nil {
		e.BestOptimizations = []optimization.RankedOptimization{}
	}
	if e.Issues == nil {
		e.Issues = []analysis.ColumnIssue{}
	}
	return e
}

// WriteJSON writes the indented export of a
func WriteJSON(w io.Writer, a *analysis.Analysis) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewExport(a)); err != nil {
		return fmt.Errorf("failed to encode analysis: %w", err)
	}
	return nil
}

// SaveJSON writes the export of a to path
func SaveJSON(path string, a *analysis.Analysis) error {
	return writeFile(path, func(w io.Writer) error { return WriteJSON(w, a) })
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
