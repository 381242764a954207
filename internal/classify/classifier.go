// Package classify maps column names to their role in an optimization report.
//
// Classification is keyword based: a column matches a rule when its lower-cased name contains
// any of the rule's keywords. Rules are evaluated in a fixed order so the same column list
// always yields the same result.
package classify

import (
	"strings"

	"optiscope/domain/optimization"
)

// Role is the result field a target rule resolves
type Role string

const (
	RoleProfit   Role = "profit"
	RoleDrawdown Role = "drawdown"
)

// TargetRule resolves a single column for a role. The first column (in table order)
// matching any keyword wins; a column claimed by an earlier rule is skipped, so a name like
// "Profit/Loss" is never both the profit and the drawdown column.
type TargetRule struct {
	Role     Role
	Keywords []string
}

// CategoryRule assigns variable columns to a semantic bucket
type CategoryRule struct {
	Category optimization.Category
	Keywords []string
}

// Policy is an ordered classification policy
type Policy struct {
	Targets []TargetRule
	// ResultKeywords mark result columns; anything not matching is a variable.
	ResultKeywords []string
	// Categories are checked in order; unmatched variables fall into CategoryOther.
	Categories []CategoryRule
}

// DefaultPolicy returns the keyword tables used for MetaTrader optimization exports
func DefaultPolicy() Policy {
	profit := []string{"profit", "gain", "result"}
	drawdown := []string{"drawdown", "dd", "loss"}

	result := make([]string, 0, 16)
	result = append(result, profit...)
	result = append(result, drawdown...)
	result = append(result, "trades", "total", "net", "gross", "balance", "equity", "pass")

	return Policy{
		Targets: []TargetRule{
			{Role: RoleProfit, Keywords: profit},
			{Role: RoleDrawdown, Keywords: drawdown},
		},
		ResultKeywords: result,
		Categories: []CategoryRule{
			{Category: optimization.CategorySignal, Keywords: []string{"rsi", "ma", "ema", "sma", "macd", "bollinger", "stoch", "period"}},
			{Category: optimization.CategoryRiskManagement, Keywords: []string{"sl", "tp", "stop", "take", "risk", "position", "lot"}},
			{Category: optimization.CategoryTiming, Keywords: []string{"hour", "time", "session", "day", "week"}},
			{Category: optimization.CategoryFilter, Keywords: []string{"filter", "confirm", "trend", "volume"}},
		},
	}
}

// Classification is the outcome of applying a Policy to a column list
type Classification struct {
	ProfitColumn    string   `json:"profit_column,omitempty"`
	DrawdownColumn  string   `json:"drawdown_column,omitempty"`
	ResultColumns   []string `json:"result_columns"`
	VariableColumns []string `json:"variable_columns"`

	categoryOf map[string]optimization.Category
	buckets    map[optimization.Category][]string
}

// HasProfit reports whether a profit column was resolved
func (c Classification) HasProfit() bool { return c.ProfitColumn != "" }

// HasDrawdown reports whether a drawdown column was resolved
func (c Classification) HasDrawdown() bool { return c.DrawdownColumn != "" }

// CategoryOf returns the bucket of a variable column; result columns report ok=false
func (c Classification) CategoryOf(column string) (optimization.Category, bool) {
	cat, ok := c.categoryOf[column]
	return cat, ok
}

// Bucket returns the variable columns in one category, in table order
func (c Classification) Bucket(cat optimization.Category) []string {
	return c.buckets[cat]
}

// Buckets returns every category with its columns; empty categories map to empty slices.
func (c Classification) Buckets() map[optimization.Category][]string {
	out := make(map[optimization.Category][]string, len(optimization.Categories))
	for _, cat := range optimization.Categories {
		out[cat] = append([]string{}, c.buckets[cat]...)
	}
	return out
}

// Classify applies the policy to column names. It is a pure function of its input.
func (p Policy) Classify(columns []string) Classification {
	c := Classification{
		ResultColumns:   []string{},
		VariableColumns: []string{},
		categoryOf:      make(map[string]optimization.Category),
		buckets:         make(map[optimization.Category][]string),
	}

	claimed := make(map[string]bool, len(p.Targets))
	for _, rule := range p.Targets {
		col := firstMatch(columns, rule.Keywords, claimed)
		if col != "" {
			claimed[col] = true
		}
		switch rule.Role {
		case RoleProfit:
			c.ProfitColumn = col
		case RoleDrawdown:
			c.DrawdownColumn = col
		}
	}

	for _, col := range columns {
		if matchesAny(col, p.ResultKeywords) || col == c.ProfitColumn || col == c.DrawdownColumn {
			c.ResultColumns = append(c.ResultColumns, col)
			continue
		}
		c.VariableColumns = append(c.VariableColumns, col)
		cat := p.categorize(col)
		c.categoryOf[col] = cat
		c.buckets[cat] = append(c.buckets[cat], col)
	}

	return c
}

func (p Policy) categorize(column string) optimization.Category {
	for _, rule := range p.Categories {
		if matchesAny(column, rule.Keywords) {
			return rule.Category
		}
	}
	return optimization.CategoryOther
}

// Classify applies DefaultPolicy
func Classify(columns []string) Classification {
	return DefaultPolicy().Classify(columns)
}

func firstMatch(columns []string, keywords []string, skip map[string]bool) string {
	for _, col := range columns {
		if !skip[col] && matchesAny(col, keywords) {
			return col
		}
	}
	return ""
}

func matchesAny(column string, keywords []string) bool {
	lower := strings.ToLower(column)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
