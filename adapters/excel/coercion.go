package excel

import (
	"math"
	"strconv"
	"strings"

	"optiscope/domain/optimization"
)

// CoercionConfig defines how raw cell text becomes a typed value
type CoercionConfig struct {
	AllowPercent       bool `json:"allow_percent"`        // "7.5%" -> 7.5
	AllowDecimalComma  bool `json:"allow_decimal_comma"`  // "1234,56" -> 1234.56
	AllowParenNegative bool `json:"allow_paren_negative"` // "(120)" -> -120
}

// DefaultCoercionConfig returns the rules used for MetaTrader exports
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		AllowPercent:       true,
		AllowDecimalComma:  true,
		AllowParenNegative: true,
	}
}

// CellCoercer turns cell text into optimization values
type CellCoercer struct {
	config CoercionConfig
}

// NewCellCoercer creates a coercer with the given config
func NewCellCoercer(config CoercionConfig) *CellCoercer {
	return &CellCoercer{config: config}
}

// Coerce converts one cell: blank is null, numeric text is a number, anything else a string.
func (c *CellCoercer) Coerce(raw string) optimization.Value {
	s := strings.TrimSpace(raw)
	if s == "" {
		return optimization.Null()
	}
	if f, ok := c.parseNumber(s); ok {
		return optimization.Number(f)
	}
	return optimization.String(s)
}

// CoerceRow coerces a whole record
func (c *CellCoercer) CoerceRow(raw []string) []optimization.Value {
	out := make([]optimization.Value, len(raw))
	for i, cell := range raw {
		out[i] = c.Coerce(cell)
	}
	return out
}

// parseNumber accepts plain floats plus the spreadsheet spellings MetaTrader emits
func (c *CellCoercer) parseNumber(s string) (float64, bool) {
	// Hex floats and Inf/NaN spellings stay text.
	if strings.ContainsAny(s, "xXpP") {
		return 0, false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, finite(f)
	}

	clean := s
	negative := false
	if c.config.AllowParenNegative && strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")") {
		clean = strings.TrimSpace(clean[1 : len(clean)-1])
		negative = true
	}
	if c.config.AllowPercent && strings.HasSuffix(clean, "%") {
		clean = strings.TrimSpace(strings.TrimSuffix(clean, "%"))
	}

	// Thousands separators: regular and non-breaking spaces.
	clean = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "").Replace(clean)

	hasComma := strings.Contains(clean, ",")
	hasPeriod := strings.Contains(clean, ".")
	switch {
	case hasComma && hasPeriod:
		// The separator that comes last is the decimal one.
		if strings.LastIndex(clean, ",") > strings.LastIndex(clean, ".") {
			if !c.config.AllowDecimalComma {
				return 0, false
			}
			clean = strings.ReplaceAll(clean, ".", "")
			clean = strings.ReplaceAll(clean, ",", ".")
		} else {
			clean = strings.ReplaceAll(clean, ",", "")
		}
	case hasComma:
		if strings.Count(clean, ",") > 1 {
			if !groupedThousands(clean, ',') {
				return 0, false
			}
			clean = strings.ReplaceAll(clean, ",", "")
		} else {
			if !c.config.AllowDecimalComma {
				return 0, false
			}
			clean = strings.Replace(clean, ",", ".", 1)
		}
	}

	if clean == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil || !finite(f) {
		return 0, false
	}
	if negative {
		f = -f
	}
	return f, true
}

// groupedThousands checks "1,234,567": every group after the first has exactly three digits.
func groupedThousands(s string, sep byte) bool {
	parts := strings.Split(strings.TrimPrefix(s, "-"), string(sep))
	if len(parts[0]) == 0 || len(parts[0]) > 3 {
		return false
	}
	for _, p := range parts[1:] {
		if len(p) != 3 {
			return false
		}
	}
	return true
}

func finite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}
