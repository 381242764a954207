package optimization

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Kind tags the payload carried by a Value
type Kind int

const (
	KindNull Kind = iota
	KindNumber
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	default:
		return "null"
	}
}

// Value is one table cell: a number, a string, or null.
type Value struct {
	Kind Kind
	Num  float64
	Str  string
}

// Null returns the missing value
func Null() Value { return Value{} }

// Number wraps a float. NaN is stored as null so it never reaches aggregations.
func Number(f float64) Value {
	if math.IsNaN(f) {
		return Null()
	}
	return Value{Kind: KindNumber, Num: f}
}

// String wraps text
func String(s string) Value { return Value{Kind: KindString, Str: s} }

// IsNull reports whether the cell is missing
func (v Value) IsNull() bool { return v.Kind == KindNull }

// Float returns the numeric payload. Strings and nulls report ok=false.
func (v Value) Float() (float64, bool) {
	if v.Kind != KindNumber {
		return 0, false
	}
	return v.Num, true
}

// Interface returns nil, float64 or string
func (v Value) Interface() interface{} {
	switch v.Kind {
	case KindNumber:
		return v.Num
	case KindString:
		return v.Str
	default:
		return nil
	}
}

// Compare orders values naturally: null < numbers < strings, numbers ascending,
// strings lexicographically.
func (v Value) Compare(o Value) int {
	if v.Kind != o.Kind {
		if v.Kind < o.Kind {
			return -1
		}
		return 1
	}
	switch v.Kind {
	case KindNumber:
		switch {
		case v.Num < o.Num:
			return -1
		case v.Num > o.Num:
			return 1
		}
		return 0
	case KindString:
		return strings.Compare(v.Str, o.Str)
	}
	return 0
}

// Equal reports whether both values have the same kind and payload
func (v Value) Equal(o Value) bool { return v.Compare(o) == 0 }

func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindString:
		return v.Str
	default:
		return ""
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindNumber:
		if math.IsInf(v.Num, 0) {
			return []byte("null"), nil
		}
		return json.Marshal(v.Num)
	case KindString:
		return json.Marshal(v.Str)
	default:
		return []byte("null"), nil
	}
}
