package optimization

import (
	"encoding/json"
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_CompareOrdersKindsThenPayload(t *testing.T) {
	values := []Value{String("b"), Number(21), Null(), String("a"), Number(-3), Number(14)}
	sort.SliceStable(values, func(i, j int) bool { return values[i].Compare(values[j]) < 0 })

	want := []Value{Null(), Number(-3), Number(14), Number(21), String("a"), String("b")}
	assert.Equal(t, want, values)
}

func TestValue_NumberAndStringNeverEqual(t *testing.T) {
	assert.False(t, Number(14).Equal(String("14")))
	assert.True(t, Number(14).Equal(Number(14)))
	assert.True(t, Null().Equal(Null()))
}

func TestValue_NaNBecomesNull(t *testing.T) {
	assert.True(t, Number(math.NaN()).IsNull())
	_, ok := Number(math.NaN()).Float()
	assert.False(t, ok)
}

func TestValue_JSON(t *testing.T) {
	row := Row{"a": Number(1.5), "b": String("x"), "c": Null()}
	data, err := json.Marshal(row)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1.5,"b":"x","c":null}`, string(data))

	data, err = json.Marshal(Number(math.Inf(1)))
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func TestNewTable_PadsShortRecords(t *testing.T) {
	table := NewTable([]string{"Profit", "Lots"}, [][]Value{
		{Number(10)},
		{Number(20), Number(0.1), Number(99)},
	})
	require.Equal(t, 2, table.Len())
	assert.True(t, table.Rows[0].Get("Lots").IsNull())
	assert.Len(t, table.Rows[1], 2)
	assert.Equal(t, Number(20), table.Rows[1].Get("Profit"))
}

func TestNewSummary(t *testing.T) {
	assert.Equal(t, Summary{}, NewSummary(0, 0))
	s := NewSummary(8, 2)
	assert.InDelta(t, 25.0, s.SuccessRate, 1e-9)
}
