package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optiscope/domain/core"
	"optiscope/domain/optimization"
)

func TestTopN_SortsDescendingAndProjectsColumns(t *testing.T) {
	f := mustFilter(t, sampleTable(t), 7000, 7)

	ranked, err := TopN(f, 2)
	require.NoError(t, err)
	require.Len(t, ranked, 2)

	assert.Equal(t, []float64{9000, 8000}, profitsOf(ranked))
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, 2, ranked[0].RowIndex, "row index points into the source table")
	assert.Equal(t, optimization.Number(21), ranked[0].Values["RSI_Period"])
	assert.Equal(t, optimization.String("fast"), ranked[0].Values["Mode"])
	_, hasProfit := ranked[0].Values["Profit"]
	assert.False(t, hasProfit, "profit is carried in the normalized field only")
	assert.Len(t, ranked[0].Values, len(f.Columns)-1)
}

func TestTopN_TiesKeepRowOrder(t *testing.T) {
	table := buildTable(t, []string{"Profit", "Id"},
		[]interface{}{500, "a"},
		[]interface{}{900, "b"},
		[]interface{}{500, "c"},
		[]interface{}{500, "d"},
	)
	ranked, err := TopN(mustFilter(t, table, 0, 0), 10)
	require.NoError(t, err)

	ids := make([]string, len(ranked))
	for i, r := range ranked {
		ids[i] = r.Values["Id"].Str
	}
	assert.Equal(t, []string{"b", "a", "c", "d"}, ids)
}

func TestTopN_PrefixMonotonicity(t *testing.T) {
	f := mustFilter(t, sampleTable(t), -1e12, 100)
	for n1 := 1; n1 <= f.Len(); n1++ {
		for n2 := n1 + 1; n2 <= f.Len()+2; n2++ {
			short, err := TopN(f, n1)
			require.NoError(t, err)
			long, err := TopN(f, n2)
			require.NoError(t, err)
			assert.Equal(t, short, long[:len(short)], "TopN(%d) is a prefix of TopN(%d)", n1, n2)
		}
	}
}

func TestTopN_Totality(t *testing.T) {
	f := mustFilter(t, sampleTable(t), -1e12, 100)
	ranked, err := TopN(f, f.Len()+50)
	require.NoError(t, err)
	require.Len(t, ranked, f.Len())
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Profit, ranked[i].Profit)
	}
}

func TestTopN_Idempotent(t *testing.T) {
	f := mustFilter(t, sampleTable(t), 7000, 7)
	first, err := TopN(f, 3)
	require.NoError(t, err)
	second, err := TopN(f, 3)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestTopN_Errors(t *testing.T) {
	f := mustFilter(t, sampleTable(t), 7000, 7)

	_, err := TopN(f, 0)
	assert.ErrorIs(t, err, core.ErrInvalidThreshold)

	_, err = TopN(nil, 5)
	assert.ErrorIs(t, err, core.ErrNotComputed)

	ranked, err := TopN(&FilteredTable{ProfitColumn: "Profit"}, 5)
	require.NoError(t, err)
	assert.Empty(t, ranked)
}
