package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIQRBounds(t *testing.T) {
	// 四分位数按线性插值: Q1=6.5, Q3=9.5, IQR=3
	b := IQRBounds([]float64{5, 7, 9, 11})

	require.True(t, b.Valid)
	assert.InDelta(t, 6.5, b.Q1, 1e-9)
	assert.InDelta(t, 9.5, b.Q3, 1e-9)
	assert.InDelta(t, 2.0, b.Lower, 1e-9)
	assert.InDelta(t, 14.0, b.Upper, 1e-9)
}

func TestIQRBoundsDegenerate(t *testing.T) {
	assert.False(t, IQRBounds(nil).Valid)

	b := IQRBounds([]float64{42})
	require.True(t, b.Valid)
	assert.Equal(t, 42.0, b.Lower)
	assert.Equal(t, 42.0, b.Upper)
}

func TestColumnBoundsSkipsBlanks(t *testing.T) {
	df := flightDF(
		map[string]string{"DEP_DELAY": "5"},
		map[string]string{"DEP_DELAY": ""},
		map[string]string{"DEP_DELAY": "7"},
	)
	b := ColumnBounds(df, "DEP_DELAY")

	require.True(t, b.Valid)
	assert.InDelta(t, 5.5, b.Q1, 1e-9)
	assert.InDelta(t, 6.5, b.Q3, 1e-9)
}

func TestOutlierRowsReportOriginalIndexes(t *testing.T) {
	df := flightDF(
		map[string]string{"DEP_DELAY": "10"},
		map[string]string{"DEP_DELAY": ""},
		map[string]string{"DEP_DELAY": "500"},
	)
	b := Bounds{Lower: 0, Upper: 60, Valid: true}

	assert.Equal(t, []int{2}, OutlierRows(df, "DEP_DELAY", b))
}

func TestClampColumnPreservesBlanksAndGarbage(t *testing.T) {
	df := flightDF(
		map[string]string{"DEP_DELAY": "-100"},
		map[string]string{"DEP_DELAY": ""},
		map[string]string{"DEP_DELAY": "250"},
		map[string]string{"DEP_DELAY": "30"},
	)
	out := ClampColumn(df, "DEP_DELAY", Bounds{Lower: -30, Upper: 60, Valid: true})

	got := out.Col("DEP_DELAY").Records()
	assert.Equal(t, []string{"-30", "", "60", "30"}, got)
}

func TestClampColumnInvalidBoundsNoop(t *testing.T) {
	df := flightDF(map[string]string{"DEP_DELAY": "9999"})
	out := ClampColumn(df, "DEP_DELAY", Bounds{})

	assert.Equal(t, "9999", out.Col("DEP_DELAY").Elem(0).String())
}
