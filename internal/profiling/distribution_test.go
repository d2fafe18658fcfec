package profiling

import (
	"math"
	"testing"

	"finprobe/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	s, err := Describe([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	require.NoError(t, err)

	assert.Equal(t, 8, s.Count)
	assert.InDelta(t, 5.0, s.Mean, 1e-12)
	assert.InDelta(t, 4.5, s.Median, 1e-12)
	assert.Equal(t, 2.0, s.Min)
	assert.Equal(t, 9.0, s.Max)
	assert.True(t, s.HasStdDev)
	assert.InDelta(t, math.Sqrt(32.0/7.0), s.StdDev, 1e-9, "sample (n-1) deviation")
}

func TestDescribeSingleValue(t *testing.T) {
	s, err := Describe([]float64{42})
	require.NoError(t, err)
	assert.False(t, s.HasStdDev)
	assert.Equal(t, 42.0, s.Mean)

	_, err = Describe(nil)
	assert.ErrorIs(t, err, core.ErrInsufficientData)
}

func TestCoefficientOfVariation(t *testing.T) {
	cv, err := CoefficientOfVariation([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(32.0/7.0)/5, cv, 1e-9)

	cv, err = CoefficientOfVariation([]float64{-2, -4, -4, -4, -5, -5, -7, -9})
	require.NoError(t, err)
	assert.Greater(t, cv, 0.0, "negative mean uses its magnitude")

	_, err = CoefficientOfVariation([]float64{-1, 1, -1, 1})
	assert.ErrorIs(t, err, core.ErrZeroMean)

	_, err = CoefficientOfVariation([]float64{1})
	assert.ErrorIs(t, err, core.ErrInsufficientData)
}

func TestQuartilesLinearInterpolation(t *testing.T) {
	q1, q3, err := Quartiles([]float64{4, 1, 3, 2})
	require.NoError(t, err)
	assert.InDelta(t, 1.75, q1, 1e-12)
	assert.InDelta(t, 3.25, q3, 1e-12)

	q1, q3, err = Quartiles([]float64{7})
	require.NoError(t, err)
	assert.Equal(t, 7.0, q1)
	assert.Equal(t, 7.0, q3)

	assert.True(t, math.IsNaN(Quantile(nil, 0.5)))
	assert.Equal(t, 4.0, Quantile([]float64{1, 2, 3, 4}, 1))
}

func TestOutliers(t *testing.T) {
	r, err := Outliers([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 100}, 1.5)
	require.NoError(t, err)

	assert.InDelta(t, 3.25, r.Q1, 1e-12)
	assert.InDelta(t, 7.75, r.Q3, 1e-12)
	assert.InDelta(t, 14.5, r.Upper, 1e-12)
	assert.Equal(t, 1, r.Count)
	assert.InDelta(t, 10.0, r.SharePct, 1e-12)
	assert.Equal(t, 10, r.TotalCount)
}

func TestOutliersZeroSpread(t *testing.T) {
	r, err := Outliers([]float64{5, 5, 5, 5, 5, 5, 50}, 1.5)
	assert.ErrorIs(t, err, core.ErrZeroSpread)
	assert.Equal(t, 0, r.Count)
}

func TestTrendSlope(t *testing.T) {
	slope, err := TrendSlope([]float64{1, 3, 5, 7})
	require.NoError(t, err)
	assert.InDelta(t, 2.0, slope, 1e-9)

	slope, err = TrendSlope([]float64{10, 8, 6})
	require.NoError(t, err)
	assert.InDelta(t, -2.0, slope, 1e-9)

	_, err = TrendSlope([]float64{1})
	assert.ErrorIs(t, err, core.ErrInsufficientData)
}

func TestPearson(t *testing.T) {
	r, err := Pearson([]float64{1, 2, 3}, []float64{2, 4, 6})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, r, 1e-9)

	r, err = Pearson([]float64{1, 2, 3}, []float64{3, 2, 1})
	require.NoError(t, err)
	assert.InDelta(t, -1.0, r, 1e-9)

	_, err = Pearson([]float64{1, 2, 3}, []float64{5, 5, 5})
	assert.ErrorIs(t, err, core.ErrNonFinite)

	_, err = Pearson([]float64{1, 2}, []float64{1})
	assert.ErrorIs(t, err, core.ErrInsufficientData)
}
