package profiling

import (
	"math"
	"sort"

	"finprobe/domain/core"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary holds the descriptive statistics of one series.
// StdDev is only meaningful when HasStdDev is set (two or more values).
type Summary struct {
	Count     int
	Mean      float64
	Median    float64
	Min       float64
	Max       float64
	StdDev    float64
	HasStdDev bool
}

// Describe computes count, mean, median, sample standard deviation and range
func Describe(data []float64) (Summary, error) {
	s := Summary{Count: len(data)}
	if len(data) == 0 {
		return s, core.ErrInsufficientData
	}

	var err error
	if s.Mean, err = stats.Mean(data); err != nil {
		return s, err
	}
	if s.Median, err = stats.Median(data); err != nil {
		return s, err
	}
	if s.Min, err = stats.Min(data); err != nil {
		return s, err
	}
	if s.Max, err = stats.Max(data); err != nil {
		return s, err
	}
	s.StdDev, s.HasStdDev = SampleStdDev(data)
	return s, nil
}

// SampleStdDev is the n-1 standard deviation; undefined below two values
func SampleStdDev(data []float64) (float64, bool) {
	if len(data) < 2 {
		return 0, false
	}
	sd, err := stats.StandardDeviationSample(data)
	if err != nil || math.IsNaN(sd) {
		return 0, false
	}
	return sd, true
}

// CoefficientOfVariation returns stddev / |mean|
func CoefficientOfVariation(data []float64) (float64, error) {
	sd, ok := SampleStdDev(data)
	if !ok {
		return 0, core.ErrInsufficientData
	}
	mean, err := stats.Mean(data)
	if err != nil {
		return 0, err
	}
	if mean == 0 {
		return 0, core.ErrZeroMean
	}
	return sd / math.Abs(mean), nil
}

// Quantile returns the p-quantile of sorted data by linear interpolation
// between closest ranks (h = (n-1)p), the definition spreadsheet tools and
// numpy use by default.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}
	h := float64(n-1) * p
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := h - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// Quartiles returns Q1 and Q3
func Quartiles(data []float64) (q1, q3 float64, err error) {
	if len(data) == 0 {
		return 0, 0, core.ErrInsufficientData
	}
	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)
	return Quantile(sorted, 0.25), Quantile(sorted, 0.75), nil
}

// OutlierReport is the outcome of the IQR rule on one series
type OutlierReport struct {
	Q1, Q3     float64
	IQR        float64
	Lower      float64
	Upper      float64
	Count      int
	SharePct   float64
	TotalCount int
}

// Outliers applies the IQR rule with the given multiplier.
// A zero IQR is reported as core.ErrZeroSpread: no value can be flagged.
func Outliers(data []float64, multiplier float64) (OutlierReport, error) {
	q1, q3, err := Quartiles(data)
	if err != nil {
		return OutlierReport{}, err
	}
	iqr := q3 - q1
	r := OutlierReport{Q1: q1, Q3: q3, IQR: iqr, TotalCount: len(data)}
	if iqr <= 0 {
		return r, core.ErrZeroSpread
	}
	r.Lower = q1 - multiplier*iqr
	r.Upper = q3 + multiplier*iqr
	r.Count = detectOutliers(data, r.Lower, r.Upper)
	r.SharePct = float64(r.Count) / float64(len(data)) * 100
	return r, nil
}

// detectOutliers counts values outside [lower, upper]
func detectOutliers(data []float64, lower, upper float64) int {
	outlierCount := 0
	for _, x := range data {
		if x < lower || x > upper {
			outlierCount++
		}
	}
	return outlierCount
}

// TrendSlope fits a least-squares line through (index, value) and returns its slope
func TrendSlope(data []float64) (float64, error) {
	if len(data) < 2 {
		return 0, core.ErrInsufficientData
	}
	xs := floats.Span(make([]float64, len(data)), 0, float64(len(data)-1))
	_, beta := stat.LinearRegression(xs, data, nil, false)
	if math.IsNaN(beta) || math.IsInf(beta, 0) {
		return 0, core.ErrNonFinite
	}
	return beta, nil
}

// Pearson returns the correlation of two equally long series
func Pearson(x, y []float64) (float64, error) {
	if len(x) != len(y) || len(x) < 2 {
		return 0, core.ErrInsufficientData
	}
	if floats.HasNaN(x) || floats.HasNaN(y) {
		return 0, core.ErrNonFinite
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, core.ErrNonFinite
	}
	return r, nil
}
