package analysis

import (
	"fmt"
	"math"
	"testing"

	"finprobe/internal/config"
	"finprobe/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newComparator() *CategoricalComparator {
	return NewCategoricalComparator(config.Default().Analysis)
}

func labels(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("L%02d", n-i)
	}
	return out
}

func TestCategoricalGroupsByLabel(t *testing.T) {
	table := testkit.Table("Segments",
		testkit.Col("Region", testkit.Text("North", "South", "North", "South", "East", "")),
		testkit.Col("Sales", testkit.Num(1, 2, 3, 4, 5, 6)),
	)

	result := newComparator().Analyze(table)

	assert.True(t, result.AnalysisPerformed)
	assert.Equal(t, []string{"Region"}, result.TextColumns)
	require.Len(t, result.Breakdowns, 1)

	b := result.Breakdowns[0]
	assert.Equal(t, 3, b.DistinctCount)
	require.Len(t, b.Categories, 3)
	assert.Equal(t, "North", b.Categories[0].Label, "first-appearance order")
	assert.Equal(t, 2, b.Categories[0].Count)
	assert.Equal(t, "East", b.Categories[2].Label)
	assert.Equal(t, 1, b.Categories[2].Count)

	require.Len(t, b.Comparisons, 1)
	groups := b.Comparisons[0].Groups
	require.Len(t, groups, 3)
	assert.Equal(t, "East", groups[0].Label, "groups ordered by label")
	assert.Equal(t, "North", groups[1].Label)
	assert.Equal(t, "South", groups[2].Label)

	require.NotNil(t, groups[0].Mean)
	assert.Equal(t, 5.0, *groups[0].Mean)
	assert.Nil(t, groups[0].StdDev, "single value has no deviation")

	require.NotNil(t, groups[1].StdDev)
	assert.InDelta(t, math.Sqrt2, *groups[1].StdDev, 1e-9)
	assert.Equal(t, 2.0, *groups[1].Median)
}

func TestCategoricalDistinctBounds(t *testing.T) {
	table := testkit.Table("Bounds",
		testkit.Col("Single", testkit.Text("a", "a", "a")),
		testkit.Col("Many", testkit.Text(labels(21)...)),
		testkit.Col("Value", testkit.Num(1, 2, 3)),
	)

	result := newComparator().Analyze(table)

	assert.False(t, result.AnalysisPerformed)
	assert.Empty(t, result.Breakdowns)
	assert.Equal(t, []string{"Single", "Many"}, result.TextColumns)
}

func TestCategoricalLabelCap(t *testing.T) {
	values := make([]float64, 15)
	for i := range values {
		values[i] = float64(i)
	}
	table := testkit.Table("Cap",
		testkit.Col("Product", testkit.Text(labels(15)...)),
		testkit.Col("Revenue", testkit.Num(values...)),
	)

	result := newComparator().Analyze(table)

	require.Len(t, result.Breakdowns, 1)
	b := result.Breakdowns[0]
	assert.Equal(t, 15, b.DistinctCount)
	assert.Len(t, b.Categories, 10)
	assert.Equal(t, "L15", b.Categories[0].Label)
	require.Len(t, b.Comparisons, 1)
	assert.Len(t, b.Comparisons[0].Groups, 10)
	assert.Equal(t, "L01", b.Comparisons[0].Groups[0].Label)
}

func TestCategoricalColumnLimits(t *testing.T) {
	nan := math.NaN()
	table := testkit.Table("Limits",
		testkit.Col("T1", testkit.Text("a", "b")),
		testkit.Col("T2", testkit.Text("a", "b")),
		testkit.Col("T3", testkit.Text("a", "b")),
		testkit.Col("T4", testkit.Text("a", "b")),
		testkit.Col("Empty", testkit.Num(nan, nan)),
		testkit.Col("N1", testkit.Num(1, 2)),
		testkit.Col("N2", testkit.Num(1, 2)),
		testkit.Col("N3", testkit.Num(1, 2)),
		testkit.Col("N4", testkit.Num(1, 2)),
	)

	result := newComparator().Analyze(table)

	require.Len(t, result.Breakdowns, 3, "only the first three text columns")
	assert.Equal(t, "T3", result.Breakdowns[2].Column)
	var compared []string
	for _, c := range result.Breakdowns[0].Comparisons {
		compared = append(compared, c.Column)
	}
	assert.Equal(t, []string{"N1", "N2"}, compared, "the all-missing column takes the first slot")
}

func TestCategoricalGroupWithoutNumbers(t *testing.T) {
	table := testkit.Table("Gaps",
		testkit.Col("Team", testkit.Text("x", "y", "y")),
		testkit.Col("Cost", testkit.Num(math.NaN(), 1, 3)),
	)

	groups := newComparator().Analyze(table).Breakdowns[0].Comparisons[0].Groups

	require.Len(t, groups, 2)
	assert.Equal(t, "x", groups[0].Label)
	assert.Equal(t, 0, groups[0].Count)
	assert.Nil(t, groups[0].Mean)
	assert.Nil(t, groups[0].Median)
	require.NotNil(t, groups[1].Mean)
	assert.Equal(t, 2.0, *groups[1].Mean)
}

func TestCategoricalNoTextColumns(t *testing.T) {
	table := testkit.Table("Numbers", testkit.Col("Revenue", testkit.Num(1, 2)))

	result := newComparator().Analyze(table)

	assert.False(t, result.AnalysisPerformed)
	assert.Empty(t, result.TextColumns)
}

func TestCategoricalIgnoresBoolColumns(t *testing.T) {
	table := testkit.Table("Flags",
		testkit.Col("Active", testkit.Bools(true, false, true, false)),
		testkit.Col("Sales", testkit.Num(1, 2, 3, 4)),
	)

	result := newComparator().Analyze(table)

	assert.False(t, result.AnalysisPerformed)
	assert.Empty(t, result.TextColumns)
	assert.Empty(t, result.Breakdowns)
}
