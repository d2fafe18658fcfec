package testkit

import (
	"math"
	"math/rand"
	"time"

	"finprobe/domain/workbook"
)

// FinancialGeneratorConfig configures the monthly P&L generator
type FinancialGeneratorConfig struct {
	Months        int       `json:"months"`
	Segments      []string  `json:"segments"`
	StartDate     time.Time `json:"start_date"`
	BaseRevenue   float64   `json:"base_revenue"`
	MonthlyGrowth float64   `json:"monthly_growth"` // fractional growth per month, e.g. 0.02
	CostRatio     float64   `json:"cost_ratio"`     // cost as a share of revenue
	Noise         float64   `json:"noise"`          // relative gaussian noise on revenue
	MissingRate   float64   `json:"missing_rate"`   // share of revenue cells left blank
	Seed          int64     `json:"seed"`
}

// DefaultFinancialConfig returns a two-year, three-segment ledger
func DefaultFinancialConfig() FinancialGeneratorConfig {
	return FinancialGeneratorConfig{
		Months:        24,
		Segments:      []string{"Retail", "Wholesale", "Online"},
		StartDate:     time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
		BaseRevenue:   10000,
		MonthlyGrowth: 0.02,
		CostRatio:     0.6,
		Noise:         0.05,
		Seed:          42,
	}
}

// FinancialDataGenerator produces deterministic monthly ledgers
type FinancialDataGenerator struct {
	config FinancialGeneratorConfig
	rng    *rand.Rand
}

// NewFinancialDataGenerator creates a generator seeded from config
func NewFinancialDataGenerator(config FinancialGeneratorConfig) *FinancialDataGenerator {
	return &FinancialDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Header is the column layout of generated ledgers
var Header = []string{"Date", "Segment", "Revenue", "Cost", "Profit", "Headcount"}

// Rows generates one row per month and segment, header excluded.
// Revenue grows geometrically per segment; missing revenue leaves cost and profit blank too.
func (g *FinancialDataGenerator) Rows() [][]any {
	var rows [][]any
	for m := 0; m < g.config.Months; m++ {
		date := g.config.StartDate.AddDate(0, m, 0)
		for s, segment := range g.config.Segments {
			base := g.config.BaseRevenue * (1 + 0.5*float64(s))
			revenue := base * math.Pow(1+g.config.MonthlyGrowth, float64(m))
			revenue *= 1 + g.rng.NormFloat64()*g.config.Noise
			revenue = math.Round(revenue*100) / 100
			headcount := 10 + s*5 + g.rng.Intn(3)

			if g.config.MissingRate > 0 && g.rng.Float64() < g.config.MissingRate {
				rows = append(rows, []any{date, segment, nil, nil, nil, headcount})
				continue
			}

			cost := math.Round(revenue*g.config.CostRatio*100) / 100
			profit := math.Round((revenue-cost)*100) / 100
			rows = append(rows, []any{date, segment, revenue, cost, profit, headcount})
		}
	}
	return rows
}

// Sheet returns the generated ledger as a fixture sheet with header
func (g *FinancialDataGenerator) Sheet(name string) Sheet {
	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	return Sheet{Name: name, Rows: append([][]any{header}, g.Rows()...)}
}

// Table returns the generated ledger as an in-memory table, typed the way the loader types it
func (g *FinancialDataGenerator) Table(name string) *workbook.Table {
	rows := g.Rows()
	values := make([][]workbook.Value, len(Header))
	for _, row := range rows {
		for c, cell := range row {
			values[c] = append(values[c], toValue(cell))
		}
	}
	cols := make([]*workbook.Column, len(Header))
	for i, h := range Header {
		cols[i] = workbook.NewColumn(h, values[i])
	}
	return workbook.NewTable(name, len(rows), cols)
}

func toValue(cell any) workbook.Value {
	switch v := cell.(type) {
	case nil:
		return workbook.NewMissingValue()
	case time.Time:
		return workbook.NewDateValue(v)
	case float64:
		return workbook.NewNumericValue(v)
	case int:
		return workbook.NewNumericValue(float64(v))
	case string:
		return workbook.NewStringValue(v)
	}
	return workbook.NewMissingValue()
}
