package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReportTable(t *testing.T) {
	rep := &Report{Tables: []TableAnalysis{
		{Profile: FinancialProfile{Table: "P&L", Rows: 12}},
		{Profile: FinancialProfile{Table: "Q", Rows: 3}},
	}}

	ta, ok := rep.Table("Q")
	assert.True(t, ok)
	assert.Equal(t, 3, ta.Profile.Rows)

	_, ok = rep.Table("Skipped")
	assert.False(t, ok)
}
