package excel

import (
	"testing"

	"finprobe/domain/workbook"

	"github.com/stretchr/testify/assert"
)

func TestIsBuiltInDateFormat(t *testing.T) {
	for _, id := range []int{14, 17, 22, 27, 36, 45, 47, 50, 58} {
		assert.True(t, isBuiltInDateFormat(id), "format %d", id)
	}
	for _, id := range []int{0, 1, 2, 4, 10, 13, 23, 37, 44, 48, 49, 59} {
		assert.False(t, isBuiltInDateFormat(id), "format %d", id)
	}
}

func TestIsDateFormatCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"yyyy-mm-dd", true},
		{"dd/mm/yyyy hh:mm", true},
		{"[h]:mm:ss", true},
		{"[$-409]mmmm d, yyyy", true},
		{"#,##0.00", false},
		{`"$"#,##0.00`, false},
		{`0.0 "days"`, false},
		{"[Red]#,##0", false},
		{"#,##0;[Red]-#,##0", false},
		{"General", false},
		{`#,##0.00_);(#,##0.00)`, false},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, isDateFormatCode(tt.code))
		})
	}
}

func TestCoerceValue(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	tests := []struct {
		raw      string
		wantType workbook.ValueType
		wantNum  float64
		wantStr  string
	}{
		{"", workbook.ValueTypeMissing, 0, ""},
		{"   ", workbook.ValueTypeMissing, 0, ""},
		{"42", workbook.ValueTypeNumeric, 42, ""},
		{"-3.5", workbook.ValueTypeNumeric, -3.5, ""},
		{"1e3", workbook.ValueTypeNumeric, 1000, ""},
		{"$1,234.50", workbook.ValueTypeNumeric, 1234.5, ""},
		{"(250)", workbook.ValueTypeNumeric, -250, ""},
		{"15%", workbook.ValueTypeNumeric, 15, ""},
		{"1.234,56", workbook.ValueTypeNumeric, 1234.56, ""},
		{"1,234,567", workbook.ValueTypeNumeric, 1234567, ""},
		{"1,5", workbook.ValueTypeString, 0, "1,5"},
		{"NaN", workbook.ValueTypeString, 0, "NaN"},
		{"North  America", workbook.ValueTypeString, 0, "North America"},
		{"2024-03-01", workbook.ValueTypeDate, 0, ""},
		{"03/01/2024", workbook.ValueTypeDate, 0, ""},
		{"TRUE", workbook.ValueTypeBool, 0, "TRUE"},
		{"false", workbook.ValueTypeBool, 0, "FALSE"},
		{"yes", workbook.ValueTypeString, 0, "yes"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			v := c.CoerceValue(tt.raw)
			assert.Equal(t, tt.wantType, v.Type)
			switch tt.wantType {
			case workbook.ValueTypeNumeric:
				assert.InDelta(t, tt.wantNum, v.Num, 1e-9)
			case workbook.ValueTypeString:
				assert.Equal(t, tt.wantStr, v.Str)
			case workbook.ValueTypeBool:
				assert.Equal(t, tt.wantStr, v.String())
			}
		})
	}
}

func TestHeaderNames(t *testing.T) {
	names := headerNames([]string{"a", "a.1", "a", " ", "b"}, 6)
	assert.Equal(t, []string{"a", "a.1", "a.2", "Unnamed: 3", "b", "Unnamed: 5"}, names)
}
