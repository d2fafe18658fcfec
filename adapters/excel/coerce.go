package excel

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"finprobe/domain/workbook"
)

// TypeCoercer turns raw text cells into typed values with fixed rules
type TypeCoercer struct {
	config CoercionConfig
}

// CoercionConfig defines the coercion rules
type CoercionConfig struct {
	NormalizeStrings bool     `json:"normalize_strings"` // collapse inner whitespace and strip control characters
	DateLayouts      []string `json:"date_layouts"`
}

// DefaultCoercionConfig returns the rules used for CSV input
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		NormalizeStrings: true,
		DateLayouts: []string{
			time.RFC3339,
			"2006-01-02T15:04:05",
			"2006-01-02 15:04:05",
			"2006-01-02",
			"01/02/2006",
			"2006/01/02",
			"02-Jan-2006",
		},
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	return &TypeCoercer{config: config}
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// CoerceValue converts one raw cell: number first, then boolean, then date, then text
func (c *TypeCoercer) CoerceValue(raw string) workbook.Value {
	strVal := strings.TrimSpace(raw)
	if strVal == "" {
		return workbook.NewMissingValue()
	}

	if n, ok := c.tryParseNumeric(strVal); ok {
		return workbook.NewNumericValue(n)
	}
	switch strVal {
	case "TRUE", "True", "true":
		return workbook.NewBoolValue(true)
	case "FALSE", "False", "false":
		return workbook.NewBoolValue(false)
	}
	if t, ok := c.tryParseTimestamp(strVal); ok {
		return workbook.NewDateValue(t)
	}
	return c.coerceToString(strVal)
}

func (c *TypeCoercer) coerceToString(strVal string) workbook.Value {
	if c.config.NormalizeStrings {
		strVal = c.normalizeString(strVal)
	}
	return workbook.NewStringValue(strVal)
}

// tryParseNumeric accepts parentheses negatives, currency symbols, percent
// signs and thousands separators. A lone comma is only a thousands separator
// when every group after it has three digits.
func (c *TypeCoercer) tryParseNumeric(strVal string) (float64, bool) {
	cleanVal := strVal

	isNegative := false
	if strings.HasPrefix(cleanVal, "(") && strings.HasSuffix(cleanVal, ")") {
		cleanVal = strings.TrimSuffix(strings.TrimPrefix(cleanVal, "("), ")")
		isNegative = true
	}

	for _, symbol := range []string{"$", "€", "£", "¥", "USD", "EUR", "GBP", "JPY"} {
		cleanVal = strings.ReplaceAll(cleanVal, symbol, "")
	}
	cleanVal = strings.TrimSpace(cleanVal)
	cleanVal = strings.TrimSuffix(cleanVal, "%")

	hasComma := strings.Contains(cleanVal, ",")
	hasPeriod := strings.Contains(cleanVal, ".")
	hasSpace := strings.Contains(cleanVal, " ")

	switch {
	case hasComma && (hasPeriod || hasSpace) && strings.LastIndex(cleanVal, ",") > strings.LastIndex(cleanVal, "."):
		// 1.234,56 or 1 234,56
		cleanVal = strings.ReplaceAll(cleanVal, ".", "")
		cleanVal = strings.ReplaceAll(cleanVal, " ", "")
		cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
	case hasComma && !hasPeriod:
		if !thousandsGrouped(cleanVal) {
			return 0, false
		}
		cleanVal = strings.ReplaceAll(cleanVal, ",", "")
	default:
		cleanVal = strings.ReplaceAll(cleanVal, ",", "")
		cleanVal = strings.ReplaceAll(cleanVal, " ", "")
	}

	if isNegative {
		cleanVal = "-" + cleanVal
	}

	val, err := strconv.ParseFloat(cleanVal, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}

func thousandsGrouped(s string) bool {
	parts := strings.Split(strings.TrimPrefix(s, "-"), ",")
	if len(parts[0]) == 0 || len(parts[0]) > 3 {
		return false
	}
	for _, p := range parts[1:] {
		if len(p) != 3 {
			return false
		}
	}
	return true
}

func (c *TypeCoercer) tryParseTimestamp(strVal string) (time.Time, bool) {
	for _, layout := range c.config.DateLayouts {
		if t, err := time.Parse(layout, strVal); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (c *TypeCoercer) normalizeString(s string) string {
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)
}
