package excel

import (
	"strconv"
	"strings"
	"time"

	"finprobe/domain/workbook"

	"github.com/xuri/excelize/v2"
)

// isBuiltInDateFormat reports whether a built-in number format id renders a date or time
func isBuiltInDateFormat(id int) bool {
	switch {
	case id >= 14 && id <= 22:
		return true
	case id >= 27 && id <= 36:
		return true
	case id >= 45 && id <= 47:
		return true
	case id >= 50 && id <= 58:
		return true
	}
	return false
}

// isDateFormatCode reports whether a custom format code contains date or time
// tokens outside quoted literals, escapes and bracketed sections
func isDateFormatCode(code string) bool {
	// only the positive section decides
	if i := strings.Index(code, ";"); i >= 0 {
		code = code[:i]
	}
	lower := strings.ToLower(code)

	inQuote := false
	inBracket := false
	for i := 0; i < len(lower); i++ {
		ch := lower[i]
		switch {
		case inQuote:
			if ch == '"' {
				inQuote = false
			}
		case inBracket:
			if ch == ']' {
				inBracket = false
			}
		case ch == '"':
			inQuote = true
		case ch == '[':
			// [h], [mm] elapsed-time tokens still count
			end := strings.IndexByte(lower[i:], ']')
			if end > 0 {
				token := lower[i+1 : i+end]
				if token != "" && strings.Trim(token, "hms") == "" {
					return true
				}
			}
			inBracket = true
		case ch == '\\' || ch == '_' || ch == '*':
			i++
		case ch == 'y' || ch == 'm' || ch == 'd' || ch == 'h' || ch == 's':
			return true
		}
	}
	return false
}

// cellTyper converts raw sheet cells into typed values
type cellTyper struct {
	f          *excelize.File
	sheet      string
	date1904   bool
	styleDates map[int]bool
}

func newCellTyper(f *excelize.File, sheet string, date1904 bool, styleDates map[int]bool) *cellTyper {
	return &cellTyper{f: f, sheet: sheet, date1904: date1904, styleDates: styleDates}
}

// value types the raw cell at (col, row), both 1-based
func (t *cellTyper) value(col, row int, raw string) (workbook.Value, error) {
	if strings.TrimSpace(raw) == "" {
		return workbook.NewMissingValue(), nil
	}

	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return workbook.Value{}, err
	}
	cellType, err := t.f.GetCellType(t.sheet, ref)
	if err != nil {
		return workbook.Value{}, err
	}

	switch cellType {
	case excelize.CellTypeBool:
		return workbook.NewBoolValue(raw == "1" || strings.EqualFold(raw, "true")), nil
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeError, excelize.CellTypeFormula:
		if cellType == excelize.CellTypeFormula {
			if n, err := strconv.ParseFloat(raw, 64); err == nil {
				return t.number(ref, n)
			}
		}
		return workbook.NewStringValue(raw), nil
	case excelize.CellTypeDate:
		if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			return workbook.NewDateValue(ts), nil
		}
		if ts, err := time.Parse("2006-01-02T15:04:05", raw); err == nil {
			return workbook.NewDateValue(ts), nil
		}
		return workbook.NewStringValue(raw), nil
	}

	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return workbook.NewStringValue(raw), nil
	}
	return t.number(ref, n)
}

// number returns a date when the cell's number format is a date format
func (t *cellTyper) number(ref string, n float64) (workbook.Value, error) {
	styleID, err := t.f.GetCellStyle(t.sheet, ref)
	if err != nil {
		return workbook.Value{}, err
	}
	if !t.isDateStyle(styleID) {
		return workbook.NewNumericValue(n), nil
	}
	ts, err := excelize.ExcelDateToTime(n, t.date1904)
	if err != nil {
		// out-of-range serials stay numbers
		return workbook.NewNumericValue(n), nil
	}
	return workbook.NewDateValue(ts), nil
}

func (t *cellTyper) isDateStyle(styleID int) bool {
	if styleID <= 0 {
		return false
	}
	if isDate, ok := t.styleDates[styleID]; ok {
		return isDate
	}
	isDate := false
	if style, err := t.f.GetStyle(styleID); err == nil && style != nil {
		isDate = isBuiltInDateFormat(style.NumFmt)
		if style.CustomNumFmt != nil {
			isDate = isDateFormatCode(*style.CustomNumFmt)
		}
	}
	t.styleDates[styleID] = isDate
	return isDate
}
