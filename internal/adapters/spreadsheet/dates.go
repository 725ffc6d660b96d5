package spreadsheet

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// excelEpoch is day zero of the 1900 date system as used by the readers.
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// renderSerial turns a date-formatted numeric cell into text the domain
// parsers accept. Whole numbers stay numbers, since a day-of-week cell may
// carry a date style by accident. Fractions below one are a time of day.
func renderSerial(serial float64) string {
	if serial < 0 || serial == math.Trunc(serial) {
		return strconv.FormatFloat(serial, 'f', -1, 64)
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return strconv.FormatFloat(serial, 'f', -1, 64)
	}
	t = t.Round(time.Second)
	if serial < 1 {
		return t.Format("15:04:05")
	}
	return t.Format("2006-01-02 15:04:05")
}

// xlsCell undoes extrame/xls rendering every custom-format number as an
// RFC3339 timestamp.
func xlsCell(s string) string {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
	if err != nil {
		return s
	}
	return renderSerial(float64(t.Sub(excelEpoch)) / float64(24*time.Hour))
}

// builtinDateFormats are the built-in number format ids that display a
// date or a time.
var builtinDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true, 20: true, 21: true, 22: true,
	27: true, 28: true, 29: true, 30: true, 31: true, 32: true, 33: true, 34: true, 35: true, 36: true,
	45: true, 46: true, 47: true, 50: true, 51: true, 52: true, 53: true, 54: true, 55: true,
	56: true, 57: true, 58: true,
}

// isDateFormat reports whether a custom number format code displays a date
// or time. Quoted literals and bracketed sections are ignored.
func isDateFormat(code string) bool {
	var b strings.Builder
	quoted, bracket := false, false
	for _, r := range strings.ToLower(code) {
		switch {
		case r == '"':
			quoted = !quoted
		case quoted:
		case r == '[':
			bracket = true
		case r == ']':
			bracket = false
		case bracket:
		default:
			b.WriteRune(r)
		}
	}
	return strings.ContainsAny(b.String(), "ydhms")
}

// dateStyles caches, per style id, whether a sheet style formats dates.
type dateStyles struct {
	f     *excelize.File
	cache map[int]bool
}

func (d *dateStyles) isDate(styleID int) bool {
	if v, ok := d.cache[styleID]; ok {
		return v
	}
	v := false
	if style, err := d.f.GetStyle(styleID); err == nil && style != nil {
		v = builtinDateFormats[style.NumFmt]
		if style.CustomNumFmt != nil {
			v = isDateFormat(*style.CustomNumFmt)
		}
	}
	d.cache[styleID] = v
	return v
}

// renderDates rewrites raw numeric cells carrying a date or time style.
func renderDates(f *excelize.File, sheet string, rows [][]string) {
	styles := &dateStyles{f: f, cache: map[int]bool{}}
	for r, row := range rows {
		for c, raw := range row {
			serial, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				continue
			}
			id, err := f.GetCellStyle(sheet, cell)
			if err != nil || id == 0 || !styles.isDate(id) {
				continue
			}
			row[c] = renderSerial(serial)
		}
	}
}
