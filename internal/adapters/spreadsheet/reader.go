// Package spreadsheet reads uploaded workbooks into rows of trimmed text
// cells and writes the import template.
package spreadsheet

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// ErrMalformed wraps every failure to turn the upload into rows.
var ErrMalformed = errors.New("malformed spreadsheet")

// Format is a workbook container format.
type Format int

const (
	FormatUnknown Format = iota
	FormatXLSX
	FormatXLS
)

var (
	zipMagic  = []byte("PK\x03\x04")
	ole2Magic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// Detect identifies the workbook format from its leading bytes.
func Detect(data []byte) Format {
	switch {
	case bytes.HasPrefix(data, zipMagic):
		return FormatXLSX
	case bytes.HasPrefix(data, ole2Magic):
		return FormatXLS
	}
	return FormatUnknown
}

// DecodeBase64 decodes an uploaded file. A data URL prefix such as
// "data:application/vnd.ms-excel;base64," and embedded whitespace are ignored.
// PRE: none
// POST: Returns the raw bytes, or an error wrapping ErrMalformed
func DecodeBase64(s string) ([]byte, error) {
	if i := strings.Index(s, ";base64,"); i >= 0 && strings.HasPrefix(s, "data:") {
		s = s[i+len(";base64,"):]
	}
	s = strings.Join(strings.Fields(s), "")
	if s == "" {
		return nil, fmt.Errorf("%w: empty file", ErrMalformed)
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64: %v", ErrMalformed, err)
	}
	return data, nil
}

// ReadFirstSheet returns every row of the first worksheet, header included.
// Row i of the result is sheet row i+1; blank rows come back as empty slices.
// PRE: data is a complete .xlsx or .xls file
// POST: Returns the rows, or an error wrapping ErrMalformed
func ReadFirstSheet(data []byte) ([][]string, error) {
	switch Detect(data) {
	case FormatXLSX:
		return readXLSX(data)
	case FormatXLS:
		return readXLS(data)
	}
	return nil, fmt.Errorf("%w: not an .xlsx or .xls workbook", ErrMalformed)
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: no worksheet found", ErrMalformed)
	}
	// raw values keep full precision; date styles are applied by renderDates
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	renderDates(f, sheets[0], rows)
	return rows, nil
}

// readXLS reads the first sheet of a BIFF workbook. The decoder panics on
// some truncated files, so panics are reported as malformed input.
func readXLS(data []byte) (rows [][]string, err error) {
	defer func() {
		if r := recover(); r != nil {
			rows, err = nil, fmt.Errorf("%w: %v", ErrMalformed, r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if wb.NumSheets() == 0 {
		return nil, fmt.Errorf("%w: no worksheet found", ErrMalformed)
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("%w: no worksheet found", ErrMalformed)
	}

	rows = make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, []string{})
			continue
		}
		cells := make([]string, row.LastCol())
		for c := range cells {
			cells[c] = xlsCell(row.Col(c))
		}
		rows = append(rows, cells)
	}
	return trimTrailingEmpty(rows), nil
}

// trimTrailingEmpty drops blank rows at the end, matching excelize.GetRows.
func trimTrailingEmpty(rows [][]string) [][]string {
	for len(rows) > 0 && isBlank(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	return rows
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
