package spreadsheet

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// TemplateSheet is the sheet name used for generated workbooks.
const TemplateSheet = "Расписание"

// TemplateHeader lists the import columns in positional order.
var TemplateHeader = []any{
	"Группа", "Предмет", "Преподаватель", "Аудитория",
	"День недели", "Начало", "Окончание", "Кампус",
}

// WriteRows writes rows as the only sheet of a new .xlsx workbook. Row 0
// lands on sheet row 1.
// PRE: w is writable
// POST: A complete workbook has been written to w
func WriteRows(w io.Writer, sheet string, rows [][]any) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("set %s: %w", cell, err)
			}
		}
	}
	if err := f.SetColWidth(sheet, "A", "H", 18); err != nil {
		return err
	}
	return f.Write(w)
}

// WriteTemplate writes an empty import workbook with the header row and
// one example row.
func WriteTemplate(w io.Writer) error {
	return WriteRows(w, TemplateSheet, [][]any{
		TemplateHeader,
		{"ИТ-21", "Математика", "Иванов И.И.", "101", 1, "09:00", "10:30", "Главный"},
	})
}
