package schedule

import "strings"

// ImportColumns is the number of positional cells in an import row:
// group, subject, teacher, room, day, start, end, campus.
const ImportColumns = 8

// Positional column indexes of an import row.
const (
	ColGroup = iota
	ColSubject
	ColTeacher
	ColRoom
	ColDay
	ColStart
	ColEnd
	ColCampus
)

// ImportRow is one decoded spreadsheet row. Names are still unresolved;
// the importer turns them into ids before building an Entry.
type ImportRow struct {
	GroupName   string
	Subject     string
	TeacherName string
	Room        string
	DayOfWeek   int
	StartTime   string
	EndTime     string
	CampusName  string
}

// ImportRowError describes the cell that made a row undecodable.
type ImportRowError struct {
	Column int
	Value  string
	Err    error
}

// Error implements the error interface.
func (e *ImportRowError) Error() string {
	return e.Err.Error() + ": " + strings.TrimSpace(e.Value)
}

// Unwrap exposes the underlying domain error to errors.Is.
func (e *ImportRowError) Unwrap() error {
	return e.Err
}

// ParseImportRow decodes the positional cells of a spreadsheet row.
// Missing trailing cells are treated as empty.
// PRE: cells is one sheet row, header excluded
// POST: Returns a fully populated ImportRow, or *ImportRowError naming the
// first bad cell
func ParseImportRow(cells []string) (ImportRow, error) {
	row := ImportRow{
		GroupName:   Cell(cells, ColGroup),
		Subject:     Cell(cells, ColSubject),
		TeacherName: Cell(cells, ColTeacher),
		Room:        Cell(cells, ColRoom),
		CampusName:  Cell(cells, ColCampus),
	}
	if row.Subject == "" {
		return ImportRow{}, &ImportRowError{Column: ColSubject, Err: ErrEmptySubject}
	}

	day, err := ParseDay(Cell(cells, ColDay))
	if err != nil {
		return ImportRow{}, &ImportRowError{Column: ColDay, Value: Cell(cells, ColDay), Err: err}
	}
	row.DayOfWeek = day

	if row.StartTime, err = ParseClock(Cell(cells, ColStart)); err != nil {
		return ImportRow{}, &ImportRowError{Column: ColStart, Value: Cell(cells, ColStart), Err: err}
	}
	if row.EndTime, err = ParseClock(Cell(cells, ColEnd)); err != nil {
		return ImportRow{}, &ImportRowError{Column: ColEnd, Value: Cell(cells, ColEnd), Err: err}
	}
	return row, nil
}

// Entry builds a schedule entry from the row and resolved reference ids.
func (r ImportRow) Entry(groupID, teacherID, campusID int64) Entry {
	return Entry{
		GroupID:   groupID,
		TeacherID: teacherID,
		CampusID:  campusID,
		Subject:   r.Subject,
		Room:      r.Room,
		DayOfWeek: r.DayOfWeek,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
	}
}

// Cell returns the trimmed cell at idx, or "" when the row is shorter.
func Cell(cells []string, idx int) string {
	if idx < 0 || idx >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[idx])
}
