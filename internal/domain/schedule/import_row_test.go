package schedule_test

import (
	"errors"
	"testing"

	"timetable/internal/domain/schedule"
)

// TestParseImportRow_Valid verifies a complete row decodes into typed fields.
func TestParseImportRow_Valid(t *testing.T) {
	cells := []string{" ЛА-23 ", "Математика", "Сидоров Иван Петрович", "А-101", "1", "9:00", "10:30", "Главный корпус"}
	row, err := schedule.ParseImportRow(cells)
	if err != nil {
		t.Fatalf("ParseImportRow: %v", err)
	}
	want := schedule.ImportRow{
		GroupName: "ЛА-23", Subject: "Математика", TeacherName: "Сидоров Иван Петрович",
		Room: "А-101", DayOfWeek: 1, StartTime: "09:00", EndTime: "10:30", CampusName: "Главный корпус",
	}
	if row != want {
		t.Errorf("row = %+v, want %+v", row, want)
	}

	e := row.Entry(5, 6, 7)
	if e.GroupID != 5 || e.TeacherID != 6 || e.CampusID != 7 {
		t.Errorf("Entry ids = %d/%d/%d, want 5/6/7", e.GroupID, e.TeacherID, e.CampusID)
	}
	if err := e.Validate(); err != nil {
		t.Errorf("built entry should validate: %v", err)
	}
}

// TestParseImportRow_Errors verifies the first bad cell is reported.
func TestParseImportRow_Errors(t *testing.T) {
	tests := []struct {
		name    string
		cells   []string
		wantCol int
		wantErr error
	}{
		{
			name:    "non numeric day",
			cells:   []string{"ЛА-23", "Физика", "Иванов", "101", "пн", "09:00", "10:30", "Главный"},
			wantCol: schedule.ColDay,
			wantErr: schedule.ErrInvalidDay,
		},
		{
			name:    "bad start time",
			cells:   []string{"ЛА-23", "Физика", "Иванов", "101", "2", "девять", "10:30", "Главный"},
			wantCol: schedule.ColStart,
			wantErr: schedule.ErrInvalidTime,
		},
		{
			name:    "short row",
			cells:   []string{"ЛА-23", "Физика", "Иванов", "101", "2", "09:00"},
			wantCol: schedule.ColEnd,
			wantErr: schedule.ErrEmptyTime,
		},
		{
			name:    "empty subject",
			cells:   []string{"ЛА-23", "", "Иванов", "101", "2", "09:00", "10:30", "Главный"},
			wantCol: schedule.ColSubject,
			wantErr: schedule.ErrEmptySubject,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := schedule.ParseImportRow(tt.cells)
			var rowErr *schedule.ImportRowError
			if !errors.As(err, &rowErr) {
				t.Fatalf("error = %v, want *ImportRowError", err)
			}
			if rowErr.Column != tt.wantCol {
				t.Errorf("Column = %d, want %d", rowErr.Column, tt.wantCol)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestCell_OutOfRange verifies short rows read as empty cells.
func TestCell_OutOfRange(t *testing.T) {
	if got := schedule.Cell([]string{"a"}, 3); got != "" {
		t.Errorf("Cell out of range = %q, want empty", got)
	}
	if got := schedule.Cell([]string{" a "}, 0); got != "a" {
		t.Errorf("Cell = %q, want %q", got, "a")
	}
}
