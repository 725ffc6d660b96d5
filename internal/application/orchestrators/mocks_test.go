package orchestrators

import (
	"context"
	"errors"
	"time"

	"timetable/internal/adapters/storage/reference"
	domain "timetable/internal/domain/schedule"
)

var fixedNow = time.Date(2025, 9, 1, 8, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

// mockScheduleStore implements every schedule store interface the orchestrators use.
type mockScheduleStore struct {
	entries   map[int64]domain.Entry
	nextID    int64
	createErr error
	// failSubject makes Create fail for entries with this subject.
	failSubject string
}

func newMockScheduleStore() *mockScheduleStore {
	return &mockScheduleStore{entries: make(map[int64]domain.Entry), nextID: 1}
}

// Create implements CreateScheduleStore.
// PRE: e is validated
// POST: e is stored under a fresh id
func (m *mockScheduleStore) Create(_ context.Context, e domain.Entry) (domain.Entry, error) {
	if m.createErr != nil {
		return domain.Entry{}, m.createErr
	}
	if m.failSubject != "" && e.Subject == m.failSubject {
		return domain.Entry{}, errors.New("value too long for type character varying(100)")
	}
	e.ID = m.nextID
	m.nextID++
	m.entries[e.ID] = e
	return e, nil
}

// Update implements UpdateScheduleStore.
// PRE: e.ID is set
// POST: live entry is overwritten; created_at is preserved
func (m *mockScheduleStore) Update(_ context.Context, e domain.Entry) (domain.Entry, bool, error) {
	old, ok := m.entries[e.ID]
	if !ok || old.DeletedAt != nil {
		return domain.Entry{}, false, nil
	}
	e.CreatedAt = old.CreatedAt
	m.entries[e.ID] = e
	return e, true, nil
}

// SoftDelete implements DeleteScheduleStore.
// PRE: none
// POST: live entry is stamped as deleted
func (m *mockScheduleStore) SoftDelete(_ context.Context, id int64, at time.Time) (bool, error) {
	e, ok := m.entries[id]
	if !ok || e.DeletedAt != nil {
		return false, nil
	}
	e.DeletedAt, e.UpdatedAt = &at, at
	m.entries[id] = e
	return true, nil
}

// mockReferenceStore resolves names from fixed maps and counts lookups.
type mockReferenceStore struct {
	groups   map[string]int64
	teachers map[string]int64
	campuses map[string]int64
	calls    int
	err      error
}

func newMockReferenceStore() *mockReferenceStore {
	return &mockReferenceStore{
		groups:   map[string]int64{"ИТ-21": 1, "БИ-11": 2},
		teachers: map[string]int64{"Иванов И.И.": 10, "Петров П.П.": 11},
		campuses: map[string]int64{"Главный": 100},
	}
}

func (m *mockReferenceStore) find(names map[string]int64, name string) (int64, error) {
	m.calls++
	if m.err != nil {
		return 0, m.err
	}
	id, ok := names[name]
	if !ok {
		return 0, reference.ErrNotFound
	}
	return id, nil
}

func (m *mockReferenceStore) FindGroupID(_ context.Context, name string) (int64, error) {
	return m.find(m.groups, name)
}

func (m *mockReferenceStore) FindTeacherID(_ context.Context, name string) (int64, error) {
	return m.find(m.teachers, name)
}

func (m *mockReferenceStore) FindCampusID(_ context.Context, name string) (int64, error) {
	return m.find(m.campuses, name)
}

func ptr[T any](v T) *T { return &v }

// validFields returns a complete field set referencing seeded ids.
func validFields() ScheduleFields {
	return ScheduleFields{
		GroupID:   ptr(int64(1)),
		TeacherID: ptr(int64(10)),
		CampusID:  ptr(int64(100)),
		Subject:   ptr("Математика"),
		Room:      ptr("101"),
		DayOfWeek: ptr(1),
		StartTime: ptr("9:00"),
		EndTime:   ptr("10:30"),
	}
}
