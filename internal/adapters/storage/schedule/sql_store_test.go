package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timetable/internal/adapters/storage"
	"timetable/internal/adapters/storage/storagetest"
	domain "timetable/internal/domain/schedule"
)

var testNow = time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)

type fixture struct {
	store *SQLStore
	conn  *storage.Conn
	ref   storagetest.Reference
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := storagetest.Open(t)
	conn := storagetest.Conn(t, db)
	ref := storagetest.Seed(t, conn,
		[]string{"Главный"},
		[]string{"Иванов И.И.", "Петров П.П."},
		[]string{"ИТ-21", "БИ-11"},
	)
	return fixture{store: NewSQLStore(conn), conn: conn, ref: ref}
}

func (f fixture) entry(group, teacher string, day int, start string) domain.Entry {
	return domain.Entry{
		GroupID:   f.ref.Groups[group],
		TeacherID: f.ref.Teachers[teacher],
		CampusID:  f.ref.Campuses["Главный"],
		Subject:   "Математика",
		Room:      "101",
		DayOfWeek: day,
		StartTime: start,
		EndTime:   "23:59",
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}
}

func (f fixture) create(t *testing.T, e domain.Entry) domain.Entry {
	t.Helper()
	created, err := f.store.Create(context.Background(), e)
	require.NoError(t, err)
	return created
}

// get reads a row by id, soft-deleted or not, bypassing the store.
func (f fixture) get(t *testing.T, id int64) domain.Entry {
	t.Helper()
	var e domain.Entry
	require.NoError(t, f.conn.QueryRowContext(context.Background(),
		"SELECT "+entryColumns+" FROM schedules s WHERE s.id = ?", id).Scan(entryDest(&e)...))
	normalize(&e)
	return e
}

func TestSQLStore_CreateAndGet(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, f.entry("ИТ-21", "Иванов И.И.", 1, "09:00"))
	assert.Positive(t, created.ID)

	got := f.get(t, created.ID)
	assert.Equal(t, "Математика", got.Subject)
	assert.Equal(t, "09:00", got.StartTime)
	assert.True(t, got.CreatedAt.Equal(testNow))
	assert.Nil(t, got.DeletedAt)
}

func TestSQLStore_CreateUnknownReference(t *testing.T) {
	f := newFixture(t)
	e := f.entry("ИТ-21", "Иванов И.И.", 1, "09:00")
	e.TeacherID = 9999

	_, err := f.store.Create(context.Background(), e)
	require.Error(t, err)
	assert.True(t, storage.IsForeignKeyViolation(err))
}

func TestSQLStore_ListOrderAndJoins(t *testing.T) {
	f := newFixture(t)
	f.create(t, f.entry("ИТ-21", "Иванов И.И.", 3, "09:00"))
	f.create(t, f.entry("ИТ-21", "Иванов И.И.", 1, "13:30"))
	f.create(t, f.entry("ИТ-21", "Петров П.П.", 1, "09:00"))

	list, err := f.store.List(context.Background(), ListFilter{})
	require.NoError(t, err)
	require.Len(t, list, 3)

	assert.Equal(t, 1, list[0].DayOfWeek)
	assert.Equal(t, "09:00", list[0].StartTime)
	assert.Equal(t, "13:30", list[1].StartTime)
	assert.Equal(t, 3, list[2].DayOfWeek)

	require.NotNil(t, list[0].GroupName)
	assert.Equal(t, "ИТ-21", *list[0].GroupName)
	require.NotNil(t, list[0].TeacherName)
	assert.Equal(t, "Петров П.П.", *list[0].TeacherName)
	require.NotNil(t, list[0].CampusName)
	assert.Equal(t, "Главный", *list[0].CampusName)
}

func TestSQLStore_ListFilters(t *testing.T) {
	f := newFixture(t)
	f.create(t, f.entry("ИТ-21", "Иванов И.И.", 1, "09:00"))
	f.create(t, f.entry("БИ-11", "Иванов И.И.", 2, "09:00"))
	f.create(t, f.entry("БИ-11", "Петров П.П.", 1, "10:00"))
	ctx := context.Background()

	groupID := f.ref.Groups["БИ-11"]
	list, err := f.store.List(ctx, ListFilter{GroupID: &groupID})
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, v := range list {
		assert.Equal(t, groupID, v.GroupID)
	}

	teacherID := f.ref.Teachers["Иванов И.И."]
	list, err = f.store.List(ctx, ListFilter{GroupID: &groupID, TeacherID: &teacherID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].DayOfWeek)
}

func TestSQLStore_ListEmptyIsNotNil(t *testing.T) {
	f := newFixture(t)
	list, err := f.store.List(context.Background(), ListFilter{})
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestSQLStore_Update(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, f.entry("ИТ-21", "Иванов И.И.", 1, "09:00"))

	later := testNow.Add(time.Hour)
	changed := created
	changed.Subject = "Физика"
	changed.UpdatedAt = later
	updated, ok, err := f.store.Update(context.Background(), changed)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Физика", updated.Subject)
	assert.True(t, updated.CreatedAt.Equal(testNow))
	assert.True(t, updated.UpdatedAt.Equal(later))

	got := f.get(t, created.ID)
	assert.Equal(t, "Физика", got.Subject)
}

func TestSQLStore_UpdateMissing(t *testing.T) {
	f := newFixture(t)
	e := f.entry("ИТ-21", "Иванов И.И.", 1, "09:00")
	e.ID = 777

	_, ok, err := f.store.Update(context.Background(), e)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLStore_SoftDelete(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, f.entry("ИТ-21", "Иванов И.И.", 1, "09:00"))
	ctx := context.Background()
	at := testNow.Add(2 * time.Hour)

	ok, err := f.store.SoftDelete(ctx, created.ID, at)
	require.NoError(t, err)
	assert.True(t, ok)

	// hidden from listings but still stored
	list, err := f.store.List(ctx, ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	all, err := f.store.List(ctx, ListFilter{IncludeDeleted: true})
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.NotNil(t, all[0].DeletedAt)
	assert.True(t, all[0].DeletedAt.Equal(at))
	assert.True(t, all[0].UpdatedAt.Equal(at))

	// a second delete and an update both miss the dead row
	ok, err = f.store.SoftDelete(ctx, created.ID, at)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = f.store.Update(ctx, created)
	require.NoError(t, err)
	assert.False(t, ok)
}
