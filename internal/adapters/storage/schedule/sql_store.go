package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"timetable/internal/adapters/storage"
	domain "timetable/internal/domain/schedule"
)

const entryColumns = "s.id, s.group_id, s.teacher_id, s.campus_id, s.subject, s.room, s.day_of_week, s.start_time, s.end_time, s.created_at, s.updated_at, s.deleted_at"

// SQLStore implements Store over database/sql.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new schedule store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// List returns entries joined with their group, teacher and campus names,
// ordered by day, start time and id. Filter values are bound, never
// interpolated.
// PRE: none
// POST: Returns a non-nil slice
func (s *SQLStore) List(ctx context.Context, filter ListFilter) ([]domain.EntryView, error) {
	var where []string
	var args []any
	if !filter.IncludeDeleted {
		where = append(where, "s.deleted_at IS NULL")
	}
	if filter.GroupID != nil {
		where = append(where, "s.group_id = ?")
		args = append(args, *filter.GroupID)
	}
	if filter.TeacherID != nil {
		where = append(where, "s.teacher_id = ?")
		args = append(args, *filter.TeacherID)
	}

	var b strings.Builder
	b.WriteString("SELECT " + entryColumns + ", g.name, t.full_name, c.name FROM schedules s")
	b.WriteString(` LEFT JOIN "groups" g ON g.id = s.group_id`)
	b.WriteString(" LEFT JOIN teachers t ON t.id = s.teacher_id")
	b.WriteString(" LEFT JOIN campuses c ON c.id = s.campus_id")
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY s.day_of_week, s.start_time, s.id")

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	defer rows.Close()

	list := []domain.EntryView{}
	for rows.Next() {
		var v domain.EntryView
		var groupName, teacherName, campusName sql.NullString
		dest := append(entryDest(&v.Entry), &groupName, &teacherName, &campusName)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		normalize(&v.Entry)
		v.GroupName = nullString(groupName)
		v.TeacherName = nullString(teacherName)
		v.CampusName = nullString(campusName)
		list = append(list, v)
	}
	return list, rows.Err()
}

// Create inserts an entry and returns it with its generated id.
// PRE: e has been validated; CreatedAt and UpdatedAt are set
// POST: Row is persisted, or nothing is (single statement)
func (s *SQLStore) Create(ctx context.Context, e domain.Entry) (domain.Entry, error) {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO schedules (group_id, teacher_id, campus_id, subject, room, day_of_week, start_time, end_time, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		e.GroupID, e.TeacherID, e.CampusID, e.Subject, e.Room, e.DayOfWeek, e.StartTime, e.EndTime, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	if err != nil {
		return domain.Entry{}, err
	}
	return e, nil
}

// Update overwrites every field of a live entry and its updated_at.
// PRE: e has been validated; e.ID > 0; UpdatedAt is set
// POST: Returns the stored entry and true, or false when no live row has e.ID
func (s *SQLStore) Update(ctx context.Context, e domain.Entry) (domain.Entry, bool, error) {
	err := s.db.QueryRowContext(ctx,
		`UPDATE schedules SET group_id = ?, teacher_id = ?, campus_id = ?, subject = ?, room = ?, day_of_week = ?, start_time = ?, end_time = ?, updated_at = ?
		 WHERE id = ? AND deleted_at IS NULL RETURNING created_at`,
		e.GroupID, e.TeacherID, e.CampusID, e.Subject, e.Room, e.DayOfWeek, e.StartTime, e.EndTime, e.UpdatedAt, e.ID,
	).Scan(&e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Entry{}, false, nil
	}
	if err != nil {
		return domain.Entry{}, false, err
	}
	e.CreatedAt = e.CreatedAt.UTC()
	return e, true, nil
}

// SoftDelete stamps updated_at and deleted_at on a live entry.
// PRE: id > 0
// POST: Returns true if a live row was marked
func (s *SQLStore) SoftDelete(ctx context.Context, id int64, at time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE schedules SET updated_at = ?, deleted_at = ? WHERE id = ? AND deleted_at IS NULL",
		at, at, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// entryDest returns scan destinations matching entryColumns. DeletedAt is
// scanned through a helper that sets the pointer only for non-NULL values.
func entryDest(e *domain.Entry) []any {
	return []any{
		&e.ID, &e.GroupID, &e.TeacherID, &e.CampusID, &e.Subject, &e.Room,
		&e.DayOfWeek, &e.StartTime, &e.EndTime, &e.CreatedAt, &e.UpdatedAt,
		&nullTime{dst: &e.DeletedAt},
	}
}

// nullTime scans a nullable timestamp into a *time.Time.
type nullTime struct {
	dst **time.Time
}

func (n *nullTime) Scan(src any) error {
	var nt sql.NullTime
	if err := nt.Scan(src); err != nil {
		return err
	}
	if !nt.Valid {
		*n.dst = nil
		return nil
	}
	t := nt.Time.UTC()
	*n.dst = &t
	return nil
}

func normalize(e *domain.Entry) {
	e.CreatedAt = e.CreatedAt.UTC()
	e.UpdatedAt = e.UpdatedAt.UTC()
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
