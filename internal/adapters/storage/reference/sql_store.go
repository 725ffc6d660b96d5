package reference

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"timetable/internal/adapters/storage"
	"timetable/internal/domain/campus"
	"timetable/internal/domain/group"
	"timetable/internal/domain/teacher"
)

// SQLStore implements Store over database/sql.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new reference store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// ListCampuses returns every campus ordered by id.
// PRE: none
// POST: Returns a non-nil slice
func (s *SQLStore) ListCampuses(ctx context.Context) ([]campus.Campus, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, address FROM campuses ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list campuses: %w", err)
	}
	defer rows.Close()

	list := []campus.Campus{}
	for rows.Next() {
		var c campus.Campus
		var address sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &address); err != nil {
			return nil, err
		}
		c.Address = nullString(address)
		list = append(list, c)
	}
	return list, rows.Err()
}

// ListTeachers returns every teacher ordered by full name.
// PRE: none
// POST: Returns a non-nil slice
func (s *SQLStore) ListTeachers(ctx context.Context) ([]teacher.Teacher, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, full_name, email, phone FROM teachers ORDER BY full_name, id")
	if err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	defer rows.Close()

	list := []teacher.Teacher{}
	for rows.Next() {
		var t teacher.Teacher
		var email, phone sql.NullString
		if err := rows.Scan(&t.ID, &t.FullName, &email, &phone); err != nil {
			return nil, err
		}
		t.Email, t.Phone = nullString(email), nullString(phone)
		list = append(list, t)
	}
	return list, rows.Err()
}

// ListGroups returns every group ordered by name.
// PRE: none
// POST: Returns a non-nil slice
func (s *SQLStore) ListGroups(ctx context.Context) ([]group.Group, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, campus_id, year FROM "groups" ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	list := []group.Group{}
	for rows.Next() {
		var g group.Group
		var campusID sql.NullInt64
		var year sql.NullInt32
		if err := rows.Scan(&g.ID, &g.Name, &campusID, &year); err != nil {
			return nil, err
		}
		if campusID.Valid {
			g.CampusID = &campusID.Int64
		}
		if year.Valid {
			y := int(year.Int32)
			g.Year = &y
		}
		list = append(list, g)
	}
	return list, rows.Err()
}

// FindGroupID resolves a group by exact name. Duplicate names resolve to
// the oldest row.
// PRE: name is trimmed
// POST: Returns the id or ErrNotFound
func (s *SQLStore) FindGroupID(ctx context.Context, name string) (int64, error) {
	return s.findID(ctx, `SELECT id FROM "groups" WHERE name = ? ORDER BY id LIMIT 1`, name)
}

// FindTeacherID resolves a teacher by exact full name.
func (s *SQLStore) FindTeacherID(ctx context.Context, fullName string) (int64, error) {
	return s.findID(ctx, "SELECT id FROM teachers WHERE full_name = ? ORDER BY id LIMIT 1", fullName)
}

// FindCampusID resolves a campus by exact name.
func (s *SQLStore) FindCampusID(ctx context.Context, name string) (int64, error) {
	return s.findID(ctx, "SELECT id FROM campuses WHERE name = ? ORDER BY id LIMIT 1", name)
}

func (s *SQLStore) findID(ctx context.Context, query, name string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, query, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return id, err
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
