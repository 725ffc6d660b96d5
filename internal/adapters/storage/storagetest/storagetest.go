// Package storagetest opens throwaway SQLite databases with the full
// schema, for tests of stores, orchestrators and handlers.
package storagetest

import (
	"context"
	"path/filepath"
	"testing"

	"timetable/internal/adapters/storage"
)

// Open creates a SQLite database file in a temp dir, applies the schema and
// closes it when the test ends. A file is used instead of :memory: because
// every pooled connection to :memory: would see a separate database.
func Open(t testing.TB) *storage.DB {
	t.Helper()
	url := "sqlite://" + filepath.Join(t.TempDir(), "timetable.db")
	db, err := storage.Open(context.Background(), url, storage.Options{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	conn := Conn(t, db)
	if err := storage.InitDB(context.Background(), conn, db.Dialect()); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return db
}

// Conn reserves a connection that is released when the test ends.
func Conn(t testing.TB, db *storage.DB) *storage.Conn {
	t.Helper()
	conn, err := db.Conn(context.Background())
	if err != nil {
		t.Fatalf("acquire conn: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// Reference holds the ids of seeded lookup rows, keyed by name.
type Reference struct {
	Campuses map[string]int64
	Teachers map[string]int64
	Groups   map[string]int64
}

// Seed inserts the given campuses, teachers and groups and returns their ids.
func Seed(t testing.TB, db storage.SQLDB, campuses, teachers, groups []string) Reference {
	t.Helper()
	ctx := context.Background()
	ref := Reference{
		Campuses: make(map[string]int64),
		Teachers: make(map[string]int64),
		Groups:   make(map[string]int64),
	}
	insert := func(query, name string) int64 {
		var id int64
		if err := db.QueryRowContext(ctx, query, name).Scan(&id); err != nil {
			t.Fatalf("seed %q: %v", name, err)
		}
		return id
	}
	for _, name := range campuses {
		ref.Campuses[name] = insert("INSERT INTO campuses (name) VALUES (?) RETURNING id", name)
	}
	for _, name := range teachers {
		ref.Teachers[name] = insert("INSERT INTO teachers (full_name) VALUES (?) RETURNING id", name)
	}
	for _, name := range groups {
		ref.Groups[name] = insert(`INSERT INTO "groups" (name) VALUES (?) RETURNING id`, name)
	}
	return ref
}
