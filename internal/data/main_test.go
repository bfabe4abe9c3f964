//go:build integration

package data

import (
	"context"
	"go-elearn-app/internal/config"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
)

// setupTestDB creates a private in-memory SQLite database with the real
// schema applied. It returns the database and a teardown function.
func setupTestDB(t *testing.T) (*sqlx.DB, func()) {
	t.Helper()

	// Use a non-shared in-memory database for complete test isolation.
	db, err := NewDB(config.DBConfig{Driver: "sqlite3", DSN: "file::memory:?_foreign_keys=on"})
	if err != nil {
		t.Fatalf("Failed to connect to sqlite test database: %v", err)
	}

	schema, err := os.ReadFile("../../migrations/sqlite3/000001_initial_schema.up.sql")
	if err != nil {
		t.Fatalf("Failed to read schema: %v", err)
	}
	db.MustExec(string(schema))

	return db, func() { db.Close() }
}

// setupSharedFileDB creates a file-backed SQLite database whose pool holds
// several connections, so concurrent callers really run side by side.
// Transactions take the write lock up front and waiters retry for a while
// instead of failing with SQLITE_BUSY.
func setupSharedFileDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "elearn.db") + "?_foreign_keys=on&_busy_timeout=10000&_txlock=immediate"
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		t.Fatalf("Failed to open sqlite file database: %v", err)
	}
	db.SetMaxOpenConns(8)
	t.Cleanup(func() { db.Close() })

	schema, err := os.ReadFile("../../migrations/sqlite3/000001_initial_schema.up.sql")
	if err != nil {
		t.Fatalf("Failed to read schema: %v", err)
	}
	db.MustExec(string(schema))
	return db
}

// fixture holds the rows seeded by seedCourse.
type fixture struct {
	User    *User
	Course  *Course
	Lessons []*Lesson
}

// seedCourse creates user "alice" and course "Intro to Testing" with three
// lessons ordered 1, 2, 3.
func seedCourse(t *testing.T, db *sqlx.DB) *fixture {
	t.Helper()
	ctx := context.Background()

	user := &User{Username: "alice", Email: "alice@example.com", PasswordHash: "x"}
	if err := NewUserRepository(db).CreateUser(ctx, user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	course := &Course{Title: "Intro to Testing", Description: "Tests all the way down", Rating: 5}
	if err := NewSQLCourseRepository(db).CreateCourse(ctx, course); err != nil {
		t.Fatalf("failed to create course: %v", err)
	}

	lessons := NewLessonRepository(db)
	f := &fixture{User: user, Course: course}
	for i, title := range []string{"Why test", "Table tests", "Fakes"} {
		lesson := &Lesson{CourseID: course.ID, Title: title, Content: "# " + title, Order: i + 1}
		if err := lessons.CreateLesson(ctx, lesson); err != nil {
			t.Fatalf("failed to create lesson: %v", err)
		}
		f.Lessons = append(f.Lessons, lesson)
	}
	return f
}
