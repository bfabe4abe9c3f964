package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

const courseColumns = `c.id, c.title, c.description, c.created_at, c.category_id, cat.name AS category_name,
	c.price_cents, c.image, c.rating, c.instructor`

const courseFrom = ` FROM courses c LEFT JOIN categories cat ON cat.id = c.category_id`

// SQLCourseRepository is the sqlx implementation of course storage.
type SQLCourseRepository struct {
	db *sqlx.DB
}

// NewSQLCourseRepository creates a new SQLCourseRepository.
func NewSQLCourseRepository(db *sqlx.DB) *SQLCourseRepository {
	return &SQLCourseRepository{db: db}
}

// GetAllCourses retrieves every course, newest first.
func (r *SQLCourseRepository) GetAllCourses(ctx context.Context) ([]*Course, error) {
	var courses []*Course
	query := `SELECT ` + courseColumns + courseFrom + ` ORDER BY c.id DESC`
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("failed to get all courses: %w", err)
	}
	return courses, nil
}

// likeEscaper quotes LIKE wildcards. The escape character is '!' because a
// backslash literal is read differently by MySQL and Postgres.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// SearchCourses returns courses whose title or description contains q,
// ignoring case. Wildcard characters in q match literally.
func (r *SQLCourseRepository) SearchCourses(ctx context.Context, q string) ([]*Course, error) {
	var courses []*Course
	pattern := "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"
	query := `SELECT ` + courseColumns + courseFrom +
		` WHERE LOWER(c.title) LIKE ? ESCAPE '!' OR LOWER(c.description) LIKE ? ESCAPE '!' ORDER BY c.id DESC`
	if err := r.db.SelectContext(ctx, &courses, r.db.Rebind(query), pattern, pattern); err != nil {
		return nil, fmt.Errorf("failed to search courses: %w", err)
	}
	return courses, nil
}

// GetCourseByID retrieves a single course by its ID.
func (r *SQLCourseRepository) GetCourseByID(ctx context.Context, id int64) (*Course, error) {
	var course Course
	query := `SELECT ` + courseColumns + courseFrom + ` WHERE c.id = ?`
	if err := r.db.GetContext(ctx, &course, r.db.Rebind(query), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("course %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get course by id: %w", err)
	}
	return &course, nil
}

// GetEnrolledCourses returns the distinct courses a user has progress in.
func (r *SQLCourseRepository) GetEnrolledCourses(ctx context.Context, userID int64) ([]*Course, error) {
	var courses []*Course
	query := `SELECT ` + courseColumns + courseFrom +
		` WHERE c.id IN (SELECT p.course_id FROM progress p WHERE p.user_id = ?) ORDER BY c.title`
	if err := r.db.SelectContext(ctx, &courses, r.db.Rebind(query), userID); err != nil {
		return nil, fmt.Errorf("failed to get enrolled courses: %w", err)
	}
	return courses, nil
}

// CreateCourse inserts a new course and sets its ID.
func (r *SQLCourseRepository) CreateCourse(ctx context.Context, course *Course) error {
	query := `INSERT INTO courses (title, description, category_id, price_cents, image, rating, instructor)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	id, err := insertReturningID(ctx, r.db, query,
		course.Title, course.Description, course.CategoryID, course.PriceCents,
		course.Image, course.Rating, course.Instructor)
	if err != nil {
		return fmt.Errorf("failed to execute create course query: %w", err)
	}
	course.ID = id
	return nil
}

// UpdateCourse updates an existing course.
func (r *SQLCourseRepository) UpdateCourse(ctx context.Context, course *Course) error {
	query := `UPDATE courses SET title = :title, description = :description, category_id = :category_id,
		price_cents = :price_cents, image = :image, rating = :rating, instructor = :instructor WHERE id = :id`
	query, args, err := r.db.BindNamed(query, course)
	if err != nil {
		return fmt.Errorf("failed to bind update course query: %w", err)
	}
	// MySQL reports changed rather than matched rows, so an unchanged
	// save affects zero rows; existence is checked by the caller.
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}
	return nil
}

// DeleteCourse removes a course; its lessons and progress rows cascade.
func (r *SQLCourseRepository) DeleteCourse(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM courses WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("course %d: %w", id, ErrNotFound)
	}
	return nil
}
