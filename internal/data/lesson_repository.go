package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// LessonRepository handles database operations for lessons.
type LessonRepository struct {
	db *sqlx.DB
}

// NewLessonRepository creates a new LessonRepository.
func NewLessonRepository(db *sqlx.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

// GetLessonsByCourseID lists a course's lessons by ascending order.
func (r *LessonRepository) GetLessonsByCourseID(ctx context.Context, courseID int64) ([]*Lesson, error) {
	var lessons []*Lesson
	query := `SELECT id, course_id, title, content, sort_order FROM lessons WHERE course_id = ? ORDER BY sort_order`
	if err := r.db.SelectContext(ctx, &lessons, r.db.Rebind(query), courseID); err != nil {
		return nil, fmt.Errorf("failed to get lessons by course id: %w", err)
	}
	return lessons, nil
}

// GetLessonByID retrieves a single lesson.
func (r *LessonRepository) GetLessonByID(ctx context.Context, id int64) (*Lesson, error) {
	var lesson Lesson
	query := `SELECT id, course_id, title, content, sort_order FROM lessons WHERE id = ?`
	if err := r.db.GetContext(ctx, &lesson, r.db.Rebind(query), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("lesson %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get lesson by id: %w", err)
	}
	return &lesson, nil
}

// CreateLesson inserts a lesson. A second lesson with an order already used
// in the same course fails with ErrDuplicate.
func (r *LessonRepository) CreateLesson(ctx context.Context, lesson *Lesson) error {
	query := `INSERT INTO lessons (course_id, title, content, sort_order) VALUES (?, ?, ?, ?)`
	id, err := insertReturningID(ctx, r.db, query, lesson.CourseID, lesson.Title, lesson.Content, lesson.Order)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("lesson order %d in course %d: %w", lesson.Order, lesson.CourseID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create lesson: %w", err)
	}
	lesson.ID = id
	return nil
}

// UpdateLessonByOrder rewrites the title and content of the lesson holding
// the given order in a course.
func (r *LessonRepository) UpdateLessonByOrder(ctx context.Context, lesson *Lesson) (bool, error) {
	query := `UPDATE lessons SET title = ?, content = ? WHERE course_id = ? AND sort_order = ?`
	existing, err := r.countByOrder(ctx, lesson.CourseID, lesson.Order)
	if err != nil {
		return false, err
	}
	if existing == 0 {
		return false, nil
	}
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), lesson.Title, lesson.Content, lesson.CourseID, lesson.Order); err != nil {
		return false, fmt.Errorf("failed to update lesson: %w", err)
	}
	return true, nil
}

// MaxOrder returns the highest order used in a course, or 0 when it has
// no lessons.
func (r *LessonRepository) MaxOrder(ctx context.Context, courseID int64) (int, error) {
	var max sql.NullInt64
	query := `SELECT MAX(sort_order) FROM lessons WHERE course_id = ?`
	if err := r.db.GetContext(ctx, &max, r.db.Rebind(query), courseID); err != nil {
		return 0, fmt.Errorf("failed to get max lesson order: %w", err)
	}
	return int(max.Int64), nil
}

func (r *LessonRepository) countByOrder(ctx context.Context, courseID int64, order int) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM lessons WHERE course_id = ? AND sort_order = ?`
	if err := r.db.GetContext(ctx, &n, r.db.Rebind(query), courseID, order); err != nil {
		return 0, fmt.Errorf("failed to count lessons: %w", err)
	}
	return n, nil
}
