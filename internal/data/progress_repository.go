package data

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ProgressRepository stores per-user lesson completion. A user is enrolled in
// a course exactly when at least one of their progress rows references it.
//
// Every insert derives course_id from the lesson row in the same statement,
// so progress.course_id always equals the lesson's course.
type ProgressRepository struct {
	db      *sqlx.DB
	dialect dialect
}

// NewProgressRepository creates a new ProgressRepository.
func NewProgressRepository(db *sqlx.DB) *ProgressRepository {
	return &ProgressRepository{db: db, dialect: dialectFor(db.DriverName())}
}

// ensureQuery inserts an incomplete row for every lesson matching the
// filter that the user does not already track. Existing rows are left
// untouched; the (user_id, lesson_id) unique key decides races.
func (r *ProgressRepository) ensureQuery(lessonFilter string) string {
	return r.dialect.insertIgnore + ` progress (user_id, lesson_id, course_id, completed)
		SELECT u.id, l.id, l.course_id, FALSE FROM users u, lessons l
		WHERE u.id = ? AND l.course_id = ?` + lessonFilter + r.dialect.onConflict
}

// Enroll creates the missing progress rows of a user for every lesson of a
// course and returns how many were added. Enrolling again is a no-op.
func (r *ProgressRepository) Enroll(ctx context.Context, userID, courseID int64) (int64, error) {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(r.ensureQuery("")), userID, courseID)
	if err != nil {
		return 0, fmt.Errorf("failed to enroll user %d in course %d: %w", userID, courseID, err)
	}
	added, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return added, nil
}

// Toggle flips the completion flag of one lesson for a user, creating the
// progress row first when absent. completed_at is stamped when the row
// becomes complete and cleared otherwise. The flip is a single UPDATE so
// concurrent toggles each apply exactly once.
func (r *ProgressRepository) Toggle(ctx context.Context, userID, courseID, lessonID int64) (*Progress, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin toggle transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind(r.ensureQuery(" AND l.id = ?")), userID, courseID, lessonID); err != nil {
		return nil, fmt.Errorf("failed to ensure progress row: %w", err)
	}

	// completed_at is assigned first: MySQL evaluates single-table
	// assignments left to right, the others read the old row.
	flip := `UPDATE progress
		SET completed_at = CASE WHEN completed THEN NULL ELSE CURRENT_TIMESTAMP END,
			completed = NOT completed
		WHERE user_id = ? AND lesson_id = ? AND course_id = ?`
	result, err := tx.ExecContext(ctx, tx.Rebind(flip), userID, lessonID, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to toggle progress: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("lesson %d in course %d: %w", lessonID, courseID, ErrNotFound)
	}

	var progress Progress
	query := `SELECT p.id, p.user_id, p.lesson_id, p.course_id, p.completed, p.completed_at,
			l.title AS lesson_title, c.title AS course_title
		FROM progress p JOIN lessons l ON l.id = p.lesson_id JOIN courses c ON c.id = p.course_id
		WHERE p.user_id = ? AND p.lesson_id = ?`
	if err := tx.GetContext(ctx, &progress, tx.Rebind(query), userID, lessonID); err != nil {
		return nil, fmt.Errorf("failed to read toggled progress: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit toggle: %w", err)
	}
	return &progress, nil
}

// IsEnrolled reports whether the user has any progress row in the course.
func (r *ProgressRepository) IsEnrolled(ctx context.Context, userID, courseID int64) (bool, error) {
	var n int
	query := `SELECT COUNT(*) FROM progress WHERE user_id = ? AND course_id = ?`
	if err := r.db.GetContext(ctx, &n, r.db.Rebind(query), userID, courseID); err != nil {
		return false, fmt.Errorf("failed to check enrollment: %w", err)
	}
	return n > 0, nil
}

const progressSelect = `SELECT p.id, p.user_id, p.lesson_id, p.course_id, p.completed, p.completed_at,
		l.title AS lesson_title, c.title AS course_title
	FROM progress p JOIN lessons l ON l.id = p.lesson_id JOIN courses c ON c.id = p.course_id`

// GetProgressByUser lists all progress rows of a user grouped by course and
// lesson order.
func (r *ProgressRepository) GetProgressByUser(ctx context.Context, userID int64) ([]*Progress, error) {
	var items []*Progress
	query := progressSelect + ` WHERE p.user_id = ? ORDER BY c.title, c.id, l.sort_order`
	if err := r.db.SelectContext(ctx, &items, r.db.Rebind(query), userID); err != nil {
		return nil, fmt.Errorf("failed to get progress by user: %w", err)
	}
	return items, nil
}

// GetProgressByUserAndCourse lists a user's progress rows in one course.
func (r *ProgressRepository) GetProgressByUserAndCourse(ctx context.Context, userID, courseID int64) ([]*Progress, error) {
	var items []*Progress
	query := progressSelect + ` WHERE p.user_id = ? AND p.course_id = ? ORDER BY l.sort_order`
	if err := r.db.SelectContext(ctx, &items, r.db.Rebind(query), userID, courseID); err != nil {
		return nil, fmt.Errorf("failed to get course progress: %w", err)
	}
	return items, nil
}

// GetStats counts the lessons of every course the user has any progress in,
// and the user's completed rows. CompletionRate is left for the caller.
func (r *ProgressRepository) GetStats(ctx context.Context, userID int64) (*ProgressStats, error) {
	var stats ProgressStats
	query := `SELECT
		(SELECT COUNT(*) FROM lessons WHERE course_id IN
			(SELECT course_id FROM progress WHERE user_id = ?)) AS total_lessons,
		(SELECT COUNT(*) FROM progress WHERE user_id = ? AND completed = ?) AS completed_lessons`
	if err := r.db.GetContext(ctx, &stats, r.db.Rebind(query), userID, userID, true); err != nil {
		return nil, fmt.Errorf("failed to get progress stats: %w", err)
	}
	return &stats, nil
}

// CountEnrolledCourses returns how many distinct courses have at least one
// progress row.
func (r *ProgressRepository) CountEnrolledCourses(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(DISTINCT course_id) FROM progress`); err != nil {
		return 0, fmt.Errorf("failed to count enrolled courses: %w", err)
	}
	return n, nil
}
