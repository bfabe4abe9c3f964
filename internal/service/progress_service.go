package service

import (
	"context"
	"go-elearn-app/internal/data"
	"math"
)

// ProgressRepository defines the interface for progress tracking storage.
type ProgressRepository interface {
	Enroll(ctx context.Context, userID, courseID int64) (int64, error)
	Toggle(ctx context.Context, userID, courseID, lessonID int64) (*data.Progress, error)
	IsEnrolled(ctx context.Context, userID, courseID int64) (bool, error)
	GetProgressByUser(ctx context.Context, userID int64) ([]*data.Progress, error)
	GetProgressByUserAndCourse(ctx context.Context, userID, courseID int64) ([]*data.Progress, error)
	GetStats(ctx context.Context, userID int64) (*data.ProgressStats, error)
	CountEnrolledCourses(ctx context.Context) (int, error)
}

// UserCounter counts registered accounts.
type UserCounter interface {
	CountUsers(ctx context.Context) (int, error)
}

// ProgressOverview is the content of the progress page.
type ProgressOverview struct {
	Stats *data.ProgressStats
	Items []*data.Progress
}

// Dashboard is the content of the administrator dashboard.
type Dashboard struct {
	Courses []*data.Course
	Stats   data.DashboardStats
}

// ProgressService implements enrollment and lesson completion.
type ProgressService struct {
	progress ProgressRepository
	courses  CourseRepository
	users    UserCounter
}

// NewProgressService creates a new ProgressService.
func NewProgressService(progress ProgressRepository, courses CourseRepository, users UserCounter) *ProgressService {
	return &ProgressService{progress: progress, courses: courses, users: users}
}

// Enroll creates the user's missing progress rows for every lesson of the
// course. It returns the course so callers can name it.
func (s *ProgressService) Enroll(ctx context.Context, userID, courseID int64) (*data.Course, error) {
	course, err := s.courses.GetCourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if _, err := s.progress.Enroll(ctx, userID, courseID); err != nil {
		return nil, err
	}
	return course, nil
}

// ToggleLesson flips the completion of one lesson of a course.
func (s *ProgressService) ToggleLesson(ctx context.Context, userID, courseID, lessonID int64) (*data.Progress, error) {
	return s.progress.Toggle(ctx, userID, courseID, lessonID)
}

// IsEnrolled reports whether the user has any progress in the course.
func (s *ProgressService) IsEnrolled(ctx context.Context, userID, courseID int64) (bool, error) {
	return s.progress.IsEnrolled(ctx, userID, courseID)
}

// Stats computes the user's completion figures. The rate is a percentage
// rounded to two decimals, and 0 when the user tracks no lessons.
func (s *ProgressService) Stats(ctx context.Context, userID int64) (*data.ProgressStats, error) {
	stats, err := s.progress.GetStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats.CompletionRate = CompletionRate(stats.CompletedLessons, stats.TotalLessons)
	return stats, nil
}

// CompletionRate returns completed/total as a percentage with two decimals.
func CompletionRate(completed, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(completed)/float64(total)*100*100) / 100
}

// Overview returns the stats and every progress row of the user.
func (s *ProgressService) Overview(ctx context.Context, userID int64) (*ProgressOverview, error) {
	stats, err := s.Stats(ctx, userID)
	if err != nil {
		return nil, err
	}
	items, err := s.progress.GetProgressByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ProgressOverview{Stats: stats, Items: items}, nil
}

// ProgressByUser lists the user's progress rows for the profile page.
func (s *ProgressService) ProgressByUser(ctx context.Context, userID int64) ([]*data.Progress, error) {
	return s.progress.GetProgressByUser(ctx, userID)
}

// Dashboard collects the administrator overview.
func (s *ProgressService) Dashboard(ctx context.Context) (*Dashboard, error) {
	courses, err := s.courses.GetAllCourses(ctx)
	if err != nil {
		return nil, err
	}
	enrolled, err := s.progress.CountEnrolledCourses(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.users.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	return &Dashboard{
		Courses: courses,
		Stats:   data.DashboardStats{TotalEnrollments: enrolled, TotalUsers: users},
	}, nil
}
