package data

import (
	"fmt"
	"html/template"
	"time"
)

// User is a registered account.
type User struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	IsAdmin      bool      `db:"is_admin"`
	CreatedAt    time.Time `db:"created_at"`
}

// Category groups courses in the catalog.
type Category struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`

	Courses []*Course `db:"-"`
}

// Course is a catalog entry owning an ordered list of lessons.
type Course struct {
	ID           int64     `db:"id"`
	Title        string    `db:"title"`
	Description  string    `db:"description"`
	CreatedAt    time.Time `db:"created_at"`
	CategoryID   *int64    `db:"category_id"`
	CategoryName *string   `db:"category_name"`
	PriceCents   int64     `db:"price_cents"`
	Image        string    `db:"image"`
	Rating       int       `db:"rating"`
	Instructor   string    `db:"instructor"`

	ImageURL string `db:"-"`
}

// Price formats the course price as a decimal amount, e.g. "12.50".
func (c *Course) Price() string {
	return FormatCents(c.PriceCents)
}

// FormatCents renders an amount of cents with two fraction digits.
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// Lesson is a unit of content within a course. Order is unique per course.
type Lesson struct {
	ID          int64         `db:"id"`
	CourseID    int64         `db:"course_id"`
	Title       string        `db:"title"`
	Content     string        `db:"content"`
	Order       int           `db:"sort_order"`
	HTMLContent template.HTML `db:"-"`
}

// Progress records one user's completion state for one lesson. The existence
// of any row for a course is what makes the user enrolled in it.
type Progress struct {
	ID          int64      `db:"id"`
	UserID      int64      `db:"user_id"`
	LessonID    int64      `db:"lesson_id"`
	CourseID    int64      `db:"course_id"`
	Completed   bool       `db:"completed"`
	CompletedAt *time.Time `db:"completed_at"`

	LessonTitle string `db:"lesson_title"`
	CourseTitle string `db:"course_title"`
}

// Contact is a stored contact-form submission.
type Contact struct {
	ID         int64      `db:"id"`
	Name       string     `db:"name"`
	Email      string     `db:"email"`
	Message    string     `db:"message"`
	CreatedAt  time.Time  `db:"created_at"`
	NotifiedAt *time.Time `db:"notified_at"`
}

// ProgressStats aggregates a user's progress across the courses they track.
type ProgressStats struct {
	TotalLessons     int     `db:"total_lessons"`
	CompletedLessons int     `db:"completed_lessons"`
	CompletionRate   float64 `db:"-"`
}

// DashboardStats holds the counters shown on the admin dashboard.
type DashboardStats struct {
	TotalEnrollments int `db:"total_enrollments"`
	TotalUsers       int `db:"total_users"`
}
