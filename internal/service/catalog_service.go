package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"go-elearn-app/internal/data"
	"go-elearn-app/internal/logger"
	"go-elearn-app/internal/storage"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// CourseRepository defines the interface for database operations on courses.
type CourseRepository interface {
	GetAllCourses(ctx context.Context) ([]*data.Course, error)
	SearchCourses(ctx context.Context, q string) ([]*data.Course, error)
	GetCourseByID(ctx context.Context, id int64) (*data.Course, error)
	GetEnrolledCourses(ctx context.Context, userID int64) ([]*data.Course, error)
	CreateCourse(ctx context.Context, course *data.Course) error
	UpdateCourse(ctx context.Context, course *data.Course) error
	DeleteCourse(ctx context.Context, id int64) error
}

// CategoryRepository defines the interface for reading categories.
type CategoryRepository interface {
	GetAll(ctx context.Context) ([]*data.Category, error)
	GetByID(ctx context.Context, id int64) (*data.Category, error)
}

// LessonRepository defines the interface for reading lessons.
type LessonRepository interface {
	GetLessonsByCourseID(ctx context.Context, courseID int64) ([]*data.Lesson, error)
}

// EnrollmentReader answers enrollment questions for the course pages.
type EnrollmentReader interface {
	IsEnrolled(ctx context.Context, userID, courseID int64) (bool, error)
	GetProgressByUserAndCourse(ctx context.Context, userID, courseID int64) ([]*data.Progress, error)
}

// IndexPage is the home page content.
type IndexPage struct {
	Query      string
	Courses    []*data.Course
	Categories []*data.Category
}

// LessonView is a lesson with its rendered content and the viewer's state.
type LessonView struct {
	*data.Lesson
	Completed bool
}

// CourseDetail is everything the course page shows.
type CourseDetail struct {
	Course      *data.Course
	Description template.HTML
	Lessons     []*LessonView
	Enrolled    bool
}

// CatalogService provides the browsing pages and administrator course management.
type CatalogService struct {
	courses    CourseRepository
	categories CategoryRepository
	lessons    LessonRepository
	enrollment EnrollmentReader
	images     storage.ImageStore
	validator  *Validator
	sanitizer  *bluemonday.Policy
	markdown   goldmark.Markdown
	log        logger.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(courses CourseRepository, categories CategoryRepository, lessons LessonRepository,
	enrollment EnrollmentReader, images storage.ImageStore, v *Validator, log logger.Logger) *CatalogService {
	return &CatalogService{
		courses:    courses,
		categories: categories,
		lessons:    lessons,
		enrollment: enrollment,
		images:     images,
		validator:  v,
		sanitizer:  bluemonday.UGCPolicy(),
		markdown:   goldmark.New(goldmark.WithExtensions(extension.GFM)),
		log:        log,
	}
}

// Index lists the courses matching q, or all courses when q is empty,
// together with every category and its courses.
func (s *CatalogService) Index(ctx context.Context, q string) (*IndexPage, error) {
	q = strings.TrimSpace(q)
	all, err := s.courses.GetAllCourses(ctx)
	if err != nil {
		return nil, err
	}
	courses := all
	if q != "" {
		if courses, err = s.courses.SearchCourses(ctx, q); err != nil {
			return nil, err
		}
	}
	categories, err := s.categories.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[int64][]*data.Course)
	for _, c := range all {
		if c.CategoryID != nil {
			byCategory[*c.CategoryID] = append(byCategory[*c.CategoryID], c)
		}
	}
	for _, cat := range categories {
		cat.Courses = byCategory[cat.ID]
	}

	s.attachImageURLs(ctx, all)
	if q != "" {
		s.attachImageURLs(ctx, courses)
	}
	return &IndexPage{Query: q, Courses: courses, Categories: categories}, nil
}

// ListCourses returns every course.
func (s *CatalogService) ListCourses(ctx context.Context) ([]*data.Course, error) {
	courses, err := s.courses.GetAllCourses(ctx)
	if err != nil {
		return nil, err
	}
	s.attachImageURLs(ctx, courses)
	return courses, nil
}

// Categories returns every category for the course form.
func (s *CatalogService) Categories(ctx context.Context) ([]*data.Category, error) {
	return s.categories.GetAll(ctx)
}

// GetCourse retrieves a course. Unknown ids yield data.ErrNotFound.
func (s *CatalogService) GetCourse(ctx context.Context, id int64) (*data.Course, error) {
	course, err := s.courses.GetCourseByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.attachImageURLs(ctx, []*data.Course{course})
	return course, nil
}

// EnrolledCourses returns the courses a user has progress in.
func (s *CatalogService) EnrolledCourses(ctx context.Context, userID int64) ([]*data.Course, error) {
	courses, err := s.courses.GetEnrolledCourses(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.attachImageURLs(ctx, courses)
	return courses, nil
}

// CourseDetail loads a course with its rendered lessons. When userID is
// non-zero the viewer's enrollment and per-lesson completion are included.
func (s *CatalogService) CourseDetail(ctx context.Context, courseID, userID int64) (*CourseDetail, error) {
	course, err := s.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	lessons, err := s.lessons.GetLessonsByCourseID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	completed := make(map[int64]bool)
	detail := &CourseDetail{Course: course, Description: s.RenderDescription(course.Description)}
	if userID != 0 {
		if detail.Enrolled, err = s.enrollment.IsEnrolled(ctx, userID, courseID); err != nil {
			return nil, err
		}
		rows, err := s.enrollment.GetProgressByUserAndCourse(ctx, userID, courseID)
		if err != nil {
			return nil, err
		}
		for _, p := range rows {
			completed[p.LessonID] = p.Completed
		}
	}

	for _, l := range lessons {
		l.HTMLContent = s.RenderMarkdown(l.Content)
		detail.Lessons = append(detail.Lessons, &LessonView{Lesson: l, Completed: completed[l.ID]})
	}
	return detail, nil
}

// RenderMarkdown converts lesson markdown into sanitized HTML.
func (s *CatalogService) RenderMarkdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(src), &buf); err != nil {
		s.log.Error(err, "Failed to render lesson markdown")
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(s.sanitizer.SanitizeBytes(buf.Bytes()))
}

// RenderDescription sanitizes a stored course description for display.
// Descriptions are kept as entered so the edit form shows them unchanged.
func (s *CatalogService) RenderDescription(src string) template.HTML {
	return template.HTML(s.sanitizer.Sanitize(src))
}

// InputFor prefills the course form from an existing course.
func InputFor(course *data.Course) CourseInput {
	in := CourseInput{
		Title:       course.Title,
		Description: course.Description,
		Price:       course.Price(),
		Rating:      strconv.Itoa(course.Rating),
		Instructor:  course.Instructor,
	}
	if course.CategoryID != nil {
		in.Category = strconv.FormatInt(*course.CategoryID, 10)
	}
	return in
}

// CreateCourse validates the form and stores a new course.
func (s *CatalogService) CreateCourse(ctx context.Context, in CourseInput) (*data.Course, error) {
	course := &data.Course{}
	if err := s.apply(ctx, course, in); err != nil {
		return nil, err
	}
	key, err := s.saveImage(ctx, in.Image)
	if err != nil {
		return nil, err
	}
	course.Image = key

	if err := s.courses.CreateCourse(ctx, course); err != nil {
		s.discardImage(ctx, key)
		return nil, err
	}
	return course, nil
}

// UpdateCourse validates the form and saves it over an existing course.
// A new image replaces the stored one.
func (s *CatalogService) UpdateCourse(ctx context.Context, id int64, in CourseInput) (*data.Course, error) {
	course, err := s.courses.GetCourseByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, course, in); err != nil {
		return nil, err
	}
	key, err := s.saveImage(ctx, in.Image)
	if err != nil {
		return nil, err
	}
	oldImage := course.Image
	if key != "" {
		course.Image = key
	}

	if err := s.courses.UpdateCourse(ctx, course); err != nil {
		s.discardImage(ctx, key)
		return nil, err
	}
	if key != "" {
		s.discardImage(ctx, oldImage)
	}
	return course, nil
}

// DeleteCourse removes a course and its image. Lessons and progress rows
// go with it.
func (s *CatalogService) DeleteCourse(ctx context.Context, id int64) (*data.Course, error) {
	course, err := s.courses.GetCourseByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.courses.DeleteCourse(ctx, id); err != nil {
		return nil, err
	}
	s.discardImage(ctx, course.Image)
	return course, nil
}

// apply validates in and copies it onto course.
func (s *CatalogService) apply(ctx context.Context, course *data.Course, in CourseInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Price = strings.TrimSpace(in.Price)
	in.Instructor = strings.TrimSpace(in.Instructor)
	if err := s.validator.Struct(in); err != nil {
		return err
	}

	var categoryID *int64
	if in.Category != "" {
		id, _ := strconv.ParseInt(in.Category, 10, 64)
		if _, err := s.categories.GetByID(ctx, id); err != nil {
			if errors.Is(err, data.ErrNotFound) {
				return ValidationErrors{"category": "select a valid category"}
			}
			return err
		}
		categoryID = &id
	}
	if in.Image != nil && in.Image.Size > MaxImageSize {
		return ValidationErrors{"image": "image must be at most 5 MB"}
	}

	cents, err := ParsePrice(in.Price)
	if err != nil {
		return ValidationErrors{"price": err.Error()}
	}
	rating, _ := strconv.Atoi(in.Rating)

	course.Title = in.Title
	course.Description = strings.TrimSpace(in.Description)
	course.CategoryID = categoryID
	course.PriceCents = cents
	course.Rating = rating
	course.Instructor = in.Instructor
	return nil
}

// saveImage stores an upload after checking that its content is an image.
// It returns the new key, or "" when nothing was uploaded.
func (s *CatalogService) saveImage(ctx context.Context, up *Upload) (string, error) {
	if up == nil || up.File == nil || up.Size == 0 {
		return "", nil
	}
	head := make([]byte, 512)
	n, err := io.ReadFull(up.File, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	contentType := http.DetectContentType(head[:n])
	if !strings.HasPrefix(contentType, "image/") {
		return "", ValidationErrors{"image": "upload a valid image"}
	}
	if _, err := up.File.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind upload: %w", err)
	}

	key := storage.NewImageKey(up.Filename)
	if err := s.images.Save(ctx, key, up.File, up.Size, contentType); err != nil {
		return "", fmt.Errorf("failed to store course image: %w", err)
	}
	return key, nil
}

func (s *CatalogService) discardImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.images.Delete(ctx, key); err != nil {
		s.log.Error(err, fmt.Sprintf("Failed to delete course image %s", key))
	}
}

func (s *CatalogService) attachImageURLs(ctx context.Context, courses []*data.Course) {
	for _, c := range courses {
		if c.Image == "" || c.ImageURL != "" {
			continue
		}
		url, err := s.images.URL(ctx, c.Image)
		if err != nil {
			s.log.Error(err, fmt.Sprintf("Failed to resolve image of course %d", c.ID))
			continue
		}
		c.ImageURL = url
	}
}
