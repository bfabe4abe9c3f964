//go:build unit

package service

import (
	"context"
	"errors"
	"fmt"
	"go-elearn-app/internal/data"
	"go-elearn-app/internal/mail"
	"go-elearn-app/internal/storage"
	"io"
	"time"
)

// mockCourseRepository is a mock implementation of the CourseRepository interface.
type mockCourseRepository struct {
	courses map[int64]*data.Course
	nextID  int64

	createCalled int
	updateCalled int
	deleteCalled int
	lastSaved    *data.Course
}

var _ CourseRepository = (*mockCourseRepository)(nil)

func newMockCourseRepository(courses ...*data.Course) *mockCourseRepository {
	m := &mockCourseRepository{courses: map[int64]*data.Course{}, nextID: 100}
	for _, c := range courses {
		m.courses[c.ID] = c
	}
	return m
}

func (m *mockCourseRepository) GetAllCourses(ctx context.Context) ([]*data.Course, error) {
	var out []*data.Course
	for _, c := range m.courses {
		out = append(out, c)
	}
	return out, nil
}

func (m *mockCourseRepository) SearchCourses(ctx context.Context, q string) ([]*data.Course, error) {
	return nil, nil
}

func (m *mockCourseRepository) GetCourseByID(ctx context.Context, id int64) (*data.Course, error) {
	if c, ok := m.courses[id]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("course %d: %w", id, data.ErrNotFound)
}

func (m *mockCourseRepository) GetEnrolledCourses(ctx context.Context, userID int64) ([]*data.Course, error) {
	return nil, nil
}

func (m *mockCourseRepository) CreateCourse(ctx context.Context, course *data.Course) error {
	m.createCalled++
	m.nextID++
	course.ID = m.nextID
	m.courses[course.ID] = course
	m.lastSaved = course
	return nil
}

func (m *mockCourseRepository) UpdateCourse(ctx context.Context, course *data.Course) error {
	m.updateCalled++
	m.lastSaved = course
	return nil
}

func (m *mockCourseRepository) DeleteCourse(ctx context.Context, id int64) error {
	m.deleteCalled++
	delete(m.courses, id)
	return nil
}

// mockCategoryRepository is a mock implementation of the CategoryRepository interface.
type mockCategoryRepository struct {
	categories []*data.Category
}

var _ CategoryRepository = (*mockCategoryRepository)(nil)

func (m *mockCategoryRepository) GetAll(ctx context.Context) ([]*data.Category, error) {
	return m.categories, nil
}

func (m *mockCategoryRepository) GetByID(ctx context.Context, id int64) (*data.Category, error) {
	for _, c := range m.categories {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, fmt.Errorf("category %d: %w", id, data.ErrNotFound)
}

// mockLessonRepository is a mock implementation of the LessonRepository interface.
type mockLessonRepository struct {
	lessons []*data.Lesson
}

func (m *mockLessonRepository) GetLessonsByCourseID(ctx context.Context, courseID int64) ([]*data.Lesson, error) {
	return m.lessons, nil
}

// mockProgressRepository is a mock implementation of the ProgressRepository interface.
type mockProgressRepository struct {
	stats    *data.ProgressStats
	rows     []*data.Progress
	enrolled bool

	enrollCalled int
	toggleCalled int
}

var _ ProgressRepository = (*mockProgressRepository)(nil)

func (m *mockProgressRepository) Enroll(ctx context.Context, userID, courseID int64) (int64, error) {
	m.enrollCalled++
	return 3, nil
}

func (m *mockProgressRepository) Toggle(ctx context.Context, userID, courseID, lessonID int64) (*data.Progress, error) {
	m.toggleCalled++
	return &data.Progress{UserID: userID, CourseID: courseID, LessonID: lessonID, Completed: true}, nil
}

func (m *mockProgressRepository) IsEnrolled(ctx context.Context, userID, courseID int64) (bool, error) {
	return m.enrolled, nil
}

func (m *mockProgressRepository) GetProgressByUser(ctx context.Context, userID int64) ([]*data.Progress, error) {
	return m.rows, nil
}

func (m *mockProgressRepository) GetProgressByUserAndCourse(ctx context.Context, userID, courseID int64) ([]*data.Progress, error) {
	return m.rows, nil
}

func (m *mockProgressRepository) GetStats(ctx context.Context, userID int64) (*data.ProgressStats, error) {
	s := *m.stats
	return &s, nil
}

func (m *mockProgressRepository) CountEnrolledCourses(ctx context.Context) (int, error) {
	return 1, nil
}

// mockUserRepository is an in-memory implementation of the UserRepository interface.
type mockUserRepository struct {
	users        []*data.User
	createCalled int
}

var _ UserRepository = (*mockUserRepository)(nil)

func (m *mockUserRepository) CreateUser(ctx context.Context, user *data.User) error {
	m.createCalled++
	for _, u := range m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return fmt.Errorf("user %q: %w", user.Username, data.ErrDuplicate)
		}
	}
	user.ID = int64(len(m.users) + 1)
	m.users = append(m.users, user)
	return nil
}

func (m *mockUserRepository) UpdateUser(ctx context.Context, user *data.User) error { return nil }

func (m *mockUserRepository) find(match func(*data.User) bool) (*data.User, error) {
	for _, u := range m.users {
		if match(u) {
			return u, nil
		}
	}
	return nil, data.ErrNotFound
}

func (m *mockUserRepository) GetUserByID(ctx context.Context, id int64) (*data.User, error) {
	return m.find(func(u *data.User) bool { return u.ID == id })
}

func (m *mockUserRepository) GetUserByUsername(ctx context.Context, username string) (*data.User, error) {
	return m.find(func(u *data.User) bool { return u.Username == username })
}

func (m *mockUserRepository) GetUserByEmail(ctx context.Context, email string) (*data.User, error) {
	return m.find(func(u *data.User) bool { return u.Email == email })
}

func (m *mockUserRepository) CountUsers(ctx context.Context) (int, error) {
	return len(m.users), nil
}

// mockContactRepository is a mock implementation of the ContactRepository interface.
type mockContactRepository struct {
	created        []*data.Contact
	notified       map[int64]bool
	markCalled     int
	markErr        error
	unnotifiedList []*data.Contact
}

var _ ContactRepository = (*mockContactRepository)(nil)

func (m *mockContactRepository) CreateContact(ctx context.Context, contact *data.Contact) error {
	contact.ID = int64(len(m.created) + 1)
	m.created = append(m.created, contact)
	return nil
}

func (m *mockContactRepository) MarkNotified(ctx context.Context, id int64, at time.Time) error {
	m.markCalled++
	if m.markErr != nil {
		return m.markErr
	}
	if m.notified == nil {
		m.notified = map[int64]bool{}
	}
	m.notified[id] = true
	return nil
}

func (m *mockContactRepository) GetUnnotified(ctx context.Context, limit int) ([]*data.Contact, error) {
	return m.unnotifiedList, nil
}

// mockMailer records messages and fails when err is set.
type mockMailer struct {
	err  error
	sent []*mail.Message
}

var _ mail.Mailer = (*mockMailer)(nil)

func (m *mockMailer) Send(ctx context.Context, msg *mail.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

// mockImageStore keeps saved images in memory.
type mockImageStore struct {
	saved   map[string][]byte
	deleted []string
}

var _ storage.ImageStore = (*mockImageStore)(nil)

func newMockImageStore() *mockImageStore {
	return &mockImageStore{saved: map[string][]byte{}}
}

func (m *mockImageStore) Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.saved[key] = b
	return nil
}

func (m *mockImageStore) Delete(ctx context.Context, key string) error {
	m.deleted = append(m.deleted, key)
	delete(m.saved, key)
	return nil
}

func (m *mockImageStore) URL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", errors.New("empty key")
	}
	return "/media/" + key, nil
}
