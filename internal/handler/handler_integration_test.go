//go:build integration

package handler

import (
	"bytes"
	"context"
	"fmt"
	"go-elearn-app/internal/auth"
	"go-elearn-app/internal/config"
	"go-elearn-app/internal/data"
	"go-elearn-app/internal/logger"
	"go-elearn-app/internal/mail"
	"go-elearn-app/internal/service"
	"go-elearn-app/internal/session"
	"go-elearn-app/internal/storage"
	"go-elearn-app/internal/view"
	"go-elearn-app/web"
	"io"
	"mime/multipart"
	netmail "net/mail"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
)

type testApp struct {
	Server   *httptest.Server
	DB       *sqlx.DB
	Accounts *service.AccountService
	Mailer   *mail.ConsoleMailer
}

// setupIntegrationTest initializes a full application stack for testing.
func setupIntegrationTest(t *testing.T) *testApp {
	t.Helper()
	db, err := data.NewDB(config.DBConfig{Driver: "sqlite3", DSN: "file::memory:?_foreign_keys=on"})
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	for _, name := range []string{"000001_initial_schema", "000003_create_sessions_table"} {
		schema, err := os.ReadFile("../../migrations/sqlite3/" + name + ".up.sql")
		if err != nil {
			t.Fatalf("Failed to read migration %s: %v", name, err)
		}
		db.MustExec(string(schema))
	}

	log := logger.Nop()
	sm, err := session.New(config.SessionConfig{Lifetime: 1}, "sqlite3", db.DB, false)
	if err != nil {
		t.Fatalf("Failed to create session manager: %v", err)
	}
	viewService, err := view.New(web.TemplateFS, sm)
	if err != nil {
		t.Fatalf("Failed to parse templates: %v", err)
	}
	enforcer, err := auth.NewMemoryEnforcer()
	if err != nil {
		t.Fatalf("Failed to create enforcer: %v", err)
	}
	auth.SeedDefaultPolicies(enforcer, log)

	images, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create image store: %v", err)
	}
	mailer := mail.NewConsoleMailer(netmail.Address{Address: "no-reply@example.com"}, log)

	courses := data.NewSQLCourseRepository(db)
	progressRepo := data.NewProgressRepository(db)
	users := data.NewUserRepository(db)
	validator := service.NewValidator()

	catalog := service.NewCatalogService(courses, data.NewCategoryRepository(db), data.NewLessonRepository(db), progressRepo, images, validator, log)
	progress := service.NewProgressService(progressRepo, courses, users)
	accounts := service.NewAccountService(users, validator)
	contacts, err := service.NewContactService(data.NewContactRepository(db), mailer, "operator@example.com", validator, log)
	if err != nil {
		t.Fatalf("Failed to create contact service: %v", err)
	}

	router := NewRouter(Dependencies{
		Catalog:  NewCatalogHandler(catalog, progress, viewService, sm, log),
		Accounts: NewAccountHandler(accounts, progress, viewService, sm, log, false),
		Admin:    NewAdminHandler(catalog, progress, viewService, sm, log),
		Contact:  NewContactHandler(contacts, viewService, sm, log),
		SEO:      NewSeoHandler(catalog, "http://localhost:8080"),
		Sessions: sm,
		Users:    users,
		Enforcer: enforcer,
		View:     viewService,
		Log:      log,
		Static:   web.Static(),
		MediaDir: images.Dir(),
	})

	server := httptest.NewServer(router)
	t.Cleanup(func() {
		server.Close()
		db.Close()
	})
	return &testApp{Server: server, DB: db, Accounts: accounts, Mailer: mailer}
}

// client is a browser-like client keeping cookies across requests.
func (app *testApp) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &http.Client{Jar: jar}
}

// get fetches path and returns the status and body.
func (app *testApp) get(t *testing.T, c *http.Client, path string) (int, string) {
	t.Helper()
	resp, err := c.Get(app.Server.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return readResponse(t, resp)
}

// post submits a form to path, following the redirect.
func (app *testApp) post(t *testing.T, c *http.Client, path string, form url.Values) (int, string) {
	t.Helper()
	resp, err := c.PostForm(app.Server.URL+path, form)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return readResponse(t, resp)
}

func readResponse(t *testing.T, resp *http.Response) (int, string) {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, string(body)
}

// seedCourse creates "Intro to Testing" with three lessons.
func (app *testApp) seedCourse(t *testing.T) *data.Course {
	t.Helper()
	ctx := context.Background()
	course := &data.Course{Title: "Intro to Testing", Description: "Tests all the way down", Rating: 5, PriceCents: 1999}
	if err := data.NewSQLCourseRepository(app.DB).CreateCourse(ctx, course); err != nil {
		t.Fatalf("failed to create course: %v", err)
	}
	lessons := data.NewLessonRepository(app.DB)
	for i, title := range []string{"Why test", "Table tests", "Fakes"} {
		lesson := &data.Lesson{CourseID: course.ID, Title: title, Content: "**" + title + "**", Order: i + 1}
		if err := lessons.CreateLesson(ctx, lesson); err != nil {
			t.Fatalf("failed to create lesson: %v", err)
		}
	}
	return course
}

func assertContains(t *testing.T, body string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(body, w) {
			t.Errorf("expected body to contain %q", w)
		}
	}
}

func TestLearnerJourney_Integration(t *testing.T) {
	app := setupIntegrationTest(t)
	course := app.seedCourse(t)
	c := app.client(t)
	coursePath := fmt.Sprintf("/course/%d/", course.ID)

	t.Run("anonymous visitor browses the catalog", func(t *testing.T) {
		code, body := app.get(t, c, "/")
		if code != http.StatusOK {
			t.Fatalf("want 200; got %d", code)
		}
		assertContains(t, body, "Intro to Testing")

		code, body = app.get(t, c, coursePath)
		if code != http.StatusOK {
			t.Fatalf("want 200; got %d", code)
		}
		assertContains(t, body, "<strong>Why test</strong>", "Log in</a> to enroll")
	})

	t.Run("progress requires login", func(t *testing.T) {
		code, body := app.get(t, c, "/progress/")
		if code != http.StatusUnauthorized {
			t.Fatalf("want 401; got %d", code)
		}
		assertContains(t, body, "You need to login to access this page.")
	})

	t.Run("signup returns to the remembered page", func(t *testing.T) {
		code, body := app.post(t, c, "/signup/", url.Values{
			"username":        {"alice"},
			"email":           {"alice@example.com"},
			"password":        {"correct-horse"},
			"confirmpassword": {"correct-horse"},
		})
		if code != http.StatusOK {
			t.Fatalf("want 200; got %d", code)
		}
		assertContains(t, body, "Account created successfully!", "Your progress", "0.00%")
	})

	t.Run("enroll", func(t *testing.T) {
		_, body := app.post(t, c, coursePath, url.Values{})
		assertContains(t, body, "You have enrolled in &#39;Intro to Testing&#39;!", "You are enrolled in this course.")

		// Enrolling again keeps the course and its rows.
		app.post(t, c, coursePath+"enroll/", url.Values{})
		var rows int
		app.DB.Get(&rows, `SELECT COUNT(*) FROM progress`)
		if rows != 3 {
			t.Errorf("want 3 progress rows; got %d", rows)
		}
	})

	t.Run("toggle a lesson", func(t *testing.T) {
		var lessonID int64
		app.DB.Get(&lessonID, `SELECT id FROM lessons WHERE course_id = ? AND sort_order = 1`, course.ID)

		_, body := app.post(t, c, coursePath, url.Values{"lesson_id": {fmt.Sprint(lessonID)}})
		assertContains(t, body, "Lesson &#39;Why test&#39; marked as completed.", "Mark as incomplete")

		_, body = app.get(t, c, "/progress/")
		assertContains(t, body, "<strong>1</strong> of <strong>3</strong>", "33.33%")
	})

	t.Run("lesson of another course", func(t *testing.T) {
		code, _ := app.post(t, c, coursePath, url.Values{"lesson_id": {"9999"}})
		if code != http.StatusNotFound {
			t.Errorf("want 404; got %d", code)
		}
	})

	t.Run("regular users cannot manage courses", func(t *testing.T) {
		code, body := app.get(t, c, "/admin-dashboard/")
		if code != http.StatusForbidden {
			t.Fatalf("want 403; got %d", code)
		}
		assertContains(t, body, "You need admin privileges")
	})

	t.Run("unknown course", func(t *testing.T) {
		code, _ := app.get(t, c, "/course/9999/")
		if code != http.StatusNotFound {
			t.Errorf("want 404; got %d", code)
		}
	})

	t.Run("logout", func(t *testing.T) {
		_, body := app.post(t, c, "/logout/", url.Values{})
		assertContains(t, body, "You have been logged out successfully.", "Sign up")
	})
}

func TestLogin_Integration(t *testing.T) {
	app := setupIntegrationTest(t)
	if _, err := app.Accounts.CreateAdmin(context.Background(), "root", "root@example.com", "administrator"); err != nil {
		t.Fatalf("failed to create admin: %v", err)
	}
	c := app.client(t)

	code, body := app.post(t, c, "/login/", url.Values{"username": {"root"}, "password": {"wrong-password"}})
	if code != http.StatusUnauthorized {
		t.Fatalf("want 401; got %d", code)
	}
	assertContains(t, body, "Invalid credentials.")

	code, body = app.post(t, c, "/login/", url.Values{"username": {"root"}, "password": {"administrator"}})
	if code != http.StatusOK {
		t.Fatalf("want 200; got %d", code)
	}
	assertContains(t, body, "Admin dashboard")
}

func TestAdminCourseManagement_Integration(t *testing.T) {
	app := setupIntegrationTest(t)
	if _, err := app.Accounts.CreateAdmin(context.Background(), "root", "root@example.com", "administrator"); err != nil {
		t.Fatalf("failed to create admin: %v", err)
	}
	c := app.client(t)
	app.post(t, c, "/login/", url.Values{"username": {"root"}, "password": {"administrator"}})

	// A 1x1 transparent GIF.
	gif := []byte("GIF89a\x01\x00\x01\x00\x80\x00\x00\x00\x00\x00\xff\xff\xff!\xf9\x04\x01\x00\x00\x00\x00,\x00\x00\x00\x00\x01\x00\x01\x00\x00\x02\x02D\x01\x00;")
	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)
	for k, v := range map[string]string{"title": "Go Basics", "description": "Learn Go", "price": "12.50", "rating": "4", "instructor": "Rob"} {
		mw.WriteField(k, v)
	}
	part, _ := mw.CreateFormFile("image", "cover.GIF")
	part.Write(gif)
	mw.Close()

	resp, err := c.Post(app.Server.URL+"/admin/add-course/", mw.FormDataContentType(), body)
	if err != nil {
		t.Fatal(err)
	}
	code, page := readResponse(t, resp)
	if code != http.StatusOK {
		t.Fatalf("want 200; got %d", code)
	}
	assertContains(t, page, "Course &#39;Go Basics&#39; added successfully!", "$12.50")

	var course data.Course
	if err := app.DB.Get(&course, `SELECT id, title, description, created_at, category_id, price_cents, image, rating, instructor FROM courses WHERE title = 'Go Basics'`); err != nil {
		t.Fatalf("course not stored: %v", err)
	}
	if !strings.HasPrefix(course.Image, "course_images/") || !strings.HasSuffix(course.Image, ".gif") {
		t.Errorf("unexpected image key %q", course.Image)
	}
	if code, _ := app.get(t, c, "/media/"+course.Image); code != http.StatusOK {
		t.Errorf("want stored image to be served; got %d", code)
	}

	t.Run("invalid price keeps the form", func(t *testing.T) {
		code, page := app.post(t, c, fmt.Sprintf("/admin/edit-course/%d/", course.ID), url.Values{
			"title": {"Go Basics"}, "description": {"Learn Go"}, "price": {"12.999"}, "rating": {"4"},
		})
		if code != http.StatusUnprocessableEntity {
			t.Fatalf("want 422; got %d", code)
		}
		assertContains(t, page, "field-error")
	})

	t.Run("delete", func(t *testing.T) {
		_, page := app.post(t, c, fmt.Sprintf("/admin/delete-course/%d/", course.ID), url.Values{})
		assertContains(t, page, "Course &#39;Go Basics&#39; deleted successfully!")
		if code, _ := app.get(t, c, "/media/"+course.Image); code != http.StatusNotFound {
			t.Errorf("want deleted image to be gone; got %d", code)
		}
	})
}

func TestContact_Integration(t *testing.T) {
	app := setupIntegrationTest(t)
	c := app.client(t)

	_, body := app.post(t, c, "/contact/", url.Values{"name": {"Bob"}, "email": {"bob@example.com"}, "message": {"Hello"}})
	assertContains(t, body, "Your message has been sent successfully!")

	if sent := app.Mailer.Sent(); len(sent) != 1 || sent[0].To[0].Address != "operator@example.com" {
		t.Errorf("expected one email to the operator; got %+v", sent)
	}

	code, body := app.post(t, c, "/contact/", url.Values{"name": {"Bob"}, "email": {"not-an-email"}})
	if code != http.StatusOK {
		t.Fatalf("want 200 after redirect; got %d", code)
	}
	assertContains(t, body, "Your message has been sent successfully!")

	var stored int
	if err := app.DB.Get(&stored, `SELECT COUNT(*) FROM contacts WHERE email = 'not-an-email'`); err != nil {
		t.Fatal(err)
	}
	if stored != 1 {
		t.Errorf("expected the unchecked submission to be stored; got %d rows", stored)
	}
}
