package handler

import (
	"fmt"
	"go-elearn-app/internal/logger"
	"go-elearn-app/internal/middleware"
	"go-elearn-app/internal/service"
	"go-elearn-app/internal/session"
	"net/http"
	"strconv"
)

// CatalogHandler serves the public course pages and the learner actions
// attached to them.
type CatalogHandler struct {
	base
	catalog  *service.CatalogService
	progress *service.ProgressService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalog *service.CatalogService, progress *service.ProgressService, view middleware.Renderer, sm session.Manager, log logger.Logger) *CatalogHandler {
	return &CatalogHandler{
		base:     base{view: view, sessions: sm, log: log},
		catalog:  catalog,
		progress: progress,
	}
}

// indexHandler shows the search results, or every course, and the categories.
func (h *CatalogHandler) indexHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	page, err := h.catalog.Index(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to load courses", Code: http.StatusInternalServerError}
	}
	return h.render(w, r, "index.html", map[string]interface{}{"Page": page})
}

func (h *CatalogHandler) aboutHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	return h.render(w, r, "about.html", nil)
}

func (h *CatalogHandler) listHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	courses, err := h.catalog.ListCourses(r.Context())
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to load courses", Code: http.StatusInternalServerError}
	}
	return h.render(w, r, "course_list.html", map[string]interface{}{"Courses": courses})
}

// detailHandler shows a course with its lessons, and for a signed-in user
// whether they are enrolled and which lessons they completed.
func (h *CatalogHandler) detailHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, appErr := pathID(r)
	if appErr != nil {
		return appErr
	}
	var userID int64
	if user := middleware.GetUserInfo(r.Context()); user != nil {
		userID = user.ID
	}
	detail, err := h.catalog.CourseDetail(r.Context(), id, userID)
	if err != nil {
		return lookupError(err, "Failed to load course")
	}
	return h.render(w, r, "course_detail.html", map[string]interface{}{"Detail": detail})
}

// actionHandler toggles the lesson named by lesson_id, or enrolls the user
// when the form carries no lesson.
func (h *CatalogHandler) actionHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, appErr := pathID(r)
	if appErr != nil {
		return appErr
	}
	raw := r.PostFormValue("lesson_id")
	if raw == "" {
		return h.enroll(w, r, id)
	}

	lessonID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid lesson", Code: http.StatusBadRequest}
	}
	p, err := h.progress.ToggleLesson(r.Context(), currentUser(r).ID, id, lessonID)
	if err != nil {
		return lookupError(err, "Failed to update lesson")
	}
	state := "incomplete"
	if p.Completed {
		state = "completed"
	}
	h.flash(r, session.LevelSuccess, fmt.Sprintf("Lesson '%s' marked as %s.", p.LessonTitle, state))
	return redirect(w, r, fmt.Sprintf("/course/%d/", id))
}

// enrollHandler serves the dedicated enroll URL.
func (h *CatalogHandler) enrollHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, appErr := pathID(r)
	if appErr != nil {
		return appErr
	}
	return h.enroll(w, r, id)
}

func (h *CatalogHandler) enroll(w http.ResponseWriter, r *http.Request, courseID int64) *middleware.AppError {
	course, err := h.progress.Enroll(r.Context(), currentUser(r).ID, courseID)
	if err != nil {
		return lookupError(err, "Failed to enroll")
	}
	h.flash(r, session.LevelSuccess, fmt.Sprintf("You have enrolled in '%s'!", course.Title))
	return redirect(w, r, fmt.Sprintf("/course/%d/", courseID))
}

func (h *CatalogHandler) enrolledHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	courses, err := h.catalog.EnrolledCourses(r.Context(), currentUser(r).ID)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to load enrolled courses", Code: http.StatusInternalServerError}
	}
	return h.render(w, r, "enrolled_courses.html", map[string]interface{}{"Courses": courses})
}
