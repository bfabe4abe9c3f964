package handler

import (
	"fmt"
	"go-elearn-app/internal/data"
	"go-elearn-app/internal/logger"
	"go-elearn-app/internal/middleware"
	"go-elearn-app/internal/service"
	"go-elearn-app/internal/session"
	"net/http"
)

// maxFormSize bounds a course form post: the image plus the text fields.
const maxFormSize = service.MaxImageSize + 1<<20

var ratings = []string{"1", "2", "3", "4", "5"}

// AdminHandler serves the dashboard and course management.
type AdminHandler struct {
	base
	catalog  *service.CatalogService
	progress *service.ProgressService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(catalog *service.CatalogService, progress *service.ProgressService, view middleware.Renderer, sm session.Manager, log logger.Logger) *AdminHandler {
	return &AdminHandler{
		base:     base{view: view, sessions: sm, log: log},
		catalog:  catalog,
		progress: progress,
	}
}

func (h *AdminHandler) dashboardHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	dashboard, err := h.progress.Dashboard(r.Context())
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to load dashboard", Code: http.StatusInternalServerError}
	}
	return h.render(w, r, "admin_dashboard.html", map[string]interface{}{"Dashboard": dashboard})
}

func (h *AdminHandler) addForm(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	return h.renderForm(w, r, http.StatusOK, nil, service.CourseInput{Rating: "5"}, service.ValidationErrors{})
}

func (h *AdminHandler) addHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	in, appErr := parseCourseForm(w, r)
	if appErr != nil {
		return appErr
	}
	course, err := h.catalog.CreateCourse(r.Context(), in)
	if err != nil {
		if verrs, ok := service.AsValidationErrors(err); ok {
			return h.renderForm(w, r, http.StatusUnprocessableEntity, nil, in, verrs)
		}
		return &middleware.AppError{Error: err, Message: "Failed to create course", Code: http.StatusInternalServerError}
	}
	h.log.With(map[string]interface{}{"course_id": course.ID, "admin": currentUser(r).Username}).Info("Course created")
	h.flash(r, session.LevelSuccess, fmt.Sprintf("Course '%s' added successfully!", course.Title))
	return redirect(w, r, "/admin-dashboard/")
}

func (h *AdminHandler) editForm(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, appErr := pathID(r)
	if appErr != nil {
		return appErr
	}
	course, err := h.catalog.GetCourse(r.Context(), id)
	if err != nil {
		return lookupError(err, "Failed to load course")
	}
	return h.renderForm(w, r, http.StatusOK, course, service.InputFor(course), service.ValidationErrors{})
}

func (h *AdminHandler) editHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, appErr := pathID(r)
	if appErr != nil {
		return appErr
	}
	in, appErr := parseCourseForm(w, r)
	if appErr != nil {
		return appErr
	}
	course, err := h.catalog.UpdateCourse(r.Context(), id, in)
	if err != nil {
		if verrs, ok := service.AsValidationErrors(err); ok {
			current, err := h.catalog.GetCourse(r.Context(), id)
			if err != nil {
				return lookupError(err, "Failed to load course")
			}
			return h.renderForm(w, r, http.StatusUnprocessableEntity, current, in, verrs)
		}
		return lookupError(err, "Failed to update course")
	}
	h.log.With(map[string]interface{}{"course_id": course.ID, "admin": currentUser(r).Username}).Info("Course updated")
	h.flash(r, session.LevelSuccess, fmt.Sprintf("Course '%s' updated successfully!", course.Title))
	return redirect(w, r, "/admin-dashboard/")
}

func (h *AdminHandler) deleteConfirm(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, appErr := pathID(r)
	if appErr != nil {
		return appErr
	}
	course, err := h.catalog.GetCourse(r.Context(), id)
	if err != nil {
		return lookupError(err, "Failed to load course")
	}
	return h.render(w, r, "delete_course.html", map[string]interface{}{"Course": course})
}

func (h *AdminHandler) deleteHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, appErr := pathID(r)
	if appErr != nil {
		return appErr
	}
	course, err := h.catalog.DeleteCourse(r.Context(), id)
	if err != nil {
		return lookupError(err, "Failed to delete course")
	}
	h.log.With(map[string]interface{}{"course_id": course.ID, "admin": currentUser(r).Username}).Info("Course deleted")
	h.flash(r, session.LevelSuccess, fmt.Sprintf("Course '%s' deleted successfully!", course.Title))
	return redirect(w, r, "/admin-dashboard/")
}

// renderForm shows the shared add/edit form. course is nil when adding.
func (h *AdminHandler) renderForm(w http.ResponseWriter, r *http.Request, code int, course *data.Course, in service.CourseInput, verrs service.ValidationErrors) *middleware.AppError {
	categories, err := h.catalog.Categories(r.Context())
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to load categories", Code: http.StatusInternalServerError}
	}
	action := "/admin/add-course/"
	if course != nil {
		action = fmt.Sprintf("/admin/edit-course/%d/", course.ID)
	}
	return h.renderStatus(w, r, code, "course_form.html", map[string]interface{}{
		"Course":     course,
		"Form":       in,
		"Errors":     verrs,
		"Categories": categories,
		"Ratings":    ratings,
		"Action":     action,
	})
}

// parseCourseForm reads the multipart course form. The image is optional.
func parseCourseForm(w http.ResponseWriter, r *http.Request) (service.CourseInput, *middleware.AppError) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil && err != http.ErrNotMultipart {
		return service.CourseInput{}, &middleware.AppError{Error: err, Message: "The submitted form is too large or malformed", Code: http.StatusRequestEntityTooLarge}
	}
	in := service.CourseInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
		Price:       r.FormValue("price"),
		Rating:      r.FormValue("rating"),
		Instructor:  r.FormValue("instructor"),
	}
	if file, header, err := r.FormFile("image"); err == nil {
		// The multipart reader keeps the file open until the request ends.
		in.Image = &service.Upload{Filename: header.Filename, Size: header.Size, File: file}
	}
	return in, nil
}
