package view

import (
	"bytes"
	"fmt"
	"go-elearn-app/internal/middleware"
	"go-elearn-app/internal/session"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"path/filepath"
	"time"
)

// View represents a collection of parsed HTML templates.
type View struct {
	templates map[string]*template.Template
	sessions  session.Manager
}

var _ middleware.Renderer = (*View)(nil)

// funcs are the helpers available to every template.
var funcs = template.FuncMap{
	"formatTime": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("2006-01-02 15:04")
	},
	"stars": func(n int) []int {
		return make([]int, n)
	},
}

// New creates a new View by parsing all templates from the given filesystem.
// Flash messages are popped from sm on every render.
func New(templateFS fs.FS, sm session.Manager) (*View, error) {
	v := &View{
		templates: make(map[string]*template.Template),
		sessions:  sm,
	}

	// First, get all the layout files
	layouts, err := fs.Glob(templateFS, "templates/layouts/*.html")
	if err != nil {
		return nil, err
	}

	// Then, get all the page files
	pages, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}

	// For each page, parse it with the layout files
	for _, page := range pages {
		files := append(append([]string{}, layouts...), page)
		// The name of the template is the base name of the page file
		name := filepath.Base(page)
		ts, err := template.New(name).Funcs(funcs).ParseFS(templateFS, files...)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		v.templates[name] = ts
	}

	return v, nil
}

// Render executes a specific template by name. The signed-in user, pending
// flash messages and the request path are added to data.
func (v *View) Render(w io.Writer, r *http.Request, name string, data map[string]interface{}) error {
	ts, ok := v.templates[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}

	if data == nil {
		data = make(map[string]interface{})
	}
	data["User"] = middleware.GetUserInfo(r.Context())
	data["CurrentPath"] = r.URL.Path
	data["Year"] = time.Now().Year()
	if v.sessions != nil {
		data["Flashes"] = session.PopFlashes(r.Context(), v.sessions)
	}

	// Execute the template into a buffer first to catch any errors
	// before writing to the response writer.
	buf := new(bytes.Buffer)
	if err := ts.ExecuteTemplate(buf, "base", data); err != nil {
		return err
	}

	_, err := buf.WriteTo(w)
	return err
}
