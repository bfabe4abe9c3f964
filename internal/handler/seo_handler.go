package handler

import (
	"context"
	"encoding/xml"
	"fmt"
	"go-elearn-app/internal/data"
	"go-elearn-app/internal/middleware"
	"net/http"
	"strings"
)

// CourseLister lists the courses published in the sitemap.
type CourseLister interface {
	ListCourses(ctx context.Context) ([]*data.Course, error)
}

// SeoHandler holds dependencies for SEO-related handlers.
type SeoHandler struct {
	courses CourseLister
	baseURL string
}

// NewSeoHandler creates a new SeoHandler publishing URLs under baseURL.
func NewSeoHandler(courses CourseLister, baseURL string) *SeoHandler {
	return &SeoHandler{courses: courses, baseURL: strings.TrimRight(baseURL, "/")}
}

// robotsHandler serves robots.txt pointing at the sitemap.
func (h *SeoHandler) robotsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "User-agent: *")
	fmt.Fprintln(w, "Allow: /")
	fmt.Fprintln(w, "Disallow: /admin/")
	fmt.Fprintln(w, "Disallow: /admin-dashboard/")
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "Sitemap: %s/sitemap.xml\n", h.baseURL)
}

const sitemapDateFormat = "2006-01-02"

type sitemapURL struct {
	XMLName xml.Name `xml:"url"`
	Loc     string   `xml:"loc"`
	LastMod string   `xml:"lastmod,omitempty"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// sitemapHandler lists the public pages and every course detail page.
func (h *SeoHandler) sitemapHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	courses, err := h.courses.ListCourses(r.Context())
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to retrieve courses for sitemap", Code: http.StatusInternalServerError}
	}

	sitemap := urlSet{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, path := range []string{"/", "/courses/", "/about/", "/contact/"} {
		sitemap.URLs = append(sitemap.URLs, sitemapURL{Loc: h.baseURL + path})
	}
	for _, c := range courses {
		sitemap.URLs = append(sitemap.URLs, sitemapURL{
			Loc:     fmt.Sprintf("%s/course/%d/", h.baseURL, c.ID),
			LastMod: c.CreatedAt.Format(sitemapDateFormat),
		})
	}

	out, err := xml.MarshalIndent(sitemap, "", "  ")
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to generate sitemap XML", Code: http.StatusInternalServerError}
	}
	w.Header().Set("Content-Type", "application/xml")
	w.Write([]byte(xml.Header))
	w.Write(out)
	return nil
}
