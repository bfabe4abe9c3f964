// Package web embeds the page templates and static assets of the site.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates/layouts templates/pages
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// TemplateFS holds templates/layouts/*.html and templates/pages/*.html.
var TemplateFS fs.FS = templateFS

// Static returns the assets served under /static/, rooted at the static
// directory.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// Only reachable with an invalid literal path.
		panic(err)
	}
	return sub
}
