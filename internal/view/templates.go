// Package view ships the dashboard templates and static assets inside the
// binary.
package view

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

// Static holds app.css and app.js.
//
//go:embed static/*
var staticFS embed.FS

// Templates parses every page and partial with FuncMap installed. Pages are
// addressed by file name, e.g. "dashboard.html".
func Templates() (*template.Template, error) {
	return template.New("").Funcs(FuncMap()).ParseFS(templateFS, "templates/*.html")
}

// StaticFS serves the embedded assets rooted at static/.
func StaticFS() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
