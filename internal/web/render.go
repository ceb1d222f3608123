package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutFile = "templates/layout.html"

// funcs are available to every template.
var funcs = template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("$%.2f", v) },
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("Jan 2, 2006")
	},
	"datePtr": func(t *time.Time) string {
		if t == nil {
			return "-"
		}
		return t.Format("Jan 2, 2006")
	},
	"join": strings.Join,
}

// parseTemplates builds one template set per page, each paired with the
// shared layout.
func parseTemplates() (map[string]*template.Template, error) {
	pagesFiles, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	sets := make(map[string]*template.Template, len(pagesFiles))
	for _, file := range pagesFiles {
		if file == layoutFile {
			continue
		}
		name := strings.TrimSuffix(path.Base(file), ".html")
		t, err := template.New(path.Base(layoutFile)).Funcs(funcs).ParseFS(templateFS, layoutFile, file)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		sets[name] = t
	}
	return sets, nil
}

// layoutData is what the layout receives. Page holds the controller.
type layoutData struct {
	Title string
	Nav   string
	Page  any
}

// render executes a page into a buffer first so a template failure never
// leaves a half-written response.
func (s *Server) render(w http.ResponseWriter, status int, name string, data layoutData) {
	t, ok := s.templates[name]
	if !ok {
		s.logger.Error("unknown template", "template", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		s.logger.Error("failed to render page", "template", name, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
