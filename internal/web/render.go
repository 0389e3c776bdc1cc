package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/aretw0/noteease/pkg/render"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = []string{"list", "detail", "create", "edit", "notfound"}

// renderer holds one template set per page, each combined with base.html and
// the shared editor partial.
type renderer struct {
	templates map[string]*template.Template
}

func newRenderer() (*renderer, error) {
	funcs := template.FuncMap{
		"sanitize": render.HTML,
		"excerpt":  render.Excerpt,
	}
	r := &renderer{templates: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		tmpl, err := template.New(page).Funcs(funcs).ParseFS(templateFS, "templates/base.html", "templates/editor.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %q: %w", page, err)
		}
		r.templates[page] = tmpl
	}
	return r, nil
}

func (r *renderer) render(w http.ResponseWriter, status int, page string, data any) error {
	tmpl, ok := r.templates[page]
	if !ok {
		return fmt.Errorf("template %q not found", page)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		return fmt.Errorf("failed to execute template %q: %w", page, err)
	}
	return nil
}
