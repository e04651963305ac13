// SPDX-License-Identifier: GPL-3.0-only

// Package views renders the embedded HTML pages.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"laundrolink-server/models"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutFile = "templates/layout.html"

// Renderer implements echo.Renderer. Each page is parsed together with the
// shared layout and executed through it.
type Renderer struct {
	templates map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	pages, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{templates: make(map[string]*template.Template)}
	for _, page := range pages {
		if page == layoutFile {
			continue
		}
		name := strings.TrimSuffix(path.Base(page), ".html")
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, layoutFile, page)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.templates[name] = t
	}
	return r, nil
}

func (r *Renderer) Render(w io.Writer, name string, data any, c echo.Context) error {
	t, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

func (r *Renderer) Has(name string) bool {
	_, ok := r.templates[name]
	return ok
}

var funcs = template.FuncMap{
	"uploadURL": func(pic string) string {
		if pic == "" {
			pic = models.DefaultProfilePic
		}
		return "/static/uploads/" + url.PathEscape(pic)
	},
	"stars": func(score int) string {
		if score < 0 {
			score = 0
		}
		if score > models.MaxScore {
			score = models.MaxScore
		}
		return strings.Repeat("★", score) + strings.Repeat("☆", models.MaxScore-score)
	},
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("02 Jan 2006")
	},
	"money": func(v float64) string {
		return fmt.Sprintf("%.2f", v)
	},
	"serviceLabel": func(code string) string {
		if label, ok := models.ServiceLabels[code]; ok {
			return label
		}
		return code
	},
	"serviceCodes": func() []string {
		return models.ServiceCodes
	},
	"scores": func() []int {
		return []int{5, 4, 3, 2, 1}
	},
}
