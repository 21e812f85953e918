package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/mvalderrama/ecoquiz/internal/quiz"
	"github.com/mvalderrama/ecoquiz/internal/result"
	"github.com/mvalderrama/ecoquiz/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// pages rendered inside the shared layout
var pageNames = []string{
	"index.html",
	"registro.html",
	"iniciar_sesion.html",
	"juego.html",
	"preguntas.html",
	"historial.html",
	"error.html",
}

// PageData carries everything the layout and pages can show.
type PageData struct {
	Title     string
	LoggedIn  bool
	UserName  string
	Flash     *session.Flash
	Questions []quiz.Question
	Results   []*result.Result
}

// Renderer executes embedded HTML templates. Templates are parsed once at
// startup; a parse failure is a programming error and fails construction.
type Renderer struct {
	templates map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	templates := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		templates[name] = tmpl
	}
	return &Renderer{templates: templates}, nil
}

// Render writes a page. The template executes into a buffer first so a
// render failure can still become a clean 500 instead of a torn page.
func (rd *Renderer) Render(w http.ResponseWriter, statusCode int, page string, data PageData) error {
	tmpl, ok := rd.templates[page]
	if !ok {
		return fmt.Errorf("unknown template %s", page)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("failed to execute template %s: %w", page, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	_, err := buf.WriteTo(w)
	return err
}
