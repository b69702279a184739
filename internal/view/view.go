// Package view renders the few server-side pages the API needs: error and
// access-denied pages for browser requests.
package view

import (
	"embed"
	"html/template"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ErrorTemplate is the name of the error page template.
const ErrorTemplate = "error.html"

//go:embed templates/*.html
var templateFS embed.FS

// ErrorPage is the data rendered by ErrorTemplate.
type ErrorPage struct {
	Status    int
	Title     string
	Message   string
	LoginLink bool
}

// NewErrorPage fills the title from the status code.
func NewErrorPage(status int, message string) ErrorPage {
	title := http.StatusText(status)
	if status == http.StatusForbidden {
		title = "Access Denied"
	}
	return ErrorPage{
		Status:    status,
		Title:     title,
		Message:   message,
		LoginLink: status == http.StatusUnauthorized || status == http.StatusForbidden,
	}
}

// Renderer implements echo.Renderer over the embedded templates.
type Renderer struct {
	templates *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	t, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{templates: t}, nil
}

// Render implements echo.Renderer.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}
