// Package web renders the HTML pages. Every page shares one layout and is
// executed into a buffer first so a template failure never leaves a half
// written response.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	commonerrors "github.com/AlibekovAA/toggle-task/internal/common/errors"
	"github.com/AlibekovAA/toggle-task/internal/common/logger"
	"github.com/AlibekovAA/toggle-task/internal/common/session"
	taskdomain "github.com/AlibekovAA/toggle-task/internal/task/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	PageHome      = "home.html"
	PageSignup    = "signup.html"
	PageLogin     = "login.html"
	PageCreate    = "create.html"
	PageCurrent   = "current.html"
	PageCompleted = "completed.html"
	PageTask      = "task.html"
	PageReport    = "report.html"
	PageError     = "error.html"
)

var pages = []string{
	PageHome, PageSignup, PageLogin, PageCreate, PageCurrent,
	PageCompleted, PageTask, PageReport, PageError,
}

// Page is the data every template receives. Form holds the submitted form
// struct so a failed POST re-renders with the user's input.
type Page struct {
	Title string
	User  *session.Identity
	Flash string
	Error string
	Field string
	Next  string
	Form  any
	Tasks []taskdomain.Task
	Task  *taskdomain.Task
}

// WithError copies the message and offending field of a domain error.
func (p Page) WithError(err commonerrors.DomainError) Page {
	if err != nil {
		p.Error = err.Message()
		p.Field = err.Field()
	}
	return p
}

type Renderer struct {
	templates map[string]*template.Template
	log       *logger.Logger
}

func NewRenderer(log *logger.Logger) (*Renderer, error) {
	funcs := template.FuncMap{
		"fmtTime": formatTime,
		"checked": isChecked,
	}

	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		t, err := template.New(page).Funcs(funcs).ParseFS(
			templateFS,
			"templates/layout.html",
			"templates/task_form.html",
			"templates/"+page,
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		templates[page] = t
	}

	return &Renderer{templates: templates, log: log}, nil
}

func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, page string, data Page) {
	if data.User == nil {
		if id, ok := session.FromContext(r.Context()); ok {
			data.User = &id
		}
	}

	t, ok := rd.templates[page]
	if !ok {
		rd.log.Errorf("render: unknown page %s", page)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		rd.log.WithFields(r.Context(), logger.Fields{
			"page":   page,
			"action": "render_failed",
		}).Errorf("render %s failed: %v", page, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// RenderError shows a standalone error page for err.
func (rd *Renderer) RenderError(w http.ResponseWriter, r *http.Request, err commonerrors.DomainError) {
	title := http.StatusText(err.HTTPStatus())
	rd.Render(w, r, err.HTTPStatus(), PageError, Page{Title: title, Error: err.Message()})
}

// RenderFormError re-renders a form for errors the user can act on and
// falls back to the error page for everything else.
func (rd *Renderer) RenderFormError(w http.ResponseWriter, r *http.Request, page string, data Page, err commonerrors.DomainError) {
	switch err.Category() {
	case commonerrors.CategoryValidation, commonerrors.CategoryConflict,
		commonerrors.CategoryAuth, commonerrors.CategoryExternal:
		rd.Render(w, r, err.HTTPStatus(), page, data.WithError(err))
	default:
		rd.RenderError(w, r, err)
	}
}

// PanicHandler renders the internal error page; used by the recovery
// middleware.
func (rd *Renderer) PanicHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rd.RenderError(w, r, commonerrors.ErrInternalError)
	})
}

func (rd *Renderer) NotFound(w http.ResponseWriter, r *http.Request) {
	rd.Render(w, r, http.StatusNotFound, PageError, Page{
		Title: "Not Found",
		Error: "The page you are looking for does not exist.",
	})
}

func formatTime(v any) string {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format("2006-01-02 15:04 UTC")
	case *time.Time:
		if t == nil {
			return ""
		}
		return t.UTC().Format("2006-01-02 15:04 UTC")
	default:
		return ""
	}
}

func isChecked(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "on", "true", "1":
			return true
		}
	}
	return false
}
