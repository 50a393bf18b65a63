package http

import (
	"net/http"
	"net/url"

	"github.com/AlibekovAA/toggle-task/internal/common/constants"
	commonhttp "github.com/AlibekovAA/toggle-task/internal/common/http"
	"github.com/AlibekovAA/toggle-task/internal/common/logger"
	"github.com/AlibekovAA/toggle-task/internal/common/session"
	"github.com/AlibekovAA/toggle-task/internal/incident/service"
	"github.com/AlibekovAA/toggle-task/internal/web"
)

type Handler struct {
	reporter *service.Reporter
	renderer *web.Renderer
	errors   *commonhttp.ErrorHandler
	log      *logger.Logger
}

func NewHandler(reporter *service.Reporter, renderer *web.Renderer, log *logger.Logger) *Handler {
	return &Handler{
		reporter: reporter,
		renderer: renderer,
		errors:   commonhttp.NewErrorHandler(log),
		log:      log,
	}
}

// Register mounts /report-issue behind guard. The outbound call is bounded
// by the reporter's own timeout rather than the request timeout.
func (h *Handler) Register(mux *http.ServeMux, guard func(http.Handler) http.Handler) {
	mux.Handle("GET /report-issue", guard(http.HandlerFunc(h.form)))
	mux.Handle("POST /report-issue", guard(http.HandlerFunc(h.report)))
}

func (h *Handler) form(w http.ResponseWriter, r *http.Request) {
	page := web.Page{Title: "Report an issue", Form: service.ReportInput{}}
	if !h.reporter.Enabled() {
		page.Flash = "Issue reporting is currently not available."
	}
	h.renderer.Render(w, r, http.StatusOK, web.PageReport, page)
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	id, ok := session.FromContext(r.Context())
	if !ok {
		session.RedirectToLogin(w, r)
		return
	}

	var input service.ReportInput
	if err := commonhttp.DecodeForm(r, &input); err != nil {
		commonhttp.WriteError(w, http.StatusBadRequest, "invalid form")
		return
	}

	ticket, err := h.reporter.ReportIncident(r.Context(), id.Username, input)
	if err != nil {
		page := web.Page{Title: "Report an issue", Form: input}
		h.renderer.RenderFormError(w, r, web.PageReport, page, h.errors.Classify(r, err))
		return
	}

	http.Redirect(w, r, constants.CurrentTasksPath+"?reported="+url.QueryEscape(ticket.Number), http.StatusSeeOther)
}
