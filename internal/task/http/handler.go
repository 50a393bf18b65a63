package http

import (
	"net/http"
	"regexp"
	"time"

	"github.com/AlibekovAA/toggle-task/internal/common/constants"
	commonhttp "github.com/AlibekovAA/toggle-task/internal/common/http"
	"github.com/AlibekovAA/toggle-task/internal/common/logger"
	"github.com/AlibekovAA/toggle-task/internal/common/session"
	"github.com/AlibekovAA/toggle-task/internal/task/domain"
	"github.com/AlibekovAA/toggle-task/internal/task/service"
	userdomain "github.com/AlibekovAA/toggle-task/internal/user/domain"
	"github.com/AlibekovAA/toggle-task/internal/web"
)

var ticketNumberPattern = regexp.MustCompile(`^[A-Z0-9]+$`)

type Handler struct {
	tasks    *service.TaskService
	renderer *web.Renderer
	errors   *commonhttp.ErrorHandler
	timeout  time.Duration
	log      *logger.Logger
}

func NewHandler(tasks *service.TaskService, renderer *web.Renderer, timeout time.Duration, log *logger.Logger) *Handler {
	return &Handler{
		tasks:    tasks,
		renderer: renderer,
		errors:   commonhttp.NewErrorHandler(log),
		timeout:  timeout,
		log:      log,
	}
}

// Register mounts the task routes behind guard.
func (h *Handler) Register(mux *http.ServeMux, guard func(http.Handler) http.Handler) {
	timeout := commonhttp.WithTimeout(h.timeout)
	route := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, guard(timeout(fn)))
	}

	route("GET /create", h.createForm)
	route("POST /create", h.create)
	route("GET /current", h.current)
	route("GET /completed", h.completed)
	route("GET /task/{id}", h.view)
	route("POST /task/{id}", h.update)
	route("POST /task/{id}/complete", h.complete)
	route("POST /task/{id}/delete", h.delete)
}

func owner(r *http.Request) (userdomain.ID, bool) {
	id, ok := session.FromContext(r.Context())
	if !ok {
		return "", false
	}
	return userdomain.ID(id.UserID), true
}

func taskID(r *http.Request) domain.ID {
	return domain.ID(r.PathValue("id"))
}

func formFor(task domain.Task) service.TaskInput {
	important := ""
	if task.Important {
		important = "on"
	}
	return service.TaskInput{Title: task.Title, Memo: task.Memo, Important: important}
}

func redirectToCurrent(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, constants.CurrentTasksPath, http.StatusSeeOther)
}

func (h *Handler) createForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, http.StatusOK, web.PageCreate, web.Page{
		Title: "New task",
		Form:  service.TaskInput{},
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	uid, ok := owner(r)
	if !ok {
		session.RedirectToLogin(w, r)
		return
	}

	var input service.TaskInput
	if err := commonhttp.DecodeForm(r, &input); err != nil {
		commonhttp.WriteError(w, http.StatusBadRequest, "invalid form")
		return
	}

	if _, err := h.tasks.CreateTask(r.Context(), uid, input); err != nil {
		page := web.Page{Title: "New task", Form: input}
		h.renderer.RenderFormError(w, r, web.PageCreate, page, h.errors.Classify(r, err))
		return
	}

	redirectToCurrent(w, r)
}

func (h *Handler) current(w http.ResponseWriter, r *http.Request) {
	uid, ok := owner(r)
	if !ok {
		session.RedirectToLogin(w, r)
		return
	}

	tasks, err := h.tasks.ListCurrent(r.Context(), uid)
	if err != nil {
		h.renderer.RenderError(w, r, h.errors.Classify(r, err))
		return
	}

	page := web.Page{Title: "Current tasks", Tasks: tasks}
	if r.URL.Query().Has("reported") {
		page.Flash = "Thanks, your issue was reported."
		if number := r.URL.Query().Get("reported"); ticketNumberPattern.MatchString(number) {
			page.Flash = "Thanks, your issue was reported as " + number + "."
		}
	}
	h.renderer.Render(w, r, http.StatusOK, web.PageCurrent, page)
}

func (h *Handler) completed(w http.ResponseWriter, r *http.Request) {
	uid, ok := owner(r)
	if !ok {
		session.RedirectToLogin(w, r)
		return
	}

	tasks, err := h.tasks.ListCompleted(r.Context(), uid)
	if err != nil {
		h.renderer.RenderError(w, r, h.errors.Classify(r, err))
		return
	}

	h.renderer.Render(w, r, http.StatusOK, web.PageCompleted, web.Page{Title: "Completed tasks", Tasks: tasks})
}

func (h *Handler) view(w http.ResponseWriter, r *http.Request) {
	uid, ok := owner(r)
	if !ok {
		session.RedirectToLogin(w, r)
		return
	}

	task, err := h.tasks.GetTask(r.Context(), uid, taskID(r))
	if err != nil {
		h.renderer.RenderError(w, r, h.errors.Classify(r, err))
		return
	}

	h.renderer.Render(w, r, http.StatusOK, web.PageTask, web.Page{
		Title: task.Title,
		Task:  &task,
		Form:  formFor(task),
	})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	uid, ok := owner(r)
	if !ok {
		session.RedirectToLogin(w, r)
		return
	}

	var input service.TaskInput
	if err := commonhttp.DecodeForm(r, &input); err != nil {
		commonhttp.WriteError(w, http.StatusBadRequest, "invalid form")
		return
	}

	id := taskID(r)
	if _, err := h.tasks.UpdateTask(r.Context(), uid, id, input); err != nil {
		domainErr := h.errors.Classify(r, err)
		task, getErr := h.tasks.GetTask(r.Context(), uid, id)
		if getErr != nil {
			h.renderer.RenderError(w, r, h.errors.Classify(r, getErr))
			return
		}
		page := web.Page{Title: task.Title, Task: &task, Form: input}
		h.renderer.RenderFormError(w, r, web.PageTask, page, domainErr)
		return
	}

	redirectToCurrent(w, r)
}

func (h *Handler) complete(w http.ResponseWriter, r *http.Request) {
	uid, ok := owner(r)
	if !ok {
		session.RedirectToLogin(w, r)
		return
	}

	if _, err := h.tasks.CompleteTask(r.Context(), uid, taskID(r)); err != nil {
		h.renderer.RenderError(w, r, h.errors.Classify(r, err))
		return
	}

	redirectToCurrent(w, r)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	uid, ok := owner(r)
	if !ok {
		session.RedirectToLogin(w, r)
		return
	}

	if err := h.tasks.DeleteTask(r.Context(), uid, taskID(r)); err != nil {
		h.renderer.RenderError(w, r, h.errors.Classify(r, err))
		return
	}

	redirectToCurrent(w, r)
}
