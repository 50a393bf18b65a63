package http

import (
	"net/http"
	"time"

	"github.com/AlibekovAA/toggle-task/internal/auth/service"
	"github.com/AlibekovAA/toggle-task/internal/common/constants"
	commonhttp "github.com/AlibekovAA/toggle-task/internal/common/http"
	"github.com/AlibekovAA/toggle-task/internal/common/logger"
	"github.com/AlibekovAA/toggle-task/internal/common/session"
	"github.com/AlibekovAA/toggle-task/internal/web"
)

type Config struct {
	CookieSecure   bool
	RequestTimeout time.Duration
}

type Handler struct {
	auth     *service.AuthService
	renderer *web.Renderer
	errors   *commonhttp.ErrorHandler
	cfg      Config
	log      *logger.Logger
}

func NewHandler(auth *service.AuthService, renderer *web.Renderer, cfg Config, log *logger.Logger) *Handler {
	return &Handler{
		auth:     auth,
		renderer: renderer,
		errors:   commonhttp.NewErrorHandler(log),
		cfg:      cfg,
		log:      log,
	}
}

// Register mounts signup, login and logout. guard protects logout; limiter
// throttles credential submissions.
func (h *Handler) Register(mux *http.ServeMux, guard func(http.Handler) http.Handler, limiter *commonhttp.AuthRateLimiter) {
	optional := session.LoadSession(h.auth)
	timeout := commonhttp.WithTimeout(h.cfg.RequestTimeout)

	mux.Handle("GET /signup", optional(http.HandlerFunc(h.signupForm)))
	mux.Handle("POST /signup", limiter.Signup(timeout(h.signup)))
	mux.Handle("GET /login", optional(http.HandlerFunc(h.loginForm)))
	mux.Handle("POST /login", limiter.Login(timeout(h.login)))
	mux.Handle("POST /logout", guard(timeout(h.logout)))
}

type credentialsView struct {
	Username string
}

func (h *Handler) signupForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := session.FromContext(r.Context()); ok {
		http.Redirect(w, r, constants.CurrentTasksPath, http.StatusSeeOther)
		return
	}
	h.renderer.Render(w, r, http.StatusOK, web.PageSignup, web.Page{
		Title: "Sign up",
		Form:  credentialsView{},
	})
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var input service.RegisterInput
	if err := commonhttp.DecodeForm(r, &input); err != nil {
		h.log.Warnf("signup failed: invalid form: %v", err)
		commonhttp.WriteError(w, http.StatusBadRequest, "invalid form")
		return
	}

	result, err := h.auth.Register(r.Context(), input)
	if err != nil {
		page := web.Page{Title: "Sign up", Form: credentialsView{Username: input.Username}}
		h.renderer.RenderFormError(w, r, web.PageSignup, page, h.errors.Classify(r, err))
		return
	}

	session.SetCookie(w, result.Token, result.Identity.ExpiresAt, h.cfg.CookieSecure)
	http.Redirect(w, r, constants.CurrentTasksPath, http.StatusSeeOther)
}

func (h *Handler) loginForm(w http.ResponseWriter, r *http.Request) {
	next := session.SafeNext(r.URL.Query().Get("next"), "")
	if _, ok := session.FromContext(r.Context()); ok {
		http.Redirect(w, r, session.SafeNext(next, constants.CurrentTasksPath), http.StatusSeeOther)
		return
	}
	h.renderer.Render(w, r, http.StatusOK, web.PageLogin, web.Page{
		Title: "Log in",
		Next:  next,
		Form:  credentialsView{},
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var input service.LoginInput
	if err := commonhttp.DecodeForm(r, &input); err != nil {
		h.log.Warnf("login failed: invalid form: %v", err)
		commonhttp.WriteError(w, http.StatusBadRequest, "invalid form")
		return
	}
	next := session.SafeNext(r.PostForm.Get("next"), "")

	result, err := h.auth.Login(r.Context(), input)
	if err != nil {
		page := web.Page{Title: "Log in", Next: next, Form: credentialsView{Username: input.Username}}
		h.renderer.RenderFormError(w, r, web.PageLogin, page, h.errors.Classify(r, err))
		return
	}

	session.SetCookie(w, result.Token, result.Identity.ExpiresAt, h.cfg.CookieSecure)
	http.Redirect(w, r, session.SafeNext(next, constants.CurrentTasksPath), http.StatusSeeOther)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	id, ok := session.FromContext(r.Context())
	if !ok {
		session.RedirectToLogin(w, r)
		return
	}

	session.ClearCookie(w, h.cfg.CookieSecure)
	if err := h.auth.Logout(r.Context(), id); err != nil {
		h.renderer.RenderError(w, r, h.errors.Classify(r, err))
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
