package web

import "net/http"

// Register mounts the landing page and the GET fallback. optional loads the
// session when one is present so the layout can show the user.
func (rd *Renderer) Register(mux *http.ServeMux, optional func(http.Handler) http.Handler) {
	mux.Handle("GET /{$}", optional(http.HandlerFunc(rd.home)))
	mux.Handle("GET /", optional(rd.fallback(mux)))
}

func (rd *Renderer) home(w http.ResponseWriter, r *http.Request) {
	rd.Render(w, r, http.StatusOK, PageHome, Page{Title: "Toggle Task"})
}

// fallback claims every unmatched GET. Paths that only accept POST, such as
// /logout, answer 405 instead of 404.
func (rd *Renderer) fallback(mux *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		probe := r.Clone(r.Context())
		probe.Method = http.MethodPost
		if _, pattern := mux.Handler(probe); pattern != "" {
			w.Header().Set("Allow", http.MethodPost)
			rd.Render(w, r, http.StatusMethodNotAllowed, PageError, Page{
				Title: "Method Not Allowed",
				Error: "This page only accepts form submissions.",
			})
			return
		}
		rd.NotFound(w, r)
	})
}
