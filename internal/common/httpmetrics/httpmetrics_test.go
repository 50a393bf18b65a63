package httpmetrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"", "/"},
		{"/", "/"},
		{"/current", "/current"},
		{"/task/3f2b8c1e-9d4a-4f6b-8e2a-1c3d5e7f9a0b", "/task/{id}"},
		{"/task/3F2B8C1E-9D4A-4F6B-8E2A-1C3D5E7F9A0B/complete", "/task/{id}/complete"},
		{"/task/garbage/delete", "/task/{id}/delete"},
		{"/task/42", "/task/{id}"},
		{"/task/42/edit", "/task/{id}/*"},
		{"/current/", "/current"},
		{"/wp-admin/setup.php", "/other"},
		{"/login/extra", "/login/*"},
	}

	for _, tt := range tests {
		if got := NormalizePath(tt.path); got != tt.want {
			t.Errorf("NormalizePath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestCollector_WrapPassesThrough(t *testing.T) {
	h := New().Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("ok"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/current", nil))

	if rec.Code != http.StatusTeapot || rec.Body.String() != "ok" {
		t.Errorf("unexpected response %d %q", rec.Code, rec.Body.String())
	}
}
