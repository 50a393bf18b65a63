package session

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AlibekovAA/toggle-task/internal/common/clock"
	"github.com/AlibekovAA/toggle-task/internal/common/constants"
	"github.com/AlibekovAA/toggle-task/internal/common/logger"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type fixedIDs struct{ id string }

func (f fixedIDs) NewID() (string, error) { return f.id, nil }

type authFunc func(ctx context.Context, token string) (Identity, error)

func (f authFunc) Authenticate(ctx context.Context, token string) (Identity, error) {
	return f(ctx, token)
}

func newTestIssuer(clk clock.Clock) *Issuer {
	return NewIssuer(testSecret, time.Hour, fixedIDs{id: "jti-1"}, clk)
}

func TestIssuer_IssueAndParse(t *testing.T) {
	clk := clock.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	issuer := newTestIssuer(clk)

	token, issued, err := issuer.Issue("user-1", "alice")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if issued.SessionID != "jti-1" {
		t.Errorf("expected session id jti-1, got %s", issued.SessionID)
	}

	parsed, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if parsed.UserID != "user-1" || parsed.Username != "alice" || parsed.SessionID != issued.SessionID {
		t.Errorf("parsed identity %+v does not match issued %+v", parsed, issued)
	}
	if !parsed.ExpiresAt.Equal(issued.ExpiresAt) {
		t.Errorf("expected expiry %v, got %v", issued.ExpiresAt, parsed.ExpiresAt)
	}
}

func TestIssuer_ParseRejects(t *testing.T) {
	clk := clock.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	issuer := newTestIssuer(clk)
	token, _, err := issuer.Issue("user-1", "alice")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	other := NewIssuer("another-secret-another-secret-xx", time.Hour, fixedIDs{id: "x"}, clk)

	tests := []struct {
		name  string
		token string
		p     *Issuer
		want  error
	}{
		{name: "empty", token: "", p: issuer, want: ErrMissingToken},
		{name: "garbage", token: "not-a-jwt", p: issuer, want: ErrInvalidToken},
		{name: "wrong secret", token: token, p: other, want: ErrInvalidToken},
		{name: "tampered", token: token + "x", p: issuer, want: ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.p.Parse(tt.token); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	clk.Advance(2 * time.Hour)
	if _, err := issuer.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected expired token to be rejected, got %v", err)
	}
}

func TestRequireSession(t *testing.T) {
	log := logger.NewWriter(io.Discard, "test", "error")
	want := Identity{UserID: "u1", Username: "alice", SessionID: "s1"}

	auth := authFunc(func(ctx context.Context, token string) (Identity, error) {
		if token == "good" {
			return want, nil
		}
		return Identity{}, ErrInvalidToken
	})

	var got Identity
	protected := RequireSession(auth, log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name         string
		cookie       string
		wantStatus   int
		wantLocation string
	}{
		{name: "no cookie", wantStatus: http.StatusSeeOther, wantLocation: "/login?next=%2Fcurrent"},
		{name: "bad cookie", cookie: "bad", wantStatus: http.StatusSeeOther, wantLocation: "/login?next=%2Fcurrent"},
		{name: "valid", cookie: "good", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got = Identity{}
			req := httptest.NewRequest(http.MethodGet, "/current", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if loc := rec.Header().Get("Location"); loc != tt.wantLocation {
				t.Errorf("expected location %q, got %q", tt.wantLocation, loc)
			}
			if tt.wantStatus == http.StatusOK && got != want {
				t.Errorf("expected identity %+v in context, got %+v", want, got)
			}
		})
	}
}

func TestRequireSession_PostRedirectsWithoutNext(t *testing.T) {
	log := logger.NewWriter(io.Discard, "test", "error")
	auth := authFunc(func(ctx context.Context, token string) (Identity, error) {
		return Identity{}, ErrInvalidToken
	})
	protected := RequireSession(auth, log)(http.NotFoundHandler())

	req := httptest.NewRequest(http.MethodPost, "/task/abc/delete", nil)
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != constants.LoginPath {
		t.Errorf("unexpected redirect: %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestSafeNext(t *testing.T) {
	tests := []struct {
		next string
		want string
	}{
		{next: "", want: "/current"},
		{next: "/completed", want: "/completed"},
		{next: "/task/1?x=2", want: "/task/1?x=2"},
		{next: "https://evil.example/", want: "/current"},
		{next: "//evil.example/", want: "/current"},
		{next: "/\\evil.example", want: "/current"},
		{next: "relative", want: "/current"},
	}

	for _, tt := range tests {
		if got := SafeNext(tt.next, "/current"); got != tt.want {
			t.Errorf("SafeNext(%q) = %q, want %q", tt.next, got, tt.want)
		}
	}
}

func TestCookies(t *testing.T) {
	rec := httptest.NewRecorder()
	expires := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	SetCookie(rec, "tok", expires, true)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	c := cookies[0]
	if c.Name != constants.SessionCookieName || c.Value != "tok" || !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteLaxMode {
		t.Errorf("unexpected cookie: %+v", c)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	if got := TokenFromRequest(req); got != "tok" {
		t.Errorf("TokenFromRequest() = %q", got)
	}

	rec = httptest.NewRecorder()
	ClearCookie(rec, false)
	if c := rec.Result().Cookies()[0]; c.MaxAge >= 0 || c.Value != "" {
		t.Errorf("expected cleared cookie, got %+v", c)
	}
}
