package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/hellolink/internal/auth"
	"github.com/dropDatabas3/hellolink/internal/http/handlers"
	"github.com/dropDatabas3/hellolink/internal/store/adapters/memory"
)

const cookieName = "hellolink_session"

type captureSender struct{ link string }

func (c *captureSender) SendMagicLink(_, link string, _ time.Time) error {
	c.link = link
	return nil
}

func newTestRouter(t *testing.T) (http.Handler, *captureSender) {
	t.Helper()

	conn := memory.NewConnection()
	sender := &captureSender{}
	svc := auth.New(conn, sender, auth.Options{
		BaseURL:      "http://hellolink.test",
		MagicLinkTTL: time.Hour,
		SessionTTL:   30 * 24 * time.Hour,
	})

	r := chi.NewRouter()
	h := &handlers.AuthHandler{
		Service:    svc,
		CookieName: cookieName,
		SessionTTL: 30 * 24 * time.Hour,
	}
	h.Register(r)
	return r, sender
}

func postJSON(t *testing.T, handler http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			return c
		}
	}
	return nil
}

// signInThroughAPI corre el flujo completo y retorna la cookie de sesión.
func signInThroughAPI(t *testing.T, handler http.Handler, sender *captureSender, email string) *http.Cookie {
	t.Helper()

	rec := postJSON(t, handler, "/auth/signin", `{"email":"`+email+`"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("signin status = %d, body = %s", rec.Code, rec.Body.String())
	}

	link, err := url.Parse(sender.link)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodGet, "/auth/callback?"+link.RawQuery, nil)
	cb := httptest.NewRecorder()
	handler.ServeHTTP(cb, req)
	if cb.Code != http.StatusOK {
		t.Fatalf("callback status = %d, body = %s", cb.Code, cb.Body.String())
	}

	cookie := sessionCookie(t, cb)
	if cookie == nil || cookie.Value == "" {
		t.Fatal("el callback no seteó la cookie de sesión")
	}
	if !cookie.HttpOnly {
		t.Fatal("la cookie debe ser HttpOnly")
	}
	return cookie
}

func TestSignIn_InvalidPayloads(t *testing.T) {
	handler, _ := newTestRouter(t)

	rec := postJSON(t, handler, "/auth/signin", `{"email":"no-es-email"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/auth/signin", strings.NewReader("email=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("content type incorrecto: status = %d", rec.Code)
	}
}

func TestCallback_FullFlow(t *testing.T) {
	handler, sender := newTestRouter(t)
	cookie := signInThroughAPI(t, handler, sender, "ana@example.com")

	// Con la cookie, /auth/session retorna el usuario.
	req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("session status = %d", rec.Code)
	}
	var out struct {
		User struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.User.Email != "ana@example.com" {
		t.Fatalf("user.email = %q", out.User.Email)
	}
}

func TestCallback_BadRequests(t *testing.T) {
	handler, _ := newTestRouter(t)

	cases := []struct {
		query string
		want  int
	}{
		{"", http.StatusBadRequest},
		{"?email=a@b.c", http.StatusBadRequest},
		{"?email=a@b.c&token=falso", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/auth/callback"+tc.query, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("callback%s status = %d, want %d", tc.query, rec.Code, tc.want)
		}
	}
}

func TestSession_WithoutCookie(t *testing.T) {
	handler, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestSignOut_ClearsCookie(t *testing.T) {
	handler, sender := newTestRouter(t)
	cookie := signInThroughAPI(t, handler, sender, "ana@example.com")

	req := httptest.NewRequest(http.MethodPost, "/auth/signout", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("signout status = %d", rec.Code)
	}
	cleared := sessionCookie(t, rec)
	if cleared == nil || cleared.MaxAge != -1 {
		t.Fatalf("la cookie no se limpió: %+v", cleared)
	}

	// La sesión murió: el token viejo ya no sirve.
	req = httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("session post-signout status = %d", rec.Code)
	}

	// Sign-out sin cookie también es 204.
	req = httptest.NewRequest(http.MethodPost, "/auth/signout", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("signout sin cookie status = %d", rec.Code)
	}
}

func TestDeleteMe_RemovesAccountAndSession(t *testing.T) {
	handler, sender := newTestRouter(t)
	cookie := signInThroughAPI(t, handler, sender, "ana@example.com")

	req := httptest.NewRequest(http.MethodDelete, "/auth/me", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, body = %s", rec.Code, rec.Body.String())
	}

	// Todo lo del usuario desapareció, incluida la sesión actual.
	req = httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("session post-delete status = %d", rec.Code)
	}

	// Sin sesión, el delete es 401.
	req = httptest.NewRequest(http.MethodDelete, "/auth/me", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("delete sin cookie status = %d", rec.Code)
	}
}
