// Package handlers expone los endpoints HTTP del flujo magic-link.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/hellolink/internal/auth"
	httpx "github.com/dropDatabas3/hellolink/internal/http"
	"github.com/dropDatabas3/hellolink/internal/observability/logger"
)

// AuthHandler agrupa los endpoints de autenticación.
type AuthHandler struct {
	Service *auth.Service

	// CookieName nombre de la cookie de sesión.
	CookieName string

	// SecureCookies marca las cookies como Secure (prod detrás de TLS).
	SecureCookies bool

	// SessionTTL se usa como Max-Age de la cookie.
	SessionTTL time.Duration
}

// Register monta las rutas en el router.
func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/auth/signin", h.signIn)
	r.Get("/auth/callback", h.callback)
	r.Get("/auth/session", h.session)
	r.Post("/auth/signout", h.signOut)
	r.Delete("/auth/me", h.deleteAccount)
}

type signInIn struct {
	Email string `json:"email"`
}

// signIn maneja POST /auth/signin: dispara el envío del magic link.
// Responde 202 aunque el email no tenga cuenta (no enumerar usuarios).
func (h *AuthHandler) signIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var in signInIn
	if !httpx.ReadJSON(w, r, &in) {
		return
	}

	err := h.Service.StartEmailSignIn(ctx, in.Email)
	switch {
	case err == nil:
		httpx.WriteJSON(w, http.StatusAccepted, map[string]any{"sent": true})

	case errors.Is(err, auth.ErrInvalidEmail):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_email", "email inválido")

	default:
		logger.From(ctx).Error("sign-in start failed", logger.Err(err))
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "no se pudo iniciar el sign-in")
	}
}

// callback maneja GET /auth/callback?email=&token=: consume el token de un
// solo uso y, si es válido, setea la cookie de sesión.
func (h *AuthHandler) callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	email := r.URL.Query().Get("email")
	token := r.URL.Query().Get("token")
	if email == "" || token == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "email y token son obligatorios")
		return
	}

	session, err := h.Service.CompleteEmailSignIn(ctx, email, token)
	switch {
	case err == nil:
		h.setSessionCookie(w, session.SessionToken)
		httpx.WriteJSON(w, http.StatusOK, map[string]any{
			"userId":  session.UserID,
			"expires": session.Expires,
		})

	case errors.Is(err, auth.ErrInvalidToken):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "token inválido o ya usado")

	case errors.Is(err, auth.ErrTokenExpired):
		httpx.WriteError(w, http.StatusUnauthorized, "token_expired", "el link expiró, pedí uno nuevo")

	default:
		logger.From(ctx).Error("sign-in completion failed", logger.Err(err))
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "no se pudo completar el sign-in")
	}
}

type sessionOut struct {
	User    sessionUserOut `json:"user"`
	Expires time.Time      `json:"expires"`
}

type sessionUserOut struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Name          string     `json:"name,omitempty"`
	Image         string     `json:"image,omitempty"`
	EmailVerified *time.Time `json:"emailVerified,omitempty"`
}

// session maneja GET /auth/session: valida la cookie y retorna el par
// sesión/usuario. Sin sesión válida responde 401.
func (h *AuthHandler) session(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := h.sessionToken(r)
	if token == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "no_session", "")
		return
	}

	pair, err := h.Service.Session(ctx, token)
	if err != nil {
		logger.From(ctx).Error("session lookup failed", logger.Err(err))
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "")
		return
	}
	if pair == nil {
		h.clearSessionCookie(w)
		httpx.WriteError(w, http.StatusUnauthorized, "no_session", "")
		return
	}

	// Si hubo renovación sliding, refrescar la cookie con el mismo token.
	h.setSessionCookie(w, pair.Session.SessionToken)
	httpx.WriteJSON(w, http.StatusOK, sessionOut{
		User: sessionUserOut{
			ID:            pair.User.ID,
			Email:         pair.User.Email,
			Name:          pair.User.Name,
			Image:         pair.User.Image,
			EmailVerified: pair.User.EmailVerified,
		},
		Expires: pair.Session.Expires,
	})
}

// signOut maneja POST /auth/signout. Sin cookie o con token desconocido
// igual responde 204: el resultado final es el mismo.
func (h *AuthHandler) signOut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if token := h.sessionToken(r); token != "" {
		if err := h.Service.SignOut(ctx, token); err != nil {
			logger.From(ctx).Error("sign-out failed", logger.Err(err))
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "")
			return
		}
	}
	h.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// deleteAccount maneja DELETE /auth/me: borra el usuario de la sesión
// actual con cascada (sesiones y cuentas incluidas).
func (h *AuthHandler) deleteAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := h.sessionToken(r)
	if token == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "no_session", "")
		return
	}
	pair, err := h.Service.Session(ctx, token)
	if err != nil {
		logger.From(ctx).Error("session lookup failed", logger.Err(err))
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "")
		return
	}
	if pair == nil {
		h.clearSessionCookie(w)
		httpx.WriteError(w, http.StatusUnauthorized, "no_session", "")
		return
	}

	if err := h.Service.DeleteAccount(ctx, pair.User.ID); err != nil {
		logger.From(ctx).Error("account deletion failed", logger.Err(err), logger.UserID(pair.User.ID))
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "")
		return
	}

	logger.From(ctx).Info("account deleted", logger.UserID(pair.User.ID))
	h.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// ─── Cookies ───

func (h *AuthHandler) sessionToken(r *http.Request) string {
	cookie, err := r.Cookie(h.CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
