// Package auth implementa el flujo de sign-in por magic link sobre el
// contrato de almacenamiento. No conoce el driver: habla solo con los
// repositorios de la conexión.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/dropDatabas3/hellolink/internal/domain/adapter"
	"github.com/dropDatabas3/hellolink/internal/email"
	"github.com/dropDatabas3/hellolink/internal/observability/logger"
	tokens "github.com/dropDatabas3/hellolink/internal/security/token"
	"github.com/dropDatabas3/hellolink/internal/store"
)

// Provider es el nombre de provider de las cuentas creadas por este flujo.
const Provider = "magic-link"

const opaqueTokenBytes = 32

var (
	// ErrInvalidEmail indica un destino que no parsea como dirección.
	ErrInvalidEmail = errors.New("auth: invalid email")

	// ErrInvalidToken indica un token desconocido o ya consumido.
	ErrInvalidToken = errors.New("auth: invalid or used token")

	// ErrTokenExpired indica un token consumido después de su expiración.
	ErrTokenExpired = errors.New("auth: token expired")
)

// Options configura el servicio.
type Options struct {
	// BaseURL arma el magic link (BaseURL + /auth/callback).
	BaseURL string

	// MagicLinkTTL vida del token de verificación.
	MagicLinkTTL time.Duration

	// SessionTTL vida de la sesión de base de datos.
	SessionTTL time.Duration

	// Now permite inyectar el reloj en tests. Default time.Now.
	Now func() time.Time
}

// Service orquesta los flujos de autenticación.
type Service struct {
	conn   store.AdapterConnection
	sender email.Sender
	opts   Options
}

// New crea el servicio.
func New(conn store.AdapterConnection, sender email.Sender, opts Options) *Service {
	if opts.MagicLinkTTL <= 0 {
		opts.MagicLinkTTL = time.Hour
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 30 * 24 * time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{conn: conn, sender: sender, opts: opts}
}

// StartEmailSignIn genera un token de un solo uso, lo persiste hasheado y
// envía el magic link. No revela si el email ya tiene cuenta.
func (s *Service) StartEmailSignIn(ctx context.Context, to string) error {
	to = strings.TrimSpace(strings.ToLower(to))
	if _, err := mail.ParseAddress(to); err != nil {
		return ErrInvalidEmail
	}

	raw, err := tokens.GenerateOpaqueToken(opaqueTokenBytes)
	if err != nil {
		return fmt.Errorf("auth: generate token: %w", err)
	}

	expires := s.opts.Now().Add(s.opts.MagicLinkTTL)
	_, err = s.conn.VerificationTokens().Create(ctx, &adapter.VerificationToken{
		Identifier: to,
		Token:      tokens.SHA256Base64URL(raw),
		Expires:    expires,
	})
	if err != nil {
		return err
	}

	link := s.callbackLink(to, raw)
	if err := s.sender.SendMagicLink(to, link, expires); err != nil {
		return err
	}

	logger.Named("auth").Info("sign-in started", logger.Email(to), logger.Expiry(expires))
	return nil
}

// CompleteEmailSignIn consume el token del magic link y, si es válido,
// materializa usuario + cuenta vinculada + sesión de base de datos.
func (s *Service) CompleteEmailSignIn(ctx context.Context, to, rawToken string) (*adapter.Session, error) {
	to = strings.TrimSpace(strings.ToLower(to))

	vt, err := s.conn.VerificationTokens().Use(ctx, to, tokens.SHA256Base64URL(rawToken))
	if err != nil {
		return nil, err
	}
	if vt == nil {
		return nil, ErrInvalidToken
	}
	now := s.opts.Now()
	if vt.Expires.Before(now) {
		// Consumido tarde: el registro ya se borró (single use), pero la
		// sesión no se crea.
		return nil, ErrTokenExpired
	}

	user, err := s.ensureUser(ctx, to, now)
	if err != nil {
		return nil, err
	}

	if err := s.ensureAccount(ctx, user.ID, to); err != nil {
		return nil, err
	}

	sessionToken, err := tokens.GenerateOpaqueToken(opaqueTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("auth: generate session token: %w", err)
	}
	session, err := s.conn.Sessions().Create(ctx, &adapter.Session{
		UserID:       user.ID,
		SessionToken: sessionToken,
		Expires:      now.Add(s.opts.SessionTTL),
	})
	if err != nil {
		return nil, err
	}

	logger.Named("auth").Info("sign-in completed", logger.UserID(user.ID), logger.Email(to))
	return session, nil
}

// Session valida el token de sesión y retorna el par sesión/usuario.
// Sesión desconocida o vencida retorna (nil, nil); la vencida se borra.
// Una sesión que pasó la mitad de su vida se renueva (sliding expiry).
func (s *Service) Session(ctx context.Context, sessionToken string) (*adapter.SessionAndUser, error) {
	pair, err := s.conn.Sessions().GetWithUser(ctx, sessionToken)
	if err != nil {
		return nil, err
	}
	if pair == nil || pair.User == nil {
		return nil, nil
	}

	now := s.opts.Now()
	if pair.Session.Expires.Before(now) {
		_ = s.conn.Sessions().Delete(ctx, sessionToken)
		return nil, nil
	}

	if pair.Session.Expires.Sub(now) < s.opts.SessionTTL/2 {
		renewed := *pair.Session
		renewed.Expires = now.Add(s.opts.SessionTTL)
		if updated, err := s.conn.Sessions().Update(ctx, &renewed); err == nil && updated != nil {
			pair.Session = updated
		}
		// Si la renovación falla, la sesión vigente sigue siendo válida.
	}

	return pair, nil
}

// SignOut borra la sesión. Token desconocido es void.
func (s *Service) SignOut(ctx context.Context, sessionToken string) error {
	return s.conn.Sessions().Delete(ctx, sessionToken)
}

// DeleteAccount borra el usuario con cascada (sesiones y cuentas incluidas).
func (s *Service) DeleteAccount(ctx context.Context, userID string) error {
	return s.conn.Users().Delete(ctx, userID)
}

// ensureUser busca el usuario por email o lo crea, y en ambos casos deja
// emailVerified estampado: consumir el magic link prueba posesión.
func (s *Service) ensureUser(ctx context.Context, to string, now time.Time) (*adapter.User, error) {
	user, err := s.conn.Users().GetByEmail(ctx, to)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return s.conn.Users().Create(ctx, &adapter.User{
			Email:         to,
			EmailVerified: &now,
		})
	}
	if user.EmailVerified == nil {
		user.EmailVerified = &now
		return s.conn.Users().Update(ctx, user)
	}
	return user, nil
}

// ensureAccount vincula la cuenta magic-link si todavía no existe.
func (s *Service) ensureAccount(ctx context.Context, userID, to string) error {
	owner, err := s.conn.Users().GetByAccount(ctx, Provider, to)
	if err != nil {
		return err
	}
	if owner != nil {
		return nil
	}
	_, err = s.conn.Accounts().Link(ctx, &adapter.Account{
		UserID:            userID,
		Type:              "email",
		Provider:          Provider,
		ProviderAccountID: to,
	})
	return err
}

func (s *Service) callbackLink(to, rawToken string) string {
	q := url.Values{}
	q.Set("email", to)
	q.Set("token", rawToken)
	return strings.TrimRight(s.opts.BaseURL, "/") + "/auth/callback?" + q.Encode()
}
