package auth_test

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/hellolink/internal/auth"
	"github.com/dropDatabas3/hellolink/internal/store/adapters/memory"
)

// fakeSender captura el último magic link en vez de enviarlo.
type fakeSender struct {
	to   string
	link string
	sent int
}

func (f *fakeSender) SendMagicLink(to, link string, _ time.Time) error {
	f.to = to
	f.link = link
	f.sent++
	return nil
}

// tokenFromLink extrae el token en claro del magic link capturado.
func tokenFromLink(t *testing.T, link string) string {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	return u.Query().Get("token")
}

func newService(t *testing.T, now *time.Time) (*auth.Service, *memory.Connection, *fakeSender) {
	t.Helper()
	conn := memory.NewConnection()
	sender := &fakeSender{}
	svc := auth.New(conn, sender, auth.Options{
		BaseURL:      "https://login.example.com",
		MagicLinkTTL: time.Hour,
		SessionTTL:   30 * 24 * time.Hour,
		Now:          func() time.Time { return *now },
	})
	return svc, conn, sender
}

func TestStartEmailSignIn_SendsLink(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	svc, conn, sender := newService(t, &now)

	require.NoError(t, svc.StartEmailSignIn(ctx, "  Ana@Example.COM "))

	require.Equal(t, 1, sender.sent)
	require.Equal(t, "ana@example.com", sender.to)
	require.True(t, strings.HasPrefix(sender.link, "https://login.example.com/auth/callback?"))

	raw := tokenFromLink(t, sender.link)
	require.NotEmpty(t, raw)

	// El token en claro jamás se persiste: en el store vive el hash.
	require.Empty(t, conn.VerificationTokenStoreID("ana@example.com", raw))
}

func TestStartEmailSignIn_InvalidEmail(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	svc, _, sender := newService(t, &now)

	require.ErrorIs(t, svc.StartEmailSignIn(ctx, "no-es-un-email"), auth.ErrInvalidEmail)
	require.Zero(t, sender.sent)
}

func TestCompleteEmailSignIn_CreatesUserAccountAndSession(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	svc, conn, sender := newService(t, &now)

	require.NoError(t, svc.StartEmailSignIn(ctx, "ana@example.com"))
	raw := tokenFromLink(t, sender.link)

	session, err := svc.CompleteEmailSignIn(ctx, "ana@example.com", raw)
	require.NoError(t, err)
	require.NotEmpty(t, session.SessionToken)
	require.WithinDuration(t, now.Add(30*24*time.Hour), session.Expires, time.Second)

	user, err := conn.Users().GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	require.NotNil(t, user.EmailVerified, "consumir el link prueba posesión del mail")
	require.Equal(t, user.ID, session.UserID)

	owner, err := conn.Users().GetByAccount(ctx, auth.Provider, "ana@example.com")
	require.NoError(t, err)
	require.NotNil(t, owner)
	require.Equal(t, user.ID, owner.ID)
}

func TestCompleteEmailSignIn_TokenIsSingleUse(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	svc, _, sender := newService(t, &now)

	require.NoError(t, svc.StartEmailSignIn(ctx, "ana@example.com"))
	raw := tokenFromLink(t, sender.link)

	_, err := svc.CompleteEmailSignIn(ctx, "ana@example.com", raw)
	require.NoError(t, err)

	_, err = svc.CompleteEmailSignIn(ctx, "ana@example.com", raw)
	require.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestCompleteEmailSignIn_UnknownToken(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	svc, _, _ := newService(t, &now)

	_, err := svc.CompleteEmailSignIn(ctx, "ana@example.com", "token-inventado")
	require.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestCompleteEmailSignIn_ExpiredToken(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	svc, conn, sender := newService(t, &now)

	require.NoError(t, svc.StartEmailSignIn(ctx, "ana@example.com"))
	raw := tokenFromLink(t, sender.link)

	now = now.Add(2 * time.Hour)
	_, err := svc.CompleteEmailSignIn(ctx, "ana@example.com", raw)
	require.ErrorIs(t, err, auth.ErrTokenExpired)

	// El consumo tardío igual quema el token.
	_, err = svc.CompleteEmailSignIn(ctx, "ana@example.com", raw)
	require.ErrorIs(t, err, auth.ErrInvalidToken)

	// Y no se creó sesión ni usuario.
	user, err := conn.Users().GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	require.Nil(t, user)
}

func TestCompleteEmailSignIn_ExistingUserKeepsSingleAccount(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	svc, conn, sender := newService(t, &now)

	for i := 0; i < 2; i++ {
		require.NoError(t, svc.StartEmailSignIn(ctx, "ana@example.com"))
		raw := tokenFromLink(t, sender.link)
		_, err := svc.CompleteEmailSignIn(ctx, "ana@example.com", raw)
		require.NoError(t, err)
	}

	user, err := conn.Users().GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	require.Equal(t, 1, conn.CountAccountsByUser(user.ID), "segundo sign-in no debe duplicar la cuenta")
	require.Equal(t, 2, conn.CountSessionsByUser(user.ID), "cada sign-in crea su sesión")
}

func signIn(t *testing.T, svc *auth.Service, sender *fakeSender, email string) string {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, svc.StartEmailSignIn(ctx, email))
	session, err := svc.CompleteEmailSignIn(ctx, email, tokenFromLink(t, sender.link))
	require.NoError(t, err)
	return session.SessionToken
}

func TestSession_ValidAndUnknown(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	svc, _, sender := newService(t, &now)

	token := signIn(t, svc, sender, "ana@example.com")

	pair, err := svc.Session(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, pair)
	require.Equal(t, "ana@example.com", pair.User.Email)

	pair, err = svc.Session(ctx, "token-fantasma")
	require.NoError(t, err)
	require.Nil(t, pair)
}

func TestSession_ExpiredIsDeleted(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	svc, conn, sender := newService(t, &now)

	token := signIn(t, svc, sender, "ana@example.com")

	now = now.Add(31 * 24 * time.Hour)
	pair, err := svc.Session(ctx, token)
	require.NoError(t, err)
	require.Nil(t, pair)

	// La sesión vencida se podó en el acto.
	got, err := conn.Sessions().GetWithUser(ctx, token)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestSession_SlidingRenewal(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	svc, _, sender := newService(t, &now)

	token := signIn(t, svc, sender, "ana@example.com")
	firstExpiry := now.Add(30 * 24 * time.Hour)

	// Antes de la mitad de vida: sin renovación.
	now = now.Add(24 * time.Hour)
	pair, err := svc.Session(ctx, token)
	require.NoError(t, err)
	require.WithinDuration(t, firstExpiry, pair.Session.Expires, time.Second)

	// Pasada la mitad: la expiración se corre hacia adelante.
	now = now.Add(20 * 24 * time.Hour)
	pair, err = svc.Session(ctx, token)
	require.NoError(t, err)
	require.WithinDuration(t, now.Add(30*24*time.Hour), pair.Session.Expires, time.Second)
}

func TestSignOut(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	svc, _, sender := newService(t, &now)

	token := signIn(t, svc, sender, "ana@example.com")
	require.NoError(t, svc.SignOut(ctx, token))

	pair, err := svc.Session(ctx, token)
	require.NoError(t, err)
	require.Nil(t, pair)

	// Repetir el sign-out es void.
	require.NoError(t, svc.SignOut(ctx, token))
}

func TestDeleteAccount_RemovesEverything(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	svc, conn, sender := newService(t, &now)

	token := signIn(t, svc, sender, "ana@example.com")
	pair, err := svc.Session(ctx, token)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAccount(ctx, pair.User.ID))

	user, err := conn.Users().GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	require.Nil(t, user)
	require.Zero(t, conn.CountSessionsByUser(pair.User.ID))
	require.Zero(t, conn.CountAccountsByUser(pair.User.ID))
}
