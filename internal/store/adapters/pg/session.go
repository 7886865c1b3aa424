package pg

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/hellolink/internal/domain/adapter"
	"github.com/dropDatabas3/hellolink/internal/store/codec"
)

// ─── SessionRepository ───

type sessionRepo struct{ conn *pgConnection }

func sessionDoc(s *adapter.Session) codec.Doc {
	return codec.Doc{
		"userId":       s.UserID,
		"sessionToken": s.SessionToken,
		"expires":      s.Expires,
	}
}

func docSession(d codec.Doc) *adapter.Session {
	if d == nil {
		return nil
	}
	return &adapter.Session{
		ID:           d.String("id"),
		UserID:       d.String("userId"),
		SessionToken: d.String("sessionToken"),
		Expires:      d.Time("expires"),
	}
}

func (r *sessionRepo) Create(ctx context.Context, s *adapter.Session) (*adapter.Session, error) {
	if s == nil || s.UserID == "" || s.SessionToken == "" {
		return nil, fmt.Errorf("pg: createSession: %w", adapter.ErrInvalidInput)
	}
	data, err := encodeDoc(sessionDoc(s))
	if err != nil {
		return nil, fmt.Errorf("pg: createSession: encode: %w", err)
	}
	doc, err := r.conn.queryDoc(ctx, r.conn.pool, "createSession",
		`INSERT INTO sessions (data) VALUES ($1) RETURNING id, data`, data)
	if err != nil {
		return nil, err
	}
	return docSession(doc), nil
}

// GetWithUser busca la sesión por su token y recién entonces dereferencia el
// usuario dueño. Token desconocido corta en corto: nil sin segundo lookup.
func (r *sessionRepo) GetWithUser(ctx context.Context, sessionToken string) (*adapter.SessionAndUser, error) {
	sessDoc, err := r.conn.queryDoc(ctx, r.conn.pool, "getSessionAndUser",
		`SELECT id, data FROM sessions WHERE data->>'sessionToken' = $1`, sessionToken)
	if err != nil {
		return nil, err
	}
	if sessDoc == nil {
		return nil, nil
	}
	session := docSession(sessDoc)

	userDoc, err := r.conn.queryDoc(ctx, r.conn.pool, "getSessionAndUser.user",
		`SELECT id, data FROM users WHERE id = $1::uuid`, session.UserID)
	if err != nil {
		return nil, err
	}

	return &adapter.SessionAndUser{Session: session, User: docUser(userDoc)}, nil
}

func (r *sessionRepo) Update(ctx context.Context, s *adapter.Session) (*adapter.Session, error) {
	if s == nil || s.SessionToken == "" {
		return nil, fmt.Errorf("pg: updateSession: %w", adapter.ErrInvalidInput)
	}
	data, err := encodeDoc(sessionDoc(s))
	if err != nil {
		return nil, fmt.Errorf("pg: updateSession: encode: %w", err)
	}
	// La referencia se resuelve por el índice de token dentro del mismo
	// statement: un solo round trip para lookup + replace.
	doc, err := r.conn.queryDoc(ctx, r.conn.pool, "updateSession",
		`UPDATE sessions SET data = $2 WHERE data->>'sessionToken' = $1 RETURNING id, data`,
		s.SessionToken, data)
	if err != nil {
		return nil, err
	}
	return docSession(doc), nil
}

func (r *sessionRepo) Delete(ctx context.Context, sessionToken string) error {
	return r.conn.execDoc(ctx, r.conn.pool, "deleteSession",
		`DELETE FROM sessions WHERE data->>'sessionToken' = $1`, sessionToken)
}
