package pg

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/hellolink/internal/domain/adapter"
	"github.com/dropDatabas3/hellolink/internal/store/codec"
)

// ─── VerificationTokenRepository ───

type verificationTokenRepo struct{ conn *pgConnection }

func verificationTokenDoc(v *adapter.VerificationToken) codec.Doc {
	return codec.Doc{
		"identifier": v.Identifier,
		"token":      v.Token,
		"expires":    v.Expires,
	}
}

// docVerificationToken descarta el id del envelope: el contrato de esta
// entidad nunca expone el identificador interno del store.
func docVerificationToken(d codec.Doc) *adapter.VerificationToken {
	if d == nil {
		return nil
	}
	return &adapter.VerificationToken{
		Identifier: d.String("identifier"),
		Token:      d.String("token"),
		Expires:    d.Time("expires"),
	}
}

func (r *verificationTokenRepo) Create(ctx context.Context, v *adapter.VerificationToken) (*adapter.VerificationToken, error) {
	if v == nil || v.Identifier == "" || v.Token == "" {
		return nil, fmt.Errorf("pg: createVerificationToken: %w", adapter.ErrInvalidInput)
	}
	data, err := encodeDoc(verificationTokenDoc(v))
	if err != nil {
		return nil, fmt.Errorf("pg: createVerificationToken: encode: %w", err)
	}
	doc, err := r.conn.queryDoc(ctx, r.conn.pool, "createVerificationToken",
		`INSERT INTO verification_tokens (data) VALUES ($1) RETURNING id, data`, data)
	if err != nil {
		return nil, err
	}
	return docVerificationToken(doc), nil
}

// Use consume el token: lookup por el índice compuesto con FOR UPDATE y
// delete por la referencia resuelta, ambos en una transacción. El lock
// garantiza que de dos consumidores concurrentes exactamente uno ve el
// registro; el otro observa not-found y recibe nil.
func (r *verificationTokenRepo) Use(ctx context.Context, identifier, token string) (*adapter.VerificationToken, error) {
	tx, err := r.conn.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("pg: useVerificationToken: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	doc, err := r.conn.queryDoc(ctx, tx, "useVerificationToken",
		`SELECT id, data FROM verification_tokens
		 WHERE data->>'identifier' = $1 AND data->>'token' = $2
		 FOR UPDATE`, identifier, token)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}

	if err := r.conn.execDoc(ctx, tx, "useVerificationToken.delete",
		`DELETE FROM verification_tokens WHERE id = $1::uuid`, doc.String("id")); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("pg: useVerificationToken: commit tx: %w", err)
	}
	return docVerificationToken(doc), nil
}
