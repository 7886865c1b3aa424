package pg

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/hellolink/internal/domain/adapter"
	"github.com/dropDatabas3/hellolink/internal/store/codec"
)

// ─── AccountRepository ───

type accountRepo struct{ conn *pgConnection }

func accountDoc(a *adapter.Account) codec.Doc {
	return codec.Doc{
		"userId":            a.UserID,
		"type":              a.Type,
		"provider":          a.Provider,
		"providerAccountId": a.ProviderAccountID,
	}
}

func docAccount(d codec.Doc) *adapter.Account {
	if d == nil {
		return nil
	}
	return &adapter.Account{
		ID:                d.String("id"),
		UserID:            d.String("userId"),
		Type:              d.String("type"),
		Provider:          d.String("provider"),
		ProviderAccountID: d.String("providerAccountId"),
	}
}

func (r *accountRepo) Link(ctx context.Context, a *adapter.Account) (*adapter.Account, error) {
	if a == nil || a.UserID == "" || a.Provider == "" || a.ProviderAccountID == "" {
		return nil, fmt.Errorf("pg: linkAccount: %w", adapter.ErrInvalidInput)
	}
	data, err := encodeDoc(accountDoc(a))
	if err != nil {
		return nil, fmt.Errorf("pg: linkAccount: encode: %w", err)
	}
	doc, err := r.conn.queryDoc(ctx, r.conn.pool, "linkAccount",
		`INSERT INTO accounts (data) VALUES ($1) RETURNING id, data`, data)
	if err != nil {
		return nil, err
	}
	return docAccount(doc), nil
}

// Unlink resuelve la referencia por el índice compuesto y borra en el mismo
// statement. Una clave inexistente borra cero filas: void, sin error, según
// la política uniforme de nulos.
func (r *accountRepo) Unlink(ctx context.Context, provider, providerAccountID string) error {
	return r.conn.execDoc(ctx, r.conn.pool, "unlinkAccount",
		`DELETE FROM accounts WHERE data->>'provider' = $1 AND data->>'providerAccountId' = $2`,
		provider, providerAccountID)
}
