package pg

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/hellolink/internal/domain/adapter"
	"github.com/dropDatabas3/hellolink/internal/store/codec"
)

// ─── UserRepository ───

type userRepo struct{ conn *pgConnection }

// userDoc arma el documento de un usuario. El id no va en data: vive en la
// columna id (el identificador es inmutable y lo asigna el store).
func userDoc(u *adapter.User) codec.Doc {
	d := codec.Doc{
		"email": u.Email,
		"name":  u.Name,
		"image": u.Image,
	}
	if u.EmailVerified != nil {
		d["emailVerified"] = *u.EmailVerified
	}
	return d
}

// docUser mapea un documento aplanado a la entidad.
func docUser(d codec.Doc) *adapter.User {
	if d == nil {
		return nil
	}
	return &adapter.User{
		ID:            d.String("id"),
		Email:         d.String("email"),
		Name:          d.String("name"),
		Image:         d.String("image"),
		EmailVerified: d.TimePtr("emailVerified"),
	}
}

func (r *userRepo) Create(ctx context.Context, u *adapter.User) (*adapter.User, error) {
	if u == nil || u.Email == "" {
		return nil, fmt.Errorf("pg: createUser: %w", adapter.ErrInvalidInput)
	}
	data, err := encodeDoc(userDoc(u))
	if err != nil {
		return nil, fmt.Errorf("pg: createUser: encode: %w", err)
	}
	doc, err := r.conn.queryDoc(ctx, r.conn.pool, "createUser",
		`INSERT INTO users (data) VALUES ($1) RETURNING id, data`, data)
	if err != nil {
		return nil, err
	}
	return docUser(doc), nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*adapter.User, error) {
	doc, err := r.conn.queryDoc(ctx, r.conn.pool, "getUser",
		`SELECT id, data FROM users WHERE id = $1::uuid`, id)
	if err != nil {
		return nil, err
	}
	return docUser(doc), nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*adapter.User, error) {
	doc, err := r.conn.queryDoc(ctx, r.conn.pool, "getUserByEmail",
		`SELECT id, data FROM users WHERE data->>'email' = $1`, email)
	if err != nil {
		return nil, err
	}
	return docUser(doc), nil
}

// GetByAccount resuelve la cuenta por su clave natural y dereferencia el
// usuario dueño en un único round trip. Si la cuenta no existe (o la
// referencia está malformada), el JOIN no produce filas y el resultado es
// nil sin segundo lookup.
func (r *userRepo) GetByAccount(ctx context.Context, provider, providerAccountID string) (*adapter.User, error) {
	const query = `
		SELECT u.id, u.data
		FROM accounts a
		JOIN users u ON u.id = (a.data->>'userId')::uuid
		WHERE a.data->>'provider' = $1 AND a.data->>'providerAccountId' = $2
	`
	doc, err := r.conn.queryDoc(ctx, r.conn.pool, "getUserByAccount", query, provider, providerAccountID)
	if err != nil {
		return nil, err
	}
	return docUser(doc), nil
}

func (r *userRepo) Update(ctx context.Context, u *adapter.User) (*adapter.User, error) {
	if u == nil || u.ID == "" {
		return nil, fmt.Errorf("pg: updateUser: %w", adapter.ErrInvalidInput)
	}
	data, err := encodeDoc(userDoc(u))
	if err != nil {
		return nil, fmt.Errorf("pg: updateUser: encode: %w", err)
	}
	// Full replace de data; el id es inmutable por construcción.
	doc, err := r.conn.queryDoc(ctx, r.conn.pool, "updateUser",
		`UPDATE users SET data = $2 WHERE id = $1::uuid RETURNING id, data`, u.ID, data)
	if err != nil {
		return nil, err
	}
	return docUser(doc), nil
}

// Delete borra el usuario con cascada: sesiones, cuentas y el registro de
// usuario, las tres fases en una sola transacción. No hay estado parcial
// observable si el proceso muere a mitad de camino.
func (r *userRepo) Delete(ctx context.Context, userID string) error {
	tx, err := r.conn.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("pg: deleteUser: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := r.conn.execDoc(ctx, tx, "deleteUser.sessions",
		`DELETE FROM sessions WHERE data->>'userId' = $1`, userID); err != nil {
		return err
	}
	if err := r.conn.execDoc(ctx, tx, "deleteUser.accounts",
		`DELETE FROM accounts WHERE data->>'userId' = $1`, userID); err != nil {
		return err
	}
	if err := r.conn.execDoc(ctx, tx, "deleteUser",
		`DELETE FROM users WHERE id = $1::uuid`, userID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("pg: deleteUser: commit tx: %w", err)
	}
	return nil
}
