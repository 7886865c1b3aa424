// Package memory implementa el adapter en memoria del contrato de
// autenticación. Mismas semánticas que el adapter PostgreSQL (resultados
// nil, cascada atómica, consumo único de tokens); pensado para tests y para
// correr en dev sin base de datos.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/hellolink/internal/domain/adapter"
	"github.com/dropDatabas3/hellolink/internal/store"
)

func init() {
	store.RegisterAdapter(&memoryAdapter{})
}

type memoryAdapter struct{}

func (a *memoryAdapter) Name() string { return "memory" }

func (a *memoryAdapter) Connect(ctx context.Context, cfg store.AdapterConfig) (store.AdapterConnection, error) {
	return NewConnection(), nil
}

// NewConnection crea una conexión en memoria vacía.
// Exportado para que los tests construyan una sin pasar por el registry.
func NewConnection() *Connection {
	return &Connection{
		users:              make(map[string]adapter.User),
		accounts:           make(map[string]adapter.Account),
		sessions:           make(map[string]adapter.Session),
		verificationTokens: make(map[string]adapter.VerificationToken),
	}
}

// Connection guarda las cuatro colecciones bajo un único mutex: cada
// operación del contrato es una sección crítica, igual que un round trip
// transaccional contra el store real.
type Connection struct {
	mu sync.Mutex

	// keyed por id interno del store
	users              map[string]adapter.User
	accounts           map[string]adapter.Account
	sessions           map[string]adapter.Session
	verificationTokens map[string]adapter.VerificationToken
}

func (c *Connection) Name() string                   { return "memory" }
func (c *Connection) Ping(ctx context.Context) error { return nil }
func (c *Connection) Close() error                   { return nil }

// ─── Repositorios ───

func (c *Connection) Users() adapter.UserRepository       { return &userRepo{c} }
func (c *Connection) Accounts() adapter.AccountRepository { return &accountRepo{c} }
func (c *Connection) Sessions() adapter.SessionRepository { return &sessionRepo{c} }
func (c *Connection) VerificationTokens() adapter.VerificationTokenRepository {
	return &verificationTokenRepo{c}
}
func (c *Connection) Maintenance() adapter.Maintenance { return &maintenanceRepo{c} }

// CountAccountsByUser retorna cuántas cuentas referencian al usuario.
// Solo para aserciones en tests.
func (c *Connection) CountAccountsByUser(userID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, a := range c.accounts {
		if a.UserID == userID {
			n++
		}
	}
	return n
}

// CountSessionsByUser retorna cuántas sesiones referencian al usuario.
// Solo para aserciones en tests.
func (c *Connection) CountSessionsByUser(userID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, s := range c.sessions {
		if s.UserID == userID {
			n++
		}
	}
	return n
}

// VerificationTokenStoreID retorna el id interno asignado a un token, o ""
// si no existe. Solo para aserciones en tests: el contrato nunca lo expone.
func (c *Connection) VerificationTokenStoreID(identifier, token string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, v := range c.verificationTokens {
		if v.Identifier == identifier && v.Token == token {
			return id
		}
	}
	return ""
}

// ─── UserRepository ───

type userRepo struct{ conn *Connection }

func (r *userRepo) Create(ctx context.Context, u *adapter.User) (*adapter.User, error) {
	if u == nil || u.Email == "" {
		return nil, fmt.Errorf("memory: createUser: %w", adapter.ErrInvalidInput)
	}
	r.conn.mu.Lock()
	defer r.conn.mu.Unlock()

	rec := *u
	rec.ID = uuid.NewString()
	r.conn.users[rec.ID] = rec
	out := rec
	return &out, nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*adapter.User, error) {
	r.conn.mu.Lock()
	defer r.conn.mu.Unlock()

	if rec, ok := r.conn.users[id]; ok {
		out := rec
		return &out, nil
	}
	return nil, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*adapter.User, error) {
	r.conn.mu.Lock()
	defer r.conn.mu.Unlock()

	for _, rec := range r.conn.users {
		if rec.Email == email {
			out := rec
			return &out, nil
		}
	}
	return nil, nil
}

func (r *userRepo) GetByAccount(ctx context.Context, provider, providerAccountID string) (*adapter.User, error) {
	r.conn.mu.Lock()
	defer r.conn.mu.Unlock()

	for _, a := range r.conn.accounts {
		if a.Provider == provider && a.ProviderAccountID == providerAccountID {
			if rec, ok := r.conn.users[a.UserID]; ok {
				out := rec
				return &out, nil
			}
			return nil, nil
		}
	}
	return nil, nil
}

func (r *userRepo) Update(ctx context.Context, u *adapter.User) (*adapter.User, error) {
	if u == nil || u.ID == "" {
		return nil, fmt.Errorf("memory: updateUser: %w", adapter.ErrInvalidInput)
	}
	r.conn.mu.Lock()
	defer r.conn.mu.Unlock()

	if _, ok := r.conn.users[u.ID]; !ok {
		return nil, nil
	}
	rec := *u
	r.conn.users[rec.ID] = rec
	out := rec
	return &out, nil
}

func (r *userRepo) Delete(ctx context.Context, userID string) error {
	r.conn.mu.Lock()
	defer r.conn.mu.Unlock()

	// Las tres fases bajo el mismo lock: sin estado parcial observable.
	for id, s := range r.conn.sessions {
		if s.UserID == userID {
			delete(r.conn.sessions, id)
		}
	}
	for id, a := range r.conn.accounts {
		if a.UserID == userID {
			delete(r.conn.accounts, id)
		}
	}
	delete(r.conn.users, userID)
	return nil
}

// ─── AccountRepository ───

type accountRepo struct{ conn *Connection }

func (r *accountRepo) Link(ctx context.Context, a *adapter.Account) (*adapter.Account, error) {
	if a == nil || a.UserID == "" || a.Provider == "" || a.ProviderAccountID == "" {
		return nil, fmt.Errorf("memory: linkAccount: %w", adapter.ErrInvalidInput)
	}
	r.conn.mu.Lock()
	defer r.conn.mu.Unlock()

	rec := *a
	rec.ID = uuid.NewString()
	r.conn.accounts[rec.ID] = rec
	out := rec
	return &out, nil
}

func (r *accountRepo) Unlink(ctx context.Context, provider, providerAccountID string) error {
	r.conn.mu.Lock()
	defer r.conn.mu.Unlock()

	for id, a := range r.conn.accounts {
		if a.Provider == provider && a.ProviderAccountID == providerAccountID {
			delete(r.conn.accounts, id)
			return nil
		}
	}
	// Clave inexistente: void, según la política uniforme de nulos.
	return nil
}

// ─── SessionRepository ───

type sessionRepo struct{ conn *Connection }

func (r *sessionRepo) Create(ctx context.Context, s *adapter.Session) (*adapter.Session, error) {
	if s == nil || s.UserID == "" || s.SessionToken == "" {
		return nil, fmt.Errorf("memory: createSession: %w", adapter.ErrInvalidInput)
	}
	r.conn.mu.Lock()
	defer r.conn.mu.Unlock()

	rec := *s
	rec.ID = uuid.NewString()
	r.conn.sessions[rec.ID] = rec
	out := rec
	return &out, nil
}

func (r *sessionRepo) GetWithUser(ctx context.Context, sessionToken string) (*adapter.SessionAndUser, error) {
	r.conn.mu.Lock()
	defer r.conn.mu.Unlock()

	for _, s := range r.conn.sessions {
		if s.SessionToken == sessionToken {
			sess := s
			pair := &adapter.SessionAndUser{Session: &sess}
			if u, ok := r.conn.users[s.UserID]; ok {
				user := u
				pair.User = &user
			}
			return pair, nil
		}
	}
	return nil, nil
}

func (r *sessionRepo) Update(ctx context.Context, s *adapter.Session) (*adapter.Session, error) {
	if s == nil || s.SessionToken == "" {
		return nil, fmt.Errorf("memory: updateSession: %w", adapter.ErrInvalidInput)
	}
	r.conn.mu.Lock()
	defer r.conn.mu.Unlock()

	for id, old := range r.conn.sessions {
		if old.SessionToken == s.SessionToken {
			rec := *s
			rec.ID = id
			r.conn.sessions[id] = rec
			out := rec
			return &out, nil
		}
	}
	return nil, nil
}

func (r *sessionRepo) Delete(ctx context.Context, sessionToken string) error {
	r.conn.mu.Lock()
	defer r.conn.mu.Unlock()

	for id, s := range r.conn.sessions {
		if s.SessionToken == sessionToken {
			delete(r.conn.sessions, id)
			return nil
		}
	}
	return nil
}

// ─── VerificationTokenRepository ───

type verificationTokenRepo struct{ conn *Connection }

func (r *verificationTokenRepo) Create(ctx context.Context, v *adapter.VerificationToken) (*adapter.VerificationToken, error) {
	if v == nil || v.Identifier == "" || v.Token == "" {
		return nil, fmt.Errorf("memory: createVerificationToken: %w", adapter.ErrInvalidInput)
	}
	r.conn.mu.Lock()
	defer r.conn.mu.Unlock()

	// El id interno queda en la key del map; el registro retornado no lo
	// lleva (el tipo del contrato no tiene campo ID).
	rec := *v
	r.conn.verificationTokens[uuid.NewString()] = rec
	out := rec
	return &out, nil
}

func (r *verificationTokenRepo) Use(ctx context.Context, identifier, token string) (*adapter.VerificationToken, error) {
	r.conn.mu.Lock()
	defer r.conn.mu.Unlock()

	// Lookup y delete bajo el mismo lock: de dos consumidores concurrentes
	// exactamente uno encuentra el registro.
	for id, v := range r.conn.verificationTokens {
		if v.Identifier == identifier && v.Token == token {
			delete(r.conn.verificationTokens, id)
			out := v
			return &out, nil
		}
	}
	return nil, nil
}

// ─── Maintenance ───

type maintenanceRepo struct{ conn *Connection }

func (r *maintenanceRepo) DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error) {
	r.conn.mu.Lock()
	defer r.conn.mu.Unlock()

	n := 0
	for id, s := range r.conn.sessions {
		if s.Expires.Before(now) {
			delete(r.conn.sessions, id)
			n++
		}
	}
	return n, nil
}

func (r *maintenanceRepo) DeleteExpiredVerificationTokens(ctx context.Context, now time.Time) (int, error) {
	r.conn.mu.Lock()
	defer r.conn.mu.Unlock()

	n := 0
	for id, v := range r.conn.verificationTokens {
		if v.Expires.Before(now) {
			delete(r.conn.verificationTokens, id)
			n++
		}
	}
	return n, nil
}
