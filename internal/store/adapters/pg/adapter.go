// Package pg implementa el adapter PostgreSQL del contrato de autenticación.
// Cada colección es una tabla documento (id UUID + data JSONB); los índices
// secundarios nombrados del schema son expression indexes sobre data.
package pg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/hellolink/internal/domain/adapter"
	"github.com/dropDatabas3/hellolink/internal/store"
)

func init() {
	store.RegisterAdapter(&postgresAdapter{})
}

// Colecciones. Los índices secundarios (user_by_email,
// account_by_provider_and_provider_account_id, session_by_session_token,
// sessions_by_user_id, accounts_by_user_id,
// verification_token_by_identifier_and_token) se provisionan en
// migrations/postgres y son precondición para operar.
const (
	usersCollection              = "users"
	accountsCollection           = "accounts"
	sessionsCollection           = "sessions"
	verificationTokensCollection = "verification_tokens"
)

// postgresAdapter implementa store.Adapter para PostgreSQL.
type postgresAdapter struct{}

func (a *postgresAdapter) Name() string { return "postgres" }

func (a *postgresAdapter) Connect(ctx context.Context, cfg store.AdapterConfig) (store.AdapterConnection, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("pg: DSN requerido")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pg: parse DSN: %w", err)
	}

	// Configurar pool
	if cfg.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	} else {
		poolCfg.MaxConns = 10
	}
	if cfg.MaxIdleConns > 0 {
		poolCfg.MinConns = int32(cfg.MaxIdleConns)
	} else {
		poolCfg.MinConns = 2
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("pg: create pool: %w", err)
	}

	// Verificar conexión
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping failed: %w", err)
	}

	return &pgConnection{pool: pool, debug: cfg.Debug}, nil
}

// pgConnection representa una conexión activa a PostgreSQL.
type pgConnection struct {
	pool  *pgxpool.Pool
	debug bool
}

func (c *pgConnection) Name() string { return "postgres" }

func (c *pgConnection) Ping(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

func (c *pgConnection) Close() error {
	c.pool.Close()
	return nil
}

// ─── Repositorios ───

func (c *pgConnection) Users() adapter.UserRepository       { return &userRepo{conn: c} }
func (c *pgConnection) Accounts() adapter.AccountRepository { return &accountRepo{conn: c} }
func (c *pgConnection) Sessions() adapter.SessionRepository { return &sessionRepo{conn: c} }
func (c *pgConnection) VerificationTokens() adapter.VerificationTokenRepository {
	return &verificationTokenRepo{conn: c}
}
func (c *pgConnection) Maintenance() adapter.Maintenance { return &maintenanceRepo{conn: c} }
