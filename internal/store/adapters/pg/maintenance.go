package pg

import (
	"context"
	"fmt"
	"time"
)

// ─── Maintenance ───

// maintenanceRepo implementa la poda out-of-band de registros vencidos.
// El contrato del adapter no filtra por expiración en los lookups; esto es
// el complemento de limpieza que corre el janitor.
type maintenanceRepo struct{ conn *pgConnection }

func (r *maintenanceRepo) DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error) {
	tag, err := r.conn.pool.Exec(ctx,
		`DELETE FROM sessions WHERE (data->'expires'->>'$time')::timestamptz < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("pg: deleteExpiredSessions: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *maintenanceRepo) DeleteExpiredVerificationTokens(ctx context.Context, now time.Time) (int, error) {
	tag, err := r.conn.pool.Exec(ctx,
		`DELETE FROM verification_tokens WHERE (data->'expires'->>'$time')::timestamptz < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("pg: deleteExpiredVerificationTokens: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
