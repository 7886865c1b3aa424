// Package janitor corre la limpieza periódica de registros vencidos.
// La expiración sigue validándose en caliente en cada lookup; esto solo
// evita que las tablas acumulen filas muertas.
package janitor

import (
	"context"
	"time"

	"github.com/dropDatabas3/hellolink/internal/domain/adapter"
	"github.com/dropDatabas3/hellolink/internal/observability/logger"
	"github.com/dropDatabas3/hellolink/internal/store"
	"go.uber.org/zap"
)

// Run ejecuta pasadas de limpieza cada interval hasta que el contexto se
// cancele. Retorna nil en cancelación limpia.
func Run(ctx context.Context, conn store.AdapterConnection, interval time.Duration) error {
	log := logger.Named("janitor")

	maint := conn.Maintenance()
	if maint == nil || interval <= 0 {
		log.Info("janitor disabled")
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info("janitor started", logger.Duration(interval))
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			sweep(ctx, maint, log)
		}
	}
}

func sweep(ctx context.Context, maint adapter.Maintenance, log *zap.Logger) {
	now := time.Now()

	if n, err := maint.DeleteExpiredSessions(ctx, now); err != nil {
		log.Warn("expired session sweep failed", logger.Err(err))
	} else if n > 0 {
		log.Info("expired sessions pruned", logger.Count(n))
	}

	if n, err := maint.DeleteExpiredVerificationTokens(ctx, now); err != nil {
		log.Warn("expired verification token sweep failed", logger.Err(err))
	} else if n > 0 {
		log.Info("expired verification tokens pruned", logger.Count(n))
	}
}
