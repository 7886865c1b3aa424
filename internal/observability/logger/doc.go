// Package logger provides a singleton Zap logger for hellolink.
//
// # Design Decisions
//
//   - Singleton: Una sola instancia global inicializada con Init().
//   - Environments: "dev" usa consola con colores, "prod" usa JSON.
//   - Levels: debug, info, warn, error (configurable via LOG_LEVEL).
//
// # Usage
//
// Inicialización (una vez en main.go):
//
//	logger.Init(logger.Config{
//	    Env:   cfg.App.Env,   // "dev" o "prod"
//	    Level: cfg.App.LogLevel,
//	})
//	defer logger.Sync()
//
// En services/adapters:
//
//	log := logger.Named("store.pg")
//	log.Debug("query normalized", logger.Op("getUserByEmail"))
package logger
