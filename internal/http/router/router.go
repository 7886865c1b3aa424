// Package router arma el chi.Router del servicio con su chain de
// middlewares y las rutas de cada handler.
package router

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/hellolink/internal/auth"
	httpx "github.com/dropDatabas3/hellolink/internal/http"
	"github.com/dropDatabas3/hellolink/internal/http/handlers"
	mw "github.com/dropDatabas3/hellolink/internal/http/middlewares"
	"github.com/dropDatabas3/hellolink/internal/store"
)

// Deps contiene las dependencias del router.
type Deps struct {
	Service *auth.Service
	Conn    store.AdapterConnection

	CookieName    string
	SecureCookies bool
	SessionTTL    time.Duration
}

// New construye el router completo.
func New(deps Deps) stdhttp.Handler {
	r := chi.NewRouter()

	authHandler := &handlers.AuthHandler{
		Service:       deps.Service,
		CookieName:    deps.CookieName,
		SecureCookies: deps.SecureCookies,
		SessionTTL:    deps.SessionTTL,
	}
	healthHandler := &handlers.HealthHandler{Conn: deps.Conn}

	authHandler.Register(r)
	healthHandler.Register(r)

	r.Method(stdhttp.MethodGet, "/metrics", httpx.MetricsHandler())

	return mw.Chain(r,
		mw.WithRecover(),
		mw.WithRequestID(),
		httpx.WithMetrics,
		mw.WithLogging(),
	)
}
