// Package metrics centraliza las métricas Prometheus de hellolink.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	storeOnce sync.Once

	storeQueriesTotal *prometheus.CounterVec
)

// initStore inicializa las métricas del store en el registry default.
func initStore() {
	storeQueriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "store_queries_total",
		Help: "Round trips al store por operación y outcome normalizado",
	}, []string{"op", "outcome"}) // outcome: ok|not_found|malformed_key|error

	registerCollector(prometheus.DefaultRegisterer, storeQueriesTotal)
}

// StoreQuery incrementa el contador de round trips del store.
func StoreQuery(op, outcome string) {
	storeOnce.Do(initStore)
	storeQueriesTotal.WithLabelValues(op, outcome).Inc()
}

// registerCollector registra el collector ignorando duplicados.
func registerCollector(reg prometheus.Registerer, collector prometheus.Collector) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if err := reg.Register(collector); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return
		}
		// Un registro fallido no debe voltear el proceso; las métricas son
		// best-effort.
	}
}
