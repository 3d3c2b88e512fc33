// Package adminserver exposes the one shared admin port every tenant MCP
// host runs alongside: liveness and the process-wide Prometheus registry.
// Slimmed down from the teacher's internal/httpserver.Server, which mounted
// a full chi router with auth, tenant, and domain routes — none of that
// applies here, since this port carries nothing but /healthz and /metrics.
package adminserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// New builds the admin http.Handler. db and cache are pinged by /healthz;
// registry backs /metrics.
func New(db *pgxpool.Pool, cache *redis.Client, registry *prometheus.Registry, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handleHealthz(db, cache, logger))
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return mux
}

func handleHealthz(db *pgxpool.Pool, cache *redis.Client, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := map[string]string{"postgres": "ok", "redis": "ok"}
		healthy := true

		if err := db.Ping(ctx); err != nil {
			logger.Error("healthz: postgres ping failed", "error", err)
			status["postgres"] = "error"
			healthy = false
		}
		if err := cache.Ping(ctx).Err(); err != nil {
			logger.Error("healthz: redis ping failed", "error", err)
			status["redis"] = "error"
			healthy = false
		}

		w.Header().Set("Content-Type", "application/json")
		if !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(status)
	}
}
