package observability

import (
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MetricsRoutes serves /metrics, /health (when healthChecker is set) and /ready
func MetricsRoutes(healthChecker *HealthChecker) http.Handler {
	r := chi.NewRouter()
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	if healthChecker != nil {
		r.Get("/health", healthChecker.HealthHandler())
	}
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	return r
}

// StartMetricsServer serves MetricsRoutes on port in the background.
// The caller owns shutdown of the returned server.
func StartMetricsServer(port int, healthChecker *HealthChecker, logger *zap.Logger) *http.Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	server := &http.Server{
		Addr:         net.JoinHostPort("", strconv.Itoa(port)),
		Handler:      MetricsRoutes(healthChecker),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	go func() {
		logger.Info("Metrics server listening", zap.Int("port", port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server error", zap.Error(err))
		}
	}()

	return server
}
