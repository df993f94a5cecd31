package monitoring

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/paveg/rframe/internal/logging"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handler exposes a collector over HTTP:
//
//	/metrics   prometheus text format
//	/summary   MetricsSummary as JSON
//	/health    collector status as JSON
func Handler(collector *MetricsCollector) http.Handler {
	r := chi.NewMux()
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", promhttp.HandlerFor(collector.Registry(), promhttp.HandlerOpts{}))
	r.Get("/summary", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, collector.GetSummary())
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"enabled":   collector.IsEnabled(),
		})
	})
	return r
}

// NewServer returns an http.Server serving Handler on addr
func NewServer(collector *MetricsCollector, addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           Handler(collector),
		ReadHeaderTimeout: 10 * time.Second, //nolint:mnd // Standard timeout value
	}
}

// Listen binds addr and serves collector on it in the background. The
// returned server's Addr is the bound address; stop it with Shutdown.
func Listen(collector *MetricsCollector, addr string) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", addr, err)
	}
	srv := NewServer(collector, ln.Addr().String())
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Named("monitoring").Error("metrics server stopped", zap.String("addr", srv.Addr), zap.Error(err))
		}
	}()
	return srv, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}
