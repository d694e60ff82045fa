// Package admin exposes the HTTP side of the service: Prometheus metrics,
// the controller status and the audit log.
package admin

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kilianp07/jobgate/core/audit"
	"github.com/kilianp07/jobgate/core/dispatch"
	"github.com/kilianp07/jobgate/core/logger"
)

// ShutdownTimeout bounds graceful shutdown of the admin server.
const ShutdownTimeout = 5 * time.Second

// StatusSource returns a controller snapshot.
type StatusSource interface {
	Status(ctx context.Context) (dispatch.Status, error)
}

// Deps are the backends served by the admin mux.
type Deps struct {
	Store  audit.Store
	Status StatusSource
	// Token, when set, is required as a bearer token on /api/ routes.
	Token    string
	Gatherer prometheus.Gatherer
}

// NewMux wires every admin route on a dedicated ServeMux.
func NewMux(d Deps) *http.ServeMux {
	if d.Store == nil {
		d.Store = audit.NopStore{}
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	mux.Handle("/api/outcomes", NewOutcomesHandler(d.Store, d.Token))
	mux.Handle("/api/stats", NewStatsHandler(d.Store, d.Token))
	if d.Status != nil {
		mux.Handle("/api/status", NewStatusHandler(d.Status, d.Token))
	}
	return mux
}

// Serve runs an HTTP server on addr until ctx is canceled.
func Serve(ctx context.Context, addr string, h http.Handler, log logger.Logger) error {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("admin server shutdown: %v", err)
		}
		cancel()
	}()
	log.Infof("admin server listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func authorized(w http.ResponseWriter, r *http.Request, token string) bool {
	if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}
