package admin

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/kilianp07/jobgate/core/dispatch"
)

const statusTimeout = 2 * time.Second

// NewStatusHandler exposes the controller snapshot via GET /api/status.
func NewStatusHandler(src StatusSource, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r, token) {
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), statusTimeout)
		defer cancel()
		st, err := src.Status(ctx)
		switch {
		case errors.Is(err, dispatch.ErrClosed):
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		case err != nil:
			http.Error(w, err.Error(), http.StatusGatewayTimeout)
			return
		}
		writeJSON(w, st)
	})
}
