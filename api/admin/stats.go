package admin

import (
	"net/http"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/jobgate/core/audit"
)

// WaitStats summarises queue wait times over a set of audit records.
type WaitStats struct {
	Count          int     `json:"count"`
	Accepted       int     `json:"accepted"`
	AcceptanceRate float64 `json:"acceptance_rate"`
	MeanMS         float64 `json:"mean_ms"`
	StdDevMS       float64 `json:"stddev_ms"`
	P50MS          float64 `json:"p50_ms"`
	P95MS          float64 `json:"p95_ms"`
	P99MS          float64 `json:"p99_ms"`
	MaxMS          float64 `json:"max_ms"`
}

// ComputeStats returns wait-time statistics for recs.
func ComputeStats(recs []audit.Record) WaitStats {
	s := WaitStats{Count: len(recs)}
	if len(recs) == 0 {
		return s
	}
	waits := make([]float64, len(recs))
	for i, r := range recs {
		waits[i] = float64(r.WaitMS)
		if r.Accepted {
			s.Accepted++
		}
	}
	sort.Float64s(waits)
	s.AcceptanceRate = float64(s.Accepted) / float64(s.Count)
	s.MeanMS, s.StdDevMS = stat.MeanStdDev(waits, nil)
	if len(waits) == 1 {
		s.StdDevMS = 0
	}
	s.P50MS = stat.Quantile(0.5, stat.Empirical, waits, nil)
	s.P95MS = stat.Quantile(0.95, stat.Empirical, waits, nil)
	s.P99MS = stat.Quantile(0.99, stat.Empirical, waits, nil)
	s.MaxMS = waits[len(waits)-1]
	return s
}

// NewStatsHandler exposes wait statistics via GET /api/stats. It accepts
// the same filters as /api/outcomes.
func NewStatsHandler(store audit.Store, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r, token) {
			return
		}
		q, err := parseQuery(r.URL.Query())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		records, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, ComputeStats(records))
	})
}
