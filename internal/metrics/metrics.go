// Package metrics wires the DNS listener's and reconciler's atomic counters
// into Prometheus, the way the teacher's api/grpc/middleware package wires
// its RPC counters: package-level CounterVec/HistogramVec registered once in
// init and incremented inline at the call site.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Queries counts DNS queries received, labeled by listener transport
	// (udp, tcp, dot).
	Queries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zt_dnsd_queries_total",
			Help: "Total DNS queries received, by transport.",
		},
		[]string{"transport"},
	)

	// Answers counts responses sent, labeled by rcode.
	Answers = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zt_dnsd_answers_total",
			Help: "Total DNS responses sent, by rcode.",
		},
		[]string{"rcode"},
	)

	// Errors counts malformed queries answered with FORMERR (a query with
	// no question section).
	Errors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "zt_dnsd_errors_total",
			Help: "Total malformed queries (FORMERR).",
		},
	)

	// NXDOMAIN counts negative name-error responses.
	NXDOMAIN = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "zt_dnsd_nxdomain_total",
			Help: "Total NXDOMAIN responses.",
		},
	)

	// ReconcileCycles counts completed reconciler cycles, labeled by
	// outcome (ok, roster_error).
	ReconcileCycles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zt_dnsd_reconcile_cycles_total",
			Help: "Total reconciler cycles, by outcome.",
		},
		[]string{"outcome"},
	)

	// ReconcileDuration observes cycle wall-clock time.
	ReconcileDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "zt_dnsd_reconcile_duration_seconds",
			Help:    "Reconciler cycle duration.",
			Buckets: prometheus.DefBuckets,
		},
	)

	// RecordsPublished observes the number of RRs committed to the
	// catalog per cycle.
	RecordsPublished = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "zt_dnsd_reconcile_records_published",
			Help:    "Number of RRs committed to the catalog per reconciler cycle.",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)
)

func init() {
	prometheus.MustRegister(Queries, Answers, Errors, NXDOMAIN,
		ReconcileCycles, ReconcileDuration, RecordsPublished)
}
