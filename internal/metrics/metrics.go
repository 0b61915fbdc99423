// Package metrics exposes sync and name resolution counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/omniticket-cli/internal/core/domain"
	"github.com/custodia-labs/omniticket-cli/internal/core/ports/driven"
)

var _ driven.Metrics = (*Registry)(nil)

// Registry owns a private Prometheus registry so tests and multiple
// servers never collide on the default one.
type Registry struct {
	reg *prometheus.Registry

	Items        *prometheus.CounterVec
	Runs         *prometheus.CounterVec
	Batches      prometheus.Counter
	NamesSent    prometheus.Counter
	NamesLearned prometheus.Counter
}

// NewRegistry creates and registers every counter.
func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	items := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "omniticket_sync_items_total",
		Help: "Mailbox items processed, by outcome.",
	}, []string{"outcome"})
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "omniticket_sync_runs_total",
		Help: "Finished sync runs, by result.",
	}, []string{"result"})
	batches := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "omniticket_resolver_batches_total",
		Help: "AI normalisation batches sent.",
	})
	sent := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "omniticket_resolver_names_sent_total",
		Help: "Product names sent to the AI model.",
	})
	learned := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "omniticket_resolver_names_learned_total",
		Help: "New name mappings added to the cache.",
	})

	r.MustRegister(items, runs, batches, sent, learned)
	return &Registry{
		reg:          r,
		Items:        items,
		Runs:         runs,
		Batches:      batches,
		NamesSent:    sent,
		NamesLearned: learned,
	}
}

// SyncItem counts one processed mailbox item.
func (r *Registry) SyncItem(outcome domain.SyncOutcome) {
	r.Items.WithLabelValues(string(outcome)).Inc()
}

// SyncRun counts a finished run.
func (r *Registry) SyncRun(failed bool) {
	result := "ok"
	if failed {
		result = "failed"
	}
	r.Runs.WithLabelValues(result).Inc()
}

// ResolveBatch counts one AI batch and the names it sent and learned.
func (r *Registry) ResolveBatch(sent, learned int) {
	r.Batches.Inc()
	r.NamesSent.Add(float64(sent))
	r.NamesLearned.Add(float64(learned))
}

// Handler serves the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
