package metrics

import "github.com/prometheus/client_golang/prometheus"

// DomainMetrics counts business events the API and workers produce.
type DomainMetrics struct {
	ordersPlaced    prometheus.Counter
	ordersConfirmed prometheus.Counter
	catalogImports  *prometheus.CounterVec
	outboxPublished *prometheus.CounterVec
	outboxFailed    *prometheus.CounterVec
}

// NewDomainMetrics registers the domain counters on reg.
func NewDomainMetrics(reg prometheus.Registerer) *DomainMetrics {
	if reg == nil {
		return &DomainMetrics{}
	}
	m := &DomainMetrics{
		ordersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storefront_orders_placed_total",
			Help: "Baskets checked out into new orders.",
		}),
		ordersConfirmed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storefront_orders_confirmed_total",
			Help: "Orders confirmed by buyers.",
		}),
		catalogImports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_catalog_imports_total",
			Help: "Catalog document imports by outcome.",
		}, []string{"outcome"}),
		outboxPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_outbox_published_total",
			Help: "Outbox events delivered to the broker.",
		}, []string{"event_type"}),
		outboxFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_outbox_failed_total",
			Help: "Outbox publish failures by reason.",
		}, []string{"event_type", "reason"}),
	}
	reg.MustRegister(m.ordersPlaced, m.ordersConfirmed, m.catalogImports, m.outboxPublished, m.outboxFailed)
	return m
}

func (m *DomainMetrics) IncOrderPlaced() {
	if m == nil || m.ordersPlaced == nil {
		return
	}
	m.ordersPlaced.Inc()
}

func (m *DomainMetrics) IncOrderConfirmed() {
	if m == nil || m.ordersConfirmed == nil {
		return
	}
	m.ordersConfirmed.Inc()
}

// IncCatalogImport records an import with outcome "ok" or "failed".
func (m *DomainMetrics) IncCatalogImport(ok bool) {
	if m == nil || m.catalogImports == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	m.catalogImports.WithLabelValues(outcome).Inc()
}

func (m *DomainMetrics) IncOutboxPublished(eventType string) {
	if m == nil || m.outboxPublished == nil {
		return
	}
	m.outboxPublished.WithLabelValues(normalizeLabel(eventType)).Inc()
}

func (m *DomainMetrics) IncOutboxFailed(eventType, reason string) {
	if m == nil || m.outboxFailed == nil {
		return
	}
	m.outboxFailed.WithLabelValues(normalizeLabel(eventType), normalizeLabel(reason)).Inc()
}
