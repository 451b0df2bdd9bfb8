package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewDomainMetrics(reg)
	m.IncOrderPlaced()
	m.IncCatalogImport(true)
	m.IncCatalogImport(false)
	m.IncCatalogImport(false)
	m.IncOutboxFailed("order_placed", "")

	mfs, err := reg.Gather()
	require.NoError(t, err)

	got, err := fetchCounterValue(mfs, "storefront_catalog_imports_total", "outcome", "failed")
	require.NoError(t, err)
	assert.Equal(t, float64(2), got)

	got, err = fetchCounterValue(mfs, "storefront_outbox_failed_total", "reason", "unknown")
	require.NoError(t, err)
	assert.Equal(t, float64(1), got)
}

func TestHTTPMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.Observe("/basket/", http.MethodPost, http.StatusCreated, 20*time.Millisecond)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	got, err := fetchCounterValue(mfs, "storefront_http_requests_total", "code", "201")
	require.NoError(t, err)
	assert.Equal(t, float64(1), got)
}

func TestEmptyLabelsFallBackToUnknown(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewHTTPMetrics(reg).Observe("", http.MethodGet, http.StatusNotFound, time.Millisecond)
	NewCronJobMetrics(reg).ObserveRun("", time.Millisecond, nil)
	NewDomainMetrics(reg).IncOutboxPublished("")

	mfs, err := reg.Gather()
	require.NoError(t, err)

	for _, tc := range []struct{ name, label string }{
		{name: "storefront_http_requests_total", label: "route"},
		{name: "storefront_cron_job_runs_total", label: "job"},
		{name: "storefront_outbox_published_total", label: "event_type"},
	} {
		got, err := fetchCounterValue(mfs, tc.name, tc.label, "unknown")
		require.NoError(t, err, tc.name)
		assert.Equal(t, float64(1), got, tc.name)
	}
}

func TestNilRecordersAreNoops(t *testing.T) {
	var d *DomainMetrics
	d.IncOrderConfirmed()
	NewDomainMetrics(nil).IncOrderPlaced()
	NewHTTPMetrics(nil).Observe("/", http.MethodGet, http.StatusOK, time.Millisecond)
	NewCronJobMetrics(nil).ObserveRun("noop", time.Millisecond, nil)
}
