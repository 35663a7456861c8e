package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is safe to use through a nil pointer; every method is then a no-op.
type Metrics struct {
	HTTPRequestsTotal *prometheus.CounterVec

	ConversionsTotal     *prometheus.CounterVec
	ProviderFetchesTotal *prometheus.CounterVec
	RateLimitRejections  prometheus.Counter
	CachedSnapshots      prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "method", "status_code"},
		),

		ConversionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conversions_total",
				Help: "Total number of currency conversions by outcome",
			},
			[]string{"outcome"},
		),

		ProviderFetchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "provider_fetches_total",
				Help: "Total number of rate provider fetches by status",
			},
			[]string{"status"},
		),

		RateLimitRejections: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "rate_limit_rejections_total",
				Help: "Total number of fetches rejected by the rate limiter",
			},
		),

		CachedSnapshots: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "cached_snapshots",
				Help: "Number of rate snapshots currently cached",
			},
		),
	}
}

func (m *Metrics) ObserveConversion(outcome string) {
	if m == nil {
		return
	}
	m.ConversionsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveFetch(status string) {
	if m == nil {
		return
	}
	m.ProviderFetchesTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveRateLimited() {
	if m == nil {
		return
	}
	m.RateLimitRejections.Inc()
}

func (m *Metrics) SetCachedSnapshots(n int) {
	if m == nil {
		return
	}
	m.CachedSnapshots.Set(float64(n))
}

func (m *Metrics) ObserveHTTPRequest(path, method, statusClass string) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(path, method, statusClass).Inc()
}
