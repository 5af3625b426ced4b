// Package metrics exposes prometheus collectors for ledger and session activity.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"doacao-platform/internal/models"
)

type Metrics struct {
	registry *prometheus.Registry

	DonationsTotal    *prometheus.CounterVec
	DonatedAmount     *prometheus.CounterVec
	RequestsCompleted prometheus.Counter
	RequestsCreated   *prometheus.CounterVec
	Logins            *prometheus.CounterVec
	Notifications     *prometheus.CounterVec
	WSConnections     prometheus.Gauge
}

// New registers every collector on its own registry, so several instances can
// coexist in tests.
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		DonationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "donations_total",
			Help:      "Donations applied to help requests.",
		}, []string{"category"}),
		DonatedAmount: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "donated_amount_total",
			Help:      "Sum of donated amounts.",
		}, []string{"category"}),
		RequestsCompleted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_completed_total",
			Help:      "Donations that left a request at or above its goal.",
		}),
		RequestsCreated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_created_total",
			Help:      "Help requests created.",
		}, []string{"category"}),
		Logins: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_starts_total",
			Help:      "Sessions started, by kind (login, register).",
		}, []string{"kind"}),
		Notifications: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Local notifications by delivery path.",
		}, []string{"path"}),
		WSConnections: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ws_connections_active",
			Help:      "Connected notification websocket clients.",
		}),
	}
}

// ObserveDonation matches the ledger donation hook signature.
func (m *Metrics) ObserveDonation(req models.HelpRequest, amount float64) {
	cat := string(req.Category)
	m.DonationsTotal.WithLabelValues(cat).Inc()
	m.DonatedAmount.WithLabelValues(cat).Add(amount)
	if req.Status == models.StatusCompleted {
		m.RequestsCompleted.Inc()
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
