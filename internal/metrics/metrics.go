package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the gateway's prometheus collectors. One instance is
// created at startup and shared by the HTTP layer and the platform
// client.
type Metrics struct {
	Actions    *prometheus.CounterVec
	Downstream *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Actions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ussd",
			Name:      "actions_total",
			Help:      "Inbound USSD actions by route and result status.",
		}, []string{"route", "status"}),

		Downstream: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ussd",
			Name:      "downstream_request_seconds",
			Help:      "Latency of calls to the identity-and-wallet platform.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service", "status"}),
	}
}

// ObserveDownstream matches platform.ObserveFunc.
func (m *Metrics) ObserveDownstream(service string, statusCode int, elapsed time.Duration) {
	m.Downstream.WithLabelValues(service, strconv.Itoa(statusCode)).Observe(elapsed.Seconds())
}

// CountAction records one handled action.
func (m *Metrics) CountAction(route string, status int) {
	m.Actions.WithLabelValues(route, strconv.Itoa(status)).Inc()
}
