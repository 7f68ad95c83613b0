package notify

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	Broadcasts  prometheus.Counter
	Deliveries  prometheus.Counter
	Failures    prometheus.Counter
	Subscribers prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Broadcasts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "posboard_broadcasts_total",
			Help: "Orders-changed broadcasts issued",
		}),
		Deliveries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "posboard_notify_deliveries_total",
			Help: "Signals delivered to observers",
		}),
		Failures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "posboard_notify_failures_total",
			Help: "Observers dropped after a failed delivery",
		}),
		Subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "posboard_subscribers",
			Help: "Currently registered observers",
		}),
	}

	reg.MustRegister(m.Broadcasts, m.Deliveries, m.Failures, m.Subscribers)
	return m
}

func (m *Metrics) broadcast() {
	if m != nil {
		m.Broadcasts.Inc()
	}
}

func (m *Metrics) delivered() {
	if m != nil {
		m.Deliveries.Inc()
	}
}

func (m *Metrics) failed() {
	if m != nil {
		m.Failures.Inc()
	}
}

func (m *Metrics) setSubscribers(n int) {
	if m != nil {
		m.Subscribers.Set(float64(n))
	}
}
