package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters for the booking workflow.
type BookingMetrics struct {
	createdTotal     *prometheus.CounterVec
	transitionsTotal *prometheus.CounterVec
	proposalsTotal   *prometheus.CounterVec
	sessionsActive   prometheus.Gauge
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		createdTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "appointments",
			Name:      "created_total",
			Help:      "Appointments created from confirmed booking proposals",
		}, []string{"service"}),
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "appointments",
			Name:      "transitions_total",
			Help:      "Appointment status transitions by event and result",
		}, []string{"event", "result"}),
		proposalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "booking",
			Name:      "proposals_total",
			Help:      "Booking proposals by outcome",
		}, []string{"outcome"}),
		sessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "portal",
			Subsystem: "sessions",
			Name:      "active",
			Help:      "Portal sessions currently held in memory",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.createdTotal, m.transitionsTotal, m.proposalsTotal, m.sessionsActive)
	return m
}

func (m *BookingMetrics) ObserveCreated(service string) {
	if m == nil {
		return
	}
	m.createdTotal.WithLabelValues(service).Inc()
}

// ObserveTransition records an attempted transition. result is one of
// "applied", "noop" or "rejected".
func (m *BookingMetrics) ObserveTransition(event, result string) {
	if m == nil {
		return
	}
	m.transitionsTotal.WithLabelValues(event, result).Inc()
}

func (m *BookingMetrics) ObserveProposal(outcome string) {
	if m == nil {
		return
	}
	m.proposalsTotal.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) SessionOpened() {
	if m == nil {
		return
	}
	m.sessionsActive.Inc()
}

func (m *BookingMetrics) SessionClosed() {
	if m == nil {
		return
	}
	m.sessionsActive.Dec()
}
