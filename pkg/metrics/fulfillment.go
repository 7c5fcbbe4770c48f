package metrics

import "github.com/prometheus/client_golang/prometheus"

// FulfillmentMetrics tracks assignment outcomes per service type.
type FulfillmentMetrics struct {
	assignments *prometheus.CounterVec
	shortages   *prometheus.CounterVec
	responses   *prometheus.CounterVec
}

// NewFulfillmentMetrics registers assignment and response counters on the provided registerer.
func NewFulfillmentMetrics(reg prometheus.Registerer) *FulfillmentMetrics {
	if reg == nil {
		return &FulfillmentMetrics{}
	}
	assignments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_assignments_total",
		Help: "Orders assigned, labelled by service type and mode.",
	}, []string{"service", "mode"})
	shortages := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_shortages_total",
		Help: "Assignment attempts that found too few qualifying candidates.",
	}, []string{"service"})
	responses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "party_responses_total",
		Help: "Accept and reject responses recorded against offers.",
	}, []string{"role", "status"})
	reg.MustRegister(assignments, shortages, responses)
	return &FulfillmentMetrics{
		assignments: assignments,
		shortages:   shortages,
		responses:   responses,
	}
}

// IncAssignment counts a completed assignment for the service type.
func (f *FulfillmentMetrics) IncAssignment(service, mode string) {
	if f == nil || f.assignments == nil {
		return
	}
	f.assignments.WithLabelValues(normalizeLabel(service), normalizeLabel(mode)).Inc()
}

// IncShortage counts an assignment attempt aborted for lack of candidates.
func (f *FulfillmentMetrics) IncShortage(service string) {
	if f == nil || f.shortages == nil {
		return
	}
	f.shortages.WithLabelValues(normalizeLabel(service)).Inc()
}

// IncResponse counts a recorded accept or reject.
func (f *FulfillmentMetrics) IncResponse(role, status string) {
	if f == nil || f.responses == nil {
		return
	}
	f.responses.WithLabelValues(normalizeLabel(role), normalizeLabel(status)).Inc()
}
