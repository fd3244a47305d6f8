package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Workflow counts controller outcomes. A nil *Workflow records nothing.
type Workflow struct {
	operations  *prometheus.CounterVec
	transitions *prometheus.CounterVec
}

func NewWorkflow(reg prometheus.Registerer) *Workflow {
	w := &Workflow{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "purchase_workflow_operations_total",
				Help: "Workflow operations by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "purchase_request_transitions_total",
				Help: "Committed purchase request status transitions by target status.",
			},
			[]string{"status"},
		),
	}
	if reg != nil {
		reg.MustRegister(w.operations, w.transitions)
	}
	return w
}

func (w *Workflow) Operation(op, outcome string) {
	if w == nil {
		return
	}
	w.operations.WithLabelValues(op, outcome).Inc()
}

func (w *Workflow) Transition(status string) {
	if w == nil {
		return
	}
	w.transitions.WithLabelValues(status).Inc()
}

func (w *Workflow) Operations() *prometheus.CounterVec { return w.operations }

func (w *Workflow) Transitions() *prometheus.CounterVec { return w.transitions }
