package library

import "github.com/prometheus/client_golang/prometheus"

const (
	resultOK              = "ok"
	resultNotFound        = "not_found"
	resultAlreadyBorrowed = "already_borrowed"
	resultNoCopies        = "no_copies"
	resultAlreadyReturned = "already_returned"
	resultForbidden       = "forbidden"
	resultError           = "error"
)

// Metrics counts borrow and return attempts by outcome. A nil *Metrics is a no-op.
type Metrics struct {
	borrows *prometheus.CounterVec
	returns *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		borrows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "library",
			Name:      "borrow_attempts_total",
			Help:      "Borrow attempts by result.",
		}, []string{"result"}),
		returns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "library",
			Name:      "return_attempts_total",
			Help:      "Return attempts by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.borrows, m.returns)
	return m
}

func (m *Metrics) borrow(result string) {
	if m == nil {
		return
	}
	m.borrows.WithLabelValues(result).Inc()
}

func (m *Metrics) returned(result string) {
	if m == nil {
		return
	}
	m.returns.WithLabelValues(result).Inc()
}
