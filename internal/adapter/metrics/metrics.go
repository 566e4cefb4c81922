package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics implements port.Metrics on a prometheus registry.
type Metrics struct {
	ordersCreated      prometheus.Counter
	ordersCompleted    *prometheus.CounterVec
	illegalTransitions *prometheus.CounterVec
	signatureFailures  *prometheus.CounterVec
	signalSourceErrors *prometheus.CounterVec
	transfersUnmatched prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ordersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "stablepay_orders_created_total",
			Help: "Orders created",
		}),
		ordersCompleted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "stablepay_orders_completed_total",
			Help: "Orders driven to completed, by ingestion channel",
		}, []string{"channel"}),
		illegalTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "stablepay_illegal_transitions_total",
			Help: "Suppressed illegal status transitions",
		}, []string{"from", "to"}),
		signatureFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "stablepay_webhook_signature_failures_total",
			Help: "Webhook deliveries rejected for bad HMAC",
		}, []string{"channel"}),
		signalSourceErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "stablepay_signal_source_errors_total",
			Help: "Transient signal source failures swallowed at the channel boundary",
		}, []string{"source"}),
		transfersUnmatched: factory.NewCounter(prometheus.CounterOpts{
			Name: "stablepay_transfers_unmatched_total",
			Help: "Observed transfers discarded with no matching open order",
		}),
	}
}

func (m *Metrics) OrderCreated() {
	m.ordersCreated.Inc()
}

func (m *Metrics) OrderCompleted(channel string) {
	m.ordersCompleted.WithLabelValues(channel).Inc()
}

func (m *Metrics) IllegalTransition(from, to string) {
	m.illegalTransitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) SignatureFailure(channel string) {
	m.signatureFailures.WithLabelValues(channel).Inc()
}

func (m *Metrics) SignalSourceError(source string) {
	m.signalSourceErrors.WithLabelValues(source).Inc()
}

func (m *Metrics) TransferUnmatched() {
	m.transfersUnmatched.Inc()
}
