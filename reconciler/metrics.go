package reconciler

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "xmrbridge"

const (
	OutcomeOK           = "ok"
	OutcomeScanFailure  = "scan_failure"
	OutcomeStoreFailure = "store_failure"

	SourceLog     = "log"
	SourcePending = "pending"

	ResultSuccess     = "success"
	ResultFailed      = "failed"
	ResultAlreadyUsed = "already_used"
	ResultCheckFailed = "check_failed"
)

// Metrics of the reconciliation loop. A nil *Metrics records nothing.
type Metrics struct {
	ticks       *prometheus.CounterVec
	candidates  *prometheus.CounterVec
	proofStates *prometheus.CounterVec
	settlements *prometheus.CounterVec
	watermark   prometheus.Gauge
	pending     prometheus.Gauge
}

func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		ticks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "ticks_total",
			Help:      "Reconciliation ticks by outcome.",
		}, []string{"outcome"}),
		candidates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "candidates_total",
			Help:      "Mint requests considered by source.",
		}, []string{"source"}),
		proofStates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "proof_states_total",
			Help:      "Monero proof classifications by state.",
		}, []string{"state"}),
		settlements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "settlements_total",
			Help:      "Settlement attempts by result.",
		}, []string{"result"}),
		watermark: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "watermark",
			Help:      "Last fully scanned EVM height.",
		}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "pending_requests",
			Help:      "Mint requests waiting for monero confirmations.",
		}),
	}
	registry.MustRegister(m.ticks, m.candidates, m.proofStates, m.settlements, m.watermark, m.pending)
	return m
}

func (m *Metrics) tick(outcome string) {
	if m == nil {
		return
	}
	m.ticks.WithLabelValues(outcome).Inc()
}

func (m *Metrics) candidate(source string, n int) {
	if m == nil {
		return
	}
	m.candidates.WithLabelValues(source).Add(float64(n))
}

func (m *Metrics) proofState(state string) {
	if m == nil {
		return
	}
	m.proofStates.WithLabelValues(state).Inc()
}

func (m *Metrics) settlement(result string) {
	if m == nil {
		return
	}
	m.settlements.WithLabelValues(result).Inc()
}

func (m *Metrics) setWatermark(h uint64) {
	if m == nil {
		return
	}
	m.watermark.Set(float64(h))
}

func (m *Metrics) setPending(n int) {
	if m == nil {
		return
	}
	m.pending.Set(float64(n))
}
