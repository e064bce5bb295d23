package metrics

import (
	"time"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds sale business metrics. Amount gauges are in base units and
// lose precision above 2^53.
type Metrics struct {
	Contributions     *prometheus.CounterVec
	Rejections        *prometheus.CounterVec
	WeiRaised         prometheus.Gauge
	EscrowBalance     prometheus.Gauge
	TokensMinted      prometheus.Counter
	Refunds           prometheus.Counter
	OperationDuration *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Contributions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "crowdsale_contributions_total",
			Help: "Accepted contributions, by channel (public or private)",
		}, []string{"channel"}),
		Rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "crowdsale_rejections_total",
			Help: "Rejected sale operations, by operation and error code",
		}, []string{"operation", "code"}),
		WeiRaised: factory.NewGauge(prometheus.GaugeOpts{
			Name: "crowdsale_wei_raised",
			Help: "Total value raised across both channels",
		}),
		EscrowBalance: factory.NewGauge(prometheus.GaugeOpts{
			Name: "crowdsale_escrow_wei",
			Help: "Value currently held in escrow",
		}),
		TokensMinted: factory.NewCounter(prometheus.CounterOpts{
			Name: "crowdsale_tokens_minted",
			Help: "Token base units minted by the sale",
		}),
		Refunds: factory.NewCounter(prometheus.CounterOpts{
			Name: "crowdsale_refunds_total",
			Help: "Refund claims that returned value",
		}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "crowdsale_operation_duration_seconds",
			Help:    "Latency of sale operations",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		}, []string{"operation"}),
	}
}

func (m *Metrics) ObserveContribution(private bool, tokens *uint256.Int) {
	channel := "public"
	if private {
		channel = "private"
	}
	m.Contributions.WithLabelValues(channel).Inc()
	m.TokensMinted.Add(tokens.Float64())
}

func (m *Metrics) IncrementRejections(operation, code string) {
	m.Rejections.WithLabelValues(operation, code).Inc()
}

func (m *Metrics) SetBalances(raised, escrow *uint256.Int) {
	m.WeiRaised.Set(raised.Float64())
	m.EscrowBalance.Set(escrow.Float64())
}

func (m *Metrics) IncrementRefunds() {
	m.Refunds.Inc()
}

func (m *Metrics) ObserveDuration(operation string, start time.Time) {
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
