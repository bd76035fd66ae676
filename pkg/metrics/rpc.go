package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RPCDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "settleup",
			Subsystem: "rpc",
			Name:      "duration_seconds",
			Help:      "Connect RPC latency in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"procedure", "code"},
	)

	RPCTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "settleup",
			Subsystem: "rpc",
			Name:      "requests_total",
			Help:      "Total number of Connect RPCs",
		},
		[]string{"procedure", "code"},
	)
)

func init() {
	Registry.MustRegister(RPCDuration, RPCTotal)
}
