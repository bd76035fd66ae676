package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	PaymentsRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "settleup",
			Subsystem: "settlement",
			Name:      "payments_recorded_total",
			Help:      "Payments persisted, by method",
		},
		[]string{"method"},
	)

	PaymentsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "settleup",
			Subsystem: "settlement",
			Name:      "payments_rejected_total",
			Help:      "Settlement requests answered with success=false, by reason",
		},
		[]string{"reason"},
	)
)

func init() {
	Registry.MustRegister(PaymentsRecorded, PaymentsRejected)
}
