package middleware

import (
	"context"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/pkg/metrics"
)

// MetricsInterceptor records latency and outcome of every unary RPC.
func MetricsInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			code := "ok"
			if err != nil {
				code = connect.CodeOf(err).String()
			}
			procedure := req.Spec().Procedure
			metrics.RPCDuration.WithLabelValues(procedure, code).Observe(time.Since(start).Seconds())
			metrics.RPCTotal.WithLabelValues(procedure, code).Inc()
			return resp, err
		}
	}
}
