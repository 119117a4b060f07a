package middlewares

import (
	"strconv"
	"time"

	amaro "github.com/buildwithgo/amaro-webhooks"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records amaro_http_requests_total and
// amaro_http_request_duration_seconds, labelled by method and route pattern,
// and registers both collectors with reg.
func Metrics(reg prometheus.Registerer) amaro.Middleware {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "amaro",
		Name:      "http_requests_total",
		Help:      "Requests served, by method, route and status code.",
	}, []string{"method", "route", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "amaro",
		Name:      "http_request_duration_seconds",
		Help:      "Request latency, by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
	reg.MustRegister(requests, duration)

	return func(next amaro.Handler) amaro.Handler {
		return func(c *amaro.Context) error {
			start := time.Now()
			status := captureStatus(c)
			err := next(c)

			route := routePattern(c)
			requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(status(err))).Inc()
			duration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
