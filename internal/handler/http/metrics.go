package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"portal-content/internal/handler/http/pathutil"
	"portal-content/internal/handler/http/responsewriter"
	"portal-content/internal/observability/metrics"
)

// MetricsMiddleware records request count, latency and sizes per route template.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.ActiveConnections.Inc()
		defer metrics.ActiveConnections.Dec()

		route := pathutil.NormalizePath(r.URL.Path)
		rw := responsewriter.Wrap(w)

		start := time.Now()
		next.ServeHTTP(rw, r)

		metrics.RecordHTTPRequest(r.Method, route, strconv.Itoa(rw.StatusCode()), time.Since(start),
			int(r.ContentLength), rw.BytesWritten())
	})
}

// MetricsHandler serves the Prometheus registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
