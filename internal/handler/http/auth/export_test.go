package auth

import "github.com/prometheus/client_golang/prometheus"

// AuthRequests exposes the auth counter to external tests.
func AuthRequests(result string) prometheus.Counter {
	return authRequestsTotal.WithLabelValues(result)
}
