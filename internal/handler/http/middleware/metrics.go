package middleware

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var writeRejected = promauto.NewCounter(prometheus.CounterOpts{
	Name: "comment_write_rate_limited_total",
	Help: "Total number of comment writes rejected by the write rate limiter",
})

// RecordWriteRejected increments the rejected-write counter.
func RecordWriteRejected() {
	writeRejected.Inc()
}
