package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResultOK       = "ok"
	ResultNotFound = "not_found"
	ResultInvalid  = "invalid"
	ResultCorrupt  = "corrupt"
	ResultError    = "error"
)

var (
	registerOnce sync.Once

	chunkOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pngctl",
			Subsystem: "chunk",
			Name:      "operations_total",
			Help:      "Chunk operations by kind and result.",
		},
		[]string{"op", "result"},
	)
	chunkBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pngctl",
			Subsystem: "chunk",
			Name:      "input_bytes",
			Help:      "Size of PNG inputs handled by chunk operations.",
			Buckets:   prometheus.ExponentialBuckets(256, 4, 10),
		},
		[]string{"op"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pngctl",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pngctl",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(chunkOperations, chunkBytes, httpRequests, httpDuration)
	})
}

func RecordChunkOperation(op, result string, inputBytes int) {
	RegisterMetrics()
	chunkOperations.WithLabelValues(op, result).Inc()
	if inputBytes > 0 {
		chunkBytes.WithLabelValues(op).Observe(float64(inputBytes))
	}
}

// ChunkOperationCounter exposes one op/result series, e.g. for assertions.
func ChunkOperationCounter(op, result string) prometheus.Counter {
	return chunkOperations.WithLabelValues(op, result)
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}
