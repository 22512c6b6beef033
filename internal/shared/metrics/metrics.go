package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	assistantRequestedTotal atomic.Uint64
	assistantCompletedTotal atomic.Uint64
	assistantFailedTotal    atomic.Uint64
	creditsDeniedTotal      atomic.Uint64
	rateLimitedTotal        atomic.Uint64

	assistantDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncAssistantRequested increments the assistant request counter.
func IncAssistantRequested() {
	assistantRequestedTotal.Add(1)
}

// IncAssistantCompleted increments the assistant completion counter.
func IncAssistantCompleted() {
	assistantCompletedTotal.Add(1)
}

// IncAssistantFailed increments the assistant failure counter.
func IncAssistantFailed() {
	assistantFailedTotal.Add(1)
}

// IncCreditsDenied counts requests rejected for insufficient credits.
func IncCreditsDenied() {
	creditsDeniedTotal.Add(1)
}

// IncRateLimited counts requests rejected by a rate-limit policy.
func IncRateLimited() {
	rateLimitedTotal.Add(1)
}

// ObserveAssistantDurationMs records an assistant call duration in milliseconds.
func ObserveAssistantDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	assistantDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "assistant_requested_total", "Total assistant requests", assistantRequestedTotal.Load())
	writeCounter(&buf, "assistant_completed_total", "Total assistant requests completed", assistantCompletedTotal.Load())
	writeCounter(&buf, "assistant_failed_total", "Total assistant requests failed", assistantFailedTotal.Load())
	writeCounter(&buf, "credits_denied_total", "Total requests denied for insufficient credits", creditsDeniedTotal.Load())
	writeCounter(&buf, "rate_limited_total", "Total requests rejected by a rate-limit policy", rateLimitedTotal.Load())
	writeHistogram(&buf, "assistant_duration_ms", "Assistant call duration in milliseconds", assistantDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// NowMillis returns current time in milliseconds, useful for callers without time utilities.
func NowMillis() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Millisecond)
}
