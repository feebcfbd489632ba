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
	approvalOrdersCreatedTotal atomic.Uint64
	paymentsVerifiedTotal      atomic.Uint64
	paymentsVerifyFailedTotal  atomic.Uint64
	aadhaarUploadsTotal        atomic.Uint64
	aadhaarUploadsFailedTotal  atomic.Uint64
	intentsStalledTotal        atomic.Uint64
	reconcileRunsTotal         atomic.Uint64

	approvalDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncApprovalOrderCreated increments the order-creation counter.
func IncApprovalOrderCreated() {
	approvalOrdersCreatedTotal.Add(1)
}

// IncPaymentVerified increments the successful verification counter.
func IncPaymentVerified() {
	paymentsVerifiedTotal.Add(1)
}

// IncPaymentVerifyFailed increments the failed verification counter.
func IncPaymentVerifyFailed() {
	paymentsVerifyFailedTotal.Add(1)
}

// IncAadhaarUpload increments the document-upload counter.
func IncAadhaarUpload() {
	aadhaarUploadsTotal.Add(1)
}

// IncAadhaarUploadFailed increments the failed document-upload counter.
func IncAadhaarUploadFailed() {
	aadhaarUploadsFailedTotal.Add(1)
}

// IncIntentStalled increments the stalled-intent counter.
func IncIntentStalled() {
	intentsStalledTotal.Add(1)
}

// IncReconcileRun increments the reconciliation-run counter.
func IncReconcileRun() {
	reconcileRunsTotal.Add(1)
}

// ObserveApprovalDurationMs records the time from order creation to intent completion.
func ObserveApprovalDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	approvalDuration.Observe(value)
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
	writeCounter(&buf, "approval_orders_created_total", "Total approval-fee orders created", approvalOrdersCreatedTotal.Load())
	writeCounter(&buf, "payments_verified_total", "Total payments verified", paymentsVerifiedTotal.Load())
	writeCounter(&buf, "payments_verify_failed_total", "Total payment verifications failed", paymentsVerifyFailedTotal.Load())
	writeCounter(&buf, "aadhaar_uploads_total", "Total aadhaar document pairs uploaded", aadhaarUploadsTotal.Load())
	writeCounter(&buf, "aadhaar_uploads_failed_total", "Total aadhaar document uploads failed", aadhaarUploadsFailedTotal.Load())
	writeCounter(&buf, "approval_intents_stalled_total", "Total approval intents marked stalled", intentsStalledTotal.Load())
	writeCounter(&buf, "reconcile_runs_total", "Total reconciliation runs", reconcileRunsTotal.Load())
	writeHistogram(&buf, "approval_duration_ms", "Approval workflow duration in milliseconds", approvalDuration.Snapshot())
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
