package metrics

import (
	"sync/atomic"
	"time"
)

// Collector tracks HTTP traffic plus the payroll pipeline's own counters.
type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	rateLimited     uint64
	totalDurationMs uint64

	payrollRuns     uint64
	recordsComputed uint64
	documentsIssued uint64
	documentRetries uint64
	verifications   uint64
	workerFailures  uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == 429 {
		atomic.AddUint64(&c.rateLimited, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

func (c *Collector) RunCompleted(computed, failed int) {
	atomic.AddUint64(&c.payrollRuns, 1)
	atomic.AddUint64(&c.recordsComputed, uint64(computed))
	atomic.AddUint64(&c.workerFailures, uint64(failed))
}

func (c *Collector) DocumentIssued() {
	atomic.AddUint64(&c.documentsIssued, 1)
}

func (c *Collector) DocumentRetried() {
	atomic.AddUint64(&c.documentRetries, 1)
}

func (c *Collector) Verification() {
	atomic.AddUint64(&c.verifications, 1)
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":    total,
		"errorsTotal":      atomic.LoadUint64(&c.errorRequests),
		"rateLimitedTotal": atomic.LoadUint64(&c.rateLimited),
		"avgDurationMs":    avg,
		"payrollRuns":      atomic.LoadUint64(&c.payrollRuns),
		"recordsComputed":  atomic.LoadUint64(&c.recordsComputed),
		"documentsIssued":  atomic.LoadUint64(&c.documentsIssued),
		"documentRetries":  atomic.LoadUint64(&c.documentRetries),
		"verifications":    atomic.LoadUint64(&c.verifications),
		"workerFailures":   atomic.LoadUint64(&c.workerFailures),
	}
}
