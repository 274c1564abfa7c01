// Package metrics records importer metrics through a pluggable backend.
//
// The default backend discards everything, so instrumentation is always safe
// to call. main installs a Prometheus Pushgateway or DogStatsD backend when
// one is configured. Install the backend before any goroutine records.
package metrics

import "time"

// Metric names shared by every backend.
const (
	StepTotal           = "itemimport_step_total"
	StepDurationSeconds = "itemimport_step_duration_seconds"
	RecordsTotal        = "itemimport_records_total"
	CallsTotal          = "itemimport_calls_total"
	CallDurationSeconds = "itemimport_call_duration_seconds"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface a metrics system implements.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a duration-style value.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes buffered data, if the backend buffers.
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

var backend Backend = nopBackend{}

// SetBackend installs b. nil keeps the current backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Reset restores the no-op backend.
func Reset() { backend = nopBackend{} }

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStep counts one pipeline step (mapping, reader, submit, report) and
// its duration, labelled by outcome.
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"job": job, "step": step, "status": status}
	backend.IncCounter(StepTotal, 1, lbls)
	backend.ObserveHistogram(StepDurationSeconds, d.Seconds(), lbls)
}

// RecordRecords adds delta to the record counter for kind. Kinds used by the
// importer: parsed, invalid, duplicates, submitted, succeeded, failed.
func RecordRecords(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(RecordsTotal, float64(delta), Labels{"job": job, "kind": kind})
}

// RecordCall counts one item service call and its latency by outcome status.
func RecordCall(job, status string, d time.Duration) {
	lbls := Labels{"job": job, "status": status}
	backend.IncCounter(CallsTotal, 1, lbls)
	backend.ObserveHistogram(CallDurationSeconds, d.Seconds(), lbls)
}
