// Package stats keeps an evaluation latency histogram.
package stats

import (
	"sync"
	"time"

	hdrhistogram "github.com/HdrHistogram/hdrhistogram-go"
)

const (
	minLatency = 1                     // 1µs
	maxLatency = int64(time.Minute / time.Microsecond)
	sigFigs    = 3
)

// Snapshot summarizes recorded latencies in microseconds.
type Snapshot struct {
	Count int64   `json:"count"`
	Mean  float64 `json:"mean_us"`
	P50   int64   `json:"p50_us"`
	P90   int64   `json:"p90_us"`
	P99   int64   `json:"p99_us"`
	Max   int64   `json:"max_us"`
}

// Recorder is safe for concurrent use.
type Recorder struct {
	mu   sync.Mutex
	hist *hdrhistogram.Histogram
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{hist: hdrhistogram.New(minLatency, maxLatency, sigFigs)}
}

// Record adds one observation. Values outside the tracked range are clamped.
func (r *Recorder) Record(d time.Duration) {
	us := d.Microseconds()
	if us < minLatency {
		us = minLatency
	}
	if us > maxLatency {
		us = maxLatency
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	_ = r.hist.RecordValue(us)
}

// Snapshot returns the current summary.
func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.hist.TotalCount() == 0 {
		return Snapshot{}
	}
	return Snapshot{
		Count: r.hist.TotalCount(),
		Mean:  r.hist.Mean(),
		P50:   r.hist.ValueAtQuantile(50),
		P90:   r.hist.ValueAtQuantile(90),
		P99:   r.hist.ValueAtQuantile(99),
		Max:   r.hist.Max(),
	}
}

// Reset discards all observations.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hist.Reset()
}
