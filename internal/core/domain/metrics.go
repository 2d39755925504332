package domain

import (
	"sync"
	"time"
)

// Timing is the wall-clock span of one file's conversion.
type Timing struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (t Timing) Duration() time.Duration {
	if t.End.IsZero() || t.Start.IsZero() {
		return 0
	}
	return t.End.Sub(t.Start)
}

// SizeRecord holds input/output sizes and their ratio for one file.
type SizeRecord struct {
	InputBytes  int64   `json:"input_bytes"`
	OutputBytes int64   `json:"output_bytes"`
	Ratio       float64 `json:"ratio"`
}

// MetricsSnapshot is a copy of a Tracker's state at one point in time.
type MetricsSnapshot struct {
	StartedAt time.Time             `json:"started_at"`
	Attempts  int                   `json:"total_attempts"`
	Succeeded int                   `json:"succeeded"`
	Failed    int                   `json:"failed"`
	Timings   map[string]Timing     `json:"timings,omitempty"`
	Sizes     map[string]SizeRecord `json:"sizes,omitempty"`
	Errors    map[string]string     `json:"errors,omitempty"`
}

// Tracker accumulates conversion measurements across a run. The engine
// records per-file timings, sizes and errors plus raw attempt counts; the
// succeeded/failed counters are owned by whoever finalizes outcomes (the
// batch aggregator, or the worker for single jobs) so each file is counted
// exactly once. All methods are safe for concurrent use.
type Tracker struct {
	mu         sync.Mutex
	trackTime  bool
	trackSizes bool
	startedAt  time.Time
	attempts   int
	succeeded  int
	failed     int
	timings    map[string]Timing
	sizes      map[string]SizeRecord
	errors     map[string]string
}

func NewTracker(trackTime, trackSizes bool) *Tracker {
	return &Tracker{
		trackTime:  trackTime,
		trackSizes: trackSizes,
		startedAt:  time.Now(),
		timings:    make(map[string]Timing),
		sizes:      make(map[string]SizeRecord),
		errors:     make(map[string]string),
	}
}

// BeginFile marks the start of a file's conversion. No-op when timing is
// disabled.
func (t *Tracker) BeginFile(name string) {
	if t == nil || !t.trackTime {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timings[name] = Timing{Start: time.Now()}
}

// EndFile marks the end of a file's conversion. Unmatched ends are ignored.
func (t *Tracker) EndFile(name string) {
	if t == nil || !t.trackTime {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	tm, ok := t.timings[name]
	if !ok {
		return
	}
	tm.End = time.Now()
	t.timings[name] = tm
}

// RecordSizes stores input/output sizes for a file. Negative sizes are
// coerced to zero; the ratio is zero when the input size is zero.
func (t *Tracker) RecordSizes(name string, inputBytes, outputBytes int64) {
	if t == nil || !t.trackSizes {
		return
	}
	if inputBytes < 0 {
		inputBytes = 0
	}
	if outputBytes < 0 {
		outputBytes = 0
	}
	rec := SizeRecord{InputBytes: inputBytes, OutputBytes: outputBytes}
	if inputBytes > 0 {
		rec.Ratio = float64(outputBytes) / float64(inputBytes)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sizes[name] = rec
}

// RecordError stores the most recent error message for a file.
func (t *Tracker) RecordError(name, message string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.errors[name] = message
}

// AddAttempts bumps the raw attempt counter.
func (t *Tracker) AddAttempts(n int) {
	if t == nil || n <= 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.attempts += n
}

// RecordOutcome counts one finalized file outcome. Callers must invoke it
// exactly once per file.
func (t *Tracker) RecordOutcome(o ConversionOutcome) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if o.Success {
		t.succeeded++
	} else {
		t.failed++
	}
}

func (t *Tracker) Snapshot() MetricsSnapshot {
	if t == nil {
		return MetricsSnapshot{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	snap := MetricsSnapshot{
		StartedAt: t.startedAt,
		Attempts:  t.attempts,
		Succeeded: t.succeeded,
		Failed:    t.failed,
		Timings:   make(map[string]Timing, len(t.timings)),
		Sizes:     make(map[string]SizeRecord, len(t.sizes)),
		Errors:    make(map[string]string, len(t.errors)),
	}
	for k, v := range t.timings {
		snap.Timings[k] = v
	}
	for k, v := range t.sizes {
		snap.Sizes[k] = v
	}
	for k, v := range t.errors {
		snap.Errors[k] = v
	}
	return snap
}
