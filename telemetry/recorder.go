package telemetry

import (
	"context"
	"sync"
	"time"
)

// Entry is one message captured by a Recorder.
type Entry struct {
	Level   string
	Msg     string
	KeyVals []any
}

// Recorder is an in-memory Logger and Metrics pair for tests and for callers
// that want to inspect what a build reported.
type Recorder struct {
	mu       sync.Mutex
	entries  []Entry
	counters map[string]float64
	timers   map[string]int
}

var (
	_ Logger  = (*Recorder)(nil)
	_ Metrics = (*Recorder)(nil)
)

func NewRecorder() *Recorder {
	return &Recorder{counters: map[string]float64{}, timers: map[string]int{}}
}

func (r *Recorder) log(level, msg string, keyvals []any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: level, Msg: msg, KeyVals: append([]any(nil), keyvals...)})
}

func (r *Recorder) Debug(_ context.Context, msg string, kv ...any) { r.log("debug", msg, kv) }
func (r *Recorder) Info(_ context.Context, msg string, kv ...any)  { r.log("info", msg, kv) }
func (r *Recorder) Warn(_ context.Context, msg string, kv ...any)  { r.log("warn", msg, kv) }
func (r *Recorder) Error(_ context.Context, msg string, kv ...any) { r.log("error", msg, kv) }

func (r *Recorder) IncCounter(name string, value float64, _ ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counters[name] += value
}

func (r *Recorder) RecordTimer(name string, _ time.Duration, _ ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timers[name]++
}

// Entries returns the captured messages at level ("" for all).
func (r *Recorder) Entries(level string) []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Entry
	for _, e := range r.entries {
		if level == "" || e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// Counter returns the accumulated value of a counter.
func (r *Recorder) Counter(name string) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counters[name]
}

// Value returns the value logged under key in e.
func (e Entry) Value(key string) (any, bool) {
	for i := 0; i+1 < len(e.KeyVals); i += 2 {
		if k, _ := e.KeyVals[i].(string); k == key {
			return e.KeyVals[i+1], true
		}
	}
	return nil, false
}
