package keystroke

import (
	"sync"
	"time"
)

// RecorderOptions tunes a session recorder. Zero values fall back to the
// defaults below.
type RecorderOptions struct {
	MaxBuffer           int           // rolling buffer size for recorded events
	FlushInterval       time.Duration // staging buffer is folded into the snapshot this often
	IgnorePureModifiers bool          // drop lone Shift/Alt/Control/Meta presses
}

const (
	defaultMaxBuffer     = 2000
	defaultFlushInterval = 500 * time.Millisecond
)

func (o RecorderOptions) withDefaults() RecorderOptions {
	if o.MaxBuffer <= 0 {
		o.MaxBuffer = defaultMaxBuffer
	}
	if o.FlushInterval <= 0 {
		o.FlushInterval = defaultFlushInterval
	}
	return o
}

// Recorder accumulates key events for one client session. Events land in a
// staging buffer and are folded into the visible snapshot on a fixed
// interval, so frequent ingest stays cheap. The buffer is rolling: once full,
// the oldest events are discarded.
//
// Start and Stop are idempotent; appending while stopped is a no-op.
type Recorder struct {
	mu        sync.Mutex
	opts      RecorderOptions
	tracking  bool
	staging   []Event
	events    []Event
	lastFlush time.Time
	now       func() time.Time
}

// NewRecorder creates a recorder for a single session.
func NewRecorder(opts RecorderOptions) *Recorder {
	return &Recorder{
		opts: opts.withDefaults(),
		now:  time.Now,
	}
}

// Start begins tracking. Calling Start on a recorder that is already
// tracking is a no-op.
func (r *Recorder) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tracking {
		return
	}
	r.tracking = true
	r.lastFlush = r.now()
}

// Stop ends tracking and performs a final flush. Calling Stop on a recorder
// that is not tracking is a no-op.
func (r *Recorder) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.tracking {
		return
	}
	r.tracking = false
	r.flushLocked()
}

// Tracking reports whether the recorder is currently accepting events.
func (r *Recorder) Tracking() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tracking
}

// Append records a batch of events and returns how many were kept. Events
// arriving while tracking is off are dropped, as are pure modifier presses
// when the recorder is configured to ignore them; events pushed out of the
// rolling staging buffer by the batch itself do not count as kept.
func (r *Recorder) Append(events ...Event) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.tracking {
		return 0
	}
	kept := 0
	for _, e := range events {
		if r.opts.IgnorePureModifiers && e.IsPureModifier() {
			continue
		}
		r.staging = append(r.staging, e)
		kept++
		if len(r.staging) > r.opts.MaxBuffer {
			overflow := len(r.staging) - r.opts.MaxBuffer
			r.staging = r.staging[overflow:]
			if kept > r.opts.MaxBuffer {
				kept = r.opts.MaxBuffer
			}
		}
	}
	if r.now().Sub(r.lastFlush) >= r.opts.FlushInterval {
		r.flushLocked()
	}
	return kept
}

// Events returns a copy of the visible snapshot, flushing anything staged
// first so callers always observe the latest state.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flushLocked()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Metrics analyzes the current snapshot.
func (r *Recorder) Metrics(opts AnalyzerOptions) Metrics {
	return Analyze(r.Events(), opts)
}

// Clear empties both buffers. Used when a new lesson starts.
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.staging = nil
	r.events = nil
}

func (r *Recorder) flushLocked() {
	if len(r.staging) > 0 {
		r.events = append(r.events, r.staging...)
		r.staging = r.staging[:0]
		if len(r.events) > r.opts.MaxBuffer {
			r.events = r.events[len(r.events)-r.opts.MaxBuffer:]
		}
	}
	r.lastFlush = r.now()
}
