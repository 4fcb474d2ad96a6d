package frontend

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is the state of a conversion run.
type State int

const (
	// Idle is a run that has not started yet.
	Idle State = iota
	// Running is a run that is processing its images.
	Running
	// Complete is a run that produced a PDF.
	Complete
	// Failed is a run that stopped with an error. It has no result.
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Complete:
		return "complete"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Progress is sent to the progress callback of the converter. Image is the
// number of images processed so far.
type Progress struct {
	RunID   uuid.UUID
	Percent float64
	Image   int
	Total   int
}

// Run is the state of one conversion. The accessors may be called from any
// goroutine while the run is in progress.
type Run struct {
	ID       uuid.UUID
	Settings Settings
	Total    int

	mu       sync.RWMutex
	state    State
	progress float64
	pages    int
	result   []byte
	filename string
	err      error
	started  time.Time
	finished time.Time
}

func newRun(s Settings, total int) *Run {
	return &Run{
		ID:       uuid.New(),
		Settings: s,
		Total:    total,
	}
}

// State returns the current state of the run.
func (r *Run) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Progress returns the percentage in [0,100].
func (r *Run) Progress() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.progress
}

// Pages returns the number of pages with an image so far.
func (r *Run) Pages() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pages
}

// Result returns the PDF of a complete run and nil otherwise.
func (r *Run) Result() []byte {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.result
}

// Filename returns the suggested file name of the PDF, such as
// converted-images-1700000000000.pdf. It is empty unless the run is complete.
func (r *Run) Filename() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.filename
}

// Err returns the error of a failed run.
func (r *Run) Err() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.err
}

// Duration returns the time between start and end of the run.
func (r *Run) Duration() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.finished.IsZero() {
		return 0
	}
	return r.finished.Sub(r.started)
}

// Release drops the PDF data. The run keeps its state.
func (r *Run) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.result = nil
}

func (r *Run) start(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = Running
	r.started = now
}

// setProgress records pct unless it is not larger than the current value and
// reports whether it has changed.
func (r *Run) setProgress(pct float64, pages int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages = pages
	if pct <= r.progress {
		return false
	}
	r.progress = pct
	return true
}

func (r *Run) complete(now time.Time, result []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = Complete
	r.finished = now
	r.result = result
	r.filename = fmt.Sprintf("converted-images-%d.pdf", now.UnixMilli())
}

func (r *Run) fail(now time.Time, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = Failed
	r.finished = now
	r.err = err
	r.result = nil
}
