package client

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/V4T54L/yapli/internal/domain"
)

// DefaultDebounce is how long input must stay unchanged before it is checked.
const DefaultDebounce = 500 * time.Millisecond

// NameTakenMessage is shown when the caller already owns a room with the title.
const NameTakenMessage = "You already have a room with this name"

// State is the validator's view of the current input.
type State int

const (
	Idle State = iota
	Checking
	Available
	Unavailable
	Errored
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Checking:
		return "checking"
	case Available:
		return "available"
	case Unavailable:
		return "unavailable"
	case Errored:
		return "errored"
	default:
		return "unknown"
	}
}

// NameChecker performs a single availability check.
type NameChecker interface {
	CheckRoomName(ctx context.Context, title string) (CheckResult, error)
}

// Snapshot is a consistent copy of the validator state.
type Snapshot struct {
	Input   string
	Title   string // trimmed title of the latest check
	State   State
	Message string
	Pending bool // a debounced check is scheduled but not yet issued
}

// Option configures a Validator.
type Option func(*Validator)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(v *Validator) { v.delay = d }
}

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(v *Validator) { v.clock = c }
}

// WithOnChange registers a callback invoked after every state transition.
// It runs outside the validator's lock.
func WithOnChange(f func(Snapshot)) Option {
	return func(v *Validator) { v.onChange = f }
}

// WithCheckTimeout bounds each availability request.
func WithCheckTimeout(d time.Duration) Option {
	return func(v *Validator) { v.timeout = d }
}

// WithLogger sets the logger used for discarded responses.
func WithLogger(l *slog.Logger) Option {
	return func(v *Validator) { v.logger = l }
}

// Validator debounces room-title input and checks availability with the API.
// Every check is numbered; only the answer to the most recently issued check
// may change the visible state.
type Validator struct {
	checker  NameChecker
	clock    Clock
	delay    time.Duration
	timeout  time.Duration
	onChange func(Snapshot)
	logger   *slog.Logger

	mu      sync.Mutex
	input   string
	title   string
	state   State
	message string
	timer   Timer
	armed   uint64 // generation of the pending timer
	seq     uint64 // number of the latest issued check
}

// NewValidator creates a Validator in the Idle state.
func NewValidator(checker NameChecker, opts ...Option) *Validator {
	v := &Validator{
		checker: checker,
		clock:   RealClock{},
		delay:   DefaultDebounce,
		timeout: 10 * time.Second,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// OnInputChange records new input and restarts the debounce timer. Empty input
// cancels any pending check and returns the validator to Idle.
func (v *Validator) OnInputChange(raw string) {
	v.mu.Lock()
	v.input = raw
	v.stopTimerLocked()

	title := domain.TrimTitle(raw)
	if title == "" {
		v.seq++ // an in-flight answer no longer applies
		v.title = ""
		v.state = Idle
		v.message = ""
		snap := v.snapshotLocked()
		v.mu.Unlock()
		v.notify(snap)
		return
	}

	gen := v.armed
	v.timer = v.clock.AfterFunc(v.delay, func() { v.fire(gen, title) })
	v.mu.Unlock()
}

func (v *Validator) fire(gen uint64, title string) {
	v.mu.Lock()
	if gen != v.armed {
		v.mu.Unlock()
		return
	}
	v.timer = nil
	v.seq++
	seq := v.seq
	v.title = title
	v.state = Checking
	v.message = ""
	snap := v.snapshotLocked()
	v.mu.Unlock()
	v.notify(snap)

	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	result, err := v.checker.CheckRoomName(ctx, title)
	cancel()

	v.mu.Lock()
	if seq != v.seq {
		v.mu.Unlock()
		v.logger.Debug("discarding stale room name check", "title", title, "seq", seq)
		return
	}
	switch {
	case err != nil:
		v.state = Errored
		v.message = ErrorMessage(err)
	case result.Available:
		v.state = Available
		v.message = ""
	default:
		v.state = Unavailable
		v.message = NameTakenMessage
	}
	snap = v.snapshotLocked()
	v.mu.Unlock()
	v.notify(snap)
}

// CanSubmit reports whether room creation should be offered for the current input.
func (v *Validator) CanSubmit() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return domain.TrimTitle(v.input) != "" && v.state != Unavailable && v.state != Checking
}

// Snapshot returns the current state.
func (v *Validator) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotLocked()
}

// Reset clears input and state, and drops any pending or in-flight check.
func (v *Validator) Reset() {
	v.mu.Lock()
	v.stopTimerLocked()
	v.seq++
	v.input = ""
	v.title = ""
	v.state = Idle
	v.message = ""
	snap := v.snapshotLocked()
	v.mu.Unlock()
	v.notify(snap)
}

func (v *Validator) stopTimerLocked() {
	if v.timer != nil {
		v.timer.Stop()
		v.timer = nil
	}
	v.armed++
}

func (v *Validator) snapshotLocked() Snapshot {
	return Snapshot{Input: v.input, Title: v.title, State: v.state, Message: v.message, Pending: v.timer != nil}
}

func (v *Validator) notify(s Snapshot) {
	if v.onChange != nil {
		v.onChange(s)
	}
}
