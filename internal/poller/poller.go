// Package poller tracks an upload job until it reaches a terminal state.
//
// One loop runs per active upload id. Polls never overlap: the next one is
// scheduled only after the previous response has been applied. Successes
// reset the interval to the base cadence, failures stretch it, and after
// MaxFailures consecutive failures the loop gives up with the last error
// left visible.
package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/talktotext/talktotext/internal/client"
	"github.com/talktotext/talktotext/internal/events"
	"github.com/talktotext/talktotext/internal/models"
)

// ErrGaveUp is reported when polling stopped after repeated failures.
var ErrGaveUp = errors.New("failed to get status after multiple attempts")

// Fetcher returns the current status of an upload.
type Fetcher interface {
	GetStatus(ctx context.Context, uploadID string) client.Response[models.UploadJob]
}

// State is the poller's view of one upload. It is copied on read.
type State struct {
	UploadID string
	Status   models.Status
	NoteID   string
	Progress *models.ProgressSnapshot
	Error    string
	// Failures counts consecutive failed polls.
	Failures int
	// Active is true while a loop is polling UploadID.
	Active bool
	// GaveUp is set when polling stopped after MaxFailures failures.
	GaveUp bool
}

// Terminal reports whether polling has stopped for good.
func (s State) Terminal() bool {
	return s.Status.IsTerminal() || s.GaveUp
}

// Err returns the stop condition as an error, or nil while the job is
// healthy or done.
func (s State) Err() error {
	switch {
	case s.GaveUp:
		return fmt.Errorf("%w: %s", ErrGaveUp, strings.TrimPrefix(s.Error, ErrGaveUp.Error()+": "))
	case s.Status == models.StatusFailed:
		if s.Error != "" {
			return errors.New(s.Error)
		}
		if s.Progress != nil && s.Progress.Message != "" {
			return errors.New(s.Progress.Message)
		}
		return errors.New("processing failed")
	}
	return nil
}

// Option configures a Poller.
type Option func(*Poller)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Poller) { p.logger = l }
}

// WithIntervals overrides the base and maximum poll intervals.
func WithIntervals(base, max time.Duration) Option {
	return func(p *Poller) { p.base, p.max = base, max }
}

// WithMaxFailures sets how many consecutive failures end polling.
func WithMaxFailures(n int) Option {
	return func(p *Poller) { p.maxFailures = n }
}

// WithAfter replaces the timer source, for tests.
func WithAfter(after func(time.Duration) <-chan time.Time) Option {
	return func(p *Poller) { p.after = after }
}

// Poller polls a single upload at a time.
type Poller struct {
	fetcher     Fetcher
	logger      *slog.Logger
	base, max   time.Duration
	multiplier  float64
	maxFailures int
	after       func(time.Duration) <-chan time.Time
	updates     *events.Broadcaster[State]

	mu     sync.Mutex
	state  State
	gen    uint64
	cancel context.CancelFunc
	done   chan struct{}
	// finished remembers terminal states so a restart stays halted.
	finished map[string]State
}

// New creates an idle poller.
func New(f Fetcher, opts ...Option) *Poller {
	p := &Poller{
		fetcher:     f,
		logger:      slog.Default(),
		base:        DefaultBaseInterval,
		max:         DefaultMaxInterval,
		multiplier:  DefaultMultiplier,
		maxFailures: DefaultMaxFailures,
		after:       time.After,
		updates:     events.NewBroadcaster[State](events.DefaultBuffer),
		finished:    make(map[string]State),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.done = closedChan()
	return p
}

func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// Start begins polling uploadID. Polling an id that is already active or
// already finished is a no-op. A different id replaces the current loop.
// An empty id stops polling.
func (p *Poller) Start(uploadID string) {
	if uploadID == "" {
		p.Stop()
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state.UploadID == uploadID && p.state.Active {
		return
	}
	if final, ok := p.finished[uploadID]; ok {
		p.teardownLocked()
		p.state = final
		p.publishLocked()
		return
	}

	p.teardownLocked()

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})
	p.state = State{UploadID: uploadID, Status: models.StatusPending, Active: true}
	p.publishLocked()

	go p.run(ctx, p.gen, uploadID, p.done)
}

// Stop cancels the active loop. Responses still in flight are discarded.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.state.Active {
		return
	}
	p.teardownLocked()
	p.state.Active = false
	p.publishLocked()
}

// teardownLocked cancels the running loop and invalidates its responses.
func (p *Poller) teardownLocked() {
	p.gen++
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

// releaseLocked drops the context of a loop that is ending on its own.
func (p *Poller) releaseLocked() {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

// State returns a copy of the current state.
func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Subscribe returns a channel of state snapshots, published after every change.
func (p *Poller) Subscribe() (<-chan State, func()) {
	return p.updates.Subscribe()
}

// Done returns a channel closed when the current loop has exited.
func (p *Poller) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Wait blocks until the current loop exits or ctx is done.
func (p *Poller) Wait(ctx context.Context) (State, error) {
	select {
	case <-p.Done():
		return p.State(), nil
	case <-ctx.Done():
		return p.State(), ctx.Err()
	}
}

// Close stops polling and closes all subscriber channels.
func (p *Poller) Close() {
	p.Stop()
	p.updates.Close()
}

func (p *Poller) publishLocked() {
	p.updates.Publish(p.state)
}

func (p *Poller) run(ctx context.Context, gen uint64, uploadID string, done chan struct{}) {
	defer close(done)

	sched := newSchedule(p.base, p.max, p.multiplier)
	for {
		if ctx.Err() != nil {
			return
		}

		resp := p.fetcher.GetStatus(ctx, uploadID)

		wait, stop := p.apply(gen, uploadID, resp, sched)
		if stop {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-p.after(wait):
		}
	}
}

// apply folds one poll response into the state. It returns the wait before
// the next poll, or stop when the loop must end.
func (p *Poller) apply(gen uint64, uploadID string, resp client.Response[models.UploadJob], sched *schedule) (time.Duration, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.gen {
		return 0, true
	}

	if !resp.OK() {
		p.state.Failures++
		p.state.Error = resp.Error
		p.logger.Warn("status check failed", "upload_id", uploadID, "failures", p.state.Failures, "error", resp.Error)

		if p.state.Failures >= p.maxFailures {
			p.state.Error = fmt.Sprintf("%s: %s", ErrGaveUp, resp.Error)
			p.state.GaveUp = true
			p.state.Active = false
			p.releaseLocked()
			p.logger.Error("giving up on status polling", "upload_id", uploadID, "failures", p.state.Failures)
			p.publishLocked()
			return 0, true
		}
		p.publishLocked()
		return sched.failure(), false
	}

	job := resp.Data
	p.state = State{
		UploadID: uploadID,
		Status:   job.Status,
		NoteID:   models.Deref(job.NoteID),
		Progress: job.Progress,
		Active:   true,
	}
	p.logger.Debug("status update", "upload_id", uploadID, "status", job.Status)

	if job.Status.IsTerminal() {
		p.state.Active = false
		p.releaseLocked()
		p.finished[uploadID] = p.state
		p.logger.Info("upload reached terminal state", "upload_id", uploadID, "status", job.Status, "note_id", p.state.NoteID)
		p.publishLocked()
		return 0, true
	}

	p.publishLocked()
	return sched.success(), false
}
