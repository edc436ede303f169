// Package tracker reconciles displayed processing statuses with the server.
//
// Every non-terminal material gets at most one poll task, keyed by the
// server-assigned id. A task re-fetches its material on a fixed interval and
// stops when the material reaches a terminal status or the attempt bound is
// exhausted. Cancellation always wins over an in-flight poll: a task must
// still be the registered task for its id before it may apply a result.
package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/edurag/tutorcli/internal/logging"
	"github.com/edurag/tutorcli/internal/model"
)

// Fetcher reads the current server representation of one material.
type Fetcher interface {
	Material(ctx context.Context, id string) (*model.Material, error)
}

// Sink receives reconciliation outcomes. StatusChanged fires for in-place
// badge updates; Completed and Failed fire exactly once per material;
// Exhausted fires when the attempt bound is reached without a terminal
// status.
type Sink interface {
	StatusChanged(material *model.Material, previous model.Status)
	Completed(material *model.Material)
	Failed(material *model.Material)
	Exhausted(id string, attempts int)
}

// Refresher is triggered after a terminal transition so downstream views
// (textbook selector, materials list) pick up the new state.
type Refresher interface {
	RefreshSelector(ctx context.Context)
	RefreshMaterials(ctx context.Context)
}

// Tracker owns all active poll tasks.
type Tracker struct {
	fetcher     Fetcher
	sink        Sink
	refresher   Refresher
	interval    time.Duration
	maxAttempts int
	log         *logging.Logger

	mu    sync.Mutex
	tasks map[string]*task
	wg    sync.WaitGroup
}

type task struct {
	id       string
	last     model.Status
	attempts int
	cancel   context.CancelFunc
}

// Options tune the polling loop. Zero values fall back to the reference
// behavior of 5-second ticks bounded at 60 attempts.
type Options struct {
	Interval    time.Duration
	MaxAttempts int
	Refresher   Refresher
	Logger      *logging.Logger
}

// New constructs a Tracker.
func New(fetcher Fetcher, sink Sink, opts Options) *Tracker {
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Second
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 60
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	return &Tracker{
		fetcher:     fetcher,
		sink:        sink,
		refresher:   opts.Refresher,
		interval:    opts.Interval,
		maxAttempts: opts.MaxAttempts,
		log:         opts.Logger,
		tasks:       make(map[string]*task),
	}
}

// Track starts a poll task for the material unless its status is already
// terminal or a task for the same id is active. Returns true when a new
// task was started, making repeated calls for the same record idempotent.
func (t *Tracker) Track(ctx context.Context, m *model.Material) bool {
	if m == nil || m.ID == "" || m.Status.Terminal() {
		return false
	}
	t.mu.Lock()
	if _, exists := t.tasks[m.ID]; exists {
		t.mu.Unlock()
		return false
	}
	taskCtx, cancel := context.WithCancel(ctx)
	tk := &task{id: m.ID, last: m.Status, cancel: cancel}
	t.tasks[m.ID] = tk
	t.wg.Add(1)
	t.mu.Unlock()

	t.log.Debug("poll task started", "material_id", m.ID, "status", string(m.Status))
	go t.run(taskCtx, tk)
	return true
}

// TrackPending starts one task per non-terminal material in the list. Safe
// to call on every list load; already-tracked ids are skipped.
func (t *Tracker) TrackPending(ctx context.Context, materials []model.Material) int {
	started := 0
	for i := range materials {
		if t.Track(ctx, &materials[i]) {
			started++
		}
	}
	return started
}

// Cancel stops the poll task for id, if any. After Cancel returns no further
// sink calls will be made for that id, even if a fetch was in flight.
func (t *Tracker) Cancel(id string) {
	t.mu.Lock()
	tk, ok := t.tasks[id]
	if ok {
		delete(t.tasks, id)
	}
	t.mu.Unlock()
	if ok {
		tk.cancel()
		t.log.Debug("poll task cancelled", "material_id", id)
	}
}

// CancelAll stops every active task.
func (t *Tracker) CancelAll() {
	t.mu.Lock()
	tasks := make([]*task, 0, len(t.tasks))
	for _, tk := range t.tasks {
		tasks = append(tasks, tk)
	}
	t.tasks = make(map[string]*task)
	t.mu.Unlock()
	for _, tk := range tasks {
		tk.cancel()
	}
}

// Active reports whether a poll task for id is currently registered.
func (t *Tracker) Active(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.tasks[id]
	return ok
}

// Len returns the number of active poll tasks.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.tasks)
}

// Wait blocks until every task started so far has finished. Used by the CLI
// watch commands.
func (t *Tracker) Wait() {
	t.wg.Wait()
}

func (t *Tracker) run(ctx context.Context, tk *task) {
	defer t.wg.Done()
	defer tk.cancel()
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tk.attempts++
			if t.tick(ctx, tk) {
				return
			}
			if tk.attempts >= t.maxAttempts {
				// Give up quietly; the record stays visibly non-terminal
				// and the user can refresh manually later.
				t.log.Warn("polling timed out", "material_id", tk.id, "attempts", tk.attempts)
				if t.claim(tk) {
					t.sink.Exhausted(tk.id, tk.attempts)
				}
				return
			}
		}
	}
}

// tick performs one poll and returns true when the task is done.
func (t *Tracker) tick(ctx context.Context, tk *task) bool {
	material, err := t.fetcher.Material(ctx, tk.id)
	if err != nil {
		if ctx.Err() != nil {
			return true
		}
		// Transient failure: keep the displayed status and retry on the
		// next tick. Not worth alarming the user.
		t.log.Debug("poll fetch failed", "material_id", tk.id, "attempt", tk.attempts, "error", err.Error())
		return false
	}

	if !material.Status.Known() {
		// A status this client has no name for is never terminal: surface it
		// as an in-place change below and keep polling until the server
		// reports one of the lifecycle statuses.
		t.log.Debug("unrecognized status", "material_id", tk.id, "status", string(material.Status))
	}

	if material.Status.Terminal() {
		// Claim the terminal transition atomically so the notification
		// fires once even if Cancel races with this tick.
		if !t.claim(tk) {
			return true
		}
		previous := tk.last
		if material.Status != previous {
			t.sink.StatusChanged(material, previous)
		}
		switch material.Status {
		case model.StatusCompleted:
			t.sink.Completed(material)
		case model.StatusFailed:
			t.sink.Failed(material)
		}
		if t.refresher != nil {
			t.refresher.RefreshSelector(ctx)
			t.refresher.RefreshMaterials(ctx)
		}
		return true
	}

	if material.Status != tk.last {
		if !t.current(tk) {
			return true
		}
		previous := tk.last
		tk.last = material.Status
		t.sink.StatusChanged(material, previous)
	}
	return false
}

// claim removes tk from the registry if it is still the registered task for
// its id. Only the claimant may emit terminal notifications.
func (t *Tracker) claim(tk *task) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.tasks[tk.id] != tk {
		return false
	}
	delete(t.tasks, tk.id)
	return true
}

func (t *Tracker) current(tk *task) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tasks[tk.id] == tk
}
