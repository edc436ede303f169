package tracker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/edurag/tutorcli/internal/model"
)

// fakeFetcher serves a scripted status sequence per material id. The last
// status in a sequence repeats forever. Leading errors are consumed first.
type fakeFetcher struct {
	mu      sync.Mutex
	seq     map[string][]model.Status
	errs    map[string]int
	gate    chan struct{}
	started chan struct{}
}

func (f *fakeFetcher) Material(ctx context.Context, id string) (*model.Material, error) {
	if f.started != nil {
		select {
		case f.started <- struct{}{}:
		default:
		}
	}
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errs[id] > 0 {
		f.errs[id]--
		return nil, errors.New("connection refused")
	}
	seq := f.seq[id]
	if len(seq) == 0 {
		return nil, errors.New("no script for " + id)
	}
	status := seq[0]
	if len(seq) > 1 {
		f.seq[id] = seq[1:]
	}
	return &model.Material{ID: id, Title: "Algebra Basics.pdf", Status: status}, nil
}

type recordSink struct {
	mu        sync.Mutex
	changes   []model.Status
	completed []string
	failed    []string
	exhausted []int
}

func (s *recordSink) StatusChanged(m *model.Material, previous model.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changes = append(s.changes, m.Status)
}

func (s *recordSink) Completed(m *model.Material) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed = append(s.completed, m.ID)
}

func (s *recordSink) Failed(m *model.Material) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed = append(s.failed, m.ID)
}

func (s *recordSink) Exhausted(id string, attempts int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exhausted = append(s.exhausted, attempts)
}

func (s *recordSink) snapshot() (changes []model.Status, completed, failed []string, exhausted []int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Status(nil), s.changes...),
		append([]string(nil), s.completed...),
		append([]string(nil), s.failed...),
		append([]int(nil), s.exhausted...)
}

type recordRefresher struct {
	mu        sync.Mutex
	selector  int
	materials int
}

func (r *recordRefresher) RefreshSelector(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selector++
}

func (r *recordRefresher) RefreshMaterials(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.materials++
}

func (r *recordRefresher) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selector, r.materials
}

func pendingMaterial(id string) *model.Material {
	return &model.Material{ID: id, Title: "Algebra Basics.pdf", Status: model.StatusPending}
}

func TestPendingTicksKeepPolling(t *testing.T) {
	fetcher := &fakeFetcher{seq: map[string][]model.Status{"m1": {model.StatusPending}}}
	sink := &recordSink{}
	tr := New(fetcher, sink, Options{Interval: 5 * time.Millisecond, MaxAttempts: 1000})

	if !tr.Track(context.Background(), pendingMaterial("m1")) {
		t.Fatalf("expected Track to start a task")
	}
	time.Sleep(60 * time.Millisecond)
	changes, completed, failed, exhausted := sink.snapshot()
	if len(changes) != 0 || len(completed) != 0 || len(failed) != 0 || len(exhausted) != 0 {
		t.Fatalf("unexpected sink activity: %v %v %v %v", changes, completed, failed, exhausted)
	}
	if !tr.Active("m1") {
		t.Fatalf("task should still be active")
	}
	tr.Cancel("m1")
	tr.Wait()
}

func TestCompletionNotifiesOnceAndRefreshes(t *testing.T) {
	fetcher := &fakeFetcher{seq: map[string][]model.Status{
		"m1": {model.StatusPending, model.StatusProcessing, model.StatusProcessing, model.StatusCompleted},
	}}
	sink := &recordSink{}
	refresher := &recordRefresher{}
	tr := New(fetcher, sink, Options{
		Interval:    5 * time.Millisecond,
		MaxAttempts: 1000,
		Refresher:   refresher,
	})

	tr.Track(context.Background(), pendingMaterial("m1"))
	tr.Wait()

	changes, completed, failed, _ := sink.snapshot()
	if len(completed) != 1 || completed[0] != "m1" {
		t.Fatalf("expected exactly one completion, got %v", completed)
	}
	if len(failed) != 0 {
		t.Fatalf("unexpected failures: %v", failed)
	}
	// pending -> processing in place, then the terminal change.
	if len(changes) != 2 || changes[0] != model.StatusProcessing || changes[1] != model.StatusCompleted {
		t.Fatalf("unexpected change sequence: %v", changes)
	}
	sel, mat := refresher.counts()
	if sel != 1 || mat != 1 {
		t.Fatalf("expected one refresh each, got selector=%d materials=%d", sel, mat)
	}
	if tr.Active("m1") {
		t.Fatalf("task should be torn down after completion")
	}
}

func TestFailureNotifies(t *testing.T) {
	fetcher := &fakeFetcher{seq: map[string][]model.Status{
		"m1": {model.StatusProcessing, model.StatusFailed},
	}}
	sink := &recordSink{}
	tr := New(fetcher, sink, Options{Interval: 5 * time.Millisecond, MaxAttempts: 1000})

	tr.Track(context.Background(), &model.Material{ID: "m1", Status: model.StatusProcessing})
	tr.Wait()

	_, completed, failed, _ := sink.snapshot()
	if len(failed) != 1 || len(completed) != 0 {
		t.Fatalf("expected one failure and no completions, got %v %v", failed, completed)
	}
}

func TestCancelBeatsInFlightPoll(t *testing.T) {
	fetcher := &fakeFetcher{
		seq:     map[string][]model.Status{"m1": {model.StatusCompleted}},
		gate:    make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	sink := &recordSink{}
	tr := New(fetcher, sink, Options{Interval: 5 * time.Millisecond, MaxAttempts: 1000})

	tr.Track(context.Background(), pendingMaterial("m1"))
	<-fetcher.started // a poll is now in flight
	tr.Cancel("m1")
	close(fetcher.gate) // let the fetch finish after cancellation
	tr.Wait()

	changes, completed, failed, exhausted := sink.snapshot()
	if len(changes)+len(completed)+len(failed)+len(exhausted) != 0 {
		t.Fatalf("cancelled task must not apply updates: %v %v %v %v", changes, completed, failed, exhausted)
	}
}

func TestAttemptBoundStopsQuietly(t *testing.T) {
	fetcher := &fakeFetcher{seq: map[string][]model.Status{"m1": {model.StatusPending}}}
	sink := &recordSink{}
	tr := New(fetcher, sink, Options{Interval: 5 * time.Millisecond, MaxAttempts: 3})

	tr.Track(context.Background(), pendingMaterial("m1"))
	tr.Wait()

	_, completed, failed, exhausted := sink.snapshot()
	if len(completed) != 0 || len(failed) != 0 {
		t.Fatalf("no terminal notification expected, got %v %v", completed, failed)
	}
	if len(exhausted) != 1 || exhausted[0] != 3 {
		t.Fatalf("expected exhaustion after 3 attempts, got %v", exhausted)
	}
	if tr.Active("m1") {
		t.Fatalf("task should be gone after exhaustion")
	}
}

func TestFetchErrorsAreRetriedNotTerminal(t *testing.T) {
	fetcher := &fakeFetcher{
		seq:  map[string][]model.Status{"m1": {model.StatusCompleted}},
		errs: map[string]int{"m1": 2},
	}
	sink := &recordSink{}
	tr := New(fetcher, sink, Options{Interval: 5 * time.Millisecond, MaxAttempts: 1000})

	tr.Track(context.Background(), pendingMaterial("m1"))
	tr.Wait()

	_, completed, _, exhausted := sink.snapshot()
	if len(completed) != 1 {
		t.Fatalf("expected completion after transient errors, got %v", completed)
	}
	if len(exhausted) != 0 {
		t.Fatalf("transient errors must not exhaust the task: %v", exhausted)
	}
}

func TestUnknownStatusShownInPlaceAndPollingContinues(t *testing.T) {
	fetcher := &fakeFetcher{seq: map[string][]model.Status{
		"m1": {model.Status("queued"), model.StatusCompleted},
	}}
	sink := &recordSink{}
	tr := New(fetcher, sink, Options{Interval: 5 * time.Millisecond, MaxAttempts: 1000})

	tr.Track(context.Background(), pendingMaterial("m1"))
	tr.Wait()

	changes, completed, failed, exhausted := sink.snapshot()
	if len(completed) != 1 {
		t.Fatalf("an unrecognized status must not stop the task, got %v", completed)
	}
	if len(failed) != 0 || len(exhausted) != 0 {
		t.Fatalf("unexpected failures/exhaustion: %v %v", failed, exhausted)
	}
	// Shown as-is in place, then the real terminal change.
	if len(changes) != 2 || changes[0] != model.Status("queued") || changes[1] != model.StatusCompleted {
		t.Fatalf("unexpected change sequence: %v", changes)
	}
}

func TestTrackIsIdempotentPerID(t *testing.T) {
	fetcher := &fakeFetcher{seq: map[string][]model.Status{"m1": {model.StatusPending}}}
	tr := New(fetcher, &recordSink{}, Options{Interval: time.Hour, MaxAttempts: 1000})

	if !tr.Track(context.Background(), pendingMaterial("m1")) {
		t.Fatalf("first Track should start a task")
	}
	if tr.Track(context.Background(), pendingMaterial("m1")) {
		t.Fatalf("second Track for the same id must be a no-op")
	}
	if tr.Len() != 1 {
		t.Fatalf("expected one task, got %d", tr.Len())
	}
	tr.CancelAll()
	tr.Wait()
}

func TestTerminalMaterialNotTracked(t *testing.T) {
	tr := New(&fakeFetcher{}, &recordSink{}, Options{Interval: time.Hour})
	m := &model.Material{ID: "m1", Status: model.StatusCompleted}
	if tr.Track(context.Background(), m) {
		t.Fatalf("terminal records must not be polled")
	}
}

func TestTrackPendingStartsOneTaskPerRecord(t *testing.T) {
	fetcher := &fakeFetcher{seq: map[string][]model.Status{
		"a": {model.StatusPending},
		"b": {model.StatusProcessing},
	}}
	tr := New(fetcher, &recordSink{}, Options{Interval: time.Hour, MaxAttempts: 1000})

	materials := []model.Material{
		{ID: "a", Status: model.StatusPending},
		{ID: "b", Status: model.StatusProcessing},
		{ID: "c", Status: model.StatusCompleted},
	}
	if started := tr.TrackPending(context.Background(), materials); started != 2 {
		t.Fatalf("expected 2 tasks, started %d", started)
	}
	// A list re-render must not double-register anything.
	if started := tr.TrackPending(context.Background(), materials); started != 0 {
		t.Fatalf("expected 0 new tasks on re-render, started %d", started)
	}
	tr.CancelAll()
	tr.Wait()
}

func TestTwoUploadsKeepSeparateTasks(t *testing.T) {
	fetcher := &fakeFetcher{seq: map[string][]model.Status{
		"a": {model.StatusCompleted},
		"b": {model.StatusPending, model.StatusFailed},
	}}
	sink := &recordSink{}
	tr := New(fetcher, sink, Options{Interval: 5 * time.Millisecond, MaxAttempts: 1000})

	tr.Track(context.Background(), pendingMaterial("a"))
	tr.Track(context.Background(), pendingMaterial("b"))
	tr.Wait()

	_, completed, failed, _ := sink.snapshot()
	if len(completed) != 1 || completed[0] != "a" {
		t.Fatalf("expected a to complete, got %v", completed)
	}
	if len(failed) != 1 || failed[0] != "b" {
		t.Fatalf("expected b to fail, got %v", failed)
	}
}
