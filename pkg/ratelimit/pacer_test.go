package ratelimit

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestPacer(t *testing.T, pause time.Duration, shared SharedSlot) *Pacer {
	t.Helper()

	p, err := NewPacer(Config{Pause: pause, Shared: shared}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewPacer() error = %v", err)
	}
	return p
}

func TestNewPacer_Validation(t *testing.T) {
	tests := []struct {
		name        string
		pause       time.Duration
		expectError bool
	}{
		{name: "default pause", pause: DefaultPause},
		{name: "zero pause", pause: 0},
		{name: "negative pause", pause: -time.Second, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPacer(Config{Pause: tt.pause}, zerolog.Nop())
			if tt.expectError {
				if err == nil {
					t.Error("Expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if p.Pause() != tt.pause {
				t.Errorf("Pause() = %v, want %v", p.Pause(), tt.pause)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Pause != time.Second {
		t.Errorf("Pause = %v, want 1s", cfg.Pause)
	}
	if cfg.Shared != nil {
		t.Error("Shared should be nil by default")
	}
}

func TestPacer_FirstAcquireDoesNotWait(t *testing.T) {
	p := newTestPacer(t, time.Second, nil)

	start := time.Now()
	release, err := p.Acquire(context.Background(), 0)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	release()

	if elapsed := time.Since(start); elapsed > 200*time.Millisecond {
		t.Errorf("First Acquire() took %v, expected no pause", elapsed)
	}
}

func TestPacer_PauseBetweenRequests(t *testing.T) {
	pause := 80 * time.Millisecond
	p := newTestPacer(t, pause, nil)
	ctx := context.Background()

	release, err := p.Acquire(ctx, 0)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	finished := time.Now()
	release()

	release, err = p.Acquire(ctx, 0)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	started := time.Now()
	release()

	if gap := started.Sub(finished); gap < pause {
		t.Errorf("Gap between requests = %v, want >= %v", gap, pause)
	}

	if got := p.State().Requests; got != 2 {
		t.Errorf("Requests = %d, want 2", got)
	}
}

func TestPacer_ExtraPauseAddsToMandatoryPause(t *testing.T) {
	pause := 40 * time.Millisecond
	extra := 80 * time.Millisecond
	p := newTestPacer(t, pause, nil)
	ctx := context.Background()

	release, err := p.Acquire(ctx, 0)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	finished := time.Now()
	release()

	release, err = p.Acquire(ctx, extra)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	started := time.Now()
	release()

	if gap := started.Sub(finished); gap < pause+extra {
		t.Errorf("Gap with extra pause = %v, want >= %v", gap, pause+extra)
	}
}

func TestPacer_SerializesConcurrentCallers(t *testing.T) {
	pause := 30 * time.Millisecond
	p := newTestPacer(t, pause, nil)
	ctx := context.Background()

	type window struct{ start, end time.Time }
	var (
		mu      sync.Mutex
		windows []window
		wg      sync.WaitGroup
	)

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := p.Acquire(ctx, 0)
			if err != nil {
				t.Errorf("Acquire() error = %v", err)
				return
			}
			start := time.Now()
			time.Sleep(5 * time.Millisecond)
			end := time.Now()
			release()

			mu.Lock()
			windows = append(windows, window{start: start, end: end})
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(windows) != 4 {
		t.Fatalf("Got %d request windows, want 4", len(windows))
	}

	sort.Slice(windows, func(i, j int) bool { return windows[i].start.Before(windows[j].start) })
	for i := 1; i < len(windows); i++ {
		if gap := windows[i].start.Sub(windows[i-1].end); gap < pause {
			t.Errorf("Request %d started %v after previous finished, want >= %v", i, gap, pause)
		}
	}
}

func TestPacer_ContextCancelledWhileWaiting(t *testing.T) {
	p := newTestPacer(t, time.Hour, nil)

	release, err := p.Acquire(context.Background(), 0)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	release()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := p.Acquire(ctx, 0); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Acquire() error = %v, want context.DeadlineExceeded", err)
	}

	// The slot must have been handed back.
	select {
	case p.slot <- struct{}{}:
		<-p.slot
	default:
		t.Error("Slot still held after cancelled Acquire()")
	}
}

func TestPacer_ContextCancelledWhileSlotHeld(t *testing.T) {
	p := newTestPacer(t, 0, nil)

	release, err := p.Acquire(context.Background(), 0)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	if _, err := p.Acquire(ctx, 0); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Acquire() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestPacer_ReleaseIsIdempotent(t *testing.T) {
	p := newTestPacer(t, 0, nil)

	release, err := p.Acquire(context.Background(), 0)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	release()
	release()

	if got := p.State().Requests; got != 1 {
		t.Errorf("Requests = %d, want 1", got)
	}

	release, err = p.Acquire(context.Background(), 0)
	if err != nil {
		t.Fatalf("second Acquire() error = %v", err)
	}
	release()
}

// fakeSlot is an in-memory SharedSlot standing in for another replica.
type fakeSlot struct {
	mu          sync.Mutex
	lastRequest time.Time
	lockErr     error
	locks       int
	unlocks     int
	marks       int
}

func (f *fakeSlot) Lock(ctx context.Context) (func(context.Context) error, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lockErr != nil {
		return nil, f.lockErr
	}
	f.locks++
	return func(context.Context) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.unlocks++
		return nil
	}, nil
}

func (f *fakeSlot) LastRequest(ctx context.Context) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastRequest, nil
}

func (f *fakeSlot) MarkRequest(ctx context.Context, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastRequest = at
	f.marks++
	return nil
}

func TestPacer_HonoursSharedLastRequest(t *testing.T) {
	pause := 80 * time.Millisecond
	shared := &fakeSlot{lastRequest: time.Now()}
	p := newTestPacer(t, pause, shared)

	start := time.Now()
	release, err := p.Acquire(context.Background(), 0)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	release()

	if elapsed := time.Since(start); elapsed < pause-10*time.Millisecond {
		t.Errorf("Acquire() returned after %v, expected to wait for the other replica's pause", elapsed)
	}

	shared.mu.Lock()
	defer shared.mu.Unlock()
	if shared.locks != 1 || shared.unlocks != 1 {
		t.Errorf("locks/unlocks = %d/%d, want 1/1", shared.locks, shared.unlocks)
	}
	if shared.marks != 1 {
		t.Errorf("marks = %d, want 1", shared.marks)
	}
}

func TestPacer_SharedLockErrorFreesSlot(t *testing.T) {
	shared := &fakeSlot{lockErr: errors.New("redis down")}
	p := newTestPacer(t, 0, shared)

	if _, err := p.Acquire(context.Background(), 0); err == nil {
		t.Fatal("Expected error from shared lock")
	}

	select {
	case p.slot <- struct{}{}:
		<-p.slot
	default:
		t.Error("Slot still held after shared lock failure")
	}
}
