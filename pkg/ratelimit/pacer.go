package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for the pacer.
var (
	pacerWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bgg_pacer_wait_seconds",
		Help:    "Time spent waiting for the outbound request slot",
		Buckets: []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 30},
	})

	pacerAcquireTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bgg_pacer_acquire_total",
		Help: "Outbound slot acquisitions by result",
	}, []string{"result"})
)

// SharedSlot extends the pacer's critical section beyond this process.
// Implementations must make Lock mutually exclusive across all replicas.
type SharedSlot interface {
	// Lock blocks until this replica owns the shared slot.
	Lock(ctx context.Context) (unlock func(context.Context) error, err error)

	// LastRequest returns when any replica last finished a request.
	LastRequest(ctx context.Context) (time.Time, error)

	// MarkRequest records a finished request.
	MarkRequest(ctx context.Context, at time.Time) error
}

// Config holds pacer configuration.
type Config struct {
	// Pause is the mandatory gap after every request, regardless of outcome.
	Pause time.Duration

	// Shared is optional. When nil the pacer only serializes this process.
	Shared SharedSlot
}

// DefaultConfig returns the pacing BGG expects from anonymous clients.
func DefaultConfig() Config {
	return Config{
		Pause: DefaultPause,
	}
}

// Pacer hands out the single outbound request slot.
type Pacer struct {
	slot   chan struct{}
	pause  time.Duration
	shared SharedSlot
	logger zerolog.Logger

	mu    sync.Mutex
	state SlotState
}

// NewPacer creates a pacer. One pacer should exist per process.
func NewPacer(cfg Config, logger zerolog.Logger) (*Pacer, error) {
	if cfg.Pause < 0 {
		return nil, fmt.Errorf("pause must be >= 0 (got %s)", cfg.Pause)
	}

	return &Pacer{
		slot:   make(chan struct{}, 1),
		pause:  cfg.Pause,
		shared: cfg.Shared,
		logger: logger,
	}, nil
}

// Pause returns the configured inter-request pause.
func (p *Pacer) Pause() time.Duration {
	return p.pause
}

// State returns a snapshot of the local slot state.
func (p *Pacer) State() SlotState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Acquire blocks until the caller owns the outbound slot and at least
// Pause+extra has passed since the previous request released it.
// The returned release func must be called once the request has finished;
// it stamps the completion time and frees the slot. Calling it more than
// once is a no-op.
func (p *Pacer) Acquire(ctx context.Context, extra time.Duration) (func(), error) {
	start := time.Now()

	select {
	case p.slot <- struct{}{}:
	case <-ctx.Done():
		pacerAcquireTotal.WithLabelValues("cancelled").Inc()
		return nil, ctx.Err()
	}

	var unlock func(context.Context) error
	if p.shared != nil {
		u, err := p.shared.Lock(ctx)
		if err != nil {
			<-p.slot
			pacerAcquireTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("lock shared slot: %w", err)
		}
		unlock = u
	}

	state := p.State()
	if p.shared != nil {
		remote, err := p.shared.LastRequest(ctx)
		if err != nil {
			p.logger.Warn().Err(err).Msg("Failed to read shared last request, using local state")
		} else {
			state = state.merge(remote)
		}
	}

	if wait := state.WaitFor(time.Now(), p.pause+extra); wait > 0 {
		p.logger.Debug().
			Dur("wait", wait).
			Dur("extra", extra).
			Msg("Waiting for outbound slot")

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			p.unlockShared(unlock)
			<-p.slot
			pacerAcquireTotal.WithLabelValues("cancelled").Inc()
			return nil, ctx.Err()
		}
	}

	pacerWaitSeconds.Observe(time.Since(start).Seconds())
	pacerAcquireTotal.WithLabelValues("acquired").Inc()

	var once sync.Once
	release := func() {
		once.Do(func() {
			now := time.Now()

			p.mu.Lock()
			p.state.LastRequest = now
			p.state.Requests++
			p.mu.Unlock()

			if p.shared != nil {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				if err := p.shared.MarkRequest(ctx, now); err != nil {
					p.logger.Warn().Err(err).Msg("Failed to record shared last request")
				}
				cancel()
				p.unlockShared(unlock)
			}

			<-p.slot
		})
	}

	return release, nil
}

func (p *Pacer) unlockShared(unlock func(context.Context) error) {
	if unlock == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := unlock(ctx); err != nil {
		p.logger.Warn().Err(err).Msg("Failed to release shared slot")
	}
}
