package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"fundingboard/internal/feed"
	"fundingboard/internal/metrics"
	"fundingboard/internal/state"
	"fundingboard/logger"
)

// Fetcher is the single operation the poller needs from the feed client.
type Fetcher interface {
	Fetch(ctx context.Context) (*feed.Snapshot, error)
}

// Trigger identifies what initiated a fetch attempt.
type Trigger string

const (
	TriggerStartup Trigger = "startup"
	TriggerTicker  Trigger = "ticker"
	TriggerManual  Trigger = "manual"
)

// Result summarises one completed fetch attempt.
type Result struct {
	ID       string
	Trigger  Trigger
	Started  time.Time
	Duration time.Duration
	Markets  int
	Err      string
}

// Recorder consumes fetch results for downstream bookkeeping.
type Recorder func(Result)

// ErrRateLimited is returned by Refresh when manual refreshes arrive faster
// than the configured limit allows.
var ErrRateLimited = errors.New("manual refresh rate limit exceeded")

// Poller drives the periodic snapshot refresh. One fetch runs at startup,
// then a single timer fires every interval while auto-refresh is enabled.
// The first tick lands a full interval after start or after re-enable, never
// immediately. Manual refreshes and timer ticks are not serialised against
// each other; the last response to land wins, matching the screen this
// replaces.
type Poller struct {
	fetch    Fetcher
	store    *state.Store
	interval time.Duration
	limiter  *rate.Limiter
	recorder Recorder
	log      *logger.Log

	toggle  chan struct{}
	cancel  context.CancelFunc
	running atomic.Bool
	wg      sync.WaitGroup
}

func New(fetcher Fetcher, store *state.Store, interval time.Duration, limiter *rate.Limiter, log *logger.Log) *Poller {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Every(2*time.Second), 2)
	}
	return &Poller{
		fetch:    fetcher,
		store:    store,
		interval: interval,
		limiter:  limiter,
		log:      log,
		toggle:   make(chan struct{}, 1),
	}
}

// SetRecorder registers the fetch result sink. It must be called before Start.
func (p *Poller) SetRecorder(recorder Recorder) {
	p.recorder = recorder
}

// Start launches the poll loop. The initial fetch happens immediately;
// periodic ticks follow while auto-refresh stays enabled.
func (p *Poller) Start(ctx context.Context) {
	if p.running.Swap(true) {
		return
	}
	childCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.run(childCtx)
	}()
}

// Stop cancels the poll loop and waits for it to exit.
func (p *Poller) Stop() {
	if cancel := p.cancel; cancel != nil {
		cancel()
	}
	p.wg.Wait()
	p.running.Store(false)
}

// SetEnabled flips the auto-refresh toggle. Disabling cancels the pending
// tick before it can fire; enabling schedules the next tick one full interval
// out. Rapid toggling never creates more than one timer because the single
// loop goroutine owns it. The channel carries no value, only a recheck
// signal; the loop always reads the desired state from the store, so
// coalesced signals cannot leave the timer out of sync.
func (p *Poller) SetEnabled(enabled bool) {
	if !p.store.SetAutoRefresh(enabled) {
		return
	}
	if !p.running.Load() {
		return
	}
	select {
	case p.toggle <- struct{}{}:
	default:
		// A recheck is already pending.
	}
}

// Refresh runs one user-initiated fetch, subject to the manual rate limit.
// It blocks until the attempt completes so callers observe the final state.
func (p *Poller) Refresh(ctx context.Context) error {
	if !p.limiter.Allow() {
		p.log.WithComponent("poller").Warn("manual refresh throttled")
		return ErrRateLimited
	}
	p.doFetch(ctx, TriggerManual)
	return nil
}

func (p *Poller) run(ctx context.Context) {
	defer p.running.Store(false)

	p.doFetch(ctx, TriggerStartup)

	enabled := p.store.View().AutoRefresh
	timer := time.NewTimer(p.interval)
	if !enabled {
		stopTimer(timer)
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-p.toggle:
			want := p.store.View().AutoRefresh
			if want == enabled {
				continue
			}
			enabled = want
			stopTimer(timer)
			if enabled {
				timer.Reset(p.interval)
			}

		case <-timer.C:
			if !enabled || !p.store.View().AutoRefresh {
				// A tick that raced a disable is dropped.
				continue
			}
			p.doFetch(ctx, TriggerTicker)
			timer.Reset(p.interval)
		}
	}
}

func (p *Poller) doFetch(ctx context.Context, trigger Trigger) {
	started := time.Now()
	result := Result{
		ID:      uuid.NewString(),
		Trigger: trigger,
		Started: started,
	}

	p.store.BeginFetch()

	snapshot, err := p.fetch.Fetch(ctx)
	result.Duration = time.Since(started)

	if err != nil {
		result.Err = err.Error()
		p.store.ApplyFailure(result.Err)
		metrics.IncrementError()
		logger.IncrementFetchError()
		p.log.WithComponent("poller").WithFields(logger.Fields{
			"trigger":     string(trigger),
			"duration_ms": float64(result.Duration.Nanoseconds()) / 1e6,
		}).WithError(err).Warn("snapshot fetch failed")
	} else {
		result.Markets = len(snapshot.Markets)
		p.store.ApplySnapshot(snapshot, time.Now())
		metrics.IncrementSuccess()
		logger.IncrementFetchSuccess()
		p.log.WithComponent("poller").WithFields(logger.Fields{
			"trigger":     string(trigger),
			"markets":     result.Markets,
			"duration_ms": float64(result.Duration.Nanoseconds()) / 1e6,
		}).Debug("snapshot refreshed")
	}

	p.log.LogMetric("poller", "FetchDurationMs",
		float64(result.Duration.Nanoseconds())/1e6, "gauge",
		logger.Fields{"trigger": string(trigger)})

	if p.recorder != nil {
		p.recorder(result)
	}
}

func stopTimer(timer *time.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
