package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultReapInterval is how often the background sweep runs when the
// configuration does not say otherwise.
const DefaultReapInterval = 1 * time.Minute

// Reaper periodically sweeps the registry for sessions whose retention
// window has elapsed. Lookups already evict lazily; the sweep exists so
// abandoned sessions that nobody touches again still get released.
type Reaper struct {
	store      *Store
	interval   time.Duration
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	logger     *slog.Logger
}

// NewReaper creates a reaper sweeping the given store every interval.
// A non-positive interval falls back to DefaultReapInterval.
//
// ALLOW-PANIC: Constructor enforces non-nil dependencies via panic.
func NewReaper(store *Store, interval time.Duration, logger *slog.Logger) *Reaper {
	if store == nil {
		panic("store cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	if interval <= 0 {
		interval = DefaultReapInterval
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Reaper{
		store:      store,
		interval:   interval,
		ctx:        ctx,
		cancelFunc: cancel,
		logger:     logger.With(slog.String("component", "session_reaper")),
	}
}

// Start launches the background sweep loop.
func (r *Reaper) Start() {
	r.wg.Add(1)
	go r.run()
}

// Stop cancels the sweep loop and waits for it to exit.
func (r *Reaper) Stop() {
	r.cancelFunc()
	r.wg.Wait()
}

// run is the sweep loop. It ticks at the configured interval until the
// reaper is stopped.
func (r *Reaper) run() {
	defer r.wg.Done()

	r.logger.Debug("starting session reaper",
		slog.Duration("interval", r.interval))

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Debug("stopping session reaper")
			return

		case <-ticker.C:
			if removed := r.store.Reap(); removed > 0 {
				r.logger.Debug("sweep complete",
					slog.Int("removed", removed))
			}
		}
	}
}
