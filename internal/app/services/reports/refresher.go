package reports

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/feinhq/fein/internal/app/system"
	"github.com/feinhq/fein/internal/logging"
)

var _ system.Service = (*Refresher)(nil)

// Refresher recomputes the cached overview on a cron schedule.
type Refresher struct {
	service  *Service
	log      *logging.Logger
	schedule cron.Schedule

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// NewRefresher creates a lifecycle-managed report refresher. The schedule
// accepts standard cron expressions and descriptors such as "@every 5m".
func NewRefresher(service *Service, schedule string, log *logging.Logger) (*Refresher, error) {
	if log == nil {
		log = logging.NewDefault("reports-refresher")
	}
	parsed, err := cron.ParseStandard(schedule)
	if err != nil {
		return nil, err
	}
	return &Refresher{
		service:  service,
		log:      log,
		schedule: parsed,
	}, nil
}

func (r *Refresher) Name() string { return "reports-refresher" }

func (r *Refresher) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.running = true
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		for {
			next := r.schedule.Next(time.Now())
			timer := time.NewTimer(time.Until(next))

			select {
			case <-runCtx.Done():
				timer.Stop()
				return
			case <-timer.C:
				r.tick(runCtx)
			}
		}
	}()

	r.log.Info("report refresher started")
	return nil
}

func (r *Refresher) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	cancel := r.cancel
	r.running = false
	r.cancel = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		r.wg.Wait()
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	r.log.Info("report refresher stopped")
	return nil
}

func (r *Refresher) tick(ctx context.Context) {
	if r.service == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := r.service.Refresh(ctx); err != nil {
		r.log.WithError(err).Warn("report refresh failed")
	}
}
