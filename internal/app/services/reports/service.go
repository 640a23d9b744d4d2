// Package reports aggregates earned and spent amounts per account.
package reports

import (
	"context"
	"sync"
	"time"

	"github.com/feinhq/fein/internal/app/domain/report"
	"github.com/feinhq/fein/internal/app/storage"
	"github.com/feinhq/fein/internal/logging"
)

// Service computes per-account earned/spent summaries and caches a global
// overview for the admin surface.
type Service struct {
	store storage.ReportStore
	log   *logging.Logger

	mu       sync.RWMutex
	overview report.Overview
}

// New constructs a report service.
func New(store storage.ReportStore, log *logging.Logger) *Service {
	if log == nil {
		log = logging.NewDefault("reports")
	}
	return &Service{store: store, log: log}
}

// Summaries returns the live per-account summary for userID. An empty userID
// covers every account and is reserved for admin callers.
func (s *Service) Summaries(ctx context.Context, userID string) ([]report.AccountSummary, error) {
	return s.store.SummarizeAccounts(ctx, userID)
}

// Overview returns the cached cross-user overview. The refresher keeps it up
// to date; when it has never run the overview is computed on demand.
func (s *Service) Overview(ctx context.Context) (report.Overview, error) {
	s.mu.RLock()
	cached := s.overview
	s.mu.RUnlock()

	if !cached.GeneratedAt.IsZero() {
		return cached, nil
	}
	return s.Refresh(ctx)
}

// Refresh recomputes the cross-user overview and caches it.
func (s *Service) Refresh(ctx context.Context) (report.Overview, error) {
	summaries, err := s.store.SummarizeAccounts(ctx, "")
	if err != nil {
		return report.Overview{}, err
	}

	overview := report.Overview{
		GeneratedAt: time.Now().UTC(),
		Accounts:    summaries,
	}
	for _, summary := range summaries {
		overview.TotalEarned += summary.Earned
		overview.TotalSpent += summary.Spent
	}
	overview.TotalNet = overview.TotalEarned - overview.TotalSpent

	s.mu.Lock()
	s.overview = overview
	s.mu.Unlock()

	return overview, nil
}
