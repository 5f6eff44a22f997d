package decisions

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// RetentionConfig controls how long decision records are kept.
type RetentionConfig struct {
	// MaxAge is the maximum record age. Records older than this are
	// removed by the pruner.
	MaxAge time.Duration

	// PruneSchedule is a standard cron expression, e.g. "0 3 * * *"
	// for daily at 3 AM. Empty disables scheduled pruning.
	PruneSchedule string
}

// Pruner removes expired decision records.
type Pruner struct {
	store  *SQLiteStore
	config RetentionConfig
	logger *slog.Logger
}

// NewPruner creates a pruner. logger may be nil.
func NewPruner(store *SQLiteStore, config RetentionConfig, logger *slog.Logger) *Pruner {
	if logger == nil {
		logger = slog.Default().With("component", "decisions.pruner")
	}
	return &Pruner{store: store, config: config, logger: logger}
}

// Prune removes records older than MaxAge and returns the number
// removed.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	if p.config.MaxAge <= 0 {
		return 0, nil
	}
	cutoff := time.Now().Add(-p.config.MaxAge)
	n, err := p.store.PruneBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		p.logger.Info("pruned decision records",
			"removed", n,
			"cutoff", cutoff.UTC().Format(time.RFC3339),
		)
	}
	return n, nil
}

// Scheduler runs the pruner at scheduled intervals using cron syntax.
type Scheduler struct {
	pruner  *Pruner
	cron    *cron.Cron
	mu      sync.Mutex
	logger  *slog.Logger
	running bool
}

// NewScheduler creates a retention scheduler.
func NewScheduler(pruner *Pruner) *Scheduler {
	return &Scheduler{
		pruner: pruner,
		cron:   cron.New(),
		logger: slog.Default().With("component", "decisions.scheduler"),
	}
}

// Start begins scheduled pruning. If no schedule is configured it does
// nothing.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	schedule := s.pruner.config.PruneSchedule
	if schedule == "" {
		s.logger.Info("prune schedule not configured, skipping scheduler")
		return nil
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}

	_, err := s.cron.AddFunc(schedule, func() {
		if _, err := s.pruner.Prune(ctx); err != nil {
			s.logger.Error("scheduled pruning failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule pruning: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("retention scheduler started", "schedule", schedule)
	return nil
}

// Stop halts scheduled pruning and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
}
