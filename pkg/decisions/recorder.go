package decisions

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"anima-hq/tulpa/pkg/facts"
)

// Record is one evaluation outcome.
type Record struct {
	ID         string
	EntityID   string
	ChannelID  string
	Decision   string // respond, suppress, unset, retry
	RetryMs    int
	FactCount  int
	ErrorCount int
	Duration   time.Duration
	CreatedAt  time.Time
}

// Recorder writes evaluation outcomes to a decision store.
type Recorder struct {
	store  *SQLiteStore
	logger *slog.Logger
}

// NewRecorder creates a recorder over the given store. logger may be
// nil.
func NewRecorder(store *SQLiteStore, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default().With("component", "decisions.recorder")
	}
	return &Recorder{store: store, logger: logger}
}

// Record persists one evaluation result. Failures are logged, not
// returned: recording is observability and must never affect the
// response path.
func (r *Recorder) Record(ctx context.Context, entityID, channelID string, res *facts.Result, d time.Duration) {
	rec := &Record{
		ID:         uuid.New().String(),
		EntityID:   entityID,
		ChannelID:  channelID,
		Decision:   res.Decision(),
		RetryMs:    res.RetryMs,
		FactCount:  len(res.Facts),
		ErrorCount: len(res.Errors),
		Duration:   d,
		CreatedAt:  time.Now().UTC(),
	}
	if err := r.store.Insert(ctx, rec); err != nil {
		r.logger.Warn("failed to record decision",
			"entity", entityID,
			"channel", channelID,
			"error", err,
		)
	}
}
