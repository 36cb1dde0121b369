package job

import (
	"context"
	"log/slog"
	"time"

	"github.com/crosspost-app/composer-api/internal/service"
)

// staleAfter is how long an untouched composition session survives before
// the cleanup job drops it and its stored media.
const staleAfter = 7 * 24 * time.Hour

type SessionCleanupJob struct {
	cs service.ComposerService
}

func NewSessionCleanupJob(cs service.ComposerService) *SessionCleanupJob {
	return &SessionCleanupJob{cs: cs}
}

func (j *SessionCleanupJob) PurgeStale() {
	ctx := context.Background()

	cutoff := time.Now().Add(-staleAfter)
	if err := j.cs.PurgeStale(ctx, cutoff); err != nil {
		slog.Info(err.Error())
	}
}
