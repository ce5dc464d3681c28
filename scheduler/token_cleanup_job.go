package scheduler

import (
	"time"

	"github.com/bugpredictor/logger"
	"github.com/go-co-op/gocron/v2"
)

// TokenPurger deletes used and expired tokens
type TokenPurger interface {
	PurgeExpired(now time.Time) (int64, error)
}

// TokenCleanupJob removes verification and reset tokens that can no longer be used
type TokenCleanupJob struct {
	tokens   TokenPurger
	interval time.Duration
	now      func() time.Time
}

func NewTokenCleanupJob(tokens TokenPurger, interval time.Duration) *TokenCleanupJob {
	if interval <= 0 {
		interval = time.Hour
	}
	return &TokenCleanupJob{tokens: tokens, interval: interval, now: time.Now}
}

func (j *TokenCleanupJob) GetName() string {
	return "token_cleanup"
}

func (j *TokenCleanupJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(j.interval)
}

// Execute runs one purge
func (j *TokenCleanupJob) Execute() {
	removed, err := j.tokens.PurgeExpired(j.now())
	if err != nil {
		logger.Error("Token cleanup failed: %v", err)
		return
	}
	if removed > 0 {
		logger.Info("🧹 Removed %d expired tokens", removed)
	}
}
