package scheduler

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePurger struct {
	calls atomic.Int32
	err   error
	at    atomic.Value
}

func (f *fakePurger) PurgeExpired(now time.Time) (int64, error) {
	f.calls.Add(1)
	f.at.Store(now)
	return 2, f.err
}

func TestTokenCleanupJobExecute(t *testing.T) {
	purger := &fakePurger{}
	job := NewTokenCleanupJob(purger, time.Minute)
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	job.now = func() time.Time { return fixed }

	job.Execute()

	assert.Equal(t, int32(1), purger.calls.Load())
	assert.Equal(t, fixed, purger.at.Load())
	assert.Equal(t, "token_cleanup", job.GetName())
}

func TestTokenCleanupJobSurvivesErrors(t *testing.T) {
	purger := &fakePurger{err: errors.New("db down")}
	job := NewTokenCleanupJob(purger, 0)

	assert.NotPanics(t, job.Execute)
	assert.Equal(t, time.Hour, job.interval)
}

func TestManagerRunsRegisteredJobs(t *testing.T) {
	purger := &fakePurger{}
	job := NewTokenCleanupJob(purger, 20*time.Millisecond)

	m, err := NewManager(job)
	require.NoError(t, err)
	require.NoError(t, m.Start())
	defer m.Stop()

	assert.Eventually(t, func() bool {
		return purger.calls.Load() > 0
	}, 2*time.Second, 10*time.Millisecond)
}
