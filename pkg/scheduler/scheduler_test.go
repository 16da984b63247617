package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	n   int32
	err error
}

func (j *countingJob) Name() string { return "counting" }

func (j *countingJob) Run(ctx context.Context) error {
	atomic.AddInt32(&j.n, 1)
	return j.err
}

func TestAddJobRejectsBadSchedule(t *testing.T) {
	s := New(nil)
	assert.Error(t, s.AddJob("every now and then", &countingJob{}))
	assert.NoError(t, s.AddJob("@every 1m", &countingJob{}))
}

func TestSchedulerRuns(t *testing.T) {
	s := New(nil)
	job := &countingJob{err: errors.New("failures are logged")}
	require.NoError(t, s.AddJob("@every 1s", job))

	s.Start(context.Background())
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&job.n) >= 1 }, 3*time.Second, 50*time.Millisecond)
	s.Stop()
}

func TestRunNow(t *testing.T) {
	s := New(nil)
	job := &countingJob{}
	require.NoError(t, s.RunNow(job))
	assert.Equal(t, int32(1), atomic.LoadInt32(&job.n))
}
