package usecase

import (
	"context"
	"testing"
	"time"

	"MacroPulse/internal/domain/models"
	pkgcache "MacroPulse/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveJob(t *testing.T) {
	assert.Equal(t, models.JobUpdateCalendar, ResolveJob("calendar"))
	assert.Equal(t, models.JobUpdateFX, ResolveJob(" FX "))
	assert.Equal(t, models.JobUpdateFX, ResolveJob("update_fx"))
	assert.Equal(t, "nope", ResolveJob("nope"))
}

func TestJobRunnerLocks(t *testing.T) {
	p := &stubPipeline{name: models.JobUpdateFX, block: make(chan struct{}), started: make(chan struct{})}
	r := NewJobRunner(pkgcache.NewMemoryLocker(), time.Minute, nil, p)
	assert.Equal(t, []string{models.JobUpdateFX}, r.Names())

	done := make(chan error, 1)
	go func() {
		_, err := r.Run(context.Background(), "fx")
		done <- err
	}()
	<-p.started

	_, err := r.Run(context.Background(), models.JobUpdateFX)
	assert.ErrorIs(t, err, ErrJobBusy)

	close(p.block)
	require.NoError(t, <-done)

	p.block, p.started = nil, nil
	rep, err := r.Run(context.Background(), "fx")
	require.NoError(t, err)
	assert.True(t, rep.OK)
	assert.Equal(t, 2, p.count())
}

func TestJobRunnerKeepsLockPastTTL(t *testing.T) {
	p := &stubPipeline{name: models.JobUpdateCalendar, block: make(chan struct{}), started: make(chan struct{})}
	ttl := 60 * time.Millisecond
	r := NewJobRunner(pkgcache.NewMemoryLocker(), ttl, nil, p)

	done := make(chan error, 1)
	go func() {
		_, err := r.Run(context.Background(), "calendar")
		done <- err
	}()
	<-p.started

	time.Sleep(3 * ttl)
	_, err := r.Run(context.Background(), "calendar")
	assert.ErrorIs(t, err, ErrJobBusy, "a long run must keep its lock")

	close(p.block)
	require.NoError(t, <-done)
	assert.Equal(t, 1, p.count())

	p.block, p.started = nil, nil
	_, err = r.Run(context.Background(), "calendar")
	require.NoError(t, err, "lock is released once the run ends")
}

func TestJobRunnerUnknown(t *testing.T) {
	r := NewJobRunner(nil, time.Minute, nil)
	_, err := r.Run(context.Background(), "reindex")
	assert.ErrorIs(t, err, ErrUnknownJob)
}

func TestTriggerHandler(t *testing.T) {
	p := &stubPipeline{name: models.JobUpdateCalendar}
	h := NewTriggerHandler("macropulse.triggers", NewJobRunner(nil, time.Minute, nil, p), nil)
	ctx := context.Background()

	assert.Equal(t, "macropulse.triggers", h.Topic())
	require.NoError(t, h.Handle(ctx, []byte(`{"job":"update_calendar"}`)))
	assert.Equal(t, 1, p.count())

	assert.ErrorIs(t, h.Handle(ctx, []byte(`{"job":"nope"}`)), ErrUnknownJob)
	assert.Error(t, h.Handle(ctx, []byte(`not json`)))
	assert.Equal(t, 1, p.count())
}

func TestScheduledJobIgnoresBusy(t *testing.T) {
	p := &stubPipeline{name: models.JobUpdateFX}
	locker := pkgcache.NewMemoryLocker()
	r := NewJobRunner(locker, time.Minute, nil, p)
	job := r.Scheduled("fx")
	assert.Equal(t, models.JobUpdateFX, job.Name())

	ok, err := locker.TryLock(context.Background(), pkgcache.LockKey(models.JobUpdateFX), time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	assert.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 0, p.count())
}
