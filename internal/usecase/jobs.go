package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"MacroPulse/internal/domain/models"
	pkgcache "MacroPulse/pkg/cache"
	applogger "MacroPulse/pkg/logger"
)

var (
	ErrUnknownJob = errors.New("unknown job")
	// ErrJobBusy means another process holds the job's lock.
	ErrJobBusy = errors.New("job already running")
)

var jobAliases = map[string]string{
	"calendar": models.JobUpdateCalendar,
	"fx":       models.JobUpdateFX,
}

// ResolveJob maps a short alias ("calendar", "fx") or a full job name onto
// the job name.
func ResolveJob(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if full, ok := jobAliases[name]; ok {
		return full
	}
	return name
}

// JobRunner runs pipelines by name under a per-job lock so overlapping
// triggers (cron, CLI, Kafka, other replicas) never run one job twice at once.
type JobRunner struct {
	locker    pkgcache.Locker
	lockTTL   time.Duration
	pipelines map[string]Pipeline
	log       *applogger.Logger
}

func NewJobRunner(locker pkgcache.Locker, lockTTL time.Duration, log *applogger.Logger, pipelines ...Pipeline) *JobRunner {
	if locker == nil {
		locker = pkgcache.NewMemoryLocker()
	}
	if log == nil {
		log = applogger.NewNop()
	}
	m := make(map[string]Pipeline, len(pipelines))
	for _, p := range pipelines {
		m[p.Name()] = p
	}
	return &JobRunner{locker: locker, lockTTL: lockTTL, pipelines: m, log: log}
}

// Names lists the registered jobs.
func (r *JobRunner) Names() []string {
	out := make([]string, 0, len(r.pipelines))
	for name := range r.pipelines {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (r *JobRunner) Run(ctx context.Context, name string) (*models.RunReport, error) {
	name = ResolveJob(name)
	p, ok := r.pipelines[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownJob, name)
	}

	key := pkgcache.LockKey(name)
	got, err := r.locker.TryLock(ctx, key, r.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", name, err)
	}
	if !got {
		r.log.Info("job skipped, lock held elsewhere", applogger.String("job", name))
		return nil, ErrJobBusy
	}
	defer func() {
		// the run context may be gone by now
		uctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := r.locker.Unlock(uctx, key); err != nil && !errors.Is(err, pkgcache.ErrLockNotHeld) {
			r.log.Warn("job unlock failed", applogger.String("job", name), applogger.Error(err))
		}
	}()

	stop := r.keepLock(ctx, name, key)
	defer stop()

	return p.Run(ctx)
}

// keepLock extends the job lock every third of its ttl until stop is called,
// so a run longer than lock_ttl is not taken over by another trigger.
func (r *JobRunner) keepLock(ctx context.Context, name, key string) (stop func()) {
	if r.lockTTL <= 0 {
		return func() {}
	}
	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})
	go func() {
		defer close(done)
		t := time.NewTicker(r.lockTTL / 3)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if err := r.locker.Refresh(ctx, key, r.lockTTL); err != nil {
					if ctx.Err() != nil {
						return
					}
					r.log.Warn("job lock refresh failed", applogger.String("job", name), applogger.Error(err))
					if errors.Is(err, pkgcache.ErrLockNotHeld) {
						return
					}
				}
			}
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

// ScheduledJob adapts one named job to the scheduler. A busy lock is not an
// error on a timer tick.
type ScheduledJob struct {
	runner *JobRunner
	name   string
}

func (r *JobRunner) Scheduled(name string) *ScheduledJob {
	return &ScheduledJob{runner: r, name: ResolveJob(name)}
}

func (j *ScheduledJob) Name() string { return j.name }

func (j *ScheduledJob) Run(ctx context.Context) error {
	_, err := j.runner.Run(ctx, j.name)
	if errors.Is(err, ErrJobBusy) {
		return nil
	}
	return err
}
