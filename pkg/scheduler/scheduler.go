package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	applogger "MacroPulse/pkg/logger"
)

// Job represents a scheduled job
type Job interface {
	Run(ctx context.Context) error
	Name() string
}

// Scheduler manages background jobs. A job still running when its next tick
// fires is skipped for that tick.
type Scheduler struct {
	cron *cron.Cron
	log  *applogger.Logger

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new scheduler
func New(log *applogger.Logger) *Scheduler {
	if log == nil {
		log = applogger.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(cron.DiscardLogger), cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		log:    log.With(applogger.String("component", "scheduler")),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start starts the scheduler. Jobs run with a context derived from ctx that
// is cancelled by Stop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.cancel()
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.cron.Start()
	s.log.Info("scheduler started", applogger.Int("jobs", len(s.cron.Entries())))
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.cancel()
	s.mu.Unlock()

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("scheduler stopped")
}

// AddJob registers a new job with cron schedule
// Schedule examples:
//   - "0 */5 * * * *"      - Every 5 minutes
//   - "@every 2m"          - Every 2 minutes
//   - "0 0 9 * * MON-FRI"  - 9 AM weekdays
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.run(job)
	})
	if err != nil {
		return err
	}

	s.log.Info("job registered",
		applogger.String("schedule", schedule),
		applogger.String("job", job.Name()),
	)
	return nil
}

// RunNow executes a job immediately (outside schedule)
func (s *Scheduler) RunNow(job Job) error {
	s.log.Info("running job immediately", applogger.String("job", job.Name()))
	return job.Run(s.context())
}

func (s *Scheduler) context() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

func (s *Scheduler) run(job Job) {
	start := time.Now()
	s.log.Debug("running job", applogger.String("job", job.Name()))

	if err := job.Run(s.context()); err != nil {
		s.log.Error("job failed",
			applogger.String("job", job.Name()),
			applogger.Duration("took", time.Since(start)),
			applogger.Error(err),
		)
		return
	}
	s.log.Debug("job completed",
		applogger.String("job", job.Name()),
		applogger.Duration("took", time.Since(start)),
	)
}
