package usecase

import (
	"context"
	"fmt"
	"time"

	"MacroPulse/internal/domain/models"
	drepo "MacroPulse/internal/domain/repository"
	applogger "MacroPulse/pkg/logger"

	"github.com/google/uuid"
)

// Skip reasons reported to metrics.
const (
	skipImpact    = "impact"
	skipTimestamp = "timestamp"
)

// finishTimeout bounds the bookkeeping writes at the end of a run. They run
// detached from the run context so a cancelled run still leaves its JobRun.
const finishTimeout = 10 * time.Second

// Pipeline is a parameterless, idempotent ingestion job.
type Pipeline interface {
	Name() string
	Run(ctx context.Context) (*models.RunReport, error)
}

// finishRun stamps the report, persists its JobRun and fans it out. Nothing
// here can change the outcome of the run; failures are logged.
func finishRun(ctx context.Context, rep *models.RunReport, now time.Time, store drepo.JobStore,
	pub drepo.Publisher, metrics drepo.Metrics, log *applogger.Logger) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finishTimeout)
	defer cancel()

	rep.Ended = now
	run := rep.JobRun()

	if err := store.InsertJobRun(ctx, &run); err != nil {
		metrics.RecordError("job_run")
		log.Error("insert job run failed", applogger.String("job", rep.Job), applogger.Error(err))
	}
	if rep.OK {
		if err := store.UpsertCursor(ctx, &models.JobCursor{Name: rep.Job, LastRun: now}); err != nil {
			metrics.RecordError("cursor")
			log.Error("upsert cursor failed", applogger.String("job", rep.Job), applogger.Error(err))
		}
	}
	if err := pub.PublishJobRun(ctx, &run); err != nil {
		metrics.RecordError("publish")
		log.Warn("publish job run failed", applogger.String("job", rep.Job), applogger.Error(err))
	}
	metrics.RecordJob(rep.Job, rep.OK, rep.Ended.Sub(rep.Started).Seconds())

	fields := []applogger.Field{
		applogger.String("job", rep.Job),
		applogger.String("run_id", rep.RunID),
		applogger.Bool("ok", rep.OK),
		applogger.Int("processed", rep.Processed),
		applogger.Int("upserted", rep.Upserted),
		applogger.Int("skipped", rep.Skipped),
		applogger.Int("failed", rep.Failed),
		applogger.Time("started_at", rep.Started),
		applogger.Duration("duration", rep.Ended.Sub(rep.Started)),
	}
	if len(rep.Errors) > 0 {
		items := make([]string, 0, len(rep.Errors))
		for _, e := range rep.Errors {
			items = append(items, e.Item)
		}
		fields = append(fields, applogger.Any("failed_items", items))
	}
	if rep.OK {
		log.Info(rep.Message, fields...)
	} else {
		log.Error(rep.Message, fields...)
	}
}

// interrupted marks a run whose context ended before every item was
// attempted. Such a run is failed and does not move the cursor.
func interrupted(ctx context.Context, rep *models.RunReport, job string) error {
	err := ctx.Err()
	if err == nil {
		return nil
	}
	rep.OK = false
	rep.Message = fmt.Sprintf("%s interrupted: %v", job, err)
	return fmt.Errorf("%s: %w", job, err)
}

func newRunID() string { return uuid.NewString() }
