package models

import "time"

// Job names as recorded in job runs and cursors.
const (
	JobUpdateCalendar = "update_calendar"
	JobUpdateFX       = "update_fx"
)

// JobRun is one append-only log row per pipeline invocation.
type JobRun struct {
	ID        string    `json:"id"`
	Job       string    `json:"job"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
	OK        bool      `json:"ok"`
	Message   string    `json:"message"`
}

// JobCursor marks the last successful run of a job.
type JobCursor struct {
	Name    string    `json:"name"`
	LastRun time.Time `json:"last_run"`
}

// ItemError is a swallowed per-item failure (one currency, record or pair).
type ItemError struct {
	Item string
	Err  error
}

// RunReport folds a pipeline run into its successes and per-item errors.
// OK only reflects whether the units of work could be enumerated.
type RunReport struct {
	RunID     string
	Job       string
	Started   time.Time
	Ended     time.Time
	OK        bool
	Processed int
	Upserted  int
	Skipped   int
	Failed    int
	Errors    []ItemError
	Message   string
}

// Fail records a per-item error.
func (r *RunReport) Fail(item string, err error) {
	r.Failed++
	r.Errors = append(r.Errors, ItemError{Item: item, Err: err})
}

// Merge folds a partial report (one unit of work) into r.
func (r *RunReport) Merge(o RunReport) {
	r.Processed += o.Processed
	r.Upserted += o.Upserted
	r.Skipped += o.Skipped
	r.Failed += o.Failed
	r.Errors = append(r.Errors, o.Errors...)
}

// JobRun converts the report into its persisted log row.
func (r *RunReport) JobRun() JobRun {
	return JobRun{
		ID:        r.RunID,
		Job:       r.Job,
		StartedAt: r.Started,
		EndedAt:   r.Ended,
		OK:        r.OK,
		Message:   r.Message,
	}
}
