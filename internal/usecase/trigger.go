package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	pkgkafka "MacroPulse/pkg/kafka"
	applogger "MacroPulse/pkg/logger"
)

// TriggerMessage asks for one pipeline run, e.g. {"job":"update_fx"}.
type TriggerMessage struct {
	Job string `json:"job"`
}

// TriggerHandler runs pipelines on demand from a Kafka topic. Malformed or
// unknown triggers are returned as errors so the consumer dead-letters them;
// a busy job or a failed run is not retried.
type TriggerHandler struct {
	topic  string
	runner *JobRunner
	log    *applogger.Logger
}

func NewTriggerHandler(topic string, runner *JobRunner, log *applogger.Logger) *TriggerHandler {
	if log == nil {
		log = applogger.NewNop()
	}
	return &TriggerHandler{topic: topic, runner: runner, log: log}
}

func (h *TriggerHandler) Topic() string { return h.topic }

func (h *TriggerHandler) Handle(ctx context.Context, b []byte) error {
	var m TriggerMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return fmt.Errorf("decode trigger: %w", err)
	}
	rep, err := h.runner.Run(ctx, m.Job)
	switch {
	case errors.Is(err, ErrUnknownJob):
		return err
	case errors.Is(err, ErrJobBusy):
		return nil
	case err != nil && rep == nil:
		return err
	case err != nil:
		h.log.Warn("triggered run failed", applogger.String("job", m.Job), applogger.Error(err))
	}
	return nil
}

var _ pkgkafka.MessageHandler = (*TriggerHandler)(nil)
