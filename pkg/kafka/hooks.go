package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
)

// ConsumerHook observes message handling. Hooks must not block.
type ConsumerHook interface {
	AfterHandle(ctx context.Context, topic string, km kafka.Message, err error, took time.Duration)
	OnDeadLetter(ctx context.Context, topic string, km kafka.Message, err error)
}

// NoopHook does nothing.
type NoopHook struct{}

func (NoopHook) AfterHandle(context.Context, string, kafka.Message, error, time.Duration) {}

func (NoopHook) OnDeadLetter(context.Context, string, kafka.Message, error) {}

// HookFuncs adapts plain functions to ConsumerHook. Nil functions are no-ops.
type HookFuncs struct {
	After      func(ctx context.Context, topic string, km kafka.Message, err error, took time.Duration)
	DeadLetter func(ctx context.Context, topic string, km kafka.Message, err error)
}

func (h HookFuncs) AfterHandle(ctx context.Context, topic string, km kafka.Message, err error, took time.Duration) {
	if h.After != nil {
		h.After(ctx, topic, km, err, took)
	}
}

func (h HookFuncs) OnDeadLetter(ctx context.Context, topic string, km kafka.Message, err error) {
	if h.DeadLetter != nil {
		h.DeadLetter(ctx, topic, km, err)
	}
}
