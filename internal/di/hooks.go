package di

import (
	"context"

	"MacroPulse/internal/domain/repository"
	pkgkafka "MacroPulse/pkg/kafka"

	"github.com/segmentio/kafka-go"
)

// deadLetterMetrics counts triggers the consumer gave up on.
func deadLetterMetrics(m repository.Metrics) pkgkafka.ConsumerHook {
	return pkgkafka.HookFuncs{
		DeadLetter: func(context.Context, string, kafka.Message, error) {
			m.RecordError("trigger_dead_letter")
		},
	}
}
