package kafka

import (
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"

	applogger "MacroPulse/pkg/logger"
)

func TestBackoffWithJitterBounds(t *testing.T) {
	min, max := 100*time.Millisecond, time.Second
	for attempt := 1; attempt <= 8; attempt++ {
		d := backoffWithJitter(min, max, attempt)
		assert.Greater(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, max)
	}
}

func TestParseCompression(t *testing.T) {
	assert.Equal(t, kafka.Gzip, parseCompression("gzip"))
	assert.Equal(t, kafka.Zstd, parseCompression("zstd"))
	assert.Equal(t, kafka.Snappy, parseCompression("unknown"))
	assert.Equal(t, kafka.Compression(0), parseCompression("none"))
}

func TestNewConsumerRequiresBrokers(t *testing.T) {
	_, err := NewConsumer(applogger.NewNop())
	assert.Error(t, err)

	_, err = NewProducer()
	assert.Error(t, err)
}
