package logger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	mu      sync.Mutex
	topic   string
	batches [][]AggregatedLogEntry
}

func (f *fakePublisher) PublishMessage(_ context.Context, topic string, payload interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topic = topic
	f.batches = append(f.batches, payload.([]AggregatedLogEntry))
	return nil
}

func TestCollectorAggregatesDuplicates(t *testing.T) {
	pub := &fakePublisher{}
	c := NewLogCollector(&CollectionConfig{
		TimeInterval:   time.Hour,
		CountThreshold: 10,
		Topic:          "logs",
		Service:        "macropulse",
		Publisher:      pub,
	})

	fields := map[string]interface{}{"pair": "EURUSD"}
	c.AddLog("error", "quote fetch failed", fields, "fx_ingest.go:10")
	c.AddLog("error", "quote fetch failed", fields, "fx_ingest.go:10")
	c.AddLog("error", "calendar fetch failed", nil, "calendar_ingest.go:20")
	c.Close()

	pub.mu.Lock()
	defer pub.mu.Unlock()
	require.Len(t, pub.batches, 1)
	assert.Equal(t, "logs", pub.topic)

	counts := map[string]int{}
	for _, e := range pub.batches[0] {
		counts[e.Message] = e.Count
		assert.Equal(t, "macropulse", e.Service)
	}
	assert.Equal(t, 2, counts["quote fetch failed"])
	assert.Equal(t, 1, counts["calendar fetch failed"])
}

func TestCollectorFlushesAtThreshold(t *testing.T) {
	pub := &fakePublisher{}
	c := NewLogCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 2, Topic: "logs", Publisher: pub})

	c.AddLog("error", "a", nil, "x:1")
	c.AddLog("error", "b", nil, "x:2")
	c.Close()

	pub.mu.Lock()
	defer pub.mu.Unlock()
	require.Len(t, pub.batches, 1)
	assert.Len(t, pub.batches[0], 2)
}

func TestLoggerWithKeepsFields(t *testing.T) {
	l := NewNop().With(String("run_id", "abc"))
	assert.NotPanics(t, func() {
		l.Info("ok")
		l.Error("boom", Error(errors.New("x")), Error(nil))
	})
}
