package clickhouse

import (
	"testing"
	"time"

	ch "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/stretchr/testify/assert"
)

func TestBuildOptions(t *testing.T) {
	cfg := ClientConfig{Port: 9000, Database: "default", User: "default", DialTimeout: time.Second}
	for _, opt := range []ClientOption{
		WithHost("ch.local"),
		WithDatabase("macropulse"),
		WithCredentials("svc", "pw"),
		WithMaxExecutionTime(30 * time.Second),
		WithPort(0),
	} {
		opt(&cfg)
	}

	opts := buildOptions(cfg)
	assert.Equal(t, []string{"ch.local:9000"}, opts.Addr)
	assert.Equal(t, "macropulse", opts.Auth.Database)
	assert.Equal(t, "svc", opts.Auth.Username)
	assert.Equal(t, 30, opts.Settings["max_execution_time"])
	assert.Equal(t, ch.Native, opts.Protocol)

	WithHTTP(true)(&cfg)
	assert.Equal(t, ch.HTTP, buildOptions(cfg).Protocol)
}

func TestNewClientRequiresHost(t *testing.T) {
	_, err := NewClient()
	assert.Error(t, err)
}
