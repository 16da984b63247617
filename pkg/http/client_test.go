package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendAndParseDecodesNumbers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "USD", r.URL.Query().Get("country"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"value": 1.10000000000000001}`))
	}))
	defer srv.Close()

	c := NewClient()
	var out map[string]any
	err := c.SendAndParse(context.Background(), &RequestOptions{
		URL:         srv.URL,
		Headers:     map[string]string{"Accept": "application/json"},
		QueryParams: map[string][]string{"country": {"USD"}},
	}, &out)
	require.NoError(t, err)

	n, ok := out["value"].(json.Number)
	require.True(t, ok)
	assert.Equal(t, "1.10000000000000001", n.String())
}

func TestSendAndParseStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := NewClient().SendAndParse(context.Background(), &RequestOptions{URL: srv.URL}, nil)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusTooManyRequests, se.Status)
	assert.Equal(t, "quota exceeded", se.Body)
}
