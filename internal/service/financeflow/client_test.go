package financeflow

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", "secret", 5*time.Second, nil)
}

func TestFetchCalendarQueryAndAliases(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/financial-calendar", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "secret", q.Get("api_key"))
		assert.Equal(t, "Japan", q.Get("country"))
		assert.Equal(t, "2024-03-01", q.Get("date_from"))
		assert.Equal(t, "2024-05-14", q.Get("date_to"))
		assert.Equal(t, "application/json", r.Header.Get("accept"))
		_, _ = w.Write([]byte(`[
			{"event_time":"2024-03-05 01:30:00","date":"2024-03-05","title":"CPI YoY","impact":"High","forecast":"2.1%","actual":2.3,"previous":null},
			{"datetime":"2024-03-06T12:00:00Z","report_name":"GDP","economicImpact":"moderate","consensus":"0.4%","forecast":"9"},
			"garbage"
		]`))
	})

	from := time.Date(2024, 3, 1, 23, 0, 0, 0, time.UTC)
	to := time.Date(2024, 5, 14, 0, 0, 0, 0, time.UTC)
	rows, err := c.FetchCalendar(context.Background(), "Japan", from, to)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{"2024-03-05 01:30:00", "2024-03-05"}, rows[0].Times)
	assert.Equal(t, "CPI YoY", rows[0].Title)
	assert.Equal(t, "High", rows[0].Impact)
	assert.Equal(t, "2.1%", rows[0].Forecast)
	assert.Equal(t, json.Number("2.3"), rows[0].Actual)
	assert.Nil(t, rows[0].Previous)

	assert.Equal(t, []string{"2024-03-06T12:00:00Z"}, rows[1].Times)
	assert.Equal(t, "GDP", rows[1].Title)
	assert.Equal(t, "moderate", rows[1].Impact)
	assert.Equal(t, "0.4%", rows[1].Forecast, "consensus wins over forecast")
}

func TestFetchCalendarWrapped(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"date":"2024-03-05","title":"PMI","impact":"high"}]}`))
	})
	rows, err := c.FetchCalendar(context.Background(), "Canada", time.Now(), time.Now())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "PMI", rows[0].Title)
}

func TestFetchCalendarNon2xx(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("slow down"))
	})
	_, err := c.FetchCalendar(context.Background(), "Canada", time.Now(), time.Now())
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusTooManyRequests, se.Status)
	assert.Equal(t, "slow down", se.Body)
}

func TestFetchQuotePriceFallback(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/currency-spot", r.URL.Path)
		assert.Equal(t, "EURUSD", r.URL.Query().Get("pair"))
		_, _ = w.Write([]byte(`{"data":[{"price":null,"mid":"1.0850","last":1.09,"bid":1.0849,"ask":"1.0851","change":"-0.0012","change_percent":"-0.11%"}]}`))
	})
	q, err := c.FetchQuote(context.Background(), "EURUSD")
	require.NoError(t, err)
	assert.Equal(t, "EURUSD", q.Pair)
	assert.Equal(t, "1.0850", q.Price)
	assert.Equal(t, json.Number("1.0849"), q.Bid)
	assert.Equal(t, "-0.11%", q.ChangePercent)
	assert.Nil(t, q.Open)
}

func TestFetchQuoteBareObject(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"last":"151.2"}`))
	})
	q, err := c.FetchQuote(context.Background(), "USDJPY")
	require.NoError(t, err)
	assert.Equal(t, "151.2", q.Price)
}

func TestFetchQuoteEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	})
	_, err := c.FetchQuote(context.Background(), "USDJPY")
	assert.ErrorIs(t, err, ErrNoQuote)
}
