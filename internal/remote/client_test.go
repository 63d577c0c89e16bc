package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBearerHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]TaskRecord{})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, StaticToken("secret"))
	_, err := c.ListTasks(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Bearer secret", gotAuth)
}

func TestGuestSendsNoAuthHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]TaskRecord{})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, StaticToken(""))
	_, err := c.ListTasks(context.Background())
	require.NoError(t, err)
	require.Empty(t, gotAuth)
}

func TestUnauthorizedIsAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, StaticToken("expired"))
	_, err := c.ListTasks(context.Background())
	require.Error(t, err)
	require.True(t, IsAuthError(err))
}

func TestRetryOnRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(TaskRecord{ID: "srv-1", Title: "hi"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, StaticToken("tok"))
	rec, err := c.CreateTask(context.Background(), CreateRequest{Title: "hi"})
	require.NoError(t, err)
	require.Equal(t, "srv-1", rec.ID)
	require.Equal(t, int32(2), calls.Load())
}

func TestRateLimitExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, StaticToken("tok"))
	_, err := c.ListTasks(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "max retries")
	require.Equal(t, int32(4), calls.Load()) // initial attempt + 3 retries
}

func TestServiceErrorDetailSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(ErrorResponse{Detail: "title too long"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, StaticToken("tok"))
	_, err := c.CreateTask(context.Background(), CreateRequest{Title: "hi"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "title too long")
}

func TestParseDueDate(t *testing.T) {
	// Naive date-time from the service is read as UTC.
	got, err := ParseDueDate("2026-02-20T10:30:00")
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 2, 20, 10, 30, 0, 0, time.UTC), got.UTC())

	// Zone-qualified values pass through untouched.
	got, err = ParseDueDate("2026-02-20T10:30:00+09:00")
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 2, 20, 1, 30, 0, 0, time.UTC), got.UTC())

	_, err = ParseDueDate("not a date")
	require.Error(t, err)
}

func TestFormatDueDate(t *testing.T) {
	loc := time.FixedZone("KST", 9*60*60)
	in := time.Date(2026, 2, 20, 10, 30, 0, 0, loc)
	require.Equal(t, "2026-02-20T01:30:00", FormatDueDate(in))
}
