package notify

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jarosser06/mosaic/internal/apperr"
)

func testConfig(url string) Config {
	return Config{
		BridgeURL:      url,
		Enabled:        true,
		AttemptTimeout: 2 * time.Second,
		MaxAttempts:    3,
		InitialBackoff: 10 * time.Millisecond,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDispatcher_DeliversFirstAttempt(t *testing.T) {
	var calls atomic.Int32
	var got Payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := NewDispatcher(testConfig(srv.URL), testLogger())
	attempts, err := d.Send(context.Background(), Payload{Title: "Reminder", Message: "standup"})
	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "Reminder", got.Title)
	// a correlation id rides along
	assert.NotEmpty(t, got.Metadata["notification_id"])
}

func TestDispatcher_RetriesTransientThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := NewDispatcher(testConfig(srv.URL), testLogger())
	start := time.Now()
	attempts, err := d.Send(context.Background(), Payload{Title: "t", Message: "m"})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	// two backoff waits: 10ms + 20ms
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestDispatcher_ExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := NewDispatcher(testConfig(srv.URL), testLogger())
	attempts, err := d.Send(context.Background(), Payload{Title: "t", Message: "m"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrDeliveryFailed)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDispatcher_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	d := NewDispatcher(testConfig(srv.URL), testLogger())
	attempts, err := d.Send(context.Background(), Payload{Title: "t", Message: "m"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrDeliveryFailed)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDispatcher_NetworkErrorRetried(t *testing.T) {
	// A closed server yields connection errors, which are transient.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	d := NewDispatcher(testConfig(url), testLogger())
	attempts, err := d.Send(context.Background(), Payload{Title: "t", Message: "m"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrDeliveryFailed)
	assert.Equal(t, 3, attempts)
}

func TestDispatcher_DisabledBridge(t *testing.T) {
	d := NewDispatcher(Config{Enabled: false}, testLogger())
	attempts, err := d.Send(context.Background(), Payload{Title: "t", Message: "m"})
	assert.ErrorIs(t, err, apperr.ErrDeliveryFailed)
	assert.Zero(t, attempts)
}

func TestDispatcher_DefaultSoundApplied(t *testing.T) {
	var got Payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.DefaultSound = "ping"
	d := NewDispatcher(cfg, testLogger())
	_, err := d.Send(context.Background(), Payload{Title: "t", Message: "m"})
	require.NoError(t, err)
	assert.Equal(t, "ping", got.Sound)
}
