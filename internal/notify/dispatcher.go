// Package notify delivers desktop notifications through the out-of-process
// HTTP bridge. It is a pure collaborator: it never touches the entity store.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/jarosser06/mosaic/internal/apperr"
)

// Payload is the JSON body posted to the bridge.
type Payload struct {
	Title    string         `json:"title"`
	Message  string         `json:"message"`
	Sound    string         `json:"sound,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Config holds dispatcher settings.
type Config struct {
	BridgeURL      string
	Enabled        bool
	DefaultSound   string
	AttemptTimeout time.Duration // per-attempt HTTP timeout
	MaxAttempts    int           // total attempts, retries included
	InitialBackoff time.Duration // first retry delay; doubles per attempt
}

// DefaultConfig returns dispatcher settings matching the delivery contract:
// 5s per attempt, 3 attempts, backoff doubling from 1s (waits of 1s, 2s).
func DefaultConfig(bridgeURL string) Config {
	return Config{
		BridgeURL:      bridgeURL,
		Enabled:        bridgeURL != "",
		AttemptTimeout: 5 * time.Second,
		MaxAttempts:    3,
		InitialBackoff: time.Second,
	}
}

// Dispatcher posts notifications with bounded retry. Transient failures
// (network errors, timeouts, 5xx) retry with exponential backoff; 4xx
// responses fail immediately.
type Dispatcher struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

// NewDispatcher creates a Dispatcher. The HTTP client is shared across
// dispatches for connection reuse.
func NewDispatcher(cfg Config, logger *slog.Logger) *Dispatcher {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = 5 * time.Second
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		logger: logger,
	}
}

// Close releases pooled connections.
func (d *Dispatcher) Close() {
	d.http.CloseIdleConnections()
}

// Send posts the payload to the bridge, retrying per the delivery contract.
// Returns the number of attempts made; on exhaustion or a non-retryable
// response the error wraps apperr.ErrDeliveryFailed.
func (d *Dispatcher) Send(ctx context.Context, p Payload) (int, error) {
	if !d.cfg.Enabled || d.cfg.BridgeURL == "" {
		return 0, fmt.Errorf("%w: notification bridge is not configured", apperr.ErrDeliveryFailed)
	}
	if p.Sound == "" {
		p.Sound = d.cfg.DefaultSound
	}
	if p.Metadata == nil {
		p.Metadata = map[string]any{}
	}
	p.Metadata["notification_id"] = uuid.New().String()

	body, err := json.Marshal(p)
	if err != nil {
		return 0, apperr.Internal(fmt.Errorf("marshaling notification: %w", err))
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = d.cfg.InitialBackoff
	policy.Multiplier = 2
	policy.RandomizationFactor = 0
	policy.MaxElapsedTime = 0

	attempts := 0
	operation := func() error {
		attempts++
		return d.post(ctx, body)
	}

	err = backoff.Retry(operation,
		backoff.WithContext(backoff.WithMaxRetries(policy, uint64(d.cfg.MaxAttempts-1)), ctx))
	if err != nil {
		d.logger.Error("notification delivery failed",
			"title", p.Title, "attempts", attempts, "error", err)
		return attempts, fmt.Errorf("%w after %d attempts: %v", apperr.ErrDeliveryFailed, attempts, err)
	}
	return attempts, nil
}

func (d *Dispatcher) post(ctx context.Context, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.AttemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.BridgeURL, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.http.Do(req)
	if err != nil {
		// Network errors and per-attempt timeouts are transient.
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return backoff.Permanent(fmt.Errorf("bridge rejected notification: status %d", resp.StatusCode))
	default:
		return fmt.Errorf("bridge returned status %d", resp.StatusCode)
	}
}
