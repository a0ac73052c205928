// Package client provides the HTTP client for fetching agenda data from
// the datatracker API. It handles request identification, retry logic for
// background refreshes, and response decoding.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/otherjamesbrown/tracka-cli/config"
	"github.com/otherjamesbrown/tracka-cli/pkg/agenda"
	trerrors "github.com/otherjamesbrown/tracka-cli/pkg/errors"
	"github.com/otherjamesbrown/tracka-cli/pkg/logging"
)

// Default client settings.
const (
	DefaultConnectTimeout    = 10 * time.Second
	DefaultMaxRetries        = 3
	DefaultInitialBackoff    = 100 * time.Millisecond
	DefaultMaxBackoff        = 5 * time.Second
	DefaultBackoffMultiplier = 2.0
)

const tracerName = "client"

// AgendaClient fetches agenda data over HTTP.
type AgendaClient struct {
	// cfg supplies the base URL and request timeout.
	cfg *config.CLIConfig

	// options holds the client behavior configuration.
	options *ClientOptions

	// httpClient is the underlying HTTP client.
	httpClient *http.Client

	// log receives per-request debug output.
	log logging.Logger
}

// ClientOptions configures the AgendaClient behavior.
type ClientOptions struct {
	// ConnectTimeout is the maximum time for one request.
	ConnectTimeout time.Duration

	// MaxRetries is the maximum number of retry attempts for WithRetry.
	// A plain Fetch never retries: a failed page load surfaces as an
	// error with the fallback link, matching the one-shot load semantics.
	MaxRetries int

	// InitialBackoff is the initial backoff duration for retries.
	InitialBackoff time.Duration

	// MaxBackoff is the maximum backoff duration for retries.
	MaxBackoff time.Duration

	// BackoffMultiplier is the multiplier for exponential backoff.
	BackoffMultiplier float64

	// Debug enables verbose logging.
	Debug bool
}

// DefaultOptions returns ClientOptions with default values.
func DefaultOptions() *ClientOptions {
	return &ClientOptions{
		ConnectTimeout:    DefaultConnectTimeout,
		MaxRetries:        DefaultMaxRetries,
		InitialBackoff:    DefaultInitialBackoff,
		MaxBackoff:        DefaultMaxBackoff,
		BackoffMultiplier: DefaultBackoffMultiplier,
	}
}

// NewAgendaClient creates a new AgendaClient. A nil opts uses defaults;
// a nil logger disables logging.
func NewAgendaClient(cfg *config.CLIConfig, opts *ClientOptions, log logging.Logger) *AgendaClient {
	if opts == nil {
		opts = DefaultOptions()
	}
	if log == nil {
		log = logging.NewNopLogger()
	}

	timeout := opts.ConnectTimeout
	if cfg.Timeout > 0 {
		timeout = cfg.Timeout
	}

	return &AgendaClient{
		cfg:     cfg,
		options: opts,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// Fetch retrieves the agenda data for a meeting. It performs exactly one
// request: callers decide whether a failure is fatal (initial load) or
// retryable (watch refresh via WithRetry).
func (c *AgendaClient) Fetch(ctx context.Context, meeting string) (*agenda.Data, error) {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "client.fetch", trace.WithAttributes(
		attribute.String("meeting", meeting),
	))
	defer span.End()

	url := c.cfg.AgendaDataURL(meeting)
	requestID := uuid.New().String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building agenda request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)

	c.log.Debug("fetching agenda data",
		logging.F("url", url),
		logging.F("request_id", requestID),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching agenda for meeting %s: %w: %v", meeting, trerrors.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("meeting %s: %w", meeting, trerrors.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetching agenda for meeting %s: status %d: %w", meeting, resp.StatusCode, trerrors.ErrFetchFailed)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading agenda response: %w", err)
	}

	var data agenda.Data
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("decoding agenda response: %w: %v", trerrors.ErrFetchFailed, err)
	}

	c.log.Debug("agenda data fetched",
		logging.F("meeting", data.Meeting.Number),
		logging.F("sessions", len(data.Schedule)),
	)

	return &data, nil
}

// WithRetry executes the given function with automatic retry on failure.
// Uses exponential backoff between retry attempts. Reserved for watch
// refreshes; initial page loads call Fetch directly.
func (c *AgendaClient) WithRetry(ctx context.Context, fn func() error) error {
	backoff := c.options.InitialBackoff
	var lastErr error

	for attempt := 0; attempt <= c.options.MaxRetries; attempt++ {
		if err := fn(); err != nil {
			lastErr = err

			if attempt == c.options.MaxRetries {
				break
			}

			select {
			case <-ctx.Done():
				return fmt.Errorf("operation cancelled: %w", ctx.Err())
			default:
			}

			select {
			case <-ctx.Done():
				return fmt.Errorf("operation cancelled during backoff: %w", ctx.Err())
			case <-time.After(backoff):
			}

			backoff = time.Duration(float64(backoff) * c.options.BackoffMultiplier)
			if backoff > c.options.MaxBackoff {
				backoff = c.options.MaxBackoff
			}

			continue
		}

		return nil
	}

	return fmt.Errorf("operation failed after %d attempts: %w", c.options.MaxRetries+1, lastErr)
}

// FallbackURL returns the plain-text agenda link printed when a fetch
// fails, so the user still has a way to the schedule.
func (c *AgendaClient) FallbackURL(meeting string) string {
	return c.cfg.TextAgendaURL(meeting)
}
