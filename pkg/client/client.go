// Package client provides the BoardGameGeek XML API 2 client with shared
// rate limiting, queued-response handling and response classification.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/bgg-stats/pkg/logging"
	"github.com/Sternrassler/bgg-stats/pkg/ratelimit"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
)

// Endpoint names, used in URLs, metrics and FetchError.Op.
const (
	EndpointCollection = "collection"
	EndpointThing      = "thing"
)

// Defaults for the catalog client.
const (
	DefaultBaseURL          = "https://boardgamegeek.com/xmlapi2"
	DefaultTimeout          = 30 * time.Second
	DefaultQueuedRetryPause = 2 * time.Second

	// DefaultMaxBatchSize is the most ids BGG accepts in one thing request.
	DefaultMaxBatchSize = 15

	maxResponseBytes = 32 << 20
)

// Client is the BGG catalog client.
type Client struct {
	httpClient *http.Client
	pacer      *ratelimit.Pacer
	breaker    *gobreaker.CircuitBreaker[[]byte]
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the XML API, without trailing endpoint.
	BaseURL string

	// User-Agent header sent with every request.
	UserAgent string

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// QueuedRetryPause is waited on top of the pacer pause before the
	// single retry of a queued collection request.
	QueuedRetryPause time.Duration

	// MaxBatchSize caps ids per FetchThings call.
	MaxBatchSize int

	Breaker BreakerConfig
}

// DefaultConfig returns a configuration for the public BGG API.
func DefaultConfig(userAgent string) Config {
	return Config{
		BaseURL:          DefaultBaseURL,
		UserAgent:        userAgent,
		Timeout:          DefaultTimeout,
		QueuedRetryPause: DefaultQueuedRetryPause,
		MaxBatchSize:     DefaultMaxBatchSize,
		Breaker:          DefaultBreakerConfig(),
	}
}

// New creates a catalog client. The pacer must be shared by every client
// in the process.
func New(cfg Config, pacer *ratelimit.Pacer) (*Client, error) {
	if pacer == nil {
		return nil, fmt.Errorf("pacer is required")
	}

	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be > 0 (got %s)", cfg.Timeout)
	}

	if cfg.QueuedRetryPause < 0 {
		return nil, fmt.Errorf("queued_retry_pause must be >= 0 (got %s)", cfg.QueuedRetryPause)
	}

	if cfg.MaxBatchSize < 1 || cfg.MaxBatchSize > DefaultMaxBatchSize {
		return nil, fmt.Errorf("max_batch_size must be between 1 and %d (got %d)", DefaultMaxBatchSize, cfg.MaxBatchSize)
	}

	logger := logging.NewLogger("bgg-client")

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		pacer:   pacer,
		breaker: newBreaker("bgg-api", cfg.Breaker, logger),
		config:  cfg,
		logger:  logger,
	}, nil
}

// FetchCollection returns the user's collection listing in service order,
// excluding expansions, wishlist and want-to-play entries. An unknown user,
// reported by the catalog as an <errors> envelope naming the username,
// yields an empty listing. If the catalog is still preparing the listing
// after one retry, the result is empty as well. Any other <errors> envelope
// is a protocol violation.
func (c *Client) FetchCollection(ctx context.Context, username string) ([]CollectionItem, error) {
	query := url.Values{}
	query.Set("username", username)
	query.Set("excludesubtype", "boardgameexpansion")
	query.Set("wanttoplay", "0")
	query.Set("wishlist", "0")

	doc, err := c.getWithQueuedRetry(ctx, EndpointCollection, c.endpointURL(EndpointCollection, query.Encode()))
	if err != nil {
		return nil, err
	}

	switch doc.Kind {
	case DocumentListing:
		c.logger.Debug().
			Str("username", username).
			Int("items", len(doc.Listing)).
			Msg("Collection listing received")
		return doc.Listing, nil
	case DocumentQueued:
		return []CollectionItem{}, nil
	case DocumentServiceError:
		if isUnknownUser(doc.Message) {
			c.logger.Info().
				Str("username", username).
				Str("message", doc.Message).
				Msg("Unknown user, returning empty listing")
			return []CollectionItem{}, nil
		}
	}

	return nil, c.unexpectedDocument(EndpointCollection, "collection listing", doc)
}

// FetchThings returns detail records for up to MaxBatchSize ids. Ids the
// catalog does not know are omitted from the result.
func (c *Client) FetchThings(ctx context.Context, ids []string) ([]ItemDetail, error) {
	if len(ids) == 0 || len(ids) > c.config.MaxBatchSize {
		return nil, fmt.Errorf("%w: %d ids (allowed 1..%d)", ErrInvalidBatch, len(ids), c.config.MaxBatchSize)
	}

	escaped := make([]string, len(ids))
	for i, id := range ids {
		escaped[i] = url.QueryEscape(id)
	}

	doc, err := c.get(ctx, EndpointThing, c.endpointURL(EndpointThing, "id="+strings.Join(escaped, ",")), 0)
	if err != nil {
		return nil, err
	}

	if doc.Kind != DocumentDetails {
		return nil, c.unexpectedDocument(EndpointThing, "thing details", doc)
	}

	return doc.Details, nil
}

// get performs one paced request and parses the body. extra is waited on
// top of the mandatory pause.
func (c *Client) get(ctx context.Context, endpoint, rawURL string, extra time.Duration) (Document, error) {
	release, err := c.pacer.Acquire(ctx, extra)
	if err != nil {
		fe := newTransportError(endpoint, "wait for request slot", err)
		c.recordError(fe)
		return Document{}, fe
	}
	defer release()

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("url", rawURL).
		Msg("Executing BGG request")

	start := time.Now()
	body, err := c.execute(ctx, endpoint, rawURL)
	bggRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		c.recordError(err)
		return Document{}, err
	}

	doc := ParseDocument(body)
	if doc.Kind == DocumentMalformed {
		fe := NewProtocolError(endpoint, "unexpected response document", doc.Err)
		c.recordError(fe)
		return doc, fe
	}

	return doc, nil
}

// execute runs the round trip inside the circuit breaker, if configured.
func (c *Client) execute(ctx context.Context, endpoint, rawURL string) ([]byte, error) {
	if c.breaker == nil {
		return c.roundTrip(ctx, endpoint, rawURL)
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.roundTrip(ctx, endpoint, rawURL)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		c.logger.Warn().
			Str("endpoint", endpoint).
			Err(err).
			Msg("Request rejected by circuit breaker")
		bggRequestsTotal.WithLabelValues(endpoint, "breaker_open").Inc()
		return nil, newTransportError(endpoint, "circuit breaker open", err)
	}
	return body, err
}

// roundTrip performs the HTTP request and classifies the status code.
func (c *Client) roundTrip(ctx context.Context, endpoint, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, newTransportError(endpoint, "create request", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		bggRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("HTTP request failed")
		return nil, newTransportError(endpoint, "request failed", err)
	}
	defer resp.Body.Close()

	bggRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &FetchError{Kind: KindTransport, Op: endpoint, StatusCode: resp.StatusCode, Message: "read response body", Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusOK, resp.StatusCode == http.StatusAccepted:
		return body, nil
	case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode >= 500:
		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Msg("BGG request throttled or failed upstream")
		return nil, &FetchError{Kind: KindTransport, Op: endpoint, StatusCode: resp.StatusCode, Message: resp.Status}
	default:
		return nil, &FetchError{Kind: KindProtocol, Op: endpoint, StatusCode: resp.StatusCode, Message: resp.Status}
	}
}

// unexpectedDocument records and returns the protocol violation for a
// well-formed document of the wrong shape.
func (c *Client) unexpectedDocument(endpoint, want string, doc Document) error {
	msg := fmt.Sprintf("expected %s, got %s document", want, doc.Kind)
	if doc.Message != "" {
		msg += ": " + doc.Message
	}
	err := NewProtocolError(endpoint, msg, nil)
	c.recordError(err)
	return err
}

// isUnknownUser reports whether a service error message is the catalog's
// answer for a username it does not know.
func isUnknownUser(message string) bool {
	m := strings.ToLower(message)
	return strings.Contains(m, "invalid username") ||
		strings.Contains(m, "user not found") ||
		strings.Contains(m, "unknown user")
}

func (c *Client) endpointURL(endpoint, rawQuery string) string {
	return strings.TrimRight(c.config.BaseURL, "/") + "/" + endpoint + "?" + rawQuery
}

func (c *Client) recordError(err error) {
	kind := KindOf(err)
	if kind == "" {
		kind = "unknown"
	}
	bggErrorsTotal.WithLabelValues(string(kind)).Inc()
}

// MaxBatchSize returns the configured per-request id cap.
func (c *Client) MaxBatchSize() int {
	return c.config.MaxBatchSize
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
