// Package solver talks to an external solver engine over HTTP. It
// posts encoded auctions to the engine's /solve endpoint and returns
// the raw response body for decoding and validation.
package solver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"solverBridge/internal/model"
)

// transientError marks failures worth retrying: network errors and
// server-side 5xx responses. Malformed responses and client-side 4xx
// rejections are not transient.
type transientError struct {
	err error
}

func (e transientError) Error() string { return e.err.Error() }
func (e transientError) Unwrap() error { return e.err }

func retryable(err error) bool {
	var transient transientError
	return errors.As(err, &transient)
}

// Config holds the solver endpoint settings.
type Config struct {
	// Endpoint is the base URL of the solver engine.
	Endpoint string
	// Address is the on-chain address solutions are attributed to.
	Address common.Address
	// Timeout bounds one /solve round trip. Zero means no limit
	// beyond the auction deadline.
	Timeout time.Duration
	// MaxRetries is how many times a transient failure is retried.
	MaxRetries int
	// RetryBackoff is the initial retry delay, doubled per attempt.
	RetryBackoff time.Duration
}

// Client is an HTTP client for one solver engine.
type Client struct {
	endpoint   *url.URL
	address    common.Address
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
	logger     *zap.Logger
}

// NewClient creates a solver client from the config.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	endpoint, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse solver endpoint: %w", err)
	}
	return &Client{
		endpoint:   endpoint,
		address:    cfg.Address,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.RetryBackoff,
		logger:     logger,
	}, nil
}

// Address returns the solver's on-chain address.
func (c *Client) Address() common.Address {
	return c.address
}

// Solve posts the encoded auction and returns the raw response body.
// The body is returned unparsed so the caller decides how strictly to
// decode it; transport failures and 5xx responses are retried with
// exponential backoff.
func (c *Client) Solve(ctx context.Context, auction *model.Auction) ([]byte, error) {
	body, err := json.Marshal(auction)
	if err != nil {
		return nil, fmt.Errorf("marshal auction: %w", err)
	}

	solveURL := c.endpoint.JoinPath("solve").String()

	var response []byte
	err = withRetry(ctx, c.maxRetries, c.backoff, func(ctx context.Context) error {
		response, err = c.post(ctx, solveURL, body)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("solve auction: %w", err)
	}

	c.logger.Debug("solver responded",
		zap.Stringp("auction", auction.ID),
		zap.Int("bytes", len(response)),
	)
	return response, nil
}

// Notify posts a fire-and-forget notification to the engine, e.g. that
// the round deadline passed without a settlement. Errors are logged,
// not returned.
func (c *Client) Notify(ctx context.Context, auctionID string, kind string) {
	payload, err := json.Marshal(map[string]string{
		"auctionId": auctionID,
		"kind":      kind,
	})
	if err != nil {
		return
	}
	notifyURL := c.endpoint.JoinPath("notify").String()
	if _, err := c.post(ctx, notifyURL, payload); err != nil {
		c.logger.Warn("solver notification failed",
			zap.String("auction", auctionID),
			zap.String("kind", kind),
			zap.Error(err),
		)
	}
}

func (c *Client) post(ctx context.Context, url string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transientError{err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transientError{err: err}
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, transientError{err: fmt.Errorf("solver returned %d: %s", resp.StatusCode, data)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("solver returned %d: %s", resp.StatusCode, data)
	}
	return data, nil
}
