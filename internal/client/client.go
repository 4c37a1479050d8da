// Package client calls the shortener HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/MikhailRaia/shortlink/internal/model"
)

const shortenPath = "/api/shorten"

var errInvalidBody = errors.New("response body is not JSON")

// APIError is a non-2xx answer whose body was valid JSON. Message holds the
// body's "error" field and may be empty.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
}

// TransportError means no usable answer was received: the request failed or
// the body was not JSON.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "transport error: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Client talks to one shortener origin.
type Client struct {
	origin     string
	httpClient *http.Client
}

// New returns a Client for origin. A nil httpClient gets a 10 second timeout.
func New(origin string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	return &Client{
		origin:     strings.TrimSuffix(origin, "/"),
		httpClient: httpClient,
	}
}

// Shorten posts req and returns the decoded response. Failures are either
// *APIError or *TransportError.
func (c *Client) Shorten(ctx context.Context, req model.ShortenRequest) (*model.ShortenResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("failed to encode request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.origin+shortenPath, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.Debug().Err(err).Str("origin", c.origin).Msg("Shorten request failed")
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("failed to read response: %w", err)}
	}

	log.Debug().
		Int("status", resp.StatusCode).
		Int("size", len(data)).
		Dur("duration", time.Since(start)).
		Msg("Shorten request completed")

	// The body is parsed before the status is looked at.
	if !json.Valid(data) {
		return nil, &TransportError{Err: errInvalidBody}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp model.ErrorResponse
		_ = json.Unmarshal(data, &errResp)
		return nil, &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
	}

	var result model.ShortenResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, &TransportError{Err: fmt.Errorf("invalid response body: %w", err)}
	}

	return &result, nil
}
