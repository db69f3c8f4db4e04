// Package engine provides an HTTP client for the workflow engine's
// continuation endpoint.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/finops-claw-gang/holdingpen/internal/domain"
)

// ErrObjectNotFound is returned when the engine does not know the object.
var ErrObjectNotFound = errors.New("engine: object not found")

// Continuer continues a workflow object from a restart point.
type Continuer interface {
	Continue(ctx context.Context, objectID int64, restartPoint domain.RestartPoint) error
}

// Client calls the engine's HTTP API.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// New creates an engine client with the given endpoint URL.
func New(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewWithHTTPClient creates an engine client with a custom HTTP client (for testing).
func NewWithHTTPClient(endpoint string, httpClient *http.Client) *Client {
	return &Client{
		endpoint:   endpoint,
		httpClient: httpClient,
	}
}

type continueRequest struct {
	RestartPoint domain.RestartPoint `json:"restart_point"`
}

// Continue asks the engine to run the object from restartPoint.
func (c *Client) Continue(ctx context.Context, objectID int64, restartPoint domain.RestartPoint) error {
	if !restartPoint.Valid() {
		return fmt.Errorf("engine: invalid restart point %q", restartPoint)
	}
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return fmt.Errorf("engine: invalid endpoint: %w", err)
	}
	u = u.JoinPath("objects", strconv.FormatInt(objectID, 10), "continue")

	body, err := json.Marshal(continueRequest{RestartPoint: restartPoint})
	if err != nil {
		return fmt.Errorf("engine: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("engine: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("engine: request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %d", ErrObjectNotFound, objectID)
	case resp.StatusCode >= 300:
		return fmt.Errorf("engine: unexpected status %d", resp.StatusCode)
	}
	return nil
}
