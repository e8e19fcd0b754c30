package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"fundingboard/config"
	"fundingboard/logger"
)

// snapshotPath is the only endpoint this client talks to.
const snapshotPath = "/api/funding-arbitrage"

// Client fetches funding-arbitrage snapshots from the backend. It performs
// exactly one request per Fetch call and never retries internally; retry is
// the caller's concern.
type Client struct {
	baseURL string
	http    *http.Client
	log     *logger.Log
}

func NewClient(cfg config.FeedConfig, log *logger.Log) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// Fetch performs a single GET against the funding-arbitrage endpoint and
// decodes the response envelope. Failures are always returned as *Error so
// that callers can surface the most specific message available.
func (c *Client) Fetch(ctx context.Context) (*Snapshot, error) {
	started := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+snapshotPath, nil)
	if err != nil {
		return nil, &Error{Kind: KindUnknown, Message: fmt.Sprintf("failed to create request: %v", err)}
	}
	req.Header.Set("User-Agent", "fundingboard/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Message: fmt.Sprintf("failed to read response body: %v", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{
			Kind:    KindBackend,
			Status:  resp.StatusCode,
			Message: errorBodyMessage(body, resp.Status),
		}
	}

	var snapshot Snapshot
	if err := json.Unmarshal(body, &snapshot); err != nil {
		return nil, &Error{Kind: KindUnknown, Message: genericMessage}
	}

	if !snapshot.Success {
		message := snapshot.Error
		if message == "" {
			message = genericMessage
		}
		return nil, &Error{Kind: KindBackend, Status: resp.StatusCode, Message: message}
	}

	c.log.WithComponent("feed").WithFields(logger.Fields{
		"markets":     len(snapshot.Markets),
		"total":       snapshot.TotalMarkets,
		"filtered":    snapshot.FilteredMarkets,
		"duration_ms": float64(time.Since(started).Nanoseconds()) / 1e6,
	}).Debug("snapshot fetched")

	return &snapshot, nil
}

// errorBodyMessage extracts the most specific message from a non-2xx response
// body. A structured detail field wins, then an envelope error, then the HTTP
// status line.
func errorBodyMessage(body []byte, status string) string {
	var probe struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(body, &probe); err == nil {
		if probe.Detail != "" {
			return probe.Detail
		}
		if probe.Error != "" {
			return probe.Error
		}
	}
	return fmt.Sprintf("HTTP error: %s", status)
}
