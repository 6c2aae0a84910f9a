// Package stats is the HTTP client for the external statistics service. The
// platform consumes exactly two of its operations: recording an endpoint hit
// and asking whether a (uri, ip) pair has been seen before. Callers treat
// every error as "view not counted" rather than failing their own request.
package stats

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"afisha/internal/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client talks to the statistics service.
type Client struct {
	http    *http.Client
	baseURL string
	app     string
}

// New constructs a Client. app identifies this service in recorded hits.
func New(baseURL, app string) *Client {
	return &Client{
		http:    &http.Client{Timeout: 3 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		app:     app,
	}
}

type endpointHit struct {
	App       string `json:"app"`
	URI       string `json:"uri"`
	IP        string `json:"ip"`
	Timestamp string `json:"timestamp"`
}

// RecordHit registers a page view of uri from ip at the given instant.
func (c *Client) RecordHit(ctx context.Context, uri, ip string, at time.Time) error {
	body, err := json.Marshal(endpointHit{
		App:       c.app,
		URI:       uri,
		IP:        ip,
		Timestamp: model.NewDateTime(at).String(),
	})
	if err != nil {
		return fmt.Errorf("marshal hit: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/hit", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build hit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("record hit: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("record hit: unexpected status %s", resp.Status)
	}
	return nil
}

// IsFirstVisit reports whether the statistics service has never seen this
// (uri, ip) pair before.
func (c *Client) IsFirstVisit(ctx context.Context, uri, ip string) (bool, error) {
	q := url.Values{}
	q.Set("uri", uri)
	q.Set("ip", ip)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/unique?"+q.Encode(), nil)
	if err != nil {
		return false, fmt.Errorf("build unique request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("check first visit: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("check first visit: unexpected status %s", resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64))
	if err != nil {
		return false, fmt.Errorf("read unique response: %w", err)
	}
	first, err := strconv.ParseBool(strings.TrimSpace(string(body)))
	if err != nil {
		return false, fmt.Errorf("parse unique response %q: %w", body, err)
	}
	return first, nil
}
