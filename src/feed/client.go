// Package feed fetches earthquake events from the USGS GeoJSON summary
// feeds. One Fetch is one HTTP GET; there is no retry, a failed cycle
// is simply reported and the next one starts clean.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/quakewatch/QuakeWatch/src/logx"
	"github.com/quakewatch/QuakeWatch/src/types"
)

// DefaultTimeout bounds a single feed request end to end.
const DefaultTimeout = 10 * time.Second

// Window is one of the rolling USGS summary feeds. All windows merge
// into the same history; switching only changes what a fetch can see.
type Window struct {
	Label string
	Slug  string
}

// Windows lists the selectable feed windows in display order. The
// M2.5 day window is the default.
func Windows() []Window {
	return []Window{
		{Label: "Past Hour (all)", Slug: "all_hour"},
		{Label: "Past Day (M2.5+)", Slug: "2.5_day"},
		{Label: "Past Week (M4.5+)", Slug: "4.5_week"},
	}
}

// DefaultWindow is the feed polled when nothing else is configured.
var DefaultWindow = Windows()[1]

// URL builds the summary feed URL for a window slug.
func URL(slug string) string {
	return fmt.Sprintf("https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/%s.geojson", slug)
}

// Client issues feed requests against a fixed URL.
type Client struct {
	httpClient *http.Client
	url        string
}

// NewClient creates a feed client. A non-positive timeout falls back to
// DefaultTimeout.
func NewClient(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		url:        url,
	}
}

// URL returns the feed URL this client polls.
func (c *Client) URL() string { return c.url }

// Fetch performs one GET against the feed and returns the decoded
// feature list. Transport errors, timeouts and non-2xx statuses are all
// returned as a single fetch-failure kind.
func (c *Client) Fetch(ctx context.Context) ([]types.Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch earthquake feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch earthquake feed: status %d", resp.StatusCode)
	}

	var payload types.FeedPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode earthquake feed: %w", err)
	}
	logx.Debugf("feed %s returned %d features", c.url, len(payload.Features))
	return payload.Features, nil
}
