package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dreamware/canopy/internal/overlay"
)

// Client drives a canopyd daemon over its HTTP surface: one method per
// endpoint, each returning the decoded response type from this package.
type Client struct {
	base string
	http *http.Client
}

// NewClient returns a client for the daemon listening at base, for example
// "http://localhost:8080".
func NewClient(base string) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 5 * time.Second},
	}
}

// Join adds a zone at a point the daemon draws from its own RNG.
func (c *Client) Join(ctx context.Context) (JoinResponse, error) {
	var out JoinResponse
	err := c.postJSON(ctx, "/join", nil, &out)
	return out, err
}

// Leave removes zone id. The daemon answers 404 for an unknown zone and 409
// when the merge is refused; both surface here as errors.
func (c *Client) Leave(ctx context.Context, id overlay.NodeID) error {
	return c.postJSON(ctx, "/leave", LeaveRequest{ID: id}, nil)
}

// Put stores key=value and reports the owning zone and mapped point.
func (c *Client) Put(ctx context.Context, key, value string) (PutResponse, error) {
	var out PutResponse
	err := c.postJSON(ctx, "/keys", PutRequest{Key: key, Value: value}, &out)
	return out, err
}

// Get looks key up. A miss is not an error: Found is false and the routing
// metadata is still populated.
func (c *Client) Get(ctx context.Context, key string) (GetResponse, error) {
	var out GetResponse
	err := c.getJSON(ctx, "/keys/"+url.PathEscape(key), &out)
	return out, err
}

// Rebalance splits the heaviest zone, reporting the new zone if one was made.
func (c *Client) Rebalance(ctx context.Context) (RebalanceResponse, error) {
	var out RebalanceResponse
	err := c.postJSON(ctx, "/rebalance", nil, &out)
	return out, err
}

// Stats fetches the per-zone statistics report.
func (c *Client) Stats(ctx context.Context) (StatsResponse, error) {
	var out StatsResponse
	err := c.getJSON(ctx, "/stats", &out)
	return out, err
}

// Map fetches the text rendering of the current partition.
func (c *Client) Map(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/map", nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("GET /map: http %d", resp.StatusCode)
	}
	b, err := io.ReadAll(resp.Body)
	return string(b), err
}

// Health reports whether the daemon is answering.
func (c *Client) Health(ctx context.Context) error {
	return c.getJSON(ctx, "/health", nil)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// do runs the request, maps any non-2xx status to an error, and decodes the
// JSON body into out when out is non-nil.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: http %d", req.Method, req.URL.Path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
