package simulate

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
)

var errNotFound = errors.New("not found")

// client wraps http.Client with the service's JSON routes.
type client struct {
	base string
	http *http.Client
}

func newClient(base string, timeout time.Duration) *client {
	return &client{base: base, http: &http.Client{Timeout: timeout}}
}

func (c *client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal request: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest || out == nil {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}

func (c *client) health(ctx context.Context) error {
	status, err := c.do(ctx, http.MethodGet, "/healthz", nil, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("health check returned %d", status)
	}
	return nil
}

func (c *client) domains(ctx context.Context) ([]Domain, error) {
	var out struct {
		Domains []Domain `json:"domains"`
	}
	status, err := c.do(ctx, http.MethodGet, "/domains", nil, &out)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("list domains returned %d", status)
	}
	return out.Domains, nil
}

// record posts o and returns the progress the service answered with.
func (c *client) record(ctx context.Context, o Observation) (int, *Progress, error) {
	var p Progress
	status, err := c.do(ctx, http.MethodPost, "/observations", o, &p)
	if err != nil || status != http.StatusOK {
		return status, nil, err
	}
	return status, &p, nil
}

func (c *client) progress(ctx context.Context, userID string) (*Progress, error) {
	var p Progress
	status, err := c.do(ctx, http.MethodGet, "/progress/"+url.PathEscape(userID), nil, &p)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK:
		return &p, nil
	case http.StatusNotFound:
		return nil, errNotFound
	default:
		return nil, fmt.Errorf("get progress returned %d", status)
	}
}
