package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/stubkit/stubd/pkg/engine"
	"github.com/stubkit/stubd/pkg/payload"
)

// DefaultControlURL is the control API base URL when no flag or
// STUBD_URL environment variable is set.
const DefaultControlURL = "http://localhost:4280"

// ControlURL resolves the control API base URL from the environment.
func ControlURL() string {
	if url := os.Getenv("STUBD_URL"); url != "" {
		return url
	}
	return DefaultControlURL
}

// ControlClient talks to a running server's control API.
type ControlClient struct {
	baseURL string
	http    *http.Client
}

// NewControlClient builds a client for the control API at baseURL.
func NewControlClient(baseURL string) *ControlClient {
	return &ControlClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// HealthInfo is the control API health report.
type HealthInfo struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Stubs    int    `json:"stubs"`
	Requests int    `json:"requests"`
}

// Health fetches the server health report.
func (c *ControlClient) Health() (*HealthInfo, error) {
	var info HealthInfo
	if err := c.do(http.MethodGet, "/health", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// RegisterStub posts a stub definition and returns the created view.
func (c *ControlClient) RegisterStub(p payload.StubPayload) (*payload.StubView, error) {
	var view payload.StubView
	if err := c.do(http.MethodPost, "/stubs", p, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// ListStubs fetches all registered stubs.
func (c *ControlClient) ListStubs() ([]payload.StubView, error) {
	var result struct {
		Stubs []payload.StubView `json:"stubs"`
	}
	if err := c.do(http.MethodGet, "/stubs", nil, &result); err != nil {
		return nil, err
	}
	return result.Stubs, nil
}

// ClearStubs removes all registered stubs.
func (c *ControlClient) ClearStubs() error {
	return c.do(http.MethodDelete, "/stubs", nil, nil)
}

// ListRequests fetches the recorded request log.
func (c *ControlClient) ListRequests() ([]payload.RequestView, error) {
	var result struct {
		Requests []payload.RequestView `json:"requests"`
	}
	if err := c.do(http.MethodGet, "/requests", nil, &result); err != nil {
		return nil, err
	}
	return result.Requests, nil
}

// ClearRequests empties the recorded request log.
func (c *ControlClient) ClearRequests() error {
	return c.do(http.MethodDelete, "/requests", nil, nil)
}

// Assert evaluates an assertion against the request history.
func (c *ControlClient) Assert(p payload.AssertionPayload) (*payload.AssertionResult, error) {
	var result payload.AssertionResult
	if err := c.do(http.MethodPost, "/assert", p, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *ControlClient) do(method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+engine.ControlPrefix+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach server at %s: %w", c.baseURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("%s: %s", apiErr.Error, apiErr.Message)
		}
		return fmt.Errorf("server returned %s", resp.Status)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
