// Package client provides a client library for interacting with a
// cliphub server over its HTTP API. The copy, paste, and status CLI
// commands are built on it.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// DefaultBaseURL points at a hub on the local machine's default port.
const DefaultBaseURL = "http://127.0.0.1:8737"

// Client provides methods to interact with a running cliphub server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Config contains configuration for the client.
type Config struct {
	// BaseURL is the hub's HTTP address. If empty, CLIPHUB_URL is
	// consulted, then DefaultBaseURL.
	BaseURL string

	// Timeout for operations. Default is 5 seconds.
	Timeout time.Duration
}

// New creates a new client with the given configuration.
func New(cfg *Config) *Client {
	if cfg == nil {
		cfg = &Config{}
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = os.Getenv("CLIPHUB_URL")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ClipboardState is the hub's current clipboard content.
type ClipboardState struct {
	Content     string    `json:"content"`
	Fingerprint string    `json:"fingerprint"`
	Timestamp   time.Time `json:"timestamp"`
}

// IngestResult reports how the hub handled a submitted update.
type IngestResult struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// Stats mirrors the hub's sync engine counters.
type Stats struct {
	StartTime    time.Time `json:"start_time"`
	LastAccepted time.Time `json:"last_accepted"`
	Accepted     uint64    `json:"accepted"`
	Queued       uint64    `json:"queued"`
	Rejected     uint64    `json:"rejected"`
	Ignored      uint64    `json:"ignored"`
	Broadcasts   uint64    `json:"broadcasts"`
	WriteErrors  uint64    `json:"write_errors"`
	SendErrors   uint64    `json:"send_errors"`
}

// Status is the hub's status report.
type Status struct {
	Version       string `json:"version"`
	Uptime        string `json:"uptime"`
	AutoSync      bool   `json:"auto_sync"`
	Devices       int    `json:"devices"`
	AutoSyncCount int    `json:"auto_sync_devices"`
	Connected     int    `json:"connected"`
	Stats         Stats  `json:"stats"`
}

// Copy submits content to the hub's clipboard. A rejection by the
// content filter is returned as an error carrying the reason.
func (c *Client) Copy(content string) error {
	var result IngestResult
	err := c.post("/api/clipboard", map[string]string{"content": content}, &result)
	if err != nil {
		return err
	}
	if result.Status == "rejected" {
		return fmt.Errorf("hub rejected content: %s", result.Reason)
	}
	return nil
}

// Paste returns the hub's current clipboard content.
func (c *Client) Paste() (string, error) {
	var state ClipboardState
	if err := c.get("/api/clipboard", &state); err != nil {
		return "", err
	}
	return state.Content, nil
}

// Status returns the hub's status report.
func (c *Client) Status() (*Status, error) {
	var status Status
	if err := c.get("/api/status", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Resync asks the hub to re-send the current clipboard to every
// auto-sync device. Returns the number of targets.
func (c *Client) Resync() (int, error) {
	var resp struct {
		Targets int `json:"targets"`
	}
	if err := c.post("/api/resync", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Targets, nil
}

func (c *Client) get(path string, out any) error {
	resp, err := c.httpClient.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("cannot reach cliphub at %s: %w", c.baseURL, err)
	}
	return decodeResponse(resp, out)
}

func (c *Client) post(path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	resp, err := c.httpClient.Post(c.baseURL+path, "application/json", reader)
	if err != nil {
		return fmt.Errorf("cannot reach cliphub at %s: %w", c.baseURL, err)
	}
	return decodeResponse(resp, out)
}

func decodeResponse(resp *http.Response, out any) error {
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	// 422 carries an ingest result; the caller inspects the status.
	if resp.StatusCode >= 400 && resp.StatusCode != http.StatusUnprocessableEntity {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("hub error: %s", apiErr.Error)
		}
		return fmt.Errorf("hub returned status %d", resp.StatusCode)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
