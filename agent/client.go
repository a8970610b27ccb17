// Package agent is the HTTP client for the remote agent service.
//
// The service exposes two endpoints: one that opens a server-side session
// and one that answers a query inside a session. Every call is a single
// attempt; failures are returned to the caller as *SessionCreationError or
// *QueryError and never retried.
package agent

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
)

const (
	DefaultBaseURL = "http://localhost:8000"
	DefaultTimeout = 120 * time.Second

	createSessionPath = "/api/v1/agent/create_session"
	queryPath         = "/api/v1/agent/query"

	// NoResponsePlaceholder stands in for a reply that carried no response text.
	NoResponsePlaceholder = "No response received"

	maxErrorBody = 4 << 10
)

// QueryRequest is the body of a query call. Thinking and CodeactEnable are
// always sent as true.
type QueryRequest struct {
	Query         string `json:"query"`
	Thinking      bool   `json:"thinking"`
	CodeactEnable bool   `json:"codeact_enable"`
	SessionID     string `json:"session_id"`
}

type createSessionResponse struct {
	SessionID string `json:"session_id"`
}

type queryResponse struct {
	Response string `json:"response"`
}

type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid agent URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("invalid agent URL %q: scheme must be http or https", baseURL)
	}
	if parsedURL.Host == "" {
		return nil, fmt.Errorf("invalid agent URL %q: missing host", baseURL)
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
	}, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// CreateSession opens a new server-side session and returns its id.
func (c *Client) CreateSession(ctx context.Context) (string, error) {
	resp, err := c.post(ctx, createSessionPath, nil)
	if err != nil {
		return "", &SessionCreationError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &SessionCreationError{StatusCode: resp.StatusCode, Err: statusError(resp)}
	}

	var data createSessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", &SessionCreationError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	if data.SessionID == "" {
		return "", &SessionCreationError{StatusCode: resp.StatusCode, Err: ErrMissingSessionID}
	}

	return data.SessionID, nil
}

// SendQuery asks the agent a question inside sessionID and returns the reply
// text. A reply without response text yields NoResponsePlaceholder.
func (c *Client) SendQuery(ctx context.Context, query, sessionID string) (string, error) {
	if sessionID == "" {
		return "", &QueryError{Err: ErrNoSession}
	}

	body, err := json.Marshal(QueryRequest{
		Query:         query,
		Thinking:      true,
		CodeactEnable: true,
		SessionID:     sessionID,
	})
	if err != nil {
		return "", &QueryError{Err: fmt.Errorf("failed to marshal request: %w", err)}
	}

	resp, err := c.post(ctx, queryPath, body)
	if err != nil {
		return "", &QueryError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &QueryError{StatusCode: resp.StatusCode, Err: statusError(resp)}
	}

	var data queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", &QueryError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	if data.Response == "" {
		return NoResponsePlaceholder, nil
	}

	return data.Response, nil
}

func (c *Client) post(ctx context.Context, path string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

func statusError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := strings.TrimSpace(string(b))
	if msg == "" {
		return fmt.Errorf("HTTP error, status %s", resp.Status)
	}
	return fmt.Errorf("HTTP error, status %s: %s", resp.Status, msg)
}
