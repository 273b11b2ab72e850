package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultTimeout = 30 * time.Second

	// defaultStrategy is the topic decomposition strategy sent on create.
	defaultStrategy = "depth_first"

	// maxErrorBody caps how much of an error response is carried in messages.
	maxErrorBody = 2048
)

// Config configures a backend client. BaseURL is required.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// HTTPClient overrides the client used for round trips. Tests inject
	// doubles here; when nil a client with Timeout is constructed.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client issues single HTTP round trips against the research-execution
// backend. It performs no retries; one failed attempt is one reported
// failure.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewClient validates the configuration and returns a ready client.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("backend: base URL is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("backend: invalid base URL %q: %w", cfg.BaseURL, err)
	}

	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{baseURL: base, client: client, logger: logger}, nil
}

// CreateExecution spawns a research execution for a topic.
func (c *Client) CreateExecution(ctx context.Context, in CreateExecutionInput) (ExecutionCreated, error) {
	if strings.TrimSpace(in.Strategy) == "" {
		in.Strategy = defaultStrategy
	}
	if in.Goals == nil {
		in.Goals = []string{}
	}

	var out ExecutionCreated
	err := c.do(ctx, http.MethodPost, "/api/v1/agent-teams", nil, in, &out)
	return out, err
}

// GetExecutionDetail fetches the current snapshot of one execution.
// A backend 404 surfaces as a *StatusError with code 404, not a generic
// failure, so callers can distinguish missing executions.
func (c *Client) GetExecutionDetail(ctx context.Context, id string) (ExecutionDetail, error) {
	var out ExecutionDetail
	err := c.do(ctx, http.MethodGet, "/api/v1/agent-teams/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

// GetResultDocument fetches the result document of an execution. Content may
// be absent even on a 200 response.
func (c *Client) GetResultDocument(ctx context.Context, id string) (ResultDocument, error) {
	var out ResultDocument
	err := c.do(ctx, http.MethodGet, "/api/v1/sachstand/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

// ListExecutions fetches execution summaries. Filter and pagination
// parameters are forwarded to the backend as query parameters, but the same
// filtering and slicing is always re-applied client-side: the client-side
// view is authoritative whether or not the backend honors the parameters.
func (c *Client) ListExecutions(ctx context.Context, opts ListOptions) ([]ExecutionSummary, error) {
	query := url.Values{}
	if strings.TrimSpace(opts.TopicFilter) != "" {
		query.Set("topic", opts.TopicFilter)
	}
	if strings.TrimSpace(opts.StatusFilter) != "" {
		query.Set("status", opts.StatusFilter)
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		query.Set("offset", strconv.Itoa(opts.Offset))
	}

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/v1/agent-teams", query, nil, &raw); err != nil {
		return nil, err
	}

	summaries, err := decodeSummaries(raw)
	if err != nil {
		return nil, err
	}

	filtered := filterSummaries(summaries, opts.TopicFilter, opts.StatusFilter)
	return paginateSummaries(filtered, opts.Offset, opts.Limit), nil
}

// Ping checks backend reachability with a minimal list request.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.ListExecutions(ctx, ListOptions{Limit: 1})
	return err
}

// decodeSummaries accepts the two list response shapes the backend is known
// to emit: a bare array, or an object wrapping it under "teams".
func decodeSummaries(raw json.RawMessage) ([]ExecutionSummary, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return []ExecutionSummary{}, nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var items []ExecutionSummary
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("backend: decode list response: %w", err)
		}
		return items, nil
	}

	var wrapped struct {
		Teams []ExecutionSummary `json:"teams"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("backend: decode list response: %w", err)
	}
	if wrapped.Teams == nil {
		return []ExecutionSummary{}, nil
	}
	return wrapped.Teams, nil
}

// do performs one HTTP round trip and decodes a 2xx body into out.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	op := method + " " + path

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("backend: encode %s request: %w", op, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("backend: build %s request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return &RequestError{Op: op, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "backend request",
		"op", op,
		"status", resp.StatusCode,
		"elapsed", time.Since(start),
	)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		message := strings.TrimSpace(string(raw))
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		return &StatusError{Op: op, StatusCode: resp.StatusCode, Body: message}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("backend: decode %s response: %w", op, err)
	}
	return nil
}
