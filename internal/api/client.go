// Package api implements the typed HTTP client for the SchemaPilot backend.
//
// Every exported method maps to exactly one backend endpoint. Mutating
// operations raise errors carrying the server detail message when one is
// present; list reads are best effort and degrade to empty results. Retry
// and timeout budgets follow the backend contract: expensive non-idempotent
// operations get a timeout but no retry, cheap persistence operations get
// both.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/schemapilot/pilotctl/internal/contract"
	"github.com/schemapilot/pilotctl/internal/request"
	"github.com/schemapilot/pilotctl/schema"
)

// Timeout budgets for the expensive backend operations.
const (
	generateTimeout = 300 * time.Second // schema inference and AI descriptions
	queryTimeout    = 120 * time.Second // NL->SQL generation, execution, refinement
	resultsTimeout  = 30 * time.Second  // save query, fetch result rows
)

// StatusError reports a non-success response from the backend. Detail holds
// the server-provided message when present, else an operation default.
type StatusError struct {
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string { return e.Detail }

// Client talks to the SchemaPilot backend over HTTP.
type Client struct {
	baseURL string
	httpc   *http.Client
	policy  request.Policy
	timeout time.Duration
}

var _ contract.Backend = (*Client)(nil)

// NewClient builds a client from validated configuration.
func NewClient(cfg *contract.Config) *Client {
	return &Client{
		baseURL: cfg.APIBaseURL,
		httpc:   &http.Client{},
		policy: request.Policy{
			MaxRetries: cfg.RetryMax,
			RetryDelay: cfg.RetryDelay,
			Multiplier: request.DefaultMultiplier,
		},
		timeout: cfg.Timeout,
	}
}

// call describes one HTTP request to the backend.
type call struct {
	method      string
	path        string
	body        []byte
	contentType string
	timeout     time.Duration // zero means the client default
	retry       bool
	fallback    string // error message when the server sends no detail
}

// doRaw issues the call under its policy and returns the response body.
func (c *Client) doRaw(ctx context.Context, cl call) ([]byte, error) {
	policy := request.NoRetry()
	if cl.retry {
		policy = c.policy
	}
	timeout := cl.timeout
	if timeout == 0 {
		timeout = c.timeout
	}

	var data []byte
	err := request.Run(ctx, policy, timeout, func(ctx context.Context) error {
		var body io.Reader
		if cl.body != nil {
			body = bytes.NewReader(cl.body)
		}
		req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, body)
		if err != nil {
			return request.Permanent(err)
		}
		if cl.contentType != "" {
			req.Header.Set("Content-Type", cl.contentType)
		}

		resp, err := c.httpc.Do(req)
		if err != nil {
			return err // transport failure, retryable
		}
		defer func() { _ = resp.Body.Close() }()

		data, err = io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
			return request.Permanent(statusError(resp.StatusCode, data, cl.fallback))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// do issues the call and decodes the JSON response into out when non-nil.
func (c *Client) do(ctx context.Context, cl call, out any) error {
	data, err := c.doRaw(ctx, cl)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", cl.fallback, err)
	}
	return nil
}

// doStream issues the call and copies the response body into w.
func (c *Client) doStream(ctx context.Context, cl call, w io.Writer) error {
	data, err := c.doRaw(ctx, cl)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// jsonBody marshals v for a request body. Marshaling our own request
// structs cannot fail, so errors collapse into an empty body.
func jsonBody(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}

// unmarshalLoose decodes a generation response that may be a JSON object or
// a bare JSON string carrying only the SQL text.
func unmarshalLoose(data []byte, out any) error {
	objErr := json.Unmarshal(data, out)
	if objErr == nil {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		switch v := out.(type) {
		case *schema.GeneratedQuery:
			v.SQLQuery = s
		case *schema.ModifiedQuery:
			v.ModifiedSQLQuery = s
		}
		return nil
	}
	return fmt.Errorf("decode generation response: %w", objErr)
}

func statusError(code int, body []byte, fallback string) error {
	var payload struct {
		Detail string `json:"detail"`
	}
	detail := fallback
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		detail = payload.Detail
	}
	return &StatusError{StatusCode: code, Detail: detail}
}
