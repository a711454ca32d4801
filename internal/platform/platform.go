// Package platform holds the typed HTTP adapters for the identity-and-
// wallet platform the gateway fronts. Each adapter is stateless: one
// call in, one call out, bearer credential attached when required.
// Failures surface as *Error with the downstream status preserved;
// classification into user-facing failures happens in the orchestrator.
package platform

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
	ServiceIdentity   = "identity"
	ServiceFederation = "federation"
	ServiceWallet     = "wallet"
)

// Error is a failed downstream call. StatusCode is 0 for transport
// errors (connection refused, timeout) where no response was received.
type Error struct {
	Service    string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %v", e.Service, e.Err)
	}
	return fmt.Sprintf("%s: status %d: %v", e.Service, e.StatusCode, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ObserveFunc receives the outcome of every downstream call, for
// metrics. StatusCode is 0 when the call never reached the platform.
type ObserveFunc func(service string, statusCode int, elapsed time.Duration)

// Client is the shared HTTP plumbing under the three typed adapters.
type Client struct {
	baseURL string
	http    *http.Client
	observe ObserveFunc
}

// NewClient creates the shared client. timeout bounds every call; USSD
// sessions expire quickly, so a few seconds is the useful range.
// observe may be nil.
func NewClient(baseURL string, timeout time.Duration, observe ObserveFunc) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if observe == nil {
		observe = func(string, int, time.Duration) {}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		observe: observe,
	}
}

type request struct {
	service string
	method  string
	path    string
	query   url.Values
	bearer  string
	header  http.Header
	body    any
}

// do executes one downstream call and decodes a 2xx response into out
// (out may be nil). Any other outcome is returned as *Error.
func (c *Client) do(ctx context.Context, req request, out any) error {
	u := c.baseURL + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return &Error{Service: req.service, Err: err}
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, body)
	if err != nil {
		return &Error{Service: req.service, Err: err}
	}

	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.bearer != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.bearer)
	}
	for k, vs := range req.header {
		for _, v := range vs {
			httpReq.Header.Set(k, v)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.observe(req.service, 0, time.Since(start))
		return &Error{Service: req.service, Err: err}
	}
	defer resp.Body.Close()

	c.observe(req.service, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// keep a short slice of the body for diagnostics
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return &Error{
			Service:    req.service,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected response: %s", strings.TrimSpace(string(snippet))),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Service: req.service, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
