package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nhle/ghnotif/internal/httpcache"
)

// DefaultBaseURL is the public GitHub REST API root.
const DefaultBaseURL = "https://api.github.com"

// Client is a thin HTTP client for the GitHub REST and GraphQL APIs.
// It handles Bearer token authentication, JSON marshaling, conditional
// GET revalidation, and automatic retry with exponential backoff on
// HTTP 429. It is constructed explicitly and passed into the fetcher,
// resolver, and worker; there is no process-wide instance.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	maxRetries int
	cache      *httpcache.Store
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client, mainly for tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithCache attaches a conditional-request cache. GET responses that
// carry validators are stored and revalidated with If-None-Match /
// If-Modified-Since on later calls.
func WithCache(s *httpcache.Store) Option {
	return func(c *Client) { c.cache = s }
}

// NewClient creates a GitHub API client. The baseURL should be the API
// root (https://api.github.com, or a GitHub Enterprise equivalent);
// token is a personal access token with the notifications scope.
func NewClient(baseURL, token string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxRetries: 3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get performs an HTTP GET request and unmarshals the JSON response.
// url may be a path relative to the API root or an absolute detail URL
// from a notification subject.
func (c *Client) Get(ctx context.Context, url string, result interface{}) error {
	_, err := c.do(ctx, http.MethodGet, url, nil, result)
	return err
}

// getWithHeaders is Get plus access to the response headers, used by
// the fetcher to read pagination links.
func (c *Client) getWithHeaders(
	ctx context.Context,
	url string,
	result interface{},
) (http.Header, error) {
	return c.do(ctx, http.MethodGet, url, nil, result)
}

// Patch performs an HTTP PATCH request with no body, used to mark a
// notification thread as read.
func (c *Client) Patch(ctx context.Context, path string) error {
	_, err := c.do(ctx, http.MethodPatch, path, nil, nil)
	return err
}

// graphqlRequest is the POST /graphql envelope.
type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

type graphqlEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors"`
}

// GraphQL executes a GraphQL query against POST /graphql and unmarshals
// the data payload into data. GraphQL-level errors are returned as Go
// errors; a RATE_LIMITED error type maps to RateLimitError.
func (c *Client) GraphQL(
	ctx context.Context,
	query string,
	variables map[string]interface{},
	data interface{},
) error {
	var envelope graphqlEnvelope
	_, err := c.do(
		ctx, http.MethodPost, "/graphql",
		graphqlRequest{Query: query, Variables: variables},
		&envelope,
	)
	if err != nil {
		return err
	}

	if len(envelope.Errors) > 0 {
		msgs := make([]string, 0, len(envelope.Errors))
		for _, e := range envelope.Errors {
			if e.Type == "RATE_LIMITED" {
				return &RateLimitError{}
			}
			msgs = append(msgs, e.Message)
		}
		return fmt.Errorf("graphql query failed: %s", strings.Join(msgs, "; "))
	}

	if data == nil || len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, data); err != nil {
		return fmt.Errorf("unmarshaling graphql data: %w", err)
	}
	return nil
}

// apiError is the GitHub REST error payload.
type apiError struct {
	Message string `json:"message"`
}

// do is the core HTTP method that builds the request, handles auth,
// rate limiting, conditional revalidation, and JSON (de)serialization.
func (c *Client) do(
	ctx context.Context,
	method string,
	url string,
	body interface{},
	result interface{},
) (http.Header, error) {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = c.baseURL + url
	}

	var cached *httpcache.Entry
	if method == http.MethodGet && c.cache != nil {
		// A failed cache read only costs us the revalidation.
		cached, _ = c.cache.Get(ctx, url)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		var bodyReader io.Reader
		if body != nil {
			data, err := json.Marshal(body)
			if err != nil {
				return nil, fmt.Errorf("marshaling request body: %w", err)
			}
			bodyReader = bytes.NewReader(data)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}

		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/vnd.github+json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if cached != nil {
			if cached.ETag != "" {
				req.Header.Set("If-None-Match", cached.ETag)
			}
			if cached.LastModified != "" {
				req.Header.Set("If-Modified-Since", cached.LastModified)
			}
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("executing request %s %s: %w", method, url, err)
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("reading response body: %w", readErr)
		}

		switch {
		case resp.StatusCode == http.StatusNotModified && cached != nil:
			if result != nil {
				if err := json.Unmarshal(cached.Body, result); err != nil {
					return nil, fmt.Errorf("unmarshaling cached response for %s: %w", url, err)
				}
			}
			// A 304 only has to repeat validator headers; restore the
			// pagination Link from the cached response when the server
			// leaves it out, or the fetcher would see a one-page inbox.
			if resp.Header.Get("Link") == "" && cached.Link != "" {
				resp.Header.Set("Link", cached.Link)
			}
			return resp.Header, nil

		case resp.StatusCode == http.StatusUnauthorized:
			return nil, &AuthError{
				Message: fmt.Sprintf(
					"authentication failed (401): check your GitHub token for %s",
					c.baseURL,
				),
			}

		case resp.StatusCode == http.StatusTooManyRequests:
			lastErr = &RateLimitError{ResetAt: rateLimitReset(resp)}

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryAfterDuration(resp, attempt)):
				continue
			}

		case resp.StatusCode == http.StatusForbidden && isRateLimited(resp, respBody):
			// Primary rate limit exhaustion resets on a fixed window,
			// so retrying within this call is pointless.
			return nil, &RateLimitError{ResetAt: rateLimitReset(resp)}

		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			var ghErr apiError
			if json.Unmarshal(respBody, &ghErr) == nil && ghErr.Message != "" {
				return nil, fmt.Errorf(
					"GitHub API error (%d) on %s %s: %s",
					resp.StatusCode, method, url, ghErr.Message,
				)
			}
			return nil, fmt.Errorf(
				"unexpected status %d on %s %s: %s",
				resp.StatusCode, method, url, string(respBody),
			)
		}

		if method == http.MethodGet && c.cache != nil {
			etag := resp.Header.Get("ETag")
			lastMod := resp.Header.Get("Last-Modified")
			if etag != "" || lastMod != "" {
				_ = c.cache.Put(ctx, httpcache.Entry{
					URL:          url,
					ETag:         etag,
					LastModified: lastMod,
					Link:         resp.Header.Get("Link"),
					Body:         respBody,
				})
			}
		}

		// No content to parse (e.g. 205 from mark-as-read).
		if result == nil || len(respBody) == 0 {
			return resp.Header, nil
		}

		if err := json.Unmarshal(respBody, result); err != nil {
			return nil, fmt.Errorf(
				"unmarshaling response from %s %s: %w", method, url, err,
			)
		}
		return resp.Header, nil
	}

	return nil, fmt.Errorf("max retries (%d) exceeded: %w", c.maxRetries, lastErr)
}

// isRateLimited reports whether a 403 response is a rate limit
// rejection rather than a permissions problem.
func isRateLimited(resp *http.Response, body []byte) bool {
	if resp.Header.Get("X-RateLimit-Remaining") == "0" {
		return true
	}
	var ghErr apiError
	if json.Unmarshal(body, &ghErr) == nil {
		return strings.Contains(strings.ToLower(ghErr.Message), "rate limit")
	}
	return false
}

// rateLimitReset reads the X-RateLimit-Reset header as a unix
// timestamp.
func rateLimitReset(resp *http.Response) time.Time {
	raw := resp.Header.Get("X-RateLimit-Reset")
	if raw == "" {
		return time.Time{}
	}
	unix, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(unix, 0)
}

// retryAfterDuration reads the Retry-After header and computes a wait
// duration. Falls back to exponential backoff if the header is missing.
func retryAfterDuration(resp *http.Response, attempt int) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}

	// Exponential backoff: 1s, 2s, 4s, ...
	backoff := time.Duration(1<<uint(attempt)) * time.Second
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}
	return backoff
}
