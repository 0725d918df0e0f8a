package salesforce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Common errors.
var (
	ErrNotFound     = errors.New("salesforce: resource not found")
	ErrForbidden    = errors.New("salesforce: access forbidden")
	ErrUnauthorized = errors.New("salesforce: unauthorized")
	ErrRateLimited  = errors.New("salesforce: API request limit exceeded")
	ErrServerError  = errors.New("salesforce: server error")
)

// TokenSource supplies an access token for API requests. The authentication
// subsystem (OAuth flows, refresh) lives outside this package; callers inject
// whatever implementation they have.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource returning a fixed access token.
type StaticToken string

// Token implements TokenSource.
func (t StaticToken) Token(ctx context.Context) (string, error) {
	return string(t), nil
}

// Options configures the API client.
type Options struct {
	// InstanceURL is the org base URL, e.g. https://example.my.salesforce.com.
	InstanceURL string

	// APIVersion is the REST API version, e.g. "v59.0".
	APIVersion string

	// Tokens supplies access tokens per request.
	Tokens TokenSource

	// MaxIdleConnsPerHost sets the maximum idle connections per host.
	// Default: 100
	MaxIdleConnsPerHost int

	// Timeout for individual requests.
	// Default: 120s (binary bodies can be large)
	Timeout time.Duration

	// RetryAttempts is the maximum number of retry attempts for server errors.
	// Default: 5
	RetryAttempts int

	// RetryBackoff is the initial backoff duration.
	// Default: 1s
	RetryBackoff time.Duration

	// RetryMaxBackoff is the maximum backoff duration.
	// Default: 30s
	RetryMaxBackoff time.Duration
}

// DefaultOptions returns options with sensible defaults. InstanceURL,
// APIVersion and Tokens must still be set by the caller.
func DefaultOptions() Options {
	return Options{
		APIVersion:          "v59.0",
		MaxIdleConnsPerHost: 100,
		Timeout:             120 * time.Second,
		RetryAttempts:       5,
		RetryBackoff:        time.Second,
		RetryMaxBackoff:     30 * time.Second,
	}
}

// Client talks to the Salesforce REST API.
type Client struct {
	client *http.Client
	opts   Options
}

// NewClient creates a new API client with the given options.
func NewClient(opts Options) *Client {
	if opts.APIVersion == "" {
		opts.APIVersion = "v59.0"
	}
	if opts.MaxIdleConnsPerHost == 0 {
		opts.MaxIdleConnsPerHost = 100
	}
	if opts.Timeout == 0 {
		opts.Timeout = 120 * time.Second
	}
	if opts.RetryBackoff == 0 {
		opts.RetryBackoff = time.Second
	}
	if opts.RetryMaxBackoff == 0 {
		opts.RetryMaxBackoff = 30 * time.Second
	}

	transport := &http.Transport{
		MaxIdleConnsPerHost: opts.MaxIdleConnsPerHost,
		MaxIdleConns:        opts.MaxIdleConnsPerHost * 2,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{
		client: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
		},
		opts: opts,
	}
}

// APIVersion returns the configured REST API version.
func (c *Client) APIVersion() string {
	return c.opts.APIVersion
}

// get performs an authenticated GET with retry on server errors.
// The caller owns the returned body.
func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.opts.RetryAttempts; attempt++ {
		if attempt > 0 {
			if err := c.backoff(ctx, attempt); err != nil {
				return nil, err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}

		token, err := c.opts.Tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("get token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		// Server errors are retryable
		if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("%w: %d %s", ErrServerError, resp.StatusCode, resp.Status)
			continue
		}

		if err := checkStatusCode(resp.StatusCode); err != nil {
			resp.Body.Close()
			return nil, err
		}

		return resp, nil
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", c.opts.RetryAttempts+1, lastErr)
}

// queryResponse is the REST query envelope.
type queryResponse struct {
	TotalSize      int              `json:"totalSize"`
	Done           bool             `json:"done"`
	NextRecordsURL string           `json:"nextRecordsUrl"`
	Records        []map[string]any `json:"records"`
}

// QueryAll runs a SOQL query and follows nextRecordsUrl pagination until the
// full result set has been retrieved. Ordering within the result set is the
// server's and stable for identical inputs.
func (c *Client) QueryAll(ctx context.Context, soql string) ([]map[string]any, error) {
	next := c.opts.InstanceURL + "/services/data/" + c.opts.APIVersion +
		"/query?q=" + url.QueryEscape(soql)

	var records []map[string]any
	for next != "" {
		resp, err := c.get(ctx, next)
		if err != nil {
			return nil, fmt.Errorf("query: %w", err)
		}

		var page queryResponse
		err = json.NewDecoder(resp.Body).Decode(&page)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("decode query response: %w", err)
		}

		records = append(records, page.Records...)

		if page.Done || page.NextRecordsURL == "" {
			break
		}
		next = c.opts.InstanceURL + page.NextRecordsURL
	}

	return records, nil
}

// Fetch streams the binary at the given API-relative path
// (e.g. /services/data/v59.0/sobjects/Attachment/00P.../Body).
// The caller must close the returned body.
func (c *Client) Fetch(ctx context.Context, relPath string) (io.ReadCloser, error) {
	resp, err := c.get(ctx, c.opts.InstanceURL+relPath)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// LatestVersionID resolves a ContentDocument id to its latest published
// ContentVersion id.
func (c *Client) LatestVersionID(ctx context.Context, docID string) (string, error) {
	rawURL := c.opts.InstanceURL + "/services/data/" + c.opts.APIVersion +
		"/sobjects/ContentDocument/" + docID

	resp, err := c.get(ctx, rawURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var doc struct {
		LatestPublishedVersionID string `json:"LatestPublishedVersionId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return "", fmt.Errorf("decode ContentDocument %s: %w", docID, err)
	}
	if doc.LatestPublishedVersionID == "" {
		return "", fmt.Errorf("ContentDocument %s has no published version: %w", docID, ErrNotFound)
	}
	return doc.LatestPublishedVersionID, nil
}

// sobjectBlobPath builds the REST path for an sobject binary field.
func (c *Client) sobjectBlobPath(object, id, field string) string {
	return "/services/data/" + c.opts.APIVersion + "/sobjects/" + object + "/" + id + "/" + field
}

// backoff waits for an exponentially increasing duration with jitter.
func (c *Client) backoff(ctx context.Context, attempt int) error {
	backoff := c.opts.RetryBackoff * time.Duration(1<<uint(attempt-1))
	if backoff > c.opts.RetryMaxBackoff {
		backoff = c.opts.RetryMaxBackoff
	}

	// Add jitter: 0.5 to 1.5 of backoff
	jitter := time.Duration(float64(backoff) * (0.5 + rand.Float64()))

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(jitter):
		return nil
	}
}

// checkStatusCode returns an appropriate error for non-success status codes.
func checkStatusCode(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusForbidden:
		return ErrForbidden
	case code == http.StatusUnauthorized:
		return ErrUnauthorized
	case code == http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return fmt.Errorf("unexpected status code: %d", code)
	}
}

// quoteIDs renders ids as a SOQL IN(...) list.
func quoteIDs(ids []string) string {
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = "'" + id + "'"
	}
	return strings.Join(quoted, ",")
}
