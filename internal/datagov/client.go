package datagov

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/five82/epiwatch/internal/surveillance"
)

const (
	// DefaultBaseURL is the data.gov.sg datastore search action.
	DefaultBaseURL = "https://data.gov.sg/api/action/datastore_search"
	// DefaultResourceID is the weekly surveillance dataset by age group and
	// clinical status.
	DefaultResourceID = "d_0d1da54a73733d33e40f662f757af537"

	defaultUserAgent = "epiwatch/0.1"
	defaultTimeout   = 10 * time.Second
	maxBodyBytes     = 10 << 20
)

// Client performs the one-shot datastore_search request.
type Client struct {
	endpoint  *url.URL
	http      *http.Client
	userAgent string
	logger    *slog.Logger
	requestID func() string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the overall request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger sets the logger used for fetch diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua = strings.TrimSpace(ua); ua != "" {
			c.userAgent = ua
		}
	}
}

// NewClient builds a Client for the full endpoint URL, including any
// resource_id and limit query parameters (see Endpoint).
func NewClient(endpoint string, opts ...Option) (*Client, error) {
	u, err := parseEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	c := &Client{
		endpoint:  u,
		http:      &http.Client{Timeout: defaultTimeout},
		userAgent: defaultUserAgent,
		logger:    slog.Default(),
		requestID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// URL returns the endpoint the client fetches.
func (c *Client) URL() string {
	if c == nil || c.endpoint == nil {
		return ""
	}
	return c.endpoint.String()
}

// Load performs exactly one GET against the endpoint and returns the decoded
// records in response order. Transport failures are reported as *FetchError
// and schema violations as *MalformedResponseError. Load never retries.
func (c *Client) Load(ctx context.Context) ([]surveillance.Record, error) {
	if c == nil {
		return nil, &FetchError{Err: errors.New("client is nil")}
	}
	reqURL := c.endpoint.String()
	requestID := c.requestID()
	logger := c.logger.With("request_id", requestID, "url", reqURL)
	start := time.Now()

	body, status, err := c.get(ctx, reqURL, requestID)
	if err != nil {
		logger.Warn("record fetch failed", "error", err, "elapsed", time.Since(start))
		return nil, err
	}

	p, err := decodePage(body)
	if err != nil {
		logger.Warn("record payload rejected", "status", status, "error", err, "elapsed", time.Since(start))
		return nil, err
	}

	attrs := []any{"status", status, "records", len(p.Records), "elapsed", time.Since(start)}
	if p.HasTotal {
		attrs = append(attrs, "total", p.Total)
		if p.Total > len(p.Records) {
			logger.Debug("dataset has more records than one page", "page", len(p.Records), "total", p.Total)
		}
	}
	logger.Info("records fetched", attrs...)
	return p.Records, nil
}

func (c *Client) get(ctx context.Context, reqURL, requestID string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, &FetchError{URL: reqURL, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, &FetchError{URL: reqURL, Err: fmt.Errorf("execute request: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, &FetchError{URL: reqURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, resp.StatusCode, &FetchError{URL: reqURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	if len(body) > maxBodyBytes {
		return nil, resp.StatusCode, malformed(nil, "body exceeds %d bytes", maxBodyBytes)
	}
	return body, resp.StatusCode, nil
}

// Endpoint builds a datastore_search URL from a base URL, a resource id and
// an optional page size. Existing query parameters on base are kept; an empty
// resourceID leaves any resource_id already present untouched.
func Endpoint(base, resourceID string, limit int) (string, error) {
	if strings.TrimSpace(base) == "" {
		base = DefaultBaseURL
	}
	u, err := parseEndpoint(base)
	if err != nil {
		return "", err
	}
	values := u.Query()
	if id := strings.TrimSpace(resourceID); id != "" {
		values.Set("resource_id", id)
	}
	if limit > 0 {
		values.Set("limit", strconv.Itoa(limit))
	}
	u.RawQuery = values.Encode()
	return u.String(), nil
}

func parseEndpoint(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("endpoint is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("parse endpoint %q: unsupported scheme %q", raw, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse endpoint %q: missing host", raw)
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u, nil
}
