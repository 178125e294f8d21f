package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DOIBaseURL resolves DOIs to CSL-JSON via content negotiation.
	DOIBaseURL = "https://doi.org"

	// CrossRefBaseURL is the CrossRef REST works endpoint.
	CrossRefBaseURL = "https://api.crossref.org/works"

	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = 10 * time.Second

	// DefaultRateLimit is the outbound request rate in requests per
	// second, matching CrossRef's polite-pool guidance.
	DefaultRateLimit = 5.0

	// DefaultSearchRows is how many candidates a title search requests.
	DefaultSearchRows = 3

	defaultUserAgent = "refsift/1.0"
)

// Client is a rate-limited HTTP client for the enrichment services.
// The limiter is shared by both services: a throttled call waits for a
// token rather than failing.
type Client struct {
	httpClient  *http.Client
	limiter     *rate.Limiter
	doiBase     string
	crossrefURL string
	mailto      string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURLs overrides the service endpoints (for testing).
func WithBaseURLs(doiBase, crossrefBase string) ClientOption {
	return func(c *Client) {
		if doiBase != "" {
			c.doiBase = doiBase
		}
		if crossrefBase != "" {
			c.crossrefURL = crossrefBase
		}
	}
}

// WithRateLimit sets the outbound request rate in requests per second.
// Tests pass rate.Inf through this to avoid wall-clock waits.
func WithRateLimit(limit rate.Limit) ClientOption {
	return func(c *Client) { c.limiter = rate.NewLimiter(limit, 1) }
}

// WithMailto sets the contact address reported to CrossRef, which
// routes requests to its polite pool.
func WithMailto(mailto string) ClientOption {
	return func(c *Client) { c.mailto = mailto }
}

// NewClient creates an enrichment client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: DefaultTimeout},
		limiter:     rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
		doiBase:     DOIBaseURL,
		crossrefURL: CrossRefBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ResolveDOI fetches CSL-JSON metadata for a DOI from doi.org.
func (c *Client) ResolveDOI(ctx context.Context, doi string) (*Result, error) {
	body, err := c.get(ctx, "doi.org", c.doiBase+"/"+doi, map[string]string{
		"Accept": "application/vnd.citationstyles.csl+json",
	})
	if err != nil {
		return nil, err
	}

	var work cslWork
	if err := json.Unmarshal(body, &work); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	res := work.toResult("doi.org")
	if res.DOI == "" {
		res.DOI = doi
	}
	return res, nil
}

// LookupDOI fetches metadata for a DOI from the CrossRef works API.
// Fallback for DOIs doi.org cannot serve as CSL.
func (c *Client) LookupDOI(ctx context.Context, doi string) (*Result, error) {
	body, err := c.get(ctx, "crossref", c.crossrefURL+"/"+url.PathEscape(doi), nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Message crossrefWork `json:"message"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return resp.Message.toResult(), nil
}

// SearchTitle queries CrossRef for works matching a title, best match
// first. Returns ErrNotFound when the search comes back empty.
func (c *Client) SearchTitle(ctx context.Context, title string, rows int) ([]*Result, error) {
	if rows <= 0 {
		rows = DefaultSearchRows
	}

	q := url.Values{}
	q.Set("query.title", title)
	q.Set("rows", strconv.Itoa(rows))
	if c.mailto != "" {
		q.Set("mailto", c.mailto)
	}

	body, err := c.get(ctx, "crossref", c.crossrefURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Message struct {
			Items []crossrefWork `json:"items"`
		} `json:"message"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if len(resp.Message.Items) == 0 {
		return nil, ErrNotFound
	}

	results := make([]*Result, 0, len(resp.Message.Items))
	for _, item := range resp.Message.Items {
		results = append(results, item.toResult())
	}
	return results, nil
}

// get performs one rate-limited GET and returns the response body.
func (c *Client) get(ctx context.Context, service, rawURL string, headers map[string]string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent())
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, rawURL)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, &APIError{
			Service:    service,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("HTTP %d", resp.StatusCode),
		}
	}

	const maxBody = 4 << 20
	body, err := readAll(resp, maxBody)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return body, nil
}

func (c *Client) userAgent() string {
	if c.mailto != "" {
		return fmt.Sprintf("%s (mailto:%s)", defaultUserAgent, c.mailto)
	}
	return defaultUserAgent
}

// readAll drains the body with a size cap, so a misbehaving service
// cannot balloon memory.
func readAll(resp *http.Response, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(resp.Body, limit))
}
