package giphy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/http2"

	"github.com/five82/gifbox/internal/gif"
)

// Fetcher defines the Giphy operations gifbox relies on.
// It is implemented by *Client and can be replaced in tests.
type Fetcher interface {
	Trending(ctx context.Context, page gif.Page) ([]gif.Item, error)
	Search(ctx context.Context, query string, page gif.Page) ([]gif.Item, error)
}

// Ensure Client implements Fetcher at compile time.
var _ Fetcher = (*Client)(nil)

// ErrMissingAPIKey is returned by NewClient when no API key is configured.
var ErrMissingAPIKey = errors.New("giphy api key is required")

// APIError reports a non-2xx response from the Giphy API.
type APIError struct {
	Status  int
	Message string
	Path    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("giphy %s returned status %d: %s", e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("giphy %s returned status %d", e.Path, e.Status)
}

// Client talks to the Giphy HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	apiKey    string
	rating    string
	lang      string
	userAgent string
}

// Options configure a Client.
type Options struct {
	BaseURL    string
	APIKey     string
	Rating     string
	Lang       string
	Timeout    time.Duration
	HTTPClient *http.Client // nil builds an HTTP/2-capable client
}

const (
	DefaultBaseURL   = "https://api.giphy.com"
	DefaultRating    = "g"
	DefaultLang      = "en"
	defaultUserAgent = "gifbox/0.1"
	requestTimeout   = 10 * time.Second
	maxPageLimit     = 50
)

type requestIDKey struct{}

// WithRequestID returns a context carrying id, sent as X-Request-ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id stored by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// NewClient builds a Client from opts.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	base, err := parseBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = requestTimeout
		}
		httpClient, err = newHTTPClient(timeout)
		if err != nil {
			return nil, err
		}
	}
	rating := strings.ToLower(strings.TrimSpace(opts.Rating))
	if rating == "" {
		rating = DefaultRating
	}
	lang := strings.TrimSpace(opts.Lang)
	if lang == "" {
		lang = DefaultLang
	}
	return &Client{
		baseURL:   base,
		http:      httpClient,
		apiKey:    strings.TrimSpace(opts.APIKey),
		rating:    rating,
		lang:      lang,
		userAgent: defaultUserAgent,
	}, nil
}

// Trending retrieves a page of currently trending GIFs.
func (c *Client) Trending(ctx context.Context, page gif.Page) ([]gif.Item, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	values := c.baseValues(page)
	var payload ListResponse
	if err := c.get(ctx, "/v1/gifs/trending", values, &payload); err != nil {
		return nil, err
	}
	return payload.Items(), nil
}

// Search retrieves a page of GIFs matching query.
func (c *Client) Search(ctx context.Context, query string, page gif.Page) ([]gif.Item, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query is empty")
	}
	values := c.baseValues(page)
	values.Set("q", query)
	values.Set("lang", c.lang)
	var payload ListResponse
	if err := c.get(ctx, "/v1/gifs/search", values, &payload); err != nil {
		return nil, err
	}
	return payload.Items(), nil
}

func (c *Client) baseValues(page gif.Page) url.Values {
	values := url.Values{}
	values.Set("api_key", c.apiKey)
	values.Set("rating", c.rating)
	if page.Limit > 0 {
		values.Set("limit", strconv.Itoa(min(page.Limit, maxPageLimit)))
	}
	if page.Offset > 0 {
		values.Set("offset", strconv.Itoa(page.Offset))
	}
	return values
}

func (c *Client) get(ctx context.Context, path string, values url.Values, dest any) error {
	rel := &url.URL{Path: path, RawQuery: values.Encode()}
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if id := RequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Strip the api_key from url.Error so it never reaches logs.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			return fmt.Errorf("execute request %s: %w", path, uerr.Err)
		}
		return fmt.Errorf("execute request %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode, Path: path}
		var envelope struct {
			Meta    Meta   `json:"meta"`
			Message string `json:"message"`
		}
		if json.NewDecoder(resp.Body).Decode(&envelope) == nil {
			apiErr.Message = envelope.Meta.Msg
			if apiErr.Message == "" {
				apiErr.Message = envelope.Message
			}
		}
		return apiErr
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func newHTTPClient(timeout time.Duration) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if _, err := http2.ConfigureTransports(transport); err != nil {
		return nil, fmt.Errorf("configure http2 transport: %w", err)
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api url %q: %w", raw, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
