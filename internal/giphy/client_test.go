package giphy

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/five82/gifbox/internal/gif"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "https" || u.Host != "api.giphy.com" {
		t.Fatalf("url = %q, want https://api.giphy.com", u.String())
	}

	u, err = parseBaseURL("http://example.com:1234/path?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}

	u, err = parseBaseURL("proxy.local:8443")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "https" || u.Host != "proxy.local:8443" {
		t.Fatalf("url = %q, want https://proxy.local:8443", u.String())
	}
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(Options{APIKey: "  "})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("NewClient error = %v, want ErrMissingAPIKey", err)
	}
}

func TestClient_FetchesEndpointsAndEncodesQueries(t *testing.T) {
	t.Parallel()

	var gotTrending, gotSearch url.Values
	var gotUserAgent, gotRequestID string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/v1/gifs/trending":
			gotTrending = r.URL.Query()
			_ = json.NewEncoder(w).Encode(ListResponse{Data: []GIF{
				{ID: "t1", Title: " Trending One ", Images: Rendition{FixedHeight: Image{URL: "https://media/t1.gif"}}},
				{ID: ""},
			}})
		case "/v1/gifs/search":
			gotSearch = r.URL.Query()
			gotRequestID = r.Header.Get("X-Request-ID")
			_ = json.NewEncoder(w).Encode(ListResponse{Data: []GIF{{ID: "s1"}, {ID: "s2"}}})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(Options{BaseURL: server.URL, APIKey: "key123", Rating: "PG", Lang: "de"})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	items, err := c.Trending(ctx, gif.Page{Limit: 100})
	if err != nil {
		t.Fatalf("Trending returned error: %v", err)
	}
	if len(items) != 1 || items[0].ID != "t1" || items[0].Title != "Trending One" {
		t.Fatalf("Trending items = %#v, want one trimmed item t1", items)
	}
	if items[0].PreviewURL != "https://media/t1.gif" {
		t.Fatalf("PreviewURL = %q, want fixed_height fallback", items[0].PreviewURL)
	}
	if gotTrending.Get("api_key") != "key123" ||
		gotTrending.Get("rating") != "pg" ||
		gotTrending.Get("limit") != "50" ||
		gotTrending.Has("offset") {
		t.Fatalf("Trending query = %v, want api_key, rating=pg, limit capped at 50, no offset", gotTrending)
	}

	items, err = c.Search(WithRequestID(ctx, "req-1"), "  funny cats ", gif.Page{Offset: 25, Limit: 25})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Search items = %#v, want 2", items)
	}
	if gotSearch.Get("q") != "funny cats" ||
		gotSearch.Get("lang") != "de" ||
		gotSearch.Get("offset") != "25" ||
		gotSearch.Get("limit") != "25" {
		t.Fatalf("Search query = %v, want params encoded", gotSearch)
	}
	if gotRequestID != "req-1" {
		t.Fatalf("X-Request-ID = %q, want req-1", gotRequestID)
	}
	if !strings.HasPrefix(gotUserAgent, "gifbox/") {
		t.Fatalf("User-Agent = %q, want gifbox/*", gotUserAgent)
	}
}

func TestClient_SearchRejectsEmptyQuery(t *testing.T) {
	c, err := NewClient(Options{BaseURL: "127.0.0.1:1", APIKey: "k"})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if _, err := c.Search(context.Background(), "   ", gif.Page{}); err == nil {
		t.Fatalf("Search returned nil error, want error")
	}
}

func TestClient_HTTPErrorAndDecodeError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/gifs/trending":
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"meta":{"status":403,"msg":"Invalid authentication credentials"}}`))
		case "/v1/gifs/search":
			_, _ = w.Write([]byte(`{not json`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(Options{BaseURL: server.URL, APIKey: "bad"})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, err = c.Trending(context.Background(), gif.Page{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Trending error = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusForbidden || apiErr.Message != "Invalid authentication credentials" {
		t.Fatalf("APIError = %+v, want 403 with meta message", apiErr)
	}
	if strings.Contains(err.Error(), "bad") {
		t.Fatalf("error %q leaks api key", err.Error())
	}

	_, err = c.Search(context.Background(), "cats", gif.Page{})
	if err == nil || !strings.Contains(err.Error(), "decode response") {
		t.Fatalf("Search error = %v, want decode error", err)
	}
}

func TestClient_TransportErrorHidesAPIKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := server.URL
	server.Close()

	c, err := NewClient(Options{BaseURL: base, APIKey: "secret-key"})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_, err = c.Trending(context.Background(), gif.Page{})
	if err == nil {
		t.Fatalf("Trending returned nil error against closed server")
	}
	if strings.Contains(err.Error(), "secret-key") {
		t.Fatalf("error %q leaks api key", err.Error())
	}
}

func TestClient_NilReceiver(t *testing.T) {
	var c *Client
	if _, err := c.Trending(context.Background(), gif.Page{}); err == nil {
		t.Fatalf("Trending on nil client returned nil error")
	}
	if _, err := c.Search(context.Background(), "cats", gif.Page{}); err == nil {
		t.Fatalf("Search on nil client returned nil error")
	}
}
