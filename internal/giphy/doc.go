// Package giphy provides an HTTP client for the Giphy REST API.
//
// # Overview
//
// The client covers the two list endpoints gifbox needs: trending and search.
// Responses are decoded into transport types (types.go) and converted into
// gif.Item values for the rest of the application.
//
// # Client Usage
//
//	client, err := giphy.NewClient(giphy.Options{APIKey: key, Rating: "pg"})
//	if err != nil {
//		return err
//	}
//	items, err := client.Trending(ctx, gif.Page{Limit: 25})
//
// # Transport
//
// NewClient clones http.DefaultTransport and enables HTTP/2 on it through
// golang.org/x/net/http2. Each request carries a 10 second timeout unless
// Options.Timeout overrides it. A request ID attached with WithRequestID is
// sent as the X-Request-ID header.
//
// # Error Handling
//
//   - ErrMissingAPIKey: NewClient was called without an API key
//   - *APIError: the API answered with status >= 400; Message holds meta.msg
//   - wrapped transport errors ("execute request ...") with the api_key stripped
//   - wrapped decode errors ("decode response: ...")
//
// # Testing
//
// Fetcher is the interface consumers should accept. Tests point Options.BaseURL
// at an httptest.Server.
package giphy
