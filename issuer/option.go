package issuer

import (
	"log/slog"
	"net/http"
)

// Option configures the client
type Option func(c *Client)

// WithHTTPClient sets the client used for register, login, refresh and logout.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithJar sets the cookie jar holding the refresh cookie
func WithJar(jar http.CookieJar) Option {
	return func(c *Client) {
		c.httpClient.Jar = jar
	}
}

// WithStrictDecode rejects access tokens whose expiry cannot be decoded.
// By default such tokens are accepted without a proactive refresh.
func WithStrictDecode(strict bool) Option {
	return func(c *Client) {
		c.strict = strict
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}
