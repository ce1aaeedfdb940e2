package client

import (
	"net/http"

	"go.uber.org/zap"
)

// Option configures the order client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger attaches a logger. The client is silent by default.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRequestIDs overrides the X-Request-ID generator.
func WithRequestIDs(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.requestID = fn
		}
	}
}

// WithEndpoint bypasses the contract lookup. Mostly useful against servers
// that mount the intake under a different path.
func WithEndpoint(method, path string) Option {
	return func(c *Client) {
		if method != "" && path != "" {
			c.method = method
			c.path = path
		}
	}
}
