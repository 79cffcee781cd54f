package client

// This file defines functional options that configure the Client during
// construction.

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Option configures a Client during construction in New.
//
// Options run before the credential transport is installed, so transport
// options (like debug logging) end up underneath it.
type Option func(*Client) error

// WithHTTPClient replaces the underlying http.Client. Its transport becomes the
// base of the chain.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return fmt.Errorf("http client cannot be nil")
		}
		c.http = hc
		return nil
	}
}

// WithHTTPTimeout sets the underlying http.Client Timeout.
//
// The gateway imposes no timeout of its own; this is the only bound on a hung
// request besides the caller's context. The value must be greater than zero.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("http timeout must be > 0")
		}
		c.http.Timeout = d
		return nil
	}
}

// WithDebugLogging wraps the client's transport so each request/response is
// dumped at debug level. Dumps include the bearer credential; do not enable
// this in production.
func WithDebugLogging(enabled bool) Option {
	return func(c *Client) error {
		if enabled {
			if _, ok := c.http.Transport.(*debugTransport); !ok {
				c.http.Transport = &debugTransport{base: c.http.Transport, log: &c.log}
			}
		}
		return nil
	}
}

// WithCredentialSource sets where the session credential is read from.
func WithCredentialSource(src CredentialSource) Option {
	return func(c *Client) error {
		if src == nil {
			return fmt.Errorf("credential source cannot be nil")
		}
		c.creds = src
		return nil
	}
}

// WithLogger sets the logger for the client and everything it owns.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) error {
		c.log = l
		return nil
	}
}

// WithUploadConcurrency bounds how many media uploads one save runs at once.
func WithUploadConcurrency(n int) Option {
	return func(c *Client) error {
		if n <= 0 {
			return fmt.Errorf("upload concurrency must be > 0")
		}
		c.uploadConcurrency = n
		return nil
	}
}

// WithPageSize sets how many entries a Timeline refresh requests.
func WithPageSize(n int) Option {
	return func(c *Client) error {
		if n <= 0 {
			return fmt.Errorf("page size must be > 0")
		}
		c.pageSize = n
		return nil
	}
}
