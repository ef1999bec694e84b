package apiclient

import (
	"net/http"

	"github.com/GoCodeAlone/taskmaster"
)

// RequestModifierFunc can change an outgoing request before it is sent,
// for example to add headers.
//
//	func userAgent(ua string) RequestModifierFunc {
//		return func(req *http.Request) *http.Request {
//			req.Header.Set("User-Agent", ua)
//			return req
//		}
//	}
type RequestModifierFunc func(*http.Request) *http.Request

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default *http.Client. Its Transport is
// wrapped, not replaced, when verbose logging is enabled.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger used for request failures and verbose output.
func WithLogger(logger taskmaster.Logger) Option {
	return func(c *Client) {
		c.logger = taskmaster.LoggerOrNop(logger)
	}
}

// WithRequestModifier adds a modifier run on every request. Modifiers
// chain in the order they are given, so a later one sees the changes of
// an earlier one and wins on conflicting headers.
func WithRequestModifier(modifier RequestModifierFunc) Option {
	return func(c *Client) {
		if modifier == nil {
			return
		}
		prev := c.modifier
		c.modifier = func(req *http.Request) *http.Request {
			return modifier(prev(req))
		}
	}
}

// WithVerbose turns on request/response logging. A nil opts logs only the
// request line, status and timing.
func WithVerbose(opts *taskmaster.VerboseOptions) Option {
	return func(c *Client) {
		c.verbose = true
		c.verboseOptions = opts
	}
}

// UserAgent returns a modifier that sets the User-Agent header.
func UserAgent(ua string) RequestModifierFunc {
	return func(req *http.Request) *http.Request {
		req.Header.Set("User-Agent", ua)
		return req
	}
}
