package apiclient

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"strings"
	"sync/atomic"
	"time"

	"github.com/GoCodeAlone/taskmaster"
)

// loggingTransport logs every round trip. With headers or bodies enabled
// it dumps them, truncated to MaxBodyLogSize.
type loggingTransport struct {
	Transport      http.RoundTripper
	Logger         taskmaster.Logger
	LogHeaders     bool
	LogBody        bool
	MaxBodyLogSize int

	seq atomic.Uint64
}

func newLoggingTransport(base http.RoundTripper, logger taskmaster.Logger, opts *taskmaster.VerboseOptions) *loggingTransport {
	t := &loggingTransport{Transport: base, Logger: taskmaster.LoggerOrNop(logger)}
	if opts != nil {
		t.LogHeaders = opts.LogHeaders
		t.LogBody = opts.LogBody
		t.MaxBodyLogSize = opts.MaxBodyLogSize
	}
	return t
}

// RoundTrip implements http.RoundTripper.
func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	id := fmt.Sprintf("req-%d", t.seq.Add(1))
	start := time.Now()

	t.logRequest(id, req)

	resp, err := t.Transport.RoundTrip(req)
	duration := time.Since(start)
	if err != nil {
		t.Logger.Error("Request failed",
			"id", id,
			"method", req.Method,
			"url", req.URL.String(),
			"duration_ms", duration.Milliseconds(),
			"error", err,
		)
		return resp, err
	}

	t.logResponse(id, req, resp, duration)
	return resp, nil
}

func (t *loggingTransport) logRequest(id string, req *http.Request) {
	line := req.Method + " " + req.URL.String()
	if !t.LogHeaders && !t.LogBody {
		t.Logger.Info("Outgoing request", "id", id, "request", line, "content_length", req.ContentLength)
		return
	}

	dump, err := httputil.DumpRequestOut(req, t.LogBody)
	if err != nil {
		t.Logger.Info("Outgoing request (dump failed)", "id", id, "request", line, "error", err)
		return
	}
	t.Logger.Info("Outgoing request", "id", id, "request", line, "details", t.truncate(string(dump)))
}

func (t *loggingTransport) logResponse(id string, req *http.Request, resp *http.Response, duration time.Duration) {
	status := fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	if !t.LogHeaders && !t.LogBody {
		t.Logger.Info("Received response",
			"id", id,
			"response", status,
			"url", req.URL.String(),
			"duration_ms", duration.Milliseconds(),
		)
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "HTTP %s\r\n", resp.Status)
	if t.LogHeaders {
		for k, v := range resp.Header {
			fmt.Fprintf(&b, "%s: %s\r\n", k, strings.Join(v, ", "))
		}
	}
	if t.LogBody && resp.Body != nil {
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			t.Logger.Info("Received response (body read failed)", "id", id, "response", status, "error", err)
			resp.Body = io.NopCloser(bytes.NewReader(nil))
			return
		}
		resp.Body = io.NopCloser(bytes.NewReader(body))
		b.WriteString("\r\n")
		b.Write(body)
	}

	t.Logger.Info("Received response",
		"id", id,
		"response", status,
		"url", req.URL.String(),
		"duration_ms", duration.Milliseconds(),
		"details", t.truncate(b.String()),
	)
}

// truncate keeps the head of a dump, where the request or status line and
// the headers are.
func (t *loggingTransport) truncate(dump string) string {
	if t.MaxBodyLogSize <= 0 || len(dump) <= t.MaxBodyLogSize {
		return dump
	}
	return dump[:t.MaxBodyLogSize] + " [truncated]"
}
