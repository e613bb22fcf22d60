// Copyright 2026 The GroSnap Authors
// SPDX-License-Identifier: Apache-2.0

// Package httputils provides utility functions for working with HTTP.
package httputils

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"os"
	"strings"
	"time"
)

/////////////////////////////////////////
/// RoundTrippers

// redactedQueryParams hold credentials, as the Google APIs take the key in the URL.
var redactedQueryParams = []string{"key", "api_key", "access_token"}

var redactedHeaders = []string{"Authorization", "Cookie", "Set-Cookie", "X-Goog-Api-Key"}

const redacted = "REDACTED"

// traceLimits caps what a single trace may print.
type traceLimits struct {
	lines int
	width int
}

var defaultTraceLimits = traceLimits{lines: 2048, width: 512}

// format prefixes every line with the direction marker and truncates the dump.
func (l traceLimits) format(dump []byte, marker rune) string {
	lines := strings.Split(strings.TrimRight(string(dump), "\r\n"), "\n")

	truncated := len(lines) > l.lines
	if truncated {
		lines = lines[:l.lines]
	}

	var sb strings.Builder

	for _, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		if len(line) > l.width {
			line = line[:l.width] + "…"
		}

		sb.WriteRune(marker)
		sb.WriteByte(' ')
		sb.WriteString(line)
		sb.WriteByte('\n')
	}

	if truncated {
		sb.WriteString("…\n")
	}

	return sb.String()
}

// TracingRoundTripper writes every request and response to Writer with
// credentials masked. A nil Writer disables tracing.
type TracingRoundTripper struct {
	Transport http.RoundTripper
	Writer    io.Writer
	DumpBody  bool
}

// redactedCopy returns a shallow copy of req safe to print. When the body is
// traced, it is buffered so both requests can read it.
func (t *TracingRoundTripper) redactedCopy(req *http.Request) (*http.Request, error) {
	out := req.Clone(req.Context())
	out.Body = nil

	if t.DumpBody && req.Body != nil && req.Body != http.NoBody {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}

		req.Body.Close()
		req.Body = io.NopCloser(bytes.NewReader(body))
		out.Body = io.NopCloser(bytes.NewReader(body))
	}

	u := *req.URL

	q := u.Query()
	for _, name := range redactedQueryParams {
		if q.Has(name) {
			q.Set(name, redacted)
		}
	}

	u.RawQuery = q.Encode()
	out.URL = &u

	for _, name := range redactedHeaders {
		if out.Header.Get(name) != "" {
			out.Header.Set(name, redacted)
		}
	}

	return out, nil
}

func (t *TracingRoundTripper) traceRequest(req *http.Request) error {
	printable, err := t.redactedCopy(req)
	if err != nil {
		return fmt.Errorf("tracing HTTP request: %w", err)
	}

	dump, err := httputil.DumpRequestOut(printable, printable.Body != nil)
	if err != nil {
		return fmt.Errorf("tracing HTTP request: %w", err)
	}

	_, err = io.WriteString(t.Writer, defaultTraceLimits.format(dump, '>'))

	return err
}

func (t *TracingRoundTripper) traceResponse(resp *http.Response, elapsed time.Duration) error {
	header := resp.Header
	resp.Header = header.Clone()

	for _, name := range redactedHeaders {
		if resp.Header.Get(name) != "" {
			resp.Header.Set(name, redacted)
		}
	}

	dump, err := httputil.DumpResponse(resp, t.DumpBody)
	resp.Header = header

	if err != nil {
		return fmt.Errorf("tracing HTTP response: %w", err)
	}

	_, err = fmt.Fprintf(t.Writer, "< %s %s [%v]\n%s", resp.Request.Method, resp.Request.URL.Path,
		elapsed.Round(time.Millisecond), defaultTraceLimits.format(dump, '<'))

	return err
}

// RoundTrip implements the http.RoundTripper interface.
func (t *TracingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Writer == nil {
		return t.Transport.RoundTrip(req)
	}

	if err := t.traceRequest(req); err != nil {
		return nil, err
	}

	start := time.Now()

	resp, err := t.Transport.RoundTrip(req)
	if err != nil {
		fmt.Fprintf(t.Writer, "< %s %s failed: %v\n", req.Method, req.URL.Path, err)

		return nil, err
	}

	if resp.Request == nil {
		resp.Request = req
	}

	if err := t.traceResponse(resp, time.Since(start)); err != nil {
		return nil, err
	}

	return resp, nil
}

// DefaultHeadersRoundTripper fills in headers the request does not already
// carry.
type DefaultHeadersRoundTripper struct {
	Transport http.RoundTripper
	Headers   http.Header
}

// RoundTrip implements the http.RoundTripper interface.
func (t *DefaultHeadersRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	var missing []string

	for name := range t.Headers {
		if req.Header.Get(name) == "" {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		// RoundTrippers must not modify the caller's request.
		req = req.Clone(req.Context())
		for _, name := range missing {
			req.Header[name] = t.Headers.Values(name)
		}
	}

	return t.Transport.RoundTrip(req)
}

/////////////////////////////////////////
/// Clients

// ClientOptions configures NewClient.
type ClientOptions struct {
	// UserAgent is the User-Agent header to use in HTTP requests
	UserAgent string

	// Timeout bounds a whole request, including reading the body
	Timeout time.Duration

	// Enables light tracing of HTTP requests and responses
	EnableHTTPTrace bool

	// Enables full HTTP body tracing
	EnableHTTPBodyTrace bool

	// TraceWriter receives the traces, defaults to stderr
	TraceWriter io.Writer
}

// DefaultUserAgent identifies outbound requests when no agent is configured.
const DefaultUserAgent = "grosnap/unknown"

// NewClient builds an http.Client that never follows redirects. Tracing sits
// under the default headers so the traces show what is actually sent.
func NewClient(options ClientOptions) *http.Client {
	var httpLogWriter io.Writer
	if options.EnableHTTPTrace || options.EnableHTTPBodyTrace {
		httpLogWriter = options.TraceWriter
		if httpLogWriter == nil {
			httpLogWriter = os.Stderr
		}
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   4,
		MaxConnsPerHost:       4,
		IdleConnTimeout:       30 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
	}

	tracingTransport := &TracingRoundTripper{
		Writer:    httpLogWriter,
		DumpBody:  options.EnableHTTPBodyTrace,
		Transport: transport,
	}

	userAgent := DefaultUserAgent
	if options.UserAgent != "" {
		userAgent = options.UserAgent
	}

	headerTransport := &DefaultHeadersRoundTripper{
		Headers: http.Header{
			"User-Agent": {userAgent},
			"Accept":     {"application/json, */*"},
		},
		Transport: tracingTransport,
	}

	timeout := options.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
		Transport: headerTransport,
	}
}
