// Package upstream is the single choke point for requests to the backend
// API. Every call goes through Client, which resolves the target URL,
// attaches the session's bearer token, classifies failures, and clears the
// session when the upstream rejects its credential. Individual services never
// duplicate any of this.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"admin-gateway/internal/session"
	id "admin-gateway/pkg/domain"
	dErrors "admin-gateway/pkg/domainerrors"
	"admin-gateway/pkg/requestcontext"
)

const maxErrorBodyBytes = 64 << 10

// Resolver turns an API path into a fully-qualified upstream URL.
type Resolver func(path string) string

// BaseURL builds a Resolver that joins paths onto a fixed base URL.
func BaseURL(base string) Resolver {
	trimmed := strings.TrimRight(base, "/")
	return func(path string) string {
		return trimmed + "/" + strings.TrimLeft(path, "/")
	}
}

// Recorder receives request observations. *metrics.Metrics satisfies it.
type Recorder interface {
	ObserveUpstreamRequest(method string, status int, duration time.Duration)
	IncSessionExpired()
}

// AuthFailureHook is invoked after a 401 clears a session, so the caller can
// audit the expiry without this package depending on the audit pipeline.
type AuthFailureHook func(ctx context.Context, sessionID id.SessionID)

// Client issues authenticated JSON requests against the upstream API.
type Client struct {
	resolve    Resolver
	http       *http.Client
	sessions   *session.Manager
	logger     *slog.Logger
	recorder   Recorder
	onAuthFail AuthFailureHook
	tracer     trace.Tracer
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func WithRecorder(r Recorder) Option {
	return func(c *Client) { c.recorder = r }
}

func WithAuthFailureHook(hook AuthFailureHook) Option {
	return func(c *Client) { c.onAuthFail = hook }
}

func NewClient(resolve Resolver, sessions *session.Manager, opts ...Option) *Client {
	c := &Client{
		resolve:  resolve,
		http:     &http.Client{Timeout: 15 * time.Second},
		sessions: sessions,
		logger:   slog.Default(),
		tracer:   otel.Tracer("admin-gateway/upstream"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type callOptions struct {
	token         string
	tokenExplicit bool
	headers       http.Header
}

// CallOption adjusts a single request.
type CallOption func(*callOptions)

// WithToken overrides the session-derived bearer token for one call (e.g.
// login, which has no session yet). An empty explicit token means the request
// goes out unauthenticated.
func WithToken(token string) CallOption {
	return func(o *callOptions) {
		o.token = token
		o.tokenExplicit = true
	}
}

// WithHeader adds a request header. Caller-supplied headers are applied last,
// so an explicit Content-Type wins over the JSON default.
func WithHeader(key, value string) CallOption {
	return func(o *callOptions) {
		if o.headers == nil {
			o.headers = http.Header{}
		}
		o.headers.Set(key, value)
	}
}

// Do issues a request and returns the raw JSON payload of a 2xx response.
// Failures are always coded: session_expired after a 401 (with the session
// cleared as a side effect), upstream_error for other statuses and non-JSON
// success bodies, unavailable for transport errors.
func (c *Client) Do(ctx context.Context, method, path string, body any, opts ...CallOption) ([]byte, error) {
	var co callOptions
	for _, opt := range opts {
		opt(&co)
	}

	ctx, span := c.tracer.Start(ctx, "upstream "+method+" "+path, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.path", path),
	)

	token, sessionID, err := c.resolveToken(ctx, co)
	if err != nil {
		span.SetStatus(otelcodes.Error, "credential resolution failed")
		return nil, err
	}

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not encode request body")
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path), reqBody)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not build upstream request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for key, values := range co.headers {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if c.recorder != nil {
			c.recorder.ObserveUpstreamRequest(method, 0, time.Since(start))
		}
		span.SetStatus(otelcodes.Error, "transport failure")
		c.logger.WarnContext(ctx, "upstream request failed",
			"method", method,
			"path", path,
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "upstream is unreachable")
	}
	defer resp.Body.Close()

	if c.recorder != nil {
		c.recorder.ObserveUpstreamRequest(method, resp.StatusCode, time.Since(start))
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode == http.StatusUnauthorized {
		span.SetStatus(otelcodes.Error, "unauthorized")
		return nil, c.handleUnauthorized(ctx, sessionID, path)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		span.SetStatus(otelcodes.Error, "upstream error status")
		// Error bodies are only mined for a message, so a cap is safe here.
		// Success bodies are read in full: catalogs can be large and a
		// truncated payload would decode as garbage.
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeUpstream, "could not read upstream response")
		}
		return nil, statusError(resp.StatusCode, body)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUpstream, "could not read upstream response")
	}

	if len(payload) > 0 && !isJSONContentType(resp.Header.Get("Content-Type")) {
		span.SetStatus(otelcodes.Error, "unexpected content type")
		return nil, dErrors.Newf(dErrors.CodeUpstream,
			"upstream returned %q instead of JSON; the base URL is probably misconfigured",
			resp.Header.Get("Content-Type"))
	}

	return payload, nil
}

// resolveToken picks the bearer token for a call: an explicit per-call token
// wins, otherwise the session bound to the request context supplies it. No
// session and no explicit token means the call goes out unauthenticated.
func (c *Client) resolveToken(ctx context.Context, co callOptions) (string, id.SessionID, error) {
	if co.tokenExplicit {
		return co.token, id.SessionID{}, nil
	}
	sessionID := requestcontext.SessionID(ctx)
	if sessionID.IsNil() {
		return "", id.SessionID{}, nil
	}
	sess, err := c.sessions.Get(ctx, sessionID)
	if err != nil {
		return "", id.SessionID{}, err
	}
	return sess.Token, sessionID, nil
}

// handleUnauthorized clears the session exactly once and reports the expiry.
// Deleting an already-deleted session is a no-op, so concurrent 401s from
// parallel requests cannot race.
func (c *Client) handleUnauthorized(ctx context.Context, sessionID id.SessionID, path string) error {
	if !sessionID.IsNil() {
		if err := c.sessions.Delete(ctx, sessionID); err != nil {
			c.logger.ErrorContext(ctx, "could not clear session after upstream 401",
				"session_id", sessionID.String(),
				"error", err,
			)
		}
		if c.recorder != nil {
			c.recorder.IncSessionExpired()
		}
		if c.onAuthFail != nil {
			c.onAuthFail(ctx, sessionID)
		}
		c.logger.InfoContext(ctx, "session cleared after upstream 401",
			"session_id", sessionID.String(),
			"path", path,
		)
		return dErrors.New(dErrors.CodeSessionExpired, "session rejected by upstream")
	}
	return dErrors.New(dErrors.CodeUnauthorized, "upstream rejected the request credentials")
}

// statusError builds the user-facing error for a non-2xx, non-401 response.
// HTML bodies (the usual symptom of a misconfigured base URL hitting a
// catch-all page) are never surfaced verbatim.
func statusError(status int, body []byte) error {
	code := dErrors.CodeUpstream
	switch status {
	case http.StatusForbidden:
		code = dErrors.CodeForbidden
	case http.StatusNotFound:
		code = dErrors.CodeNotFound
	case http.StatusTooManyRequests:
		code = dErrors.CodeRateLimited
	}
	return dErrors.Newf(code, "upstream status %d: %s", status, extractMessage(status, body))
}

func extractMessage(status int, body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return http.StatusText(status)
	}
	if isHTML(trimmed) {
		return "upstream returned an HTML error page"
	}
	var structured struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(trimmed, &structured); err == nil {
		switch {
		case structured.Detail != "":
			return structured.Detail
		case structured.Message != "":
			return structured.Message
		case structured.Error != "":
			return structured.Error
		}
	}
	text := string(trimmed)
	if len(text) > 200 {
		text = text[:200] + "…"
	}
	return text
}

func isHTML(body []byte) bool {
	lower := bytes.ToLower(body)
	return bytes.HasPrefix(lower, []byte("<!doctype")) || bytes.HasPrefix(lower, []byte("<html"))
}

func isJSONContentType(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
