// Package gateway wraps HTTP calls to the admin backend and normalizes every
// outcome into an Envelope. No call returns an error or panics on a failed request.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/and161185/newsadmin/internal/metrics"
)

// DefaultTimeout bounds a single call when no other timeout is configured.
const DefaultTimeout = 30 * time.Second

const maxBody = 10 << 20

// Mode selects the encoding of a request body.
type Mode int

const (
	// ModeJSON sends application/json.
	ModeJSON Mode = iota
	// ModeForm sends multipart/form-data.
	ModeForm
)

// Request describes one call.
type Request struct {
	URL    string
	Data   any // nil, *Form or a JSON-encodable value
	Mode   Mode
	NoAuth bool // skip the bearer header (login)
}

// TokenSource yields the current access token. It is consulted on every call.
type TokenSource interface {
	AccessToken() string
}

// Client is the API gateway.
type Client struct {
	hc      *http.Client
	tokens  TokenSource
	log     *zap.Logger
	timeout time.Duration
	lim     *rate.Limiter
	metrics *metrics.Gateway
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.hc = hc } }

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) Option { return func(c *Client) { c.log = l } }

// WithTimeout bounds every call; d <= 0 keeps DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRateLimit throttles outbound calls to rps with the given burst. rps <= 0 disables it.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.lim = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		c.lim = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithMetrics records request metrics.
func WithMetrics(m *metrics.Gateway) Option { return func(c *Client) { c.metrics = m } }

// New constructs a gateway reading bearer tokens from tokens.
func New(tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		hc:      &http.Client{},
		tokens:  tokens,
		log:     zap.NewNop(),
		timeout: DefaultTimeout,
	}
	for _, o := range opts {
		o(c)
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	if c.hc == nil {
		c.hc = &http.Client{}
	}
	return c
}

// Get performs a GET. Request data is ignored.
func (c *Client) Get(ctx context.Context, r Request) Envelope {
	r.Data = nil
	return c.Do(ctx, http.MethodGet, r)
}

// Post performs a POST.
func (c *Client) Post(ctx context.Context, r Request) Envelope {
	return c.Do(ctx, http.MethodPost, r)
}

// Put performs a PUT.
func (c *Client) Put(ctx context.Context, r Request) Envelope {
	return c.Do(ctx, http.MethodPut, r)
}

// Delete performs a DELETE; data is sent only when present.
func (c *Client) Delete(ctx context.Context, r Request) Envelope {
	return c.Do(ctx, http.MethodDelete, r)
}

// Do performs the call and returns its envelope.
func (c *Client) Do(ctx context.Context, method string, r Request) (env Envelope) {
	reqID := newRequestID()
	start := time.Now()
	done := c.metrics.Start(method, resource(r.URL))
	defer func() {
		done(env.Status)
		// only metadata, never bodies or tokens
		c.log.Info("api",
			zap.String("method", method),
			zap.String("url", r.URL),
			zap.Int("status", env.Status),
			zap.Bool("success", env.Success),
			zap.Duration("dur", time.Since(start)),
			zap.String("request_id", reqID),
		)
	}()

	parent := ctx
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if c.lim != nil {
		if err := c.lim.Wait(ctx); err != nil {
			return failure(0, contextMessage(parent, err))
		}
	}

	req, err := c.build(ctx, method, r)
	if err != nil {
		return failure(0, err.Error())
	}
	req.Header.Set("X-Request-ID", reqID)

	resp, err := c.hc.Do(req)
	if err != nil {
		return failure(0, contextMessage(parent, err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return failure(resp.StatusCode, contextMessage(parent, err))
	}
	return decode(resp.StatusCode, raw)
}

func (c *Client) build(ctx context.Context, method string, r Request) (*http.Request, error) {
	var (
		body        io.Reader
		contentType string
	)
	switch data := r.Data.(type) {
	case nil:
	case *Form:
		b, ct, err := data.encode()
		if err != nil {
			return nil, err
		}
		body, contentType = b, ct
	default:
		if r.Mode == ModeForm {
			f, err := flatten(data)
			if err != nil {
				return nil, err
			}
			b, ct, err := f.encode()
			if err != nil {
				return nil, err
			}
			body, contentType = b, ct
			break
		}
		b, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		body, contentType = bytes.NewReader(b), "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, r.URL, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if !r.NoAuth && c.tokens != nil {
		if tok := c.tokens.AccessToken(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	return req, nil
}

// decode turns a received response into an envelope.
// 2xx bodies keep the server's own success flag.
func decode(status int, raw []byte) Envelope {
	if status < 200 || status > 299 {
		msg := messageFrom(raw)
		if msg == "" {
			msg = http.StatusText(status)
		}
		return failure(status, msg)
	}
	var b body
	if err := json.Unmarshal(raw, &b); err != nil {
		return failure(status, "malformed response body")
	}
	if b.Success == nil || !*b.Success {
		msg := b.Message
		if msg == "" {
			msg = b.errorText()
		}
		return Envelope{Status: status, Data: b.Data, Message: orDefault(msg)}
	}
	return Envelope{Success: true, Status: status, Data: b.Data, Message: b.Message}
}

// contextMessage maps context failures to stable messages and keeps
// transport errors otherwise.
func contextMessage(parent context.Context, err error) string {
	switch {
	case errors.Is(parent.Err(), context.Canceled):
		return "request canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	case errors.Is(err, context.Canceled):
		return "request canceled"
	}
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Timeout() {
		return "request timed out"
	}
	return err.Error()
}

func orDefault(msg string) string {
	if msg == "" {
		return defaultMessage
	}
	return msg
}

func newRequestID() string {
	id, err := uuid.NewV4()
	if err != nil {
		return ""
	}
	return id.String()
}

// resource is the metrics label of a URL: its path.
func resource(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "invalid"
	}
	return u.Path
}
