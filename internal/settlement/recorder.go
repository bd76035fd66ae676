// Package settlement records settlements with the backend endpoint.
package settlement

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/rpc"
)

const (
	// DefaultTimeout bounds a single submission.
	DefaultTimeout = 5 * time.Second

	// FailureMessage is reported for every transport-level failure.
	FailureMessage = "Failed to record payment"

	// LocalMessage accompanies the pseudo-success when no endpoint is configured.
	LocalMessage = "Payment recorded locally"

	maxErrorBody = 64 << 10
)

// ErrNoToken is returned by token sources that have no session to read from.
var ErrNoToken = errors.New("no csrf token available")

// TokenSource supplies the CSRF token. It is consulted on every submission.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func(ctx context.Context) (string, error)

func (f TokenFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// Recorder submits SettlementRequests. The zero endpoint means no backend is
// wired; Record then acknowledges locally without touching the network.
type Recorder struct {
	endpoint *url.URL
	tokens   TokenSource
	client   *connect.Client[models.SettlementRequest, models.SettlementResult]
	timeout  time.Duration
	logger   *slog.Logger
}

// Option configures a Recorder.
type Option func(*options)

type options struct {
	endpoint   string
	httpClient connect.HTTPClient
	timeout    time.Duration
	logger     *slog.Logger
}

// WithEndpoint sets the settlement endpoint URL. An empty string leaves the
// endpoint absent.
func WithEndpoint(endpoint string) Option {
	return func(o *options) { o.endpoint = endpoint }
}

// WithHTTPClient sets the HTTP client used for submissions.
func WithHTTPClient(c connect.HTTPClient) Option {
	return func(o *options) { o.httpClient = c }
}

// WithTimeout overrides DefaultTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// NewRecorder creates a Recorder. It fails only when the endpoint is set but
// is not an absolute URL.
func NewRecorder(tokens TokenSource, opts ...Option) (*Recorder, error) {
	o := options{
		httpClient: http.DefaultClient,
		timeout:    DefaultTimeout,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	r := &Recorder{
		tokens:  tokens,
		timeout: o.timeout,
		logger:  o.logger,
	}
	if o.endpoint == "" {
		return r, nil
	}

	u, err := url.Parse(o.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid settlement endpoint: %w", err)
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("settlement endpoint must be absolute: %q", o.endpoint)
	}
	r.endpoint = u
	r.client = connect.NewClient[models.SettlementRequest, models.SettlementResult](
		bodyCapture{next: o.httpClient},
		u.String(),
		rpc.WithJSON(),
	)
	return r, nil
}

// Configured reports whether a backend endpoint is wired.
func (r *Recorder) Configured() bool {
	return r.endpoint != nil
}

// Endpoint returns the configured endpoint, or "" when absent.
func (r *Recorder) Endpoint() string {
	if r.endpoint == nil {
		return ""
	}
	return r.endpoint.String()
}

// Record submits req once. A SettlementResult body is returned as sent,
// whatever the HTTP status. It never returns an error: transport failures,
// missing tokens and undecodable responses come back as an unsuccessful
// result carrying FailureMessage.
func (r *Recorder) Record(ctx context.Context, req models.SettlementRequest) models.SettlementResult {
	if r.endpoint == nil {
		r.logger.Info("No settlement endpoint configured, recording locally",
			"payee", req.Payee,
			"method", req.Method,
		)
		return models.SettlementResult{Success: true, Message: LocalMessage, Local: true}
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	token, err := r.tokens.Token(ctx)
	if err != nil {
		r.logger.Warn("Failed to read csrf token", "error", err)
		return failure()
	}

	creq := connect.NewRequest(&req)
	creq.Header().Set(rpc.CSRFHeader, token)

	var rejected errorBody
	start := time.Now()
	resp, err := r.client.CallUnary(context.WithValue(ctx, errorBodyKey{}, &rejected), creq)
	if err != nil {
		if res, ok := rejected.result(); ok {
			r.logger.Info("Settlement rejected by endpoint",
				"payee", req.Payee,
				"method", req.Method,
				"status", rejected.status,
				"error", res.Error,
				"duration_ms", time.Since(start).Milliseconds(),
			)
			return res
		}
		r.logger.Warn("Settlement submission failed",
			"endpoint", r.endpoint.String(),
			"payee", req.Payee,
			"method", req.Method,
			"code", connect.CodeOf(err).String(),
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return failure()
	}

	res := *resp.Msg
	res.Local = false
	r.logger.Info("Settlement submitted",
		"payee", req.Payee,
		"method", req.Method,
		"success", res.Success,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res
}

func failure() models.SettlementResult {
	return models.SettlementResult{Success: false, Error: FailureMessage}
}

type errorBodyKey struct{}

// errorBody holds the body of a non-2xx response to a submission.
type errorBody struct {
	status int
	data   []byte
}

// result decodes the body as a SettlementResult. Bodies without a
// "success" field, such as Connect error envelopes, do not qualify.
func (b *errorBody) result() (models.SettlementResult, bool) {
	if len(b.data) == 0 {
		return models.SettlementResult{}, false
	}
	var shape struct {
		Success *bool `json:"success"`
	}
	if err := json.Unmarshal(b.data, &shape); err != nil || shape.Success == nil {
		return models.SettlementResult{}, false
	}
	var res models.SettlementResult
	if err := json.Unmarshal(b.data, &res); err != nil {
		return models.SettlementResult{}, false
	}
	return res, true
}

// bodyCapture copies non-2xx response bodies into the errorBody carried by
// the request context, then hands the response on to Connect unchanged.
type bodyCapture struct {
	next connect.HTTPClient
}

func (c bodyCapture) Do(req *http.Request) (*http.Response, error) {
	resp, err := c.next.Do(req)
	if err != nil || resp.StatusCode < 300 {
		return resp, err
	}
	sink, ok := req.Context().Value(errorBodyKey{}).(*errorBody)
	if !ok {
		return resp, nil
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(data))
	sink.status = resp.StatusCode
	sink.data = data
	return resp, nil
}
