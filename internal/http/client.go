// Package http is the CMS transport: it stamps the site and auth headers,
// runs requests under the retry policy and turns failures into
// *cms.ClientError values.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fivetwenty-io/sitecms-client/internal/constants"
	"github.com/fivetwenty-io/sitecms-client/pkg/cms"
	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

// Request is one logical call.
type Request struct {
	Method string
	Path   string
	// Query is an encoded query string, with or without the leading "?".
	Query   string
	Body    interface{}
	Headers http.Header
}

// Response is a successful response with its body read.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	// Attempts is how many HTTP attempts the call took.
	Attempts int
}

// Client issues requests for one site.
type Client struct {
	baseURL         string
	siteID          string
	token           string
	userAgent       string
	timeout         time.Duration
	policy          *RetryPolicy
	retryMutations  bool
	idempotencyKeys bool
	limiter         *rate.Limiter
	baseTransport   http.RoundTripper
	interceptors    *cms.InterceptorChain
	metrics         *cms.MetricsRecorder
	logger          cms.Logger
	debug           bool
	httpClient      *retryablehttp.Client
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets the bearer token.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithLogger sets the logger.
func WithLogger(logger cms.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDebug enables per-request debug logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithTimeout bounds each HTTP attempt.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithRetryPolicy replaces the retry policy.
func WithRetryPolicy(policy *RetryPolicy) Option {
	return func(c *Client) {
		if policy != nil {
			c.policy = policy
		}
	}
}

// WithRetryMutations controls whether POST, PUT, PATCH and DELETE are retried.
func WithRetryMutations(enabled bool) Option {
	return func(c *Client) {
		c.retryMutations = enabled
	}
}

// WithIdempotencyKeys stamps a fresh Idempotency-Key on every mutation.
func WithIdempotencyKeys(enabled bool) Option {
	return func(c *Client) {
		c.idempotencyKeys = enabled
	}
}

// WithRateLimit caps attempts per second across the client.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			return
		}

		if burst <= 0 {
			burst = constants.DefaultRateBurst
		}

		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithTransport sets the underlying round tripper.
func WithTransport(transport http.RoundTripper) Option {
	return func(c *Client) {
		c.baseTransport = transport
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithInterceptors sets the interceptor chain.
func WithInterceptors(chain *cms.InterceptorChain) Option {
	return func(c *Client) {
		c.interceptors = chain
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(metrics *cms.MetricsRecorder) Option {
	return func(c *Client) {
		c.metrics = metrics
	}
}

// NewClient creates a transport for baseURL scoped to siteID.
func NewClient(baseURL, siteID string, opts ...Option) *Client {
	client := &Client{
		baseURL:        strings.TrimSuffix(baseURL, "/"),
		siteID:         siteID,
		userAgent:      constants.DefaultUserAgent,
		timeout:        constants.DefaultHTTPTimeout,
		policy:         DefaultRetryPolicy(),
		retryMutations: true,
		logger:         cms.NoOpLogger{},
	}

	for _, opt := range opts {
		opt(client)
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = client.policy.MaxRetries
	retryClient.RetryWaitMin = client.policy.Delay(1)
	retryClient.RetryWaitMax = client.policy.Delay(constants.MaxBackoffExponent)
	retryClient.Backoff = client.policy.Backoff
	retryClient.CheckRetry = client.checkRetry
	retryClient.PrepareRetry = client.prepareRetry
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = nil

	if client.debug {
		retryClient.Logger = &leveledLogger{logger: client.logger}
	}

	transport := client.baseTransport
	if transport == nil {
		transport = retryClient.HTTPClient.Transport
	}

	if client.limiter != nil {
		transport = &rateLimitedTransport{base: transport, limiter: client.limiter}
	}

	retryClient.HTTPClient.Transport = transport
	retryClient.HTTPClient.Timeout = client.timeout

	client.httpClient = retryClient

	return client
}

// SiteID returns the site every request is scoped to.
func (c *Client) SiteID() string {
	return c.siteID
}

type callStateKey struct{}

type callState struct {
	method   string
	path     string
	attempts int
	noRetry  bool
}

func stateFrom(ctx context.Context) *callState {
	state, _ := ctx.Value(callStateKey{}).(*callState)

	return state
}

func (c *Client) checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	state := stateFrom(ctx)
	if state != nil {
		state.attempts++

		status := 0
		if resp != nil {
			status = resp.StatusCode
		}

		c.metrics.ObserveAttempt(c.siteID, state.method, state.path, status)
	}

	retry, checkErr := c.policy.ShouldRetry(ctx, resp, err)
	if state != nil && state.noRetry {
		return false, checkErr
	}

	if retry && state != nil {
		fields := map[string]interface{}{
			"method":  state.method,
			"path":    state.path,
			"attempt": state.attempts,
		}
		if resp != nil {
			fields["status_code"] = resp.StatusCode
		}

		if err != nil {
			fields["error"] = err.Error()
		}

		c.logger.Warn("CMS request failed, retrying", fields)
	}

	return retry, checkErr
}

func (c *Client) prepareRetry(req *http.Request) error {
	c.metrics.ObserveRetry(c.siteID, req.Method)

	return nil
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

// Do performs req under the retry policy. A non-2xx final response is
// returned as *cms.ClientError.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	started := time.Now()

	call := &cms.Call{
		Site:   c.siteID,
		Method: req.Method,
		Path:   req.Path,
		Query:  strings.TrimPrefix(req.Query, "?"),
		Header: req.Headers.Clone(),
	}
	if call.Header == nil {
		call.Header = make(http.Header)
	}

	var body []byte

	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}

		body = encoded
		call.Body = body
	}

	err := c.interceptors.RunBefore(ctx, call)
	if err != nil {
		return nil, err
	}

	state := &callState{
		method:  req.Method,
		path:    req.Path,
		noRetry: isMutation(req.Method) && !c.retryMutations,
	}
	ctx = context.WithValue(ctx, callStateKey{}, state)

	httpReq, err := c.newRequest(ctx, req, call.Header, body)
	if err != nil {
		return nil, err
	}

	if c.debug {
		c.logger.Debug("CMS request", map[string]interface{}{
			"method": req.Method,
			"url":    httpReq.URL.String(),
		})
	}

	resp, callErr := c.finish(c.httpClient.Do(httpReq))
	if resp != nil {
		resp.Attempts = state.attempts
	}

	c.metrics.ObserveCall(c.siteID, req.Method, req.Path, time.Since(started))

	outcome := &cms.Outcome{Attempts: state.attempts, Duration: time.Since(started), Err: callErr}
	if resp != nil {
		outcome.Status = resp.StatusCode
		outcome.Header = resp.Headers
		outcome.Body = resp.Body
	} else if clientErr, ok := cms.AsClientError(callErr); ok {
		outcome.Status = clientErr.Status
	}

	err = c.interceptors.RunAfter(ctx, call, outcome)
	if err != nil && callErr == nil {
		return nil, err
	}

	if callErr != nil {
		if state.attempts > 1 {
			c.logger.Error("CMS request failed after retries", map[string]interface{}{
				"method":   req.Method,
				"path":     req.Path,
				"attempts": state.attempts,
				"error":    callErr.Error(),
			})
		}

		return nil, callErr
	}

	return resp, nil
}

func (c *Client) newRequest(ctx context.Context, req *Request, headers http.Header, body []byte) (*retryablehttp.Request, error) {
	target := c.baseURL + req.Path
	if query := strings.TrimPrefix(req.Query, "?"); query != "" {
		target += "?" + query
	}

	var rawBody interface{}
	if body != nil {
		rawBody = body
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, target, rawBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	for key, values := range headers {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}

	httpReq.Header.Set(constants.HeaderAccept, constants.ContentTypeJSON)
	httpReq.Header.Set(constants.HeaderUserAgent, c.userAgent)
	httpReq.Header.Set(constants.HeaderSiteID, c.siteID)

	if body != nil {
		httpReq.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	}

	if c.token != "" {
		httpReq.Header.Set(constants.HeaderAuthorization, "Bearer "+c.token)
	}

	if c.idempotencyKeys && isMutation(req.Method) && httpReq.Header.Get(constants.HeaderIdempotencyKey) == "" {
		httpReq.Header.Set(constants.HeaderIdempotencyKey, uuid.NewString())
	}

	return httpReq, nil
}

func (c *Client) finish(resp *http.Response, err error) (*Response, error) {
	if err != nil {
		if resp != nil {
			_ = resp.Body.Close()
		}

		return nil, &cms.ClientError{
			Status:  http.StatusInternalServerError,
			Message: transportMessage(err),
			Kind:    ClassifyError(err),
			Err:     err,
		}
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &cms.ClientError{
			Status:  http.StatusInternalServerError,
			Message: transportMessage(err),
			Kind:    ClassifyError(err),
			Err:     err,
		}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		fallback := fmt.Sprintf("request failed with status code %d", resp.StatusCode)

		if c.debug {
			c.logger.Debug("CMS error body", map[string]interface{}{
				"status_code": resp.StatusCode,
				"body":        truncate(data, constants.MaxErrorBodyLogSize),
			})
		}

		return nil, cms.ParseErrorResponse(resp.StatusCode, data, fallback)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       data,
	}, nil
}

func transportMessage(err error) string {
	if err == nil || err.Error() == "" {
		return constants.UnknownErrorMessage
	}

	return err.Error()
}

func truncate(data []byte, limit int) string {
	if len(data) <= limit {
		return string(data)
	}

	return string(data[:limit]) + "..."
}

// Get issues a GET.
func (c *Client) Get(ctx context.Context, path, query string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put issues a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

// Delete issues a DELETE, with a body when one is given.
func (c *Client) Delete(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path, Body: body})
}

type rateLimitedTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	err := t.limiter.Wait(req.Context())
	if err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	return t.base.RoundTrip(req)
}

// leveledLogger adapts cms.Logger to retryablehttp.LeveledLogger.
type leveledLogger struct {
	logger cms.Logger
}

func (l *leveledLogger) fields(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}

	return fields
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, l.fields(keysAndValues))
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, l.fields(keysAndValues))
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, l.fields(keysAndValues))
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, l.fields(keysAndValues))
}

var _ retryablehttp.LeveledLogger = (*leveledLogger)(nil)
