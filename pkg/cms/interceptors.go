package cms

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Call describes one logical CMS call as seen by hooks. Retries of the same
// call share a single Call.
type Call struct {
	Site   string
	Method string
	Path   string
	Query  string
	// Header is sent on every attempt. X-Site-ID and Authorization are
	// stamped afterwards and always win.
	Header http.Header
	Body   []byte
}

// Outcome is the final result of a Call after retries.
type Outcome struct {
	Status   int
	Header   http.Header
	Body     []byte
	Attempts int
	Duration time.Duration
	Err      error
}

// BeforeCall runs once before the first attempt. A non-nil error aborts the
// call without touching the network.
type BeforeCall func(ctx context.Context, call *Call) error

// AfterCall runs once after the final attempt, on success and on failure.
type AfterCall func(ctx context.Context, call *Call, outcome *Outcome) error

// InterceptorChain holds the hooks a client runs around each call. A nil
// chain is valid and does nothing.
type InterceptorChain struct {
	before []BeforeCall
	after  []AfterCall
}

// NewInterceptorChain returns an empty chain.
func NewInterceptorChain() *InterceptorChain {
	return &InterceptorChain{}
}

// Before appends hooks run in order before each call.
func (c *InterceptorChain) Before(hooks ...BeforeCall) *InterceptorChain {
	c.before = append(c.before, hooks...)

	return c
}

// After appends hooks run in order after each call.
func (c *InterceptorChain) After(hooks ...AfterCall) *InterceptorChain {
	c.after = append(c.after, hooks...)

	return c
}

// RunBefore stops at the first failing hook.
func (c *InterceptorChain) RunBefore(ctx context.Context, call *Call) error {
	if c == nil {
		return nil
	}

	for i, hook := range c.before {
		if err := hook(ctx, call); err != nil {
			return fmt.Errorf("before-call hook %d on %s %s: %w", i, call.Method, call.Path, err)
		}
	}

	return nil
}

// RunAfter stops at the first failing hook.
func (c *InterceptorChain) RunAfter(ctx context.Context, call *Call, outcome *Outcome) error {
	if c == nil {
		return nil
	}

	for i, hook := range c.after {
		if err := hook(ctx, call, outcome); err != nil {
			return fmt.Errorf("after-call hook %d on %s %s: %w", i, call.Method, call.Path, err)
		}
	}

	return nil
}

// StaticHeaders adds fixed headers to every call.
func StaticHeaders(headers map[string]string) BeforeCall {
	return func(_ context.Context, call *Call) error {
		if call.Header == nil {
			call.Header = make(http.Header)
		}

		for key, value := range headers {
			call.Header.Set(key, value)
		}

		return nil
	}
}

// LogCalls logs each call at debug level before it is sent.
func LogCalls(logger Logger) BeforeCall {
	return func(_ context.Context, call *Call) error {
		logger.Debug("CMS call", map[string]interface{}{
			"site":   call.Site,
			"method": call.Method,
			"path":   call.Path,
			"query":  call.Query,
		})

		return nil
	}
}

// LogOutcomes logs failed calls at error level and the rest at debug.
func LogOutcomes(logger Logger) AfterCall {
	return func(_ context.Context, call *Call, outcome *Outcome) error {
		fields := map[string]interface{}{
			"site":        call.Site,
			"method":      call.Method,
			"path":        call.Path,
			"status_code": outcome.Status,
			"attempts":    outcome.Attempts,
			"duration_ms": outcome.Duration.Milliseconds(),
		}

		if outcome.Err != nil {
			fields["error"] = outcome.Err.Error()
			logger.Error("CMS call failed", fields)

			return nil
		}

		logger.Debug("CMS call completed", fields)

		return nil
	}
}

// WarnSlowCalls logs a warning for calls slower than threshold, retries
// included.
func WarnSlowCalls(logger Logger, threshold time.Duration) AfterCall {
	return func(_ context.Context, call *Call, outcome *Outcome) error {
		if outcome.Duration < threshold {
			return nil
		}

		logger.Warn("slow CMS call", map[string]interface{}{
			"site":        call.Site,
			"method":      call.Method,
			"path":        call.Path,
			"attempts":    outcome.Attempts,
			"duration_ms": outcome.Duration.Milliseconds(),
		})

		return nil
	}
}
