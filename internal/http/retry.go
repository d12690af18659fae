package http

import (
	"context"
	"errors"
	"io"
	"math"
	"math/rand/v2"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/fivetwenty-io/sitecms-client/internal/constants"
	"github.com/fivetwenty-io/sitecms-client/pkg/cms"
)

// RetryPolicy decides which failures are retried and how long to wait. The
// delay before retry n (n >= 1) is Base * 2^n, optionally jittered.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	Base       time.Duration
	// Jitter spreads each delay uniformly by up to this fraction.
	Jitter float64
	// OnBackoff is called with the retry number and the wait before it.
	OnBackoff func(retry int, wait time.Duration)

	random func() float64
}

// DefaultRetryPolicy returns 3 retries with 2s, 4s, 8s delays.
func DefaultRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxRetries: constants.DefaultRetryMax,
		Base:       constants.DefaultBackoffBase,
	}
}

// Delay returns the unjittered wait before retry n.
func (p *RetryPolicy) Delay(retry int) time.Duration {
	if retry < 1 {
		retry = 1
	}

	if retry > constants.MaxBackoffExponent {
		retry = constants.MaxBackoffExponent
	}

	return p.Base * time.Duration(1<<retry)
}

func (p *RetryPolicy) jittered(wait time.Duration) time.Duration {
	if p.Jitter <= 0 {
		return wait
	}

	random := p.random
	if random == nil {
		random = rand.Float64
	}

	spread := math.Min(p.Jitter, 1) * (2*random() - 1)

	return time.Duration(float64(wait) * (1 + spread))
}

// Backoff matches retryablehttp.Backoff. attemptNum is zero for the first retry.
func (p *RetryPolicy) Backoff(_, _ time.Duration, attemptNum int, _ *http.Response) time.Duration {
	retry := attemptNum + 1
	wait := p.jittered(p.Delay(retry))

	if p.OnBackoff != nil {
		p.OnBackoff(retry, wait)
	}

	return wait
}

// ShouldRetry retries connection resets, timeouts and 5xx responses. 4xx
// responses and other transport failures are returned as they are.
func (p *RetryPolicy) ShouldRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	if err != nil {
		kind := ClassifyError(err)

		return kind == cms.ErrorKindNetwork || kind == cms.ErrorKindTimeout, nil
	}

	if resp != nil && resp.StatusCode >= http.StatusInternalServerError {
		return true, nil
	}

	return false, nil
}

// ClassifyError maps a transport error to an ErrorKind. Only resets and
// timeouts are classified as retryable kinds.
func ClassifyError(err error) cms.ErrorKind {
	if err == nil {
		return cms.ErrorKindUnknown
	}

	if errors.Is(err, syscall.ETIMEDOUT) {
		return cms.ErrorKindTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return cms.ErrorKindTimeout
	}

	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return cms.ErrorKindNetwork
	}

	return cms.ErrorKindUnknown
}
