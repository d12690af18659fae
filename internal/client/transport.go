package client

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"

	internalhttp "github.com/fivetwenty-io/sitecms-client/internal/http"
	"github.com/fivetwenty-io/sitecms-client/pkg/cms"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/fivetwenty-io/sitecms-client"

// Transport owns the response cache for one site. Reads go through the cache,
// mutations clear it. Nothing outside Transport touches the cache.
type Transport struct {
	httpClient   *internalhttp.Client
	siteID       string
	cache        cms.Cache
	cacheEnabled bool
	logger       cms.Logger
	metrics      *cms.MetricsRecorder
	tracer       trace.Tracer

	hits   atomic.Int64
	misses atomic.Int64
	sets   atomic.Int64
	clears atomic.Int64
}

// TransportOption configures a Transport.
type TransportOption func(*Transport)

// WithTransportLogger sets the logger.
func WithTransportLogger(logger cms.Logger) TransportOption {
	return func(t *Transport) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithTransportMetrics sets the metrics recorder.
func WithTransportMetrics(metrics *cms.MetricsRecorder) TransportOption {
	return func(t *Transport) {
		t.metrics = metrics
	}
}

// NewTransport wraps httpClient. A nil cache disables caching.
func NewTransport(httpClient *internalhttp.Client, cache cms.Cache, opts ...TransportOption) *Transport {
	transport := &Transport{
		httpClient:   httpClient,
		siteID:       httpClient.SiteID(),
		cache:        cache,
		cacheEnabled: cache != nil,
		logger:       cms.NoOpLogger{},
		tracer:       otel.Tracer(tracerName),
	}

	if cache == nil {
		transport.cache = cms.NewNoOpCache()
	}

	for _, opt := range opts {
		opt(transport)
	}

	return transport
}

// CacheKey is site:endpoint:params, params in their canonical JSON form.
func (t *Transport) CacheKey(endpoint string, params *cms.QueryParams) string {
	return t.siteID + ":" + endpoint + ":" + params.CacheKeyPart()
}

// Read fetches endpoint. With useCache it serves and stores cached bodies;
// without it the cache is not consulted or written.
func (t *Transport) Read(ctx context.Context, endpoint string, params *cms.QueryParams, useCache bool) ([]byte, error) {
	ctx, span := t.tracer.Start(ctx, "cms.read", trace.WithAttributes(
		attribute.String("cms.site", t.siteID),
		attribute.String("cms.endpoint", endpoint),
		attribute.Bool("cms.cache.used", useCache && t.cacheEnabled),
	))
	defer span.End()

	cacheable := useCache && t.cacheEnabled
	key := ""

	if cacheable {
		key = t.CacheKey(endpoint, params)

		entry, err := t.cache.Get(ctx, key)

		switch {
		case err == nil:
			t.hits.Add(1)
			t.metrics.ObserveCache(t.siteID, cms.CacheHit)
			span.SetAttributes(attribute.Bool("cms.cache.hit", true))

			return entry.Data, nil
		case errors.Is(err, cms.ErrCacheMiss):
			t.misses.Add(1)
			t.metrics.ObserveCache(t.siteID, cms.CacheMiss)
		default:
			t.misses.Add(1)
			t.metrics.ObserveCache(t.siteID, cms.CacheError)
			t.logger.Warn("cache lookup failed", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
	}

	resp, err := t.httpClient.Get(ctx, endpoint, params.Encode())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, err
	}

	if cacheable {
		err := t.cache.Set(ctx, key, &cms.CacheEntry{Data: resp.Body})
		if err != nil {
			t.metrics.ObserveCache(t.siteID, cms.CacheError)
			t.logger.Warn("cache store failed", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		} else {
			t.sets.Add(1)
			t.metrics.ObserveCache(t.siteID, cms.CacheStored)
		}
	}

	return resp.Body, nil
}

type envelope struct {
	Data interface{} `json:"data"`
}

// Mutate sends body wrapped as {"data": body} and clears the whole cache on
// success. A nil body sends no payload.
func (t *Transport) Mutate(ctx context.Context, method, endpoint string, body interface{}) ([]byte, error) {
	ctx, span := t.tracer.Start(ctx, "cms.mutate", trace.WithAttributes(
		attribute.String("cms.site", t.siteID),
		attribute.String("cms.endpoint", endpoint),
		attribute.String("http.request.method", method),
	))
	defer span.End()

	req := &internalhttp.Request{Method: method, Path: endpoint}
	if body != nil {
		req.Body = envelope{Data: body}
	}

	resp, err := t.httpClient.Do(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, err
	}

	t.clearAfterWrite(ctx, method, endpoint)

	return resp.Body, nil
}

func (t *Transport) clearAfterWrite(ctx context.Context, method, endpoint string) {
	if !t.cacheEnabled {
		return
	}

	err := t.cache.Clear(ctx)
	if err != nil {
		t.metrics.ObserveCache(t.siteID, cms.CacheError)
		t.logger.Error("cache clear after write failed", map[string]interface{}{
			"method":   method,
			"endpoint": endpoint,
			"error":    err.Error(),
		})

		return
	}

	t.clears.Add(1)
	t.metrics.ObserveCache(t.siteID, cms.CacheCleared)
}

// Post mutates with POST.
func (t *Transport) Post(ctx context.Context, endpoint string, body interface{}) ([]byte, error) {
	return t.Mutate(ctx, http.MethodPost, endpoint, body)
}

// Put mutates with PUT.
func (t *Transport) Put(ctx context.Context, endpoint string, body interface{}) ([]byte, error) {
	return t.Mutate(ctx, http.MethodPut, endpoint, body)
}

// Delete mutates with DELETE.
func (t *Transport) Delete(ctx context.Context, endpoint string) ([]byte, error) {
	return t.Mutate(ctx, http.MethodDelete, endpoint, nil)
}

// ClearCache empties the cache.
func (t *Transport) ClearCache(ctx context.Context) error {
	err := t.cache.Clear(ctx)
	if err != nil {
		return err
	}

	t.clears.Add(1)

	return nil
}

// InvalidateCache drops entries whose key contains pattern.
func (t *Transport) InvalidateCache(ctx context.Context, pattern string) (int, error) {
	return t.cache.DeleteMatching(ctx, pattern)
}

// CacheStats returns a snapshot of cache counters.
func (t *Transport) CacheStats() cms.CacheStats {
	stats := cms.CacheStats{
		Hits:   t.hits.Load(),
		Misses: t.misses.Load(),
		Sets:   t.sets.Load(),
		Clears: t.clears.Load(),
	}

	if counter, ok := t.cache.(interface{ Evictions() int64 }); ok {
		stats.Evictions = counter.Evictions()
	}

	return stats
}
