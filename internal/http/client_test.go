package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cmshttp "github.com/fivetwenty-io/sitecms-client/internal/http"
	"github.com/fivetwenty-io/sitecms-client/pkg/cms"
)

// MockLogger for testing.
type MockLogger struct {
	mu   sync.Mutex
	logs []map[string]interface{}
}

func (l *MockLogger) record(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.logs = append(l.logs, map[string]interface{}{"level": level, "msg": msg, "fields": fields})
}

func (l *MockLogger) Debug(msg string, fields map[string]interface{}) { l.record("debug", msg, fields) }
func (l *MockLogger) Info(msg string, fields map[string]interface{}) { l.record("info", msg, fields) }
func (l *MockLogger) Warn(msg string, fields map[string]interface{}) { l.record("warn", msg, fields) }
func (l *MockLogger) Error(msg string, fields map[string]interface{}) { l.record("error", msg, fields) }

func (l *MockLogger) Count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	count := 0

	for _, entry := range l.logs {
		if entry["level"] == level {
			count++
		}
	}

	return count
}

// backoffRecorder collects the waits chosen before each retry.
type backoffRecorder struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (r *backoffRecorder) record(_ int, wait time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.waits = append(r.waits, wait)
}

func (r *backoffRecorder) Waits() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]time.Duration(nil), r.waits...)
}

func fastPolicy(recorder *backoffRecorder) *cmshttp.RetryPolicy {
	policy := cmshttp.DefaultRetryPolicy()
	policy.Base = time.Millisecond

	if recorder != nil {
		policy.OnBackoff = recorder.record
	}

	return policy
}

func TestClient_Headers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		opts       []cmshttp.Option
		wantAuth   string
		wantAgent  string
		wantCustom string
	}{
		{
			name:      "bearer token",
			opts:      []cmshttp.Option{cmshttp.WithToken("secret")},
			wantAuth:  "Bearer secret",
			wantAgent: "sitecms-client/1.0",
		},
		{
			name:      "no token sends no authorization",
			wantAgent: "sitecms-client/1.0",
		},
		{
			name: "custom agent and interceptor header",
			opts: []cmshttp.Option{
				cmshttp.WithUserAgent("storefront/2.0"),
				cmshttp.WithInterceptors(cms.NewInterceptorChain().Before(
					cms.StaticHeaders(map[string]string{"X-Request-Source": "tests"}),
				)),
			},
			wantAgent:  "storefront/2.0",
			wantCustom: "tests",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				assert.Equal(t, "demo-site", request.Header.Get("X-Site-ID"))
				assert.Equal(t, testCase.wantAuth, request.Header.Get("Authorization"))
				assert.Equal(t, testCase.wantAgent, request.Header.Get("User-Agent"))
				assert.Equal(t, "application/json", request.Header.Get("Accept"))
				assert.Equal(t, testCase.wantCustom, request.Header.Get("X-Request-Source"))

				_, _ = writer.Write([]byte(`{"data":[]}`))
			}))
			defer server.Close()

			client := cmshttp.NewClient(server.URL+"/", "demo-site", testCase.opts...)

			resp, err := client.Get(context.Background(), "/api/blogs", "")
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.JSONEq(t, `{"data":[]}`, string(resp.Body))
			assert.Equal(t, 1, resp.Attempts)
		})
	}
}

func TestClient_QueryAndBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch request.Method {
		case http.MethodGet:
			assert.Equal(t, "/api/blogs", request.URL.Path)
			assert.Equal(t, "publishedAt:desc", request.URL.Query().Get("sort"))
			assert.Equal(t, "5", request.URL.Query().Get("limit"))
		case http.MethodPost:
			assert.Equal(t, "application/json", request.Header.Get("Content-Type"))

			body, err := io.ReadAll(request.Body)
			assert.NoError(t, err)
			assert.JSONEq(t, `{"data":{"title":"Hello"}}`, string(body))
		}

		_, _ = writer.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := cmshttp.NewClient(server.URL, "demo-site")
	ctx := context.Background()

	_, err := client.Get(ctx, "/api/blogs", "?sort=publishedAt%3Adesc&limit=5")
	require.NoError(t, err)

	_, err = client.Post(ctx, "/api/blogs", map[string]interface{}{"data": map[string]string{"title": "Hello"}})
	require.NoError(t, err)
}

func TestClient_ErrorResponses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		status      int
		body        string
		wantStatus  int
		wantMessage string
		wantName    string
		wantDetails map[string]any
	}{
		{
			name:        "structured error body",
			status:      http.StatusBadRequest,
			body:        `{"error":{"status":400,"name":"ValidationError","message":"title is required","details":{"field":"title"}}}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "title is required",
			wantName:    "ValidationError",
			wantDetails: map[string]any{"field": "title"},
		},
		{
			name:        "plain body falls back to status message",
			status:      http.StatusNotFound,
			body:        `Not Found`,
			wantStatus:  http.StatusNotFound,
			wantMessage: "request failed with status code 404",
		},
		{
			name:        "unauthorized",
			status:      http.StatusUnauthorized,
			body:        `{"error":{"message":"Missing or invalid credentials"}}`,
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Missing or invalid credentials",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			var calls atomic.Int32

			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
				calls.Add(1)
				writer.WriteHeader(testCase.status)
				_, _ = writer.Write([]byte(testCase.body))
			}))
			defer server.Close()

			client := cmshttp.NewClient(server.URL, "demo-site", cmshttp.WithRetryPolicy(fastPolicy(nil)))

			resp, err := client.Get(context.Background(), "/api/products/1", "")
			require.Error(t, err)
			assert.Nil(t, resp)

			clientErr, ok := cms.AsClientError(err)
			require.True(t, ok)
			assert.Equal(t, testCase.wantStatus, clientErr.Status)
			assert.Equal(t, testCase.wantMessage, clientErr.Message)
			assert.Equal(t, testCase.wantName, clientErr.Name)
			assert.Equal(t, testCase.wantDetails, clientErr.Details)
			assert.Equal(t, cms.ErrorKindClient, clientErr.Kind)
			assert.Equal(t, int32(1), calls.Load(), "4xx responses are never retried")
		})
	}
}

func TestClient_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) <= 2 {
			writer.WriteHeader(http.StatusServiceUnavailable)

			return
		}

		_, _ = writer.Write([]byte(`{"data":{"id":1}}`))
	}))
	defer server.Close()

	recorder := &backoffRecorder{}
	logger := &MockLogger{}
	client := cmshttp.NewClient(server.URL, "demo-site",
		cmshttp.WithRetryPolicy(fastPolicy(recorder)),
		cmshttp.WithLogger(logger),
	)

	resp, err := client.Get(context.Background(), "/api/blogs/1", "")
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Attempts)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []time.Duration{2 * time.Millisecond, 4 * time.Millisecond}, recorder.Waits())
	assert.Equal(t, 2, logger.Count("warn"))
}

func TestClient_RetriesExhausted(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		writer.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	recorder := &backoffRecorder{}
	logger := &MockLogger{}
	client := cmshttp.NewClient(server.URL, "demo-site",
		cmshttp.WithRetryPolicy(fastPolicy(recorder)),
		cmshttp.WithLogger(logger),
	)

	_, err := client.Get(context.Background(), "/api/blogs", "")
	require.Error(t, err)

	clientErr, ok := cms.AsClientError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, clientErr.Status)
	assert.Equal(t, "request failed with status code 502", clientErr.Message)
	assert.True(t, clientErr.Retryable())
	assert.Equal(t, int32(4), calls.Load())
	assert.Equal(t, []time.Duration{2 * time.Millisecond, 4 * time.Millisecond, 8 * time.Millisecond}, recorder.Waits())
	assert.Equal(t, 1, logger.Count("error"))
}

func TestClient_RetriesConnectionReset(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			hijacker, ok := writer.(http.Hijacker)
			if !assert.True(t, ok) {
				return
			}

			conn, _, err := hijacker.Hijack()
			if !assert.NoError(t, err) {
				return
			}

			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetLinger(0)
			}

			_ = conn.Close()

			return
		}

		_, _ = writer.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	recorder := &backoffRecorder{}
	client := cmshttp.NewClient(server.URL, "demo-site", cmshttp.WithRetryPolicy(fastPolicy(recorder)))

	resp, err := client.Get(context.Background(), "/api/pages", "")
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Attempts)
	assert.Equal(t, []time.Duration{2 * time.Millisecond}, recorder.Waits())
}

func TestClient_RetriesTimeout(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if calls.Add(1) == 1 {
			select {
			case <-request.Context().Done():
			case <-time.After(2 * time.Second):
			}

			return
		}

		_, _ = writer.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	client := cmshttp.NewClient(server.URL, "demo-site",
		cmshttp.WithRetryPolicy(fastPolicy(nil)),
		cmshttp.WithTimeout(100*time.Millisecond),
	)

	resp, err := client.Get(context.Background(), "/api/pages", "")
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Attempts)
}

func TestClient_TransportFailureDefaultsTo500(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	recorder := &backoffRecorder{}
	client := cmshttp.NewClient(url, "demo-site", cmshttp.WithRetryPolicy(fastPolicy(recorder)))

	_, err := client.Get(context.Background(), "/api/blogs", "")
	require.Error(t, err)

	clientErr, ok := cms.AsClientError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, clientErr.Status)
	assert.NotEmpty(t, clientErr.Message)
	assert.Empty(t, recorder.Waits(), "refused connections are not retried")
}

func TestClient_ContextCancelsBackoff(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := cmshttp.NewClient(server.URL, "demo-site")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	started := time.Now()
	_, err := client.Get(ctx, "/api/blogs", "")

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, time.Since(started), time.Second, "the 2s backoff must not be waited out")
}

func TestClient_MutationRetries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		opts      []cmshttp.Option
		wantCalls int32
	}{
		{name: "mutations retried by default", wantCalls: 2},
		{name: "mutation retries disabled", opts: []cmshttp.Option{cmshttp.WithRetryMutations(false)}, wantCalls: 1},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			var calls atomic.Int32

			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
				if calls.Add(1) == 1 {
					writer.WriteHeader(http.StatusInternalServerError)

					return
				}

				_, _ = writer.Write([]byte(`{"data":{"id":1}}`))
			}))
			defer server.Close()

			opts := append([]cmshttp.Option{cmshttp.WithRetryPolicy(fastPolicy(nil))}, testCase.opts...)
			client := cmshttp.NewClient(server.URL, "demo-site", opts...)

			_, _ = client.Post(context.Background(), "/api/products", map[string]string{"name": "Mug"})
			assert.Equal(t, testCase.wantCalls, calls.Load())
		})
	}
}

func TestClient_IdempotencyKeyStableAcrossRetries(t *testing.T) {
	t.Parallel()

	var (
		mu   sync.Mutex
		keys []string
	)

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		mu.Lock()
		keys = append(keys, request.Header.Get("Idempotency-Key"))
		attempt := len(keys)
		mu.Unlock()

		if attempt == 1 {
			writer.WriteHeader(http.StatusServiceUnavailable)

			return
		}

		_, _ = writer.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := cmshttp.NewClient(server.URL, "demo-site",
		cmshttp.WithRetryPolicy(fastPolicy(nil)),
		cmshttp.WithIdempotencyKeys(true),
	)

	_, err := client.Post(context.Background(), "/api/bookings", map[string]string{"status": "pending"})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()

	require.Len(t, keys, 2)
	assert.NotEmpty(t, keys[0])
	assert.Equal(t, keys[0], keys[1])
}

func TestClient_AfterHookSeesOutcome(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	var seen *cms.Outcome

	chain := cms.NewInterceptorChain().After(func(_ context.Context, call *cms.Call, outcome *cms.Outcome) error {
		assert.Equal(t, "demo-site", call.Site)

		seen = outcome

		return nil
	})
	client := cmshttp.NewClient(server.URL, "demo-site", cmshttp.WithInterceptors(chain))

	_, err := client.Get(context.Background(), "/api/pages/9", "")
	require.Error(t, err)
	require.NotNil(t, seen)
	assert.Equal(t, http.StatusNotFound, seen.Status)
	assert.Equal(t, 1, seen.Attempts)
	assert.Equal(t, err, seen.Err)
}

func TestClient_Metrics(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			writer.WriteHeader(http.StatusServiceUnavailable)

			return
		}

		_ = json.NewEncoder(writer).Encode(map[string]interface{}{"data": []interface{}{}})
	}))
	defer server.Close()

	metrics := cms.NewMetricsRecorder(prometheus.NewRegistry())
	client := cmshttp.NewClient(server.URL, "demo-site",
		cmshttp.WithRetryPolicy(fastPolicy(nil)),
		cmshttp.WithMetrics(metrics),
	)

	_, err := client.Get(context.Background(), "/api/blogs/12/related", "")
	require.NoError(t, err)

	families, err := metrics.Gatherer().Gather()
	require.NoError(t, err)

	byName := map[string]*dto.MetricFamily{}
	for _, family := range families {
		byName[family.GetName()] = family
	}

	requests := byName["sitecms_client_requests_total"]
	require.NotNil(t, requests)

	statuses := map[string]float64{}

	for _, metric := range requests.GetMetric() {
		labels := map[string]string{}
		for _, label := range metric.GetLabel() {
			labels[label.GetName()] = label.GetValue()
		}

		assert.Equal(t, "/api/blogs/:id/related", labels["endpoint"])
		statuses[labels["status_code"]] = metric.GetCounter().GetValue()
	}

	assert.InDelta(t, 1, statuses["503"], 0)
	assert.InDelta(t, 1, statuses["200"], 0)

	retries := byName["sitecms_client_retries_total"]
	require.NotNil(t, retries)
	assert.InDelta(t, 1, retries.GetMetric()[0].GetCounter().GetValue(), 0)
}

func TestClient_RateLimit(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		_, _ = writer.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := cmshttp.NewClient(server.URL, "demo-site", cmshttp.WithRateLimit(20, 1))

	started := time.Now()

	for range 3 {
		_, err := client.Get(context.Background(), "/api/tags", "")
		require.NoError(t, err)
	}

	assert.GreaterOrEqual(t, time.Since(started), 90*time.Millisecond)
}
