package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/sitecms-client/pkg/cms"
)

const testSiteID = "demo-site"

// recordedRequest is what the fake CMS saw.
type recordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// fakeCMS wraps httptest.Server and records every request.
type fakeCMS struct {
	*httptest.Server

	mu       sync.Mutex
	requests []recordedRequest
}

func newFakeCMS(t *testing.T, handler http.HandlerFunc) *fakeCMS {
	t.Helper()

	fake := &fakeCMS{}
	fake.Server = httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		body, _ := io.ReadAll(request.Body)

		fake.mu.Lock()
		fake.requests = append(fake.requests, recordedRequest{
			Method: request.Method,
			Path:   request.URL.Path,
			Query:  request.URL.Query(),
			Header: request.Header.Clone(),
			Body:   body,
		})
		fake.mu.Unlock()

		handler(writer, request)
	}))
	t.Cleanup(fake.Close)

	return fake
}

func (f *fakeCMS) Requests() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]recordedRequest(nil), f.requests...)
}

func (f *fakeCMS) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.requests)
}

func (f *fakeCMS) Last(t *testing.T) recordedRequest {
	t.Helper()

	requests := f.Requests()
	require.NotEmpty(t, requests)

	return requests[len(requests)-1]
}

// writeJSON encodes payload with the given status.
func writeJSON(writer http.ResponseWriter, status int, payload interface{}) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)

	if payload != nil {
		_ = json.NewEncoder(writer).Encode(payload)
	}
}

// notFound writes the CMS error body for a missing record.
func notFound(writer http.ResponseWriter) {
	writeJSON(writer, http.StatusNotFound, map[string]interface{}{
		"error": map[string]interface{}{
			"status":  404,
			"name":    "NotFoundError",
			"message": "Not Found",
		},
	})
}

// NewTestClient builds a client against baseURL with millisecond backoff.
func NewTestClient(t *testing.T, baseURL string, configure ...func(*cms.Config)) *Client {
	t.Helper()

	config := &cms.Config{
		BaseURL:     baseURL,
		SiteID:      testSiteID,
		Token:       "test-token",
		BackoffBase: time.Millisecond,
	}

	for _, fn := range configure {
		fn(config)
	}

	client, err := New(context.Background(), config)
	require.NoError(t, err)

	t.Cleanup(func() { _ = client.Close() })

	return client
}

// TestGetOperation is a Ref lookup case shared by the content resources.
type TestGetOperation struct {
	Name          string
	Ref           cms.Ref
	ExpectedPath  string
	ExpectedSlug  string
	Respond       func(http.ResponseWriter)
	WantNil       bool
	WantErrStatus int
}

// RunGetTests checks id/slug dispatch and not-found handling for one resource.
func RunGetTests[T any](t *testing.T, tests []TestGetOperation, getFunc func(*Client) func(context.Context, cms.Ref) (*T, error)) {
	t.Helper()

	for _, testCase := range tests {
		t.Run(testCase.Name, func(t *testing.T) {
			t.Parallel()

			server := newFakeCMS(t, func(writer http.ResponseWriter, _ *http.Request) {
				testCase.Respond(writer)
			})

			client := NewTestClient(t, server.URL)
			result, err := getFunc(client)(context.Background(), testCase.Ref)

			last := server.Last(t)
			require.Equal(t, http.MethodGet, last.Method)
			require.Equal(t, testCase.ExpectedPath, last.Path)

			if testCase.ExpectedSlug != "" {
				require.JSONEq(t, `{"slug":{"$eq":"`+testCase.ExpectedSlug+`"}}`, last.Query.Get("filters"))
			}

			if testCase.WantErrStatus != 0 {
				require.Error(t, err)

				clientErr, ok := cms.AsClientError(err)
				require.True(t, ok)
				require.Equal(t, testCase.WantErrStatus, clientErr.Status)
				require.Nil(t, result)

				return
			}

			require.NoError(t, err)

			if testCase.WantNil {
				require.Nil(t, result)
			} else {
				require.NotNil(t, result)
			}
		})
	}
}
