package cms_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/sitecms-client/pkg/cms"
)

func TestClientError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *cms.ClientError
		expected string
	}{
		{
			name:     "with name",
			err:      &cms.ClientError{Status: 400, Name: "ValidationError", Message: "title is required"},
			expected: "ValidationError: title is required (status: 400)",
		},
		{
			name:     "without name",
			err:      &cms.ClientError{Status: 500, Message: "connection reset"},
			expected: "connection reset (status: 500)",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, testCase.expected, testCase.err.Error())
		})
	}
}

func TestParseErrorResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		status      int
		body        string
		fallback    string
		wantStatus  int
		wantName    string
		wantMessage string
		wantDetails map[string]any
		wantKind    cms.ErrorKind
	}{
		{
			name:        "structured body",
			status:      http.StatusBadRequest,
			fallback:    "Bad Request",
			body:        `{"data":null,"error":{"status":400,"name":"ValidationError","message":"Invalid slug","details":{"field":"slug"}}}`,
			wantStatus:  400,
			wantName:    "ValidationError",
			wantMessage: "Invalid slug",
			wantDetails: map[string]any{"field": "slug"},
			wantKind:    cms.ErrorKindClient,
		},
		{
			name:        "plain text body",
			status:      http.StatusBadGateway,
			body:        "<html>bad gateway</html>",
			fallback:    "Bad Gateway",
			wantStatus:  502,
			wantMessage: "Bad Gateway",
			wantKind:    cms.ErrorKindServer,
		},
		{
			name:        "error without message keeps fallback",
			status:      http.StatusForbidden,
			body:        `{"error":{"status":403,"name":"ForbiddenError"}}`,
			fallback:    "Forbidden",
			wantStatus:  403,
			wantName:    "ForbiddenError",
			wantMessage: "Forbidden",
			wantKind:    cms.ErrorKindClient,
		},
		{
			name:        "missing status defaults to 500",
			status:      0,
			fallback:    "connection refused",
			wantStatus:  500,
			wantMessage: "connection refused",
			wantKind:    cms.ErrorKindUnknown,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			clientErr := cms.ParseErrorResponse(testCase.status, []byte(testCase.body), testCase.fallback)

			assert.Equal(t, testCase.wantStatus, clientErr.Status)
			assert.Equal(t, testCase.wantName, clientErr.Name)
			assert.Equal(t, testCase.wantMessage, clientErr.Message)
			assert.Equal(t, testCase.wantDetails, clientErr.Details)
			assert.Equal(t, testCase.wantKind, clientErr.Kind)
		})
	}
}

func TestClientError_Retryable(t *testing.T) {
	t.Parallel()

	assert.True(t, (&cms.ClientError{Kind: cms.ErrorKindNetwork}).Retryable())
	assert.True(t, (&cms.ClientError{Kind: cms.ErrorKindTimeout}).Retryable())
	assert.True(t, (&cms.ClientError{Kind: cms.ErrorKindServer}).Retryable())
	assert.False(t, (&cms.ClientError{Kind: cms.ErrorKindClient}).Retryable())
	assert.False(t, (&cms.ClientError{Kind: cms.ErrorKindUnknown}).Retryable())
}

func TestErrorHelpers(t *testing.T) {
	t.Parallel()

	notFound := fmt.Errorf("get blog: %w", cms.ParseErrorResponse(404, nil, "Not Found"))
	unauthorized := cms.ParseErrorResponse(401, nil, "Unauthorized")
	server := cms.ParseErrorResponse(503, nil, "Service Unavailable")
	plain := errors.New("boom")

	assert.True(t, cms.IsNotFound(notFound))
	assert.True(t, cms.IsClientError(notFound))
	assert.False(t, cms.IsServerError(notFound))

	assert.True(t, cms.IsUnauthorized(unauthorized))
	assert.False(t, cms.IsNotFound(unauthorized))

	assert.True(t, cms.IsServerError(server))
	assert.False(t, cms.IsClientError(server))

	assert.False(t, cms.IsNotFound(plain))
	assert.False(t, cms.IsServerError(plain))

	clientErr, ok := cms.AsClientError(notFound)
	require.True(t, ok)
	assert.Equal(t, 404, clientErr.Status)
}

func TestClientError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("read: connection reset by peer")
	clientErr := &cms.ClientError{Status: 500, Message: cause.Error(), Kind: cms.ErrorKindNetwork, Err: cause}

	require.ErrorIs(t, clientErr, cause)
}
