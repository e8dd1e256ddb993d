package ml_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/monasticus/mlclient/pkg/ml"
)

func TestParseServerError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		want        string
		messageCode string
		notFound    bool
		forbidden   bool
	}{
		{
			name:        "json envelope",
			status:      http.StatusNotFound,
			contentType: "application/json",
			body: `{"errorResponse":{"statusCode":404,"status":"Not Found",` +
				`"messageCode":"RESTAPI-NODOCUMENT","message":"Resource or document does not exist"}}`,
			want:        "server error 404: RESTAPI-NODOCUMENT: Resource or document does not exist",
			messageCode: "RESTAPI-NODOCUMENT",
			notFound:    true,
		},
		{
			name:        "message already prefixed by code",
			status:      http.StatusForbidden,
			contentType: "application/json; charset=utf-8",
			body:        `{"errorResponse":{"messageCode":"SEC-PRIV","message":"SEC-PRIV: Need privilege"}}`,
			want:        "server error 403: SEC-PRIV: Need privilege",
			messageCode: "SEC-PRIV",
			forbidden:   true,
		},
		{
			name:        "plain text",
			status:      http.StatusInternalServerError,
			contentType: "text/plain",
			body:        "boom\n",
			want:        "server error 500: boom",
		},
		{
			name:        "bare json error object",
			status:      http.StatusNotFound,
			contentType: "application/json",
			body:        `{"messageCode":"RESTAPI-NODOCUMENT","message":"Resource or document does not exist"}`,
			want:        "server error 404: RESTAPI-NODOCUMENT: Resource or document does not exist",
			messageCode: "RESTAPI-NODOCUMENT",
			notFound:    true,
		},
		{
			name:        "json without known fields",
			status:      http.StatusBadRequest,
			contentType: "application/json",
			body:        `{"other":true}`,
			want:        `server error 400: {"other":true}`,
		},
		{
			name:   "empty body",
			status: http.StatusBadGateway,
			want:   "server error 502",
		},
	}

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			headers := http.Header{}
			if testCase.contentType != "" {
				headers.Set("Content-Type", testCase.contentType)
			}

			serverErr := ml.ParseServerError(&ml.Response{
				StatusCode: testCase.status,
				Headers:    headers,
				Body:       []byte(testCase.body),
			})

			assert.Equal(t, testCase.status, serverErr.StatusCode)
			assert.Equal(t, testCase.want, serverErr.Error())
			assert.Equal(t, testCase.messageCode, serverErr.MessageCode)

			wrapped := fmt.Errorf("request failed: %w", serverErr)
			assert.True(t, ml.IsServerError(wrapped))
			assert.Equal(t, testCase.notFound, ml.IsNotFound(wrapped))
			assert.Equal(t, testCase.forbidden, ml.IsForbidden(wrapped))
			assert.False(t, ml.IsUnauthorized(wrapped))
		})
	}
}

func TestErrorPredicates_NonServerErrors(t *testing.T) {
	t.Parallel()

	assert.True(t, ml.IsNotFound(fmt.Errorf("%w: /a.xml", ml.ErrDocumentNotFound)))
	assert.False(t, ml.IsServerError(ml.ErrDocumentNotFound))
	assert.False(t, ml.IsNotFound(ml.ErrInvalidResponse))
	assert.False(t, ml.IsForbidden(nil))
}

func TestDecodeError_TruncatesBody(t *testing.T) {
	t.Parallel()

	err := &ml.DecodeError{Tag: ml.TagInteger, Body: []byte(strings.Repeat("9", 200))}

	assert.Contains(t, err.Error(), "...")
	assert.Contains(t, err.Error(), "as integer")
	assert.Less(t, len(err.Error()), 150)
}

func TestMalformedMultipartResponseError(t *testing.T) {
	t.Parallel()

	err := &ml.MalformedMultipartResponseError{Reason: "missing boundary"}
	assert.Equal(t, "malformed multipart response: missing boundary", err.Error())
	assert.NoError(t, err.Unwrap())
}
