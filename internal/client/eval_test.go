package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monasticus/mlclient/pkg/ml"
)

func TestEvalClient_Eval(t *testing.T) {
	t.Parallel()

	t.Run("decodes every result in order", func(t *testing.T) {
		t.Parallel()

		mlClient := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "POST", request.Method)
			assert.Equal(t, "/v1/eval", request.URL.Path)
			assert.Equal(t, "application/x-www-form-urlencoded", request.Header.Get("Content-Type"))

			user, password, ok := request.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "admin", user)
			assert.Equal(t, "admin", password)

			require.NoError(t, request.ParseForm())
			assert.Equal(t, `(1, "x", fn:true())`, request.PostForm.Get("xquery"))
			assert.Empty(t, request.PostForm.Get("javascript"))

			var vars map[string]any
			require.NoError(t, json.Unmarshal([]byte(request.PostForm.Get("vars")), &vars))
			assert.Equal(t, "v", vars["k"])

			writeMultipart(t, writer,
				testPart{headers: map[string]string{"Content-Type": "text/plain", "X-Primitive": "integer"}, body: "1"},
				testPart{headers: map[string]string{"Content-Type": "text/plain", "X-Primitive": "string"}, body: "x"},
				testPart{headers: map[string]string{"Content-Type": "text/plain", "X-Primitive": "boolean"}, body: "true"},
			)
		})

		result, err := mlClient.Eval().Eval(context.Background(), &ml.EvalRequest{
			XQuery:    `(1, "x", fn:true())`,
			Variables: map[string]any{"k": "v"},
		})
		require.NoError(t, err)
		require.True(t, result.IsList())
		assert.Equal(t, []any{int64(1), "x", true}, result.Interface())
	})

	t.Run("single result with headers", func(t *testing.T) {
		t.Parallel()

		mlClient := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
			require.NoError(t, request.ParseForm())
			assert.Equal(t, "1 + 1", request.PostForm.Get("javascript"))
			assert.Equal(t, "Other", request.PostForm.Get("database"))

			writeMultipart(t, writer,
				testPart{headers: map[string]string{"Content-Type": "text/plain", "X-Primitive": "integer"}, body: "2"},
			)
		})

		result, err := mlClient.Eval().Eval(context.Background(), &ml.EvalRequest{
			JavaScript:  "1 + 1",
			Database:    "Other",
			WithHeaders: true,
		})
		require.NoError(t, err)

		value, ok := result.Single()
		require.True(t, ok)

		number, ok := value.Int()
		require.True(t, ok)
		assert.Equal(t, int64(2), number)

		require.Len(t, result.Headers(), 1)
		assert.Equal(t, "integer", result.Headers()[0].Get("X-Primitive"))
	})

	t.Run("server error", func(t *testing.T) {
		t.Parallel()

		mlClient := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
			writer.Header().Set("Content-Type", "application/json")
			writer.WriteHeader(http.StatusInternalServerError)
			_, _ = writer.Write([]byte(`{"errorResponse":{"statusCode":500,"status":"Internal Server Error",` +
				`"messageCode":"XDMP-UNDFUN","message":"XDMP-UNDFUN: (err:XPST0017) Undefined function"}}`))
		})

		_, err := mlClient.Eval().Eval(context.Background(), &ml.EvalRequest{XQuery: "fn:nope()"})
		require.Error(t, err)

		serverErr := &ml.ServerError{}
		require.True(t, errors.As(err, &serverErr))
		assert.Equal(t, 500, serverErr.StatusCode)
		assert.Equal(t, "XDMP-UNDFUN", serverErr.MessageCode)
	})

	t.Run("requires exactly one language", func(t *testing.T) {
		t.Parallel()

		mlClient := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
			t.Error("no request expected")
		})

		_, err := mlClient.Eval().Eval(context.Background(), &ml.EvalRequest{})
		require.ErrorIs(t, err, ml.ErrCodeRequired)

		_, err = mlClient.Eval().Eval(context.Background(), &ml.EvalRequest{XQuery: "1", JavaScript: "1"})
		require.ErrorIs(t, err, ml.ErrCodeRequired)
	})
}
