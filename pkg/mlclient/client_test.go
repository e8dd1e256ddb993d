package mlclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monasticus/mlclient/pkg/ml"
	"github.com/monasticus/mlclient/pkg/mlclient"
)

func TestNew(t *testing.T) {
	t.Parallel()
	t.Run("creates client with defaults", func(t *testing.T) {
		t.Parallel()

		client, err := mlclient.New(context.Background(), &ml.Config{})
		require.NoError(t, err)
		assert.NotNil(t, client)
		assert.NotNil(t, client.Eval())
		assert.NotNil(t, client.Documents())
	})

	t.Run("requires config", func(t *testing.T) {
		t.Parallel()

		_, err := mlclient.New(context.Background(), nil)
		require.ErrorIs(t, err, ml.ErrConfigRequired)
	})

	t.Run("reports every config problem", func(t *testing.T) {
		t.Parallel()

		_, err := mlclient.New(context.Background(), &ml.Config{
			Scheme:   "ftp",
			Port:     70000,
			Username: "admin",
		})
		require.Error(t, err)
		require.ErrorIs(t, err, ml.ErrInvalidScheme)
		require.ErrorIs(t, err, ml.ErrInvalidPort)
		require.ErrorIs(t, err, ml.ErrPasswordRequired)
	})

	t.Run("does not modify the caller's config", func(t *testing.T) {
		t.Parallel()

		config := &ml.Config{}
		_, err := mlclient.New(context.Background(), config)
		require.NoError(t, err)
		assert.Empty(t, config.Host)
		assert.Zero(t, config.Port)
	})
}

func TestConfigFromEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		endpoint string
		want     ml.Config
		wantErr  bool
	}{
		{name: "full URL", endpoint: "https://ml.example.com:8010", want: ml.Config{Scheme: "https", Host: "ml.example.com", Port: 8010}},
		{name: "bare host", endpoint: "localhost", want: ml.Config{Scheme: "http", Host: "localhost"}},
		{name: "host and port", endpoint: "localhost:8000", want: ml.Config{Scheme: "http", Host: "localhost", Port: 8000}},
		{name: "bad port", endpoint: "http://localhost:abc", wantErr: true},
	}

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			config, err := mlclient.ConfigFromEndpoint(testCase.endpoint)
			if testCase.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, testCase.want, *config)
		})
	}
}

func TestNewWithPassword(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		user, password, ok := request.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "admin", user)
		assert.Equal(t, "secret", password)

		writer.Header().Set("Content-Type", "text/plain")
		writer.Header().Set("X-Primitive", "string")
		_, _ = writer.Write([]byte("hello"))
	}))
	defer server.Close()

	client, err := mlclient.NewWithPassword(context.Background(), server.URL, "admin", "secret")
	require.NoError(t, err)

	result, err := client.Eval().Eval(context.Background(), &ml.EvalRequest{XQuery: `"hello"`})
	require.NoError(t, err)
	assert.Equal(t, "hello", result.Interface())
}

func TestNewWithToken(t *testing.T) {
	t.Parallel()

	client, err := mlclient.NewWithToken(context.Background(), "http://localhost:8000", "test-token")
	require.NoError(t, err)
	assert.NotNil(t, client)
}
