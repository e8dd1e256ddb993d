package client_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/monasticus/mlclient/internal/client"
	"github.com/monasticus/mlclient/pkg/ml"
)

// testPart is one body part of a canned multipart response.
type testPart struct {
	headers map[string]string
	body    string
}

// writeMultipart answers with a multipart/mixed body built from parts.
func writeMultipart(t *testing.T, writer http.ResponseWriter, parts ...testPart) {
	t.Helper()

	var body bytes.Buffer

	mpWriter := multipart.NewWriter(&body)

	for _, part := range parts {
		header := make(textproto.MIMEHeader)
		for key, value := range part.headers {
			header.Set(key, value)
		}

		partWriter, err := mpWriter.CreatePart(header)
		require.NoError(t, err)

		_, err = partWriter.Write([]byte(part.body))
		require.NoError(t, err)
	}

	require.NoError(t, mpWriter.Close())

	writer.Header().Set("Content-Type", "multipart/mixed; boundary="+mpWriter.Boundary())
	writer.WriteHeader(http.StatusOK)
	_, _ = writer.Write(body.Bytes())
}

// newTestClient points a client at a test server handling every request.
func newTestClient(t *testing.T, handler http.HandlerFunc) *client.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	serverURL, err := url.Parse(server.URL)
	require.NoError(t, err)

	port, err := strconv.Atoi(serverURL.Port())
	require.NoError(t, err)

	mlClient, err := client.New(context.Background(), &ml.Config{
		Host:     serverURL.Hostname(),
		Port:     port,
		Username: "admin",
		Password: "admin",
		RetryMax: -1,
	})
	require.NoError(t, err)

	return mlClient
}
