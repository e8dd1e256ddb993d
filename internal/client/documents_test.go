package client_test

import (
	"context"
	"mime"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monasticus/mlclient/pkg/ml"
)

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestDocumentsClient_Get(t *testing.T) {
	t.Parallel()

	t.Run("content with collections", func(t *testing.T) {
		t.Parallel()

		mlClient := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "GET", request.Method)
			assert.Equal(t, "/v1/documents", request.URL.Path)
			assert.Equal(t, []string{"/a.xml"}, request.URL.Query()["uri"])
			assert.Equal(t, []string{"content", "collections"}, request.URL.Query()["category"])
			assert.Equal(t, "json", request.URL.Query().Get("format"))
			assert.Equal(t, "multipart/mixed", request.Header.Get("Accept"))

			writeMultipart(t, writer,
				testPart{
					headers: map[string]string{
						"Content-Type":        "application/json",
						"Content-Disposition": "attachment; filename=/a.xml; category=collections; format=json",
					},
					body: `{"collections":["c1"]}`,
				},
				testPart{
					headers: map[string]string{
						"Content-Type":        "application/xml",
						"Content-Disposition": "attachment; filename=/a.xml; category=content; format=xml",
					},
					body: `<r/>`,
				},
			)
		})

		document, err := mlClient.Documents().Get(context.Background(), "/a.xml", &ml.DocumentsGetOptions{
			Categories: []ml.Category{ml.CategoryContent, ml.CategoryCollections},
		})
		require.NoError(t, err)

		xmlDoc, ok := document.(*ml.XMLDocument)
		require.True(t, ok)
		assert.Equal(t, "/a.xml", xmlDoc.URI())
		assert.Equal(t, "r", xmlDoc.Root.Root().Tag)
		require.NotNil(t, xmlDoc.Metadata())
		assert.Equal(t, []string{"c1"}, xmlDoc.Metadata().Collections)
	})

	t.Run("raw content", func(t *testing.T) {
		t.Parallel()

		mlClient := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
			assert.Empty(t, request.URL.Query().Get("format"))

			writeMultipart(t, writer, testPart{
				headers: map[string]string{
					"Content-Type":        "application/json",
					"Content-Disposition": "attachment; filename=/b.json; format=json",
				},
				body: `{"a":1}`,
			})
		})

		document, err := mlClient.Documents().Get(context.Background(), "/b.json", &ml.DocumentsGetOptions{Raw: true})
		require.NoError(t, err)

		raw, ok := document.(*ml.RawDocument)
		require.True(t, ok)
		assert.Equal(t, `{"a":1}`, string(raw.Data))
		assert.Equal(t, ml.FormatJSON, raw.Format())
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		mlClient := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
			writer.Header().Set("Content-Type", "application/json")
			writer.WriteHeader(http.StatusNotFound)
			_, _ = writer.Write([]byte(`{"errorResponse":{"statusCode":404,"status":"Not Found",` +
				`"messageCode":"RESTAPI-NODOCUMENT","message":"Resource or document does not exist"}}`))
		})

		_, err := mlClient.Documents().Get(context.Background(), "/missing.xml", nil)
		require.Error(t, err)
		assert.True(t, ml.IsNotFound(err))
	})

	t.Run("invalid category", func(t *testing.T) {
		t.Parallel()

		mlClient := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
			t.Error("no request expected")
		})

		_, err := mlClient.Documents().Get(context.Background(), "/a.xml", &ml.DocumentsGetOptions{
			Categories: []ml.Category{"bogus"},
		})
		require.ErrorIs(t, err, ml.ErrInvalidCategory)
	})
}

func TestDocumentsClient_GetMany(t *testing.T) {
	t.Parallel()

	mlClient := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, []string{"/a.json", "/b.txt", "/missing"}, request.URL.Query()["uri"])

		writeMultipart(t, writer,
			testPart{
				headers: map[string]string{
					"Content-Type":        "application/json",
					"Content-Disposition": "attachment; filename=/a.json; format=json",
				},
				body: `{"n":1}`,
			},
			testPart{
				headers: map[string]string{
					"Content-Type":        "text/plain",
					"Content-Disposition": "attachment; filename=/b.txt; format=text",
				},
				body: "hello",
			},
		)
	})

	documents, err := mlClient.Documents().GetMany(context.Background(), []string{"/a.json", "/b.txt", "/missing"}, nil)
	require.NoError(t, err)
	require.Len(t, documents, 2)

	jsonDoc, ok := documents[0].(*ml.JSONDocument)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"n": float64(1)}, jsonDoc.Value)

	textDoc, ok := documents[1].(*ml.TextDocument)
	require.True(t, ok)
	assert.Equal(t, "hello", textDoc.Text)

	_, err = mlClient.Documents().GetMany(context.Background(), nil, nil)
	require.ErrorIs(t, err, ml.ErrNoURIs)
}

func TestDocumentsClient_Write(t *testing.T) {
	t.Parallel()

	mlClient := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "POST", request.Method)
		assert.Equal(t, "Documents", request.URL.Query().Get("database"))

		mediaType, params, err := mime.ParseMediaType(request.Header.Get("Content-Type"))
		require.NoError(t, err)
		assert.Equal(t, "multipart/mixed", mediaType)

		reader := multipart.NewReader(request.Body, params["boundary"])

		metadataPart, err := reader.NextPart()
		require.NoError(t, err)
		assert.Equal(t, "attachment; filename=/a.json; category=metadata", metadataPart.Header.Get("Content-Disposition"))

		contentPart, err := reader.NextPart()
		require.NoError(t, err)
		assert.Equal(t, "attachment; filename=/a.json; format=json", contentPart.Header.Get("Content-Disposition"))
		assert.Equal(t, "application/json", contentPart.Header.Get("Content-Type"))

		writer.WriteHeader(http.StatusOK)
	})

	metadata := ml.NewMetadata()
	metadata.Collections = []string{"c1"}

	err := mlClient.Documents().Write(context.Background(), []ml.DocumentWrite{{
		URI:      "/a.json",
		Format:   ml.FormatJSON,
		Content:  []byte(`{"a":1}`),
		Metadata: metadata,
	}}, &ml.DocumentsWriteOptions{Database: "Documents"})
	require.NoError(t, err)

	err = mlClient.Documents().Write(context.Background(), nil, nil)
	require.ErrorIs(t, err, ml.ErrNothingToWrite)
}

func TestDocumentsClient_Delete(t *testing.T) {
	t.Parallel()

	mlClient := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "DELETE", request.Method)
		assert.Equal(t, []string{"/a.xml", "/b.xml"}, request.URL.Query()["uri"])
		assert.Equal(t, []string{"collections"}, request.URL.Query()["category"])
		writer.WriteHeader(http.StatusNoContent)
	})

	err := mlClient.Documents().Delete(context.Background(), []string{"/a.xml", "/b.xml"}, &ml.DocumentsDeleteOptions{
		Categories: []ml.Category{ml.CategoryCollections},
	})
	require.NoError(t, err)

	err = mlClient.Documents().Delete(context.Background(), nil, nil)
	require.ErrorIs(t, err, ml.ErrNoURIs)
}
