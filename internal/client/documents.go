package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/monasticus/mlclient/internal/constants"
	"github.com/monasticus/mlclient/internal/http"
	"github.com/monasticus/mlclient/pkg/ml"
)

// DocumentsClient implements ml.DocumentsClient.
type DocumentsClient struct {
	httpClient *http.Client
}

// NewDocumentsClient creates a new documents client.
func NewDocumentsClient(httpClient *http.Client) *DocumentsClient {
	return &DocumentsClient{
		httpClient: httpClient,
	}
}

// Get implements ml.DocumentsClient.Get.
func (c *DocumentsClient) Get(ctx context.Context, uri string, options *ml.DocumentsGetOptions) (ml.Document, error) {
	resp, err := c.fetch(ctx, []string{uri}, options)
	if err != nil {
		return nil, err
	}

	document, err := ml.AssembleDocument(uri, resp, assembleOptions(options)...)
	if err != nil {
		return nil, fmt.Errorf("assembling document: %w", err)
	}

	return document, nil
}

// GetMany implements ml.DocumentsClient.GetMany.
func (c *DocumentsClient) GetMany(ctx context.Context, uris []string, options *ml.DocumentsGetOptions) ([]ml.Document, error) {
	resp, err := c.fetch(ctx, uris, options)
	if err != nil {
		return nil, err
	}

	documents, err := ml.AssembleDocuments(uris, resp, assembleOptions(options)...)
	if err != nil {
		return nil, fmt.Errorf("assembling documents: %w", err)
	}

	return documents, nil
}

func (c *DocumentsClient) fetch(ctx context.Context, uris []string, options *ml.DocumentsGetOptions) (*ml.Response, error) {
	if len(uris) == 0 {
		return nil, ml.ErrNoURIs
	}

	if options == nil {
		options = &ml.DocumentsGetOptions{}
	}

	query, err := documentsQuery(uris, options.Categories, options.Database)
	if err != nil {
		return nil, err
	}

	if requestsMetadata(options.Categories) {
		query.Set("format", string(ml.FormatJSON))
	}

	resp, err := c.httpClient.Do(ctx, &http.Request{
		Method: "GET",
		Path:   constants.APIPathDocuments,
		Query:  query,
		Headers: map[string]string{
			constants.HeaderAccept: constants.MediaTypeMultipartMixed,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("getting documents: %w", err)
	}

	return resp, nil
}

// Write implements ml.DocumentsClient.Write.
func (c *DocumentsClient) Write(ctx context.Context, writes []ml.DocumentWrite, options *ml.DocumentsWriteOptions) error {
	if len(writes) == 0 {
		return ml.ErrNothingToWrite
	}

	contentType, body, err := ml.EncodeDocuments(writes)
	if err != nil {
		return err
	}

	query := url.Values{}
	if options != nil && options.Database != "" {
		query.Set("database", options.Database)
	}

	_, err = c.httpClient.Do(ctx, &http.Request{
		Method:      "POST",
		Path:        constants.APIPathDocuments,
		Query:       query,
		RawBody:     body,
		ContentType: contentType,
		Headers: map[string]string{
			constants.HeaderAccept: constants.MediaTypeJSON,
		},
	})
	if err != nil {
		return fmt.Errorf("writing documents: %w", err)
	}

	return nil
}

// Delete implements ml.DocumentsClient.Delete.
func (c *DocumentsClient) Delete(ctx context.Context, uris []string, options *ml.DocumentsDeleteOptions) error {
	if len(uris) == 0 {
		return ml.ErrNoURIs
	}

	if options == nil {
		options = &ml.DocumentsDeleteOptions{}
	}

	query, err := documentsQuery(uris, options.Categories, options.Database)
	if err != nil {
		return err
	}

	_, err = c.httpClient.Delete(ctx, constants.APIPathDocuments, query)
	if err != nil {
		return fmt.Errorf("deleting documents: %w", err)
	}

	return nil
}

func documentsQuery(uris []string, categories []ml.Category, database string) (url.Values, error) {
	query := url.Values{}

	for _, uri := range uris {
		query.Add("uri", uri)
	}

	for _, category := range categories {
		if !category.Valid() {
			return nil, fmt.Errorf("%w: %q", ml.ErrInvalidCategory, category)
		}

		query.Add("category", string(category))
	}

	if database != "" {
		query.Set("database", database)
	}

	return query, nil
}

func requestsMetadata(categories []ml.Category) bool {
	for _, category := range categories {
		if category != ml.CategoryContent {
			return true
		}
	}

	return false
}

func assembleOptions(options *ml.DocumentsGetOptions) []ml.AssembleOption {
	if options != nil && options.Raw {
		return []ml.AssembleOption{ml.WithRawContent()}
	}

	return nil
}
