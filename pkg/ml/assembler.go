package ml

import (
	"encoding/json"
	"fmt"

	"github.com/monasticus/mlclient/internal/constants"
)

// AssembleOption configures document assembly.
type AssembleOption func(*assembleOptions)

type assembleOptions struct {
	raw bool
}

// WithRawContent keeps every content part as a RawDocument holding the wire
// bytes instead of a parsed tree.
func WithRawContent() AssembleOption {
	return func(o *assembleOptions) {
		o.raw = true
	}
}

// AssembleDocuments rebuilds the documents of a retrieval response, one per
// URI found in the response, in first-appearance order. Requested URIs that
// the server did not return are absent from the result.
func AssembleDocuments(uris []string, resp *Response, opts ...AssembleOption) ([]Document, error) {
	if resp == nil {
		return nil, fmt.Errorf("%w: nil response", ErrInvalidResponse)
	}

	if resp.IsError() {
		return nil, ParseServerError(resp)
	}

	options := &assembleOptions{}
	for _, opt := range opts {
		opt(options)
	}

	parts, err := SplitResponse(resp)
	if err != nil {
		return nil, err
	}

	if !IsMultipart(resp) {
		return assembleSinglePart(uris, parts, options)
	}

	groups, err := groupParts(parts)
	if err != nil {
		return nil, err
	}

	documents := make([]Document, 0, len(groups.order))

	for _, uri := range groups.order {
		document, err := groups.byURI[uri].assemble(uri, options)
		if err != nil {
			return nil, err
		}

		documents = append(documents, document)
	}

	return documents, nil
}

// AssembleDocument rebuilds the document of a single-URI retrieval response.
func AssembleDocument(uri string, resp *Response, opts ...AssembleOption) (Document, error) {
	documents, err := AssembleDocuments([]string{uri}, resp, opts...)
	if err != nil {
		return nil, err
	}

	for _, document := range documents {
		if document.URI() == uri {
			return document, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, uri)
}

// assembleSinglePart handles the server's shortcut for a single document
// requested without metadata: the bare content with the format in its own
// headers.
func assembleSinglePart(uris []string, parts []BodyPart, options *assembleOptions) ([]Document, error) {
	if len(parts) == 0 {
		return []Document{}, nil
	}

	if len(uris) != 1 {
		return nil, fmt.Errorf("%w: single document body for %d requested URIs", ErrInvalidResponse, len(uris))
	}

	part := parts[0]

	format := Format(part.Headers.Get(constants.HeaderDocumentFormat))
	if format == "" {
		format = formatFromMediaType(part.ContentType())
	}

	document, err := decodeContent(uris[0], part, format, nil, false, options)
	if err != nil {
		return nil, err
	}

	return []Document{document}, nil
}

// partGroup holds the parts of one URI.
type partGroup struct {
	content       *BodyPart
	contentFormat Format
	metadata      []BodyPart
	temporal      bool
}

// groupedParts is built once by groupParts and only read afterwards.
type groupedParts struct {
	order []string
	byURI map[string]*partGroup
}

func groupParts(parts []BodyPart) (*groupedParts, error) {
	groups := &groupedParts{
		order: make([]string, 0),
		byURI: make(map[string]*partGroup),
	}

	for i := range parts {
		part := parts[i]

		header := part.Headers.Get(constants.HeaderContentDisposition)
		if header == "" {
			return nil, &MalformedContentDispositionError{Header: header, Reason: fmt.Sprintf("missing on part %d", i)}
		}

		disposition, err := ParseContentDisposition(header)
		if err != nil {
			return nil, err
		}

		if disposition.Filename == "" {
			return nil, &MalformedContentDispositionError{Header: header, Reason: "no filename to identify the document"}
		}

		group, ok := groups.byURI[disposition.Filename]
		if !ok {
			group = &partGroup{}
			groups.byURI[disposition.Filename] = group
			groups.order = append(groups.order, disposition.Filename)
		}

		if disposition.IsTemporal() {
			group.temporal = true
		}

		if disposition.IsContent() {
			group.content = &part

			group.contentFormat = disposition.Format
			if group.contentFormat == "" {
				group.contentFormat = formatFromMediaType(part.ContentType())
			}

			continue
		}

		if disposition.Format != "" && disposition.Format != FormatJSON {
			return nil, fmt.Errorf("%w: metadata of %s in %s format", ErrInvalidFormat, disposition.Filename, disposition.Format)
		}

		group.metadata = append(group.metadata, part)
	}

	return groups, nil
}

func (g *partGroup) assemble(uri string, options *assembleOptions) (Document, error) {
	var metadata *Metadata

	if len(g.metadata) > 0 {
		metadata = NewMetadata()

		for _, part := range g.metadata {
			patch, err := decodeMetadataPatch(part.Body)
			if err != nil {
				return nil, fmt.Errorf("decoding metadata of %s: %w", uri, err)
			}

			metadata = mergeMetadata(metadata, patch)
		}
	}

	if g.content == nil {
		return NewMetadataDocument(uri, metadata, g.temporal), nil
	}

	return decodeContent(uri, *g.content, g.contentFormat, metadata, g.temporal, options)
}

func decodeContent(uri string, part BodyPart, format Format, metadata *Metadata, temporal bool, options *assembleOptions) (Document, error) {
	if options.raw || !format.Valid() {
		return NewRawDocument(uri, part.Body, format, part.ContentType(), metadata, temporal), nil
	}

	switch format {
	case FormatXML:
		root, err := parseXMLDocument(part.Body)
		if err != nil {
			return nil, fmt.Errorf("decoding XML content of %s: %w", uri, err)
		}

		return NewXMLDocument(uri, root, metadata, temporal), nil
	case FormatJSON:
		var value any

		err := json.Unmarshal(part.Body, &value)
		if err != nil {
			return nil, fmt.Errorf("decoding JSON content of %s: %w", uri, err)
		}

		return NewJSONDocument(uri, value, metadata, temporal), nil
	case FormatText:
		return NewTextDocument(uri, string(part.Body), metadata, temporal), nil
	default:
		return NewBinaryDocument(uri, part.Body, metadata, temporal), nil
	}
}

// metadataPatch is the slice of Metadata one part contributes. Nil fields
// were not present in the part.
type metadataPatch struct {
	Collections    *[]string       `json:"collections"`
	Permissions    *[]Permission   `json:"permissions"`
	Properties     *map[string]any `json:"properties"`
	Quality        *int            `json:"quality"`
	MetadataValues *map[string]any `json:"metadataValues"`
}

func decodeMetadataPatch(body []byte) (metadataPatch, error) {
	var patch metadataPatch

	err := json.Unmarshal(body, &patch)
	if err != nil {
		return metadataPatch{}, fmt.Errorf("parsing metadata JSON: %w", err)
	}

	return patch, nil
}

// mergeMetadata applies one patch and returns the result. Each field is
// replaced only when the patch carries it, so patches touching disjoint
// fields commute; overlapping fields keep the last patch's value.
func mergeMetadata(base *Metadata, patch metadataPatch) *Metadata {
	merged := *base

	if patch.Collections != nil {
		merged.Collections = *patch.Collections
	}

	if patch.Permissions != nil {
		merged.Permissions = *patch.Permissions
	}

	if patch.Properties != nil {
		merged.Properties = *patch.Properties
	}

	if patch.Quality != nil {
		merged.Quality = *patch.Quality
	}

	if patch.MetadataValues != nil {
		merged.MetadataValues = *patch.MetadataValues
	}

	return &merged
}
