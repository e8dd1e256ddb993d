package ml

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/monasticus/mlclient/internal/constants"
)

// BodyPart is one segment of a response: its own headers and its payload.
type BodyPart struct {
	Headers http.Header
	Body    []byte
}

// ContentType returns the media type of the part without parameters.
func (p BodyPart) ContentType() string {
	return mediaTypeOf(p.Headers)
}

// IsMultipart reports whether the response carries multipart/mixed content.
func IsMultipart(resp *Response) bool {
	return mediaTypeOf(resp.Headers) == constants.MediaTypeMultipartMixed
}

// SplitResponse splits a multipart/mixed response into its body parts in wire
// order. Any other response becomes a single part carrying the response's own
// headers and body. An empty body means no results and yields no parts,
// whatever the content type.
func SplitResponse(resp *Response) ([]BodyPart, error) {
	if len(resp.Body) == 0 {
		return []BodyPart{}, nil
	}

	contentType := resp.Headers.Get(constants.HeaderContentType)
	if contentType == "" {
		return []BodyPart{{Headers: resp.Headers, Body: resp.Body}}, nil
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), constants.MediaTypeMultipartMixed) {
			return nil, &MalformedMultipartResponseError{ContentType: contentType, Reason: "invalid content type", Err: err}
		}

		return []BodyPart{{Headers: resp.Headers, Body: resp.Body}}, nil
	}

	if mediaType != constants.MediaTypeMultipartMixed {
		return []BodyPart{{Headers: resp.Headers, Body: resp.Body}}, nil
	}

	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return []BodyPart{}, nil
	}

	boundary := params["boundary"]
	if boundary == "" {
		return nil, &MalformedMultipartResponseError{ContentType: contentType, Reason: "missing boundary"}
	}

	return splitMultipart(contentType, boundary, resp.Body)
}

func splitMultipart(contentType, boundary string, body []byte) ([]BodyPart, error) {
	reader := multipart.NewReader(bytes.NewReader(body), boundary)
	parts := make([]BodyPart, 0)

	for {
		part, err := reader.NextRawPart()
		if err == io.EOF { //nolint:errorlint // a bare io.EOF marks the closing delimiter, a wrapped one a body without delimiters
			break
		}

		if err != nil {
			return nil, &MalformedMultipartResponseError{ContentType: contentType, Reason: "reading part header", Err: err}
		}

		payload, err := io.ReadAll(part)
		if err != nil {
			return nil, &MalformedMultipartResponseError{ContentType: contentType, Reason: "reading part body", Err: err}
		}

		parts = append(parts, BodyPart{
			Headers: http.Header(part.Header),
			Body:    payload,
		})
	}

	return parts, nil
}

// mediaTypeOf returns the lower-cased media type of the Content-Type header.
func mediaTypeOf(headers http.Header) string {
	contentType := headers.Get(constants.HeaderContentType)
	if contentType == "" {
		return ""
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType, _, _ = strings.Cut(contentType, ";")
	}

	return strings.ToLower(strings.TrimSpace(mediaType))
}

func isJSONMediaType(mediaType string) bool {
	return mediaType == constants.MediaTypeJSON || strings.HasSuffix(mediaType, "+json")
}

func isXMLMediaType(mediaType string) bool {
	return mediaType == constants.MediaTypeXML ||
		mediaType == constants.MediaTypeTextXML ||
		strings.HasSuffix(mediaType, "+xml")
}

func isTextMediaType(mediaType string) bool {
	return strings.HasPrefix(mediaType, "text/")
}
