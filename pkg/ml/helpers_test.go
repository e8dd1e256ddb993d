package ml_test

import (
	"net/http"
	"strings"

	"github.com/monasticus/mlclient/pkg/ml"
)

const testBoundary = "ML_BOUNDARY_7f3a"

// rawPart is one part of a hand-built multipart body.
type rawPart struct {
	headers []string
	body    string
}

// multipartBody renders parts between testBoundary delimiters.
func multipartBody(parts ...rawPart) string {
	var builder strings.Builder

	for _, part := range parts {
		builder.WriteString("--" + testBoundary + "\r\n")

		for _, header := range part.headers {
			builder.WriteString(header + "\r\n")
		}

		builder.WriteString("\r\n")
		builder.WriteString(part.body)
		builder.WriteString("\r\n")
	}

	builder.WriteString("--" + testBoundary + "--\r\n")

	return builder.String()
}

// multipartResponse wraps parts into a 200 multipart/mixed response.
func multipartResponse(parts ...rawPart) *ml.Response {
	return &ml.Response{
		StatusCode: http.StatusOK,
		Headers:    http.Header{"Content-Type": []string{"multipart/mixed; boundary=" + testBoundary}},
		Body:       []byte(multipartBody(parts...)),
	}
}

// primitivePart is an eval result part tagged with an X-Primitive header.
func primitivePart(tag, body string) rawPart {
	return rawPart{
		headers: []string{"Content-Type: text/plain", "X-Primitive: " + tag},
		body:    body,
	}
}

// documentPart is a document retrieval part.
func documentPart(contentType, disposition, body string) rawPart {
	return rawPart{
		headers: []string{"Content-Type: " + contentType, "Content-Disposition: " + disposition},
		body:    body,
	}
}
