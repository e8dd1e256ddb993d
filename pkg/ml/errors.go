package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Common message codes reported by the server.
const (
	MessageCodeNoDocument      = "RESTAPI-NODOCUMENT"
	MessageCodeInvalidRequest  = "RESTAPI-INVALIDREQ"
	MessageCodeInvalidContent  = "RESTAPI-INVALIDCONTENT"
	MessageCodeSecurityError   = "SEC-PRIV"
	MessageCodeXDMPDocNotFound = "XDMP-DOCNOTFOUND"
)

// Common static errors that can be wrapped with context.
var (
	ErrConfigRequired    = errors.New("config is required")
	ErrHostRequired      = errors.New("host is required")
	ErrInvalidPort       = errors.New("port must be between 1 and 65535")
	ErrInvalidScheme     = errors.New("scheme must be http or https")
	ErrPasswordRequired  = errors.New("password is required when a username is set")
	ErrInvalidRetryWait  = errors.New("retry wait min must not exceed retry wait max")
	ErrDocumentNotFound  = errors.New("document not found in response")
	ErrNoURIs            = errors.New("at least one document URI is required")
	ErrCodeRequired      = errors.New("code to evaluate is required")
	ErrInvalidCategory   = errors.New("invalid document category")
	ErrInvalidFormat     = errors.New("invalid document format")
	ErrInvalidOutputKind = errors.New("invalid output kind")
	ErrInvalidResponse   = errors.New("invalid response")
)

// MalformedMultipartResponseError reports broken multipart framing in a
// response body. It is a protocol violation and is never retried.
type MalformedMultipartResponseError struct {
	ContentType string
	Reason      string
	Err         error
}

// Error implements the error interface.
func (e *MalformedMultipartResponseError) Error() string {
	msg := "malformed multipart response"
	if e.Reason != "" {
		msg += ": " + e.Reason
	}

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

// Unwrap returns the underlying cause.
func (e *MalformedMultipartResponseError) Unwrap() error {
	return e.Err
}

// MalformedContentDispositionError reports a Content-Disposition header that
// does not follow the document dialect.
type MalformedContentDispositionError struct {
	Header string
	Reason string
}

// Error implements the error interface.
func (e *MalformedContentDispositionError) Error() string {
	return fmt.Sprintf("malformed content disposition %q: %s", e.Header, e.Reason)
}

// DecodeError reports a body part whose bytes do not match the literal format
// of its primitive tag.
type DecodeError struct {
	Tag  PrimitiveTag
	Body []byte
	Err  error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	body := string(e.Body)
	if len(body) > maxErrorBodyLength {
		body = body[:maxErrorBodyLength] + "..."
	}

	if e.Err != nil {
		return fmt.Sprintf("cannot decode %q as %s: %v", body, e.Tag, e.Err)
	}

	return fmt.Sprintf("cannot decode %q as %s", body, e.Tag)
}

// Unwrap returns the underlying cause.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

const maxErrorBodyLength = 80

// ServerError is the decoded error payload of a 4xx/5xx response.
type ServerError struct {
	StatusCode  int    `json:"statusCode"  yaml:"statusCode"`
	Status      string `json:"status"      yaml:"status"`
	MessageCode string `json:"messageCode" yaml:"messageCode"`
	Message     string `json:"message"     yaml:"message"`

	// Body holds the error payload as received when it was not JSON.
	Body string `json:"-" yaml:"body,omitempty"`
}

// Error implements the error interface.
func (e *ServerError) Error() string {
	switch {
	case e.MessageCode != "" && e.Message != "":
		if strings.HasPrefix(e.Message, e.MessageCode) {
			return fmt.Sprintf("server error %d: %s", e.StatusCode, e.Message)
		}

		return fmt.Sprintf("server error %d: %s: %s", e.StatusCode, e.MessageCode, e.Message)
	case e.Message != "":
		return fmt.Sprintf("server error %d: %s", e.StatusCode, e.Message)
	case e.Body != "":
		return fmt.Sprintf("server error %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
	default:
		return fmt.Sprintf("server error %d", e.StatusCode)
	}
}

type errorEnvelope struct {
	ErrorResponse *ServerError `json:"errorResponse"`
}

// ParseServerError decodes the error payload of a failed response. JSON
// payloads are read from the errorResponse envelope, or as a bare error
// object keeping the body as received; anything else is kept as plain text.
func ParseServerError(resp *Response) *ServerError {
	serverErr := &ServerError{StatusCode: resp.StatusCode}

	if isJSONMediaType(mediaTypeOf(resp.Headers)) {
		var envelope errorEnvelope

		err := json.Unmarshal(resp.Body, &envelope)
		if err == nil && envelope.ErrorResponse != nil {
			serverErr = envelope.ErrorResponse
			if serverErr.StatusCode == 0 {
				serverErr.StatusCode = resp.StatusCode
			}

			return serverErr
		}

		var bare ServerError

		err = json.Unmarshal(resp.Body, &bare)
		if err == nil {
			serverErr = &bare
			if serverErr.StatusCode == 0 {
				serverErr.StatusCode = resp.StatusCode
			}
		}
	}

	serverErr.Body = string(resp.Body)

	return serverErr
}

// IsServerError checks if the error is a server-reported error.
func IsServerError(err error) bool {
	serverErr := &ServerError{}

	return errors.As(err, &serverErr)
}

// IsNotFound checks if the error reports a missing document or resource.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrDocumentNotFound) {
		return true
	}

	serverErr := &ServerError{}
	if errors.As(err, &serverErr) {
		return serverErr.StatusCode == 404 ||
			serverErr.MessageCode == MessageCodeNoDocument ||
			serverErr.MessageCode == MessageCodeXDMPDocNotFound
	}

	return false
}

// IsUnauthorized checks if the error is an authentication failure.
func IsUnauthorized(err error) bool {
	serverErr := &ServerError{}
	if errors.As(err, &serverErr) {
		return serverErr.StatusCode == 401
	}

	return false
}

// IsForbidden checks if the error is a permission failure.
func IsForbidden(err error) bool {
	serverErr := &ServerError{}
	if errors.As(err, &serverErr) {
		return serverErr.StatusCode == 403 || serverErr.MessageCode == MessageCodeSecurityError
	}

	return false
}
