package ml

import (
	"fmt"
	"net/http"
)

// Result holds the decoded values of one response. A response carrying a
// single part is a single result; zero or several parts form a list.
type Result struct {
	values  []Value
	headers []http.Header
	single  bool
}

// IsList reports whether the result is a list of values.
func (r *Result) IsList() bool {
	return !r.single
}

// Single returns the only value of a single result.
func (r *Result) Single() (Value, bool) {
	if !r.single {
		return Value{}, false
	}

	return r.values[0], true
}

// Values returns every value in wire order. A single result yields a slice of
// one element.
func (r *Result) Values() []Value {
	return r.values
}

// Headers returns the header map of each value's originating part, parallel
// to Values. It is nil unless the result was parsed with headers.
func (r *Result) Headers() []http.Header {
	return r.headers
}

// Len returns the number of values.
func (r *Result) Len() int {
	return len(r.values)
}

// Interface returns the native Go value of a single result, or a slice of
// native values for a list.
func (r *Result) Interface() any {
	if r.single {
		return r.values[0].Interface()
	}

	out := make([]any, len(r.values))
	for i, value := range r.values {
		out[i] = value.Interface()
	}

	return out
}

// ParseResponse decodes an evaluation response. A 4xx/5xx response is
// returned as a *ServerError.
func ParseResponse(resp *Response, kind OutputKind) (*Result, error) {
	return parseResponse(resp, kind, false)
}

// ParseResponseWithHeaders is ParseResponse keeping the headers of every part.
func ParseResponseWithHeaders(resp *Response, kind OutputKind) (*Result, error) {
	return parseResponse(resp, kind, true)
}

func parseResponse(resp *Response, kind OutputKind, withHeaders bool) (*Result, error) {
	if resp == nil {
		return nil, fmt.Errorf("%w: nil response", ErrInvalidResponse)
	}

	if resp.IsError() {
		return nil, ParseServerError(resp)
	}

	parts, err := SplitResponse(resp)
	if err != nil {
		return nil, err
	}

	result := &Result{
		values: make([]Value, 0, len(parts)),
		single: len(parts) == 1,
	}

	if withHeaders {
		result.headers = make([]http.Header, 0, len(parts))
	}

	for i, part := range parts {
		value, err := DecodePart(part, kind)
		if err != nil {
			return nil, fmt.Errorf("decoding part %d: %w", i, err)
		}

		result.values = append(result.values, value)

		if withHeaders {
			result.headers = append(result.headers, part.Headers)
		}
	}

	return result, nil
}
