// Package http is the transport used by the endpoint clients. It sends
// requests with retries and hands back fully buffered responses.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/monasticus/mlclient/internal/auth"
	"github.com/monasticus/mlclient/internal/constants"
	"github.com/monasticus/mlclient/pkg/ml"
)

const defaultUserAgent = "mlclient-go/1.0"

// Request describes one API call relative to the client's base URL.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Headers map[string]string
	// Body is JSON encoded unless RawBody is set.
	Body        interface{}
	RawBody     []byte
	ContentType string
}

// Client sends requests to one REST application server.
type Client struct {
	baseURL       string
	httpClient    *retryablehttp.Client
	authenticator auth.Authenticator
	interceptors  *ml.InterceptorChain
	logger        ml.Logger
	debug         bool
	userAgent     string
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for debug output and retry notices.
func WithLogger(logger ml.Logger) Option {
	return func(c *Client) {
		c.logger = logger
		c.httpClient.Logger = &leveledLogger{logger: logger}
	}
}

// WithDebug enables request and response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithRetryConfig tunes retries of transient failures.
func WithRetryConfig(maxRetries int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = maxRetries
		c.httpClient.RetryWaitMin = waitMin
		c.httpClient.RetryWaitMax = waitMax
	}
}

// WithTimeout bounds every HTTP attempt.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.HTTPClient.Timeout = timeout
	}
}

// WithInterceptors runs the chain around every request.
func WithInterceptors(chain *ml.InterceptorChain) Option {
	return func(c *Client) {
		c.interceptors = chain
	}
}

// NewClient creates a client for baseURL. authenticator may be nil.
func NewClient(baseURL string, authenticator auth.Authenticator, opts ...Option) *Client {
	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = constants.LowRetryMax
	httpClient.RetryWaitMin = constants.DefaultRetryWaitMin
	httpClient.RetryWaitMax = constants.DefaultRetryWaitMax
	httpClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout
	httpClient.Logger = nil
	httpClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client := &Client{
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		httpClient:    httpClient,
		authenticator: authenticator,
		interceptors:  ml.NewInterceptorChain(),
		userAgent:     defaultUserAgent,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// BaseURL returns the URL every request path is relative to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends the request. A 4xx/5xx answer is returned together with its
// decoded *ml.ServerError.
func (c *Client) Do(ctx context.Context, req *Request) (*ml.Response, error) {
	body, contentType, err := encodeBody(req)
	if err != nil {
		return nil, err
	}

	intercepted := &ml.Request{
		Method:  req.Method,
		Path:    req.Path,
		Query:   cloneValues(req.Query),
		Headers: make(http.Header),
		Body:    body,
	}

	for key, value := range req.Headers {
		intercepted.Headers.Set(key, value)
	}

	err = c.interceptors.ExecuteRequestInterceptors(ctx, intercepted)
	if err != nil {
		return nil, err
	}

	httpReq, err := c.buildRequest(ctx, intercepted, contentType)
	if err != nil {
		return nil, err
	}

	requestID := httpReq.Header.Get(constants.HeaderRequestID)

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method":     httpReq.Method,
			"url":        httpReq.URL.String(),
			"request_id": requestID,
		})
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}

	defer func() {
		_ = httpResp.Body.Close()
	}()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	resp := &ml.Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"status":       httpResp.StatusCode,
			"content_type": httpResp.Header.Get(constants.HeaderContentType),
			"bytes":        len(respBody),
			"request_id":   requestID,
		})
	}

	if resp.IsError() {
		resp.Error = ml.ParseServerError(resp)
	}

	err = c.interceptors.ExecuteResponseInterceptors(ctx, intercepted, resp)
	if err != nil {
		return resp, err
	}

	if resp.Error != nil {
		return resp, resp.Error
	}

	return resp, nil
}

func (c *Client) buildRequest(ctx context.Context, req *ml.Request, contentType string) (*retryablehttp.Request, error) {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body interface{}
	if req.Body != nil {
		body = req.Body
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	for key, values := range req.Headers {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}

	if contentType != "" && httpReq.Header.Get(constants.HeaderContentType) == "" {
		httpReq.Header.Set(constants.HeaderContentType, contentType)
	}

	if httpReq.Header.Get(constants.HeaderAccept) == "" {
		httpReq.Header.Set(constants.HeaderAccept, constants.MediaTypeMultipartMixed+", "+constants.MediaTypeJSON+", */*")
	}

	if httpReq.Header.Get(constants.HeaderRequestID) == "" {
		httpReq.Header.Set(constants.HeaderRequestID, uuid.NewString())
	}

	httpReq.Header.Set("User-Agent", c.userAgent)

	if c.authenticator != nil {
		err = c.authenticator.Authenticate(ctx, httpReq.Request)
		if err != nil {
			return nil, fmt.Errorf("authenticating request: %w", err)
		}
	}

	return httpReq, nil
}

func encodeBody(req *Request) ([]byte, string, error) {
	if req.RawBody != nil {
		return req.RawBody, req.ContentType, nil
	}

	if req.Body == nil {
		return nil, req.ContentType, nil
	}

	body, err := json.Marshal(req.Body)
	if err != nil {
		return nil, "", fmt.Errorf("marshaling request body: %w", err)
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = constants.MediaTypeJSON
	}

	return body, contentType, nil
}

func cloneValues(values url.Values) url.Values {
	if values == nil {
		return nil
	}

	cloned := make(url.Values, len(values))
	for key, list := range values {
		cloned[key] = append([]string(nil), list...)
	}

	return cloned
}

// Get sends a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*ml.Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post sends a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*ml.Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put sends a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*ml.Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

// Delete sends a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, query url.Values) (*ml.Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path, Query: query})
}

// leveledLogger adapts ml.Logger to retryablehttp.LeveledLogger.
type leveledLogger struct {
	logger ml.Logger
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, fieldsOf(keysAndValues))
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, fieldsOf(keysAndValues))
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, fieldsOf(keysAndValues))
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, fieldsOf(keysAndValues))
}

func fieldsOf(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}

	return fields
}
