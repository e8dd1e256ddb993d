package ml

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// Request represents an HTTP request that can be intercepted.
type Request struct {
	Method   string
	Path     string
	Query    url.Values
	Headers  http.Header
	Body     []byte
	Metadata map[string]interface{}
}

// Response is a fully buffered HTTP response. It is the only input of the
// response parser and the document assembler.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Error      error
}

// IsError reports whether the status code is a server-reported failure.
func (r *Response) IsError() bool {
	return r.StatusCode >= http.StatusBadRequest
}

// RequestInterceptor is called before a request is sent.
type RequestInterceptor func(ctx context.Context, req *Request) error

// ResponseInterceptor is called after a response is received.
type ResponseInterceptor func(ctx context.Context, req *Request, resp *Response) error

// InterceptorChain manages a chain of interceptors.
type InterceptorChain struct {
	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor
}

// NewInterceptorChain creates a new interceptor chain.
func NewInterceptorChain() *InterceptorChain {
	return &InterceptorChain{
		requestInterceptors:  make([]RequestInterceptor, 0),
		responseInterceptors: make([]ResponseInterceptor, 0),
	}
}

// AddRequestInterceptor adds a request interceptor to the chain.
func (c *InterceptorChain) AddRequestInterceptor(interceptor RequestInterceptor) {
	c.requestInterceptors = append(c.requestInterceptors, interceptor)
}

// AddResponseInterceptor adds a response interceptor to the chain.
func (c *InterceptorChain) AddResponseInterceptor(interceptor ResponseInterceptor) {
	c.responseInterceptors = append(c.responseInterceptors, interceptor)
}

// ExecuteRequestInterceptors runs all request interceptors.
func (c *InterceptorChain) ExecuteRequestInterceptors(ctx context.Context, req *Request) error {
	for _, interceptor := range c.requestInterceptors {
		err := interceptor(ctx, req)
		if err != nil {
			return fmt.Errorf("request interceptor failed: %w", err)
		}
	}

	return nil
}

// ExecuteResponseInterceptors runs all response interceptors.
func (c *InterceptorChain) ExecuteResponseInterceptors(ctx context.Context, req *Request, resp *Response) error {
	for _, interceptor := range c.responseInterceptors {
		err := interceptor(ctx, req, resp)
		if err != nil {
			return fmt.Errorf("response interceptor failed: %w", err)
		}
	}

	return nil
}

// Common Interceptors

// LoggingInterceptor logs requests.
func LoggingInterceptor(logger Logger) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		logger.Debug("API Request", map[string]interface{}{
			"method": req.Method,
			"path":   req.Path,
			"query":  req.Query.Encode(),
		})

		return nil
	}
}

// LoggingResponseInterceptor logs responses.
func LoggingResponseInterceptor(logger Logger) ResponseInterceptor {
	return func(ctx context.Context, req *Request, resp *Response) error {
		fields := map[string]interface{}{
			"method":       req.Method,
			"path":         req.Path,
			"status_code":  resp.StatusCode,
			"content_type": resp.Headers.Get("Content-Type"),
			"bytes":        len(resp.Body),
		}

		if resp.Error != nil || resp.IsError() {
			logger.Error("API Response Error", fields)
		} else {
			logger.Debug("API Response", fields)
		}

		return nil
	}
}

// HeaderInterceptor adds custom headers to requests.
func HeaderInterceptor(headers map[string]string) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		if req.Headers == nil {
			req.Headers = make(http.Header)
		}

		for key, value := range headers {
			req.Headers.Set(key, value)
		}

		return nil
	}
}

// DatabaseInterceptor targets every request at a content database other than
// the application server's default one.
func DatabaseInterceptor(database string) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		if database == "" {
			return nil
		}

		if req.Query == nil {
			req.Query = url.Values{}
		}

		if req.Query.Get("database") == "" {
			req.Query.Set("database", database)
		}

		return nil
	}
}

// Metrics holds call statistics for one endpoint.
type Metrics struct {
	TotalRequests   int64
	TotalErrors     int64
	TotalLatency    time.Duration
	AverageLatency  time.Duration
	LastRequestTime time.Time
}

// MetricsCollector collects API metrics.
type MetricsCollector struct {
	mutex    sync.Mutex
	metrics  map[string]*Metrics
	onChange func(endpoint string, metrics Metrics)
}

// NewMetricsCollector creates a new metrics collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		metrics: make(map[string]*Metrics),
	}
}

// SetOnChange sets a callback for when metrics change.
func (m *MetricsCollector) SetOnChange(fn func(endpoint string, metrics Metrics)) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.onChange = fn
}

// GetMetrics returns a snapshot of the metrics for an endpoint.
func (m *MetricsCollector) GetMetrics(endpoint string) (Metrics, bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if metrics, ok := m.metrics[endpoint]; ok {
		return *metrics, true
	}

	return Metrics{}, false
}

// Endpoints returns every endpoint seen so far.
func (m *MetricsCollector) Endpoints() []string {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	endpoints := make([]string, 0, len(m.metrics))
	for endpoint := range m.metrics {
		endpoints = append(endpoints, endpoint)
	}

	return endpoints
}

// MetricsRequestInterceptor records request start time.
func MetricsRequestInterceptor(collector *MetricsCollector) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		if req.Metadata == nil {
			req.Metadata = make(map[string]interface{})
		}

		req.Metadata["start_time"] = time.Now()

		return nil
	}
}

// MetricsResponseInterceptor records response metrics.
func MetricsResponseInterceptor(collector *MetricsCollector) ResponseInterceptor {
	return func(ctx context.Context, req *Request, resp *Response) error {
		endpoint := fmt.Sprintf("%s %s", req.Method, req.Path)

		collector.mutex.Lock()

		metrics, ok := collector.metrics[endpoint]
		if !ok {
			metrics = &Metrics{}
			collector.metrics[endpoint] = metrics
		}

		metrics.TotalRequests++
		metrics.LastRequestTime = time.Now()

		if req.Metadata != nil {
			if startTime, ok := req.Metadata["start_time"].(time.Time); ok {
				metrics.TotalLatency += time.Since(startTime)
				metrics.AverageLatency = metrics.TotalLatency / time.Duration(metrics.TotalRequests)
			}
		}

		if resp.Error != nil || resp.IsError() {
			metrics.TotalErrors++
		}

		snapshot := *metrics
		onChange := collector.onChange

		collector.mutex.Unlock()

		if onChange != nil {
			onChange(endpoint, snapshot)
		}

		return nil
	}
}
