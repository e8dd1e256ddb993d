package client

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/monasticus/mlclient/internal/auth"
	"github.com/monasticus/mlclient/internal/constants"
	"github.com/monasticus/mlclient/internal/http"
	"github.com/monasticus/mlclient/pkg/ml"
)

// Client implements the ml.Client interface.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     ml.Logger

	eval      *EvalClient
	documents *DocumentsClient
}

// BaseURL builds the REST application server URL from the config, applying
// defaults for unset fields.
func BaseURL(config *ml.Config) string {
	scheme := config.Scheme
	if scheme == "" {
		scheme = constants.DefaultScheme
	}

	host := config.Host
	if host == "" {
		host = constants.DefaultHost
	}

	port := config.Port
	if port == 0 {
		port = constants.DefaultPort
	}

	return scheme + "://" + net.JoinHostPort(host, strconv.Itoa(port))
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *ml.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.RetryMax != 0 {
		retryMax := max(config.RetryMax, 0)
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.ExtendedRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(retryMax, retryWaitMin, retryWaitMax))
	}

	httpOpts = append(httpOpts, http.WithInterceptors(createInterceptors(config)))

	return httpOpts
}

func createInterceptors(config *ml.Config) *ml.InterceptorChain {
	chain := ml.NewInterceptorChain()

	if config.Database != "" {
		chain.AddRequestInterceptor(ml.DatabaseInterceptor(config.Database))
	}

	if config.Metrics != nil {
		chain.AddRequestInterceptor(ml.MetricsRequestInterceptor(config.Metrics))
		chain.AddResponseInterceptor(ml.MetricsResponseInterceptor(config.Metrics))
	}

	if config.Logger != nil {
		chain.AddRequestInterceptor(ml.LoggingInterceptor(config.Logger))
		chain.AddResponseInterceptor(ml.LoggingResponseInterceptor(config.Logger))
	}

	return chain
}

// New creates a REST API client. The config is validated first.
func New(ctx context.Context, config *ml.Config) (*Client, error) {
	err := config.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	baseURL := BaseURL(config)
	authenticator := auth.New(config.Username, config.Password, config.AccessToken)
	httpClient := http.NewClient(baseURL, authenticator, createHTTPClientOptions(config)...)

	client := &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		logger:     config.Logger,
	}

	client.initializeEndpointClients()

	if client.logger != nil {
		client.logger.Debug("client created", map[string]interface{}{
			"base_url": baseURL,
			"database": config.Database,
		})
	}

	return client, nil
}

func (c *Client) initializeEndpointClients() {
	c.eval = NewEvalClient(c.httpClient)
	c.documents = NewDocumentsClient(c.httpClient)
}

// BaseURL returns the application server URL the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Eval implements ml.Client.Eval.
func (c *Client) Eval() ml.EvalClient {
	return c.eval
}

// Documents implements ml.Client.Documents.
func (c *Client) Documents() ml.DocumentsClient {
	return c.documents
}
