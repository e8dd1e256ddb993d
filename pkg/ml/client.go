package ml

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
)

// EvalClient evaluates ad-hoc code on the server.
type EvalClient interface {
	Eval(ctx context.Context, request *EvalRequest) (*Result, error)
}

// DocumentsClient reads, writes and deletes documents.
type DocumentsClient interface {
	Get(ctx context.Context, uri string, options *DocumentsGetOptions) (Document, error)
	GetMany(ctx context.Context, uris []string, options *DocumentsGetOptions) ([]Document, error)
	Write(ctx context.Context, writes []DocumentWrite, options *DocumentsWriteOptions) error
	Delete(ctx context.Context, uris []string, options *DocumentsDeleteOptions) error
}

// Client provides access to the REST API clients.
type Client interface {
	Eval() EvalClient
	Documents() DocumentsClient
}

// EvalRequest is one code evaluation. Exactly one of XQuery or JavaScript is
// set.
type EvalRequest struct {
	XQuery     string
	JavaScript string
	// Variables are passed as external variables, JSON encoded.
	Variables map[string]any
	Database  string
	// Output overrides the native typing of the results.
	Output OutputKind
	// WithHeaders keeps each result's part headers.
	WithHeaders bool
}

// DocumentsGetOptions selects what to retrieve for each URI.
type DocumentsGetOptions struct {
	// Categories defaults to content only.
	Categories []Category
	Database   string
	// Raw keeps content undecoded, see WithRawContent.
	Raw bool
}

// DocumentsWriteOptions applies to a whole document write.
type DocumentsWriteOptions struct {
	Database string
}

// DocumentsDeleteOptions applies to a document delete.
type DocumentsDeleteOptions struct {
	Categories []Category
	Database   string
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a Client.
//
// # Authentication
//
// AccessToken, when set, is sent as a Bearer token. Otherwise Username and
// Password are sent with HTTP basic authentication. Without credentials,
// requests are sent unauthenticated, which suits application servers
// configured for application-level authentication.
//
// # Timeouts and retries
//
// Per-request timeouts should generally be controlled via context passed to
// client methods. Transient failures (connection errors, 429 and 5xx) are
// retried by the transport as tuned by RetryMax, RetryWaitMin and
// RetryWaitMax. The response decoding layer itself never retries.
type Config struct {
	// Host of the REST application server.
	Host string
	// Port of the REST application server; 0 means the default 8000.
	Port int
	// Scheme is "http" or "https"; empty means "http".
	Scheme string

	Username    string
	Password    string
	AccessToken string

	// Database overrides the application server's content database.
	Database string

	// HTTPTimeout bounds each HTTP attempt.
	HTTPTimeout time.Duration
	// RetryMax: maximum number of retries for transient failures. If 0, a
	// sensible default is used by the client; a negative value disables
	// retries.
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	// Debug: enables verbose HTTP request/response logging when a Logger is provided.
	Debug  bool
	Logger Logger
	// UserAgent: overrides the default User-Agent header sent by the client.
	UserAgent string
	// Metrics, when set, records per-endpoint call statistics.
	Metrics *MetricsCollector
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigRequired
	}

	var result *multierror.Error

	if c.Host == "" {
		result = multierror.Append(result, ErrHostRequired)
	}

	if c.Port < 0 || c.Port > 65535 {
		result = multierror.Append(result, fmt.Errorf("%w: %d", ErrInvalidPort, c.Port))
	}

	if c.Scheme != "" && c.Scheme != "http" && c.Scheme != "https" {
		result = multierror.Append(result, fmt.Errorf("%w: %q", ErrInvalidScheme, c.Scheme))
	}

	if c.Username != "" && c.Password == "" && c.AccessToken == "" {
		result = multierror.Append(result, ErrPasswordRequired)
	}

	if c.RetryWaitMin > 0 && c.RetryWaitMax > 0 && c.RetryWaitMin > c.RetryWaitMax {
		result = multierror.Append(result, ErrInvalidRetryWait)
	}

	return result.ErrorOrNil()
}
