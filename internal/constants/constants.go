package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry limits.
const (
	// DefaultRetryMax is the default maximum number of retries.
	DefaultRetryMax = 5

	// LowRetryMax is used for operations that should retry fewer times.
	LowRetryMax = 3

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second

	// ExtendedRetryWaitMax is used for operations that need longer waits.
	ExtendedRetryWaitMax = 30 * time.Second
)

// Server connection defaults.
const (
	// DefaultHost is the host used when none is configured.
	DefaultHost = "localhost"

	// DefaultPort is the port of the default REST application server.
	DefaultPort = 8000

	// DefaultScheme is the URL scheme used when none is configured.
	DefaultScheme = "http"
)

// REST API paths.
const (
	// APIPathEval is the code evaluation endpoint.
	APIPathEval = "/v1/eval"

	// APIPathDocuments is the document retrieval and write endpoint.
	APIPathDocuments = "/v1/documents"
)

// Header names.
const (
	// HeaderContentType is the Content-Type header.
	HeaderContentType = "Content-Type"

	// HeaderContentDisposition is the Content-Disposition header.
	HeaderContentDisposition = "Content-Disposition"

	// HeaderPrimitive carries the primitive type of an evaluation result part.
	HeaderPrimitive = "X-Primitive"

	// HeaderDocumentFormat carries the format of a single, non-multipart document.
	HeaderDocumentFormat = "vnd.marklogic.document-format"

	// HeaderRequestID correlates requests with log entries.
	HeaderRequestID = "X-Request-ID"

	// HeaderAccept is the Accept header.
	HeaderAccept = "Accept"
)

// Media types.
const (
	// MediaTypeMultipartMixed is the media type of multi-result responses.
	MediaTypeMultipartMixed = "multipart/mixed"

	// MediaTypeJSON is the JSON media type.
	MediaTypeJSON = "application/json"

	// MediaTypeXML is the XML media type.
	MediaTypeXML = "application/xml"

	// MediaTypeTextXML is the alternative XML media type.
	MediaTypeTextXML = "text/xml"

	// MediaTypeText is the plain text media type.
	MediaTypeText = "text/plain"

	// MediaTypeOctetStream is the binary media type.
	MediaTypeOctetStream = "application/octet-stream"

	// MediaTypeForm is the media type of eval request bodies.
	MediaTypeForm = "application/x-www-form-urlencoded"
)

// Boolean string constants.
const (
	// BooleanTrue string representation.
	BooleanTrue = "true"

	// BooleanFalse string representation.
	BooleanFalse = "false"
)

// Format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatTable for table output format.
	FormatTable = "table"
)

// UI and display constants.
const (
	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// None is used when no value is present.
	None = "none"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"

	// JSONIndentSize is the number of spaces for JSON indentation.
	JSONIndentSize = 2

	// StringTruncationLength is the default length for truncating strings.
	StringTruncationLength = 80
)
