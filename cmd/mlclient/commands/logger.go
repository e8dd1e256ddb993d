package commands

import (
	"io"
	"sort"

	"github.com/hashicorp/go-hclog"

	"github.com/monasticus/mlclient/pkg/ml"
)

// hclogAdapter implements ml.Logger on top of hclog.
type hclogAdapter struct {
	logger hclog.Logger
}

// NewLogger creates the CLI logger. Verbose mode logs at debug level, otherwise
// only warnings and errors are written.
func NewLogger(out io.Writer, verbose bool) ml.Logger {
	level := hclog.Warn
	if verbose {
		level = hclog.Debug
	}

	return &hclogAdapter{
		logger: hclog.New(&hclog.LoggerOptions{
			Name:   "mlclient",
			Level:  level,
			Output: out,
		}),
	}
}

func (a *hclogAdapter) Debug(msg string, fields map[string]interface{}) {
	a.logger.Debug(msg, flattenFields(fields)...)
}

func (a *hclogAdapter) Info(msg string, fields map[string]interface{}) {
	a.logger.Info(msg, flattenFields(fields)...)
}

func (a *hclogAdapter) Warn(msg string, fields map[string]interface{}) {
	a.logger.Warn(msg, flattenFields(fields)...)
}

func (a *hclogAdapter) Error(msg string, fields map[string]interface{}) {
	a.logger.Error(msg, flattenFields(fields)...)
}

// flattenFields turns fields into hclog key/value pairs sorted by key.
func flattenFields(fields map[string]interface{}) []interface{} {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	args := make([]interface{}, 0, len(fields)*2) //nolint:mnd // key and value
	for _, key := range keys {
		args = append(args, key, fields[key])
	}

	return args
}
