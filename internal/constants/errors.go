package constants

import "errors"

// Configuration errors.
var (
	ErrUnknownConfigKey = errors.New("unknown configuration key")
	ErrInvalidPortValue = errors.New("port must be a number")
)

// Command input errors.
var (
	ErrEvalSourceRequired   = errors.New("code to evaluate is required, pass it as an argument or with --file")
	ErrEvalSourceAmbiguous  = errors.New("pass code either as an argument or with --file, not both")
	ErrInvalidVariable      = errors.New("variables must be given as name=value")
	ErrContentFileRequired  = errors.New("--file is required")
	ErrUnsupportedOutput    = errors.New("unsupported output format")
	ErrPasswordNotAvailable = errors.New("password is required and stdin is not a terminal")
)
