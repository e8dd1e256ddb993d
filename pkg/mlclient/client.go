package mlclient

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/monasticus/mlclient/internal/client"
	"github.com/monasticus/mlclient/internal/constants"
	"github.com/monasticus/mlclient/pkg/ml"
)

// New creates a REST API client. Unset host, port and scheme fall back to
// localhost:8000 over http.
func New(ctx context.Context, config *ml.Config) (ml.Client, error) {
	if config == nil {
		return nil, ml.ErrConfigRequired
	}

	normalized := *config

	if normalized.Host == "" {
		normalized.Host = constants.DefaultHost
	}

	if normalized.Port == 0 {
		normalized.Port = constants.DefaultPort
	}

	if normalized.Scheme == "" {
		normalized.Scheme = constants.DefaultScheme
	}

	normalized.Scheme = strings.ToLower(normalized.Scheme)

	mlClient, err := client.New(ctx, &normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return mlClient, nil
}

// NewWithEndpoint creates an unauthenticated client for an endpoint URL such
// as "http://localhost:8000".
func NewWithEndpoint(ctx context.Context, endpoint string) (ml.Client, error) {
	config, err := ConfigFromEndpoint(endpoint)
	if err != nil {
		return nil, err
	}

	return New(ctx, config)
}

// NewWithToken creates a client sending a Bearer token.
func NewWithToken(ctx context.Context, endpoint, token string) (ml.Client, error) {
	config, err := ConfigFromEndpoint(endpoint)
	if err != nil {
		return nil, err
	}

	config.AccessToken = token

	return New(ctx, config)
}

// NewWithPassword creates a client using HTTP basic authentication.
func NewWithPassword(ctx context.Context, endpoint, username, password string) (ml.Client, error) {
	config, err := ConfigFromEndpoint(endpoint)
	if err != nil {
		return nil, err
	}

	config.Username = username
	config.Password = password

	return New(ctx, config)
}

// ConfigFromEndpoint splits an endpoint URL into a Config. A bare host is
// accepted and treated as http.
func ConfigFromEndpoint(endpoint string) (*ml.Config, error) {
	if !strings.Contains(endpoint, "://") {
		endpoint = constants.DefaultScheme + "://" + endpoint
	}

	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parsing endpoint: %w", err)
	}

	config := &ml.Config{
		Scheme: parsed.Scheme,
		Host:   parsed.Hostname(),
	}

	if port := parsed.Port(); port != "" {
		config.Port, err = strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ml.ErrInvalidPort, port)
		}
	}

	return config, nil
}
