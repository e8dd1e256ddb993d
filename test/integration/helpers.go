//go:build integration

package integration

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"testing"
	"time"
)

// TestConfig holds configuration for integration tests
type TestConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	Database   string
	BinaryPath string
	Verbose    bool
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() *TestConfig {
	port, err := strconv.Atoi(os.Getenv("MLCLIENT_TEST_PORT"))
	if err != nil {
		port = 8000
	}

	return &TestConfig{
		Host:       os.Getenv("MLCLIENT_TEST_HOST"),
		Port:       port,
		Username:   os.Getenv("MLCLIENT_TEST_USERNAME"),
		Password:   os.Getenv("MLCLIENT_TEST_PASSWORD"),
		Database:   os.Getenv("MLCLIENT_TEST_DATABASE"),
		BinaryPath: getBinaryPath(),
		Verbose:    os.Getenv("MLCLIENT_TEST_VERBOSE") == "true",
	}
}

// getBinaryPath determines the path to the mlclient binary
func getBinaryPath() string {
	if path := os.Getenv("MLCLIENT_BINARY_PATH"); path != "" {
		return path
	}

	candidates := []string{
		"../../mlclient",
		"./mlclient",
		"../mlclient",
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "mlclient"
}

// SkipIfMissingServer skips the test when no server is configured
func (config *TestConfig) SkipIfMissingServer(t *testing.T) {
	t.Helper()

	if config.Host == "" {
		t.Skip("MLCLIENT_TEST_HOST not set, skipping integration test")
	}
}

// SkipIfMissingBinary skips the test when the CLI binary is not built
func (config *TestConfig) SkipIfMissingBinary(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath(config.BinaryPath); err != nil {
		t.Skipf("mlclient binary not found at %s, skipping integration test", config.BinaryPath)
	}
}

// CommandRunner runs mlclient commands against the configured server
type CommandRunner struct {
	config *TestConfig
	t      *testing.T
}

// NewCommandRunner creates a new command runner
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	return &CommandRunner{
		config: config,
		t:      t,
	}
}

// connectionArgs are the flags pointing a command at the test server
func (runner *CommandRunner) connectionArgs() []string {
	args := []string{
		"--host", runner.config.Host,
		"--port", strconv.Itoa(runner.config.Port),
		"--user", runner.config.Username,
		"--password", runner.config.Password,
	}

	if runner.config.Database != "" {
		args = append(args, "--database", runner.config.Database)
	}

	return args
}

// Run executes an mlclient command and returns its output
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	args = append(runner.connectionArgs(), args...)

	cmd := exec.Command(runner.config.BinaryPath, args...) // #nosec G204 -- test binary
	cmd.Env = append(os.Environ(), "HOME="+runner.t.TempDir())

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.BinaryPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// GenerateTestURI creates a unique document URI
func GenerateTestURI(prefix, extension string) string {
	return fmt.Sprintf("/mlclient-it/%s-%d%s", prefix, time.Now().UnixNano(), extension)
}

// CleanupDocument attempts to delete a test document
func (runner *CommandRunner) CleanupDocument(uri string) {
	stdout, stderr, err := runner.Run("docs", "delete", uri)
	if err != nil && runner.config.Verbose {
		runner.t.Logf("Cleanup warning for %s: %s\nStderr: %s", uri, stdout, stderr)
	}
}
