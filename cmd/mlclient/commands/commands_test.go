package commands_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monasticus/mlclient/cmd/mlclient/commands"
)

func TestNewDocsCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewDocsCommand()
	assert.Equal(t, "docs", cmd.Use)
	assert.Contains(t, cmd.Aliases, "documents")

	for _, name := range []string{"get", "put", "delete"} {
		sub := findSubcommand(cmd, name)
		require.NotNil(t, sub, "missing subcommand %s", name)
	}

	get := findSubcommand(cmd, "get")
	assert.NotNil(t, get.Flags().Lookup("category"))
	assert.NotNil(t, get.Flags().Lookup("raw"))

	put := findSubcommand(cmd, "put")
	assert.NotNil(t, put.Flags().Lookup("file"))
	assert.NotNil(t, put.Flags().Lookup("collection"))
}

func TestNewEvalCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewEvalCommand()
	assert.Equal(t, "eval [CODE]", cmd.Use)

	for _, flag := range []string{"file", "javascript", "var", "as", "headers"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "missing flag %s", flag)
	}
}

func TestNewConfigCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewConfigCommand()

	for _, name := range []string{"show", "set", "unset"} {
		assert.NotNil(t, findSubcommand(cmd, name), "missing subcommand %s", name)
	}
}

// configureServer points the global configuration at server. Tests using it
// must not run in parallel.
func configureServer(t *testing.T, server *httptest.Server) {
	t.Helper()

	serverURL, err := url.Parse(server.URL)
	require.NoError(t, err)

	port, err := strconv.Atoi(serverURL.Port())
	require.NoError(t, err)

	viper.Set("host", serverURL.Hostname())
	viper.Set("port", port)
	viper.Set("scheme", "http")
	viper.Set("username", "admin")
	viper.Set("password", "admin")
	viper.Set("output", "json")

	t.Cleanup(viper.Reset)
}

//nolint:paralleltest // mutates global configuration
func TestEvalCommand_Execute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/v1/eval", request.URL.Path)
		assert.NoError(t, request.ParseForm())
		assert.Equal(t, "fn:count(())", request.PostForm.Get("xquery"))
		assert.JSONEq(t, `{"n":10}`, request.PostForm.Get("vars"))

		writer.Header().Set("Content-Type", "text/plain")
		writer.Header().Set("X-Primitive", "integer")
		_, _ = writer.Write([]byte("0"))
	}))
	defer server.Close()

	configureServer(t, server)

	var out bytes.Buffer

	cmd := commands.NewEvalCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"fn:count(())", "--var", "n=10"})

	err := cmd.ExecuteContext(context.Background())
	require.NoError(t, err)

	var item commands.EvalItem

	require.NoError(t, json.Unmarshal(out.Bytes(), &item))
	assert.Equal(t, "integer", item.Type)
	assert.Equal(t, float64(0), item.Value)
}

//nolint:paralleltest // mutates global configuration
func TestDocsGetCommand_Execute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, []string{"/a.txt"}, request.URL.Query()["uri"])

		writer.Header().Set("Content-Type", "text/plain")
		writer.Header().Set("Vnd.marklogic.document-format", "text")
		_, _ = writer.Write([]byte("hello"))
	}))
	defer server.Close()

	configureServer(t, server)

	var out bytes.Buffer

	cmd := commands.NewDocsCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"get", "/a.txt"})

	err := cmd.ExecuteContext(context.Background())
	require.NoError(t, err)

	var views []commands.DocumentView

	require.NoError(t, json.Unmarshal(out.Bytes(), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "/a.txt", views[0].URI)
	assert.Equal(t, "text", views[0].Format)
	assert.Equal(t, "hello", views[0].Content)
}
