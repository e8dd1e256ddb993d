package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/monasticus/mlclient/internal/constants"
	"github.com/monasticus/mlclient/pkg/ml"
	"github.com/monasticus/mlclient/pkg/mlclient"
)

// Config represents the CLI configuration.
type Config struct {
	Host     string `json:"host"               yaml:"host"`
	Port     int    `json:"port"               yaml:"port"`
	Scheme   string `json:"scheme"             yaml:"scheme"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	Token    string `json:"token,omitempty"    yaml:"token,omitempty"`
	Database string `json:"database,omitempty" yaml:"database,omitempty"`
	Output   string `json:"output"             yaml:"output"`
}

// configKeys lists the keys accepted by config set and unset.
var configKeys = []string{"host", "port", "scheme", "username", "password", "token", "database", "output"}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Manage mlclient CLI connection settings stored in the configuration file",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective configuration after flags, environment and config file are merged",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			if config.Password != "" {
				config.Password = constants.MaskedSecret
			}

			if config.Token != "" {
				config.Token = constants.MaskedSecret
			}

			return render(cmd.OutOrStdout(), viper.GetString("output"), config, func(out io.Writer) error {
				return displayConfigTable(out, config)
			})
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a configuration value, one of: host, port, scheme, username, password, token, database, output",
		Args:  cobra.ExactArgs(2), //nolint:mnd // key and value
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			err := setConfigValue(config, args[0], args[1])
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", args[0])

			return nil
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Reset a configuration value to its default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			err := unsetConfigValue(config, args[0])
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", args[0])

			return nil
		},
	}
}

func loadConfig() *Config {
	return &Config{
		Host:     viper.GetString("host"),
		Port:     viper.GetInt("port"),
		Scheme:   viper.GetString("scheme"),
		Username: viper.GetString("username"),
		Password: viper.GetString("password"),
		Token:    viper.GetString("token"),
		Database: viper.GetString("database"),
		Output:   viper.GetString("output"),
	}
}

func setConfigValue(config *Config, key, value string) error {
	switch key {
	case "host":
		config.Host = value
	case "port":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %q", constants.ErrInvalidPortValue, value)
		}

		config.Port = port
	case "scheme":
		config.Scheme = value
	case "username":
		config.Username = value
	case "password":
		config.Password = value
	case "token":
		config.Token = value
	case "database":
		config.Database = value
	case "output":
		switch value {
		case constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
			config.Output = value
		default:
			return fmt.Errorf("%w: %s", constants.ErrUnsupportedOutput, value)
		}
	default:
		return fmt.Errorf("%w: %s (valid keys: %v)", constants.ErrUnknownConfigKey, key, configKeys)
	}

	return nil
}

func unsetConfigValue(config *Config, key string) error {
	switch key {
	case "host":
		config.Host = constants.DefaultHost
	case "port":
		config.Port = constants.DefaultPort
	case "scheme":
		config.Scheme = constants.DefaultScheme
	case "output":
		config.Output = constants.FormatTable
	case "username", "password", "token", "database":
		return setConfigValue(config, key, "")
	default:
		return fmt.Errorf("%w: %s (valid keys: %v)", constants.ErrUnknownConfigKey, key, configKeys)
	}

	return nil
}

func configFilePath() (string, error) {
	configFile := viper.ConfigFileUsed()
	if configFile != "" {
		return configFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ".mlclient", "config.yml"), nil
}

func saveConfigStruct(config *Config) error {
	configFile, err := configFilePath()
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func displayConfigTable(out io.Writer, config *Config) error {
	table := tablewriter.NewWriter(out)
	table.Header("Property", "Value")

	_ = table.Append([]string{"Host", config.Host})
	_ = table.Append([]string{"Port", strconv.Itoa(config.Port)})
	_ = table.Append([]string{"Scheme", config.Scheme})
	_ = table.Append([]string{"Username", valueOrNone(config.Username)})
	_ = table.Append([]string{"Password", valueOrNone(config.Password)})
	_ = table.Append([]string{"Token", valueOrNone(config.Token)})
	_ = table.Append([]string{"Database", valueOrNone(config.Database)})
	_ = table.Append([]string{"Output", config.Output})

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func valueOrNone(value string) string {
	if value == "" {
		return constants.None
	}

	return value
}

// clientConfig turns the CLI configuration into a client configuration,
// prompting for a missing password on a terminal.
func clientConfig(config *Config) (*ml.Config, error) {
	password := config.Password

	if config.Username != "" && password == "" && config.Token == "" {
		fd := int(os.Stdin.Fd()) //nolint:gosec // file descriptors fit in int
		if !term.IsTerminal(fd) {
			return nil, constants.ErrPasswordNotAvailable
		}

		_, _ = fmt.Fprint(os.Stderr, "Password: ")

		bytePassword, err := term.ReadPassword(fd)
		if err != nil {
			return nil, fmt.Errorf("failed to read password: %w", err)
		}

		_, _ = fmt.Fprintln(os.Stderr)

		password = string(bytePassword)
	}

	verbose := viper.GetBool("verbose")

	return &ml.Config{
		Host:        config.Host,
		Port:        config.Port,
		Scheme:      config.Scheme,
		Username:    config.Username,
		Password:    password,
		AccessToken: config.Token,
		Database:    config.Database,
		RetryMax:    constants.LowRetryMax,
		HTTPTimeout: constants.DefaultHTTPTimeout,
		Debug:       verbose,
		Logger:      NewLogger(os.Stderr, verbose),
		UserAgent:   "mlclient-cli",
	}, nil
}

// CreateClient builds a client from the merged CLI configuration.
func CreateClient(ctx context.Context) (ml.Client, error) {
	config, err := clientConfig(loadConfig())
	if err != nil {
		return nil, err
	}

	client, err := mlclient.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

// render writes data in the requested output format, using table for the
// table format.
func render(out io.Writer, format string, data interface{}, table func(io.Writer) error) error {
	switch format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", strings.Repeat(" ", constants.JSONIndentSize))

		return encoder.Encode(data)
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(out)

		return encoder.Encode(data)
	case constants.FormatTable, "":
		return table(out)
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnsupportedOutput, format)
	}
}
