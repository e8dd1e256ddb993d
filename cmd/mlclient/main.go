package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/monasticus/mlclient/cmd/mlclient/commands"
	"github.com/monasticus/mlclient/internal/constants"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "mlclient",
	Short: "Document database REST API CLI",
	Long: `A command-line interface for a document database REST application server.

It evaluates XQuery and JavaScript, and reads, writes and deletes documents
together with their metadata.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.mlclient/config.yml)")
	rootCmd.PersistentFlags().String("host", constants.DefaultHost, "REST application server host")
	rootCmd.PersistentFlags().IntP("port", "p", constants.DefaultPort, "REST application server port")
	rootCmd.PersistentFlags().String("scheme", constants.DefaultScheme, "http or https")
	rootCmd.PersistentFlags().StringP("user", "u", "", "username for basic authentication")
	rootCmd.PersistentFlags().String("password", "", "password for basic authentication")
	rootCmd.PersistentFlags().StringP("token", "t", "", "bearer token")
	rootCmd.PersistentFlags().StringP("database", "d", "", "content database override")
	rootCmd.PersistentFlags().StringP("output", "o", constants.FormatTable, "output format (table, json, yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("host", rootCmd.PersistentFlags().Lookup("host"))
	_ = viper.BindPFlag("port", rootCmd.PersistentFlags().Lookup("port"))
	_ = viper.BindPFlag("scheme", rootCmd.PersistentFlags().Lookup("scheme"))
	_ = viper.BindPFlag("username", rootCmd.PersistentFlags().Lookup("user"))
	_ = viper.BindPFlag("password", rootCmd.PersistentFlags().Lookup("password"))
	_ = viper.BindPFlag("token", rootCmd.PersistentFlags().Lookup("token"))
	_ = viper.BindPFlag("database", rootCmd.PersistentFlags().Lookup("database"))
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add commands
	rootCmd.AddCommand(commands.NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(commands.NewConfigCommand())
	rootCmd.AddCommand(commands.NewEvalCommand())
	rootCmd.AddCommand(commands.NewDocsCommand())
}

func initConfig() {
	cfgFile := viper.GetString("config")

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		// Search config in ~/.mlclient/config.yml
		viper.AddConfigPath(filepath.Join(home, ".mlclient"))
		viper.SetConfigType("yml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match
	viper.SetEnvPrefix("MLCLIENT")
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
