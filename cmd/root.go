package cmd

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go-laser/logging"
	"go-laser/support"
)

// cmdLogger reports command failures on stderr regardless of the configured level.
var cmdLogger = logging.NewLogger(zerolog.InfoLevel, true)

// projectConfig is the configuration loaded before any subcommand runs.
var projectConfig *support.Config

var rootCmd = &cobra.Command{
	Use:               "go-laser",
	Short:             "Symbolic execution entry layer and SMT tooling for EVM bytecode",
	Long:              "go-laser stages symbolic EVM transactions and wraps the Z3 solver behind a small session API",
	PersistentPreRunE: cmdLoadConfig,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "path to a JSON configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "log level: trace, debug, info, warn or error")
}

func Execute() error {
	return rootCmd.Execute()
}

// cmdLoadConfig reads the configuration and sets up the global logger.
func cmdLoadConfig(cmd *cobra.Command, args []string) error {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	if configPath != "" {
		projectConfig, err = support.ReadConfigFromFile(configPath)
		if err != nil {
			cmdLogger.Error("Failed to read the configuration", err)
			return err
		}
	} else {
		projectConfig = support.DefaultConfig()
	}

	if cmd.Flags().Changed("log-level") {
		projectConfig.LogLevel, _ = cmd.Flags().GetString("log-level")
	}
	level, err := logging.ParseLevel(projectConfig.LogLevel)
	if err != nil {
		cmdLogger.Error("Failed to parse the log level", err)
		return err
	}
	logging.GlobalLogger = logging.NewLogger(level, true)

	if err = projectConfig.Validate(); err != nil {
		cmdLogger.Error("Invalid configuration", err)
		return err
	}
	return nil
}
