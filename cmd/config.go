package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go-laser/support"
)

// DefaultConfigFilename is the file config init writes when --out is not given.
const DefaultConfigFilename = "laser.json"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manages the analysis configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Writes the default configuration",
	Args:  cobra.NoArgs,
	RunE:  cmdRunConfigInit,
}

func init() {
	configInitCmd.Flags().String("out", "", "output path for the new configuration file")
	configInitCmd.Flags().Bool("force", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func cmdRunConfigInit(cmd *cobra.Command, args []string) error {
	outputPath, _ := cmd.Flags().GetString("out")
	force, _ := cmd.Flags().GetBool("force")
	if outputPath == "" {
		workingDirectory, err := os.Getwd()
		if err != nil {
			cmdLogger.Error("Failed to run the config init command", err)
			return err
		}
		outputPath = filepath.Join(workingDirectory, DefaultConfigFilename)
	}

	if _, err := os.Stat(outputPath); err == nil && !force {
		err = os.ErrExist
		cmdLogger.Error("Refusing to overwrite "+outputPath+", use --force", err)
		return err
	}

	if err := support.DefaultConfig().WriteToFile(outputPath); err != nil {
		cmdLogger.Error("Failed to run the config init command", err)
		return err
	}
	if absoluteOutputPath, err := filepath.Abs(outputPath); err == nil {
		outputPath = absoluteOutputPath
	}
	cmdLogger.Info("Configuration successfully output to: ", outputPath)
	return nil
}
