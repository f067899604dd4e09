package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go-laser/disassembler"
	"go-laser/support"
	"golang.org/x/exp/maps"
)

var disassembleCmd = &cobra.Command{
	Use:   "disassemble [hex]",
	Short: "Disassembles EVM bytecode",
	Long:  `Disassembles hex encoded EVM bytecode given as argument or with --file, naming functions from the signature database`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  cmdRunDisassemble,
}

func init() {
	disassembleCmd.Flags().String("file", "", "read the bytecode from a file")
	rootCmd.AddCommand(disassembleCmd)
}

func cmdRunDisassemble(cmd *cobra.Command, args []string) error {
	code, err := bytecodeArgument(cmd, args)
	if err != nil {
		cmdLogger.Error("Failed to run the disassemble command", err)
		return err
	}

	// The signature database is optional here; only an existing one is opened.
	var resolver disassembler.SignatureResolver
	if _, statErr := os.Stat(projectConfig.SignatureDBPath); statErr == nil {
		db, err := support.OpenSignatureDB(projectConfig.SignatureDBPath)
		if err != nil {
			cmdLogger.Error("Failed to open the signature database", err)
			return err
		}
		defer db.Close()
		resolver = db
	}

	d, err := disassembler.NewDisassembly(code, resolver)
	if err != nil {
		cmdLogger.Error("Failed to disassemble the bytecode", err)
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, d.String())
	if len(d.FunctionNameToAddress) > 0 {
		fmt.Fprintln(out)
		names := maps.Keys(d.FunctionNameToAddress)
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(out, "%d %s\n", d.FunctionNameToAddress[name], name)
		}
	}
	return nil
}

func bytecodeArgument(cmd *cobra.Command, args []string) (string, error) {
	path, _ := cmd.Flags().GetString("file")
	switch {
	case path != "" && len(args) > 0:
		return "", fmt.Errorf("bytecode given both as argument and with --file")
	case path != "":
		b, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	case len(args) == 1:
		return args[0], nil
	default:
		return "", fmt.Errorf("no bytecode given")
	}
}
