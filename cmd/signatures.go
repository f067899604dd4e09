package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go-laser/support"
)

var signaturesCmd = &cobra.Command{
	Use:   "signatures",
	Short: "Manages the function signature database",
}

var signaturesAddCmd = &cobra.Command{
	Use:   "add <text signature>...",
	Short: "Adds function signatures, keyed by their selector",
	Args:  cobra.MinimumNArgs(1),
	RunE:  cmdRunSignaturesAdd,
}

var signaturesGetCmd = &cobra.Command{
	Use:   "get <0x selector>",
	Short: "Prints the text signatures known for a selector",
	Args:  cobra.ExactArgs(1),
	RunE:  cmdRunSignaturesGet,
}

func init() {
	signaturesCmd.AddCommand(signaturesAddCmd, signaturesGetCmd)
	rootCmd.AddCommand(signaturesCmd)
}

func cmdRunSignaturesAdd(cmd *cobra.Command, args []string) error {
	db, err := support.OpenSignatureDB(projectConfig.SignatureDBPath)
	if err != nil {
		cmdLogger.Error("Failed to open the signature database", err)
		return err
	}
	defer db.Close()

	for _, textSig := range args {
		selector := support.Selector(textSig)
		if err := db.Add(selector, textSig); err != nil {
			cmdLogger.Error("Failed to add a signature", err)
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", selector, textSig)
	}
	return nil
}

func cmdRunSignaturesGet(cmd *cobra.Command, args []string) error {
	db, err := support.OpenSignatureDB(projectConfig.SignatureDBPath)
	if err != nil {
		cmdLogger.Error("Failed to open the signature database", err)
		return err
	}
	defer db.Close()

	sigs, err := db.Get(args[0])
	if err != nil {
		cmdLogger.Error("Failed to look up the selector", err)
		return err
	}
	for _, sig := range sigs {
		fmt.Fprintln(cmd.OutOrStdout(), sig)
	}
	return nil
}
