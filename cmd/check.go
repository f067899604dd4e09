package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"go-laser/laser/smt"
	"go-laser/laser/smt/z3"
	"golang.org/x/exp/maps"
)

var checkCmd = &cobra.Command{
	Use:   "check <file.smt2>",
	Short: "Checks the satisfiability of an SMT-LIB2 script",
	Long:  `Checks the satisfiability of the assertions of an SMT-LIB2 script and prints the verdict and, when satisfiable, the model`,
	Args:  cobra.ExactArgs(1),
	RunE:  cmdRunCheck,
}

func init() {
	checkCmd.Flags().Bool("no-model", false, "only print the verdict")
	checkCmd.Flags().Bool("sexpr", false, "print the solver assertions before checking")
	rootCmd.AddCommand(checkCmd)
}

func cmdRunCheck(cmd *cobra.Command, args []string) error {
	script, err := os.ReadFile(args[0])
	if err != nil {
		cmdLogger.Error("Failed to read the SMT-LIB2 script", err)
		return err
	}
	noModel, _ := cmd.Flags().GetBool("no-model")
	printSexpr, _ := cmd.Flags().GetBool("sexpr")

	ctx := z3.NewContext(nil)
	defer ctx.Close()
	assertions, err := ctx.ParseSMTLIB2String(string(script))
	if err != nil {
		cmdLogger.Error("Failed to parse the SMT-LIB2 script", err)
		return err
	}

	stats := &smt.Statistics{}
	solver := smt.NewSolver(ctx, smt.WithStatistics(stats))
	defer solver.Close()
	solver.SetTimeout(projectConfig.SolverTimeout)
	solver.Add(assertions...)

	out := cmd.OutOrStdout()
	if printSexpr {
		fmt.Fprintln(out, solver.Sexpr())
	}

	result := solver.Check()
	fmt.Fprintln(out, result)
	if result == smt.Sat && !noModel {
		model := solver.Model()
		defer model.Close()
		assignments := model.Assignments()
		names := maps.Keys(assignments)
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(out, "%s = %s\n", name, assignments[name])
		}
	}
	cmdLogger.Debug(stats.String())
	return nil
}
