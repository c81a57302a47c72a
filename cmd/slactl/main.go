package main

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:          filepath.Base(os.Args[0]),
		Short:        "Evaluate helpdesk SLA budgets from the command line",
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.AddCommand(newEvalCmd(), newReportCmd(), newHashPasswordCmd())
	return root
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}
