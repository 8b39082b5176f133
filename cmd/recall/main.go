// recall is a headless front end for the per-project memory library. It
// composes directives, inspects the running summary, and drives the
// naming/summary pipeline for a single turn, all against the chat
// directory of the target project.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	projectRoot string
	configPath  string
)

func main() {
	root := &cobra.Command{
		Use:   "recall",
		Short: "Per-project memory for LLM chat sessions",
		Long: "recall maintains a per-project conversation memory: it derives a system\n" +
			"directive from the project summary and description, names new transcripts,\n" +
			"and folds each conversation into the running summary.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&projectRoot, "project", "p", ".", "project root directory")
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to recall config file (YAML)")

	root.AddCommand(newDirectiveCmd())
	root.AddCommand(newSummaryCmd())
	root.AddCommand(newSessionsCmd())
	root.AddCommand(newTurnCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func fail(err error) error {
	fmt.Fprintf(os.Stderr, "recall: %v\n", err)
	return err
}
