// cmd/chlite/main.go
//
// chlite - interactive shell for the in-memory chlite SQL engine.
//
// Usage:
//
//	chlite
//
// There is no database file: every run starts from an empty catalog.
// Use .help for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"chlite/pkg/cli"
)

func main() {
	root := &cobra.Command{
		Use:           "chlite",
		Short:         "Interactive shell for the in-memory chlite SQL engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			repl := cli.NewREPL(os.Stdout, os.Stderr)
			repl.Run()
			return nil
		},
	}

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
