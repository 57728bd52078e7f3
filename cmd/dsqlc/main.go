// Command dsqlc is a thin CLI wrapper around the dsqlc package: it loads a
// schema/config JSON file and a query JSON file and prints the compiled
// SQL to stdout. It exists purely as a manual-testing harness for the
// compiler (spec §1: the CLI, JSON loading and config normalization all
// sit outside the core's scope) and is grounded on graphjin's cmd/cmd.go
// cobra setup, trimmed to this module's single subcommand.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	cobra.EnableCommandSorting = false
	rootCmd := &cobra.Command{
		Use:   "dsqlc",
		Short: "Compile declarative queries into SQL",
	}
	rootCmd.AddCommand(compileCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
