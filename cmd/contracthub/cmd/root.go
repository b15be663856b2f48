// Package cmd holds the contracthub command tree.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "contracthub",
		Short: "ContractHub - customer and contract lifecycle service",
		Long: `contracthub runs the ContractHub HTTP API and provides operator
commands for bootstrapping users and inspecting the role table.`,
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newUsersCmd(), newRolesCmd())
	return root
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
