package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "manifest-import",
		Short:         "Parse fleet tracker manifest exports and load them into the tenant store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newImportCmd())
	cmd.AddCommand(newParseCmd())
	cmd.AddCommand(newMigrateCmd())
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		code := exitCode(err)
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(code)
	}
}
