package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"baseliner/internal/clierr"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "0.0.0-dev"

// NewRootCmd constructs the baseliner root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "baseliner",
		Short:         "Find web platform features that are not Baseline yet",
		Long:          "baseliner scans JavaScript, TypeScript, CSS and HTML sources for platform features that are not broadly interoperable and reports whether each usage is guarded.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return clierr.Usage(err)
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number of baseliner",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "baseliner version %s\n", version)
		},
	})
	cmd.AddCommand(newScanCmd())
	cmd.AddCommand(newFeaturesCmd())
	cmd.AddCommand(newDataCmd())

	return cmd
}
