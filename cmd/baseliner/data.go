package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"baseliner/internal/clierr"
	"baseliner/internal/compat"
	"baseliner/internal/features"
)

func newDataCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Manage the compatibility datasets",
	}
	cmd.AddCommand(newDataExtractCmd())
	return cmd
}

func newDataExtractCmd() *cobra.Command {
	var caniusePath, webFeaturesPath, outDir string

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Trim full caniuse and web-features data files to the feature catalog",
		Long: "extract reads caniuse-lite's full data file (data-2.0.json from the caniuse-db package) and web-features' data.json, " +
			"keeps every agent plus the entries the feature catalog refers to, and writes caniuse.json and web-features.json into --out.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if caniusePath == "" || webFeaturesPath == "" {
				return clierr.Usage(errors.New("both --caniuse and --web-features are required"))
			}
			ds, err := compat.LoadDataset(caniusePath, webFeaturesPath)
			if err != nil {
				return clierr.Usage(err)
			}
			trimmed := compat.Extract(ds, features.Default())
			if err := compat.WriteDataset(trimmed, outDir); err != nil {
				return clierr.Wrap(clierr.CodeRuntime, "extract failed", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %d caniuse features, %d web features and %d agents to %s\n",
				len(trimmed.Caniuse.Data), len(trimmed.WebFeatures.Features), len(trimmed.Caniuse.Agents), outDir)
			return err
		},
	}
	cmd.Flags().StringVar(&caniusePath, "caniuse", "", "path to the full caniuse data file")
	cmd.Flags().StringVar(&webFeaturesPath, "web-features", "", "path to web-features data.json")
	cmd.Flags().StringVar(&outDir, "out", "internal/compat/data", "directory to write the trimmed files into")
	return cmd
}
