package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"baseliner/internal/clierr"
	"baseliner/internal/config"
	"baseliner/internal/logging"
	"baseliner/internal/model"
	"baseliner/internal/pipeline"
)

type scanFlags struct {
	configPath string
	targets    []string
	cachePath  string
	noCache    bool
	jsonOut    bool
	since      string
	threshold  float64
	exitZero   bool
	debug      bool
}

func newScanCmd() *cobra.Command {
	var f scanFlags

	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Scan a directory and report feature usages",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) > 0 {
				root = args[0]
			}
			if info, err := os.Stat(root); err != nil || !info.IsDir() {
				return clierr.Newf(clierr.CodeUsage, "%s is not a directory", root)
			}

			cfg, err := config.LoadConfig(f.configPath)
			if err != nil {
				return clierr.Usage(err)
			}
			if err := applyFlags(cmd, cfg, f); err != nil {
				return clierr.Usage(err)
			}

			logger, err := logging.New(cfg.Debug)
			if err != nil {
				return clierr.Wrap(clierr.CodeRuntime, "logger setup failed", err)
			}
			defer func() { _ = logger.Sync() }()

			s := &pipeline.Scan{
				Root:    root,
				Config:  cfg,
				Logger:  logger,
				Since:   f.since,
				NoCache: f.noCache,
			}
			report, err := s.Run(cmd.Context())
			if err != nil {
				return clierr.Wrap(clierr.CodeRuntime, "scan failed", err)
			}

			if f.jsonOut {
				err = writeJSON(cmd.OutOrStdout(), report)
			} else {
				err = writeText(cmd.OutOrStdout(), report, logger)
			}
			if err != nil {
				return clierr.Wrap(clierr.CodeRuntime, "failed to write report", err)
			}

			if n := report.NeedsGuard(); n > 0 && !f.exitZero {
				return clierr.Newf(clierr.CodeFindings, "%d usages need a guard", n)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.configPath, "config", "c", "", "path to the config file (default "+config.DefaultFile+" if present)")
	flags.StringArrayVarP(&f.targets, "targets", "t", nil, "browserslist query; repeatable, overrides configured targets")
	flags.StringVar(&f.cachePath, "cache", "", "cache file; .db, .sqlite and .sqlite3 select SQLite")
	flags.BoolVar(&f.noCache, "no-cache", false, "neither read nor write the result cache")
	flags.BoolVar(&f.jsonOut, "json", false, "print the report as JSON")
	flags.StringVar(&f.since, "since", "", "only report findings on lines changed since this git ref")
	flags.Float64Var(&f.threshold, "unsupported-threshold", 0, "treat needs-guard usages unsupported by at most this percent of targets as safe")
	flags.BoolVar(&f.exitZero, "exit-zero", false, "exit 0 even when usages need a guard")
	flags.BoolVar(&f.debug, "debug", false, "enable debug logging")

	return cmd
}

func applyFlags(cmd *cobra.Command, cfg *config.Config, f scanFlags) error {
	flags := cmd.Flags()
	if flags.Changed("targets") {
		cfg.Targets = f.targets
	}
	if flags.Changed("cache") {
		cfg.Cache.Path = f.cachePath
	}
	if flags.Changed("unsupported-threshold") {
		t := f.threshold
		cfg.UnsupportedThreshold = &t
	}
	if f.debug {
		cfg.Debug = true
	}
	return cfg.Validate()
}

func writeJSON(w io.Writer, report *pipeline.Report) error {
	if report.Findings == nil {
		report.Findings = []model.Finding{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

func writeText(w io.Writer, report *pipeline.Report, logger *zap.SugaredLogger) error {
	if len(report.Targets) == 0 {
		logger.Warn("No browser targets configured; unsupported shares are omitted")
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, f := range report.Findings {
		share := "-"
		if f.UnsupportedPercent != nil {
			share = fmt.Sprintf("%.0f%% unsupported", *f.UnsupportedPercent)
		}
		fmt.Fprintf(tw, "%s:%d:%d\t%s\t%s\t%s\t%s\n", f.File, f.Line, f.Column, f.Advice, f.FeatureID, f.Title, share)
		if f.Advice == model.AdviceNeedsGuard && f.Suggestion != "" {
			fmt.Fprintf(tw, "\t\t\t%s\t\n", f.Suggestion)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\n%d files scanned, %d findings, %d need a guard", report.FilesScanned, len(report.Findings), report.NeedsGuard())
	if err != nil {
		return err
	}
	if report.CacheHits > 0 {
		fmt.Fprintf(w, " (%d from cache)", report.CacheHits)
	}
	_, err = fmt.Fprintln(w)
	return err
}
