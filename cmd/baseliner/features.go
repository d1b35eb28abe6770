package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"baseliner/internal/clierr"
	"baseliner/internal/features"
	"baseliner/internal/model"
)

func newFeaturesCmd() *cobra.Command {
	var (
		jsonOut bool
		kind    string
	)

	cmd := &cobra.Command{
		Use:   "features",
		Short: "List the detectable features",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := parseKind(kind)
			if err != nil {
				return clierr.Usage(err)
			}

			reg := features.Default()
			list := reg.All()
			if k != model.KindUnknown {
				list = reg.ForKind(k)
			}

			if jsonOut {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(list)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tBASELINE\tKINDS\tTITLE")
			for _, m := range list {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.ID, m.Baseline, kinds(m.Kinds), m.Title)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "\nscanned extensions: %s\n", strings.Join(model.SupportedExtensions(k), " "))
			return err
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the catalog as JSON")
	cmd.Flags().StringVar(&kind, "kind", "", "only list features of this file kind: script, style or markup")
	return cmd
}

func parseKind(s string) (model.FileKind, error) {
	switch k := model.FileKind(strings.ToLower(s)); k {
	case model.KindUnknown, model.KindScript, model.KindStyle, model.KindMarkup:
		return k, nil
	}
	return model.KindUnknown, fmt.Errorf("unknown file kind %q", s)
}

func kinds(ks []model.FileKind) string {
	out := make([]string, 0, len(ks))
	for _, k := range ks {
		out = append(out, string(k))
	}
	return strings.Join(out, ",")
}
