package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"curaframe/internal/evaluation"
)

func newExportCmd(opts *options) *cobra.Command {
	var (
		bundle string
		format string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print a bundle's constraints with rationale and provenance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := opts.catalog()
			if err != nil {
				return err
			}
			engine, err := cat.NewEngine(bundle,
				evaluation.WithName(bundle),
				evaluation.WithLogger(opts.logger(cmd)))
			if err != nil {
				return err
			}
			export := engine.Export()
			switch format {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(export)
			case "yaml":
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				if err := enc.Encode(export); err != nil {
					return err
				}
				return enc.Close()
			default:
				return fmt.Errorf("unknown format %q (json or yaml)", format)
			}
		},
	}
	cmd.Flags().StringVarP(&bundle, "bundle", "b", "core_safety", "constraint bundle")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	return cmd
}
