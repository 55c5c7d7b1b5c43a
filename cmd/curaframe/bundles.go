package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newBundlesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "bundles",
		Short: "List constraint bundles and population presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := opts.catalog()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "BUNDLE\tCONSTRAINTS\tDESCRIPTION")
			for _, name := range cat.BundleNames() {
				cs, err := cat.Bundle(name)
				if err != nil {
					return err
				}
				names := make([]string, len(cs))
				for i, c := range cs {
					names[i] = c.Name
				}
				desc, _ := cat.Describe(name)
				fmt.Fprintf(tw, "%s\t%s\t%s\n", name, strings.Join(names, ","), desc)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nPopulations: %s\n", strings.Join(cat.PopulationNames(), ", "))
			return nil
		},
	}
}
