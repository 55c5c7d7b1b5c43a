package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"curaframe/internal/catalog"
	"curaframe/internal/platform/logger"
)

// options are the persistent flags shared by every subcommand.
type options struct {
	catalogPath string
	logLevel    string
}

func (o *options) catalog() (*catalog.Catalog, error) {
	if o.catalogPath != "" {
		return catalog.LoadFile(o.catalogPath)
	}
	return catalog.Default()
}

// logger writes to stderr so command output stays machine-readable.
func (o *options) logger(cmd *cobra.Command) *slog.Logger {
	return logger.NewWithWriter(cmd.ErrOrStderr(), o.logLevel, "text")
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "curaframe",
		Short: "Evaluate candidates against explicit, auditable constraints",
		Long: `curaframe checks candidate property predictions against named constraint
bundles, optionally adjusted for a patient population, and reports every
violation with its rationale and provenance.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.catalogPath, "catalog", "", "catalog YAML file (default: embedded catalog)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	root.AddCommand(
		newEvaluateCmd(opts),
		newBundlesCmd(opts),
		newExportCmd(opts),
	)
	return root
}
