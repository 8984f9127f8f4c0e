// Package cli defines the command-line interface for deployctl.
package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/deploykit-k8s/deployctl/internal/logging"
)

const (
	// defaultManifestDir is the default root of the manifest tree.
	defaultManifestDir = "."
)

// Options stores global CLI options shared between commands.
type Options struct {
	ManifestDir string
	Kubeconfig  string
	Context     string
	LogLevel    logging.Level
}

// Execute builds the root command, runs it with the provided args and logger, and returns any error.
func Execute(args []string, logger *slog.Logger) error {
	if logger == nil {
		logger = logging.NewLogger(os.Stderr, logging.LevelInfo)
	}

	rootOpts := &Options{
		ManifestDir: defaultManifestDir,
		LogLevel:    logging.LevelInfo,
	}
	if err := applyRootEnvDefaults(rootOpts); err != nil {
		return err
	}

	rootCmd := newRootCommand(rootOpts, logger)
	rootCmd.SetArgs(args)

	return rootCmd.Execute()
}

// newRootCommand constructs the root cobra.Command with global flags and subcommands.
func newRootCommand(opts *Options, logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "deployctl",
		Short:         "deployctl applies ordered Kubernetes manifests and force-cleans stuck namespaces",
		Long:          "deployctl is a one-shot apply/teardown orchestrator: it walks a manifest tree in dependency order, substitutes the worker-node placeholder in storage manifests, and recovers namespaces stuck in Terminating.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := logging.ParseLevel(cmd.Flag("log-level").Value.String())
			opts.LogLevel = level
			logger = logging.NewLogger(os.Stderr, level)
			cmd.SetContext(context.WithValue(cmd.Context(), loggerKey{}, logger))
			logger.Debug("logger initialized", "level", level)
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ManifestDir, "manifest-dir", "d", opts.ManifestDir, "Root directory of the manifest tree")
	cmd.PersistentFlags().StringVar(&opts.Kubeconfig, "kubeconfig", opts.Kubeconfig, "Path to kubeconfig file")
	cmd.PersistentFlags().StringVar(&opts.Context, "context", opts.Context, "Kubeconfig context name")
	// The flag default carries the DEPLOYCTL_LOG_LEVEL seed so an explicit
	// flag still wins while the env var takes effect otherwise.
	cmd.PersistentFlags().String("log-level", opts.LogLevel.String(), "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		newApplyCommand(opts),
		newCleanupCommand(opts),
		newPlanCommand(opts),
		newDoctorCommand(opts),
	)

	return cmd
}

// loggerKey is a private context key used to store a logger in command contexts.
type loggerKey struct{}

// LoggerFromContext extracts a logger from the context or falls back to a default logger.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return logging.NewLogger(os.Stderr, logging.LevelInfo)
	}
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return logging.NewLogger(os.Stderr, logging.LevelInfo)
}
