package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/deploykit-k8s/deployctl/internal/kube"
	"github.com/deploykit-k8s/deployctl/internal/logging"
	"github.com/deploykit-k8s/deployctl/internal/teardown"
)

// newCleanupCommand creates the "cleanup" subcommand that force-cleans stuck
// namespaces one after another.
func newCleanupCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cleanup NAMESPACE [NAMESPACE...]",
		Short: "Force-clean stuck namespaces (wedged pods, held storage, Terminating namespace)",
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 {
				return withExitCode(ExitUsage, fmt.Errorf("at least one namespace is required"))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := LoggerFromContext(cmd.Context())

			var envOpts cleanupEnv
			if err := parseEnv(&envOpts); err != nil {
				return err
			}

			cfg := teardown.Config{DrainAttempts: envOpts.DrainAttempts}
			if envOpts.DrainDelay != "" {
				delay, err := time.ParseDuration(envOpts.DrainDelay)
				if err != nil {
					return fmt.Errorf("invalid DEPLOYCTL_DRAIN_DELAY %q: %w", envOpts.DrainDelay, err)
				}
				cfg.DrainDelay = delay
			}

			kubeClient := kube.NewClient(opts.Kubeconfig, opts.Context)
			kubeClient.Out = logging.NewWriter(logger)
			kubeClient.Err = logging.NewWriter(logger)

			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Minute)
			defer cancel()

			if err := kubeClient.Available(ctx); err != nil {
				return withExitCode(ExitNoClient, err)
			}

			coordinator := teardown.NewCoordinator(teardown.NewKubectlCluster(kubeClient), logger, cfg)

			// Namespaces are processed to completion one at a time; a messy
			// namespace never blocks the next one.
			for _, namespace := range args {
				report := coordinator.Teardown(ctx, namespace)
				if n := report.Errors(); n > 0 {
					logger.Warn("teardown finished with tolerated failures", "namespace", namespace, "count", n)
				}
			}

			return nil
		},
	}

	return cmd
}
