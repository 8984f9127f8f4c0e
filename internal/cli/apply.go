package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/deploykit-k8s/deployctl/internal/applier"
	"github.com/deploykit-k8s/deployctl/internal/env"
	"github.com/deploykit-k8s/deployctl/internal/kube"
	"github.com/deploykit-k8s/deployctl/internal/logging"
	"github.com/deploykit-k8s/deployctl/internal/manifest"
)

// newApplyCommand creates the "apply" subcommand that walks the manifest tree
// in dependency order and applies every file best-effort.
func newApplyCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply the manifest tree to the cluster in dependency order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := LoggerFromContext(cmd.Context())

			var envOpts applyEnv
			if err := parseEnv(&envOpts); err != nil {
				return err
			}
			strict, _ := cmd.Flags().GetBool("strict")
			strict = strict || envOpts.Strict
			envFiles, _ := cmd.Flags().GetStringSlice("env-file")
			if len(envFiles) == 0 {
				envFiles = envOpts.EnvFiles
			}

			kubeClient := kube.NewClient(opts.Kubeconfig, opts.Context)
			kubeClient.Out = logging.NewWriter(logger)
			kubeClient.Err = logging.NewWriter(logger)

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
			defer cancel()

			if err := kubeClient.Available(ctx); err != nil {
				return withExitCode(ExitUsage, err)
			}

			vars := env.FromOS()
			fileVars, err := env.LoadEnvFiles("", envFiles)
			if err != nil {
				return err
			}
			vars = env.Merge(vars, fileVars)
			binding := applier.BindingFromVars(vars)
			if !binding.Resolved() {
				logger.Warn("worker node binding unresolved; parameterized storage manifests will be skipped", "env", binding.EnvVar)
			}

			src, err := manifest.Scan(opts.ManifestDir)
			if err != nil {
				return err
			}

			logger.Info("applying manifest tree", "root", src.Root, "strict", strict)

			summary, err := applier.New(kubeClient, logger).Run(ctx, src, binding)
			if err != nil {
				return err
			}

			if strict && summary.Failed() > 0 {
				return fmt.Errorf("apply pass completed with %d failed file(s)", summary.Failed())
			}
			return nil
		},
	}

	cmd.Flags().Bool("strict", false, "Aggregate per-file failures into a non-zero exit code")
	cmd.Flags().StringSlice("env-file", nil, "Paths to .env files providing the worker node binding, merged in order")

	return cmd
}
