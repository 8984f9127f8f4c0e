package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/spf13/cobra"

	"github.com/deploykit-k8s/deployctl/internal/kube"
)

// newDoctorCommand creates the "doctor" subcommand that runs environment preflight checks.
func newDoctorCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run environment preflight checks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := LoggerFromContext(cmd.Context())

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			return runDoctorChecks(ctx, logger, opts)
		},
	}

	return cmd
}

func runKubectlAuthCheck(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "kubectl", "auth", "can-i", "get", "pods")
	return cmd.Run()
}

func runDoctorChecks(ctx context.Context, logger *slog.Logger, opts *Options) error {
	var fatalErrs []error

	kubeClient := kube.NewClient(opts.Kubeconfig, opts.Context)
	if err := kubeClient.Available(ctx); err != nil {
		logger.Error("kubectl version check failed", "error", err)
		fatalErrs = append(fatalErrs, err)
	} else {
		logger.Info("kubectl version check ok")
	}

	if err := runKubectlAuthCheck(ctx); err != nil {
		logger.Error("kubectl auth check failed", "error", err)
		fatalErrs = append(fatalErrs, err)
	} else {
		logger.Info("kubectl auth check ok")
	}

	if info, err := os.Stat(opts.ManifestDir); err != nil || !info.IsDir() {
		logger.Warn("manifest directory not found", "dir", opts.ManifestDir)
	} else {
		logger.Info("manifest directory ok", "dir", opts.ManifestDir)
	}

	if len(fatalErrs) > 0 {
		return fmt.Errorf("doctor found %d fatal issue(s); see log for details", len(fatalErrs))
	}

	logger.Info("doctor checks completed successfully")
	return nil
}
