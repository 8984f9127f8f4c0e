package cli

import (
	envparse "github.com/caarlos0/env/v11"

	"github.com/deploykit-k8s/deployctl/internal/logging"
)

// rootEnv defines root CLI defaults sourced from DEPLOYCTL_* env vars.
type rootEnv struct {
	// ManifestDir is the manifest tree root from DEPLOYCTL_MANIFEST_DIR.
	ManifestDir string `env:"DEPLOYCTL_MANIFEST_DIR"`
	// Kubeconfig is the kubeconfig path from DEPLOYCTL_KUBECONFIG.
	Kubeconfig string `env:"DEPLOYCTL_KUBECONFIG"`
	// Context is the kubeconfig context from DEPLOYCTL_CONTEXT.
	Context string `env:"DEPLOYCTL_CONTEXT"`
	// LogLevel is the logging level from DEPLOYCTL_LOG_LEVEL.
	LogLevel string `env:"DEPLOYCTL_LOG_LEVEL"`
}

// applyEnv captures DEPLOYCTL_* inputs for the apply command.
type applyEnv struct {
	// Strict aggregates per-file failures into the exit code from DEPLOYCTL_STRICT.
	Strict bool `env:"DEPLOYCTL_STRICT"`
	// EnvFiles lists optional .env file paths from DEPLOYCTL_ENV_FILE
	// (comma-separated), merged in order.
	EnvFiles []string `env:"DEPLOYCTL_ENV_FILE" envSeparator:","`
}

// cleanupEnv captures DEPLOYCTL_* inputs for the cleanup command.
type cleanupEnv struct {
	// DrainAttempts overrides the drain poll bound from DEPLOYCTL_DRAIN_ATTEMPTS.
	DrainAttempts int `env:"DEPLOYCTL_DRAIN_ATTEMPTS"`
	// DrainDelay overrides the drain poll delay from DEPLOYCTL_DRAIN_DELAY.
	DrainDelay string `env:"DEPLOYCTL_DRAIN_DELAY"`
}

// parseEnv fills target from DEPLOYCTL_* env vars via caarlos0/env.
func parseEnv(target any) error {
	return envparse.Parse(target)
}

// applyRootEnvDefaults seeds root options from the environment before flag parsing.
func applyRootEnvDefaults(opts *Options) error {
	var vals rootEnv
	if err := parseEnv(&vals); err != nil {
		return err
	}
	if vals.ManifestDir != "" {
		opts.ManifestDir = vals.ManifestDir
	}
	if vals.Kubeconfig != "" {
		opts.Kubeconfig = vals.Kubeconfig
	}
	if vals.Context != "" {
		opts.Context = vals.Context
	}
	if vals.LogLevel != "" {
		opts.LogLevel = logging.ParseLevel(vals.LogLevel)
	}
	return nil
}
