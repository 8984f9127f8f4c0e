package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploykit-k8s/deployctl/internal/logging"
)

func runRoot(t *testing.T, opts *Options, args ...string) {
	t.Helper()
	require.NoError(t, applyRootEnvDefaults(opts))
	cmd := newRootCommand(opts, nil)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
}

func TestLogLevelFromEnv(t *testing.T) {
	t.Setenv("DEPLOYCTL_LOG_LEVEL", "debug")

	opts := &Options{ManifestDir: t.TempDir(), LogLevel: logging.LevelInfo}
	runRoot(t, opts, "plan")

	assert.Equal(t, logging.LevelDebug, opts.LogLevel)
}

func TestLogLevelFlagOverridesEnv(t *testing.T) {
	t.Setenv("DEPLOYCTL_LOG_LEVEL", "debug")

	opts := &Options{ManifestDir: t.TempDir(), LogLevel: logging.LevelInfo}
	runRoot(t, opts, "plan", "--log-level", "error")

	assert.Equal(t, logging.LevelError, opts.LogLevel)
}

func TestRootEnvDefaults(t *testing.T) {
	t.Setenv("DEPLOYCTL_MANIFEST_DIR", "/srv/manifests")
	t.Setenv("DEPLOYCTL_CONTEXT", "lab")

	opts := &Options{ManifestDir: defaultManifestDir}
	require.NoError(t, applyRootEnvDefaults(opts))

	assert.Equal(t, "/srv/manifests", opts.ManifestDir)
	assert.Equal(t, "lab", opts.Context)
}
