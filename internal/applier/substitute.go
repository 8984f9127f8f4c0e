package applier

import (
	"fmt"
	"os"
	"strings"

	"github.com/deploykit-k8s/deployctl/internal/env"
	"github.com/deploykit-k8s/deployctl/internal/manifest"
)

// WorkerNodeEnvVar supplies the resolved worker node name for storage manifests.
const WorkerNodeEnvVar = "WORKER_NODE_NAME"

// Binding pairs the placeholder's source environment variable with its
// resolved value. An empty value means the binding is unresolved and affected
// manifests are skipped rather than applied with an invalid hostname.
type Binding struct {
	// EnvVar is the environment variable the value is sourced from.
	EnvVar string
	// Value is the resolved worker node name, empty when unresolved.
	Value string
}

// Resolved reports whether the binding carries a usable value.
func (b Binding) Resolved() bool {
	return strings.TrimSpace(b.Value) != ""
}

// BindingFromVars builds the worker-node binding from a merged variable map.
func BindingFromVars(vars env.Vars) Binding {
	value, _ := vars.Lookup(WorkerNodeEnvVar)
	return Binding{EnvVar: WorkerNodeEnvVar, Value: value}
}

// substitute replaces every occurrence of the placeholder token and the
// example hostname with value, writing the result to a temporary file.
// The returned cleanup must run after the apply call; it removes the artifact
// on both success and failure paths.
func substitute(content []byte, value string) (string, func(), error) {
	text := string(content)
	text = strings.ReplaceAll(text, manifest.PlaceholderToken, value)
	text = strings.ReplaceAll(text, manifest.ExampleNodeHostname, value)

	tmp, err := os.CreateTemp("", "deployctl-*.yaml")
	if err != nil {
		return "", nil, fmt.Errorf("create temp manifest: %w", err)
	}

	cleanup := func() { _ = os.Remove(tmp.Name()) }

	if _, err := tmp.WriteString(text); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", nil, fmt.Errorf("write temp manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("close temp manifest: %w", err)
	}

	return tmp.Name(), cleanup, nil
}
