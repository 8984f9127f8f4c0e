// Package kube provides low-level integration with Kubernetes via kubectl.
package kube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Client wraps kubectl execution with optional kubeconfig and context selection.
// Out and Err receive kubectl's streams; they default to the process streams.
type Client struct {
	Kubeconfig string
	Context    string
	Out        io.Writer
	Err        io.Writer
}

// NewClient constructs a new Kubernetes client wrapper.
func NewClient(kubeconfig, context string) *Client {
	return &Client{
		Kubeconfig: kubeconfig,
		Context:    context,
	}
}

// Available reports whether the kubectl binary is present and runnable.
// It is used as a preflight gate before any cluster-mutating command.
func (c *Client) Available(ctx context.Context) error {
	if _, err := exec.LookPath("kubectl"); err != nil {
		return fmt.Errorf("kubectl binary not found in PATH: %w", err)
	}
	cmd := exec.CommandContext(ctx, "kubectl", "version", "--client")
	cmd.Stdout = nil
	cmd.Stderr = nil
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("kubectl version check failed: %w", err)
	}
	return nil
}

// ApplyFile applies a single manifest file to the cluster using kubectl apply -f <path>.
func (c *Client) ApplyFile(ctx context.Context, path string) error {
	return c.RunRaw(ctx, nil, "apply", "-f", path)
}

// RunRaw executes kubectl with the given args, streaming output to the client writers.
func (c *Client) RunRaw(ctx context.Context, stdin []byte, args ...string) error {
	cmd := c.command(ctx, stdin, args...)
	cmd.Stdout = c.stdout()
	cmd.Stderr = c.stderr()

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("kubectl %v failed: %w", args, err)
	}
	return nil
}

// RunAndCapture executes kubectl with the given args and returns its stdout.
func (c *Client) RunAndCapture(ctx context.Context, stdin []byte, args ...string) ([]byte, error) {
	cmd := c.command(ctx, stdin, args...)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = c.stderr()

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("kubectl %v failed: %w", args, err)
	}
	return out.Bytes(), nil
}

// GetJSON runs a kubectl get with -o json and decodes the result into out.
func (c *Client) GetJSON(ctx context.Context, out any, args ...string) error {
	full := append(append([]string{"get"}, args...), "-o", "json")
	raw, err := c.RunAndCapture(ctx, nil, full...)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode kubectl get output: %w", err)
	}
	return nil
}

// DeletePodNow force-deletes a pod immediately with a zero grace period.
func (c *Client) DeletePodNow(ctx context.Context, namespace, name string) error {
	return c.RunRaw(ctx, nil,
		"-n", namespace,
		"delete", "pod", name,
		"--grace-period=0", "--force", "--wait=false", "--ignore-not-found",
	)
}

// DeleteNonBlocking issues a delete without waiting for the resource to disappear.
// An empty namespace targets a cluster-scoped resource.
func (c *Client) DeleteNonBlocking(ctx context.Context, namespace, kind, name string) error {
	args := []string{"delete", kind, name, "--wait=false", "--ignore-not-found"}
	if namespace != "" {
		args = append([]string{"-n", namespace}, args...)
	}
	return c.RunRaw(ctx, nil, args...)
}

// PatchMerge applies a strategic/merge patch to the named resource.
func (c *Client) PatchMerge(ctx context.Context, namespace, kind, name, patch string) error {
	args := []string{"patch", kind, name, "--type=merge", "-p", patch}
	if namespace != "" {
		args = append([]string{"-n", namespace}, args...)
	}
	return c.RunRaw(ctx, nil, args...)
}

// PatchJSON applies a JSON-patch (RFC 6902) to the named resource.
func (c *Client) PatchJSON(ctx context.Context, namespace, kind, name, patch string) error {
	args := []string{"patch", kind, name, "--type=json", "-p", patch}
	if namespace != "" {
		args = append([]string{"-n", namespace}, args...)
	}
	return c.RunRaw(ctx, nil, args...)
}

func (c *Client) stdout() io.Writer {
	if c.Out != nil {
		return c.Out
	}
	return os.Stdout
}

func (c *Client) stderr() io.Writer {
	if c.Err != nil {
		return c.Err
	}
	return os.Stderr
}

func (c *Client) command(ctx context.Context, stdin []byte, args ...string) *exec.Cmd {
	cmdArgs := make([]string, 0, len(args)+2)
	if c.Context != "" {
		cmdArgs = append(cmdArgs, "--context", c.Context)
	}
	cmdArgs = append(cmdArgs, args...)

	cmd := exec.CommandContext(ctx, "kubectl", cmdArgs...)

	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	if c.Kubeconfig != "" {
		env := os.Environ()
		env = append(env, "KUBECONFIG="+c.Kubeconfig)
		cmd.Env = env
	}

	return cmd
}
