package kube

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// installFakeKubectl puts a kubectl stub with the given body on PATH.
func installFakeKubectl(t *testing.T, body string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "kubectl"), []byte("#!/bin/sh\n"+body), 0o755))
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func TestRunRawRoutesBothStreamsToClientWriters(t *testing.T) {
	installFakeKubectl(t, "echo out-line\necho err-line 1>&2\n")

	var out, errOut bytes.Buffer
	client := NewClient("", "")
	client.Out = &out
	client.Err = &errOut

	require.NoError(t, client.RunRaw(context.Background(), nil, "version"))

	assert.Contains(t, out.String(), "out-line")
	assert.Contains(t, errOut.String(), "err-line")
}

func TestRunAndCaptureRoutesStderrToClientWriter(t *testing.T) {
	installFakeKubectl(t, "echo captured\necho noise 1>&2\n")

	var errOut bytes.Buffer
	client := NewClient("", "")
	client.Err = &errOut

	got, err := client.RunAndCapture(context.Background(), nil, "get", "pods")
	require.NoError(t, err)

	assert.Contains(t, string(got), "captured")
	assert.NotContains(t, string(got), "noise")
	assert.Contains(t, errOut.String(), "noise")
}

func TestGetJSONDecodesOutput(t *testing.T) {
	installFakeKubectl(t, `echo '{"items":[{"metadata":{"name":"p1"}}]}'`+"\n")

	client := NewClient("", "")
	var out struct {
		Items []struct {
			Metadata struct {
				Name string `json:"name"`
			} `json:"metadata"`
		} `json:"items"`
	}
	require.NoError(t, client.GetJSON(context.Background(), &out, "pods", "-n", "ns-a"))
	require.Len(t, out.Items, 1)
	assert.Equal(t, "p1", out.Items[0].Metadata.Name)
}

func TestRunRawFailurePropagates(t *testing.T) {
	installFakeKubectl(t, "exit 1\n")

	client := NewClient("", "")
	client.Err = &bytes.Buffer{}
	require.Error(t, client.RunRaw(context.Background(), nil, "apply", "-f", "x.yaml"))
}
