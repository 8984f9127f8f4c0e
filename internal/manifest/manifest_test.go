package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root string, rel string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("kind: ConfigMap\n"), 0o644))
}

func TestGroupForDir(t *testing.T) {
	tests := []struct {
		dir       string
		want      Group
		wantFixed bool
	}{
		{dir: "00-namespaces", want: GroupNamespaces, wantFixed: true},
		{dir: "05-storage", want: GroupStorage, wantFixed: true},
		{dir: "10-node-exporters", want: GroupNodeWorkloads, wantFixed: true},
		{dir: "02-monitoring", want: GroupMonitoring, wantFixed: true},
		{dir: "integrations", want: GroupIntegrations, wantFixed: true},
		{dir: "cert-manager", want: GroupExtra, wantFixed: false},
	}

	for _, tt := range tests {
		t.Run(tt.dir, func(t *testing.T) {
			got, fixed := GroupForDir(tt.dir)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantFixed, fixed)
		})
	}
}

func TestScanFixedOrder(t *testing.T) {
	// Directory names deliberately listed so lexical order contradicts the
	// dependency order: storage sorts before namespaces on disk.
	root := t.TempDir()
	writeFile(t, root, "05-storage/local-pv.yaml")
	writeFile(t, root, "00-namespaces/apps.yaml")
	writeFile(t, root, "02-monitoring/grafana.yaml")

	src, err := Scan(root)
	require.NoError(t, err)

	var order []Group
	for _, dg := range src.Groups {
		order = append(order, dg.Group)
	}
	assert.Equal(t, []Group{GroupNamespaces, GroupStorage, GroupMonitoring}, order)
}

func TestScanFullTree(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "namespace.yaml")
	writeFile(t, root, "namespaces.yml")
	writeFile(t, root, "ingress.yaml")
	writeFile(t, root, "banner.yml")
	writeFile(t, root, "05-storage/b.yaml")
	writeFile(t, root, "05-storage/a.yaml")
	writeFile(t, root, "integrations/vault.yaml")
	writeFile(t, root, "zz-custom/thing.yaml")
	writeFile(t, root, "cert-manager/issuer.yaml")
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("docs"), 0o644))

	src, err := Scan(root)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "namespace.yaml"), src.NamespaceFile)

	var dirs []string
	for _, dg := range src.Groups {
		dirs = append(dirs, dg.Dir)
	}
	// Fixed-order groups first, then extras lexically.
	assert.Equal(t, []string{"05-storage", "integrations", "cert-manager", "zz-custom"}, dirs)

	// Files inside a group are lexically sorted.
	assert.Equal(t, []string{
		filepath.Join(root, "05-storage", "a.yaml"),
		filepath.Join(root, "05-storage", "b.yaml"),
	}, src.Groups[0].Files)

	// Loose root manifests exclude the namespace definition, files colliding
	// with it by name, and non-manifests.
	assert.Equal(t, []string{
		filepath.Join(root, "banner.yml"),
		filepath.Join(root, "ingress.yaml"),
	}, src.Loose)
}

func TestScanMissingRoot(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}
