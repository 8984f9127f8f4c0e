// Package manifest models a directory tree of Kubernetes manifests and
// classifies individual files before they are submitted to a cluster.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Group identifies the dependency-ordered bucket a manifest directory belongs to.
type Group int

const (
	// GroupNamespaces holds namespace definitions, applied first.
	GroupNamespaces Group = iota
	// GroupStorage holds PersistentVolume/PersistentVolumeClaim manifests.
	GroupStorage
	// GroupNodeWorkloads holds node-level workloads such as DaemonSets.
	GroupNodeWorkloads
	// GroupMonitoring holds monitoring workloads.
	GroupMonitoring
	// GroupIntegrations holds third-party integration manifests.
	GroupIntegrations
	// GroupExtra covers ad-hoc top-level directories outside the fixed order.
	GroupExtra
	// GroupLoose covers manifest files sitting directly at the source root.
	GroupLoose
)

// String returns the human-readable group name used in logs and plan output.
func (g Group) String() string {
	switch g {
	case GroupNamespaces:
		return "namespaces"
	case GroupStorage:
		return "storage"
	case GroupNodeWorkloads:
		return "node-workloads"
	case GroupMonitoring:
		return "monitoring"
	case GroupIntegrations:
		return "integrations"
	case GroupExtra:
		return "extra"
	case GroupLoose:
		return "loose"
	default:
		return fmt.Sprintf("group(%d)", int(g))
	}
}

// fixedOrder is the dependency order applied across directory groups.
// Directories are bucketed by name keyword, so "05-storage" and "storage"
// land in the same group regardless of any numeric prefix.
var fixedOrder = []Group{
	GroupNamespaces,
	GroupStorage,
	GroupNodeWorkloads,
	GroupMonitoring,
	GroupIntegrations,
}

// DirectoryGroup is an ordered list of manifest files from one directory.
type DirectoryGroup struct {
	// Dir is the directory path relative to the source root.
	Dir string
	// Group is the dependency bucket the directory was assigned to.
	Group Group
	// Files lists manifest file paths (absolute) in lexical order.
	Files []string
}

// Source is the scanned manifest tree, ready to be applied in order.
type Source struct {
	// Root is the absolute path of the manifest tree root.
	Root string
	// NamespaceFile is the root-level namespace definition, empty when absent.
	NamespaceFile string
	// Groups lists directory groups in the fixed dependency order, followed
	// by extra directories in lexical order.
	Groups []DirectoryGroup
	// Loose lists root-level manifest files outside any directory,
	// excluding NamespaceFile.
	Loose []string
}

// namespaceFileNames are the recognized root-level namespace definition files.
var namespaceFileNames = []string{"namespace.yaml", "namespace.yml", "namespaces.yaml", "namespaces.yml"}

// GroupForDir buckets a directory name into one of the fixed groups.
// The second result is false for directories outside the fixed order.
func GroupForDir(name string) (Group, bool) {
	lowered := strings.ToLower(name)
	switch {
	case strings.Contains(lowered, "namespace"):
		return GroupNamespaces, true
	case strings.Contains(lowered, "storage"):
		return GroupStorage, true
	case strings.Contains(lowered, "node"):
		return GroupNodeWorkloads, true
	case strings.Contains(lowered, "monitoring"):
		return GroupMonitoring, true
	case strings.Contains(lowered, "integration"):
		return GroupIntegrations, true
	default:
		return GroupExtra, false
	}
}

// Scan walks the manifest tree root and builds a Source with directories
// bucketed into the fixed dependency order. Only the first directory level is
// inspected; manifests are *.yaml / *.yml files.
func Scan(root string) (*Source, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve manifest root %q: %w", root, err)
	}

	entries, err := os.ReadDir(absRoot)
	if err != nil {
		return nil, fmt.Errorf("read manifest root %q: %w", absRoot, err)
	}

	src := &Source{Root: absRoot}

	byGroup := make(map[Group][]DirectoryGroup)
	var extras []DirectoryGroup

	for _, entry := range entries {
		if entry.IsDir() {
			files, err := listManifests(filepath.Join(absRoot, entry.Name()))
			if err != nil {
				return nil, err
			}
			group, fixed := GroupForDir(entry.Name())
			dg := DirectoryGroup{Dir: entry.Name(), Group: group, Files: files}
			if fixed {
				byGroup[group] = append(byGroup[group], dg)
			} else {
				extras = append(extras, dg)
			}
			continue
		}

		if !isManifestName(entry.Name()) {
			continue
		}
		path := filepath.Join(absRoot, entry.Name())
		if isNamespaceFileName(entry.Name()) {
			// Additional namespace-named files collide with the definition
			// applied up front and are never applied as loose manifests.
			if src.NamespaceFile == "" {
				src.NamespaceFile = path
			}
			continue
		}
		src.Loose = append(src.Loose, path)
	}

	for _, group := range fixedOrder {
		dirs := byGroup[group]
		sort.Slice(dirs, func(i, j int) bool { return dirs[i].Dir < dirs[j].Dir })
		src.Groups = append(src.Groups, dirs...)
	}
	sort.Slice(extras, func(i, j int) bool { return extras[i].Dir < extras[j].Dir })
	src.Groups = append(src.Groups, extras...)

	sort.Strings(src.Loose)

	return src, nil
}

// listManifests returns the manifest files directly inside dir, sorted lexically.
func listManifests(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read manifest directory %q: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !isManifestName(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func isManifestName(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

func isNamespaceFileName(name string) bool {
	lowered := strings.ToLower(name)
	for _, candidate := range namespaceFileNames {
		if lowered == candidate {
			return true
		}
	}
	return false
}
