package manifest

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Classification describes how a manifest file must be handled by the applier.
type Classification int

const (
	// ClassPlain marks a source manifest safe to apply verbatim.
	ClassPlain Classification = iota
	// ClassEmpty marks a file with no content; nothing to apply.
	ClassEmpty
	// ClassRuntimeDump marks a snapshot of live cluster state that carries
	// server-assigned fields and must never be reapplied.
	ClassRuntimeDump
	// ClassParameterized marks a storage manifest containing the worker-node
	// placeholder that needs substitution before apply.
	ClassParameterized
)

// String returns the classification name used in logs and plan output.
func (c Classification) String() string {
	switch c {
	case ClassPlain:
		return "plain"
	case ClassEmpty:
		return "empty"
	case ClassRuntimeDump:
		return "runtime-dump"
	case ClassParameterized:
		return "parameterized"
	default:
		return "unknown"
	}
}

const (
	// PlaceholderToken is the literal replaced with the resolved worker node name.
	PlaceholderToken = "REPLACE_WITH_WORKER_NODE"
	// ExampleNodeHostname is the sample hostname shipped in storage manifests;
	// it is treated the same as the placeholder token.
	ExampleNodeHostname = "k8s-worker-01.example.com"
)

// dumpMarkers are raw-text fallbacks used when a file is not parseable YAML.
var dumpMarkers = []string{
	"resourceVersion:",
	"uid:",
	"hostIP:",
	"containerStatuses:",
	"ownerReferences:",
}

// Classify inspects manifest content and decides how the applier must treat it.
// Only files in the storage group are eligible for ClassParameterized; the
// placeholder appearing anywhere else is applied verbatim.
func Classify(content []byte, group Group) Classification {
	if len(bytes.TrimSpace(content)) == 0 {
		return ClassEmpty
	}

	if isRuntimeDump(content) {
		return ClassRuntimeDump
	}

	if group == GroupStorage && containsPlaceholder(content) {
		return ClassParameterized
	}

	return ClassPlain
}

// containsPlaceholder reports whether content carries the worker-node
// placeholder token or the shipped example hostname.
func containsPlaceholder(content []byte) bool {
	text := string(content)
	return strings.Contains(text, PlaceholderToken) || strings.Contains(text, ExampleNodeHostname)
}

// isRuntimeDump detects live-cluster snapshots by structurally parsing every
// document and looking for server-assigned fields. Unparseable content falls
// back to raw marker matching so malformed dumps are still caught.
func isRuntimeDump(content []byte) bool {
	dec := yaml.NewDecoder(bytes.NewReader(content))
	parsedAny := false
	for {
		var doc map[string]any
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return !parsedAny && matchesDumpMarkers(content)
		}
		parsedAny = true
		if docIsRuntimeDump(doc) {
			return true
		}
	}
	return false
}

// docIsRuntimeDump checks a single decoded document for server-assigned fields.
func docIsRuntimeDump(doc map[string]any) bool {
	if doc == nil {
		return false
	}
	if _, ok := doc["status"]; ok {
		return true
	}
	meta, ok := doc["metadata"].(map[string]any)
	if !ok {
		return false
	}
	for _, field := range []string{"resourceVersion", "uid", "ownerReferences"} {
		if _, ok := meta[field]; ok {
			return true
		}
	}
	return false
}

func matchesDumpMarkers(content []byte) bool {
	text := string(content)
	for _, marker := range dumpMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}
