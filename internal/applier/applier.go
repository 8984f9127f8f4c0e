// Package applier walks a scanned manifest source in dependency order and
// submits each file to the cluster, classifying and substituting on the way.
package applier

import (
	"context"
	"log/slog"
	"os"

	"github.com/deploykit-k8s/deployctl/internal/manifest"
)

// Submitter submits a single concrete manifest file to the cluster.
// *kube.Client satisfies this interface.
type Submitter interface {
	ApplyFile(ctx context.Context, path string) error
}

// Status is the per-file outcome of one apply pass.
type Status string

const (
	// StatusApplied means the file was submitted successfully.
	StatusApplied Status = "applied"
	// StatusFailed means the submit (or read) call failed; the run continues.
	StatusFailed Status = "failed"
	// StatusSkippedEmpty means the file had no content.
	StatusSkippedEmpty Status = "skipped-empty"
	// StatusSkippedDump means the file was a live-cluster dump and was never submitted.
	StatusSkippedDump Status = "skipped-runtime-dump"
	// StatusSkippedUnbound means the placeholder binding was unresolved.
	StatusSkippedUnbound Status = "skipped-unbound-placeholder"
)

// Outcome records what happened to a single manifest file.
type Outcome struct {
	// Path is the manifest file path.
	Path string
	// Group is the directory group the file belonged to.
	Group manifest.Group
	// Status is the apply outcome.
	Status Status
	// Err holds the failure cause for StatusFailed outcomes.
	Err error
}

// Summary aggregates per-file outcomes for one apply pass.
type Summary struct {
	// Outcomes lists every processed file in apply order.
	Outcomes []Outcome
}

// Failed returns the number of files whose submit call failed.
func (s *Summary) Failed() int {
	return s.count(StatusFailed)
}

// Applied returns the number of files submitted successfully.
func (s *Summary) Applied() int {
	return s.count(StatusApplied)
}

// Skipped returns the number of files intentionally not submitted.
func (s *Summary) Skipped() int {
	return len(s.Outcomes) - s.Applied() - s.Failed()
}

func (s *Summary) count(status Status) int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

// Applier drives one best-effort apply pass over a manifest source.
type Applier struct {
	submitter Submitter
	logger    *slog.Logger
}

// New constructs an Applier submitting through the given Submitter.
func New(submitter Submitter, logger *slog.Logger) *Applier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Applier{submitter: submitter, logger: logger}
}

// Run applies the whole source in dependency order: the root namespace
// definition first, then each directory group, then loose root files.
// Individual failures are recorded and logged, never aborting the pass.
func (a *Applier) Run(ctx context.Context, src *manifest.Source, binding Binding) (*Summary, error) {
	summary := &Summary{}

	if src.NamespaceFile != "" {
		a.applyOne(ctx, summary, src.NamespaceFile, manifest.GroupNamespaces, binding)
	} else {
		a.logger.Warn("no root namespace definition found; assuming namespaces pre-exist", "root", src.Root)
	}

	for _, group := range src.Groups {
		if len(group.Files) == 0 {
			a.logger.Debug("directory group has no manifests", "dir", group.Dir, "group", group.Group.String())
			continue
		}
		a.logger.Info("applying directory group", "dir", group.Dir, "group", group.Group.String(), "files", len(group.Files))
		for _, file := range group.Files {
			a.applyOne(ctx, summary, file, group.Group, binding)
		}
	}

	for _, file := range src.Loose {
		a.applyOne(ctx, summary, file, manifest.GroupLoose, binding)
	}

	a.logger.Info("apply pass completed",
		"applied", summary.Applied(),
		"failed", summary.Failed(),
		"skipped", summary.Skipped(),
	)

	return summary, nil
}

// applyOne classifies a single file, substitutes when needed, submits it, and
// records the outcome.
func (a *Applier) applyOne(ctx context.Context, summary *Summary, path string, group manifest.Group, binding Binding) {
	record := func(status Status, err error) {
		summary.Outcomes = append(summary.Outcomes, Outcome{Path: path, Group: group, Status: status, Err: err})
	}

	content, err := os.ReadFile(path)
	if err != nil {
		a.logger.Warn("read manifest failed", "file", path, "error", err)
		record(StatusFailed, err)
		return
	}

	switch manifest.Classify(content, group) {
	case manifest.ClassEmpty:
		a.logger.Debug("skipping empty manifest", "file", path)
		record(StatusSkippedEmpty, nil)
		return

	case manifest.ClassRuntimeDump:
		a.logger.Warn("skipping runtime dump; file carries server-assigned fields and must not be reapplied", "file", path)
		record(StatusSkippedDump, nil)
		return

	case manifest.ClassParameterized:
		if !binding.Resolved() {
			a.logger.Warn("skipping parameterized manifest; placeholder is unbound",
				"file", path,
				"required_env", binding.EnvVar,
			)
			record(StatusSkippedUnbound, nil)
			return
		}
		concrete, cleanup, err := substitute(content, binding.Value)
		if err != nil {
			a.logger.Error("substitute placeholder failed", "file", path, "error", err)
			record(StatusFailed, err)
			return
		}
		defer cleanup()
		if err := a.submitter.ApplyFile(ctx, concrete); err != nil {
			a.logger.Error("apply manifest failed", "file", path, "error", err)
			record(StatusFailed, err)
			return
		}
		record(StatusApplied, nil)
		return
	}

	if err := a.submitter.ApplyFile(ctx, path); err != nil {
		a.logger.Error("apply manifest failed", "file", path, "error", err)
		record(StatusFailed, err)
		return
	}
	record(StatusApplied, nil)
}
