package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/deploykit-k8s/deployctl/internal/applier"
	"github.com/deploykit-k8s/deployctl/internal/env"
	"github.com/deploykit-k8s/deployctl/internal/manifest"
)

// planEntry is one line of the apply plan.
type planEntry struct {
	// Order is the 1-based apply position.
	Order int `json:"order"`
	// File is the manifest path relative to the tree root.
	File string `json:"file"`
	// Group is the directory group name.
	Group string `json:"group"`
	// Classification is the classifier verdict for the file.
	Classification string `json:"classification"`
	// WillApply reports whether an apply pass would submit the file.
	WillApply bool `json:"willApply"`
}

// newPlanCommand creates the "plan" subcommand that prints the ordered apply
// plan without submitting anything to the cluster.
func newPlanCommand(opts *Options) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the ordered apply plan without touching the cluster",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := LoggerFromContext(cmd.Context())

			src, err := manifest.Scan(opts.ManifestDir)
			if err != nil {
				return err
			}

			binding := applier.BindingFromVars(env.FromOS())

			var entries []planEntry
			add := func(path string, group manifest.Group) {
				entry := planEntry{Order: len(entries) + 1, Group: group.String()}
				if rel, err := filepath.Rel(src.Root, path); err == nil {
					entry.File = rel
				} else {
					entry.File = path
				}

				content, err := os.ReadFile(path)
				if err != nil {
					logger.Warn("read manifest failed", "file", path, "error", err)
					entry.Classification = "unreadable"
					entries = append(entries, entry)
					return
				}

				class := manifest.Classify(content, group)
				entry.Classification = class.String()
				switch class {
				case manifest.ClassPlain:
					entry.WillApply = true
				case manifest.ClassParameterized:
					entry.WillApply = binding.Resolved()
				}
				entries = append(entries, entry)
			}

			if src.NamespaceFile != "" {
				add(src.NamespaceFile, manifest.GroupNamespaces)
			}
			for _, group := range src.Groups {
				for _, file := range group.Files {
					add(file, group.Group)
				}
			}
			for _, file := range src.Loose {
				add(file, manifest.GroupLoose)
			}

			if output == "json" {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			for _, entry := range entries {
				marker := "skip"
				if entry.WillApply {
					marker = "apply"
				}
				fmt.Fprintf(os.Stdout, "%3d  %-5s  %-28s  %-12s  %s\n",
					entry.Order, marker, entry.Classification, entry.Group, entry.File)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "plain", "Output format: plain|json")

	return cmd
}
