// File: cmd/snapshot.go
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xkilldash9x/scalpel-introspect/internal/selector"
	"github.com/xkilldash9x/scalpel-introspect/internal/snapshot"
	"github.com/xkilldash9x/scalpel-introspect/pkg/introspect"
	"golang.org/x/net/html"
)

type snapshotOptions struct {
	mode        string
	format      string
	root        string
	concurrency int

	pierce       bool
	interactive  bool
	refs         string
	visibility   string
	bounds       bool
	selectors    bool
	viewportOnly bool
	maxDepth     int
}

// newSnapshotCmd creates the `snapshot` command.
func newSnapshotCmd() *cobra.Command {
	var opts snapshotOptions
	cmd := &cobra.Command{
		Use:   "snapshot [files...]",
		Short: "Print the accessibility tree of HTML pages",
		Long: `Print the accessibility tree of one or more HTML pages ("-" reads standard input).
The aria mode prints the nested tree; the flat mode prints one line per exposed element.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(opts.format, formatXML); err != nil {
				return err
			}
			if opts.mode != "aria" && opts.mode != "flat" {
				return fmt.Errorf("unknown mode %q, want aria or flat", opts.mode)
			}
			if opts.mode == "flat" && opts.format == formatXML {
				return fmt.Errorf("the xml format needs the aria mode")
			}
			cfg, err := configFrom(cmd)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("pierce") {
				cfg.SetPierceShadow(opts.pierce)
			}
			if flags.Changed("refs") {
				cfg.SetRefMode(opts.refs)
			}
			if flags.Changed("visibility") {
				cfg.SetVisibility(opts.visibility)
			}

			outputs, err := processPages(cmd.Context(), cmd, args, opts.concurrency,
				func(ctx context.Context, source string, in *introspect.Introspector) (string, error) {
					root := in.Document().Root()
					if opts.root != "" {
						if root = in.QuerySelector(root, opts.root, introspect.QueryOptions(cfg.Introspection())); root == nil {
							return "", fmt.Errorf("no element matches %q", opts.root)
						}
					}
					if opts.mode == "flat" {
						lo := introspect.LegacyOptions(cfg.Introspection())
						lo.InteractiveOnly = lo.InteractiveOnly || opts.interactive
						lo.IncludeBounds = opts.bounds
						lo.IncludeSelector = opts.selectors
						lo.ViewportOnly = opts.viewportOnly
						lo.MaxDepth = opts.maxDepth
						return flatSnapshot(ctx, in, root, source, lo, opts.format)
					}
					return ariaSnapshot(ctx, in, root, source, introspect.AriaOptions(cfg.Introspection()), opts.format)
				})
			if err != nil {
				return err
			}
			return writeOutputs(cmd.OutOrStdout(), args, outputs, opts.format)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.mode, "mode", "m", "aria", "Tree shape: aria (nested) or flat")
	flags.StringVarP(&opts.format, "format", "f", formatText, "Output format: text, json or xml (aria mode)")
	flags.StringVar(&opts.root, "root", "", "Selector of the element to snapshot instead of the whole page")
	flags.IntVar(&opts.concurrency, "concurrency", 4, "Number of pages processed at once")
	flags.BoolVar(&opts.pierce, "pierce", true, "Descend into shadow roots (flat mode)")
	flags.BoolVarP(&opts.interactive, "interactive", "i", false, "Only report interactive elements (flat mode)")
	flags.StringVar(&opts.refs, "refs", "interactable", "Reference ids to assign: all, interactable or none (aria mode)")
	flags.StringVar(&opts.visibility, "visibility", "aria_and_visual", "Visibility rule: aria, aria_or_visual or aria_and_visual (aria mode)")
	flags.BoolVar(&opts.bounds, "bounds", false, "Include bounding boxes (flat mode)")
	flags.BoolVar(&opts.selectors, "selectors", false, "Include a unique XPath per node (flat mode)")
	flags.BoolVar(&opts.viewportOnly, "viewport-only", false, "Skip elements outside the viewport (flat mode)")
	flags.IntVar(&opts.maxDepth, "max-depth", 0, "Deepest level to report, 0 for all (flat mode)")
	return cmd
}

type flatResult struct {
	Source string                `json:"source"`
	Nodes  []snapshot.LegacyNode `json:"nodes"`
}

func flatSnapshot(ctx context.Context, in *introspect.Introspector, root *html.Node, source string, opts snapshot.LegacyOptions, format string) (string, error) {
	nodes, err := in.GenerateA11yTree(ctx, root, opts)
	if err != nil {
		return "", err
	}
	if format == formatJSON {
		return marshalLine(flatResult{Source: source, Nodes: nodes})
	}
	return snapshot.RenderLegacy(nodes), nil
}

type ariaResult struct {
	Source   string                 `json:"source"`
	Snapshot *snapshot.AriaSnapshot `json:"snapshot"`
}

func ariaSnapshot(ctx context.Context, in *introspect.Introspector, root *html.Node, source string, opts snapshot.AriaOptions, format string) (string, error) {
	snap, err := in.GenerateAriaTree(ctx, root, opts)
	if err != nil {
		return "", err
	}
	switch format {
	case formatJSON:
		return marshalLine(ariaResult{Source: source, Snapshot: snap})
	case formatXML:
		return snapshot.RenderAriaXML(snap)
	}
	return snapshot.RenderAriaTree(snap), nil
}

// bindQueryFlags registers the selector flags of the query and name commands.
func bindQueryFlags(cmd *cobra.Command, opts *selector.QueryOptions) {
	cmd.Flags().BoolVar(&opts.PierceShadow, "pierce", true, "Search shadow roots too")
	cmd.Flags().BoolVar(&opts.VisibleOnly, "visible", false, "Only return visible elements")
}
