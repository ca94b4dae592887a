// File: cmd/query.go
package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/spf13/cobra"
	"github.com/xkilldash9x/scalpel-introspect/internal/browser/dom"
	"github.com/xkilldash9x/scalpel-introspect/internal/selector"
	"github.com/xkilldash9x/scalpel-introspect/pkg/introspect"
	"golang.org/x/net/html"
)

type queryMatch struct {
	Source string `json:"source"`
	XPath  string `json:"xpath"`
	Tag    string `json:"tag"`
	HTML   string `json:"html,omitempty"`
	Text   string `json:"text,omitempty"`
}

// newQueryCmd creates the `query` command.
func newQueryCmd() *cobra.Command {
	var (
		qopts       selector.QueryOptions
		format      string
		first       bool
		textOnly    bool
		concurrency int
	)
	cmd := &cobra.Command{
		Use:   "query <selector> <files...>",
		Short: "Print the elements of HTML pages matching a selector",
		Example: `  scalpel-introspect query 'role=button[name="Save"]' page.html
  scalpel-introspect query 'css=form >> internal:has-text="Email"' a.html b.html`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			sel, paths := args[0], args[1:]
			outputs, err := processPages(cmd.Context(), cmd, paths, concurrency,
				func(_ context.Context, source string, in *introspect.Introspector) (string, error) {
					matches := in.QuerySelectorAll(in.Document().Root(), sel, qopts)
					if first && len(matches) > 1 {
						matches = matches[:1]
					}
					return renderMatches(source, matches, format, textOnly)
				})
			if err != nil {
				return err
			}
			return writeOutputs(cmd.OutOrStdout(), paths, outputs, format)
		},
	}
	bindQueryFlags(cmd, &qopts)
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format: text or json")
	cmd.Flags().BoolVar(&first, "first", false, "Only print the first match")
	cmd.Flags().BoolVar(&textOnly, "text", false, "Print text content instead of markup")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "Number of pages processed at once")
	return cmd
}

func renderMatches(source string, matches []*html.Node, format string, textOnly bool) (string, error) {
	var lines []string
	for _, n := range matches {
		s := goquery.NewDocumentFromNode(n).Selection
		m := queryMatch{Source: source, XPath: dom.GenerateUniqueXPath(n), Tag: n.Data}
		if textOnly {
			m.Text = strings.TrimSpace(s.Text())
		} else {
			markup, err := goquery.OuterHtml(s)
			if err != nil {
				return "", fmt.Errorf("render %s: %w", m.XPath, err)
			}
			m.HTML = markup
		}

		if format == formatJSON {
			line, err := marshalLine(m)
			if err != nil {
				return "", err
			}
			lines = append(lines, line)
			continue
		}
		if textOnly {
			lines = append(lines, m.Text)
		} else {
			lines = append(lines, m.HTML)
		}
	}
	return strings.Join(lines, "\n"), nil
}
