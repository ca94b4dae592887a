// File: cmd/name.go
package cmd

import (
	"context"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xkilldash9x/scalpel-introspect/internal/browser/dom"
	"github.com/xkilldash9x/scalpel-introspect/internal/selector"
	"github.com/xkilldash9x/scalpel-introspect/pkg/introspect"
)

type nameResult struct {
	Source      string `json:"source"`
	XPath       string `json:"xpath"`
	Role        string `json:"role"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// newNameCmd creates the `name` command.
func newNameCmd() *cobra.Command {
	var (
		qopts         selector.QueryOptions
		format        string
		includeHidden bool
	)
	cmd := &cobra.Command{
		Use:   "name <selector> <files...>",
		Short: "Print the role, accessible name and description of matching elements",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			sel, paths := args[0], args[1:]
			nopts := introspect.NameOptions{IncludeHidden: includeHidden}
			outputs, err := processPages(cmd.Context(), cmd, paths, 1,
				func(_ context.Context, source string, in *introspect.Introspector) (string, error) {
					var lines []string
					for _, el := range in.QuerySelectorAll(in.Document().Root(), sel, qopts) {
						r := nameResult{
							Source:      source,
							XPath:       dom.GenerateUniqueXPath(el),
							Role:        in.GetAriaRole(el),
							Name:        in.ComputeAccessibleName(el, nopts),
							Description: in.ComputeAccessibleDescription(el, nopts),
						}
						if format == formatJSON {
							line, err := marshalLine(r)
							if err != nil {
								return "", err
							}
							lines = append(lines, line)
							continue
						}
						lines = append(lines, r.String())
					}
					return strings.Join(lines, "\n"), nil
				})
			if err != nil {
				return err
			}
			return writeOutputs(cmd.OutOrStdout(), paths, outputs, format)
		},
	}
	bindQueryFlags(cmd, &qopts)
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format: text or json")
	cmd.Flags().BoolVar(&includeHidden, "include-hidden", false, "Let hidden content contribute to names")
	return cmd
}

// String formats r as `role "name" description="..."`; a role-less element
// shows as "-".
func (r nameResult) String() string {
	role := r.Role
	if role == "" {
		role = "-"
	}
	s := role + " " + strconv.Quote(r.Name)
	if r.Description != "" {
		s += " description=" + strconv.Quote(r.Description)
	}
	return s
}
