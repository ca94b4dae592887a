// File: cmd/pages.go
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"github.com/xkilldash9x/scalpel-introspect/internal/config"
	"github.com/xkilldash9x/scalpel-introspect/internal/observability"
	"github.com/xkilldash9x/scalpel-introspect/pkg/introspect"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const stdinPath = "-"

// pageFunc renders the result for one parsed page.
type pageFunc func(ctx context.Context, source string, in *introspect.Introspector) (string, error)

// processPages loads every path and runs fn on it, at most concurrency
// pages at a time. Outputs come back in the order of paths.
func processPages(ctx context.Context, cmd *cobra.Command, paths []string, concurrency int, fn pageFunc) ([]string, error) {
	cfg, err := configFrom(cmd)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	stdin := 0
	for _, p := range paths {
		if p == stdinPath {
			stdin++
		}
	}
	if stdin > 1 {
		return nil, fmt.Errorf("standard input can be read only once, got %d", stdin)
	}
	logger := observability.Component("cli")

	outputs := make([]string, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			in, err := openPage(path, cmd.InOrStdin(), cfg, logger)
			if err != nil {
				return err
			}
			out, err := fn(ctx, path, in)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	logger.Debug("Processed pages.", zap.Int("count", len(paths)))
	return outputs, nil
}

func openPage(path string, stdin io.Reader, cfg config.Interface, logger *zap.Logger) (*introspect.Introspector, error) {
	var r io.Reader = stdin
	if path != stdinPath {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open page: %w", err)
		}
		defer f.Close()
		r = f
	}
	doc, err := introspect.Load(r, cfg, logger.With(zap.String("source", path)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return introspect.New(doc,
		introspect.WithConfig(cfg.Introspection()),
		introspect.WithLogger(logger.With(zap.String("source", path))),
	), nil
}

// writeOutputs prints one block per page, headed by its source when there
// is more than one text block.
func writeOutputs(w io.Writer, paths, outputs []string, format string) error {
	for i, out := range outputs {
		if len(paths) > 1 && format == formatText {
			if _, err := fmt.Fprintf(w, "# %s\n", paths[i]); err != nil {
				return err
			}
		}
		if out == "" {
			continue
		}
		if !strings.HasSuffix(out, "\n") {
			out += "\n"
		}
		if _, err := io.WriteString(w, out); err != nil {
			return err
		}
	}
	return nil
}

const (
	formatText = "text"
	formatJSON = "json"
	formatXML  = "xml"
)

// checkFormat accepts text, json and any command-specific extras.
func checkFormat(format string, extra ...string) error {
	allowed := append([]string{formatText, formatJSON}, extra...)
	if slices.Contains(allowed, format) {
		return nil
	}
	return fmt.Errorf("unknown format %q, want one of %s", format, strings.Join(allowed, ", "))
}

// marshalLine encodes v as a single JSON line.
func marshalLine(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode json: %w", err)
	}
	return string(b), nil
}
