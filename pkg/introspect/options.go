package introspect

import (
	"fmt"
	"io"

	"github.com/xkilldash9x/scalpel-introspect/internal/browser/dom"
	"github.com/xkilldash9x/scalpel-introspect/internal/config"
	"github.com/xkilldash9x/scalpel-introspect/internal/selector"
	"github.com/xkilldash9x/scalpel-introspect/internal/snapshot"
	"go.uber.org/zap"
)

var visibilityModes = map[string]snapshot.Visibility{
	"aria":            snapshot.VisibilityAria,
	"aria_or_visual":  snapshot.VisibilityAriaOrVisible,
	"aria_and_visual": snapshot.VisibilityAriaAndVisible,
}

// Load parses an HTML page into a document sized and styled as the browser
// section of cfg describes.
func Load(r io.Reader, cfg config.Interface, logger *zap.Logger) (*dom.Document, error) {
	b := cfg.Browser()
	opts := []dom.Option{dom.WithViewport(b.Viewport.Width, b.Viewport.Height)}
	if b.UserAgentCSS != "" {
		opts = append(opts, dom.WithUserAgentCSS(b.UserAgentCSS))
	}
	if logger != nil {
		opts = append(opts, dom.WithLogger(logger))
	}
	doc, err := dom.Parse(r, opts...)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	return doc, nil
}

// AriaOptions derives aria tree options from the configuration.
func AriaOptions(cfg config.IntrospectionConfig) snapshot.AriaOptions {
	opts := snapshot.DefaultAriaOptions()
	if v, ok := visibilityModes[cfg.Visibility]; ok {
		opts.Visibility = v
	}
	if cfg.RefMode != "" {
		opts.Refs = snapshot.RefMode(cfg.RefMode)
	}
	opts.FoldGeneric = cfg.FoldGeneric
	opts.BlockSpacing = cfg.BlockSpacing
	return opts
}

// LegacyOptions derives flat tree options from the configuration.
func LegacyOptions(cfg config.IntrospectionConfig) snapshot.LegacyOptions {
	return snapshot.LegacyOptions{
		PierceShadow:    cfg.PierceShadow,
		InteractiveOnly: cfg.InteractiveOnly,
	}
}

// QueryOptions derives selector options from the configuration.
func QueryOptions(cfg config.IntrospectionConfig) selector.QueryOptions {
	return selector.QueryOptions{
		PierceShadow: cfg.PierceShadow,
		VisibleOnly:  cfg.VisibleOnly,
	}
}
