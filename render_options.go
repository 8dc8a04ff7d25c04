package mdterm

// RenderOption configures rendering behavior.
type RenderOption func(*renderConfig)

// Layout holds the presentation constants of the renderer.
type Layout struct {
	// WrapPolicy maps the terminal width to the wrap column budget.
	WrapPolicy WrapPolicy
	// Bullet is the unordered list marker.
	Bullet string
	// CounterWidth right-justifies ordered list counters to this many
	// columns.
	CounterWidth int
	// BorderMinWidth is the narrowest code block frame.
	BorderMinWidth int
	// RuleWidth caps the width of thematic breaks.
	RuleWidth int
}

// DefaultLayout returns the layout used when no options are given.
func DefaultLayout() Layout {
	return Layout{
		WrapPolicy:     WrapThreeQuarters,
		Bullet:         "•",
		CounterWidth:   1,
		BorderMinWidth: 40,
		RuleWidth:      30,
	}
}

type renderConfig struct {
	layout    Layout
	source    Source
	highlight Highlighter
}

func defaultConfig() renderConfig {
	return renderConfig{
		layout:    DefaultLayout(),
		source:    GoldmarkSource{},
		highlight: ChromaHighlighter{},
	}
}

// WithLayout replaces the whole layout. Zero fields keep their defaults.
func WithLayout(layout Layout) RenderOption {
	return func(cfg *renderConfig) {
		if layout.WrapPolicy != nil {
			cfg.layout.WrapPolicy = layout.WrapPolicy
		}
		if layout.Bullet != "" {
			cfg.layout.Bullet = layout.Bullet
		}
		if layout.CounterWidth > 0 {
			cfg.layout.CounterWidth = layout.CounterWidth
		}
		if layout.BorderMinWidth > 0 {
			cfg.layout.BorderMinWidth = layout.BorderMinWidth
		}
		if layout.RuleWidth > 0 {
			cfg.layout.RuleWidth = layout.RuleWidth
		}
	}
}

// WithWrapPolicy sets how the wrap budget is derived from the terminal width.
func WithWrapPolicy(policy WrapPolicy) RenderOption {
	return WithLayout(Layout{WrapPolicy: policy})
}

// WithBullet sets the unordered list marker.
func WithBullet(bullet string) RenderOption {
	return WithLayout(Layout{Bullet: bullet})
}

// WithCounterWidth sets the field width of ordered list counters.
func WithCounterWidth(width int) RenderOption {
	return WithLayout(Layout{CounterWidth: width})
}

// WithHighlighter sets the code highlighter. nil renders every code block
// with the plain bordered fallback.
func WithHighlighter(h Highlighter) RenderOption {
	return func(cfg *renderConfig) {
		cfg.highlight = h
	}
}

// WithSource sets the Markdown event source.
func WithSource(src Source) RenderOption {
	return func(cfg *renderConfig) {
		if src != nil {
			cfg.source = src
		}
	}
}
