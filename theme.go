package mdterm

import (
	"sort"
	"strings"

	"pkt.systems/mdterm/internal/palette"
)

// Style describes a terminal style as an ANSI prefix sequence.
type Style struct {
	Prefix string
}

// Render wraps text in the style and a trailing reset. An empty style
// returns text unchanged.
func (s Style) Render(text string) string {
	if s.Prefix == "" || text == "" {
		return text
	}
	return s.Prefix + text + ansiReset
}

// Styles groups the semantic styles used by the renderer and the chat
// command.
type Styles struct {
	Text       Style
	Heading    [6]Style
	Emphasis   Style
	Strong     Style
	Strike     Style
	CodeInline Style
	CodeBorder Style
	CodeLabel  Style
	Quote      Style
	ListMarker Style
	LinkText   Style
	LinkURL    Style
	Rule       Style
	Error      Style
	Notice     Style
	Prompt     Style
}

// Theme provides named styles for Markdown rendering.
type Theme interface {
	Name() string
	Styles() Styles
}

type theme struct {
	name   string
	styles Styles
}

func (t theme) Name() string   { return t.name }
func (t theme) Styles() Styles { return t.styles }

// NewTheme returns a Theme from a Styles definition.
func NewTheme(name string, styles Styles) Theme {
	return theme{name: name, styles: styles}
}

// PlainTheme returns a theme that emits no escape sequences.
func PlainTheme() Theme {
	return theme{name: "plain"}
}

func style(prefixes ...string) Style {
	var b strings.Builder
	for _, p := range prefixes {
		if p != "" {
			b.WriteString(p)
		}
	}
	return Style{Prefix: b.String()}
}

func stylesFromPalette(p palette.Palette) Styles {
	return Styles{
		Text: style(p.Text),
		Heading: [6]Style{
			style(palette.Bold, p.H1),
			style(palette.Bold, p.H2),
			style(palette.Bold, p.H3),
			style(palette.Bold, p.H4),
			style(palette.Bold, p.H5),
			style(palette.Bold, p.H6),
		},
		Emphasis:   style(palette.Italic, p.Emphasis),
		Strong:     style(palette.Bold, p.Strong),
		Strike:     style(palette.Strike, p.Strike),
		CodeInline: style(p.CodeInline),
		CodeBorder: style(p.CodeBorder),
		CodeLabel:  style(palette.Bold),
		Quote:      style(p.Quote),
		ListMarker: style(p.ListMarker),
		LinkText:   style(p.LinkText),
		LinkURL:    style(palette.Underline, p.LinkURL),
		Rule:       style(p.Rule),
		Error:      style(palette.Bold, p.Error),
		Notice:     style(p.Notice),
		Prompt:     style(p.Prompt),
	}
}

var builtinThemes = map[string]Theme{
	"default":     theme{name: "default", styles: stylesFromPalette(palette.PaletteDefault)},
	"dracula":     theme{name: "dracula", styles: stylesFromPalette(palette.PaletteDracula)},
	"nord":        theme{name: "nord", styles: stylesFromPalette(palette.PaletteNord)},
	"gruvbox":     theme{name: "gruvbox", styles: stylesFromPalette(palette.PaletteGruvbox)},
	"tokyo-night": theme{name: "tokyo-night", styles: stylesFromPalette(palette.PaletteTokyoNight)},
	"plain":       PlainTheme(),
}

// AvailableThemes returns the names of built-in themes.
func AvailableThemes() []string {
	names := make([]string, 0, len(builtinThemes))
	for name := range builtinThemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ThemeByName returns a built-in theme by name.
func ThemeByName(name string) (Theme, bool) {
	if name == "" {
		return builtinThemes["default"], true
	}
	normalized := strings.ToLower(strings.TrimSpace(name))
	theme, ok := builtinThemes[normalized]
	return theme, ok
}

// DefaultTheme returns the default built-in theme.
func DefaultTheme() Theme {
	return builtinThemes["default"]
}
