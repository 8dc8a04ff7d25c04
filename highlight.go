package mdterm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// ErrUnsupportedLanguage reports a code block tag no highlighter rule exists
// for.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Highlighter turns code into styled lines, one per source line. Every
// returned line must leave the terminal style reset.
type Highlighter interface {
	Highlight(language, code string) ([]string, error)
}

// HighlighterFunc adapts a function to the Highlighter interface.
type HighlighterFunc func(language, code string) ([]string, error)

// Highlight calls f(language, code).
func (f HighlighterFunc) Highlight(language, code string) ([]string, error) {
	return f(language, code)
}

// DefaultHighlightStyle is the chroma style used when none is configured.
const DefaultHighlightStyle = "monokai"

// ChromaHighlighter highlights code with chroma lexers and 24-bit colors.
type ChromaHighlighter struct {
	// Style is a chroma style name; empty selects DefaultHighlightStyle.
	Style string
	// NoColor keeps lexer validation and framing but emits no escapes.
	NoColor bool
}

// Highlight returns ErrUnsupportedLanguage when no lexer matches language by
// name, alias or file extension.
func (h ChromaHighlighter) Highlight(language, code string) ([]string, error) {
	lexer := lookupLexer(language)
	if lexer == nil {
		return nil, fmt.Errorf("highlight %q: %w", language, ErrUnsupportedLanguage)
	}
	lexer = chroma.Coalesce(lexer)

	name := h.Style
	if name == "" {
		name = DefaultHighlightStyle
	}
	style := styles.Get(name)
	if style == nil {
		style = styles.Fallback
	}

	if !strings.HasSuffix(code, "\n") {
		code += "\n"
	}
	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return nil, fmt.Errorf("highlight %q: %w", language, err)
	}
	if h.NoColor {
		style = nil
	}
	return formatLines(iterator, style), nil
}

func lookupLexer(language string) chroma.Lexer {
	language = strings.ToLower(strings.TrimSpace(language))
	if language == "" {
		return nil
	}
	if lexer := lexers.Get(language); lexer != nil {
		return lexer
	}
	return lexers.Match("code." + language)
}

// formatLines renders tokens as one string per line. Tokens spanning a
// newline are split so each line carries its own reset. A nil style writes
// the text unstyled.
func formatLines(iterator chroma.Iterator, style *chroma.Style) []string {
	var lines []string
	var line strings.Builder
	for token := iterator(); token != chroma.EOF; token = iterator() {
		var seq string
		if style != nil {
			seq = sgrFor(style.Get(token.Type))
		}
		for i, part := range strings.Split(token.Value, "\n") {
			if i > 0 {
				lines = append(lines, line.String())
				line.Reset()
			}
			if part == "" {
				continue
			}
			if seq == "" {
				line.WriteString(part)
			} else {
				line.WriteString(seq)
				line.WriteString(part)
				line.WriteString(ansiReset)
			}
		}
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return lines
}

func sgrFor(entry chroma.StyleEntry) string {
	var codes []string
	if entry.Colour.IsSet() {
		codes = append(codes, fmt.Sprintf("38;2;%d;%d;%d", entry.Colour.Red(), entry.Colour.Green(), entry.Colour.Blue()))
	}
	if entry.Bold == chroma.Yes {
		codes = append(codes, "1")
	}
	if entry.Italic == chroma.Yes {
		codes = append(codes, "3")
	}
	if entry.Underline == chroma.Yes {
		codes = append(codes, "4")
	}
	if len(codes) == 0 {
		return ""
	}
	return "\x1b[" + strings.Join(codes, ";") + "m"
}
