package mdterm

import (
	"strings"
)

const (
	defaultCodeLanguage = "text"
	codeBorderFill      = "─"
	codeFallbackFill    = "-"
	codeFallbackBar     = "│"
	codeTabWidth        = 4
)

// codeRenderer frames a fenced code block. Highlighting failures degrade to
// plain bordered lines and are never reported to the caller.
type codeRenderer struct {
	styles    Styles
	highlight Highlighter
	minWidth  int
}

// render returns the lines of the framed block without line terminators. An
// empty block renders nothing.
func (c codeRenderer) render(code, language string) []string {
	language = strings.TrimSpace(language)
	if language == "" {
		language = defaultCodeLanguage
	}
	code = strings.ReplaceAll(code, "\r\n", "\n")
	code = strings.ReplaceAll(code, "\t", strings.Repeat(" ", codeTabWidth))
	code = strings.TrimRight(code, " \n")
	if strings.TrimSpace(code) == "" {
		return nil
	}

	if c.highlight != nil {
		if lines, err := c.highlight.Highlight(language, code); err == nil && len(lines) > 0 {
			return c.framed(lines, language)
		}
	}
	return c.fallback(strings.Split(code, "\n"), language)
}

func (c codeRenderer) framed(lines []string, language string) []string {
	width := frameWidth(lines, language, c.minWidth)
	fill := width - (VisibleWidth(language) + 2)
	left := fill / 2
	right := fill - left

	out := make([]string, 0, len(lines)+2)
	out = append(out, c.styles.CodeBorder.Render(strings.Repeat(codeBorderFill, left))+
		" "+c.styles.CodeLabel.Render(language)+" "+
		c.styles.CodeBorder.Render(strings.Repeat(codeBorderFill, right)))
	out = append(out, lines...)
	out = append(out, c.styles.CodeBorder.Render(strings.Repeat(codeBorderFill, width)))
	return out
}

func (c codeRenderer) fallback(lines []string, language string) []string {
	bar := c.styles.CodeBorder.Render(codeFallbackBar) + " "
	barWidth := VisibleWidth(codeFallbackBar) + 1
	width := c.minWidth
	for _, line := range lines {
		width = max(width, VisibleWidth(line)+barWidth)
	}
	width = max(width, VisibleWidth(language)+4)
	border := c.styles.CodeBorder.Render(strings.Repeat(codeFallbackFill, width))

	out := make([]string, 0, len(lines)+2)
	out = append(out, border)
	for _, line := range lines {
		out = append(out, bar+line)
	}
	out = append(out, border)
	return out
}

// frameWidth is the widest line, at least the label plus padding and never
// below minWidth.
func frameWidth(lines []string, language string, minWidth int) int {
	width := VisibleWidth(language) + 4
	for _, line := range lines {
		width = max(width, VisibleWidth(line))
	}
	return max(width, minWidth)
}
