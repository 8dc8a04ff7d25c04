package mdterm

import (
	"regexp"
	"strings"
	"testing"
)

var ansiPattern = regexp.MustCompile("\x1b\\[[0-9;]*[A-Za-z]")

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// renderMarkdown renders src with the default theme, wrapping at the full
// width so tests can reason in terminal columns.
func renderMarkdown(t *testing.T, src string, width int, opts ...RenderOption) string {
	t.Helper()
	return renderWithTheme(t, DefaultTheme(), src, width, opts...)
}

func renderPlain(t *testing.T, src string, width int, opts ...RenderOption) string {
	t.Helper()
	return renderWithTheme(t, PlainTheme(), src, width, opts...)
}

func renderWithTheme(t *testing.T, theme Theme, src string, width int, opts ...RenderOption) string {
	t.Helper()
	opts = append([]RenderOption{WithWrapPolicy(WrapFull)}, opts...)
	var out strings.Builder
	if err := NewRenderer(theme, opts...).Render(&out, src, width); err != nil {
		t.Fatalf("render: %v", err)
	}
	return out.String()
}

func renderEvents(t *testing.T, theme Theme, width int, evs ...Event) string {
	t.Helper()
	var out strings.Builder
	r := NewRenderer(theme, WithWrapPolicy(WrapFull))
	if err := r.RenderEvents(&out, Events(evs...), width); err != nil {
		t.Fatalf("render events: %v", err)
	}
	return out.String()
}

func textEvent(s string) Event { return Event{Kind: EventText, Text: s} }
