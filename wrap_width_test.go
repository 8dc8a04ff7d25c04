package mdterm

import (
	"strings"
	"testing"

	"github.com/muesli/reflow/ansi"
)

func TestWrapWidthBounds(t *testing.T) {
	src := strings.Join([]string{
		"# Heading One",
		"",
		"Paragraph with a [link](https://example.com) and some emphasized *text* plus **bold** words.",
		"",
		"> Quote line one with more words to wrap",
		"> Quote line two with additional words to wrap",
		"",
		"- item one with a long line that should wrap cleanly at small widths",
		"  - nested item with more words and wrapping",
		"",
		"1. first ordered entry with enough words to wrap",
		"",
		"---",
	}, "\n")

	// The link atom is the widest unbreakable unit.
	minWidth := len("[link](https://example.com)") + len("  • ")
	for width := minWidth; width <= 100; width += 5 {
		out := renderMarkdown(t, src, width)
		for i, line := range strings.Split(out, "\n") {
			if w := ansi.PrintableRuneWidth(stripANSI(line)); w > width {
				t.Fatalf("line %d exceeds width %d (%d): %q", i+1, width, w, stripANSI(line))
			}
		}
	}
}

func TestWrapPolicies(t *testing.T) {
	tests := []struct {
		name   string
		policy WrapPolicy
		width  int
		want   int
	}{
		{"three quarters", WrapThreeQuarters, 80, 60},
		{"three quarters capped", WrapThreeQuarters, 200, 100},
		{"half", WrapHalf, 80, 40},
		{"full", WrapFull, 80, 80},
		{"columns", WrapColumns(33), 200, 33},
	}
	for _, tt := range tests {
		if got := tt.policy(tt.width); got != tt.want {
			t.Fatalf("%s: policy(%d)=%d want %d", tt.name, tt.width, got, tt.want)
		}
	}
}

func TestDefaultWrapPolicyAppliesToRender(t *testing.T) {
	src := strings.Repeat("word ", 40)
	var out strings.Builder
	if err := NewRenderer(PlainTheme()).Render(&out, src, 40); err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, line := range strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n") {
		if len(line) > 30 {
			t.Fatalf("line wider than three quarters of 40: %q", line)
		}
	}
}
