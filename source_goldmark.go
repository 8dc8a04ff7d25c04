package mdterm

import (
	"bytes"
	"iter"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// The goldmark parser configuration never changes and parsing allocates
// per-call state, so one instance is shared.
var (
	markdownParser     goldmark.Markdown
	markdownParserOnce sync.Once
)

func getMarkdownParser() goldmark.Markdown {
	markdownParserOnce.Do(func() {
		markdownParser = goldmark.New(
			goldmark.WithExtensions(
				extension.Strikethrough,
				extension.Linkify,
				extension.TaskList,
			),
		)
	})
	return markdownParser
}

// GoldmarkSource is the default Source. It parses CommonMark plus GitHub
// strikethrough, autolinks and task lists.
type GoldmarkSource struct{}

// Events parses src when the sequence is ranged over and yields its events
// in document order. Ranging again parses again.
func (GoldmarkSource) Events(src []byte) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		doc := getMarkdownParser().Parser().Parse(text.NewReader(src))
		w := &astWalker{source: src, yield: yield}
		_ = ast.Walk(doc, w.walk)
	}
}

type astWalker struct {
	source  []byte
	yield   func(Event) bool
	stopped bool
}

func (w *astWalker) emit(ev Event) {
	if w.stopped {
		return
	}
	if !w.yield(ev) {
		w.stopped = true
	}
}

func (w *astWalker) block(b BlockKind, entering bool) {
	if entering {
		w.emit(blockStart(b))
	} else {
		w.emit(blockEnd(b))
	}
}

func (w *astWalker) walk(node ast.Node, entering bool) (ast.WalkStatus, error) {
	if w.stopped {
		return ast.WalkStop, nil
	}
	status := ast.WalkContinue

	switch node.Kind() {
	case ast.KindParagraph, ast.KindTextBlock:
		w.block(BlockParagraph, entering)

	case ast.KindHeading:
		ev := Event{Kind: EventBlockEnd, Block: BlockHeading, Level: node.(*ast.Heading).Level}
		if entering {
			ev.Kind = EventBlockStart
		}
		w.emit(ev)

	case ast.KindBlockquote:
		w.block(BlockQuote, entering)

	case ast.KindFencedCodeBlock:
		if entering {
			fenced := node.(*ast.FencedCodeBlock)
			w.codeBlock(string(fenced.Language(w.source)), fenced.Lines())
		}
		status = ast.WalkSkipChildren

	case ast.KindCodeBlock:
		if entering {
			w.codeBlock("", node.Lines())
		}
		status = ast.WalkSkipChildren

	case ast.KindList:
		list := node.(*ast.List)
		if entering {
			ev := blockStart(BlockList)
			if list.IsOrdered() {
				ev.Ordered = true
				ev.Start = list.Start
			}
			w.emit(ev)
		} else {
			w.emit(blockEnd(BlockList))
		}

	case ast.KindListItem:
		w.block(BlockListItem, entering)

	case ast.KindThematicBreak:
		w.block(BlockRule, entering)

	case ast.KindHTMLBlock:
		if entering {
			w.htmlBlock(node.(*ast.HTMLBlock))
		}
		status = ast.WalkSkipChildren

	case ast.KindText:
		if entering {
			t := node.(*ast.Text)
			w.emit(Event{Kind: EventText, Text: string(t.Segment.Value(w.source))})
			if t.HardLineBreak() {
				w.emit(Event{Kind: EventHardBreak})
			} else if t.SoftLineBreak() {
				w.emit(Event{Kind: EventSoftBreak})
			}
		}

	case ast.KindString:
		if entering {
			w.emit(Event{Kind: EventText, Text: string(node.(*ast.String).Value)})
		}

	case ast.KindCodeSpan:
		if entering {
			w.emit(Event{Kind: EventCode, Text: w.codeSpanText(node)})
		}
		status = ast.WalkSkipChildren

	case ast.KindEmphasis:
		em := node.(*ast.Emphasis)
		switch {
		case em.Level >= 2 && entering:
			w.emit(Event{Kind: EventStrongStart})
		case em.Level >= 2:
			w.emit(Event{Kind: EventStrongEnd})
		case entering:
			w.emit(Event{Kind: EventEmphasisStart})
		default:
			w.emit(Event{Kind: EventEmphasisEnd})
		}

	case ast.KindLink:
		if entering {
			w.emit(Event{Kind: EventLinkStart, Text: string(node.(*ast.Link).Destination)})
		} else {
			w.emit(Event{Kind: EventLinkEnd})
		}

	case ast.KindImage:
		if entering {
			w.emit(Event{Kind: EventLinkStart, Text: string(node.(*ast.Image).Destination)})
		} else {
			w.emit(Event{Kind: EventLinkEnd})
		}

	case ast.KindAutoLink:
		if entering {
			link := node.(*ast.AutoLink)
			w.emit(Event{Kind: EventLinkStart, Text: string(link.URL(w.source))})
			w.emit(Event{Kind: EventText, Text: string(link.Label(w.source))})
			w.emit(Event{Kind: EventLinkEnd})
		}
		status = ast.WalkSkipChildren

	case ast.KindRawHTML:
		if entering {
			segs := node.(*ast.RawHTML).Segments
			for i := 0; i < segs.Len(); i++ {
				seg := segs.At(i)
				w.emit(Event{Kind: EventRawMarkup, Text: string(seg.Value(w.source))})
			}
		}
		status = ast.WalkSkipChildren

	case extast.KindStrikethrough:
		if entering {
			w.emit(Event{Kind: EventStrikeStart})
		} else {
			w.emit(Event{Kind: EventStrikeEnd})
		}

	case extast.KindTaskCheckBox:
		if entering {
			if node.(*extast.TaskCheckBox).IsChecked {
				w.emit(Event{Kind: EventText, Text: "[x] "})
			} else {
				w.emit(Event{Kind: EventText, Text: "[ ] "})
			}
		}
	}

	if w.stopped {
		return ast.WalkStop, nil
	}
	return status, nil
}

func (w *astWalker) codeBlock(language string, lines *text.Segments) {
	var code bytes.Buffer
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		code.Write(seg.Value(w.source))
	}
	w.emit(Event{Kind: EventBlockStart, Block: BlockCodeBlock, Language: language})
	if code.Len() > 0 {
		w.emit(Event{Kind: EventText, Text: code.String()})
	}
	w.emit(Event{Kind: EventBlockEnd, Block: BlockCodeBlock, Language: language})
}

// htmlBlock passes each line through as raw markup inside a paragraph so
// the text between tags stays visible.
func (w *astWalker) htmlBlock(node *ast.HTMLBlock) {
	var lines []string
	segs := node.Lines()
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		lines = append(lines, string(seg.Value(w.source)))
	}
	if node.HasClosure() {
		lines = append(lines, string(node.ClosureLine.Value(w.source)))
	}
	w.emit(blockStart(BlockParagraph))
	first := true
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !first {
			w.emit(Event{Kind: EventSoftBreak})
		}
		w.emit(Event{Kind: EventRawMarkup, Text: line})
		first = false
	}
	w.emit(blockEnd(BlockParagraph))
}

func (w *astWalker) codeSpanText(node ast.Node) string {
	var code strings.Builder
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch c := child.(type) {
		case *ast.Text:
			code.Write(c.Segment.Value(w.source))
		case *ast.String:
			code.Write(c.Value)
		}
	}
	return code.String()
}
