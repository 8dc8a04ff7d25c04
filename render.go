package mdterm

import (
	"fmt"
	"io"
	"iter"
	"os"
	"strings"
)

const (
	quoteBar  = "│"
	ruleGlyph = "─"

	// Line break counts requested between blocks. A gap leaves one blank
	// line, a break only ends the current line.
	lineBreak = 1
	blockGap  = 2
)

// Inline content is reflowed, so source line breaks become spaces.
var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// RenderRequest configures Render.
type RenderRequest struct {
	Reader io.Reader
	Writer io.Writer
	// Width is the terminal width in columns; 0 detects it from stdout.
	Width   int
	Theme   Theme
	Options []RenderOption
}

// Render reads Markdown from req.Reader and writes styled terminal text to
// req.Writer.
func Render(req RenderRequest) error {
	if req.Reader == nil {
		return fmt.Errorf("render: reader is nil")
	}
	if req.Writer == nil {
		return fmt.Errorf("render: writer is nil")
	}
	src, err := io.ReadAll(req.Reader)
	if err != nil {
		return fmt.Errorf("render: read: %w", err)
	}
	theme := req.Theme
	if theme == nil {
		theme = DefaultTheme()
	}
	return NewRenderer(theme, req.Options...).Render(req.Writer, string(src), req.Width)
}

// Renderer turns Markdown into styled terminal text. It holds only
// configuration; every call starts from a fresh render context, so one
// Renderer can serve any number of responses.
type Renderer struct {
	styles Styles
	cfg    renderConfig
}

// NewRenderer returns a Renderer using theme and opts.
func NewRenderer(theme Theme, opts ...RenderOption) *Renderer {
	if theme == nil {
		theme = DefaultTheme()
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Renderer{styles: theme.Styles(), cfg: cfg}
}

// Render parses markdown and writes it to w. terminalWidth is queried from
// stdout when not positive. Malformed documents degrade in the output and
// never produce an error; only write failures are returned.
func (r *Renderer) Render(w io.Writer, markdown string, terminalWidth int) error {
	return r.RenderEvents(w, r.cfg.source.Events([]byte(markdown)), terminalWidth)
}

// RenderEvents consumes events once, in order, and writes the result to w.
func (r *Renderer) RenderEvents(w io.Writer, events iter.Seq[Event], terminalWidth int) error {
	if w == nil {
		return fmt.Errorf("render: writer is nil")
	}
	if terminalWidth <= 0 {
		terminalWidth = TerminalWidth(os.Stdout, DefaultTerminalWidth)
	}
	m := newMachine(w, r.styles, r.cfg, terminalWidth)
	if events != nil {
		for ev := range events {
			m.handle(ev)
		}
	}
	if err := m.finish(); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

type listFrame struct {
	ordered bool
	counter int
	depth   int
	// hang indents continuation lines of the current item.
	hang string
}

type spanKind uint8

const (
	spanHeading spanKind = iota
	spanQuote
	spanEmphasis
	spanStrong
	spanStrike
	spanLink
)

type span struct {
	kind  spanKind
	style Style
}

// machine is the render context of one call.
type machine struct {
	out    *sink
	styles Styles
	layout Layout
	code   codeRenderer
	wrap   int

	started     bool
	atLineStart bool
	col         int
	// trailing counts line breaks written since the last content.
	trailing int
	pending  int

	inCode   bool
	codeBuf  strings.Builder
	codeLang string

	lists      []listFrame
	links      []string
	spans      []span
	quoteDepth int
	// blockHang indents continuation lines of a heading.
	blockHang string

	run run
}

func newMachine(w io.Writer, styles Styles, cfg renderConfig, terminalWidth int) *machine {
	layout := cfg.layout
	wrap := layout.WrapPolicy(terminalWidth)
	if wrap <= 0 {
		wrap = terminalWidth
	}
	return &machine{
		out:         newSink(w),
		styles:      styles,
		layout:      layout,
		code:        codeRenderer{styles: styles, highlight: cfg.highlight, minWidth: layout.BorderMinWidth},
		wrap:        wrap,
		atLineStart: true,
		codeLang:    defaultCodeLanguage,
	}
}

func (m *machine) handle(ev Event) {
	switch ev.Kind {
	case EventBlockStart:
		m.startBlock(ev)
	case EventBlockEnd:
		m.endBlock(ev)
	case EventText:
		if m.inCode {
			m.codeBuf.WriteString(sanitize(ev.Text))
			return
		}
		m.text(ev.Text)
	case EventCode:
		if m.inCode {
			m.codeBuf.WriteString(sanitize(ev.Text))
			return
		}
		m.inlineCode(ev.Text)
	case EventHardBreak:
		if m.inCode {
			m.codeBuf.WriteByte('\n')
			return
		}
		m.openRun()
		m.run.appendBreak()
	case EventSoftBreak:
		if m.inCode {
			m.codeBuf.WriteByte('\n')
			return
		}
		m.run.space()
	case EventLinkStart:
		m.links = append(m.links, ev.Text)
		m.pushSpan(spanLink, m.styles.LinkText)
		m.atom("[")
	case EventLinkEnd:
		m.linkEnd()
	case EventEmphasisStart:
		m.pushSpan(spanEmphasis, m.styles.Emphasis)
	case EventEmphasisEnd:
		m.popSpan(spanEmphasis)
	case EventStrongStart:
		m.pushSpan(spanStrong, m.styles.Strong)
	case EventStrongEnd:
		m.popSpan(spanStrong)
	case EventStrikeStart:
		m.pushSpan(spanStrike, m.styles.Strike)
	case EventStrikeEnd:
		m.popSpan(spanStrike)
	case EventRawMarkup:
		if m.inCode {
			m.codeBuf.WriteString(sanitize(ev.Text))
			return
		}
		trimmed := strings.TrimSpace(ev.Text)
		if trimmed != "" && !strings.HasPrefix(trimmed, "<") {
			m.text(ev.Text)
		}
	}
}

func (m *machine) startBlock(ev Event) {
	if m.inCode {
		return
	}
	m.flushInline()
	switch ev.Block {
	case BlockHeading:
		level := min(max(ev.Level, 1), 6)
		m.flush(blockGap)
		m.pushSpan(spanHeading, m.styles.Heading[level-1])
		m.blockHang = strings.Repeat(" ", level+1)
		m.text(strings.Repeat("#", level) + " ")

	case BlockQuote:
		m.flush(lineBreak)
		m.quoteDepth++
		m.pushSpan(spanQuote, m.styles.Quote)

	case BlockList:
		if len(m.lists) > 0 {
			m.request(lineBreak)
		} else {
			m.flush(lineBreak)
		}
		frame := listFrame{ordered: ev.Ordered, depth: len(m.lists), hang: m.listHang()}
		if ev.Ordered {
			frame.counter = ev.Start
		}
		m.lists = append(m.lists, frame)

	case BlockListItem:
		m.listItem()

	case BlockCodeBlock:
		m.flush(lineBreak)
		m.inCode = true
		m.codeBuf.Reset()
		m.codeLang = strings.TrimSpace(ev.Language)
		if m.codeLang == "" {
			m.codeLang = defaultCodeLanguage
		}

	case BlockRule:
		m.rule()
	}
}

func (m *machine) endBlock(ev Event) {
	if m.inCode {
		if ev.Block == BlockCodeBlock {
			m.inCode = false
			m.renderCode()
		}
		return
	}
	m.flushInline()
	switch ev.Block {
	case BlockParagraph:
		if len(m.lists) > 0 {
			m.request(lineBreak)
		} else {
			m.request(blockGap)
		}

	case BlockHeading:
		m.popSpan(spanHeading)
		m.blockHang = ""
		m.request(blockGap)

	case BlockQuote:
		if m.quoteDepth > 0 {
			m.quoteDepth--
		}
		m.popSpan(spanQuote)
		m.request(blockGap)

	case BlockList:
		if n := len(m.lists); n > 0 {
			m.lists = m.lists[:n-1]
		}
		if len(m.lists) == 0 {
			m.request(blockGap)
		}
	}
}

func (m *machine) listItem() {
	var orphan listFrame
	frame := &orphan
	if n := len(m.lists); n > 0 {
		frame = &m.lists[n-1]
	}
	if !m.atLineStart {
		m.newline()
	}
	m.pending = 0

	indent := strings.Repeat("  ", frame.depth)
	var marker string
	if frame.ordered {
		marker = fmt.Sprintf("%*d.", m.layout.CounterWidth, frame.counter)
		frame.counter++
	} else {
		marker = m.layout.Bullet
	}
	m.write(m.quoteBars() + indent + m.styles.ListMarker.Render(marker) + " ")
	frame.hang = indent + strings.Repeat(" ", VisibleWidth(marker)+1)
}

func (m *machine) rule() {
	m.flush(lineBreak)
	width := min(m.layout.RuleWidth, m.wrap-m.prefixWidth(false))
	width = max(width, 1)
	m.writePrefix(false)
	m.write(m.styles.Rule.Render(strings.Repeat(ruleGlyph, width)))
	m.newline()
	m.request(blockGap)
}

func (m *machine) renderCode() {
	lines := m.code.render(m.codeBuf.String(), m.codeLang)
	m.codeBuf.Reset()
	m.codeLang = defaultCodeLanguage
	for _, line := range lines {
		if !m.atLineStart {
			m.newline()
		}
		m.writePrefix(false)
		m.write(line)
		m.newline()
	}
	m.request(blockGap)
}

func (m *machine) linkEnd() {
	n := len(m.links)
	if n == 0 {
		m.atom("]")
		return
	}
	url := m.links[n-1]
	m.links = m.links[:n-1]
	m.atom("]")
	m.popSpan(spanLink)
	if m.styles.LinkURL.Prefix == "" {
		m.atom("(" + url + ")")
		return
	}
	m.atom("(" + m.styles.LinkURL.Prefix + url + ansiReset + m.composed() + ")")
}

func (m *machine) text(s string) {
	s = lineBreaks.Replace(sanitize(s))
	if s == "" {
		return
	}
	m.openRun()
	m.run.appendText(s)
}

func (m *machine) inlineCode(code string) {
	code = lineBreaks.Replace(sanitize(code))
	if m.styles.CodeInline.Prefix == "" {
		m.atom("`" + code + "`")
		return
	}
	m.atom(m.styles.CodeInline.Prefix + code + ansiReset + m.composed())
}

func (m *machine) atom(s string) {
	m.openRun()
	m.run.appendAtom(s)
}

// openRun starts a run in the currently composed style.
func (m *machine) openRun() {
	if len(m.run.words) == 0 && m.run.pendingEsc == "" {
		m.run.pendingEsc = m.composed()
	}
}

func (m *machine) composed() string {
	var b strings.Builder
	b.WriteString(m.styles.Text.Prefix)
	for _, s := range m.spans {
		b.WriteString(s.style.Prefix)
	}
	return b.String()
}

func (m *machine) pushSpan(kind spanKind, style Style) {
	m.spans = append(m.spans, span{kind: kind, style: style})
	m.restyle(style.Prefix)
}

// popSpan removes the innermost span of kind and reapplies what remains. An
// unmatched end is ignored.
func (m *machine) popSpan(kind spanKind) {
	for i := len(m.spans) - 1; i >= 0; i-- {
		if m.spans[i].kind != kind {
			continue
		}
		m.spans = append(m.spans[:i], m.spans[i+1:]...)
		m.restyle(ansiReset + m.composed())
		return
	}
}

func (m *machine) restyle(seq string) {
	if len(m.run.words) == 0 {
		m.run.pendingEsc = m.composed()
		return
	}
	if seq != "" {
		m.run.appendEscape(seq)
	}
}

// flushInline lays out the accumulated run at the current position.
func (m *machine) flushInline() {
	if len(m.run.words) == 0 {
		m.run.reset()
		return
	}
	m.run.closeTail()
	m.flush(0)

	rest := m.wrap - m.prefixWidth(true)
	first := m.wrap - m.col
	if m.atLineStart {
		first = m.wrap - m.prefixWidth(false)
	}
	firstLine := true
	wrapWords(m.run.words, first, rest, func(line string) bool {
		if !firstLine {
			m.newline()
		}
		m.writePrefix(!firstLine)
		firstLine = false
		m.write(line)
		return true
	})
	m.run.reset()
}

// request records that at least n line breaks must precede the next
// content. Requests coalesce to their maximum.
func (m *machine) request(n int) {
	m.pending = max(m.pending, n)
}

// flush writes max(pending, minimum) line breaks, counting those already
// written since the last content, and clears pending.
func (m *machine) flush(minimum int) {
	want := max(m.pending, minimum)
	m.pending = 0
	if !m.started {
		return
	}
	for m.trailing < want {
		m.newline()
	}
}

func (m *machine) newline() {
	if m.atLineStart && m.quoteDepth > 0 {
		m.out.WriteString(strings.TrimSuffix(m.quoteBars(), " "))
	}
	m.out.WriteString("\n")
	m.atLineStart = true
	m.col = 0
	m.trailing++
}

func (m *machine) write(s string) {
	if s == "" {
		return
	}
	m.out.WriteString(s)
	m.col += VisibleWidth(s)
	m.atLineStart = false
	m.trailing = 0
	m.started = true
}

func (m *machine) writePrefix(continuation bool) {
	if !m.atLineStart {
		return
	}
	m.write(m.linePrefix(continuation))
}

func (m *machine) linePrefix(continuation bool) string {
	prefix := m.quoteBars() + m.listHang()
	if continuation {
		prefix += m.blockHang
	}
	return prefix
}

func (m *machine) prefixWidth(continuation bool) int {
	return VisibleWidth(m.linePrefix(continuation))
}

func (m *machine) quoteBars() string {
	if m.quoteDepth == 0 {
		return ""
	}
	return strings.Repeat(m.styles.Quote.Render(quoteBar)+" ", m.quoteDepth)
}

func (m *machine) listHang() string {
	if n := len(m.lists); n > 0 {
		return m.lists[n-1].hang
	}
	return ""
}

// finish closes whatever the event stream left open and flushes the sink.
func (m *machine) finish() error {
	if m.inCode {
		m.inCode = false
		m.renderCode()
	}
	m.flushInline()
	if m.started && !m.atLineStart {
		m.newline()
	}
	return m.out.Flush()
}
