package mdterm

import "iter"

// Event is one structural unit of a parsed Markdown document.
type Event struct {
	Kind  EventKind
	Block BlockKind
	// Level is the heading level (1-6) for Heading blocks.
	Level int
	// Ordered marks a numbered list; Start is its first counter value.
	Ordered bool
	Start   int
	// Language is the info tag of a fenced code block, empty if none.
	Language string
	// Text carries inline text, inline code, raw markup or a link
	// destination.
	Text string
}

// EventKind identifies what an Event describes.
type EventKind uint8

const (
	// EventBlockStart opens the block named by Event.Block.
	EventBlockStart EventKind = iota
	// EventBlockEnd closes the block named by Event.Block.
	EventBlockEnd
	// EventText is a run of inline text.
	EventText
	// EventCode is an inline code span.
	EventCode
	EventHardBreak
	EventSoftBreak
	// EventLinkStart carries the destination URL in Event.Text.
	EventLinkStart
	EventLinkEnd
	EventEmphasisStart
	EventEmphasisEnd
	EventStrongStart
	EventStrongEnd
	EventStrikeStart
	EventStrikeEnd
	// EventRawMarkup is inline or block HTML passed through by the parser.
	EventRawMarkup
)

// BlockKind names a block-level construct.
type BlockKind uint8

const (
	BlockParagraph BlockKind = iota
	BlockHeading
	BlockQuote
	BlockCodeBlock
	BlockList
	BlockListItem
	BlockRule
)

// Source turns Markdown text into an ordered sequence of events.
type Source interface {
	Events(src []byte) iter.Seq[Event]
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(src []byte) iter.Seq[Event]

// Events calls f(src).
func (f SourceFunc) Events(src []byte) iter.Seq[Event] {
	return f(src)
}

// Events returns a sequence that yields evs in order. It is meant for
// feeding hand-built event streams to a Renderer.
func Events(evs ...Event) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		for _, ev := range evs {
			if !yield(ev) {
				return
			}
		}
	}
}

func blockStart(b BlockKind) Event { return Event{Kind: EventBlockStart, Block: b} }
func blockEnd(b BlockKind) Event   { return Event{Kind: EventBlockEnd, Block: b} }
