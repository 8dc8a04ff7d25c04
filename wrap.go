package mdterm

import (
	"iter"
	"strings"
)

// WrapPolicy derives the wrap column budget from a terminal width.
type WrapPolicy func(terminalWidth int) int

// WrapThreeQuarters wraps at three quarters of the terminal, capped at 100
// columns.
func WrapThreeQuarters(terminalWidth int) int {
	return min(terminalWidth*3/4, 100)
}

// WrapHalf wraps at half the terminal width.
func WrapHalf(terminalWidth int) int {
	return terminalWidth / 2
}

// WrapFull wraps at the full terminal width.
func WrapFull(terminalWidth int) int {
	return terminalWidth
}

// WrapColumns ignores the terminal width and always wraps at n columns.
func WrapColumns(n int) WrapPolicy {
	return func(int) int { return n }
}

// Wrap reflows text into lines no wider than width without splitting words.
// Spaces and tabs separate words, newlines force a break. A word wider than
// width occupies a line of its own. Escape sequences inside words take no
// columns; a style still open at the end of a line is reset there and
// reopened on the next line.
//
// The returned sequence is lazy and can be ranged over more than once.
func Wrap(text string, width int) iter.Seq[string] {
	return func(yield func(string) bool) {
		var r run
		for i, line := range strings.Split(text, "\n") {
			if i > 0 {
				r.appendBreak()
			}
			r.appendText(line)
		}
		r.closeTail()
		wrapWords(r.words, width, width, yield)
	}
}

// word is the unit the wrapper places. text may carry escape sequences,
// width counts only visible columns.
type word struct {
	text  string
	width int
	brk   bool
}

// run accumulates inline content between two block boundaries.
type run struct {
	words []word
	// glue attaches the next text to the last word instead of starting a
	// new one.
	glue bool
	// pendingEsc is prepended to the next word.
	pendingEsc string
}

func (r *run) reset() {
	r.words = r.words[:0]
	r.glue = false
	r.pendingEsc = ""
}

func (r *run) canGlue() bool {
	return r.glue && len(r.words) > 0 && !r.words[len(r.words)-1].brk
}

func (r *run) appendText(text string) {
	text = strings.ReplaceAll(text, "\t", " ")
	for i, part := range strings.Split(text, " ") {
		if i > 0 {
			r.glue = false
		}
		if part == "" {
			continue
		}
		r.appendAtom(part)
		r.glue = true
	}
}

// appendAtom adds s as an unbreakable unit.
func (r *run) appendAtom(s string) {
	if s == "" {
		return
	}
	if r.canGlue() {
		last := &r.words[len(r.words)-1]
		last.text += s
		last.width += VisibleWidth(s)
	} else {
		r.words = append(r.words, word{text: r.pendingEsc + s, width: VisibleWidth(s)})
		r.pendingEsc = ""
	}
	r.glue = true
}

// appendEscape adds a zero-width sequence, attached to the previous word
// when text is glued to it and to the next word otherwise.
func (r *run) appendEscape(seq string) {
	if seq == "" {
		return
	}
	if r.canGlue() {
		r.words[len(r.words)-1].text += seq
		return
	}
	r.pendingEsc += seq
}

func (r *run) appendBreak() {
	r.words = append(r.words, word{brk: true})
	r.glue = false
}

// space separates the previous word from the next one.
func (r *run) space() {
	r.glue = false
}

// closeTail attaches a dangling escape to the last word so resets are not
// lost at the end of a run.
func (r *run) closeTail() {
	if r.pendingEsc == "" {
		return
	}
	if n := len(r.words); n > 0 && !r.words[n-1].brk {
		r.words[n-1].text += r.pendingEsc
	} else {
		r.words = append(r.words, word{text: r.pendingEsc})
	}
	r.pendingEsc = ""
}

// wrapWords greedily places words on lines of at most first columns for the
// first line and rest columns afterwards.
func wrapWords(words []word, first, rest int, yield func(string) bool) {
	var line strings.Builder
	budget := max(first, 1)
	lineWidth := 0
	hasWords := false
	active := ""

	emit := func() bool {
		if active != "" {
			line.WriteString(ansiReset)
		}
		out := line.String()
		line.Reset()
		lineWidth = 0
		hasWords = false
		budget = max(rest, 1)
		if active != "" {
			line.WriteString(active)
		}
		return yield(out)
	}

	for _, w := range words {
		if w.brk {
			if !emit() {
				return
			}
			continue
		}
		if w.width == 0 {
			line.WriteString(w.text)
			active = trackSGR(active, w.text)
			continue
		}
		if hasWords && lineWidth+1+w.width > budget {
			if !emit() {
				return
			}
		}
		if hasWords {
			line.WriteByte(' ')
			lineWidth++
		}
		line.WriteString(w.text)
		lineWidth += w.width
		hasWords = true
		active = trackSGR(active, w.text)
	}
	if hasWords {
		emit()
	}
}

// trackSGR returns the style left open after writing text on top of active.
func trackSGR(active, text string) string {
	for i := 0; i < len(text); i++ {
		if text[i] != '\x1b' {
			continue
		}
		j := i + 1
		for j < len(text) && !isTerminator(text[j]) {
			j++
		}
		if j >= len(text) {
			return active
		}
		seq := text[i : j+1]
		if seq == ansiReset || seq == "\x1b[m" {
			active = ""
		} else if text[j] == 'm' {
			active += seq
		}
		i = j
	}
	return active
}

func isTerminator(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
