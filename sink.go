package mdterm

import (
	"bufio"
	"io"
)

// sink buffers terminal output and keeps the first write error.
type sink struct {
	w   *bufio.Writer
	err error
}

func newSink(w io.Writer) *sink {
	if bw, ok := w.(*bufio.Writer); ok {
		return &sink{w: bw}
	}
	return &sink{w: bufio.NewWriter(w)}
}

func (s *sink) WriteString(str string) {
	if s.err != nil || str == "" {
		return
	}
	_, s.err = s.w.WriteString(str)
}

func (s *sink) Flush() error {
	if s.err != nil {
		return s.err
	}
	s.err = s.w.Flush()
	return s.err
}
