package mdterm

import (
	"bytes"

	"gopkg.in/yaml.v3"
)

// StripFrontMatter removes a leading YAML (---), TOML (+++) or JSON (;;;)
// metadata block from src. The block must open on the first line, look like
// metadata on the second and be closed by the same delimiter. A YAML block
// must also decode to a mapping, so a rule followed by prose that happens to
// contain a colon survives. Anything else is returned unchanged.
func StripFrontMatter(src []byte) []byte {
	first, next := splitLine(src, 0)
	delim, ok := frontMatterDelimiter(first)
	if !ok || next >= len(src) {
		return src
	}
	second, _ := splitLine(src, next)
	if !looksLikeMetadata(second) {
		return src
	}
	for idx := next; idx < len(src); {
		line, after := splitLine(src, idx)
		if bytes.Equal(bytes.TrimSpace(line), delim) {
			if string(delim) == "---" && !isYAMLMapping(src[next:idx]) {
				return src
			}
			return src[after:]
		}
		idx = after
	}
	return src
}

// splitLine returns the line starting at start without its terminator and
// the offset just past it.
func splitLine(src []byte, start int) ([]byte, int) {
	i := bytes.IndexByte(src[start:], '\n')
	if i < 0 {
		return bytes.TrimSuffix(src[start:], []byte("\r")), len(src)
	}
	return bytes.TrimSuffix(src[start:start+i], []byte("\r")), start + i + 1
}

func frontMatterDelimiter(line []byte) ([]byte, bool) {
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(line, []byte("\xef\xbb\xbf")))
	for _, d := range [][]byte{[]byte("---"), []byte("+++"), []byte(";;;")} {
		if bytes.Equal(trimmed, d) {
			return d, true
		}
	}
	return nil, false
}

func looksLikeMetadata(line []byte) bool {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 {
		return false
	}
	switch trimmed[0] {
	case '{', '[':
		return true
	}
	return bytes.ContainsAny(trimmed, ":=")
}

func isYAMLMapping(block []byte) bool {
	var meta map[string]any
	if err := yaml.Unmarshal(block, &meta); err != nil {
		return false
	}
	return len(meta) > 0
}
