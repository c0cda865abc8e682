package publish

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxLength is the per-message character cap of a short-post sink.
const DefaultMaxLength = 280

// Length counts characters the way sinks do, in runes.
func Length(text string) int {
	return utf8.RuneCountInString(text)
}

// Chunk splits text into pieces of at most max runes. Text that already
// fits is returned untouched. Longer text is packed line by line; only a
// line that alone exceeds max is wrapped on words, and words longer than
// max are hard-split.
func Chunk(text string, max int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if max <= 0 || Length(text) <= max {
		return []string{text}
	}

	var (
		chunks []string
		cur    []string
		curLen int
	)
	flush := func() {
		if len(cur) > 0 {
			chunks = append(chunks, strings.Join(cur, "\n"))
			cur = cur[:0]
			curLen = 0
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		n := Length(line)
		if n > max {
			flush()
			chunks = append(chunks, wrapWords(line, max)...)
			continue
		}
		if len(cur) > 0 && curLen+1+n > max {
			flush()
		}
		if len(cur) > 0 {
			curLen++
		}
		cur = append(cur, line)
		curLen += n
	}
	flush()
	return chunks
}

func wrapWords(line string, max int) []string {
	var (
		chunks []string
		cur    strings.Builder
		curLen int
	)
	flush := func() {
		if curLen > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, word := range strings.Fields(line) {
		for Length(word) > max {
			flush()
			head, tail := splitRunes(word, max)
			chunks = append(chunks, head)
			word = tail
		}
		n := Length(word)
		if curLen > 0 && curLen+1+n > max {
			flush()
		}
		if curLen > 0 {
			cur.WriteByte(' ')
			curLen++
		}
		cur.WriteString(word)
		curLen += n
	}
	flush()
	return chunks
}

// truncate cuts s to at most n runes, preferring a word boundary, and marks
// the cut with an ellipsis.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 1 {
		return "…"
	}
	cut := string(runes[:n-1])
	if i := strings.LastIndexByte(cut, ' '); i > len(bulletPrefix) {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,;:.") + "…"
}

func splitRunes(s string, n int) (string, string) {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos], s[pos:]
		}
		i++
	}
	return s, ""
}
