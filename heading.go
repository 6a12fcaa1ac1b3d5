package mdrtf

import (
	"strconv"
	"strings"
)

const maxHeadingLevel = 6

// headingStage renders "#" through "######" lines in the heading color and
// size. Seven or more hashes leave the line as plain, trimmed text.
func headingStage(s *session, ln *line) error {
	if ln.kind != kindHeading {
		return nil
	}
	text := strings.TrimLeft(ln.text, " \t")
	level := 0
	for level < len(text) && text[level] == '#' {
		level++
	}
	if level > maxHeadingLevel {
		ln.text = text
		return nil
	}
	body := strings.TrimPrefix(text[level:], " ")
	body = trimClosingHashes(body)
	ln.level = level

	var b strings.Builder
	b.Grow(len(body) + 24)
	b.WriteString(SlotHeading.foreground())
	b.WriteString(`\fs` + strconv.Itoa(s.cfg.sizes.halfPoints(level)) + " ")
	b.WriteString(body)
	b.WriteString(`\fs` + strconv.Itoa(s.cfg.sizes.halfPoints(0)))
	b.WriteString(SlotText.foreground())
	ln.text = b.String()
	return nil
}

// trimClosingHashes drops an optional closing "###" sequence. It must be
// separated from the title by a space.
func trimClosingHashes(body string) string {
	trimmed := strings.TrimRight(body, " ")
	stripped := strings.TrimRight(trimmed, "#")
	if stripped == trimmed {
		return body
	}
	if stripped == "" {
		return ""
	}
	if !strings.HasSuffix(stripped, " ") {
		return body
	}
	return strings.TrimRight(stripped, " ")
}
