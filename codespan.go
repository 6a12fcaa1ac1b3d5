package mdrtf

import "strings"

// codeSpanProtected are the characters hex-escaped inside a code span so no
// later stage reads them as syntax.
const codeSpanProtected = "*_[]|<()!#"

func codeSpanStage(_ *session, ln *line) error {
	ln.text = renderCodeSpans(ln.text, ln.baseColor())
	return nil
}

// renderCodeSpans renders `code` spans in the code font and colors. A span
// opened by a run of n backticks closes at the next run of exactly n; an
// unclosed run stays literal.
func renderCodeSpans(text string, base ColorSlot) string {
	if strings.IndexByte(text, '`') < 0 {
		return text
	}
	var b strings.Builder
	b.Grow(len(text) + 32)
	for i := 0; i < len(text); {
		if text[i] != '`' {
			b.WriteByte(text[i])
			i++
			continue
		}
		n := backtickRun(text, i)
		end := closingBackticks(text, i+n, n)
		if end < 0 {
			b.WriteString(text[i : i+n])
			i += n
			continue
		}
		content := text[i+n : end]
		if len(content) >= 2 && content[0] == ' ' && content[len(content)-1] == ' ' && strings.Trim(content, " ") != "" {
			content = content[1 : len(content)-1]
		}
		b.WriteString(`\f1 `)
		b.WriteString(SlotCodeForeground.foreground())
		b.WriteString(SlotCodeBackground.background())
		writeProtected(&b, content)
		b.WriteString(`\highlight0 \f0 `)
		b.WriteString(base.foreground())
		i = end + n
	}
	return b.String()
}

func backtickRun(text string, i int) int {
	n := 0
	for i+n < len(text) && text[i+n] == '`' {
		n++
	}
	return n
}

func closingBackticks(text string, from, n int) int {
	for i := from; i < len(text); {
		if text[i] != '`' {
			i++
			continue
		}
		run := backtickRun(text, i)
		if run == n {
			return i
		}
		i += run
	}
	return -1
}

func writeProtected(b *strings.Builder, content string) {
	for i := 0; i < len(content); i++ {
		c := content[i]
		if strings.IndexByte(codeSpanProtected, c) >= 0 {
			writeHexEscape(b, c)
			continue
		}
		b.WriteByte(c)
	}
}
