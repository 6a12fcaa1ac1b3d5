package mdrtf

import "strings"

// bracketRef locates a "[title](target)" construct. All offsets index the
// text it was found in; start and end cover the whole construct.
type bracketRef struct {
	start, end int
	title      string
	target     string
}

// findBracketRef returns the first "[title](target)" at or after from. The
// closing bracket must be directly followed by the opening parenthesis.
func findBracketRef(text string, from int) (bracketRef, bool) {
	for from < len(text) {
		open := strings.IndexByte(text[from:], '[')
		if open < 0 {
			return bracketRef{}, false
		}
		open += from
		mid := strings.Index(text[open+1:], "](")
		if mid < 0 {
			return bracketRef{}, false
		}
		mid += open + 1
		if inner := strings.LastIndexByte(text[open+1:mid], '['); inner >= 0 {
			from = open + 1 + inner
			continue
		}
		closing := strings.IndexByte(text[mid+2:], ')')
		if closing < 0 {
			return bracketRef{}, false
		}
		closing += mid + 2
		return bracketRef{
			start:  open,
			end:    closing + 1,
			title:  text[open+1 : mid],
			target: strings.TrimSpace(text[mid+2 : closing]),
		}, true
	}
	return bracketRef{}, false
}

func linkStage(_ *session, ln *line) error {
	if ln.block {
		return nil
	}
	ln.text = renderLinks(ln.text, ln.baseColor())
	return nil
}

// renderLinks turns every "[title](url)" into an RTF HYPERLINK field shown
// underlined in the link color, then restores base.
func renderLinks(text string, base ColorSlot) string {
	var b strings.Builder
	pos := 0
	for {
		ref, ok := findBracketRef(text, pos)
		if !ok {
			break
		}
		b.WriteString(text[pos:ref.start])
		writeLinkField(&b, ref.target, ref.title)
		b.WriteString(base.foreground())
		pos = ref.end
	}
	if pos == 0 {
		return text
	}
	b.WriteString(text[pos:])
	return b.String()
}

// writeLinkField writes a HYPERLINK field. target is escaped text; the field
// instruction gets its unescaped form with quotes percent-encoded.
func writeLinkField(b *strings.Builder, target, result string) {
	b.WriteString(`{\field{\*\fldinst{HYPERLINK "`)
	b.WriteString(fieldTarget(target))
	b.WriteString(`"}}{\fldrslt{\ul`)
	b.WriteString(SlotLink.foreground())
	b.WriteString(result)
	b.WriteString(`}}}`)
}

func fieldTarget(target string) string {
	raw := strings.ReplaceAll(Unescape(target), `"`, "%22")
	out, _ := escapeText(strings.ReplaceAll(raw, `\`, "/"))
	return out
}
