package mdrtf

import (
	"strconv"
	"strings"
)

const (
	bulletGlyph     = '•'
	listMarkerWidth = 4
)

// orderedState numbers the items of the current ordered list from one,
// whatever numbers the source used.
type orderedState struct {
	active bool
	next   int
}

// listStage renders list items. A list starts only when the following line
// continues it, so a lone "- x" stays plain text. Unordered items are tried
// first; ordered numbering is untouched by a bullet line.
func listStage(s *session, ln *line) error {
	if s.cfg.unorderedLists && s.unorderedItem(ln) {
		return nil
	}
	if s.cfg.orderedLists {
		s.orderedItem(ln)
	}
	return nil
}

func (s *session) unorderedItem(ln *line) bool {
	marker := unorderedMarker(ln.raw)
	prefix := ""
	switch marker {
	case 0:
	case '*':
		prefix = hexEscape('*') + " "
	default:
		prefix = string(marker) + " "
	}
	if prefix == "" || !strings.HasPrefix(ln.text, prefix) {
		s.endUnordered(ln)
		return false
	}
	if !s.state.unordered && unorderedMarker(ln.next) != marker {
		return false
	}
	if !s.state.unordered {
		s.log.Debug("mdrtf: unordered list", "line", ln.pos+s.offset)
	}
	s.state.unordered = true

	var b strings.Builder
	b.WriteString(SlotListMarker.foreground())
	b.WriteByte(' ')
	b.WriteString(unicodeEscape(bulletGlyph))
	b.WriteString("  ")
	b.WriteString(SlotText.foreground())
	b.WriteString(ln.text[len(prefix):])
	ln.text = b.String()
	return true
}

func (s *session) endUnordered(ln *line) {
	if s.state.unordered {
		s.log.Debug("mdrtf: unordered list end", "line", ln.pos+s.offset)
	}
	s.state.unordered = false
}

// orderedItem renumbers "N." and "N)" items. Blank lines keep an open list
// open; any other non-item line closes it.
func (s *session) orderedItem(ln *line) bool {
	if ln.text == "" {
		return false
	}
	n := orderedMarkerLen(ln.text)
	if n == 0 {
		s.state.ordered = orderedState{}
		return false
	}
	if !s.state.ordered.active {
		if ln.next == "" || leadingDigits(ln.next) == 0 {
			return false
		}
		s.state.ordered = orderedState{active: true, next: 1}
		s.log.Debug("mdrtf: ordered list", "line", ln.pos+s.offset)
	}
	ordinal := s.state.ordered.next
	s.state.ordered.next++

	marker := strconv.Itoa(ordinal) + ln.text[n-1:n]
	if pad := n - len(marker); pad > 0 {
		marker = strings.Repeat(" ", pad) + marker
	}
	if pad := listMarkerWidth - len(marker); pad > 0 {
		marker += strings.Repeat(" ", pad)
	} else {
		marker += " "
	}

	var b strings.Builder
	b.WriteString(SlotListMarker.foreground())
	b.WriteString(marker)
	b.WriteString(SlotText.foreground())
	b.WriteString(strings.TrimPrefix(ln.text[n:], " "))
	ln.text = b.String()
	return true
}
