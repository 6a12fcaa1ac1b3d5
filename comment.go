package mdrtf

import (
	"strconv"
	"strings"
)

const (
	commentOpen       = "<!--"
	commentClose      = "-->"
	columnWidthsOpen  = "<!---CW:"
	defaultCellWidth  = 2000
	maxColumnWidthTwp = 31680
)

// commentStage strips HTML comments. A "<!---CW:w1:w2:...-->" comment also
// sets the column widths, in twips, of every following table until the next
// such comment. A line left empty by stripping produces no paragraph.
func commentStage(s *session, ln *line) error {
	if !strings.Contains(ln.text, commentOpen) {
		return nil
	}
	if i := strings.Index(ln.text, columnWidthsOpen); i >= 0 {
		if widths := parseColumnWidths(ln.text[i+len(columnWidthsOpen):]); len(widths) > 0 {
			s.state.columnWidths = widths
			s.log.Debug("mdrtf: column widths", "line", ln.pos+s.offset, "widths", widths)
		}
	}
	ln.text = stripComments(ln.text)
	if ln.text == "" {
		ln.skip = true
	}
	return nil
}

// parseColumnWidths reads colon separated integers up to the comment close.
// Tokens that are not positive integers are ignored.
func parseColumnWidths(text string) []int {
	if end := strings.Index(text, commentClose); end >= 0 {
		text = text[:end]
	}
	var widths []int
	for _, tok := range strings.Split(text, ":") {
		n, err := strconv.Atoi(strings.TrimSpace(tok))
		if err != nil || n <= 0 {
			continue
		}
		widths = append(widths, min(n, maxColumnWidthTwp))
	}
	return widths
}

// stripComments removes every comment on the line. An unterminated comment
// runs to the end of the line.
func stripComments(text string) string {
	for {
		start := strings.Index(text, commentOpen)
		if start < 0 {
			return text
		}
		end := strings.Index(text[start+len(commentOpen):], commentClose)
		if end < 0 {
			return text[:start]
		}
		text = text[:start] + text[start+len(commentOpen)+end+len(commentClose):]
	}
}
