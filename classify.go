package mdrtf

import "strings"

// lineKind is the structural role of a source line, decided once before any
// stage rewrites it.
type lineKind uint8

const (
	kindPlain lineKind = iota
	kindCode
	kindFence
	kindHeading
	kindListItem
	kindTableRow
	kindComment
)

func (k lineKind) String() string {
	switch k {
	case kindCode:
		return "code"
	case kindFence:
		return "fence"
	case kindHeading:
		return "heading"
	case kindListItem:
		return "list-item"
	case kindTableRow:
		return "table-row"
	case kindComment:
		return "comment"
	default:
		return "plain"
	}
}

// classify decides the kind of a raw source line. List items are candidates
// only: the list stage still needs lookahead to accept them.
func classify(raw string) lineKind {
	switch {
	case isIndentedCode(raw):
		return kindCode
	case fenceMarker(raw) != "":
		return kindFence
	}
	trimmed := strings.TrimLeft(raw, " \t")
	switch {
	case strings.HasPrefix(trimmed, "#"):
		return kindHeading
	case strings.HasPrefix(trimmed, "|"):
		return kindTableRow
	case unorderedMarker(raw) != 0:
		return kindListItem
	case orderedMarkerLen(raw) > 0:
		return kindListItem
	case strings.Contains(raw, "<!--"):
		return kindComment
	}
	return kindPlain
}

func isIndentedCode(line string) bool {
	return strings.HasPrefix(line, "\t") || strings.HasPrefix(line, "    ")
}

func fenceMarker(text string) string {
	trim := strings.TrimSpace(text)
	if strings.HasPrefix(trim, "```") {
		return "```"
	}
	if strings.HasPrefix(trim, "~~~") {
		return "~~~"
	}
	return ""
}

// unorderedMarker returns the bullet character of a "- ", "+ " or "* " line.
func unorderedMarker(line string) byte {
	if len(line) < 2 || line[1] != ' ' {
		return 0
	}
	switch line[0] {
	case '-', '+', '*':
		return line[0]
	}
	return 0
}

// orderedMarkerLen returns the length of a leading "12." or "12)" marker, or 0.
func orderedMarkerLen(line string) int {
	n := leadingDigits(line)
	if n == 0 || n >= len(line) {
		return 0
	}
	if line[n] != '.' && line[n] != ')' {
		return 0
	}
	return n + 1
}

func leadingDigits(s string) int {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return i
}
