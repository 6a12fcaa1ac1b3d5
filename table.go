package mdrtf

import (
	"strconv"
	"strings"
)

// minTableRows is the number of contiguous pipe rows, header and separator
// included, that make a table.
const minTableRows = 3

// tableStage renders a pipe table starting at the current line. The header
// row fixes the column count, the separator row is skipped and every body row
// is padded or truncated to fit. The lines consumed are reported through
// ln.last so conversion resumes after the table.
func tableStage(s *session, ln *line) error {
	rows := ln.tableRows
	if rows == 0 {
		return nil
	}
	end := ln.pos + rows
	header := splitRow(s.lines[ln.pos])
	cols := len(header)
	edges := s.cellEdges(cols)

	var b strings.Builder
	for r := ln.pos; r < end; r++ {
		if r == ln.pos+1 {
			continue
		}
		cells := header
		if r != ln.pos {
			cells = splitRow(s.lines[r])
		}
		b.WriteString(`\trowd\trgaph150`)
		b.WriteByte('\n')
		for _, x := range edges {
			b.WriteString(`\cellx` + strconv.Itoa(x))
			b.WriteByte('\n')
		}
		for c := 0; c < cols; c++ {
			if c < len(cells) {
				b.WriteString(s.inline(cells[c], SlotText))
			}
			b.WriteString(`\intbl\cell`)
			b.WriteByte('\n')
		}
		b.WriteString(`\row `)
		b.WriteByte('\n')
	}
	b.WriteString(`\pard`)

	ln.text = b.String()
	ln.block = true
	ln.last = end - 1
	s.log.Debug("mdrtf: table", "line", ln.pos+s.offset, "rows", rows-1, "columns", cols)
	return nil
}

// tableRows counts the contiguous pipe rows starting at pos.
func (s *session) tableRows(pos int) int {
	end := pos
	for end < len(s.lines) && isTableRow(s.lines[end]) {
		end++
	}
	return end - pos
}

func isTableRow(raw string) bool {
	return strings.HasPrefix(strings.TrimLeft(raw, " \t"), "|")
}

// cellEdges returns the right boundary of each column in twips. Configured
// widths are used when they cover every column.
func (s *session) cellEdges(cols int) []int {
	edges := make([]int, cols)
	widths := s.state.columnWidths
	sum := 0
	for c := range edges {
		if len(widths) >= cols {
			sum += widths[c]
		} else {
			sum += defaultCellWidth
		}
		edges[c] = sum
	}
	return edges
}

// splitRow escapes a raw row and splits it into trimmed cells. Escaped pipes
// are hex-escaped first and never split.
func splitRow(raw string) []string {
	text, _ := escapeText(raw)
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "|")
	text = strings.TrimSuffix(text, "|")
	cells := strings.Split(text, "|")
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	return cells
}
