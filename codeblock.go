package mdrtf

import (
	"strings"

	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/padding"
)

// codeBlockGutter is the space kept right of the longest line of a block.
const codeBlockGutter = 3

// codeState tracks an open code block. fence is empty for indented blocks.
type codeState struct {
	active  bool
	fence   string
	padding int
}

// codeLine writes one line of an indented block, opening the block first
// when needed.
func (s *session) codeLine(ln *line) error {
	if !s.state.code.active {
		end := ln.pos
		for end < len(s.lines) && isIndentedCode(s.lines[end]) {
			end++
		}
		s.openCodeBlock("", s.lines[ln.pos:end])
	}
	s.writeCodeRow(ln.raw)
	return nil
}

// openFence starts a fenced block. The fence line itself is not printed and
// the block runs to the matching fence or the end of the document.
func (s *session) openFence(ln *line) error {
	fence := fenceMarker(ln.raw)
	end := ln.pos + 1
	for end < len(s.lines) && !isClosingFence(s.lines[end], fence) {
		end++
	}
	s.openCodeBlock(fence, s.lines[ln.pos+1:end])
	s.log.Debug("mdrtf: fenced code block", "line", ln.pos+s.offset, "lines", end-ln.pos-1)
	return nil
}

func (s *session) fencedLine(ln *line) error {
	if isClosingFence(ln.raw, s.state.code.fence) {
		s.closeCodeBlock()
		return nil
	}
	s.writeCodeRow(ln.raw)
	return nil
}

func isClosingFence(line, fence string) bool {
	trim := strings.TrimSpace(line)
	return len(trim) >= len(fence) && strings.Trim(trim, fence[:1]) == ""
}

func (s *session) openCodeBlock(fence string, body []string) {
	s.state.code = codeState{active: true, fence: fence, padding: s.blockPadding(body)}
	s.writeCodeRow("")
}

func (s *session) closeCodeBlock() {
	s.writeCodeRow("")
	s.state.code = codeState{}
}

// blockPadding is the rendered width every row of a block is padded to.
func (s *session) blockPadding(body []string) int {
	longest := 0
	for _, l := range body {
		longest = max(longest, s.codeWidth(l))
	}
	return max(longest, s.cfg.codePadding) + codeBlockGutter
}

// codeWidth is the rendered width of a raw code line with tabs expanded. The
// width measure counts a tab as zero columns.
func (s *session) codeWidth(l string) int {
	return ansi.PrintableRuneWidth(l) + strings.Count(l, "\t")*s.cfg.tabLength
}

// writeCodeRow writes raw as a monospaced row on the code background, padded
// with spaces so every row of the block has the same rendered width.
func (s *session) writeCodeRow(raw string) {
	out, _ := escapeCode(raw)
	s.out.WriteString(SlotCodeForeground.foreground())
	s.out.WriteString(`\f1 `)
	s.out.WriteString(SlotCodeBackground.background())
	s.out.WriteString(out)
	s.out.WriteString(padRow(raw, s.state.code.padding-strings.Count(raw, "\t")*s.cfg.tabLength))
	s.out.WriteString(`\highlight0 \f0 `)
	s.out.WriteString(SlotText.foreground())
	s.out.WriteString("\\par \n")
}

// padRow returns the spaces that widen raw to width columns. The padding
// writer fills a line when it sees the line break, so raw is written with one
// and the break is dropped again.
func padRow(raw string, width int) string {
	if width <= 0 {
		return ""
	}
	padded := padding.String(raw+"\n", uint(width))
	return strings.TrimSuffix(padded[len(raw):], "\n")
}
