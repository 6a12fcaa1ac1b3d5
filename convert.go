package mdrtf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Converter turns Markdown into RTF. It holds settings only; every conversion
// runs in its own session, so a Converter is safe for concurrent use.
type Converter struct {
	cfg config
}

// New returns a Converter configured by opts.
func New(opts ...Option) *Converter {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Converter{cfg: cfg}
}

// Result is the output of one conversion.
type Result struct {
	RTF         string
	Diagnostics []Diagnostic
}

// Err joins the diagnostics into one error, or returns nil when every line
// converted cleanly.
func (r Result) Err() error {
	if len(r.Diagnostics) == 0 {
		return nil
	}
	errs := make([]error, len(r.Diagnostics))
	for i := range r.Diagnostics {
		errs[i] = r.Diagnostics[i]
	}
	return errors.Join(errs...)
}

// Convert converts text with a Converter built from opts.
func Convert(ctx context.Context, text string, opts ...Option) Result {
	return New(opts...).ConvertText(ctx, text)
}

// ConvertText splits text into lines and converts them.
func (c *Converter) ConvertText(ctx context.Context, text string) Result {
	return c.ConvertLines(ctx, SplitLines(text))
}

// ConvertLines converts a document given as lines without terminators.
func (c *Converter) ConvertLines(ctx context.Context, lines []string) Result {
	if ctx == nil {
		ctx = context.Background()
	}
	s := newSession(ctx, &c.cfg, lines)
	s.run()
	return Result{RTF: s.out.String(), Diagnostics: s.diags}
}

// SplitLines splits text on \n, \r\n and \r. A trailing line break does not
// produce an empty final line.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := make([]string, 0, strings.Count(text, "\n")+1)
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\n':
			lines = append(lines, text[start:i])
			start = i + 1
		case '\r':
			lines = append(lines, text[start:i])
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			start = i + 1
		}
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}

// conversionState is the cross-line state of one conversion. At most one of
// code, ordered and unordered drives the formatting of a given line; an open
// code block bypasses every other stage.
type conversionState struct {
	code         codeState
	ordered      orderedState
	unordered    bool
	columnWidths []int
}

type session struct {
	ctx    context.Context
	cfg    *config
	source []string
	lines  []string
	offset int
	state  conversionState
	out    bytes.Buffer
	diags  []Diagnostic
	log    *slog.Logger
}

func newSession(ctx context.Context, cfg *config, source []string) *session {
	s := &session{ctx: ctx, cfg: cfg, source: source, log: Logger()}
	body := source
	if cfg.frontMatter {
		body, s.offset = skipFrontMatter(source)
	}
	s.lines = make([]string, len(body))
	for i, raw := range body {
		raw = sanitizeLine(raw)
		if cfg.normalize {
			raw = norm.NFC.String(raw)
		}
		s.lines[i] = raw
	}
	return s
}

// line is one source line moving through the pipeline.
type line struct {
	pos   int
	raw   string
	next  string
	kind  lineKind
	text  string
	level int
	skip  bool
	block bool
	last  int

	// tableRows is the number of pipe rows when the line starts a table.
	tableRows int
}

// baseColor is the color restored after an inline colored span.
func (ln *line) baseColor() ColorSlot {
	if ln.level > 0 {
		return SlotHeading
	}
	return SlotText
}

type stage struct {
	name string
	run  func(*session, *line) error
}

// prosePipeline is the fixed stage order for every line outside a code block.
// Escaping runs first so later stages only see literal syntax characters.
var prosePipeline = []stage{
	{"escape", escapeStage},
	{"heading", headingStage},
	{"code-span", codeSpanStage},
	{"literal-runs", literalRunStage},
	{"style", styleStage},
	{"image", imageStage},
	{"comment", commentStage},
	{"list", listStage},
	{"table", tableStage},
	{"link", linkStage},
}

func (s *session) run() {
	s.writeHeader()
	for i := 0; i < len(s.lines); i++ {
		i = s.processLine(i)
	}
	if s.state.code.active {
		s.closeCodeBlock()
	}
	s.out.WriteString("}")
}

func (s *session) writeHeader() {
	s.out.WriteString(`{\rtf1\ansi\deff0 `)
	s.out.WriteString(`{\fonttbl`)
	s.out.WriteString(s.cfg.bodyFont.tableDef(0))
	s.out.WriteString(s.cfg.codeFont.tableDef(1))
	s.out.WriteString("}")
	s.out.WriteString(s.cfg.theme.Palette().colorTable())
	s.out.WriteString("\\pard\n")
	s.out.WriteString(SlotText.foreground())
	s.out.WriteString(`\fs` + strconv.Itoa(s.cfg.sizes.halfPoints(0)) + " ")
}

// processLine converts the line at pos and returns the index of the last
// source line it consumed. Any failure, including a panic, is recorded as a
// diagnostic and replaced according to the error output policy.
func (s *session) processLine(pos int) (last int) {
	ln := s.newLine(pos)
	s.endCodeBlock(ln)
	mark := s.out.Len()
	defer func() {
		if r := recover(); r != nil {
			s.fail(ln, mark, fmt.Errorf("panic: %v", r))
			last = pos
		}
	}()
	if err := s.dispatch(ln); err != nil {
		s.fail(ln, mark, err)
		return pos
	}
	return ln.last
}

func (s *session) newLine(pos int) *line {
	ln := &line{pos: pos, raw: s.lines[pos], last: pos}
	if pos+1 < len(s.lines) {
		ln.next = s.lines[pos+1]
	}
	ln.kind = classify(ln.raw)
	ln.text = ln.raw
	if ln.kind == kindTableRow {
		if rows := s.tableRows(pos); rows >= minTableRows {
			ln.tableRows = rows
		}
	}
	return ln
}

// endCodeBlock closes an open indented block before a line that does not
// continue it. It runs ahead of the recovery mark so a failure on ln cannot
// drop the closing row.
func (s *session) endCodeBlock(ln *line) {
	if !s.state.code.active || s.state.code.fence != "" || ln.kind == kindCode {
		return
	}
	s.closeCodeBlock()
}

func (s *session) dispatch(ln *line) error {
	if s.state.code.fence != "" {
		return s.fencedLine(ln)
	}
	switch ln.kind {
	case kindFence:
		return s.openFence(ln)
	case kindCode:
		return s.codeLine(ln)
	}
	for _, st := range prosePipeline {
		if err := st.run(s, ln); err != nil {
			return fmt.Errorf("%s: %w", st.name, err)
		}
		if ln.skip {
			return nil
		}
	}
	if err := checkGroups(ln.text); err != nil {
		return err
	}
	s.out.WriteString(ln.text)
	s.out.WriteString("\n\\par \n")
	return nil
}

func (s *session) fail(ln *line, mark int, err error) {
	s.out.Truncate(mark)
	srcIndex := ln.pos + s.offset
	text := ln.raw
	if srcIndex < len(s.source) {
		text = s.source[srcIndex]
	}
	output := s.cfg.errorOutput.render(text)
	s.out.WriteString(output)
	s.out.WriteString("\n\\par \n")
	s.diags = append(s.diags, Diagnostic{Line: srcIndex, Text: text, Output: output, Err: err})
	s.log.Warn("mdrtf: line recovered", "line", srcIndex, "err", err)
}

// checkGroups verifies that every RTF group opened on a line is closed on it.
func checkGroups(text string) error {
	depth := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return ErrUnbalancedGroup
			}
		}
	}
	if depth != 0 {
		return ErrUnbalancedGroup
	}
	return nil
}

func escapeStage(_ *session, ln *line) error {
	ln.text, _ = escapeText(ln.text)
	return nil
}

func literalRunStage(_ *session, ln *line) error {
	ln.text = escapeBulletMarker(ln.text)
	ln.text = escapeLiteralRuns(ln.text, '*')
	ln.text = escapeLiteralRuns(ln.text, '_')
	return nil
}

func styleStage(s *session, ln *line) error {
	if ln.tableRows > 0 {
		return nil
	}
	for _, t := range s.cfg.styleTags() {
		ln.text = applyStyle(ln.text, t.tag, t.word)
	}
	return nil
}

// inline renders already escaped text through the inline stages. Table cells
// use it so they are styled like prose.
func (s *session) inline(text string, base ColorSlot) string {
	text = renderCodeSpans(text, base)
	text = escapeLiteralRuns(text, '*')
	text = escapeLiteralRuns(text, '_')
	for _, t := range s.cfg.styleTags() {
		text = applyStyle(text, t.tag, t.word)
	}
	text = s.renderImages(text, base)
	return renderLinks(text, base)
}
