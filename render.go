package mdrtf

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// RenderRequest configures Render.
type RenderRequest struct {
	Reader  io.Reader
	Writer  io.Writer
	Theme   Theme
	Options []Option
}

// Render reads Markdown from req.Reader and writes the RTF document to
// req.Writer. A UTF-8 or UTF-16 byte order mark selects the input encoding;
// input without one is read as UTF-8. Invalid or binary input is rejected
// before conversion. Lines that failed to convert are returned as
// diagnostics; the document is written regardless.
func Render(ctx context.Context, req RenderRequest) ([]Diagnostic, error) {
	if req.Reader == nil {
		return nil, fmt.Errorf("render: reader is nil")
	}
	if req.Writer == nil {
		return nil, fmt.Errorf("render: writer is nil")
	}
	src, err := readSource(req.Reader)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	if err := ValidateInput(src); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	opts := req.Options
	if req.Theme != nil {
		opts = append([]Option{WithTheme(req.Theme)}, opts...)
	}
	res := New(opts...).ConvertText(ctx, string(src))
	if _, err := io.WriteString(req.Writer, res.RTF); err != nil {
		return res.Diagnostics, fmt.Errorf("render: write: %w", err)
	}
	return res.Diagnostics, nil
}

// readSource reads r to the end, decoding UTF-16 when a byte order mark says
// so and dropping a UTF-8 byte order mark. Other input passes through
// untouched so validation sees the original bytes.
func readSource(r io.Reader) ([]byte, error) {
	dec := unicode.BOMOverride(transform.Nop)
	src, err := io.ReadAll(transform.NewReader(r, dec))
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return src, nil
}
