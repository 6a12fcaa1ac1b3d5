package mdrtf

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnbalancedGroup reports a rendered line whose RTF groups do not close.
var ErrUnbalancedGroup = errors.New("unbalanced rtf group")

// errorMarker is the visible marker written in place of a failed line.
const errorMarker = "PARSE ERROR"

// ErrorOutput selects what replaces a line that failed to convert.
type ErrorOutput uint8

const (
	// NoOutput writes nothing but the paragraph break.
	NoOutput ErrorOutput = iota
	// RawText writes the escaped source line.
	RawText
	// ErrorText writes the marker "PARSE ERROR".
	ErrorText
	// ErrorTextAndRawText writes the marker followed by the escaped source line.
	ErrorTextAndRawText
)

var errorOutputNames = []string{"none", "raw", "marker", "both"}

func (o ErrorOutput) String() string {
	if int(o) < len(errorOutputNames) {
		return errorOutputNames[o]
	}
	return fmt.Sprintf("ErrorOutput(%d)", uint8(o))
}

// ParseErrorOutput maps "none", "raw", "marker" or "both" to an ErrorOutput.
func ParseErrorOutput(name string) (ErrorOutput, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for i, n := range errorOutputNames {
		if n == key {
			return ErrorOutput(i), nil
		}
	}
	return 0, fmt.Errorf("unknown error output %q (want one of %s)", name, strings.Join(errorOutputNames, ", "))
}

// render returns the replacement for a failed line. The source text is
// escaped so the replacement cannot break the document.
func (o ErrorOutput) render(raw string) string {
	switch o {
	case RawText:
		text, _ := escapeText(sanitizeLine(raw))
		return text
	case ErrorText:
		return errorMarker
	case ErrorTextAndRawText:
		text, _ := escapeText(sanitizeLine(raw))
		return errorMarker + ": " + text
	default:
		return ""
	}
}

// Diagnostic describes one source line that failed to convert.
type Diagnostic struct {
	// Line is the zero-based index of the line in the input.
	Line int
	// Text is the source line.
	Text string
	// Output is what was written in place of the line.
	Output string
	// Err is the underlying failure.
	Err error
}

func (d Diagnostic) Error() string {
	msg := fmt.Sprintf("parse error on line %3d: %s", d.Line, d.Text)
	if d.Err != nil {
		msg += ": " + d.Err.Error()
	}
	return msg
}

func (d Diagnostic) Unwrap() error { return d.Err }
