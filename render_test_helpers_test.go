package mdrtf

import (
	"context"
	"os"
	"strings"
	"testing"
)

// convertBody converts lines and returns the document without the header and
// the closing brace. It fails the test on any diagnostic.
func convertBody(t *testing.T, lines []string, opts ...Option) string {
	t.Helper()
	res := New(opts...).ConvertLines(context.Background(), lines)
	if err := res.Err(); err != nil {
		t.Fatalf("unexpected diagnostics: %v", err)
	}
	return body(t, res.RTF)
}

func body(t *testing.T, rtf string) string {
	t.Helper()
	const marker = "\\pard\n\\cf1 \\fs20 "
	i := strings.Index(rtf, marker)
	if i < 0 {
		t.Fatalf("header not found in %q", rtf)
	}
	if !strings.HasSuffix(rtf, "}") {
		t.Fatalf("document not closed: %q", rtf)
	}
	return rtf[i+len(marker) : len(rtf)-1]
}

func para(text string) string {
	return text + "\n\\par \n"
}

func readSample(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/sample.md")
	if err != nil {
		t.Fatalf("read sample.md: %v", err)
	}
	return data
}
