package mdrtf

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	sampledata "pkt.systems/mdf/pdf/testdata"
)

// collectMarkdown returns every .md file below root.
func collectMarkdown(t *testing.T, root string) []string {
	t.Helper()
	var paths []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.IsDir() && strings.HasSuffix(path, ".md") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", root, err)
	}
	return paths
}

// TestConvertSampledataCorpus converts every Markdown sample from the local
// testdata and the shared sample corpus. Each document must convert without
// diagnostics into balanced RTF.
func TestConvertSampledataCorpus(t *testing.T) {
	t.Parallel()
	paths := collectMarkdown(t, "testdata")
	if root, err := sampledata.Root(); err == nil {
		paths = append(paths, collectMarkdown(t, root)...)
	}
	if len(paths) == 0 {
		t.Skip("no markdown samples found")
	}
	conv := New(WithImageResolver(nil))
	for _, path := range paths {
		path := path
		t.Run(filepath.Base(path), func(t *testing.T) {
			t.Parallel()
			src, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("read %s: %v", path, err)
			}
			if ValidateInput(src) != nil {
				t.Skipf("%s is not text input", path)
			}
			res := conv.ConvertText(context.Background(), string(src))
			if err := res.Err(); err != nil {
				t.Fatalf("%s: %v", path, err)
			}
			if err := checkGroups(res.RTF); err != nil {
				t.Fatalf("%s: %v", path, err)
			}
			if !strings.HasPrefix(res.RTF, `{\rtf1\ansi\deff0 `) || !strings.HasSuffix(res.RTF, "}") {
				t.Fatalf("%s: document frame missing", path)
			}
		})
	}
}
