package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"pkt.systems/mdrtf"
)

func TestOpenInputFileAndURL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input.md")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	reader, closer, err := openInputs([]string{path}, nil)
	if err != nil {
		t.Fatalf("openInputs file: %v", err)
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}
	buf, _ := io.ReadAll(reader)
	if string(buf) != "hello" {
		t.Fatalf("unexpected file content: %q", string(buf))
	}

	fileURL := "file://" + path
	reader, closer, err = openInputs([]string{fileURL}, nil)
	if err != nil {
		t.Fatalf("openInputs file URL: %v", err)
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}
	buf, _ = io.ReadAll(reader)
	if string(buf) != "hello" {
		t.Fatalf("unexpected file URL content: %q", string(buf))
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("stream"))
	}))
	defer srv.Close()
	reader, closer, err = openInputs([]string{srv.URL}, nil)
	if err != nil {
		t.Fatalf("openInputs http: %v", err)
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}
	buf, _ = io.ReadAll(reader)
	if string(buf) != "stream" {
		t.Fatalf("unexpected http content: %q", string(buf))
	}
}

func TestOpenInputsSeparatesSources(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.md")
	second := filepath.Join(dir, "b.md")
	third := filepath.Join(dir, "c.md")
	if err := os.WriteFile(first, []byte("one"), 0o644); err != nil {
		t.Fatalf("write first: %v", err)
	}
	if err := os.WriteFile(second, []byte("two\n"), 0o644); err != nil {
		t.Fatalf("write second: %v", err)
	}
	if err := os.WriteFile(third, []byte("three"), 0o644); err != nil {
		t.Fatalf("write third: %v", err)
	}
	reader, closer, err := openInputs([]string{first, second, third}, nil)
	if err != nil {
		t.Fatalf("openInputs concat: %v", err)
	}
	defer func() { _ = closer.Close() }()
	buf, _ := io.ReadAll(reader)
	if string(buf) != "one\ntwo\nthree" {
		t.Fatalf("unexpected concatenated content: %q", string(buf))
	}
}

func TestOpenInputsStdin(t *testing.T) {
	stdin := strings.NewReader("# piped")
	reader, closer, err := openInputs(nil, stdin)
	if err != nil {
		t.Fatalf("openInputs stdin: %v", err)
	}
	if closer != nil {
		t.Fatalf("stdin must not be closed by the caller")
	}
	if reader != stdin {
		t.Fatalf("expected stdin reader")
	}
}

func TestRunConvertsFileToOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "doc.md")
	out := filepath.Join(dir, "out", "doc.rtf")
	if err := os.WriteFile(in, []byte("## Title\n\nSome **bold** text.\n"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	var stdout, stderr bytes.Buffer
	if code := run([]string{"-o", out, in}, nil, &stdout, &stderr); code != 0 {
		t.Fatalf("run exit %d: %s", code, stderr.String())
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	rtf := string(data)
	for _, want := range []string{`{\rtf1\ansi\deff0 `, `\cf2 \fs36 Title\fs20\cf1 `, `\b bold\b0 `} {
		if !strings.Contains(rtf, want) {
			t.Fatalf("missing %q in %q", want, rtf)
		}
	}
	if stdout.Len() != 0 {
		t.Fatalf("expected nothing on stdout, got %q", stdout.String())
	}
}

func TestRunReadsStdin(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"--theme", "github-light"}, strings.NewReader("plain"), &stdout, &stderr)
	if code != 0 {
		t.Fatalf("run exit %d: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), `\red36\green41\blue47;`) {
		t.Fatalf("expected github-light palette, got %q", stdout.String())
	}
	if !strings.Contains(stdout.String(), "plain\n\\par \n") {
		t.Fatalf("expected converted text, got %q", stdout.String())
	}
}

func TestRunUnknownTheme(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"--theme", "nope"}, strings.NewReader("x"), &stdout, &stderr)
	if code != 2 {
		t.Fatalf("expected exit 2, got %d", code)
	}
	if !strings.Contains(stderr.String(), `unknown theme "nope"`) {
		t.Fatalf("unexpected stderr: %q", stderr.String())
	}
}

func TestRunListThemes(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"--list-themes"}, nil, &stdout, &stderr); code != 0 {
		t.Fatalf("run exit %d", code)
	}
	got := strings.Fields(stdout.String())
	if diff := cmp.Diff(mdrtf.AvailableThemes(), got); diff != "" {
		t.Fatalf("themes mismatch (-want +got):\n%s", diff)
	}
}

func TestRunRejectsInvalidErrorsMode(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"--errors", "loud"}, strings.NewReader("x"), &stdout, &stderr)
	if code != 2 {
		t.Fatalf("expected exit 2, got %d", code)
	}
}

func TestRunRejectsBinaryInput(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(nil, bytes.NewReader([]byte{'a', 0x00, 'b'}), &stdout, &stderr)
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), mdrtf.ErrBinaryInput.Error()) {
		t.Fatalf("unexpected stderr: %q", stderr.String())
	}
}

func TestRunConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "mdrtf.yaml")
	cfg := strings.Join([]string{
		"theme: monochrome",
		"font_size: 12",
		"code_font:",
		"  family: modern",
		"  name: Consolas",
		"colors:",
		"  heading: \"#ff0000\"",
		"underscore_italic: false",
	}, "\n")
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	var stdout, stderr bytes.Buffer
	code := run([]string{"-c", cfgPath}, strings.NewReader("# H\n_x_\n"), &stdout, &stderr)
	if code != 0 {
		t.Fatalf("run exit %d: %s", code, stderr.String())
	}
	rtf := stdout.String()
	for _, want := range []string{`{\f1\fmodern Consolas;}`, `\red255\green0\blue0;`, `\fs24 `, "_x_"} {
		if !strings.Contains(rtf, want) {
			t.Fatalf("missing %q in %q", want, rtf)
		}
	}
}

func TestRunConfigUnknownKey(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(cfgPath, []byte("colour: red\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	var stdout, stderr bytes.Buffer
	if code := run([]string{"--config", cfgPath}, strings.NewReader("x"), &stdout, &stderr); code != 2 {
		t.Fatalf("expected exit 2, got %d", code)
	}
}

func TestRunStrictPassesCleanInput(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"--strict", "--no-images"}, strings.NewReader("ok\n"), &stdout, &stderr)
	if code != 0 {
		t.Fatalf("clean input must pass strict mode, got %d: %s", code, stderr.String())
	}
}

func TestRunHTTPInputResolvesRelativeImages(t *testing.T) {
	var imageHits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/docs/readme.md", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("![logo](img/missing.png)\n"))
	})
	mux.HandleFunc("/docs/img/missing.png", func(w http.ResponseWriter, r *http.Request) {
		imageHits.Add(1)
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	var stdout, stderr bytes.Buffer
	if code := run([]string{srv.URL + "/docs/readme.md"}, nil, &stdout, &stderr); code != 0 {
		t.Fatalf("run exit %d: %s", code, stderr.String())
	}
	if got := imageHits.Load(); got != 1 {
		t.Fatalf("expected one image request, got %d", got)
	}
	if !strings.Contains(stdout.String(), "(img/missing.png)") {
		t.Fatalf("expected placeholder with reference, got %q", stdout.String())
	}
}

func TestIsRemoteInput(t *testing.T) {
	cases := []struct {
		in   []string
		want bool
	}{
		{nil, false},
		{[]string{"https://example.com/a.md"}, true},
		{[]string{"HTTP://example.com/a.md"}, true},
		{[]string{"docs/a.md"}, false},
		{[]string{"https://a", "https://b"}, false},
	}
	for _, tc := range cases {
		if got := isRemoteInput(tc.in); got != tc.want {
			t.Fatalf("isRemoteInput(%v)=%v want %v", tc.in, got, tc.want)
		}
	}
}

func TestImageBaseDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "doc.md")
	if got := imageBaseDir([]string{path}); got != filepath.Join(dir, "sub") {
		t.Fatalf("imageBaseDir=%q", got)
	}
	if got := imageBaseDir([]string{"file://" + path}); got != filepath.Join(dir, "sub") {
		t.Fatalf("imageBaseDir file URL=%q", got)
	}
}
