package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/term"
	"pkt.systems/mdrtf"
	"pkt.systems/version"
)

const (
	defaultThemeName    = "default"
	defaultImageTimeout = 15 * time.Second
)

func init() {
	version.SetDefaultModule("pkt.systems/mdrtf")
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type cliFlags struct {
	themeName        string
	listThemes       bool
	outPath          string
	configPath       string
	bodyFont         string
	codeFont         string
	fontSize         int
	codePadding      int
	tabLength        int
	underscoreBold   bool
	underscoreItalic bool
	orderedLists     bool
	unorderedLists   bool
	errorsMode       string
	strict           bool
	noImages         bool
	imageTimeout     time.Duration
	maxImageWidth    int
	keepFrontMatter  bool
	boring           bool
	verbose          bool
	showVersion      bool
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var f cliFlags
	flags := pflag.NewFlagSet("mdrtf", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVarP(&f.themeName, "theme", "t", defaultThemeName, "Theme name")
	flags.BoolVar(&f.listThemes, "list-themes", false, "List available themes")
	flags.StringVarP(&f.outPath, "output", "o", "", "Output file instead of stdout")
	flags.StringVarP(&f.configPath, "config", "c", "", "YAML configuration file")
	flags.StringVar(&f.bodyFont, "body-font", "", "Body font name")
	flags.StringVar(&f.codeFont, "code-font", "", "Code font name")
	flags.IntVar(&f.fontSize, "font-size", 0, "Body font size in points")
	flags.IntVar(&f.codePadding, "code-padding", 50, "Minimum code block width in columns")
	flags.IntVar(&f.tabLength, "tab-length", 5, "Columns per tab inside code blocks")
	flags.BoolVar(&f.underscoreBold, "underscore-bold", true, "Render __text__ as bold")
	flags.BoolVar(&f.underscoreItalic, "underscore-italic", true, "Render _text_ as italic")
	flags.BoolVar(&f.orderedLists, "ordered-lists", true, "Renumber ordered lists")
	flags.BoolVar(&f.unorderedLists, "unordered-lists", true, "Render bullet lists")
	flags.StringVarP(&f.errorsMode, "errors", "e", "both", "Failed line output: none|raw|marker|both")
	flags.BoolVar(&f.strict, "strict", false, "Exit with status 1 when any line failed to convert")
	flags.BoolVar(&f.noImages, "no-images", false, "Do not load images; render them as links")
	flags.DurationVar(&f.imageTimeout, "image-timeout", defaultImageTimeout, "Timeout for fetching remote images")
	flags.IntVar(&f.maxImageWidth, "max-image-width", 1024, "Downscale wider images to this many pixels (0 disables)")
	flags.BoolVar(&f.keepFrontMatter, "keep-front-matter", false, "Convert leading front matter as text")
	flags.BoolVarP(&f.boring, "boring", "b", false, "Use the monochrome palette")
	flags.BoolVarP(&f.verbose, "verbose", "v", false, "Log conversion details to stderr")
	flags.BoolVar(&f.showVersion, "version", false, "Print version and exit")

	flags.SetInterspersed(true)
	flags.Usage = func() {
		fmt.Fprintln(stderr, version.Module(), version.Current())
		fmt.Fprintf(stderr, "Usage: mdrtf [flags] [inputs...]\n")
		fmt.Fprintln(stderr, "\nIf no input is provided, Markdown is read from stdin.")
		fmt.Fprintln(stderr, "\nFlags:")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		return 2
	}
	if f.showVersion {
		fmt.Fprintln(stdout, version.Module(), version.Current())
		return 0
	}
	if f.listThemes {
		printThemes(stdout)
		return 0
	}
	if f.verbose {
		mdrtf.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
		defer mdrtf.SetLogger(nil)
	}

	var fileCfg fileConfig
	if f.configPath != "" {
		cfg, err := loadConfig(f.configPath)
		if err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return 2
		}
		fileCfg = cfg
	}

	theme, err := resolveTheme(flags, f, fileCfg)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n\n", err)
		printThemes(stderr)
		return 2
	}
	opts, err := buildOptions(flags, f, fileCfg)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 2
	}

	inputs := flags.Args()
	if len(inputs) == 0 && isTerminalReader(stdin) {
		flags.Usage()
		return 2
	}

	timeout := f.imageTimeout
	if !flags.Changed("image-timeout") {
		if d, err := fileCfg.imageTimeout(); err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return 2
		} else if d > 0 {
			timeout = d
		}
	}
	client := &http.Client{Timeout: timeout}
	if f.noImages || (!flags.Changed("no-images") && !fileCfg.imagesEnabled()) {
		opts = append(opts, mdrtf.WithImageResolver(nil))
	} else if !isRemoteInput(inputs) {
		opts = append(opts, mdrtf.WithImageResolver(&mdrtf.Resolver{BaseDir: imageBaseDir(inputs), Client: client}))
	}

	writer, closeOut, err := resolveOutput(f.outPath, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "open output: %v\n", err)
		return 1
	}
	if closeOut != nil {
		defer func() { _ = closeOut.Close() }()
	}

	ctx := context.Background()
	var diags []mdrtf.Diagnostic
	if isRemoteInput(inputs) {
		diags, err = mdrtf.HTTPRender(ctx, mdrtf.HTTPRenderRequest{
			URL:     inputs[0],
			Client:  client,
			Writer:  writer,
			Theme:   theme,
			Options: opts,
		})
	} else {
		reader, closer, openErr := openInputs(inputs, stdin)
		if openErr != nil {
			fmt.Fprintf(stderr, "open input: %v\n", openErr)
			return 1
		}
		if closer != nil {
			defer func() { _ = closer.Close() }()
		}
		diags, err = mdrtf.Render(ctx, mdrtf.RenderRequest{
			Reader:  reader,
			Writer:  writer,
			Theme:   theme,
			Options: opts,
		})
	}
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	for _, d := range diags {
		fmt.Fprintln(stderr, d.Error())
	}
	if f.strict && len(diags) > 0 {
		return 1
	}
	return 0
}

func resolveTheme(flags *pflag.FlagSet, f cliFlags, fileCfg fileConfig) (mdrtf.Theme, error) {
	name := f.themeName
	if !flags.Changed("theme") && fileCfg.Theme != "" {
		name = fileCfg.Theme
	}
	if f.boring {
		name = "monochrome"
	}
	theme, ok := mdrtf.ThemeByName(name)
	if !ok {
		return nil, fmt.Errorf("unknown theme %q", name)
	}
	if fileCfg.Colors == nil || f.boring {
		return theme, nil
	}
	palette, err := fileCfg.Colors.apply(theme.Palette())
	if err != nil {
		return nil, fmt.Errorf("colors: %w", err)
	}
	return mdrtf.NewTheme(theme.Name()+"+custom", palette), nil
}

// buildOptions layers explicit flags over the configuration file.
func buildOptions(flags *pflag.FlagSet, f cliFlags, fileCfg fileConfig) ([]mdrtf.Option, error) {
	opts, err := fileCfg.options()
	if err != nil {
		return nil, err
	}
	if f.bodyFont != "" || f.codeFont != "" {
		opts = append(opts, mdrtf.WithFonts(
			mdrtf.Font{Family: "swiss", Name: f.bodyFont},
			mdrtf.Font{Family: "modern", Name: f.codeFont},
		))
	}
	if f.fontSize > 0 {
		opts = append(opts, mdrtf.WithPointSizes(mdrtf.PointSizes{Default: f.fontSize}))
	}
	if flags.Changed("code-padding") {
		opts = append(opts, mdrtf.WithCodeBlockPadding(f.codePadding))
	}
	if flags.Changed("tab-length") {
		opts = append(opts, mdrtf.WithTabLength(f.tabLength))
	}
	if flags.Changed("underscore-bold") {
		opts = append(opts, mdrtf.WithUnderscoreBold(f.underscoreBold))
	}
	if flags.Changed("underscore-italic") {
		opts = append(opts, mdrtf.WithUnderscoreItalic(f.underscoreItalic))
	}
	if flags.Changed("ordered-lists") {
		opts = append(opts, mdrtf.WithOrderedLists(f.orderedLists))
	}
	if flags.Changed("unordered-lists") {
		opts = append(opts, mdrtf.WithUnorderedLists(f.unorderedLists))
	}
	if flags.Changed("errors") || fileCfg.Errors == "" {
		policy, err := mdrtf.ParseErrorOutput(f.errorsMode)
		if err != nil {
			return nil, fmt.Errorf("invalid --errors: %w", err)
		}
		opts = append(opts, mdrtf.WithErrorOutput(policy))
	}
	if flags.Changed("max-image-width") {
		opts = append(opts, mdrtf.WithMaxImageWidth(f.maxImageWidth))
	}
	if f.keepFrontMatter {
		opts = append(opts, mdrtf.WithFrontMatter(false))
	}
	return opts, nil
}

func printThemes(w io.Writer) {
	names := mdrtf.AvailableThemes()
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintln(w, name)
	}
}

func isRemoteInput(inputs []string) bool {
	if len(inputs) != 1 {
		return false
	}
	u, err := url.Parse(strings.TrimSpace(inputs[0]))
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

// imageBaseDir is the directory relative image paths resolve against: the
// directory of the first local input, or the working directory.
func imageBaseDir(inputs []string) string {
	for _, raw := range inputs {
		path, ok := localPath(raw)
		if ok {
			return filepath.Dir(normalizePath(path))
		}
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return ""
}

func localPath(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err == nil && len(u.Scheme) > 1 {
		if strings.ToLower(u.Scheme) != "file" {
			return "", false
		}
		path := u.Path
		if path == "" {
			path = u.Host
		}
		if unescaped, err := url.PathUnescape(path); err == nil {
			path = unescaped
		}
		return path, true
	}
	return raw, raw != ""
}

type inputSource struct {
	open func() (io.Reader, io.Closer, error)
}

// multiInputReader reads its sources one after another. A line break is
// inserted between sources that do not end with one so lines never merge.
type multiInputReader struct {
	sources   []inputSource
	idx       int
	cur       io.Reader
	curCloser io.Closer
	closed    bool
	last      byte
}

func (m *multiInputReader) Read(p []byte) (int, error) {
	for {
		if m.closed {
			return 0, io.EOF
		}
		if m.cur == nil {
			if m.idx >= len(m.sources) {
				m.closed = true
				return 0, io.EOF
			}
			if m.idx > 0 && m.last != 0 && m.last != '\n' && len(p) > 0 {
				m.last = '\n'
				p[0] = '\n'
				return 1, nil
			}
			reader, closer, err := m.sources[m.idx].open()
			if err != nil {
				return 0, err
			}
			m.cur = reader
			m.curCloser = closer
			m.idx++
		}
		n, err := m.cur.Read(p)
		if n > 0 {
			m.last = p[n-1]
			return n, nil
		}
		if err == io.EOF {
			if m.curCloser != nil {
				_ = m.curCloser.Close()
			}
			m.cur = nil
			m.curCloser = nil
			continue
		}
		if err != nil {
			return 0, err
		}
	}
}

func (m *multiInputReader) Close() error {
	m.closed = true
	if m.curCloser != nil {
		return m.curCloser.Close()
	}
	return nil
}

func openInputs(args []string, stdin io.Reader) (io.Reader, io.Closer, error) {
	if len(args) == 0 {
		return stdin, nil, nil
	}
	sources := make([]inputSource, 0, len(args))
	for _, raw := range args {
		src, err := makeInputSource(raw)
		if err != nil {
			return nil, nil, err
		}
		sources = append(sources, src)
	}
	m := &multiInputReader{sources: sources}
	return m, m, nil
}

func makeInputSource(raw string) (inputSource, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return inputSource{}, fmt.Errorf("empty input argument")
	}
	u, err := url.Parse(raw)
	if err == nil && u.Scheme != "" {
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return inputSource{open: func() (io.Reader, io.Closer, error) {
				return openURL(raw)
			}}, nil
		}
	}
	path, ok := localPath(raw)
	if !ok {
		return inputSource{}, fmt.Errorf("unsupported input %q", raw)
	}
	return inputSource{open: func() (io.Reader, io.Closer, error) {
		return openFile(path)
	}}, nil
}

func openURL(raw string) (io.Reader, io.Closer, error) {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, raw, nil)
	if err != nil {
		return nil, nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_ = resp.Body.Close()
		return nil, nil, fmt.Errorf("http %s: %s", raw, resp.Status)
	}
	return resp.Body, resp.Body, nil
}

func openFile(path string) (io.Reader, io.Closer, error) {
	clean := normalizePath(path)
	f, err := os.Open(clean)
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}

func resolveOutput(path string, stdout io.Writer) (io.Writer, io.Closer, error) {
	if strings.TrimSpace(path) == "" {
		return stdout, nil, nil
	}
	clean := normalizePath(path)
	dir := filepath.Dir(clean)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, err
		}
	}
	f, err := os.Create(clean)
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}

func normalizePath(path string) string {
	if strings.HasPrefix(path, "~/") || path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			if path == "~" {
				path = home
			} else {
				path = filepath.Join(home, path[2:])
			}
		}
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		return abs
	}
	return path
}

func isTerminalReader(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
