package mdrtf

import (
	"strconv"
	"strings"
)

// Option configures conversion behavior.
type Option func(*config)

// Font names an RTF font and its family keyword (nil, roman, swiss, modern,
// script, decor, tech).
type Font struct {
	Family string
	Name   string
}

func (f Font) tableDef(index int) string {
	family := strings.ToLower(strings.TrimSpace(f.Family))
	if family == "" {
		family = "nil"
	}
	name, _ := escapeText(strings.Map(func(r rune) rune {
		if r == ';' {
			return -1
		}
		return r
	}, f.Name))
	return `{\f` + strconv.Itoa(index) + `\f` + family + " " + name + ";}"
}

// PointSizes holds the body size and the six heading sizes, in points.
type PointSizes struct {
	Default int
	Heading [6]int
}

// halfPoints returns the \fs argument for level 0 (body) through 6.
func (p PointSizes) halfPoints(level int) int {
	if level <= 0 || level > len(p.Heading) {
		return p.Default * 2
	}
	return p.Heading[level-1] * 2
}

const (
	defaultCodeBlockPadding = 50
	defaultTabLength        = 5
	defaultMaxImageWidth    = 1024
)

type config struct {
	theme            Theme
	bodyFont         Font
	codeFont         Font
	sizes            PointSizes
	codePadding      int
	tabLength        int
	underscoreBold   bool
	underscoreItalic bool
	orderedLists     bool
	unorderedLists   bool
	errorOutput      ErrorOutput
	images           ImageResolver
	maxImageWidth    int
	frontMatter      bool
	normalize        bool
}

func defaultConfig() config {
	return config{
		theme:            DefaultTheme(),
		bodyFont:         Font{Family: "swiss", Name: "Segoe UI"},
		codeFont:         Font{Family: "modern", Name: "Courier New"},
		sizes:            DefaultPointSizes(),
		codePadding:      defaultCodeBlockPadding,
		tabLength:        defaultTabLength,
		underscoreBold:   true,
		underscoreItalic: true,
		orderedLists:     true,
		unorderedLists:   true,
		errorOutput:      ErrorTextAndRawText,
		images:           &Resolver{},
		maxImageWidth:    defaultMaxImageWidth,
		frontMatter:      true,
		normalize:        true,
	}
}

// DefaultPointSizes returns 10pt body text and 24/18/15/13/11/10pt headings.
func DefaultPointSizes() PointSizes {
	return PointSizes{Default: 10, Heading: [6]int{24, 18, 15, 13, 11, 10}}
}

// WithTheme sets the color palette. A nil theme selects DefaultTheme.
func WithTheme(t Theme) Option {
	return func(cfg *config) {
		if t == nil {
			t = DefaultTheme()
		}
		cfg.theme = t
	}
}

// WithFonts sets the body (\f0) and code (\f1) fonts. Empty names keep the defaults.
func WithFonts(body, code Font) Option {
	return func(cfg *config) {
		if body.Name != "" {
			cfg.bodyFont = body
		}
		if code.Name != "" {
			cfg.codeFont = code
		}
	}
}

// WithPointSizes sets body and heading sizes. Non-positive entries keep the defaults.
func WithPointSizes(sizes PointSizes) Option {
	return func(cfg *config) {
		if sizes.Default > 0 {
			cfg.sizes.Default = sizes.Default
		}
		for i, s := range sizes.Heading {
			if s > 0 {
				cfg.sizes.Heading[i] = s
			}
		}
	}
}

// WithCodeBlockPadding sets the minimum width, in columns, of a code block.
func WithCodeBlockPadding(width int) Option {
	return func(cfg *config) {
		if width >= 0 {
			cfg.codePadding = width
		}
	}
}

// WithTabLength sets how many columns a tab occupies inside code blocks.
func WithTabLength(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.tabLength = n
		}
	}
}

// WithUnderscoreBold enables or disables __bold__.
func WithUnderscoreBold(enabled bool) Option {
	return func(cfg *config) {
		cfg.underscoreBold = enabled
	}
}

// WithUnderscoreItalic enables or disables _italic_.
func WithUnderscoreItalic(enabled bool) Option {
	return func(cfg *config) {
		cfg.underscoreItalic = enabled
	}
}

// WithOrderedLists enables or disables ordered list renumbering.
func WithOrderedLists(enabled bool) Option {
	return func(cfg *config) {
		cfg.orderedLists = enabled
	}
}

// WithUnorderedLists enables or disables bullet lists.
func WithUnorderedLists(enabled bool) Option {
	return func(cfg *config) {
		cfg.unorderedLists = enabled
	}
}

// WithErrorOutput sets what replaces a line that failed to convert.
func WithErrorOutput(policy ErrorOutput) Option {
	return func(cfg *config) {
		cfg.errorOutput = policy
	}
}

// WithImageResolver sets how image references are loaded. A nil resolver
// disables loading; every image then renders as a placeholder link.
func WithImageResolver(r ImageResolver) Option {
	return func(cfg *config) {
		cfg.images = r
	}
}

// WithMaxImageWidth downscales embedded images wider than px pixels. Zero disables scaling.
func WithMaxImageWidth(px int) Option {
	return func(cfg *config) {
		if px >= 0 {
			cfg.maxImageWidth = px
		}
	}
}

// WithFrontMatter enables or disables skipping of leading front matter.
func WithFrontMatter(skip bool) Option {
	return func(cfg *config) {
		cfg.frontMatter = skip
	}
}

// WithNormalization enables or disables NFC normalization of input lines.
func WithNormalization(enabled bool) Option {
	return func(cfg *config) {
		cfg.normalize = enabled
	}
}
