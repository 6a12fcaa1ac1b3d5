package mdrtf

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Color is an RGB color as written to the RTF color table.
type Color struct {
	R, G, B uint8
}

// ParseColor parses "#RRGGBB", "RRGGBB" or "#RGB".
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("parse color %q: expected #RRGGBB", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// String returns the color as #rrggbb.
func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c Color) tableDef() string {
	return `\red` + strconv.Itoa(int(c.R)) + `\green` + strconv.Itoa(int(c.G)) + `\blue` + strconv.Itoa(int(c.B)) + ";"
}

// ColorSlot is a 1-based index into the emitted color table.
type ColorSlot int

// Color table slots. RTF references colors by position only, so the order here
// is the order of the emitted \colortbl.
const (
	SlotText ColorSlot = iota + 1
	SlotHeading
	SlotCodeForeground
	SlotCodeBackground
	SlotListMarker
	SlotLink
)

func (s ColorSlot) foreground() string {
	return `\cf` + strconv.Itoa(int(s)) + " "
}

func (s ColorSlot) background() string {
	return `\highlight` + strconv.Itoa(int(s)) + " "
}

// Palette groups the six semantic colors used by the converter.
type Palette struct {
	Text           Color
	Heading        Color
	CodeForeground Color
	CodeBackground Color
	ListMarker     Color
	Link           Color
}

// Slot returns the palette color stored at slot.
func (p Palette) Slot(slot ColorSlot) (Color, bool) {
	switch slot {
	case SlotText:
		return p.Text, true
	case SlotHeading:
		return p.Heading, true
	case SlotCodeForeground:
		return p.CodeForeground, true
	case SlotCodeBackground:
		return p.CodeBackground, true
	case SlotListMarker:
		return p.ListMarker, true
	case SlotLink:
		return p.Link, true
	}
	return Color{}, false
}

func (p Palette) colorTable() string {
	var b strings.Builder
	b.WriteString(`{\colortbl;`)
	for slot := SlotText; slot <= SlotLink; slot++ {
		c, _ := p.Slot(slot)
		b.WriteString(c.tableDef())
	}
	b.WriteString("}")
	return b.String()
}

// Theme provides a named palette.
type Theme interface {
	Name() string
	Palette() Palette
}

type theme struct {
	name    string
	palette Palette
}

func (t theme) Name() string     { return t.name }
func (t theme) Palette() Palette { return t.palette }

// NewTheme returns a Theme from a Palette.
func NewTheme(name string, palette Palette) Theme {
	return theme{name: name, palette: palette}
}

func rgb(r, g, b uint8) Color { return Color{R: r, G: g, B: b} }

var builtinThemes = map[string]Theme{
	"default": theme{name: "default", palette: Palette{
		Text:           rgb(0, 0, 0),
		Heading:        rgb(70, 130, 180),
		CodeForeground: rgb(47, 79, 79),
		CodeBackground: rgb(230, 230, 250),
		ListMarker:     rgb(0, 0, 255),
		Link:           rgb(0, 102, 204),
	}},
	"github-light": theme{name: "github-light", palette: Palette{
		Text:           rgb(36, 41, 47),
		Heading:        rgb(5, 80, 174),
		CodeForeground: rgb(149, 56, 0),
		CodeBackground: rgb(246, 248, 250),
		ListMarker:     rgb(87, 96, 106),
		Link:           rgb(9, 105, 218),
	}},
	"solarized-light": theme{name: "solarized-light", palette: Palette{
		Text:           rgb(101, 123, 131),
		Heading:        rgb(38, 139, 210),
		CodeForeground: rgb(88, 110, 117),
		CodeBackground: rgb(238, 232, 213),
		ListMarker:     rgb(203, 75, 22),
		Link:           rgb(42, 161, 152),
	}},
	"gruvbox-light": theme{name: "gruvbox-light", palette: Palette{
		Text:           rgb(60, 56, 54),
		Heading:        rgb(175, 58, 3),
		CodeForeground: rgb(66, 123, 88),
		CodeBackground: rgb(235, 219, 178),
		ListMarker:     rgb(181, 118, 20),
		Link:           rgb(7, 102, 120),
	}},
	"one-light": theme{name: "one-light", palette: Palette{
		Text:           rgb(56, 58, 66),
		Heading:        rgb(64, 120, 242),
		CodeForeground: rgb(166, 38, 164),
		CodeBackground: rgb(240, 240, 241),
		ListMarker:     rgb(228, 86, 73),
		Link:           rgb(1, 132, 188),
	}},
	"papercolor-light": theme{name: "papercolor-light", palette: Palette{
		Text:           rgb(68, 68, 68),
		Heading:        rgb(0, 95, 135),
		CodeForeground: rgb(0, 135, 0),
		CodeBackground: rgb(228, 228, 228),
		ListMarker:     rgb(215, 0, 135),
		Link:           rgb(0, 135, 175),
	}},
	"monochrome": theme{name: "monochrome", palette: Palette{
		Text:           rgb(0, 0, 0),
		Heading:        rgb(0, 0, 0),
		CodeForeground: rgb(0, 0, 0),
		CodeBackground: rgb(255, 255, 255),
		ListMarker:     rgb(0, 0, 0),
		Link:           rgb(0, 0, 0),
	}},
}

// AvailableThemes returns the names of built-in themes.
func AvailableThemes() []string {
	names := make([]string, 0, len(builtinThemes))
	for name := range builtinThemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ThemeByName returns a built-in theme by name.
func ThemeByName(name string) (Theme, bool) {
	if name == "" {
		return builtinThemes["default"], true
	}
	normalized := strings.ToLower(strings.TrimSpace(name))
	theme, ok := builtinThemes[normalized]
	return theme, ok
}

// DefaultTheme returns the default built-in theme.
func DefaultTheme() Theme {
	return builtinThemes["default"]
}
