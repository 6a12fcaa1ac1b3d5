package mdrtf

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestThemeByName(t *testing.T) {
	t.Parallel()
	want := []string{
		"default",
		"github-light",
		"gruvbox-light",
		"monochrome",
		"one-light",
		"papercolor-light",
		"solarized-light",
	}
	if diff := cmp.Diff(want, AvailableThemes()); diff != "" {
		t.Fatalf("themes (-want +got):\n%s", diff)
	}
	for _, name := range want {
		th, ok := ThemeByName(name)
		if !ok || th.Name() != name {
			t.Fatalf("expected theme %q to be available", name)
		}
	}
	if th, ok := ThemeByName(" GitHub-Light "); !ok || th.Name() != "github-light" {
		t.Fatalf("theme lookup must ignore case and spaces")
	}
	if th, ok := ThemeByName(""); !ok || th.Name() != "default" {
		t.Fatalf("empty name must select the default theme")
	}
	if _, ok := ThemeByName("dracula"); ok {
		t.Fatalf("unexpected theme dracula")
	}
}

func TestParseColor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want Color
		ok   bool
	}{
		{"#ff8000", Color{R: 255, G: 128}, true},
		{"0066CC", Color{G: 102, B: 204}, true},
		{"#abc", Color{R: 0xaa, G: 0xbb, B: 0xcc}, true},
		{" #000000 ", Color{}, true},
		{"#12345", Color{}, false},
		{"zzzzzz", Color{}, false},
	}
	for _, tc := range tests {
		got, err := ParseColor(tc.in)
		if (err == nil) != tc.ok || got != tc.want {
			t.Fatalf("ParseColor(%q)=%v,%v", tc.in, got, err)
		}
	}
	if got := (Color{R: 255, G: 128}).String(); got != "#ff8000" {
		t.Fatalf("String()=%q", got)
	}
}

func TestPaletteColorTable(t *testing.T) {
	t.Parallel()
	p := Palette{
		Text:           Color{R: 1},
		Heading:        Color{G: 2},
		CodeForeground: Color{B: 3},
		CodeBackground: Color{R: 4, G: 4, B: 4},
		ListMarker:     Color{R: 5},
		Link:           Color{B: 6},
	}
	want := `{\colortbl;\red1\green0\blue0;\red0\green2\blue0;\red0\green0\blue3;` +
		`\red4\green4\blue4;\red5\green0\blue0;\red0\green0\blue6;}`
	if got := p.colorTable(); got != want {
		t.Fatalf("got %q want %q", got, want)
	}
	if _, ok := p.Slot(SlotLink + 1); ok {
		t.Fatalf("slot past the table must not resolve")
	}
}

func TestCustomThemeAndFonts(t *testing.T) {
	t.Parallel()
	th := NewTheme("custom", Palette{Text: Color{R: 9, G: 9, B: 9}})
	res := New(WithTheme(th), WithFonts(Font{Family: "roman", Name: "Times;New"}, Font{Name: "Mono{x}"})).
		ConvertLines(context.Background(), nil)
	for _, want := range []string{
		`{\fonttbl{\f0\froman TimesNew;}{\f1\fnil Mono\'7bx\'7d;}}`,
		`{\colortbl;\red9\green9\blue9;`,
	} {
		if !strings.Contains(res.RTF, want) {
			t.Fatalf("missing %q in %q", want, res.RTF)
		}
	}
}
