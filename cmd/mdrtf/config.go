package main

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
	"pkt.systems/mdrtf"
)

// fileConfig is the YAML configuration file. Absent keys keep the built-in
// defaults; command line flags override the file.
type fileConfig struct {
	Theme            string         `yaml:"theme"`
	Colors           *paletteConfig `yaml:"colors"`
	BodyFont         fontConfig     `yaml:"body_font"`
	CodeFont         fontConfig     `yaml:"code_font"`
	FontSize         int            `yaml:"font_size"`
	HeadingSizes     []int          `yaml:"heading_sizes"`
	CodePadding      *int           `yaml:"code_padding"`
	TabLength        int            `yaml:"tab_length"`
	UnderscoreBold   *bool          `yaml:"underscore_bold"`
	UnderscoreItalic *bool          `yaml:"underscore_italic"`
	OrderedLists     *bool          `yaml:"ordered_lists"`
	UnorderedLists   *bool          `yaml:"unordered_lists"`
	Errors           string         `yaml:"errors"`
	FrontMatter      *bool          `yaml:"front_matter"`
	Images           *imageConfig   `yaml:"images"`
}

type fontConfig struct {
	Family string `yaml:"family"`
	Name   string `yaml:"name"`
}

type paletteConfig struct {
	Text           string `yaml:"text"`
	Heading        string `yaml:"heading"`
	CodeForeground string `yaml:"code_foreground"`
	CodeBackground string `yaml:"code_background"`
	ListMarker     string `yaml:"list_marker"`
	Link           string `yaml:"link"`
}

type imageConfig struct {
	Enabled  *bool  `yaml:"enabled"`
	MaxWidth *int   `yaml:"max_width"`
	Timeout  string `yaml:"timeout"`
}

func loadConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	data, err := os.ReadFile(normalizePath(path))
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// apply overlays palette overrides on base.
func (p *paletteConfig) apply(base mdrtf.Palette) (mdrtf.Palette, error) {
	if p == nil {
		return base, nil
	}
	fields := []struct {
		value string
		dst   *mdrtf.Color
	}{
		{p.Text, &base.Text},
		{p.Heading, &base.Heading},
		{p.CodeForeground, &base.CodeForeground},
		{p.CodeBackground, &base.CodeBackground},
		{p.ListMarker, &base.ListMarker},
		{p.Link, &base.Link},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		c, err := mdrtf.ParseColor(f.value)
		if err != nil {
			return base, err
		}
		*f.dst = c
	}
	return base, nil
}

func (c fileConfig) options() ([]mdrtf.Option, error) {
	var opts []mdrtf.Option
	opts = append(opts, mdrtf.WithFonts(
		mdrtf.Font{Family: c.BodyFont.Family, Name: c.BodyFont.Name},
		mdrtf.Font{Family: c.CodeFont.Family, Name: c.CodeFont.Name},
	))
	if c.FontSize > 0 || len(c.HeadingSizes) > 0 {
		sizes := mdrtf.PointSizes{Default: c.FontSize}
		if len(c.HeadingSizes) > len(sizes.Heading) {
			return nil, fmt.Errorf("heading_sizes: at most %d entries", len(sizes.Heading))
		}
		copy(sizes.Heading[:], c.HeadingSizes)
		opts = append(opts, mdrtf.WithPointSizes(sizes))
	}
	if c.CodePadding != nil {
		opts = append(opts, mdrtf.WithCodeBlockPadding(*c.CodePadding))
	}
	if c.TabLength > 0 {
		opts = append(opts, mdrtf.WithTabLength(c.TabLength))
	}
	if c.UnderscoreBold != nil {
		opts = append(opts, mdrtf.WithUnderscoreBold(*c.UnderscoreBold))
	}
	if c.UnderscoreItalic != nil {
		opts = append(opts, mdrtf.WithUnderscoreItalic(*c.UnderscoreItalic))
	}
	if c.OrderedLists != nil {
		opts = append(opts, mdrtf.WithOrderedLists(*c.OrderedLists))
	}
	if c.UnorderedLists != nil {
		opts = append(opts, mdrtf.WithUnorderedLists(*c.UnorderedLists))
	}
	if c.Errors != "" {
		policy, err := mdrtf.ParseErrorOutput(c.Errors)
		if err != nil {
			return nil, err
		}
		opts = append(opts, mdrtf.WithErrorOutput(policy))
	}
	if c.FrontMatter != nil {
		opts = append(opts, mdrtf.WithFrontMatter(*c.FrontMatter))
	}
	if c.Images != nil && c.Images.MaxWidth != nil {
		opts = append(opts, mdrtf.WithMaxImageWidth(*c.Images.MaxWidth))
	}
	return opts, nil
}

func (c fileConfig) imageTimeout() (time.Duration, error) {
	if c.Images == nil || c.Images.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Images.Timeout)
	if err != nil {
		return 0, fmt.Errorf("images.timeout: %w", err)
	}
	return d, nil
}

func (c fileConfig) imagesEnabled() bool {
	return c.Images == nil || c.Images.Enabled == nil || *c.Images.Enabled
}
