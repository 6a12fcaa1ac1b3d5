package mdrtf

import "strings"

// styleTag maps an emphasis delimiter to the RTF control word it toggles.
type styleTag struct {
	tag  string
	word string
}

var (
	tagBold             = styleTag{tag: "**", word: "b"}
	tagItalic           = styleTag{tag: "*", word: "i"}
	tagUnderscoreBold   = styleTag{tag: "__", word: "b"}
	tagUnderscoreItalic = styleTag{tag: "_", word: "i"}
)

// styleTags returns the enabled tags, longest first for each character.
func (cfg *config) styleTags() []styleTag {
	tags := []styleTag{tagBold, tagItalic}
	if cfg.underscoreBold {
		tags = append(tags, tagUnderscoreBold)
	}
	if cfg.underscoreItalic {
		tags = append(tags, tagUnderscoreItalic)
	}
	return tags
}

// applyStyle pairs occurrences of tag left to right: the first opens a span,
// the second closes it, and so on. A final unpaired occurrence is written as
// literal text so no control word is left open.
func applyStyle(line, tag, word string) string {
	spans := tokenizeDelims(line, tag)
	remaining := countDelims(spans)
	if remaining == 0 {
		return line
	}
	var sb strings.Builder
	sb.Grow(len(line) + 16)
	open := false
	for _, s := range spans {
		if s.Kind != spanDelim {
			sb.WriteString(s.Text)
			continue
		}
		remaining--
		switch {
		case open:
			sb.WriteString(`\` + word + "0 ")
			open = false
		case remaining > 0:
			sb.WriteString(`\` + word + " ")
			open = true
		default:
			sb.WriteString(literalTag(tag))
		}
	}
	return sb.String()
}

func literalTag(tag string) string {
	var sb strings.Builder
	for i := 0; i < len(tag); i++ {
		writeHexEscape(&sb, tag[i])
	}
	return sb.String()
}

// escapeLiteralRuns rewrites every run of three or more of c as Unicode
// escapes so the run is read as text, never as a style marker.
func escapeLiteralRuns(line string, c byte) string {
	if strings.IndexByte(line, c) < 0 {
		return line
	}
	var sb strings.Builder
	esc := unicodeEscape(rune(c))
	changed := false
	for i := 0; i < len(line); {
		if line[i] != c {
			sb.WriteByte(line[i])
			i++
			continue
		}
		j := i
		for j < len(line) && line[j] == c {
			j++
		}
		if j-i >= 3 {
			sb.WriteString(strings.Repeat(esc, j-i))
			changed = true
		} else {
			sb.WriteString(line[i:j])
		}
		i = j
	}
	if !changed {
		return line
	}
	return sb.String()
}

// escapeBulletMarker turns a leading "* " into a literal asterisk. A star
// followed by a space cannot open emphasis, and the list stage recognizes the
// escaped form.
func escapeBulletMarker(line string) string {
	if strings.HasPrefix(line, "* ") {
		return hexEscape('*') + line[1:]
	}
	return line
}
