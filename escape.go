package mdrtf

import (
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// markdownEscapable lists the punctuation a Markdown backslash escape turns
// into a literal character.
const markdownEscapable = "\\#*_[]{}`()+-.!|"

const hexDigits = "0123456789abcdef"

func hexEscape(b byte) string {
	return `\'` + string([]byte{hexDigits[b>>4], hexDigits[b&0x0f]})
}

func writeHexEscape(sb *strings.Builder, b byte) {
	sb.WriteString(`\'`)
	sb.WriteByte(hexDigits[b>>4])
	sb.WriteByte(hexDigits[b&0x0f])
}

// writeUnicodeEscape writes r as \uN? escapes, one per UTF-16 code unit. N is
// signed 16-bit as RTF readers expect, so units above 0x7fff are negative.
func writeUnicodeEscape(sb *strings.Builder, r rune) {
	if r > 0xffff {
		hi, lo := utf16.EncodeRune(r)
		writeUnicodeUnit(sb, uint16(hi))
		writeUnicodeUnit(sb, uint16(lo))
		return
	}
	writeUnicodeUnit(sb, uint16(r))
}

func writeUnicodeUnit(sb *strings.Builder, u uint16) {
	sb.WriteString(`\u`)
	sb.WriteString(strconv.Itoa(int(int16(u))))
	sb.WriteByte('?')
}

func unicodeEscape(r rune) string {
	var sb strings.Builder
	writeUnicodeEscape(&sb, r)
	return sb.String()
}

// escapeText makes a prose line RTF-safe. Markdown backslash escapes become
// hex escapes of the literal character, any other backslash and both braces
// are hex-escaped, and non-ASCII code points become \uN? escapes. The second
// result is the number of output bytes beyond the rendered width of the line.
func escapeText(line string) (string, int) {
	return escape(line, true)
}

// escapeCode is the raw mode used inside code blocks: backslashes are never
// Markdown escapes, each one is written literally.
func escapeCode(line string) (string, int) {
	return escape(line, false)
}

func escape(line string, markdown bool) (string, int) {
	if isPlainASCII(line) {
		return line, 0
	}
	var sb strings.Builder
	sb.Grow(len(line) + 16)
	columns := 0
	for i := 0; i < len(line); {
		c := line[i]
		switch {
		case c == '\\':
			if markdown && i+1 < len(line) && strings.IndexByte(markdownEscapable, line[i+1]) >= 0 {
				writeHexEscape(&sb, line[i+1])
				i += 2
			} else {
				writeHexEscape(&sb, '\\')
				i++
			}
			columns++
		case c == '{' || c == '}':
			writeHexEscape(&sb, c)
			columns++
			i++
		case c < utf8.RuneSelf:
			sb.WriteByte(c)
			columns++
			i++
		default:
			r, size := utf8.DecodeRuneInString(line[i:])
			writeUnicodeEscape(&sb, r)
			columns += runewidth.RuneWidth(r)
			i += size
		}
	}
	out := sb.String()
	return out, len(out) - columns
}

func isPlainASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' || c == '{' || c == '}' || c >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// Unescape reverses the character escapes written by the converter: \'XX hex
// escapes and \uN? Unicode escapes (surrogate pairs are joined). Control words
// and group braces are left untouched.
func Unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	var pending []uint16
	flush := func() {
		if len(pending) > 0 {
			sb.WriteString(string(utf16.Decode(pending)))
			pending = pending[:0]
		}
	}
	for i := 0; i < len(s); {
		if s[i] == '\\' && i+4 <= len(s) && s[i+1] == '\'' {
			if v, err := strconv.ParseUint(s[i+2:i+4], 16, 8); err == nil {
				flush()
				sb.WriteRune(rune(v))
				i += 4
				continue
			}
		}
		if s[i] == '\\' && i+2 < len(s) && s[i+1] == 'u' {
			j := i + 2
			if j < len(s) && s[j] == '-' {
				j++
			}
			k := j
			for k < len(s) && s[k] >= '0' && s[k] <= '9' {
				k++
			}
			if k > j {
				if n, err := strconv.Atoi(s[i+2 : k]); err == nil && n >= -32768 && n <= 65535 {
					pending = append(pending, uint16(n))
					if k < len(s) && s[k] == '?' {
						k++
					}
					i = k
					continue
				}
			}
		}
		flush()
		sb.WriteByte(s[i])
		i++
	}
	flush()
	return sb.String()
}
