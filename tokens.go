package mdrtf

import "strings"

// span is a segment of a line produced by the inline tokenizer.
type span struct {
	Kind spanKind
	Text string
}

type spanKind uint8

const (
	spanText spanKind = iota
	spanDelim
	spanOpaque
)

// tokenizeDelims splits line into text, delimiter, and opaque spans.
// Occurrences of tag are found left to right without overlap. The URL part of
// a "](url)" construct is opaque so emphasis markers inside link targets are
// never paired.
func tokenizeDelims(line, tag string) []span {
	var spans []span
	start := 0
	flush := func(end int) {
		if end > start {
			spans = append(spans, span{Kind: spanText, Text: line[start:end]})
		}
	}
	for i := 0; i < len(line); {
		if strings.HasPrefix(line[i:], "](") {
			if close := strings.IndexByte(line[i+2:], ')'); close >= 0 {
				end := i + 2 + close + 1
				flush(i)
				spans = append(spans, span{Kind: spanOpaque, Text: line[i:end]})
				i = end
				start = i
				continue
			}
		}
		if strings.HasPrefix(line[i:], tag) {
			flush(i)
			spans = append(spans, span{Kind: spanDelim, Text: tag})
			i += len(tag)
			start = i
			continue
		}
		i++
	}
	flush(len(line))
	return spans
}

func countDelims(spans []span) int {
	n := 0
	for _, s := range spans {
		if s.Kind == spanDelim {
			n++
		}
	}
	return n
}
