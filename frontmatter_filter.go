package mdrtf

import "strings"

// maxFrontMatterScanLines bounds the search for a closing delimiter.
const maxFrontMatterScanLines = 2048

// skipFrontMatter drops a leading YAML, TOML or JSON-ish metadata block and
// returns the remaining lines with the number of lines removed. Input without
// a recognizable block is returned unchanged.
func skipFrontMatter(lines []string) ([]string, int) {
	if len(lines) < 2 {
		return lines, 0
	}
	delim, ok := parseOpeningFrontMatterDelimiter(lines[0])
	if !ok {
		return lines, 0
	}
	if !frontMatterMetadataLikely(lines[1]) {
		return lines, 0
	}
	end, found := findClosingFrontMatterDelimiter(lines, 1, delim)
	if !found {
		return lines, 0
	}
	return lines[end+1:], end + 1
}

func parseOpeningFrontMatterDelimiter(line string) (string, bool) {
	trimmed := strings.TrimSpace(strings.TrimPrefix(line, "\ufeff"))
	switch trimmed {
	case "---", "+++", ";;;":
		return trimmed, true
	default:
		return "", false
	}
}

func frontMatterMetadataLikely(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return true
	}
	return strings.ContainsAny(trimmed, ":=")
}

func findClosingFrontMatterDelimiter(lines []string, start int, delim string) (int, bool) {
	limit := min(len(lines), start+maxFrontMatterScanLines)
	for i := start; i < limit; i++ {
		if strings.TrimSpace(lines[i]) == delim {
			return i, true
		}
	}
	return 0, false
}
