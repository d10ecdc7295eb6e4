package downloader

import "strings"

type Format struct {
	FormatID    string `json:"format_id"`
	Description string `json:"description"`
}

// parseFormats reads the table printed by `yt-dlp -F`. Only rows whose id is
// numeric, or a "+"-joined set of numeric ids, are kept.
func parseFormats(out string) []Format {
	formats := []Format{}
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" || strings.HasPrefix(line, "[") || strings.Contains(line, "ID") {
			continue
		}
		line = strings.TrimLeft(line, " \t")
		idx := strings.IndexAny(line, " \t")
		if idx < 0 {
			continue
		}
		id := line[:idx]
		if !isDigits(strings.ReplaceAll(id, "+", "")) {
			continue
		}
		formats = append(formats, Format{
			FormatID:    id,
			Description: strings.TrimSpace(line[idx:]),
		})
	}
	return formats
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
