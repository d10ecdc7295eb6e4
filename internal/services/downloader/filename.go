package downloader

import (
	"mime"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const MaxTitleLength = 100

var (
	unsafeChars = regexp.MustCompile(`[^\w\s.-]`)
	whitespace  = regexp.MustCompile(`\s+`)
)

// SafeFilename turns a video title into an ASCII name: accents are
// decomposed and dropped, anything else unusual becomes "_", and the result
// is cut to 100 characters before the video id is appended.
func SafeFilename(title, videoID string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII
	})))
	s, _, err := transform.String(t, title)
	if err != nil {
		s = ""
	}

	s = unsafeChars.ReplaceAllString(s, "_")
	s = whitespace.ReplaceAllString(s, "_")
	if len(s) > MaxTitleLength {
		s = s[:MaxTitleLength]
	}
	return s + "_" + videoID
}

func contentType(ext string) string {
	switch strings.ToLower(ext) {
	case ".mp4":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	case ".mkv":
		return "video/x-matroska"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}
