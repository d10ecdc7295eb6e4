package downloader

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidMetadata means the tool succeeded but printed something that is
// not a metadata document.
var ErrInvalidMetadata = errors.New("invalid video metadata")

// VideoInfo is the subset of yt-dlp's --dump-json output the service uses.
type VideoInfo struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Duration       *float64 `json:"duration"`
	Filesize       *float64 `json:"filesize"`
	FilesizeApprox *float64 `json:"filesize_approx"`
	Extractor      string   `json:"extractor"`
	WebpageURL     string   `json:"webpage_url"`
}

func parseVideoInfo(out string) (*VideoInfo, error) {
	var info VideoInfo
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &info); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMetadata, err)
	}
	if info.Title == "" {
		info.Title = "video"
	}
	if info.ID == "" {
		info.ID = "unknown"
	}
	return &info, nil
}

// SizeHint returns the exact size when known, else the approximation. Zero
// counts as unknown.
func (v *VideoInfo) SizeHint() *int64 {
	for _, f := range []*float64{v.Filesize, v.FilesizeApprox} {
		if f != nil && *f > 0 {
			n := int64(*f)
			return &n
		}
	}
	return nil
}
