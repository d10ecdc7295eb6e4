package downloader

import (
	"strings"

	"github.com/File-Sharing-BondBridg/Video-Service/internal/models"
)

const (
	MaxURLLength       = 2048
	DefaultMaxFileSize = 300 * 1024 * 1024
)

func ValidateURL(url string) error {
	if url == "" {
		return models.Validation("URL is required")
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return models.Validation("URL must start with http:// or https://")
	}
	if len(url) > MaxURLLength {
		return models.Validation("URL too long")
	}
	return nil
}

// CheckFileSize enforces the size policy. An unknown size passes.
func CheckFileSize(size *int64, max int64) error {
	if size == nil {
		return nil
	}
	if *size > max {
		return models.Validation("File size %.2fMB exceeds %dMB limit",
			float64(*size)/1024/1024, max/1024/1024)
	}
	return nil
}
