package scanner

import (
	"context"
	"fmt"

	clamd "github.com/dutchcoders/go-clamd"
)

// ClamAV scans files through a clamd daemon. The daemon must be able to read
// the path it is given, so it shares the download volume.
type ClamAV struct {
	client *clamd.Clamd
}

func NewClamAV(address string) *ClamAV {
	return &ClamAV{client: clamd.NewClamd(address)}
}

func (c *ClamAV) Ping() error {
	return c.client.Ping()
}

// Scan reports whether clamd found a signature in the file at path.
func (c *ClamAV) Scan(ctx context.Context, path string) (bool, string, error) {
	if err := ctx.Err(); err != nil {
		return false, "", err
	}
	results, err := c.client.ScanFile(path)
	if err != nil {
		return false, "", fmt.Errorf("scan %s: %w", path, err)
	}

	infected, signature := false, ""
	var scanErr error
	for res := range results {
		switch res.Status {
		case clamd.RES_FOUND:
			infected, signature = true, res.Description
		case clamd.RES_ERROR, clamd.RES_PARSE_ERROR:
			scanErr = fmt.Errorf("scan %s: %s", path, res.Description)
		}
	}
	if infected {
		return true, signature, nil
	}
	return false, "", scanErr
}
