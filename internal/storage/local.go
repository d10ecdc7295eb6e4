package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v4/disk"

	"github.com/File-Sharing-BondBridg/Video-Service/internal/models"
)

// ErrOutsideRoot is returned when a path resolves outside the download root.
var ErrOutsideRoot = errors.New("path escapes download root")

// Local is the download root on the local filesystem. The root is kept in
// canonical form (absolute, symlinks resolved).
type Local struct {
	root string
}

// NewLocal creates dir if needed and canonicalizes it.
func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create download dir: %w", err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("resolve download dir: %w", err)
	}
	return &Local{root: real}, nil
}

func (l *Local) Root() string { return l.root }

// Path joins a generated file name onto the root.
func (l *Local) Path(name string) string {
	return filepath.Join(l.root, name)
}

func (l *Local) contains(p string) bool {
	rel, err := filepath.Rel(l.root, p)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Resolve maps a caller-supplied relative path to a regular file under the
// root. The joined path is checked before and after symlink resolution.
func (l *Local) Resolve(rel string) (string, error) {
	joined := filepath.Join(l.root, filepath.FromSlash(strings.TrimPrefix(rel, "/")))
	if !l.contains(joined) {
		return "", ErrOutsideRoot
	}

	real, err := filepath.EvalSymlinks(joined)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%s: %w", rel, models.ErrNotFound)
		}
		return "", err
	}
	if !l.contains(real) {
		return "", ErrOutsideRoot
	}

	info, err := os.Stat(real)
	if err != nil {
		return "", fmt.Errorf("%s: %w", rel, models.ErrNotFound)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%s: %w", rel, models.ErrNotFound)
	}
	return real, nil
}

// Find locates the file produced for a stored name, preferring the .mp4
// container and falling back to any extension the downloader chose.
func (l *Local) Find(stem string) (string, os.FileInfo, error) {
	preferred := l.Path(stem + ".mp4")
	if info, err := os.Stat(preferred); err == nil {
		return preferred, info, nil
	}
	matches, err := filepath.Glob(l.Path(stem + ".*"))
	if err != nil {
		return "", nil, err
	}
	for _, m := range matches {
		if strings.HasSuffix(m, ".part") || strings.HasSuffix(m, ".ytdl") {
			continue
		}
		if info, err := os.Stat(m); err == nil && info.Mode().IsRegular() {
			return m, info, nil
		}
	}
	return "", nil, fmt.Errorf("output for %s: %w", stem, models.ErrNotFound)
}

// Remove deletes a file under the root. A file that is already gone is not
// an error.
func (l *Local) Remove(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if !l.contains(abs) {
		return ErrOutsideRoot
	}
	if err := os.Remove(abs); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// DirSize sums the sizes of regular files under the root. Unreadable
// entries are skipped.
func (l *Local) DirSize() (int64, error) {
	var total int64
	err := filepath.WalkDir(l.root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			total += info.Size()
		}
		return nil
	})
	return total, err
}

type Usage struct {
	Total        uint64  `json:"total_space"`
	Used         uint64  `json:"used_space"`
	Free         uint64  `json:"free_space"`
	UsagePercent float64 `json:"usage_percent"`
	DirSize      int64   `json:"download_dir_size"`
}

// Usage reports the filesystem holding the root plus the root's own size.
func (l *Local) Usage(ctx context.Context) (*Usage, error) {
	stat, err := disk.UsageWithContext(ctx, l.root)
	if err != nil {
		return nil, fmt.Errorf("disk usage: %w", err)
	}

	u := &Usage{Total: stat.Total, Used: stat.Used, Free: stat.Free}
	if stat.Total > 0 {
		u.UsagePercent = math.Round(float64(stat.Used)/float64(stat.Total)*10000) / 100
	}
	if size, err := l.DirSize(); err == nil {
		u.DirSize = size
	}
	return u, nil
}
