package downloader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

const DefaultTimeout = 5 * time.Minute

var ErrTimeout = errors.New("command timed out")

// Runner executes the downloader tool and returns its captured output.
type Runner interface {
	Run(ctx context.Context, args ...string) (stdout, stderr string, err error)
}

// ExecRunner runs the yt-dlp binary. Every invocation gets its own deadline;
// on expiry the process is killed and ErrTimeout returned.
type ExecRunner struct {
	Path    string
	Timeout time.Duration
}

func NewExecRunner(path string, timeout time.Duration) *ExecRunner {
	if path == "" {
		path = "yt-dlp"
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &ExecRunner{Path: path, Timeout: timeout}
}

func (r *ExecRunner) Run(ctx context.Context, args ...string) (string, string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.Path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = 5 * time.Second

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return stdout.String(), stderr.String(), fmt.Errorf("%w after %s", ErrTimeout, r.Timeout)
	}
	if err != nil {
		return stdout.String(), stderr.String(), fmt.Errorf("%s: %w", r.Path, err)
	}
	return stdout.String(), stderr.String(), nil
}
