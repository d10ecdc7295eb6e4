package scanner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanUnreachableDaemon(t *testing.T) {
	c := NewClamAV("tcp://127.0.0.1:1")

	infected, _, err := c.Scan(context.Background(), "/tmp/none")
	assert.Error(t, err)
	assert.False(t, infected)
	assert.Error(t, c.Ping())
}

func TestScanCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewClamAV("tcp://127.0.0.1:1").Scan(ctx, "/tmp/none")
	assert.ErrorIs(t, err, context.Canceled)
}
