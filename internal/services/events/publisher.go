package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/File-Sharing-BondBridg/Video-Service/internal/logger"
)

const (
	StreamName = "video-events"

	SubjectFileDownloaded = "files.downloaded"
	SubjectFileDeleted    = "files.deleted"
	SubjectUserDeleted    = "users.deleted"
)

var ErrNotConnected = errors.New("jetstream not initialized")

// Publisher emits domain events. Publishing is best-effort: callers log the
// error and carry on.
type Publisher interface {
	Publish(ctx context.Context, subject string, payload any) error
}

// Nop discards every event. Used when NATS_URL is unset.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }

// JetStream publishes durable events to the video-events stream.
type JetStream struct {
	nc     *nats.Conn
	js     nats.JetStreamContext
	logger *slog.Logger
}

// Connect dials NATS, opens a JetStream context and makes sure the stream
// exists. A failure to create the stream is logged, not returned.
func Connect(url string, l *slog.Logger) (*JetStream, error) {
	l = logger.Component(l, "nats")

	opts := []nats.Option{
		nats.Name("video-service"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			l.Warn("disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			l.Info("reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(*nats.Conn) {
			l.Info("connection closed")
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream context: %w", err)
	}

	p := &JetStream{nc: nc, js: js, logger: l}
	if err := p.ensureStream(); err != nil {
		l.Warn("failed to ensure stream", "stream", StreamName, "error", err)
	}

	l.Info("connected and JetStream initialized", "url", url)
	return p, nil
}

func (p *JetStream) ensureStream() error {
	if _, err := p.js.StreamInfo(StreamName); err == nil {
		return nil
	}
	_, err := p.js.AddStream(&nats.StreamConfig{
		Name:     StreamName,
		Subjects: []string{"files.*", "users.*"},
		Storage:  nats.FileStorage,
		MaxAge:   30 * 24 * time.Hour,
	})
	return err
}

// Publish marshals payload to JSON and publishes it with a fresh message id
// so redeliveries are deduplicated by the server.
func (p *JetStream) Publish(ctx context.Context, subject string, payload any) error {
	if p == nil || p.js == nil {
		return ErrNotConnected
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", subject, err)
	}
	if _, err := p.js.Publish(subject, data, nats.MsgId(uuid.NewString()), nats.Context(ctx)); err != nil {
		p.logger.Error("publish failed", "subject", subject, "error", err)
		return err
	}
	return nil
}

// Healthy reports whether the underlying connection is up.
func (p *JetStream) Healthy() bool {
	return p != nil && p.nc != nil && p.nc.IsConnected()
}

func (p *JetStream) Close() {
	if p == nil || p.nc == nil {
		return
	}
	if err := p.nc.Drain(); err != nil {
		p.nc.Close()
	}
}
