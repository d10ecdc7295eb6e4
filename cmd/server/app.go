package main

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"
	gintrace "gopkg.in/DataDog/dd-trace-go.v1/contrib/gin-gonic/gin"

	"github.com/File-Sharing-BondBridg/Video-Service/cmd/middleware"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/api"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/api/handlers"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/configuration"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/logger"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/ratelimit"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/services/archive"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/services/events"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/services/scanner"
)

// optional holds the integrations that are enabled by configuration. Each
// one that fails to connect is logged and left out.
type optional struct {
	limiter ratelimit.Limiter
	events  events.Publisher
	archive *archive.Archive
	scanner *scanner.ClamAV
	closers []func()
}

func (o *optional) close() {
	for i := len(o.closers) - 1; i >= 0; i-- {
		o.closers[i]()
	}
}

func connectOptional(ctx context.Context, cfg *configuration.Config, l *slog.Logger) *optional {
	o := &optional{limiter: ratelimit.NewMemoryLimiter(), events: events.Nop{}}

	if cfg.Redis.Addr != "" {
		client, err := ratelimit.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			l.Warn("redis unavailable, using in-memory rate limits", "error", err)
		} else {
			o.limiter = ratelimit.NewRedisLimiter(client, "video-service:ratelimit:")
			o.closers = append(o.closers, func() { _ = client.Close() })
			l.Info("rate limits stored in redis", "addr", cfg.Redis.Addr)
		}
	}

	if cfg.NATSURL != "" {
		pub, err := events.Connect(cfg.NATSURL, l)
		if err != nil {
			l.Warn("nats unavailable, events disabled", "error", err)
		} else {
			o.events = pub
			o.closers = append(o.closers, pub.Close)
		}
	}

	if cfg.MinIO.Endpoint != "" {
		a, err := archive.New(ctx, archive.Config{
			Endpoint:  cfg.MinIO.Endpoint,
			AccessKey: cfg.MinIO.AccessKey,
			SecretKey: cfg.MinIO.SecretKey,
			Bucket:    cfg.MinIO.BucketName,
			UseSSL:    cfg.MinIO.UseSSL,
		}, l)
		if err != nil {
			l.Warn("minio unavailable, archive disabled", "error", err)
		} else {
			o.archive = a
		}
	}

	if cfg.CLAMAVURL != "" {
		s := scanner.NewClamAV(cfg.CLAMAVURL)
		if err := s.Ping(); err != nil {
			l.Warn("clamav unavailable, scanning disabled", "error", err)
		} else {
			o.scanner = s
			l.Info("malware scanning enabled", "addr", cfg.CLAMAVURL)
		}
	}

	return o
}

func newRouter(cfg *configuration.Config, l *slog.Logger, h *handlers.Handler, gate *middleware.Gate, limiter ratelimit.Limiter) *gin.Engine {
	if cfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), logger.GinMiddleware(l))
	if cfg.Tracing.Enabled {
		r.Use(gintrace.Middleware(cfg.Tracing.ServiceName))
	}

	api.RegisterRoutes(r, h, gate, limiter, l)
	return r
}
