package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	"github.com/File-Sharing-BondBridg/Video-Service/cmd/middleware"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/api/handlers"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/configuration"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/logger"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/services/auth"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/services/command"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/services/downloader"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/services/infrastructure"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/services/query"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/storage"
)

func main() {
	cfg := configuration.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration:\n%v\n", err)
		os.Exit(1)
	}

	l := logger.Setup(cfg.Server.Debug)
	if !cfg.Auth.SecretWasGiven {
		l.Warn("API_SECRET_KEY not set, generated a random secret for debug mode")
	}

	if err := run(cfg, l); err != nil {
		l.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *configuration.Config, l *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Tracing.Enabled {
		tracer.Start(tracer.WithService(cfg.Tracing.ServiceName))
		defer tracer.Stop()
	}

	local, err := storage.NewLocal(cfg.Downloads.Dir)
	if err != nil {
		return err
	}

	db, err := infrastructure.Connect(ctx, cfg.Database.ConnectionString(), infrastructure.PoolConfig{
		MinConns: cfg.Database.MinConns,
		MaxConns: cfg.Database.MaxConns,
	}, l)
	if err != nil {
		return err
	}
	defer db.Close()

	authSvc := auth.NewService(db, auth.WithSessionTTL(cfg.Auth.SessionTTL), auth.WithLogger(l))
	if err := authSvc.EnsureAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
		l.Error("failed to create default admin", "error", err)
	}

	opt := connectOptional(ctx, cfg, l)
	defer opt.close()

	fileOpts := []command.Option{command.WithPublisher(opt.events), command.WithLogger(l)}
	if opt.archive != nil {
		fileOpts = append(fileOpts, command.WithArchiver(opt.archive))
	}
	files := command.NewFiles(db, local, fileOpts...)

	dlOpts := []downloader.Option{downloader.WithLogger(l)}
	if opt.scanner != nil {
		dlOpts = append(dlOpts, downloader.WithScanner(opt.scanner))
	}
	runner := downloader.NewExecRunner(cfg.Downloads.YtDlpPath, cfg.Downloads.Timeout)
	dl := downloader.NewService(runner, local, files, downloader.Config{MaxFileSize: cfg.Downloads.MaxFileSize}, dlOpts...)

	h := &handlers.Handler{
		Auth:       authSvc,
		Downloader: dl,
		FileQuery:  query.NewFiles(db),
		FileCmd:    files,
		Local:      local,
		DB:         db,
		Logger:     l,
	}
	if opt.archive != nil {
		h.Archive = opt.archive
	}
	if hr, ok := opt.events.(handlers.HealthReporter); ok {
		h.Events = hr
	}
	gate := middleware.NewGate(authSvc, cfg.Auth.APISecretKey, l)
	router := newRouter(cfg, l, h, gate, opt.limiter)

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		l.Info("server starting", "addr", srv.Addr, "download_dir", local.Root(), "debug", cfg.Server.Debug)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	l.Info("shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
