package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/File-Sharing-BondBridg/Video-Service/cmd/middleware"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/api/handlers"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/configuration"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/logger"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/ratelimit"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/services/auth"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/services/events"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/storage"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/testutil"
)

func TestConnectOptionalDefaults(t *testing.T) {
	o := connectOptional(context.Background(), &configuration.Config{}, logger.Discard())
	defer o.close()

	assert.IsType(t, &ratelimit.MemoryLimiter{}, o.limiter)
	assert.Equal(t, events.Nop{}, o.events)
	assert.Nil(t, o.archive)
	assert.Nil(t, o.scanner)
}

func TestConnectOptionalFallsBack(t *testing.T) {
	cfg := &configuration.Config{
		Redis:     configuration.RedisConfig{Addr: "127.0.0.1:1"},
		NATSURL:   "nats://127.0.0.1:1",
		CLAMAVURL: "tcp://127.0.0.1:1",
	}
	o := connectOptional(context.Background(), cfg, logger.Discard())
	defer o.close()

	assert.IsType(t, &ratelimit.MemoryLimiter{}, o.limiter)
	assert.Equal(t, events.Nop{}, o.events)
	assert.Nil(t, o.scanner)
}

func TestRouterServesHealth(t *testing.T) {
	local, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	store := testutil.NewMemStore()
	authSvc := auth.NewService(store, auth.WithLogger(logger.Discard()))

	h := &handlers.Handler{Auth: authSvc, Local: local, Logger: logger.Discard()}
	cfg := &configuration.Config{}
	r := newRouter(cfg, logger.Discard(), h, middleware.NewGate(authSvc, "secret", logger.Discard()), ratelimit.NewMemoryLimiter())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, local.Root(), body["download_dir"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/list-files", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
