package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/File-Sharing-BondBridg/Video-Service/internal/logger"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/storage"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type stubArchive struct{ err error }

func (a stubArchive) CheckConnection(context.Context) error { return a.err }

type stubEvents struct{ up bool }

func (e stubEvents) Healthy() bool { return e.up }

func health(t *testing.T, h *Handler) map[string]any {
	t.Helper()
	local, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	h.Local = local
	h.Logger = logger.Discard()

	r := gin.New()
	r.GET("/health", h.Health)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := map[string]any{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealthReportsDependencies(t *testing.T) {
	tests := []struct {
		name string
		h    *Handler
		want map[string]any
		omit []string
	}{
		{
			name: "integrations disabled",
			h:    &Handler{DB: stubPinger{}},
			want: map[string]any{"database": "ok"},
			omit: []string{"archive", "nats"},
		},
		{
			name: "all up",
			h:    &Handler{DB: stubPinger{}, Archive: stubArchive{}, Events: stubEvents{up: true}},
			want: map[string]any{"database": "ok", "archive": "ok", "nats": "ok"},
		},
		{
			name: "all down",
			h: &Handler{
				DB:      stubPinger{err: errors.New("refused")},
				Archive: stubArchive{err: errors.New("no route to host")},
				Events:  stubEvents{},
			},
			want: map[string]any{"database": "error", "archive": "error", "nats": "error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := health(t, tt.h)
			assert.Equal(t, "ok", body["status"])
			for k, v := range tt.want {
				assert.Equal(t, v, body[k], k)
			}
			for _, k := range tt.omit {
				assert.NotContains(t, body, k)
			}
		})
	}
}
