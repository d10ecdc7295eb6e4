package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Health(c *gin.Context) {
	database := "ok"
	if h.DB != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.DB.Ping(ctx); err != nil {
			h.log().Warn("health check: database unreachable", "error", err)
			database = "error"
		}
	}

	resp := gin.H{
		"status":       "ok",
		"timestamp":    float64(time.Now().UnixMilli()) / 1000,
		"download_dir": h.Local.Root(),
		"version":      Version,
		"database":     database,
	}
	if h.Archive != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		resp["archive"] = "ok"
		if err := h.Archive.CheckConnection(ctx); err != nil {
			h.log().Warn("health check: archive unreachable", "error", err)
			resp["archive"] = "error"
		}
	}
	if h.Events != nil {
		resp["nats"] = "ok"
		if !h.Events.Healthy() {
			resp["nats"] = "error"
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) DiskUsage(c *gin.Context) {
	usage, err := h.Local.Usage(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"total_space":       usage.Total,
		"used_space":        usage.Used,
		"free_space":        usage.Free,
		"usage_percent":     usage.UsagePercent,
		"download_dir_size": usage.DirSize,
	})
}
