package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/File-Sharing-BondBridg/Video-Service/internal/services/downloader"
)

type downloadRequest struct {
	URL    string `json:"url"`
	Format string `json:"format"`
}

func (h *Handler) Download(c *gin.Context) {
	var req downloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Request body is required")
		return
	}

	res, err := h.Downloader.Download(c.Request.Context(), downloader.Request{
		URL:    req.URL,
		Format: req.Format,
		User:   identity(c),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"request_id":    res.RequestID,
		"user_id":       res.UserID,
		"video_id":      res.VideoID,
		"title":         res.Title,
		"file_path":     res.FilePath,
		"duration":      res.Duration,
		"download_path": res.DownloadPath,
	})
}

type formatsRequest struct {
	URL string `json:"url"`
}

func (h *Handler) Formats(c *gin.Context) {
	var req formatsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
		badRequest(c, "URL is required")
		return
	}

	list, err := h.Downloader.ListFormats(c.Request.Context(), req.URL)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"formats":    list.Formats,
		"count":      len(list.Formats),
		"raw_output": list.RawOutput,
	})
}
