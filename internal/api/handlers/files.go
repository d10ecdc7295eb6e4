package handlers

import (
	"errors"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/File-Sharing-BondBridg/Video-Service/internal/models"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/storage"
)

// GetFile streams a file from the download root as an attachment.
func (h *Handler) GetFile(c *gin.Context) {
	rel := c.Param("path")

	path, err := h.Local.Resolve(rel)
	switch {
	case errors.Is(err, storage.ErrOutsideRoot):
		h.log().Warn("path traversal attempt", "path", rel, "ip", c.ClientIP())
		c.JSON(http.StatusForbidden, gin.H{"error": "Invalid file path"})
		return
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	case err != nil:
		h.respondError(c, err)
		return
	}

	c.FileAttachment(path, filepath.Base(path))
}

func (h *Handler) ListFiles(c *gin.Context) {
	id := identity(c)
	files, err := h.FileQuery.List(c.Request.Context(), id.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user_id": id.ID.String(),
		"files":   files,
		"count":   len(files),
	})
}

type deleteFileRequest struct {
	FilePath string `json:"file_path"`
}

func (h *Handler) DeleteFile(c *gin.Context) {
	var req deleteFileRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.FilePath == "" {
		badRequest(c, "file_path is required")
		return
	}

	if err := h.FileCmd.Delete(c.Request.Context(), identity(c).ID, req.FilePath); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "File deleted successfully"})
}
