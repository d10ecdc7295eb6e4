package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/File-Sharing-BondBridg/Video-Service/cmd/middleware"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/logger"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/models"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/services/auth"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/services/command"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/services/downloader"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/services/query"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/storage"
)

const Version = "1.0.0"

// Pinger reports database reachability for the health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ConnectionChecker reports whether an object store can be reached.
type ConnectionChecker interface {
	CheckConnection(ctx context.Context) error
}

// HealthReporter reports the state of a long-lived connection.
type HealthReporter interface {
	Healthy() bool
}

// Handler holds the services behind the HTTP surface. Archive and Events
// are nil when the integration is disabled and are then left out of the
// health report.
type Handler struct {
	Auth       *auth.Service
	Downloader *downloader.Service
	FileQuery  *query.Files
	FileCmd    *command.Files
	Local      *storage.Local
	DB         Pinger
	Archive    ConnectionChecker
	Events     HealthReporter
	Logger     *slog.Logger
}

func (h *Handler) log() *slog.Logger {
	return logger.Component(h.Logger, "api")
}

// statusOf maps an error kind to its HTTP status.
func statusOf(kind models.ErrorKind) int {
	switch kind {
	case models.KindValidation:
		return http.StatusBadRequest
	case models.KindUnauthorized:
		return http.StatusUnauthorized
	case models.KindForbidden:
		return http.StatusForbidden
	case models.KindNotFound:
		return http.StatusNotFound
	case models.KindConflict:
		return http.StatusConflict
	case models.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {success: false, error}. Internal errors that
// are not AppErrors are logged and hidden behind a generic message.
func (h *Handler) respondError(c *gin.Context, err error) {
	kind := models.KindOf(err)
	msg := models.MessageOf(err)

	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		h.log().Error("request failed", "path", c.FullPath(), "error", err)
		msg = "Internal server error"
	} else if statusOf(kind) >= http.StatusInternalServerError {
		h.log().Error("request failed", "path", c.FullPath(), "kind", kind, "error", err)
	}

	c.JSON(statusOf(kind), gin.H{"success": false, "error": msg})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func userJSON(id *models.Identity) gin.H {
	return gin.H{"id": id.ID.String(), "username": id.Username, "role": id.Role}
}

func identity(c *gin.Context) *models.Identity {
	return middleware.IdentityFrom(c)
}
