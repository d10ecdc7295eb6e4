package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

type createOwnKeyRequest struct {
	Description string `json:"description"`
	ExpiresDays *int   `json:"expires_days"`
}

func (h *Handler) ListMyAPIKeys(c *gin.Context) {
	keys, err := h.Auth.ListAPIKeys(c.Request.Context(), identity(c).ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "api_keys": keys, "count": len(keys)})
}

func (h *Handler) CreateMyAPIKey(c *gin.Context) {
	var req createOwnKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "Invalid request body")
		return
	}

	id := identity(c)
	key, err := h.Auth.GenerateAPIKey(c.Request.Context(), id.ID, req.Description, req.ExpiresDays)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.log().Info("user created api key", "user", id.Username)
	c.JSON(http.StatusOK, gin.H{"success": true, "api_key": key, "message": "API key created successfully"})
}

func (h *Handler) RevokeMyAPIKey(c *gin.Context) {
	keyID, ok := keyIDParam(c)
	if !ok {
		return
	}
	id := identity(c)
	if err := h.Auth.RevokeAPIKey(c.Request.Context(), keyID, id.ID); err != nil {
		h.respondError(c, err)
		return
	}
	h.log().Info("user revoked api key", "user", id.Username, "key_id", keyID)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "API key revoked successfully"})
}

func (h *Handler) APIKeyStatus(c *gin.Context) {
	has, err := h.Auth.HasActiveAPIKey(c.Request.Context(), identity(c).ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "has_api_key": has, "is_active": has})
}
