package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/File-Sharing-BondBridg/Video-Service/internal/models"
)

type createKeyRequest struct {
	Username    string `json:"username"`
	Description string `json:"description"`
	ExpiresDays *int   `json:"expires_days"`
}

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type setActiveRequest struct {
	IsActive *bool `json:"is_active"`
}

func (h *Handler) ListAllAPIKeys(c *gin.Context) {
	keys, err := h.Auth.ListAllAPIKeys(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "api_keys": keys, "count": len(keys)})
}

func (h *Handler) CreateAPIKeyForUser(c *gin.Context) {
	var req createKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Request body is required")
		return
	}
	if req.Username == "" {
		badRequest(c, "Username is required")
		return
	}

	user, err := h.Auth.GetUserByUsername(c.Request.Context(), req.Username)
	if err != nil {
		h.respondError(c, err)
		return
	}

	key, err := h.Auth.GenerateAPIKey(c.Request.Context(), user.ID, req.Description, req.ExpiresDays)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.log().Info("admin created api key", "admin", identity(c).Username, "user", user.Username)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"api_key": key,
		"message": "API key created for " + user.Username,
	})
}

func (h *Handler) RevokeAnyAPIKey(c *gin.Context) {
	keyID, ok := keyIDParam(c)
	if !ok {
		return
	}
	if err := h.Auth.RevokeAnyAPIKey(c.Request.Context(), keyID); err != nil {
		h.respondError(c, err)
		return
	}
	h.log().Info("admin revoked api key", "admin", identity(c).Username, "key_id", keyID)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "API key revoked successfully"})
}

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.Auth.ListUsers(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "users": users, "count": len(users)})
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Request body is required")
		return
	}
	if req.Username == "" || req.Password == "" {
		badRequest(c, "Username and password are required")
		return
	}
	if req.Role == "" {
		req.Role = models.RoleUser
	}

	msg, err := h.Auth.CreateUser(c.Request.Context(), req.Username, req.Password, req.Role)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.log().Info("admin created user", "admin", identity(c).Username, "user", req.Username)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": msg})
}

func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}
	if id == identity(c).ID {
		badRequest(c, "You cannot delete your own account")
		return
	}

	n, err := h.FileCmd.DeleteUser(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.log().Info("admin deleted user", "admin", identity(c).Username, "user_id", id, "files", n)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User deleted successfully", "files_removed": n})
}

func (h *Handler) SetUserActive(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}
	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsActive == nil {
		badRequest(c, "is_active is required")
		return
	}
	if id == identity(c).ID && !*req.IsActive {
		badRequest(c, "You cannot disable your own account")
		return
	}

	if err := h.Auth.SetUserActive(c.Request.Context(), id, *req.IsActive); err != nil {
		h.respondError(c, err)
		return
	}
	h.log().Info("admin changed user status", "admin", identity(c).Username, "user_id", id, "is_active", *req.IsActive)
	c.JSON(http.StatusOK, gin.H{"success": true, "is_active": *req.IsActive})
}

func keyIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "Invalid API key id")
		return 0, false
	}
	return id, true
}

func userIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "Invalid user id")
		return uuid.Nil, false
	}
	return id, true
}
