package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/File-Sharing-BondBridg/Video-Service/cmd/middleware"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Request body is required")
		return
	}
	if req.Username == "" || req.Password == "" {
		badRequest(c, "Username and password are required")
		return
	}

	id, ok := h.Auth.Authenticate(c.Request.Context(), req.Username, req.Password)
	if !ok {
		h.log().Warn("failed login attempt", "username", req.Username, "ip", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}

	token, err := h.Auth.CreateSession(c.Request.Context(), id.ID, 0)
	if err != nil {
		h.log().Error("failed to create session", "username", id.Username, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	h.log().Info("user logged in", "username", id.Username)
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"session_token": token,
		"user":          userJSON(id),
	})
}

func (h *Handler) Logout(c *gin.Context) {
	token := c.GetHeader(middleware.SessionHeader)
	if !h.Auth.InvalidateSession(c.Request.Context(), token) {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to logout"})
		return
	}
	h.log().Info("user logged out", "username", identity(c).Username)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out successfully"})
}

func (h *Handler) Verify(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "user": userJSON(identity(c))})
}
