package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/thebishalghosh/livonto-sub000/internal/config"
	"github.com/thebishalghosh/livonto-sub000/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler handles admin console authentication
type AuthHandler struct {
	adminCfg   config.AdminConfig
	jwtService *jwt.Service
	logger     *logrus.Logger
	// Stable id derived from the admin email so tokens survive restarts
	adminID uuid.UUID
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(adminCfg config.AdminConfig, jwtService *jwt.Service, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		adminCfg:   adminCfg,
		jwtService: jwtService,
		logger:     logger,
		adminID:    uuid.NewSHA1(uuid.NameSpaceOID, []byte(adminCfg.Email)),
	}
}

// LoginRequest represents an admin login attempt
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login verifies admin credentials and issues tokens
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if h.adminCfg.Email == "" || h.adminCfg.PasswordHash == "" {
		h.logger.Error("Admin credentials are not configured")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Admin login is not configured"})
		return
	}

	if req.Email != h.adminCfg.Email ||
		bcrypt.CompareHashAndPassword([]byte(h.adminCfg.PasswordHash), []byte(req.Password)) != nil {
		h.logger.WithField("email", req.Email).Warn("Admin login failed")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	accessToken, err := h.jwtService.GenerateAccessToken(h.adminID, req.Email)
	if err != nil {
		h.logger.WithError(err).Error("Failed to generate access token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	refreshToken, err := h.jwtService.GenerateRefreshToken(h.adminID, req.Email)
	if err != nil {
		h.logger.WithError(err).Error("Failed to generate refresh token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

// Refresh exchanges a valid refresh token for a new access token
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}

	accessToken, err := h.jwtService.GenerateAccessToken(claims.AdminID, claims.Email)
	if err != nil {
		h.logger.WithError(err).Error("Failed to generate access token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": accessToken})
}
