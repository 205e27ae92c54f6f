package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Hasan-Al-Banna-Nahid/pi-commerce-sub000/api"
	"github.com/Hasan-Al-Banna-Nahid/pi-commerce-sub000/pkg/apperrors"
	"github.com/Hasan-Al-Banna-Nahid/pi-commerce-sub000/session"
)

type AuthController struct {
	API     *api.Client
	Session *session.Manager
	Logger  *zap.Logger
}

func NewAuthController(client *api.Client, sess *session.Manager, logger *zap.Logger) *AuthController {
	return &AuthController{API: client, Session: sess, Logger: logger}
}

// Login authenticates against the remote API and persists the session
func (ac *AuthController) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	ctx := c.Request.Context()
	resp, err := ac.API.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredentials) || errors.Is(err, apperrors.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		ac.Logger.Error("login failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "login failed"})
		return
	}

	if err := ac.Session.SetToken(ctx, resp.Token); err != nil {
		ac.Logger.Warn("failed to persist token", zap.Error(err))
	}
	if err := ac.Session.SetUser(ctx, resp.User); err != nil {
		ac.Logger.Warn("failed to persist profile", zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"user": resp.User})
}

// Register creates an account and signs the user in
func (ac *AuthController) Register(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	ctx := c.Request.Context()
	resp, err := ac.API.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		ac.Logger.Error("registration failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "registration failed"})
		return
	}

	if err := ac.Session.SetToken(ctx, resp.Token); err != nil {
		ac.Logger.Warn("failed to persist token", zap.Error(err))
	}
	if err := ac.Session.SetUser(ctx, resp.User); err != nil {
		ac.Logger.Warn("failed to persist profile", zap.Error(err))
	}

	c.JSON(http.StatusCreated, gin.H{"user": resp.User})
}

// Logout drops the session locally and tells the backend, fire-and-forget
func (ac *AuthController) Logout(c *gin.Context) {
	ctx := c.Request.Context()
	ac.API.Logout(ctx)
	if err := ac.Session.Purge(ctx); err != nil {
		ac.Logger.Warn("failed to purge session", zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"message": "signed out"})
}

// Me returns the locally stored profile
func (ac *AuthController) Me(c *gin.Context) {
	user, ok := ac.Session.User()
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
