package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"doacao-platform/internal/metrics"
	"doacao-platform/internal/middleware"
	"doacao-platform/internal/models"
	"doacao-platform/internal/session"
)

// maxSessionWait bounds how long a request waits for a login to resolve.
const maxSessionWait = 10 * time.Second

// AuthHandler drives the session manager
type AuthHandler struct {
	Session   *session.Manager
	JwtSecret string
	Metrics   *metrics.Metrics
	Log       *zap.Logger
}

func NewAuthHandler(s *session.Manager, jwtSecret string, m *metrics.Metrics, log *zap.Logger) *AuthHandler {
	return &AuthHandler{Session: s, JwtSecret: jwtSecret, Metrics: m, Log: log}
}

type LoginRequest struct {
	Email string `json:"email" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	h.finish(c, "login", h.Session.Login(req.Email), http.StatusOK, "Login successful.")
}

// RegisterRequest defines the JSON struct we expect from the client
type RegisterRequest struct {
	Name     string               `json:"name" binding:"required"`
	Email    string               `json:"email" binding:"required"`
	Role     models.Role          `json:"role"`
	Phone    string               `json:"phone"`
	City     string               `json:"city"`
	Business *models.BusinessData `json:"business"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	task := h.Session.Register(session.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Role:     req.Role,
		Phone:    req.Phone,
		City:     req.City,
		Business: req.Business,
	})
	h.finish(c, "register", task, http.StatusCreated, "User created successfully.")
}

// finish waits for the session task and answers with the user and a token.
func (h *AuthHandler) finish(c *gin.Context, kind string, task *session.Task[models.User], status int, message string) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), maxSessionWait)
	defer cancel()

	user, err := task.Wait(ctx)
	switch {
	case errors.Is(err, session.ErrInvalidEmail), errors.Is(err, session.ErrInvalidName), errors.Is(err, models.ErrInvalidRole):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, session.ErrClosed):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Server is shutting down."})
		return
	case err != nil:
		h.Log.Warn("session task did not resolve", zap.String("kind", kind), zap.Error(err))
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "Timed out, please try again."})
		return
	}

	tokenString, err := middleware.IssueToken(h.JwtSecret, user.ID, user.Email, time.Now())
	if err != nil {
		h.Log.Error("failed to create JWT", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error."})
		return
	}

	h.Metrics.Logins.WithLabelValues(kind).Inc()
	c.JSON(status, gin.H{"message": message, "token": tokenString, "user": user})
}

type PendingRoleRequest struct {
	Role models.Role `json:"role" binding:"required"`
}

// SetPendingRole stores the role picked on the role-selection screen.
func (h *AuthHandler) SetPendingRole(c *gin.Context) {
	var req PendingRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if err := h.Session.SetPendingRole(c.Request.Context(), req.Role); err != nil {
		if errors.Is(err, models.ErrInvalidRole) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.Log.Error("failed to store pending role", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"role": req.Role})
}

// Logout ends the session the token belongs to.
func (h *AuthHandler) Logout(c *gin.Context) {
	if _, ok := sessionUser(c, h.Session); !ok {
		return
	}
	h.Session.Logout()
	c.JSON(http.StatusOK, gin.H{"message": "Logged out."})
}

func (h *AuthHandler) GetMe(c *gin.Context) {
	user, ok := sessionUser(c, h.Session)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, user)
}

type UpdateRoleRequest struct {
	Role     models.Role          `json:"role" binding:"required"`
	Business *models.BusinessData `json:"business"`
}

func (h *AuthHandler) UpdateRole(c *gin.Context) {
	if _, ok := sessionUser(c, h.Session); !ok {
		return
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if !req.Role.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": models.ErrInvalidRole.Error()})
		return
	}

	user, ok := h.Session.UpdateRole(req.Role, req.Business)
	if !ok {
		// The session ended between the check and the update.
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired, please log in again."})
		return
	}
	c.JSON(http.StatusOK, user)
}
