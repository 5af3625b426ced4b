package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"doacao-platform/internal/models"
	"doacao-platform/internal/notify"
	"doacao-platform/internal/session"
)

// NotificationHandler serves the settings of the current session user.
type NotificationHandler struct {
	Center  *notify.Center
	Session *session.Manager
}

func NewNotificationHandler(center *notify.Center, s *session.Manager) *NotificationHandler {
	return &NotificationHandler{Center: center, Session: s}
}

func (h *NotificationHandler) GetSettings(c *gin.Context) {
	if _, ok := sessionUser(c, h.Session); !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"supported":   h.Center.Supported(),
		"permission":  h.Center.PermissionState(),
		"preferences": h.Center.Preferences(),
	})
}

// RequestPermission never fails the request: an unsupported platform is
// reported as a message for the user.
func (h *NotificationHandler) RequestPermission(c *gin.Context) {
	if _, ok := sessionUser(c, h.Session); !ok {
		return
	}

	err := h.Center.RequestPermission(c.Request.Context())
	if errors.Is(err, notify.ErrUnsupported) {
		c.JSON(http.StatusOK, gin.H{
			"permission": h.Center.PermissionState(),
			"message":    "Seu dispositivo não suporta notificações.",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"permission": h.Center.PermissionState()})
}

func (h *NotificationHandler) UpdatePreferences(c *gin.Context) {
	if _, ok := sessionUser(c, h.Session); !ok {
		return
	}

	var patch models.PreferencesPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.Center.UpdatePreferences(c.Request.Context(), patch))
}

type TestNotificationRequest struct {
	Title string `json:"title" binding:"required"`
	Body  string `json:"body"`
}

// SendTest fires a local notification. Delivery is best-effort, so the
// response only echoes the permission it was sent under.
func (h *NotificationHandler) SendTest(c *gin.Context) {
	if _, ok := sessionUser(c, h.Session); !ok {
		return
	}

	var req TestNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	h.Center.SendLocalNotification(req.Title, req.Body)
	c.JSON(http.StatusAccepted, gin.H{"permission": h.Center.PermissionState()})
}
