package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"doacao-platform/internal/middleware"
	"doacao-platform/internal/models"
	"doacao-platform/internal/session"
)

// sessionUser returns the current session user when it matches the token
// subject. It writes a 401 and returns false otherwise.
func sessionUser(c *gin.Context, s *session.Manager) (models.User, bool) {
	userID := c.GetString(middleware.UserIDKey)

	user, ok := s.CurrentUser()
	if !ok || user.ID != userID {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired, please log in again."})
		return models.User{}, false
	}
	return user, true
}
