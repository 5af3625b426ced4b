package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"doacao-platform/internal/models"
	"doacao-platform/internal/session"
	"doacao-platform/internal/upload"
)

type Enhancer interface {
	Enhance(ctx context.Context, text string, category models.Category) string
}

type Uploader interface {
	Upload(ctx context.Context, bucket, dir string, data []byte) (string, error)
}

type MediaHandler struct {
	Enhancer Enhancer
	Uploader Uploader
	Bucket   string
	Session  *session.Manager
	Log      *zap.Logger
}

func NewMediaHandler(e Enhancer, u Uploader, bucket string, s *session.Manager, log *zap.Logger) *MediaHandler {
	return &MediaHandler{Enhancer: e, Uploader: u, Bucket: bucket, Session: s, Log: log}
}

type EnhanceRequest struct {
	Text     string          `json:"text" binding:"required"`
	Category models.Category `json:"category"`
}

// Enhance always answers 200; on failure the text comes back unchanged.
func (h *MediaHandler) Enhance(c *gin.Context) {
	var req EnhanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": h.Enhancer.Enhance(c.Request.Context(), req.Text, req.Category)})
}

func (h *MediaHandler) Upload(c *gin.Context) {
	user, ok := sessionUser(c, h.Session)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable file"})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, upload.MaxSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable file"})
		return
	}

	url, err := h.Uploader.Upload(c.Request.Context(), h.Bucket, "requests/"+user.ID, data)
	switch {
	case errors.Is(err, upload.ErrNotImage):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, upload.ErrTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		return
	case errors.Is(err, upload.ErrNotConfigured):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Uploads are disabled."})
		return
	case err != nil:
		h.Log.Warn("upload failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Upload failed, please try again."})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": url})
}
