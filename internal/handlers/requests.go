package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"doacao-platform/internal/ledger"
	"doacao-platform/internal/metrics"
	"doacao-platform/internal/models"
	"doacao-platform/internal/notify"
	"doacao-platform/internal/session"
)

type RequestHandler struct {
	Ledger  *ledger.Ledger
	Session *session.Manager
	Notify  *notify.Center
	Metrics *metrics.Metrics
	Log     *zap.Logger
}

func NewRequestHandler(l *ledger.Ledger, s *session.Manager, n *notify.Center, m *metrics.Metrics, log *zap.Logger) *RequestHandler {
	return &RequestHandler{Ledger: l, Session: s, Notify: n, Metrics: m, Log: log}
}

// ListRequests returns the feed, newest first. ?verified=true keeps only
// approved requests and ?category= narrows to one category.
func (h *RequestHandler) ListRequests(c *gin.Context) {
	onlyVerified := c.Query("verified") == "true"
	category := models.Category(c.Query("category"))

	requests := []models.HelpRequest{}
	for _, r := range h.Ledger.ListRequests() {
		if onlyVerified && !r.Verified {
			continue
		}
		if category != "" && r.Category != category {
			continue
		}
		requests = append(requests, r)
	}
	c.JSON(http.StatusOK, requests)
}

func (h *RequestHandler) GetRequest(c *gin.Context) {
	req, ok := h.Ledger.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Help request not found"})
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *RequestHandler) CreateRequest(c *gin.Context) {
	user, ok := sessionUser(c, h.Session)
	if !ok {
		return
	}

	var in ledger.NewRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	in.UserID = user.ID
	in.UserName = user.Name

	req, err := h.Ledger.CreateRequest(in)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.Session.RecordRequestCreated()
	h.Metrics.RequestsCreated.WithLabelValues(string(req.Category)).Inc()
	h.Notify.NotifyNewRequest(req)

	c.JSON(http.StatusCreated, req)
}

// ApproveRequest publishes a pending request. The admin check relies on the
// role the client holds; see ledger.ApproveRequest.
func (h *RequestHandler) ApproveRequest(c *gin.Context) {
	user, ok := sessionUser(c, h.Session)
	if !ok {
		return
	}

	req, err := h.Ledger.ApproveRequest(user, c.Param("id"))
	switch {
	case errors.Is(err, ledger.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	case errors.Is(err, ledger.ErrRequestNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Help request not found"})
		return
	case err != nil:
		h.Log.Error("approve failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error."})
		return
	}
	c.JSON(http.StatusOK, req)
}
