package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"doacao-platform/internal/ledger"
	"doacao-platform/internal/session"
)

type DonationHandler struct {
	Ledger  *ledger.Ledger
	Session *session.Manager
	Log     *zap.Logger
}

func NewDonationHandler(l *ledger.Ledger, s *session.Manager, log *zap.Logger) *DonationHandler {
	return &DonationHandler{Ledger: l, Session: s, Log: log}
}

type CreateDonationRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

func (h *DonationHandler) CreateDonation(c *gin.Context) {
	user, ok := sessionUser(c, h.Session)
	if !ok {
		return
	}

	var req CreateDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	requestID := c.Param("id")
	donation, err := h.Ledger.Donate(user.ID, requestID, req.Amount)
	switch {
	case errors.Is(err, ledger.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, ledger.ErrRequestNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Help request not found"})
		return
	case err != nil:
		h.Log.Error("donation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error."})
		return
	}

	h.Session.RecordDonation(user.ID, req.Amount)
	h.Log.Info("donation applied",
		zap.String("request_id", requestID),
		zap.String("donor_id", user.ID),
		zap.Float64("amount", req.Amount),
	)

	updated, _ := h.Ledger.Get(requestID)
	c.JSON(http.StatusCreated, gin.H{"donation": donation, "request": updated})
}

// GetMyDonations lists the current user's donations, newest first.
func (h *DonationHandler) GetMyDonations(c *gin.Context) {
	user, ok := sessionUser(c, h.Session)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.Ledger.History(user.ID))
}
