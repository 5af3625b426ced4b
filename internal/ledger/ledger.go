// Package ledger holds the help requests and applies donations to them.
package ledger

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"doacao-platform/internal/models"
)

var (
	ErrInvalidRequest  = errors.New("invalid help request")
	ErrInvalidAmount   = errors.New("donation amount must be a positive number")
	ErrRequestNotFound = errors.New("help request not found")
	ErrForbidden       = errors.New("only admins can approve requests")
)

// NewRequest carries the caller-supplied fields of a help request.
type NewRequest struct {
	UserID      string          `json:"-" validate:"required"`
	UserName    string          `json:"-" validate:"required"`
	Title       string          `json:"title" validate:"required,max=120"`
	Description string          `json:"description" validate:"max=4000"`
	Category    models.Category `json:"category" validate:"required,oneof=Alimentação Saúde Reforma Educação Outros"`
	Urgency     models.Urgency  `json:"urgency" validate:"required,oneof=Baixa Média Alta Crítica"`
	Location    string          `json:"location" validate:"max=200"`
	Goal        float64         `json:"goal" validate:"gt=0"`
	PixKey      string          `json:"pix_key" validate:"required,max=140"`
	Image       string          `json:"image" validate:"omitempty,url"`
}

// DonationHook observes every applied donation with the updated request.
type DonationHook func(req models.HelpRequest, amount float64)

type Option func(*Ledger)

func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func WithIDs(newID func() string) Option {
	return func(l *Ledger) { l.newID = newID }
}

func WithDonationHook(h DonationHook) Option {
	return func(l *Ledger) { l.hooks = append(l.hooks, h) }
}

// Ledger is the Request Ledger. Requests are kept newest first and are never
// removed.
type Ledger struct {
	mu       sync.RWMutex
	requests []models.HelpRequest
	history  []models.Donation

	validate *validator.Validate
	log      *zap.Logger
	now      func() time.Time
	newID    func() string
	hooks    []DonationHook
}

// New builds a ledger holding a copy of seed, in the given order.
func New(seed []models.HelpRequest, log *zap.Logger, opts ...Option) *Ledger {
	l := &Ledger{
		validate: validator.New(),
		log:      log.Named("ledger"),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.requests = make([]models.HelpRequest, 0, len(seed))
	for _, r := range seed {
		l.requests = append(l.requests, r.Clone())
	}
	return l
}

// ListRequests returns a snapshot of every request, newest first.
func (l *Ledger) ListRequests() []models.HelpRequest {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.HelpRequest, len(l.requests))
	for i, r := range l.requests {
		out[i] = r.Clone()
	}
	return out
}

func (l *Ledger) Get(id string) (models.HelpRequest, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	i := l.indexLocked(id)
	if i < 0 {
		return models.HelpRequest{}, false
	}
	return l.requests[i].Clone(), true
}

// CreateRequest validates in and prepends a new open request.
func (l *Ledger) CreateRequest(in NewRequest) (models.HelpRequest, error) {
	if err := l.validate.Struct(in); err != nil {
		return models.HelpRequest{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if math.IsInf(in.Goal, 0) {
		return models.HelpRequest{}, fmt.Errorf("%w: goal must be finite", ErrInvalidRequest)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	req := models.HelpRequest{
		ID:          l.newID(),
		UserID:      in.UserID,
		UserName:    in.UserName,
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Urgency:     in.Urgency,
		Location:    in.Location,
		Goal:        in.Goal,
		Raised:      0,
		Status:      models.StatusOpen,
		Image:       in.Image,
		PixKey:      in.PixKey,
		CreatedAt:   l.now(),
		Updates:     []models.UpdatePost{},
	}
	l.requests = append([]models.HelpRequest{req}, l.requests...)

	l.log.Info("help request created", zap.String("request_id", req.ID), zap.String("user_id", req.UserID))
	return req.Clone(), nil
}

// ApplyDonation adds amount to the request's raised total. Non-positive or
// non-finite amounts and unknown ids leave the ledger untouched. A request
// whose total reaches its goal becomes Concluído; no other status changes.
func (l *Ledger) ApplyDonation(id string, amount float64) (models.HelpRequest, bool) {
	if !validAmount(amount) {
		l.log.Debug("donation rejected", zap.String("request_id", id), zap.Float64("amount", amount))
		return models.HelpRequest{}, false
	}

	l.mu.Lock()
	req, ok := l.applyLocked(id, amount)
	l.mu.Unlock()

	if ok {
		l.notify(req, amount)
	}
	return req, ok
}

// Donate applies a donation and records it in the donor's history.
func (l *Ledger) Donate(donorID, id string, amount float64) (models.Donation, error) {
	if !validAmount(amount) {
		return models.Donation{}, ErrInvalidAmount
	}

	l.mu.Lock()
	req, ok := l.applyLocked(id, amount)
	if !ok {
		l.mu.Unlock()
		return models.Donation{}, ErrRequestNotFound
	}
	d := models.Donation{
		ID:           l.newID(),
		RequestID:    req.ID,
		RequestTitle: req.Title,
		DonorID:      donorID,
		Amount:       amount,
		CreatedAt:    l.now(),
	}
	l.history = append([]models.Donation{d}, l.history...)
	l.mu.Unlock()

	l.notify(req, amount)
	return d, nil
}

// History lists the donations made by donorID, newest first.
func (l *Ledger) History(donorID string) []models.Donation {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := []models.Donation{}
	for _, d := range l.history {
		if d.DonorID == donorID {
			out = append(out, d)
		}
	}
	return out
}

// ApproveRequest marks a request as verified and publicly listed.
//
// The admin check trusts the role on the caller's own user record. It is a
// UI-level guard only and must not be mistaken for real authorization.
func (l *Ledger) ApproveRequest(actor models.User, id string) (models.HelpRequest, error) {
	if actor.Role != models.RoleAdmin {
		return models.HelpRequest{}, ErrForbidden
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexLocked(id)
	if i < 0 {
		l.log.Debug("approval for unknown request", zap.String("request_id", id))
		return models.HelpRequest{}, ErrRequestNotFound
	}
	l.requests[i].Verified = true

	l.log.Info("help request approved", zap.String("request_id", id), zap.String("admin_id", actor.ID))
	return l.requests[i].Clone(), nil
}

func (l *Ledger) applyLocked(id string, amount float64) (models.HelpRequest, bool) {
	i := l.indexLocked(id)
	if i < 0 {
		l.log.Debug("donation for unknown request dropped", zap.String("request_id", id))
		return models.HelpRequest{}, false
	}

	r := &l.requests[i]
	r.Raised += amount
	if r.Raised >= r.Goal {
		r.Status = models.StatusCompleted
	}
	return r.Clone(), true
}

func (l *Ledger) indexLocked(id string) int {
	for i := range l.requests {
		if l.requests[i].ID == id {
			return i
		}
	}
	return -1
}

func (l *Ledger) notify(req models.HelpRequest, amount float64) {
	for _, h := range l.hooks {
		h(req, amount)
	}
}

func validAmount(amount float64) bool {
	return amount > 0 && !math.IsInf(amount, 0) && !math.IsNaN(amount)
}
