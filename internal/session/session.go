// Package session owns the current user: login, registration, role changes,
// logout and resuming a persisted session on start.
//
// Role is a client-held claim. Nothing here verifies it against an authority,
// so an "admin" user is only as trustworthy as whoever wrote the record.
package session

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"doacao-platform/internal/models"
	"doacao-platform/internal/store"
)

var (
	ErrInvalidEmail = errors.New("invalid email")
	ErrInvalidName  = errors.New("name is required")
	ErrClosed       = errors.New("session manager closed")
)

const avatarBaseURL = "https://api.dicebear.com/7.x/bottts/svg?seed="

// Stats a freshly logged-in account starts with.
var loginStats = models.UserStats{Donations: 3, TotalDonated: 150, RequestsCreated: 0}

type Options struct {
	LoginDelay    time.Duration
	RegisterDelay time.Duration
	Scheduler     Scheduler
	Now           func() time.Time
	NewID         func() string
}

// Manager is the Session Manager. Every exported method runs atomically with
// respect to the session state.
type Manager struct {
	mu      sync.Mutex
	current *models.User
	closed  bool

	store store.Store
	log   *zap.Logger

	loginDelay    time.Duration
	registerDelay time.Duration
	sched         Scheduler
	now           func() time.Time
	newID         func() string
}

func New(st store.Store, log *zap.Logger, opts Options) *Manager {
	m := &Manager{
		store:         st,
		log:           log.Named("session"),
		loginDelay:    opts.LoginDelay,
		registerDelay: opts.RegisterDelay,
		sched:         opts.Scheduler,
		now:           opts.Now,
		newID:         opts.NewID,
	}
	if m.sched == nil {
		m.sched = TimerScheduler
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.newID == nil {
		m.newID = uuid.NewString
	}
	return m
}

// Restore resumes a persisted session. Corrupt or invalid records are
// discarded and leave the manager logged out. A failing store also leaves it
// logged out but keeps the record.
func (m *Manager) Restore(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var u models.User
	err := store.GetJSON(ctx, m.store, store.KeyUser, &u)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return
	case err != nil && !errors.Is(err, store.ErrCorrupt):
		// The record may be fine; leave it for the next start.
		m.log.Warn("cannot read stored user, starting logged out", zap.Error(err))
		return
	case err == nil:
		err = u.Validate()
	}
	if err != nil {
		m.log.Warn("discarding stored user", zap.Error(err))
		m.current = nil
		if err := m.store.Delete(ctx, store.KeyUser); err != nil {
			m.log.Error("failed to delete stored user", zap.Error(err))
		}
		return
	}

	m.current = &u
	m.log.Info("session restored", zap.String("user_id", u.ID))
}

// CurrentUser returns a copy of the logged-in user.
func (m *Manager) CurrentUser() (models.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return models.User{}, false
	}
	return *m.current, true
}

// Login starts a simulated sign-in. Any well-formed email succeeds. Concurrent
// logins are not coordinated: whichever resolves last owns the session.
func (m *Manager) Login(email string) *Task[models.User] {
	task := newTask[models.User]()

	email = strings.TrimSpace(email)
	local, ok := splitEmail(email)
	if !ok {
		task.resolve(models.User{}, ErrInvalidEmail)
		return task
	}

	m.sched.AfterFunc(m.loginDelay, func() {
		m.mu.Lock()
		defer m.mu.Unlock()

		if m.closed {
			task.resolve(models.User{}, ErrClosed)
			return
		}

		u := models.User{
			ID:       m.newID(),
			Name:     local,
			Email:    email,
			Role:     models.RoleDonor,
			Avatar:   avatarFor(email),
			JoinedAt: m.now(),
			Stats:    loginStats,
		}
		m.setLocked(&u)
		m.log.Info("logged in", zap.String("user_id", u.ID), zap.String("email", email))
		task.resolve(u, nil)
	})

	return task
}

type RegisterInput struct {
	Name     string
	Email    string
	Role     models.Role
	Phone    string
	City     string
	Business *models.BusinessData
}

// Register starts a simulated sign-up. An empty Role takes the pending role
// selection, or donor when there is none.
func (m *Manager) Register(in RegisterInput) *Task[models.User] {
	task := newTask[models.User]()

	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if _, ok := splitEmail(in.Email); !ok {
		task.resolve(models.User{}, ErrInvalidEmail)
		return task
	}
	if in.Name == "" {
		task.resolve(models.User{}, ErrInvalidName)
		return task
	}

	role := in.Role
	if role != "" && !role.Valid() {
		task.resolve(models.User{}, models.ErrInvalidRole)
		return task
	}

	m.sched.AfterFunc(m.registerDelay, func() {
		m.mu.Lock()
		defer m.mu.Unlock()

		if m.closed {
			task.resolve(models.User{}, ErrClosed)
			return
		}

		// The pending selection survives a registration that never completes.
		if role == "" {
			role = models.RoleDonor
			if pending, ok := m.ConsumePendingRole(context.Background()); ok {
				role = pending
			}
		}

		u := models.User{
			ID:       m.newID(),
			Name:     in.Name,
			Email:    in.Email,
			Phone:    in.Phone,
			City:     in.City,
			Role:     role,
			Avatar:   avatarFor(in.Email),
			JoinedAt: m.now(),
		}
		if role == models.RoleBusiness && in.Business != nil {
			in.Business.ApplyTo(&u)
		}
		m.setLocked(&u)
		m.log.Info("registered", zap.String("user_id", u.ID), zap.String("role", string(role)))
		task.resolve(u, nil)
	})

	return task
}

// UpdateRole assigns a role to the current user. It does nothing when nobody
// is logged in or the role is unknown.
func (m *Manager) UpdateRole(role models.Role, business *models.BusinessData) (models.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		m.log.Debug("role update without a session ignored")
		return models.User{}, false
	}
	if !role.Valid() {
		m.log.Debug("role update with unknown role ignored", zap.String("role", string(role)))
		return models.User{}, false
	}

	u := *m.current
	u.Role = role
	if role == models.RoleBusiness {
		if business != nil {
			business.ApplyTo(&u)
		}
	} else {
		models.ClearBusiness(&u)
	}
	m.setLocked(&u)
	return u, true
}

// RecordDonation bumps the informational donation stats of donorID. It does
// nothing unless donorID is still the current user.
func (m *Manager) RecordDonation(donorID string, amount float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil || m.current.ID != donorID {
		m.log.Debug("donation stats for another user ignored", zap.String("donor_id", donorID))
		return
	}
	u := *m.current
	u.Stats.Donations++
	u.Stats.TotalDonated += amount
	m.setLocked(&u)
}

// RecordRequestCreated bumps the informational request counter of the current user.
func (m *Manager) RecordRequestCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return
	}
	u := *m.current
	u.Stats.RequestsCreated++
	m.setLocked(&u)
}

func (m *Manager) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = nil
	if err := m.store.Delete(context.Background(), store.KeyUser); err != nil {
		m.log.Error("failed to delete stored user", zap.Error(err))
	}
}

// SetPendingRole remembers the role picked before registration.
func (m *Manager) SetPendingRole(ctx context.Context, role models.Role) error {
	if !role.Valid() {
		return models.ErrInvalidRole
	}
	return m.store.Put(ctx, store.KeyPendingRole, []byte(role))
}

// ConsumePendingRole returns and clears the pending role selection.
func (m *Manager) ConsumePendingRole(ctx context.Context) (models.Role, bool) {
	data, err := m.store.Get(ctx, store.KeyPendingRole)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			m.log.Error("failed to read pending role", zap.Error(err))
		}
		return "", false
	}
	if err := m.store.Delete(ctx, store.KeyPendingRole); err != nil {
		m.log.Error("failed to clear pending role", zap.Error(err))
	}

	role := models.Role(data)
	if !role.Valid() {
		m.log.Warn("discarding invalid pending role", zap.String("role", string(data)))
		return "", false
	}
	return role, true
}

// Close disposes the manager. Tasks resolving afterwards leave state alone.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}

func (m *Manager) setLocked(u *models.User) {
	m.current = u
	if err := store.PutJSON(context.Background(), m.store, store.KeyUser, u); err != nil {
		m.log.Error("failed to persist user", zap.Error(err))
	}
}

func splitEmail(email string) (string, bool) {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || domain == "" || strings.ContainsAny(email, " \t") {
		return "", false
	}
	return local, true
}

func avatarFor(email string) string {
	return avatarBaseURL + url.QueryEscape(strings.ToLower(email))
}
