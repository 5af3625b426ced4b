// Package notify keeps the notification permission and alert preferences and
// delivers local notifications, best-effort.
package notify

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"doacao-platform/internal/models"
	"doacao-platform/internal/store"
)

//go:generate mockgen -destination=mocks/mock_notify.go -package=mocks . Platform,Worker

var ErrUnsupported = errors.New("notifications are not supported on this platform")

// Options accompany a notification.
type Options struct {
	Body string `json:"body"`
	Icon string `json:"icon,omitempty"`
	Tag  string `json:"tag,omitempty"`
}

// Platform is the notification permission API of the host.
type Platform interface {
	Query(ctx context.Context) (models.Permission, error)
	Request(ctx context.Context) (models.Permission, error)
	Show(title string, opts Options) error
}

// Worker delivers notifications in the background, when one is available.
type Worker interface {
	ShowNotification(title string, opts Options) error
}

const defaultIcon = "/icons/mascote-192.png"

// Center is the Notification Preference Store.
type Center struct {
	mu         sync.Mutex
	permission models.Permission
	prefs      models.NotificationPreferences

	kv       store.Store
	platform Platform
	worker   Worker
	log      *zap.Logger
	onSend   func(path string)
}

type Option func(*Center)

// WithDeliveryHook is called with "worker" or "direct" after each delivery.
func WithDeliveryHook(f func(path string)) Option {
	return func(c *Center) { c.onSend = f }
}

// New loads stored preferences and the current platform permission. A nil
// platform means the host has no notification support; a nil worker means
// there is no background delivery.
func New(ctx context.Context, kv store.Store, platform Platform, worker Worker, log *zap.Logger, opts ...Option) *Center {
	c := &Center{
		permission: models.PermissionDefault,
		prefs:      models.DefaultPreferences(),
		kv:         kv,
		platform:   platform,
		worker:     worker,
		log:        log.Named("notify"),
	}
	for _, opt := range opts {
		opt(c)
	}

	// Decoding into the patch type lets fields missing from an older record
	// keep their defaults.
	var stored models.PreferencesPatch
	err := store.GetJSON(ctx, kv, store.KeyNotifications, &stored)
	switch {
	case err == nil:
		c.prefs = c.prefs.Apply(stored)
	case errors.Is(err, store.ErrNotFound):
	default:
		c.log.Warn("stored preferences unreadable, using defaults", zap.Error(err))
	}

	if platform != nil {
		perm, err := platform.Query(ctx)
		if err != nil {
			c.log.Warn("permission query failed", zap.Error(err))
		} else {
			c.permission = perm
		}
	}
	return c
}

// PermissionState returns the last known platform permission.
func (c *Center) PermissionState() models.Permission {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.permission
}

// Supported reports whether the host can show notifications at all.
func (c *Center) Supported() bool {
	return c.platform != nil
}

// RequestPermission asks the platform for permission. It returns
// ErrUnsupported when there is no platform; platform failures are logged and
// swallowed. Being granted sends one confirmation notification.
func (c *Center) RequestPermission(ctx context.Context) error {
	if c.platform == nil {
		return ErrUnsupported
	}

	perm, err := c.platform.Request(ctx)
	if err != nil {
		c.log.Error("permission request failed", zap.Error(err))
		return nil
	}

	c.mu.Lock()
	c.permission = perm
	c.mu.Unlock()

	if perm == models.PermissionGranted {
		c.SendLocalNotification("Notificações ativadas", "Você vai receber alertas sobre pedidos de ajuda.")
	}
	return nil
}

func (c *Center) Preferences() models.NotificationPreferences {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prefs.Apply(models.PreferencesPatch{})
}

// UpdatePreferences merges patch into the preferences and persists them.
func (c *Center) UpdatePreferences(ctx context.Context, patch models.PreferencesPatch) models.NotificationPreferences {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.prefs = c.prefs.Apply(patch)
	if err := store.PutJSON(ctx, c.kv, store.KeyNotifications, c.prefs); err != nil {
		c.log.Error("failed to persist preferences", zap.Error(err))
	}
	return c.prefs.Apply(models.PreferencesPatch{})
}

// SendLocalNotification shows a notification when permission is granted,
// through the worker if possible and directly otherwise. Failures are logged.
func (c *Center) SendLocalNotification(title, body string) {
	if c.PermissionState() != models.PermissionGranted {
		return
	}

	opts := Options{Body: body, Icon: defaultIcon}

	if c.worker != nil {
		err := c.worker.ShowNotification(title, opts)
		if err == nil {
			c.delivered("worker")
			return
		}
		c.log.Debug("worker delivery failed, falling back", zap.Error(err))
	}

	if c.platform == nil {
		return
	}
	if err := c.platform.Show(title, opts); err != nil {
		c.log.Warn("notification not delivered", zap.String("title", title), zap.Error(err))
		return
	}
	c.delivered("direct")
}

// NotifyRequestUpdate tells the owner of req about a new donation when they
// opted into request updates.
func (c *Center) NotifyRequestUpdate(req models.HelpRequest, amount float64) {
	if !c.Preferences().MyRequestUpdates {
		return
	}
	body := fmt.Sprintf("Seu pedido \"%s\" recebeu R$ %.2f (total R$ %.2f de R$ %.2f).", req.Title, amount, req.Raised, req.Goal)
	if req.Status == models.StatusCompleted {
		body = fmt.Sprintf("Seu pedido \"%s\" atingiu a meta de R$ %.2f!", req.Title, req.Goal)
	}
	c.SendLocalNotification("Nova doação", body)
}

// NotifyNewRequest announces a newly published request when the user wants
// nearby alerts and the request matches their categories (all when empty).
func (c *Center) NotifyNewRequest(req models.HelpRequest) {
	prefs := c.Preferences()
	if !prefs.NearbyRequests {
		return
	}
	if len(prefs.Categories) > 0 && !slices.Contains(prefs.Categories, string(req.Category)) {
		return
	}
	body := fmt.Sprintf("%s precisa de ajuda: %s", req.UserName, req.Title)
	if req.Location != "" {
		body += " (" + req.Location + ")"
	}
	c.SendLocalNotification("Novo pedido de ajuda", body)
}

func (c *Center) delivered(path string) {
	if c.onSend != nil {
		c.onSend(path)
	}
}
