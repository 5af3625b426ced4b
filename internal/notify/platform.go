package notify

import (
	"context"

	"go.uber.org/zap"

	"doacao-platform/internal/models"
)

// ServerPlatform is the in-process platform of the API server: permission is
// decided by configuration and notifications are written to the log.
type ServerPlatform struct {
	enabled bool
	log     *zap.Logger
}

func NewServerPlatform(enabled bool, log *zap.Logger) *ServerPlatform {
	return &ServerPlatform{enabled: enabled, log: log.Named("platform")}
}

func (p *ServerPlatform) Query(context.Context) (models.Permission, error) {
	return models.PermissionDefault, nil
}

func (p *ServerPlatform) Request(context.Context) (models.Permission, error) {
	if p.enabled {
		return models.PermissionGranted, nil
	}
	return models.PermissionDenied, nil
}

func (p *ServerPlatform) Show(title string, opts Options) error {
	p.log.Info("notification", zap.String("title", title), zap.String("body", opts.Body))
	return nil
}
