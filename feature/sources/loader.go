package sources

import (
	"source-resolver/core/materialize"
	"source-resolver/core/resolver"
	"source-resolver/core/server"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates a new sources feature.
func NewFeature(cfg resolver.Config, srv server.Config, m *materialize.Materializer, logger *zap.Logger) *Feature {
	svc := NewService(cfg, m, logger)
	h := NewHandler(svc, srv)
	return &Feature{service: svc, handler: h}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "sources"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}

// Close releases the cached sources.
func (f *Feature) Close() error {
	return f.service.Close()
}
