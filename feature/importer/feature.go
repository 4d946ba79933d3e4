package importer

import (
	"content-importer/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
	enabled bool
}

// NewFeature creates the importer feature. It is disabled when no gateway is
// available (e.g. the database connection failed at startup).
func NewFeature(gateway reconcile.Gateway, logger *zap.Logger) *Feature {
	enabled := gateway != nil

	var svc *Service
	var h *Handler
	if enabled {
		svc = NewService(reconcile.NewEngine(gateway, logger), logger)
		h = NewHandler(svc)
	}

	return &Feature{service: svc, handler: h, enabled: enabled}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "importer"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.enabled
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
