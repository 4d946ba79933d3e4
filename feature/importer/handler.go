package importer

import (
	"encoding/json"
	"errors"

	"content-importer/core/logger"
	"content-importer/core/reconcile"
	"content-importer/feature/importer/models"
	"content-importer/feature/importer/parser"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the importer.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the importer routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/import")
	group.Post("/", h.HandleImport)
}

// HandleImport runs a batch import against a collection.
// @Summary Import records
// @Description Import a CSV or JSON document into a collection, recursively upserting nested relation data. Returns the per-row failures; successfully imported rows are implied by omission.
// @Tags importer
// @Accept json
// @Produce json
// @Param request body models.ImportRequest true "Import Request"
// @Success 200 {object} models.ImportReport "Import Report"
// @Failure 400 {object} map[string]string "Bad Request (including parse failures)"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /import [post]
func (h *Handler) HandleImport(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req models.ImportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.Collection == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "collection is required",
		})
	}

	raw, err := rawDocument(req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	report, err := h.service.Import(c.Context(), raw, ImportOptions{
		Collection: req.Collection,
		Format:     req.Format,
		Actor:      reconcile.Actor{ID: req.ActorID},
	})
	if err != nil {
		l.Error("Import failed", zap.String("collection", req.Collection), zap.Error(err))
		var parseErr *parser.ParseError
		if errors.As(err, &parseErr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(report)
}

// rawDocument extracts the raw bytes to parse from the request: JSON imports
// carry the record array directly, CSV imports carry the file content as a
// JSON-encoded string.
func rawDocument(req models.ImportRequest) ([]byte, error) {
	if len(req.Data) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "data is required")
	}
	if req.Format == parser.FormatCSV {
		var content string
		if err := json.Unmarshal(req.Data, &content); err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "csv data must be a string")
		}
		return []byte(content), nil
	}
	return req.Data, nil
}
