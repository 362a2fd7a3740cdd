package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/veritrack/veritrack-api/internal/models"
	"github.com/veritrack/veritrack-api/internal/service"
	"github.com/veritrack/veritrack-api/internal/utils"
)

// ExportHandler exposes the aggregated approved-record queries.
type ExportHandler struct {
	service service.ExportService
	logger  zerolog.Logger
}

// NewExportHandler builds an export handler instance.
func NewExportHandler(service service.ExportService, logger zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		service: service,
		logger:  logger.With().Str("component", "export_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *ExportHandler) Register(router fiber.Router) {
	router.Get("/summary", h.summary)
	router.Get("/rows", h.rows)
}

func (h *ExportHandler) summary(c *fiber.Ctx) error {
	summary, err := h.service.Summary(c.Context(), principalFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "export summary retrieved", summary)
}

func (h *ExportHandler) rows(c *fiber.Ctx) error {
	var category *models.Category
	if raw := strings.ToLower(strings.TrimSpace(c.Query("category"))); raw != "" {
		value := models.Category(raw)
		category = &value
	}

	rows, err := h.service.Rows(c.Context(), principalFromContext(c), category)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "export rows retrieved", rows)
}

func (h *ExportHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "operation not permitted")
	case errors.Is(err, service.ErrCategoryUnknown):
		return utils.SendError(c, fiber.StatusBadRequest, "unknown category")
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
