package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/veritrack/veritrack-api/internal/service"
	"github.com/veritrack/veritrack-api/internal/utils"
)

// DocumentHandler serves stored proof documents by reference.
type DocumentHandler struct {
	service service.DocumentService
	logger  zerolog.Logger
}

// NewDocumentHandler builds a document handler instance.
func NewDocumentHandler(service service.DocumentService, logger zerolog.Logger) *DocumentHandler {
	return &DocumentHandler{
		service: service,
		logger:  logger.With().Str("component", "document_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *DocumentHandler) Register(router fiber.Router) {
	router.Get("/:ref", h.fetch)
}

func (h *DocumentHandler) fetch(c *fiber.Ctx) error {
	ref := strings.TrimSpace(c.Params("ref"))
	if ref == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "document reference is required")
	}

	content, err := h.service.Fetch(c.Context(), principalFromContext(c), ref)
	if err != nil {
		if errors.Is(err, service.ErrMissingDocument) {
			return utils.SendError(c, fiber.StatusNotFound, "document missing from store")
		}
		if errors.Is(err, service.ErrForbidden) {
			return utils.SendError(c, fiber.StatusForbidden, "document outside caller scope")
		}
		h.logger.Error().Err(err).Str("ref", ref).Msg("document fetch failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	c.Set(fiber.HeaderContentType, content.ContentType)
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+content.FileName+`"`)
	return c.Send(content.Bytes)
}
