package handler

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/veritrack/veritrack-api/internal/dto"
	"github.com/veritrack/veritrack-api/internal/models"
	"github.com/veritrack/veritrack-api/internal/service"
	"github.com/veritrack/veritrack-api/internal/utils"
)

// RecordHandler manages activity record endpoints.
type RecordHandler struct {
	service   service.RecordService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewRecordHandler builds a record handler instance.
func NewRecordHandler(service service.RecordService, validator *validator.Validate, logger zerolog.Logger) *RecordHandler {
	return &RecordHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "record_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *RecordHandler) Register(router fiber.Router) {
	router.Get("", h.listOwned)
	router.Get("/review", h.listForReview)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Patch("/:id", h.update)
}

func (h *RecordHandler) listOwned(c *fiber.Ctx) error {
	query, err := h.parseListQuery(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	listing, err := h.service.ListOwned(c.Context(), principalFromContext(c), query)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "records retrieved", listing)
}

func (h *RecordHandler) listForReview(c *fiber.Ctx) error {
	query, err := h.parseListQuery(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	listing, err := h.service.ListForReview(c.Context(), principalFromContext(c), query)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "review queue retrieved", listing)
}

func (h *RecordHandler) create(c *fiber.Ctx) error {
	category := strings.TrimSpace(c.FormValue("category"))
	if category == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "category is required")
	}

	fieldsRaw := c.FormValue("fields")
	if strings.TrimSpace(fieldsRaw) == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "fields payload is required")
	}

	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(fieldsRaw), &fields); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "fields payload must be a JSON object")
	}

	payload := dto.RecordCreateRequest{
		Category: models.Category(strings.ToLower(category)),
		Fields:   fields,
	}
	if err := h.validator.Struct(payload); err != nil {
		return h.handleError(c, err)
	}

	var document *multipart.FileHeader
	if file, err := c.FormFile("document"); err == nil {
		document = file
	}

	record, err := h.service.Submit(c.Context(), principalFromContext(c), payload, document)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "record submitted", record)
}

func (h *RecordHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	record, err := h.service.Get(c.Context(), principalFromContext(c), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "record retrieved", record)
}

func (h *RecordHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	// Multipart lets the owner replace the proof document alongside the
	// fields; a plain JSON body edits fields only.
	var payload dto.RecordUpdateRequest
	var document *multipart.FileHeader
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		fieldsRaw := c.FormValue("fields")
		if strings.TrimSpace(fieldsRaw) == "" {
			return utils.SendError(c, fiber.StatusBadRequest, "fields payload is required")
		}
		if err := json.Unmarshal([]byte(fieldsRaw), &payload.Fields); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "fields payload must be a JSON object")
		}
		if file, err := c.FormFile("document"); err == nil {
			document = file
		}
	} else if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return h.handleError(c, err)
	}

	record, err := h.service.UpdateFields(c.Context(), principalFromContext(c), id, payload, document)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "record updated", record)
}

func (h *RecordHandler) parseListQuery(c *fiber.Ctx) (dto.RecordListQuery, error) {
	query := dto.RecordListQuery{
		Category:      models.Category(strings.ToLower(strings.TrimSpace(c.Query("category")))),
		SortField:     strings.TrimSpace(c.Query("sort")),
		SortDirection: strings.ToLower(strings.TrimSpace(c.Query("direction"))),
		Page:          parseQueryInt(c, "page"),
		PageSize:      parseQueryInt(c, "page_size"),
	}
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		query.Status = &status
	}
	if err := h.validator.Struct(query); err != nil {
		return dto.RecordListQuery{}, err
	}
	return query, nil
}

func (h *RecordHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrRecordNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "record not found")
	case errors.Is(err, service.ErrForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "operation not permitted")
	case errors.Is(err, service.ErrRecordNotEditable):
		return utils.SendError(c, fiber.StatusConflict, "record is no longer editable")
	case errors.Is(err, service.ErrCategoryUnknown):
		return utils.SendError(c, fiber.StatusBadRequest, "unknown category")
	case errors.Is(err, service.ErrDocumentTooLarge):
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge, "document exceeds maximum allowed size")
	case errors.Is(err, service.ErrDocumentTypeNotAllowed):
		return utils.SendError(c, fiber.StatusUnsupportedMediaType, "document type not allowed")
	case isFieldValidationError(err), isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
