package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/veritrack/veritrack-api/internal/dto"
	"github.com/veritrack/veritrack-api/internal/service"
	"github.com/veritrack/veritrack-api/internal/utils"
)

// AccountHandler manages admin account endpoints.
type AccountHandler struct {
	service   service.AdminAccountService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAccountHandler builds an account handler instance.
func NewAccountHandler(service service.AdminAccountService, validator *validator.Validate, logger zerolog.Logger) *AccountHandler {
	return &AccountHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "account_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *AccountHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.remove)
	router.Post("/assignments", h.assign)
	router.Delete("/assignments", h.unassign)
}

func (h *AccountHandler) list(c *fiber.Ctx) error {
	req := dto.AccountListRequest{
		Search:   strings.TrimSpace(c.Query("search")),
		Role:     strings.ToLower(strings.TrimSpace(c.Query("role"))),
		Status:   strings.ToLower(strings.TrimSpace(c.Query("status"))),
		Sort:     strings.TrimSpace(c.Query("sort")),
		Page:     parseQueryInt(c, "page"),
		PageSize: parseQueryInt(c, "page_size"),
	}

	accounts, err := h.service.List(c.Context(), principalFromContext(c), req)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "accounts retrieved", accounts)
}

func (h *AccountHandler) create(c *fiber.Ctx) error {
	var payload dto.AccountCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	account, err := h.service.Create(c.Context(), principalFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "account created", account)
}

func (h *AccountHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.AccountUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	account, err := h.service.Update(c.Context(), principalFromContext(c), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "account updated", account)
}

func (h *AccountHandler) remove(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.Context(), principalFromContext(c), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "account deleted", nil)
}

func (h *AccountHandler) assign(c *fiber.Ctx) error {
	var payload dto.AssignmentRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.Assign(c.Context(), principalFromContext(c), payload); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "assignment created", nil)
}

func (h *AccountHandler) unassign(c *fiber.Ctx) error {
	var payload dto.AssignmentRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.Unassign(c.Context(), principalFromContext(c), payload); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assignment removed", nil)
}

func (h *AccountHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrAccountNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "account not found")
	case errors.Is(err, service.ErrForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "operation not permitted")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
