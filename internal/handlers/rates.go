package handlers

import (
	"errors"
	"log/slog"
	"strings"

	"ratesvc/internal/domain/fees"
	"ratesvc/internal/services/rates"
	"ratesvc/internal/utils"
	"ratesvc/internal/utils/validation"

	"github.com/gofiber/fiber/v2"
)

type RatesHandler struct {
	ratesService rates.Service
	log          *slog.Logger
}

func NewRatesHandler(ratesService rates.Service, log *slog.Logger) *RatesHandler {
	if log == nil {
		log = slog.Default()
	}
	return &RatesHandler{
		ratesService: ratesService,
		log:          log,
	}
}

// statusFor maps an error kind to the HTTP status returned for it.
var statusFor = map[string]int{
	"validation":   fiber.StatusBadRequest,
	"temporal":     fiber.StatusConflict,
	"arithmetic":   fiber.StatusUnprocessableEntity,
	"unauthorized": fiber.StatusForbidden,
	"not_found":    fiber.StatusNotFound,
	"conflict":     fiber.StatusConflict,
}

func (h *RatesHandler) respondError(c *fiber.Ctx, err error) error {
	kind := rates.ErrorKind(err)
	status, ok := statusFor[kind]
	if !ok {
		h.log.Error("rates request failed", "path", c.Path(), "error", err)
		return utils.InternalError(c, "internal error")
	}
	return utils.Error(c, status, kind, err.Error())
}

// sender returns the ledger address of the authenticated caller.
func sender(c *fiber.Ctx) (string, error) {
	claims, err := utils.GetRateClaims(c)
	if err != nil {
		return "", err
	}
	if claims.Address == "" {
		return "", errors.New("claims carry no address")
	}
	return claims.Address, nil
}

// GetPayments returns the configured rate list.
func (h *RatesHandler) GetPayments(c *fiber.Ctx) error {
	res, err := h.ratesService.Payments(c.Context())
	if err != nil {
		return h.respondError(c, err)
	}
	return utils.Success(c, res)
}

// DeductedFunds quotes how a payment would be split. Nothing is persisted.
func (h *RatesHandler) DeductedFunds(c *fiber.Ctx) error {
	var funds fees.Funds
	if err := c.BodyParser(&funds); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}

	res, err := h.ratesService.DeductedFunds(c.Context(), funds)
	if err != nil {
		return h.respondError(c, err)
	}
	return utils.Success(c, res)
}

func (h *RatesHandler) Instantiate(c *fiber.Ctx) error {
	from, err := sender(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input rates.InstantiateRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}
	if strings.TrimSpace(input.Owner) == "" {
		input.Owner = from
	}

	v := validation.New()
	v.CheckAddress(input.Owner, "owner")
	for _, op := range input.Operators {
		v.CheckAddress(op, "operators")
	}
	if err := v.Err(); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	res, err := h.ratesService.Instantiate(c.Context(), input)
	if err != nil {
		return h.respondError(c, err)
	}
	return utils.Created(c, res)
}

func (h *RatesHandler) UpdateRates(c *fiber.Ctx) error {
	from, err := sender(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		Rates []fees.RateEntry `json:"rates"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}

	res, err := h.ratesService.UpdateRates(c.Context(), from, input.Rates)
	if err != nil {
		return h.respondError(c, err)
	}
	return utils.Success(c, res)
}

func (h *RatesHandler) UpdateSaleTimestamp(c *fiber.Ctx) error {
	from, err := sender(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		LastTimestamp *uint64 `json:"last_timestamp"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}
	if input.LastTimestamp == nil {
		return utils.BadRequest(c, "last_timestamp is required")
	}

	res, err := h.ratesService.UpdateSaleTimestamp(c.Context(), from, *input.LastTimestamp)
	if err != nil {
		return h.respondError(c, err)
	}
	return utils.Success(c, res)
}

// Execute applies an instruction returned by DeductedFunds.
func (h *RatesHandler) Execute(c *fiber.Ctx) error {
	from, err := sender(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var msg fees.Instruction
	if err := c.BodyParser(&msg); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}

	res, err := h.ratesService.Execute(c.Context(), from, msg)
	if err != nil {
		return h.respondError(c, err)
	}
	return utils.Success(c, res)
}
