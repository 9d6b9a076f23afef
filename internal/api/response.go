package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/chainware/supplyledger/internal/ledger"
)

// statusFromError maps ledger sentinel errors onto HTTP status codes. The
// ledger wraps every failure in exactly one sentinel, so errors.Is is enough.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, ledger.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, ledger.ErrUnauthorized):
		return fiber.StatusForbidden
	case errors.Is(err, ledger.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ledger.ErrDuplicateRegistration),
		errors.Is(err, ledger.ErrInvalidState),
		errors.Is(err, ledger.ErrNotYourTurn),
		errors.Is(err, ledger.ErrDeadlineExceeded),
		errors.Is(err, ledger.ErrNotYetExpired),
		errors.Is(err, ledger.ErrInsufficientQuantity),
		errors.Is(err, ledger.ErrInsufficientInventory):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func fail(c *fiber.Ctx, err error) error {
	return c.Status(statusFromError(err)).JSON(fiber.Map{"error": err.Error()})
}

func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
}
