package api

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CreateListing puts caller-owned product quantity on the spot market.
func (h *LedgerHandler) CreateListing(c *fiber.Ctx) error {
	var req CreateListingRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	if err := req.Validate(); err != nil {
		return badRequest(c, err)
	}
	price, err := parsePrice(req.PricePerUnit)
	if err != nil {
		return badRequest(c, err)
	}

	lst, err := h.ledger.ListProductForSale(actorFrom(c), req.ProductID, req.Quantity, price)
	observe("create_listing", err)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(lst)
}

// BuyListing purchases quantity from an active spot listing. Settlement is
// immediate.
func (h *LedgerHandler) BuyListing(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	var req BuyListingRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	if err := req.Validate(); err != nil {
		return badRequest(c, err)
	}

	txn, err := h.ledger.BuyFromSpotMarket(actorFrom(c), id, req.Quantity)
	observe("buy_listing", err)
	if err != nil {
		h.logger.Warn("api.buy_listing.failed",
			zap.String("actor", actorFrom(c)),
			zap.Uint64("listing_id", id),
			zap.Error(err))
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(txn)
}

// RemoveListing withdraws the caller's active listing.
func (h *LedgerHandler) RemoveListing(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	err = h.ledger.RemoveSpotListing(actorFrom(c), id)
	observe("remove_listing", err)
	if err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetListing returns one spot listing by id.
func (h *LedgerHandler) GetListing(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	lst, err := h.ledger.GetListing(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(lst)
}

// ListActiveListings returns every active spot listing.
func (h *LedgerHandler) ListActiveListings(c *fiber.Ctx) error {
	return c.JSON(h.ledger.ActiveListings())
}

// GetTransaction returns one settled transaction by id.
func (h *LedgerHandler) GetTransaction(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	txn, err := h.ledger.GetTransaction(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(txn)
}

// ListTransactions returns settled transactions filtered by company or
// product.
func (h *LedgerHandler) ListTransactions(c *fiber.Ctx) error {
	if company := c.Query("company"); company != "" {
		return c.JSON(h.ledger.TransactionsByCompany(company))
	}
	if productID := c.QueryInt("product"); productID > 0 {
		return c.JSON(h.ledger.TransactionsByProduct(uint64(productID)))
	}
	return badRequest(c, fiber.NewError(fiber.StatusBadRequest, "company or product query parameter is required"))
}
