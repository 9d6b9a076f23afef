package api

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/chainware/supplyledger/internal/ledger"
)

// RequestRelationship opens a supply negotiation between two companies.
func (h *LedgerHandler) RequestRelationship(c *fiber.Ctx) error {
	var req RequestRelationshipRequest
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
	start, err := parseDate("startDate", req.StartDate)
	if err != nil {
		return badRequest(c, err)
	}
	end, err := parseDate("endDate", req.EndDate)
	if err != nil {
		return badRequest(c, err)
	}

	rel, err := h.ledger.RequestRelationship(actorFrom(c), req.Supplier, req.Buyer, req.ProductID, price, start, end)
	observe("request_relationship", err)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(rel)
}

// NegotiateRelationship posts a counter-offer on an open negotiation.
func (h *LedgerHandler) NegotiateRelationship(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	var req NegotiateRelationshipRequest
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
	end, err := parseDate("endDate", req.EndDate)
	if err != nil {
		return badRequest(c, err)
	}

	rel, err := h.ledger.NegotiateRelationship(actorFrom(c), id, price, end)
	observe("negotiate_relationship", err)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(rel)
}

// AcceptRelationship accepts the counterparty's last offer.
func (h *LedgerHandler) AcceptRelationship(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	rel, err := h.ledger.AcceptRelationship(actorFrom(c), id)
	observe("accept_relationship", err)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(rel)
}

// RejectRelationship terminates a negotiation.
func (h *LedgerHandler) RejectRelationship(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	rel, err := h.ledger.RejectRelationship(actorFrom(c), id)
	observe("reject_relationship", err)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(rel)
}

// GetRelationship returns one relationship by id.
func (h *LedgerHandler) GetRelationship(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	rel, err := h.ledger.GetRelationship(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(rel)
}

// ListRelationships returns relationships where the given address is a party.
func (h *LedgerHandler) ListRelationships(c *fiber.Ctx) error {
	party := c.Query("party")
	if party == "" {
		party = actorFrom(c)
	}
	return c.JSON(h.ledger.RelationshipsByParty(party))
}

// PlaceOrder creates an order against a relationship or a spot listing.
func (h *LedgerHandler) PlaceOrder(c *fiber.Ctx) error {
	var req PlaceOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	if err := req.Validate(); err != nil {
		return badRequest(c, err)
	}
	origin, ok := ledger.OrderOriginFromString(req.Origin)
	if !ok {
		return badRequest(c, fiber.NewError(fiber.StatusBadRequest,
			"origin must be 'relationship' or 'marketplace'"))
	}

	o, err := h.ledger.PlaceOrder(actorFrom(c), ledger.PlaceOrderInput{
		Origin:         origin,
		RelationshipID: req.RelationshipID,
		ListingID:      req.ListingID,
		Quantity:       req.Quantity,
		Notes:          req.Notes,
	})
	observe("place_order", err)
	if err != nil {
		h.logger.Warn("api.place_order.failed",
			zap.String("actor", actorFrom(c)), zap.Error(err))
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(o)
}

// ApproveOrder approves a pending order as its seller.
func (h *LedgerHandler) ApproveOrder(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	o, err := h.ledger.ApproveOrder(actorFrom(c), id)
	observe("approve_order", err)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(o)
}

// RejectOrder declines a pending order as its seller.
func (h *LedgerHandler) RejectOrder(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	var req RejectOrderRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return badRequest(c, err)
	}
	o, err := h.ledger.RejectOrder(actorFrom(c), id, req.Reason)
	observe("reject_order", err)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(o)
}

// PayForOrder settles an approved order with ledger-tracked payment.
func (h *LedgerHandler) PayForOrder(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	o, err := h.ledger.PayForOrder(actorFrom(c), id)
	observe("pay_order", err)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(o)
}

// CompleteOrderExternal settles an approved order paid outside the ledger.
func (h *LedgerHandler) CompleteOrderExternal(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	var req ExternalPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	if err := req.Validate(); err != nil {
		return badRequest(c, err)
	}
	o, err := h.ledger.CompleteOrderWithExternalPayment(actorFrom(c), id, req.Method, req.PaymentID)
	observe("complete_order_external", err)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(o)
}

// CancelExpiredOrder expires an order whose deadline has passed. Anyone may
// call it.
func (h *LedgerHandler) CancelExpiredOrder(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	o, err := h.ledger.CancelExpiredOrder(actorFrom(c), id)
	observe("cancel_expired_order", err)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(o)
}

// GetOrder returns one order by id.
func (h *LedgerHandler) GetOrder(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	o, err := h.ledger.GetOrder(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(o)
}

// ListOrders returns orders where the given address is buyer or seller.
func (h *LedgerHandler) ListOrders(c *fiber.Ctx) error {
	party := c.Query("party")
	if party == "" {
		party = actorFrom(c)
	}
	return c.JSON(h.ledger.OrdersByParty(party))
}

// AddDeliveryEvent appends a delivery status update to an order's trail.
func (h *LedgerHandler) AddDeliveryEvent(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	var req DeliveryEventRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	if err := req.Validate(); err != nil {
		return badRequest(c, err)
	}
	ev, err := h.ledger.AddDeliveryEvent(actorFrom(c), id, req.Status, req.Description)
	observe("add_delivery_event", err)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ev)
}

// ListDeliveryEvents returns an order's delivery trail.
func (h *LedgerHandler) ListDeliveryEvents(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	trail, err := h.ledger.DeliveryEvents(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(trail)
}
