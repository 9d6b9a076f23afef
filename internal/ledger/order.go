package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderOrigin distinguishes the two order-origination paths.
type OrderOrigin int

const (
	OriginRelationship OrderOrigin = iota
	OriginMarketplace
)

// String returns the string representation
func (o OrderOrigin) String() string {
	switch o {
	case OriginRelationship:
		return "Relationship"
	case OriginMarketplace:
		return "Marketplace"
	default:
		return "Unknown"
	}
}

// OrderOriginFromString converts a string to OrderOrigin.
func OrderOriginFromString(s string) (OrderOrigin, bool) {
	switch strings.ToLower(s) {
	case "relationship":
		return OriginRelationship, true
	case "marketplace":
		return OriginMarketplace, true
	default:
		return 0, false
	}
}

// OrderStatus is the order lifecycle state.
type OrderStatus int

const (
	OrderPending OrderStatus = iota
	OrderApproved
	OrderRejected
	OrderExpired
	OrderCompleted
	OrderPaymentExpired
)

// String returns the string representation
func (s OrderStatus) String() string {
	switch s {
	case OrderPending:
		return "Pending"
	case OrderApproved:
		return "Approved"
	case OrderRejected:
		return "Rejected"
	case OrderExpired:
		return "Expired"
	case OrderCompleted:
		return "Completed"
	case OrderPaymentExpired:
		return "PaymentExpired"
	default:
		return "Unknown"
	}
}

// Terminal reports whether no further transition is allowed.
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderRejected, OrderExpired, OrderCompleted, OrderPaymentExpired:
		return true
	}
	return false
}

// Order is a time-boxed purchase of product quantity, either under an
// accepted relationship or against a spot listing.
type Order struct {
	ID               uint64          `json:"id"`
	Buyer            string          `json:"buyer"`
	Seller           string          `json:"seller"`
	ProductID        uint64          `json:"productId"`
	Quantity         int64           `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unitPrice"`
	TotalPrice       decimal.Decimal `json:"totalPrice"`
	Origin           OrderOrigin     `json:"origin"`
	Status           OrderStatus     `json:"status"`
	CreatedAt        time.Time       `json:"createdAt"`
	ApprovalDeadline time.Time       `json:"approvalDeadline"`
	PaymentDeadline  time.Time       `json:"paymentDeadline"`
	Notes            string          `json:"notes,omitempty"`
	RejectReason     string          `json:"rejectReason,omitempty"`

	// Settlement outcome. SettledLotID is the product record the buyer
	// received; IsPartialTransfer is true when it is a split lot.
	IsPartialTransfer bool   `json:"isPartialTransfer"`
	SettledLotID      uint64 `json:"settledLotId,omitempty"`

	// Origin references: exactly one of these is set.
	RelationshipID uint64 `json:"relationshipId,omitempty"`
	ListingID      uint64 `json:"listingId,omitempty"`

	// Claimed payment details; the ledger records them without verifying the
	// off-chain side.
	PaymentMethod     string `json:"paymentMethod,omitempty"`
	ExternalPaymentID string `json:"externalPaymentId,omitempty"`
}

// PlaceOrderInput parameterizes the unified order placement operation.
type PlaceOrderInput struct {
	Origin         OrderOrigin
	RelationshipID uint64 // when Origin == OriginRelationship
	ListingID      uint64 // when Origin == OriginMarketplace
	Quantity       int64
	Notes          string
}

// PlaceOrder creates a Pending order. A relationship order requires an
// accepted relationship with the caller as its buyer; a marketplace order
// reserves quantity against an active listing so no second order can claim
// the same units. The approval deadline is stamped from the ledger policy.
func (l *Ledger) PlaceOrder(actor string, in PlaceOrderInput) (Order, error) {
	var events []Event
	defer func() { l.publish(events) }()
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.companies[actor]; !ok {
		return Order{}, fmt.Errorf("address %s is not a registered company: %w", actor, ErrUnauthorized)
	}
	if in.Quantity <= 0 {
		return Order{}, fmt.Errorf("order quantity must be positive: %w", ErrValidation)
	}

	now := l.clock.Now()
	o := &Order{
		ID:               uint64(len(l.orders) + 1),
		Buyer:            actor,
		Quantity:         in.Quantity,
		Origin:           in.Origin,
		Status:           OrderPending,
		CreatedAt:        now,
		ApprovalDeadline: now.Add(l.policy.ApprovalWindow),
		Notes:            in.Notes,
	}

	switch in.Origin {
	case OriginRelationship:
		r, ok := l.relationshipLocked(in.RelationshipID)
		if !ok {
			return Order{}, fmt.Errorf("relationship %d: %w", in.RelationshipID, ErrNotFound)
		}
		if r.Status != RelationshipAccepted {
			return Order{}, fmt.Errorf("relationship %d is %s, not Accepted: %w", r.ID, r.Status, ErrInvalidState)
		}
		if actor != r.Buyer {
			return Order{}, fmt.Errorf("caller %s is not the buyer of relationship %d: %w", actor, r.ID, ErrUnauthorized)
		}
		if now.After(r.EndDate) {
			return Order{}, fmt.Errorf("relationship %d ended %s: %w", r.ID, r.EndDate.Format(time.RFC3339), ErrDeadlineExceeded)
		}
		o.Seller = r.Supplier
		o.ProductID = r.ProductID
		o.UnitPrice = r.lastStep().PricePerUnit
		o.RelationshipID = r.ID

	case OriginMarketplace:
		lst, ok := l.listingLocked(in.ListingID)
		if !ok {
			return Order{}, fmt.Errorf("listing %d: %w", in.ListingID, ErrNotFound)
		}
		if !lst.IsActive {
			return Order{}, fmt.Errorf("listing %d is inactive: %w", lst.ID, ErrInvalidState)
		}
		if actor == lst.Seller {
			return Order{}, fmt.Errorf("seller cannot order from own listing: %w", ErrValidation)
		}
		if in.Quantity > lst.QuantityAvailable {
			return Order{}, fmt.Errorf("listing %d has %d units, %d requested: %w",
				lst.ID, lst.QuantityAvailable, in.Quantity, ErrInsufficientQuantity)
		}
		// Reserve the units; restored on rejection or expiry.
		lst.QuantityAvailable -= in.Quantity
		o.Seller = lst.Seller
		o.ProductID = lst.ProductID
		o.UnitPrice = lst.PricePerUnit
		o.ListingID = lst.ID

	default:
		return Order{}, fmt.Errorf("unknown order origin %d: %w", in.Origin, ErrValidation)
	}

	o.TotalPrice = o.UnitPrice.Mul(decimal.NewFromInt(o.Quantity))
	l.orders = append(l.orders, o)

	l.logger.Info("order.placed",
		zap.Uint64("order_id", o.ID),
		zap.String("buyer", o.Buyer),
		zap.String("seller", o.Seller),
		zap.String("origin", o.Origin.String()),
		zap.Int64("quantity", o.Quantity))
	events = append(events, OrderPlacedEvent{
		OrderID:          o.ID,
		Buyer:            o.Buyer,
		Seller:           o.Seller,
		ProductID:        o.ProductID,
		Quantity:         o.Quantity,
		TotalPrice:       o.TotalPrice,
		Origin:           o.Origin.String(),
		ApprovalDeadline: o.ApprovalDeadline,
	})
	return *o, nil
}

// ApproveOrder moves a pending order to Approved and stamps the payment
// deadline. Seller only. Past the approval deadline the order can only be
// cancelled, never approved.
func (l *Ledger) ApproveOrder(actor string, orderID uint64) (Order, error) {
	var events []Event
	defer func() { l.publish(events) }()
	l.mu.Lock()
	defer l.mu.Unlock()

	o, ok := l.orderLocked(orderID)
	if !ok {
		return Order{}, fmt.Errorf("order %d: %w", orderID, ErrNotFound)
	}
	if o.Status != OrderPending {
		return Order{}, fmt.Errorf("order %d is %s: %w", orderID, o.Status, ErrInvalidState)
	}
	if actor != o.Seller {
		return Order{}, fmt.Errorf("only the seller may approve order %d: %w", orderID, ErrUnauthorized)
	}
	now := l.clock.Now()
	if now.After(o.ApprovalDeadline) {
		return Order{}, fmt.Errorf("approval deadline for order %d passed: %w", orderID, ErrDeadlineExceeded)
	}

	o.Status = OrderApproved
	o.PaymentDeadline = now.Add(l.policy.PaymentWindow)

	l.logger.Info("order.approved",
		zap.Uint64("order_id", o.ID),
		zap.Time("payment_deadline", o.PaymentDeadline))
	events = append(events, OrderApprovedEvent{
		OrderID:         o.ID,
		Seller:          o.Seller,
		PaymentDeadline: o.PaymentDeadline,
	})
	return *o, nil
}

// RejectOrder rejects a pending order and releases any marketplace
// reservation. Seller only.
func (l *Ledger) RejectOrder(actor string, orderID uint64, reason string) (Order, error) {
	var events []Event
	defer func() { l.publish(events) }()
	l.mu.Lock()
	defer l.mu.Unlock()

	o, ok := l.orderLocked(orderID)
	if !ok {
		return Order{}, fmt.Errorf("order %d: %w", orderID, ErrNotFound)
	}
	if o.Status != OrderPending {
		return Order{}, fmt.Errorf("order %d is %s: %w", orderID, o.Status, ErrInvalidState)
	}
	if actor != o.Seller {
		return Order{}, fmt.Errorf("only the seller may reject order %d: %w", orderID, ErrUnauthorized)
	}

	o.Status = OrderRejected
	o.RejectReason = reason
	l.releaseReservationLocked(o)

	l.logger.Info("order.rejected",
		zap.Uint64("order_id", o.ID),
		zap.String("reason", reason))
	events = append(events, OrderRejectedEvent{OrderID: o.ID, Seller: o.Seller, Reason: reason})
	return *o, nil
}

// PayForOrder settles an approved order with on-ledger value: the product
// quantity transfers to the buyer and a transaction record is appended.
// Buyer only, before the payment deadline.
func (l *Ledger) PayForOrder(actor string, orderID uint64) (Order, error) {
	return l.settleOrder(actor, orderID, "ledger", "")
}

// CompleteOrderWithExternalPayment settles an approved order against a
// payment made outside the ledger. The method and payment id are recorded as
// claimed; the ledger does not verify them.
func (l *Ledger) CompleteOrderWithExternalPayment(actor string, orderID uint64, method, paymentID string) (Order, error) {
	if strings.TrimSpace(method) == "" {
		return Order{}, fmt.Errorf("payment method is required: %w", ErrValidation)
	}
	if strings.TrimSpace(paymentID) == "" {
		return Order{}, fmt.Errorf("payment id is required: %w", ErrValidation)
	}
	return l.settleOrder(actor, orderID, method, paymentID)
}

func (l *Ledger) settleOrder(actor string, orderID uint64, method, paymentID string) (Order, error) {
	var events []Event
	defer func() { l.publish(events) }()
	l.mu.Lock()
	defer l.mu.Unlock()

	o, ok := l.orderLocked(orderID)
	if !ok {
		return Order{}, fmt.Errorf("order %d: %w", orderID, ErrNotFound)
	}
	if o.Status != OrderApproved {
		return Order{}, fmt.Errorf("order %d is %s, not Approved: %w", orderID, o.Status, ErrInvalidState)
	}
	if actor != o.Buyer {
		return Order{}, fmt.Errorf("only the buyer may pay for order %d: %w", orderID, ErrUnauthorized)
	}
	now := l.clock.Now()
	if now.After(o.PaymentDeadline) {
		return Order{}, fmt.Errorf("payment deadline for order %d passed, cancel instead: %w", orderID, ErrDeadlineExceeded)
	}

	// The transfer validates seller ownership and remaining quantity before
	// any write, so a failure here leaves the order untouched.
	lotID, partial, err := l.transferLocked(o.Seller, o.Buyer, o.ProductID, o.Quantity, now)
	if err != nil {
		return Order{}, fmt.Errorf("settling order %d: %w", orderID, err)
	}

	o.Status = OrderCompleted
	o.SettledLotID = lotID
	o.IsPartialTransfer = partial
	o.PaymentMethod = method
	o.ExternalPaymentID = paymentID

	if o.Origin == OriginMarketplace {
		if lst, ok := l.listingLocked(o.ListingID); ok && lst.IsActive && lst.QuantityAvailable == 0 {
			lst.IsActive = false
		}
	}

	txn := l.appendTransactionLocked(o.Buyer, o.Seller, o.ProductID, o.Quantity, o.TotalPrice, TransactionOrder, now)

	l.logger.Info("order.completed",
		zap.Uint64("order_id", o.ID),
		zap.Uint64("lot_id", lotID),
		zap.String("payment_method", method))
	events = append(events,
		ProductTransferredEvent{
			ProductID: o.ProductID,
			LotID:     lotID,
			From:      o.Seller,
			To:        o.Buyer,
			Quantity:  o.Quantity,
			Partial:   partial,
		},
		txn.createdEvent(),
		OrderCompletedEvent{
			OrderID:           o.ID,
			Buyer:             o.Buyer,
			Seller:            o.Seller,
			ProductID:         o.ProductID,
			LotID:             lotID,
			Quantity:          o.Quantity,
			TotalPrice:        o.TotalPrice,
			PaymentMethod:     method,
			ExternalPaymentID: paymentID,
		},
	)
	return *o, nil
}

// CancelExpiredOrder expires an order past its current deadline and releases
// any marketplace reservation. Callable by anyone; a second call on the same
// order fails with ErrInvalidState, so inventory is never restored twice.
func (l *Ledger) CancelExpiredOrder(actor string, orderID uint64) (Order, error) {
	var events []Event
	defer func() { l.publish(events) }()
	l.mu.Lock()
	defer l.mu.Unlock()

	o, ok := l.orderLocked(orderID)
	if !ok {
		return Order{}, fmt.Errorf("order %d: %w", orderID, ErrNotFound)
	}
	now := l.clock.Now()

	switch o.Status {
	case OrderPending:
		if !now.After(o.ApprovalDeadline) {
			return Order{}, fmt.Errorf("order %d approval deadline not reached: %w", orderID, ErrNotYetExpired)
		}
		o.Status = OrderExpired
	case OrderApproved:
		if !now.After(o.PaymentDeadline) {
			return Order{}, fmt.Errorf("order %d payment deadline not reached: %w", orderID, ErrNotYetExpired)
		}
		o.Status = OrderPaymentExpired
	default:
		return Order{}, fmt.Errorf("order %d is %s: %w", orderID, o.Status, ErrInvalidState)
	}

	l.releaseReservationLocked(o)

	l.logger.Info("order.expired",
		zap.Uint64("order_id", o.ID),
		zap.String("status", o.Status.String()),
		zap.String("cancelled_by", actor))
	events = append(events, OrderExpiredEvent{OrderID: o.ID, Status: o.Status.String()})
	return *o, nil
}

// GetOrder returns a copy of the order.
func (l *Ledger) GetOrder(id uint64) (Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	o, ok := l.orderLocked(id)
	if !ok {
		return Order{}, fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	return *o, nil
}

// OrdersByParty returns all orders where the address is buyer or seller.
func (l *Ledger) OrdersByParty(addr string) []Order {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Order
	for _, o := range l.orders {
		if o.Buyer == addr || o.Seller == addr {
			out = append(out, *o)
		}
	}
	return out
}

// ExpiredOrderCandidates returns ids of orders currently past their deadline
// and still cancellable. Used by the expiry sweeper.
func (l *Ledger) ExpiredOrderCandidates() []uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.clock.Now()
	var out []uint64
	for _, o := range l.orders {
		switch o.Status {
		case OrderPending:
			if now.After(o.ApprovalDeadline) {
				out = append(out, o.ID)
			}
		case OrderApproved:
			if now.After(o.PaymentDeadline) {
				out = append(out, o.ID)
			}
		}
	}
	return out
}

// releaseReservationLocked returns a marketplace order's reserved units to
// its listing. Relationship orders hold no reservation.
func (l *Ledger) releaseReservationLocked(o *Order) {
	if o.Origin != OriginMarketplace {
		return
	}
	if lst, ok := l.listingLocked(o.ListingID); ok {
		lst.QuantityAvailable += o.Quantity
	}
}
