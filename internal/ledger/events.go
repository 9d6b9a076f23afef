package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event is a domain event emitted after an operation commits. Events are
// derivable from the operation's inputs and the pre/post state; they are not
// ledger state themselves.
type Event interface {
	EventType() string
}

type CompanyRegisteredEvent struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

func (CompanyRegisteredEvent) EventType() string { return "company.registered" }

type CompanyUpdatedEvent struct {
	Address     string `json:"address"`
	PrevAddress string `json:"prevAddress"`
	Name        string `json:"name"`
}

func (CompanyUpdatedEvent) EventType() string { return "company.updated" }

type ProductCreatedEvent struct {
	ProductID    uint64          `json:"productId"`
	Name         string          `json:"name"`
	Owner        string          `json:"owner"`
	Quantity     int64           `json:"quantity"`
	PricePerUnit decimal.Decimal `json:"pricePerUnit"`
}

func (ProductCreatedEvent) EventType() string { return "product.created" }

type ProductManufacturedEvent struct {
	ProductID     uint64   `json:"productId"`
	Name          string   `json:"name"`
	Owner         string   `json:"owner"`
	Quantity      int64    `json:"quantity"`
	IngredientIDs []uint64 `json:"ingredientIds"`
}

func (ProductManufacturedEvent) EventType() string { return "product.manufactured" }

// InventoryConsumedEvent is emitted once per ingredient consumed during
// manufacturing.
type InventoryConsumedEvent struct {
	ProductID    uint64 `json:"productId"`
	ConsumedByID uint64 `json:"consumedById"`
	Quantity     int64  `json:"quantity"`
	Owner        string `json:"owner"`
}

func (InventoryConsumedEvent) EventType() string { return "inventory.consumed" }

type ProductTransferredEvent struct {
	ProductID uint64 `json:"productId"`
	// LotID is the record the transferred quantity ended up in. Equal to
	// ProductID for a full transfer, a fresh id for a split lot.
	LotID    uint64 `json:"lotId"`
	From     string `json:"from"`
	To       string `json:"to"`
	Quantity int64  `json:"quantity"`
	Partial  bool   `json:"partial"`
}

func (ProductTransferredEvent) EventType() string { return "product.transferred" }

type RelationshipRequestedEvent struct {
	RelationshipID uint64          `json:"relationshipId"`
	Supplier       string          `json:"supplier"`
	Buyer          string          `json:"buyer"`
	ProductID      uint64          `json:"productId"`
	PricePerUnit   decimal.Decimal `json:"pricePerUnit"`
	RequestFrom    string          `json:"requestFrom"`
}

func (RelationshipRequestedEvent) EventType() string { return "relationship.requested" }

type RelationshipNegotiatedEvent struct {
	RelationshipID uint64          `json:"relationshipId"`
	Step           int             `json:"step"`
	PricePerUnit   decimal.Decimal `json:"pricePerUnit"`
	RequestFrom    string          `json:"requestFrom"`
}

func (RelationshipNegotiatedEvent) EventType() string { return "relationship.negotiated" }

type RelationshipAcceptedEvent struct {
	RelationshipID uint64          `json:"relationshipId"`
	AcceptedBy     string          `json:"acceptedBy"`
	PricePerUnit   decimal.Decimal `json:"pricePerUnit"`
}

func (RelationshipAcceptedEvent) EventType() string { return "relationship.accepted" }

type RelationshipRejectedEvent struct {
	RelationshipID uint64 `json:"relationshipId"`
	RejectedBy     string `json:"rejectedBy"`
}

func (RelationshipRejectedEvent) EventType() string { return "relationship.rejected" }

type OrderPlacedEvent struct {
	OrderID          uint64          `json:"orderId"`
	Buyer            string          `json:"buyer"`
	Seller           string          `json:"seller"`
	ProductID        uint64          `json:"productId"`
	Quantity         int64           `json:"quantity"`
	TotalPrice       decimal.Decimal `json:"totalPrice"`
	Origin           string          `json:"origin"`
	ApprovalDeadline time.Time       `json:"approvalDeadline"`
}

func (OrderPlacedEvent) EventType() string { return "order.placed" }

type OrderApprovedEvent struct {
	OrderID         uint64    `json:"orderId"`
	Seller          string    `json:"seller"`
	PaymentDeadline time.Time `json:"paymentDeadline"`
}

func (OrderApprovedEvent) EventType() string { return "order.approved" }

type OrderRejectedEvent struct {
	OrderID uint64 `json:"orderId"`
	Seller  string `json:"seller"`
	Reason  string `json:"reason"`
}

func (OrderRejectedEvent) EventType() string { return "order.rejected" }

type OrderCompletedEvent struct {
	OrderID           uint64          `json:"orderId"`
	Buyer             string          `json:"buyer"`
	Seller            string          `json:"seller"`
	ProductID         uint64          `json:"productId"`
	LotID             uint64          `json:"lotId"`
	Quantity          int64           `json:"quantity"`
	TotalPrice        decimal.Decimal `json:"totalPrice"`
	PaymentMethod     string          `json:"paymentMethod"`
	ExternalPaymentID string          `json:"externalPaymentId,omitempty"`
}

func (OrderCompletedEvent) EventType() string { return "order.completed" }

// OrderExpiredEvent covers both expiry paths; Status is "Expired" for an
// unapproved order and "PaymentExpired" for an unpaid one.
type OrderExpiredEvent struct {
	OrderID uint64 `json:"orderId"`
	Status  string `json:"status"`
}

func (OrderExpiredEvent) EventType() string { return "order.expired" }

type SpotListingCreatedEvent struct {
	ListingID    uint64          `json:"listingId"`
	ProductID    uint64          `json:"productId"`
	Seller       string          `json:"seller"`
	Quantity     int64           `json:"quantity"`
	PricePerUnit decimal.Decimal `json:"pricePerUnit"`
}

func (SpotListingCreatedEvent) EventType() string { return "spot.listing_created" }

type SpotListingRemovedEvent struct {
	ListingID uint64 `json:"listingId"`
	Seller    string `json:"seller"`
}

func (SpotListingRemovedEvent) EventType() string { return "spot.listing_removed" }

type SpotPurchaseEvent struct {
	ListingID  uint64          `json:"listingId"`
	ProductID  uint64          `json:"productId"`
	LotID      uint64          `json:"lotId"`
	Buyer      string          `json:"buyer"`
	Seller     string          `json:"seller"`
	Quantity   int64           `json:"quantity"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

func (SpotPurchaseEvent) EventType() string { return "spot.purchase" }

type TransactionCreatedEvent struct {
	TransactionID uint64          `json:"transactionId"`
	Buyer         string          `json:"buyer"`
	Seller        string          `json:"seller"`
	ProductID     uint64          `json:"productId"`
	Quantity      int64           `json:"quantity"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	Type          string          `json:"type"`
}

func (TransactionCreatedEvent) EventType() string { return "transaction.created" }

type DeliveryEventAddedEvent struct {
	OrderID     uint64    `json:"orderId"`
	Status      string    `json:"status"`
	Description string    `json:"description,omitempty"`
	UpdatedBy   string    `json:"updatedBy"`
	Timestamp   time.Time `json:"timestamp"`
}

func (DeliveryEventAddedEvent) EventType() string { return "delivery.event_added" }
