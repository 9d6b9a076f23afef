package api

// RegisterCompanyRequest is the payload to register the calling address.
type RegisterCompanyRequest struct {
	Name string `json:"name" example:"Acme Mills"`
}

// UpdateCompanyRequest changes the caller's registered name and/or address.
type UpdateCompanyRequest struct {
	Name       string `json:"name"`
	NewAddress string `json:"newAddress,omitempty"`
}

// CreateProductRequest creates a raw product lot owned by the caller.
type CreateProductRequest struct {
	Name         string `json:"name" example:"Organic Flour"`
	Description  string `json:"description,omitempty"`
	ImageHash    string `json:"imageHash,omitempty"`
	Quantity     int64  `json:"quantity" example:"1000"`
	PricePerUnit string `json:"pricePerUnit" example:"2.50"`
}

// ManufactureProductRequest consumes ingredients into a new product.
type ManufactureProductRequest struct {
	Name             string   `json:"name"`
	Description      string   `json:"description,omitempty"`
	ImageHash        string   `json:"imageHash,omitempty"`
	Quantity         int64    `json:"quantity"`
	PricePerUnit     string   `json:"pricePerUnit"`
	IngredientIDs    []uint64 `json:"ingredientIds"`
	QuantitiesNeeded []int64  `json:"quantitiesNeeded"`
}

// TransferProductRequest moves quantity to another registered company.
type TransferProductRequest struct {
	NewOwner string `json:"newOwner"`
	Quantity int64  `json:"quantity"`
}

// RequestRelationshipRequest opens a supply negotiation.
type RequestRelationshipRequest struct {
	Supplier     string `json:"supplier"`
	Buyer        string `json:"buyer"`
	ProductID    uint64 `json:"productId"`
	PricePerUnit string `json:"pricePerUnit"`
	StartDate    string `json:"startDate" example:"2026-03-01T00:00:00Z"`
	EndDate      string `json:"endDate" example:"2026-09-01T00:00:00Z"`
}

// NegotiateRelationshipRequest counter-offers on an open negotiation.
type NegotiateRelationshipRequest struct {
	PricePerUnit string `json:"pricePerUnit"`
	EndDate      string `json:"endDate"`
}

// PlaceOrderRequest creates an order against a relationship or a listing.
type PlaceOrderRequest struct {
	Origin         string `json:"origin" example:"relationship"`
	RelationshipID uint64 `json:"relationshipId,omitempty"`
	ListingID      uint64 `json:"listingId,omitempty"`
	Quantity       int64  `json:"quantity"`
	Notes          string `json:"notes,omitempty"`
}

// RejectOrderRequest declines a pending order.
type RejectOrderRequest struct {
	Reason string `json:"reason,omitempty"`
}

// ExternalPaymentRequest settles an approved order paid outside the ledger.
type ExternalPaymentRequest struct {
	Method    string `json:"method" example:"wire"`
	PaymentID string `json:"paymentId"`
}

// CreateListingRequest puts caller-owned quantity on the spot market.
type CreateListingRequest struct {
	ProductID    uint64 `json:"productId"`
	Quantity     int64  `json:"quantity"`
	PricePerUnit string `json:"pricePerUnit"`
}

// BuyListingRequest purchases from an active spot listing.
type BuyListingRequest struct {
	Quantity int64 `json:"quantity"`
}

// DeliveryEventRequest appends a delivery status update to an order.
type DeliveryEventRequest struct {
	Status      string `json:"status" example:"in_transit"`
	Description string `json:"description,omitempty"`
}
