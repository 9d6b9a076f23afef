package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─── RegisterCompanyRequest.Validate ──────────────────────────────────────────

func TestRegisterCompanyRequest_Validate_Valid(t *testing.T) {
	req := RegisterCompanyRequest{Name: "Acme Mills"}
	assert.NoError(t, req.Validate())
}

func TestRegisterCompanyRequest_Validate_MissingName(t *testing.T) {
	req := RegisterCompanyRequest{Name: "   "}
	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
}

// ─── CreateProductRequest.Validate ────────────────────────────────────────────

func TestCreateProductRequest_Validate_Valid(t *testing.T) {
	req := CreateProductRequest{
		Name:         "Organic Flour",
		Quantity:     1000,
		PricePerUnit: "2.50",
	}
	assert.NoError(t, req.Validate())
}

func TestCreateProductRequest_Validate_MissingName(t *testing.T) {
	req := CreateProductRequest{Quantity: 1000, PricePerUnit: "2.50"}
	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
}

func TestCreateProductRequest_Validate_NegativeQuantity(t *testing.T) {
	req := CreateProductRequest{Name: "Flour", Quantity: -5, PricePerUnit: "2.50"}
	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quantity must not be negative")
}

func TestCreateProductRequest_Validate_BadPrice(t *testing.T) {
	req := CreateProductRequest{Name: "Flour", Quantity: 10, PricePerUnit: "two-fifty"}
	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a valid decimal")
}

func TestCreateProductRequest_Validate_NegativePrice(t *testing.T) {
	req := CreateProductRequest{Name: "Flour", Quantity: 10, PricePerUnit: "-1.00"}
	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be negative")
}

// ─── ManufactureProductRequest.Validate ───────────────────────────────────────

func TestManufactureProductRequest_Validate_Valid(t *testing.T) {
	req := ManufactureProductRequest{
		Name:             "Bread",
		Quantity:         50,
		PricePerUnit:     "4.00",
		IngredientIDs:    []uint64{1, 2},
		QuantitiesNeeded: []int64{40, 10},
	}
	assert.NoError(t, req.Validate())
}

func TestManufactureProductRequest_Validate_NoIngredients(t *testing.T) {
	req := ManufactureProductRequest{Name: "Bread", Quantity: 50, PricePerUnit: "4.00"}
	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingredientIds is required")
}

func TestManufactureProductRequest_Validate_LengthMismatch(t *testing.T) {
	req := ManufactureProductRequest{
		Name:             "Bread",
		Quantity:         50,
		PricePerUnit:     "4.00",
		IngredientIDs:    []uint64{1, 2},
		QuantitiesNeeded: []int64{40},
	}
	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "same length")
}

// ─── TransferProductRequest.Validate ──────────────────────────────────────────

func TestTransferProductRequest_Validate_Valid(t *testing.T) {
	req := TransferProductRequest{NewOwner: "0xbakery", Quantity: 20}
	assert.NoError(t, req.Validate())
}

func TestTransferProductRequest_Validate_MissingOwner(t *testing.T) {
	req := TransferProductRequest{Quantity: 20}
	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "newOwner is required")
}

func TestTransferProductRequest_Validate_ZeroQuantity(t *testing.T) {
	req := TransferProductRequest{NewOwner: "0xbakery", Quantity: 0}
	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quantity must be greater than 0")
}

// ─── RequestRelationshipRequest.Validate ──────────────────────────────────────

func TestRequestRelationshipRequest_Validate_Valid(t *testing.T) {
	req := RequestRelationshipRequest{
		Supplier:     "0xmill",
		Buyer:        "0xbakery",
		ProductID:    1,
		PricePerUnit: "2.25",
		StartDate:    "2026-03-01T00:00:00Z",
		EndDate:      "2026-09-01T00:00:00Z",
	}
	assert.NoError(t, req.Validate())
}

func TestRequestRelationshipRequest_Validate_MissingSupplier(t *testing.T) {
	req := RequestRelationshipRequest{
		Buyer:        "0xbakery",
		ProductID:    1,
		PricePerUnit: "2.25",
		StartDate:    "2026-03-01T00:00:00Z",
		EndDate:      "2026-09-01T00:00:00Z",
	}
	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "supplier is required")
}

func TestRequestRelationshipRequest_Validate_BadDate(t *testing.T) {
	req := RequestRelationshipRequest{
		Supplier:     "0xmill",
		Buyer:        "0xbakery",
		ProductID:    1,
		PricePerUnit: "2.25",
		StartDate:    "03/01/2026",
		EndDate:      "2026-09-01T00:00:00Z",
	}
	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "startDate must be RFC3339")
}

func TestRequestRelationshipRequest_Validate_MissingEndDate(t *testing.T) {
	req := RequestRelationshipRequest{
		Supplier:     "0xmill",
		Buyer:        "0xbakery",
		ProductID:    1,
		PricePerUnit: "2.25",
		StartDate:    "2026-03-01T00:00:00Z",
	}
	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "endDate is required")
}

// ─── PlaceOrderRequest.Validate ───────────────────────────────────────────────

func TestPlaceOrderRequest_Validate_Relationship(t *testing.T) {
	req := PlaceOrderRequest{Origin: "relationship", RelationshipID: 3, Quantity: 10}
	assert.NoError(t, req.Validate())
}

func TestPlaceOrderRequest_Validate_Marketplace(t *testing.T) {
	req := PlaceOrderRequest{Origin: "Marketplace", ListingID: 2, Quantity: 10}
	assert.NoError(t, req.Validate())
}

func TestPlaceOrderRequest_Validate_RelationshipWithoutID(t *testing.T) {
	req := PlaceOrderRequest{Origin: "relationship", Quantity: 10}
	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relationshipId is required")
}

func TestPlaceOrderRequest_Validate_MarketplaceWithoutID(t *testing.T) {
	req := PlaceOrderRequest{Origin: "marketplace", Quantity: 10}
	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listingId is required")
}

func TestPlaceOrderRequest_Validate_UnknownOrigin(t *testing.T) {
	req := PlaceOrderRequest{Origin: "auction", RelationshipID: 3, Quantity: 10}
	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "origin must be")
}

func TestPlaceOrderRequest_Validate_ZeroQuantity(t *testing.T) {
	req := PlaceOrderRequest{Origin: "relationship", RelationshipID: 3}
	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quantity must be greater than 0")
}

// ─── ExternalPaymentRequest.Validate ──────────────────────────────────────────

func TestExternalPaymentRequest_Validate_Valid(t *testing.T) {
	req := ExternalPaymentRequest{Method: "wire", PaymentID: "wire-20260301-001"}
	assert.NoError(t, req.Validate())
}

func TestExternalPaymentRequest_Validate_MissingMethod(t *testing.T) {
	req := ExternalPaymentRequest{PaymentID: "wire-20260301-001"}
	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "method is required")
}

func TestExternalPaymentRequest_Validate_MissingPaymentID(t *testing.T) {
	req := ExternalPaymentRequest{Method: "wire"}
	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "paymentId is required")
}

// ─── CreateListingRequest.Validate ────────────────────────────────────────────

func TestCreateListingRequest_Validate_Valid(t *testing.T) {
	req := CreateListingRequest{ProductID: 1, Quantity: 50, PricePerUnit: "1.50"}
	assert.NoError(t, req.Validate())
}

func TestCreateListingRequest_Validate_MissingProduct(t *testing.T) {
	req := CreateListingRequest{Quantity: 50, PricePerUnit: "1.50"}
	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "productId is required")
}

// ─── DeliveryEventRequest.Validate ────────────────────────────────────────────

func TestDeliveryEventRequest_Validate_Valid(t *testing.T) {
	req := DeliveryEventRequest{Status: "in_transit", Description: "left the warehouse"}
	assert.NoError(t, req.Validate())
}

func TestDeliveryEventRequest_Validate_MissingStatus(t *testing.T) {
	req := DeliveryEventRequest{Description: "left the warehouse"}
	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status is required")
}
