package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func parsePrice(s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, fmt.Errorf("pricePerUnit is required")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("pricePerUnit is not a valid decimal: %v", err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("pricePerUnit must not be negative")
	}
	return d, nil
}

func parseDate(field, s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, fmt.Errorf("%s is required", field)
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be RFC3339: %v", field, err)
	}
	return t, nil
}

func (r RegisterCompanyRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

func (r CreateProductRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if r.Quantity < 0 {
		return fmt.Errorf("quantity must not be negative")
	}
	_, err := parsePrice(r.PricePerUnit)
	return err
}

func (r ManufactureProductRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if len(r.IngredientIDs) == 0 {
		return fmt.Errorf("ingredientIds is required")
	}
	if len(r.IngredientIDs) != len(r.QuantitiesNeeded) {
		return fmt.Errorf("ingredientIds and quantitiesNeeded must have the same length")
	}
	_, err := parsePrice(r.PricePerUnit)
	return err
}

func (r TransferProductRequest) Validate() error {
	if strings.TrimSpace(r.NewOwner) == "" {
		return fmt.Errorf("newOwner is required")
	}
	if r.Quantity <= 0 {
		return fmt.Errorf("quantity must be greater than 0")
	}
	return nil
}

func (r RequestRelationshipRequest) Validate() error {
	if strings.TrimSpace(r.Supplier) == "" {
		return fmt.Errorf("supplier is required")
	}
	if strings.TrimSpace(r.Buyer) == "" {
		return fmt.Errorf("buyer is required")
	}
	if r.ProductID == 0 {
		return fmt.Errorf("productId is required")
	}
	if _, err := parsePrice(r.PricePerUnit); err != nil {
		return err
	}
	if _, err := parseDate("startDate", r.StartDate); err != nil {
		return err
	}
	_, err := parseDate("endDate", r.EndDate)
	return err
}

func (r NegotiateRelationshipRequest) Validate() error {
	if _, err := parsePrice(r.PricePerUnit); err != nil {
		return err
	}
	_, err := parseDate("endDate", r.EndDate)
	return err
}

func (r PlaceOrderRequest) Validate() error {
	origin := strings.ToLower(strings.TrimSpace(r.Origin))
	switch origin {
	case "relationship":
		if r.RelationshipID == 0 {
			return fmt.Errorf("relationshipId is required for relationship orders")
		}
	case "marketplace":
		if r.ListingID == 0 {
			return fmt.Errorf("listingId is required for marketplace orders")
		}
	default:
		return fmt.Errorf("origin must be 'relationship' or 'marketplace'")
	}
	if r.Quantity <= 0 {
		return fmt.Errorf("quantity must be greater than 0")
	}
	return nil
}

func (r ExternalPaymentRequest) Validate() error {
	if strings.TrimSpace(r.Method) == "" {
		return fmt.Errorf("method is required")
	}
	if strings.TrimSpace(r.PaymentID) == "" {
		return fmt.Errorf("paymentId is required")
	}
	return nil
}

func (r CreateListingRequest) Validate() error {
	if r.ProductID == 0 {
		return fmt.Errorf("productId is required")
	}
	if r.Quantity <= 0 {
		return fmt.Errorf("quantity must be greater than 0")
	}
	_, err := parsePrice(r.PricePerUnit)
	return err
}

func (r BuyListingRequest) Validate() error {
	if r.Quantity <= 0 {
		return fmt.Errorf("quantity must be greater than 0")
	}
	return nil
}

func (r DeliveryEventRequest) Validate() error {
	if strings.TrimSpace(r.Status) == "" {
		return fmt.Errorf("status is required")
	}
	return nil
}
