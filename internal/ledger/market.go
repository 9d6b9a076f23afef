package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SpotListing is a public offer of product quantity, independent of any
// negotiated relationship. Listings are deactivated, never deleted.
type SpotListing struct {
	ID                uint64          `json:"id"`
	ProductID         uint64          `json:"productId"`
	Seller            string          `json:"seller"`
	QuantityAvailable int64           `json:"quantityAvailable"`
	PricePerUnit      decimal.Decimal `json:"pricePerUnit"`
	ListedAt          time.Time       `json:"listedAt"`
	IsActive          bool            `json:"isActive"`
}

// ListProductForSale creates an active spot listing. The caller must own at
// least the listed quantity; the product itself is only decremented when a
// sale settles.
func (l *Ledger) ListProductForSale(actor string, productID uint64, quantity int64, pricePerUnit decimal.Decimal) (SpotListing, error) {
	var events []Event
	defer func() { l.publish(events) }()
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.productLocked(productID)
	if !ok {
		return SpotListing{}, fmt.Errorf("product %d: %w", productID, ErrNotFound)
	}
	if p.CurrentOwner != actor {
		return SpotListing{}, fmt.Errorf("product %d is not owned by %s: %w", productID, actor, ErrUnauthorized)
	}
	if quantity <= 0 {
		return SpotListing{}, fmt.Errorf("listing quantity must be positive: %w", ErrValidation)
	}
	if quantity > p.Quantity {
		return SpotListing{}, fmt.Errorf("product %d has %d units, %d listed: %w", productID, p.Quantity, quantity, ErrInsufficientQuantity)
	}
	if pricePerUnit.IsNegative() {
		return SpotListing{}, fmt.Errorf("pricePerUnit must be non-negative: %w", ErrValidation)
	}

	lst := &SpotListing{
		ID:                uint64(len(l.listings) + 1),
		ProductID:         productID,
		Seller:            actor,
		QuantityAvailable: quantity,
		PricePerUnit:      pricePerUnit,
		ListedAt:          l.clock.Now(),
		IsActive:          true,
	}
	l.listings = append(l.listings, lst)

	l.logger.Info("market.listing_created",
		zap.Uint64("listing_id", lst.ID),
		zap.Uint64("product_id", productID),
		zap.String("seller", actor),
		zap.Int64("quantity", quantity))
	events = append(events, SpotListingCreatedEvent{
		ListingID:    lst.ID,
		ProductID:    productID,
		Seller:       actor,
		Quantity:     quantity,
		PricePerUnit: pricePerUnit,
	})
	return *lst, nil
}

// BuyFromSpotMarket settles a direct purchase immediately, bypassing the
// order approval flow: ownership transfers, a transaction is recorded, the
// listing's availability drops and the listing deactivates on exhaustion.
func (l *Ledger) BuyFromSpotMarket(actor string, listingID uint64, quantity int64) (Transaction, error) {
	var events []Event
	defer func() { l.publish(events) }()
	l.mu.Lock()
	defer l.mu.Unlock()

	lst, ok := l.listingLocked(listingID)
	if !ok {
		return Transaction{}, fmt.Errorf("listing %d: %w", listingID, ErrNotFound)
	}
	if !lst.IsActive {
		return Transaction{}, fmt.Errorf("listing %d is inactive: %w", listingID, ErrInvalidState)
	}
	if actor == lst.Seller {
		return Transaction{}, fmt.Errorf("seller cannot buy from own listing: %w", ErrValidation)
	}
	if quantity <= 0 {
		return Transaction{}, fmt.Errorf("purchase quantity must be positive: %w", ErrValidation)
	}
	if quantity > lst.QuantityAvailable {
		return Transaction{}, fmt.Errorf("listing %d has %d units, %d requested: %w",
			listingID, lst.QuantityAvailable, quantity, ErrInsufficientQuantity)
	}

	now := l.clock.Now()
	// Validates that the seller still owns enough of the product; no state
	// is touched if it fails.
	lotID, partial, err := l.transferLocked(lst.Seller, actor, lst.ProductID, quantity, now)
	if err != nil {
		return Transaction{}, fmt.Errorf("spot purchase on listing %d: %w", listingID, err)
	}

	lst.QuantityAvailable -= quantity
	if lst.QuantityAvailable == 0 {
		lst.IsActive = false
	}

	total := lst.PricePerUnit.Mul(decimal.NewFromInt(quantity))
	txn := l.appendTransactionLocked(actor, lst.Seller, lst.ProductID, quantity, total, TransactionSpot, now)

	l.logger.Info("market.spot_purchase",
		zap.Uint64("listing_id", listingID),
		zap.Uint64("lot_id", lotID),
		zap.String("buyer", actor),
		zap.Int64("quantity", quantity))
	events = append(events,
		ProductTransferredEvent{
			ProductID: lst.ProductID,
			LotID:     lotID,
			From:      lst.Seller,
			To:        actor,
			Quantity:  quantity,
			Partial:   partial,
		},
		txn.createdEvent(),
		SpotPurchaseEvent{
			ListingID:  listingID,
			ProductID:  lst.ProductID,
			LotID:      lotID,
			Buyer:      actor,
			Seller:     lst.Seller,
			Quantity:   quantity,
			TotalPrice: total,
		},
	)
	return *txn, nil
}

// RemoveSpotListing deactivates a listing. Seller only; already-settled
// transactions are unaffected.
func (l *Ledger) RemoveSpotListing(actor string, listingID uint64) error {
	var events []Event
	defer func() { l.publish(events) }()
	l.mu.Lock()
	defer l.mu.Unlock()

	lst, ok := l.listingLocked(listingID)
	if !ok {
		return fmt.Errorf("listing %d: %w", listingID, ErrNotFound)
	}
	if actor != lst.Seller {
		return fmt.Errorf("only the seller may remove listing %d: %w", listingID, ErrUnauthorized)
	}
	if !lst.IsActive {
		return fmt.Errorf("listing %d is already inactive: %w", listingID, ErrInvalidState)
	}

	lst.IsActive = false

	l.logger.Info("market.listing_removed", zap.Uint64("listing_id", listingID))
	events = append(events, SpotListingRemovedEvent{ListingID: listingID, Seller: actor})
	return nil
}

// GetListing returns a copy of the listing.
func (l *Ledger) GetListing(id uint64) (SpotListing, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lst, ok := l.listingLocked(id)
	if !ok {
		return SpotListing{}, fmt.Errorf("listing %d: %w", id, ErrNotFound)
	}
	return *lst, nil
}

// ActiveListings returns all currently active listings.
func (l *Ledger) ActiveListings() []SpotListing {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []SpotListing
	for _, lst := range l.listings {
		if lst.IsActive {
			out = append(out, *lst)
		}
	}
	return out
}
