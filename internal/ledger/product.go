package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ComponentSource records one upstream product consumed into this one. The
// component entries across all products form the provenance DAG; every
// referenced id is strictly lower than the id of the product holding the
// entry.
type ComponentSource struct {
	ProductID    uint64    `json:"productId"`
	QuantityUsed int64     `json:"quantityUsed"`
	Supplier     string    `json:"supplier"`
	Timestamp    time.Time `json:"timestamp"`
}

// Product is a raw or manufactured lot. Records are never deleted; quantity
// may reach zero but the row persists for traceability.
type Product struct {
	ID               uint64            `json:"id"`
	Name             string            `json:"name"`
	Description      string            `json:"description"`
	ImageHash        string            `json:"imageHash"`
	Quantity         int64             `json:"quantity"`
	PricePerUnit     decimal.Decimal   `json:"pricePerUnit"`
	CurrentOwner     string            `json:"currentOwner"`
	CreatedAt        time.Time         `json:"createdAt"`
	IsManufactured   bool              `json:"isManufactured"`
	OriginalCreator  string            `json:"originalCreator"`
	OwnershipHistory []string          `json:"ownershipHistory"`
	Components       []ComponentSource `json:"components"`
}

// clone returns a deep copy so callers never hold a mutable alias into the
// arena.
func (p *Product) clone() Product {
	out := *p
	out.OwnershipHistory = append([]string(nil), p.OwnershipHistory...)
	out.Components = append([]ComponentSource(nil), p.Components...)
	return out
}

// ProductSpec carries the descriptive fields common to creation and
// manufacturing.
type ProductSpec struct {
	Name         string
	Description  string
	ImageHash    string
	Quantity     int64
	PricePerUnit decimal.Decimal
}

func (s ProductSpec) validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("product name is required: %w", ErrValidation)
	}
	if s.Quantity < 0 {
		return fmt.Errorf("quantity must be non-negative: %w", ErrValidation)
	}
	if s.PricePerUnit.IsNegative() {
		return fmt.Errorf("pricePerUnit must be non-negative: %w", ErrValidation)
	}
	return nil
}

// CreateProduct creates a raw (non-manufactured) product owned by the caller.
func (l *Ledger) CreateProduct(actor string, spec ProductSpec) (Product, error) {
	var events []Event
	defer func() { l.publish(events) }()
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.companies[actor]; !ok {
		return Product{}, fmt.Errorf("address %s is not a registered company: %w", actor, ErrUnauthorized)
	}
	if err := spec.validate(); err != nil {
		return Product{}, err
	}

	p := l.newProductLocked(actor, spec, false, nil)
	l.logger.Info("product.created",
		zap.Uint64("product_id", p.ID),
		zap.String("owner", actor),
		zap.Int64("quantity", p.Quantity))
	events = append(events, ProductCreatedEvent{
		ProductID:    p.ID,
		Name:         p.Name,
		Owner:        actor,
		Quantity:     p.Quantity,
		PricePerUnit: p.PricePerUnit,
	})
	return p.clone(), nil
}

// ManufactureProduct consumes quantities of caller-owned ingredient products
// and creates a new manufactured product in a single atomic step. If any
// ingredient check fails nothing is decremented.
func (l *Ledger) ManufactureProduct(actor string, spec ProductSpec, ingredientIDs []uint64, quantitiesNeeded []int64) (Product, error) {
	var events []Event
	defer func() { l.publish(events) }()
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.companies[actor]; !ok {
		return Product{}, fmt.Errorf("address %s is not a registered company: %w", actor, ErrUnauthorized)
	}
	if err := spec.validate(); err != nil {
		return Product{}, err
	}
	if len(ingredientIDs) == 0 {
		return Product{}, fmt.Errorf("at least one ingredient is required: %w", ErrValidation)
	}
	if len(ingredientIDs) != len(quantitiesNeeded) {
		return Product{}, fmt.Errorf("ingredientIds and quantitiesNeeded length mismatch (%d vs %d): %w",
			len(ingredientIDs), len(quantitiesNeeded), ErrValidation)
	}

	// Validate every ingredient before decrementing anything. Requested
	// quantities accumulate per ingredient id so a duplicated id cannot pass
	// the availability check piecewise.
	ingredients := make([]*Product, len(ingredientIDs))
	needed := make(map[uint64]int64, len(ingredientIDs))
	for i, id := range ingredientIDs {
		ing, ok := l.productLocked(id)
		if !ok {
			return Product{}, fmt.Errorf("ingredient product %d: %w", id, ErrNotFound)
		}
		if qty := quantitiesNeeded[i]; qty <= 0 {
			return Product{}, fmt.Errorf("ingredient %d quantity must be positive: %w", id, ErrValidation)
		}
		if ing.CurrentOwner != actor {
			return Product{}, fmt.Errorf("ingredient %d is not owned by %s: %w", id, actor, ErrInsufficientInventory)
		}
		needed[id] += quantitiesNeeded[i]
		if ing.Quantity < needed[id] {
			return Product{}, fmt.Errorf("ingredient %d has %d units, %d needed: %w",
				id, ing.Quantity, needed[id], ErrInsufficientInventory)
		}
		ingredients[i] = ing
	}

	now := l.clock.Now()
	components := make([]ComponentSource, len(ingredients))
	for i, ing := range ingredients {
		ing.Quantity -= quantitiesNeeded[i]
		components[i] = ComponentSource{
			ProductID:    ing.ID,
			QuantityUsed: quantitiesNeeded[i],
			Supplier:     actor,
			Timestamp:    now,
		}
	}

	p := l.newProductLocked(actor, spec, true, components)
	l.logger.Info("product.manufactured",
		zap.Uint64("product_id", p.ID),
		zap.String("owner", actor),
		zap.Int("ingredients", len(ingredients)))

	for i, ing := range ingredients {
		events = append(events, InventoryConsumedEvent{
			ProductID:    ing.ID,
			ConsumedByID: p.ID,
			Quantity:     quantitiesNeeded[i],
			Owner:        actor,
		})
	}
	events = append(events, ProductManufacturedEvent{
		ProductID:     p.ID,
		Name:          p.Name,
		Owner:         actor,
		Quantity:      p.Quantity,
		IngredientIDs: append([]uint64(nil), ingredientIDs...),
	})
	return p.clone(), nil
}

// TransferProduct moves quantity units of a product to newOwner. A full
// transfer reassigns ownership of the existing record; a partial transfer
// splits off a new lot whose provenance points back at the parent. The
// settled lot id is returned (the product's own id for a full transfer).
func (l *Ledger) TransferProduct(actor string, productID uint64, newOwner string, quantity int64) (uint64, error) {
	var events []Event
	defer func() { l.publish(events) }()
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	lotID, partial, err := l.transferLocked(actor, newOwner, productID, quantity, now)
	if err != nil {
		return 0, err
	}

	p, _ := l.productLocked(productID)
	txn := l.appendTransactionLocked(newOwner, actor, productID, quantity,
		p.PricePerUnit.Mul(decimal.NewFromInt(quantity)), TransactionDirect, now)

	l.logger.Info("product.transferred",
		zap.Uint64("product_id", productID),
		zap.Uint64("lot_id", lotID),
		zap.String("from", actor),
		zap.String("to", newOwner),
		zap.Int64("quantity", quantity))
	events = append(events,
		ProductTransferredEvent{
			ProductID: productID,
			LotID:     lotID,
			From:      actor,
			To:        newOwner,
			Quantity:  quantity,
			Partial:   partial,
		},
		txn.createdEvent(),
	)
	return lotID, nil
}

// GetProduct returns a copy of the product record.
func (l *Ledger) GetProduct(id uint64) (Product, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.productLocked(id)
	if !ok {
		return Product{}, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	return p.clone(), nil
}

// ProductsByOwner returns all products currently owned by the address.
func (l *Ledger) ProductsByOwner(owner string) []Product {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Product
	for _, p := range l.products {
		if p.CurrentOwner == owner {
			out = append(out, p.clone())
		}
	}
	return out
}

// newProductLocked appends a product to the arena and assigns the next id.
// All validation must have happened already; this cannot fail.
func (l *Ledger) newProductLocked(owner string, spec ProductSpec, manufactured bool, components []ComponentSource) *Product {
	p := &Product{
		ID:               uint64(len(l.products) + 1),
		Name:             spec.Name,
		Description:      spec.Description,
		ImageHash:        spec.ImageHash,
		Quantity:         spec.Quantity,
		PricePerUnit:     spec.PricePerUnit,
		CurrentOwner:     owner,
		CreatedAt:        l.clock.Now(),
		IsManufactured:   manufactured,
		OriginalCreator:  owner,
		OwnershipHistory: []string{owner},
		Components:       components,
	}
	l.products = append(l.products, p)
	return p
}

// transferLocked implements the ownership transfer shared by direct
// transfers, order settlement and spot purchases. It validates everything
// before the first write.
func (l *Ledger) transferLocked(from, to string, productID uint64, quantity int64, now time.Time) (lotID uint64, partial bool, err error) {
	p, ok := l.productLocked(productID)
	if !ok {
		return 0, false, fmt.Errorf("product %d: %w", productID, ErrNotFound)
	}
	if _, ok := l.companies[to]; !ok {
		return 0, false, fmt.Errorf("new owner %s is not a registered company: %w", to, ErrNotFound)
	}
	if p.CurrentOwner != from {
		return 0, false, fmt.Errorf("product %d is owned by %s, not %s: %w", productID, p.CurrentOwner, from, ErrUnauthorized)
	}
	if quantity <= 0 {
		return 0, false, fmt.Errorf("transfer quantity must be positive: %w", ErrValidation)
	}
	if quantity > p.Quantity {
		return 0, false, fmt.Errorf("product %d has %d units, %d requested: %w", productID, p.Quantity, quantity, ErrInsufficientQuantity)
	}

	if quantity == p.Quantity {
		p.CurrentOwner = to
		p.OwnershipHistory = append(p.OwnershipHistory, to)
		return p.ID, false, nil
	}

	// Split lot: the transferred units get their own record so the split
	// keeps a separate ownership trail, linked to the parent for provenance.
	p.Quantity -= quantity
	lot := &Product{
		ID:              uint64(len(l.products) + 1),
		Name:            p.Name,
		Description:     p.Description,
		ImageHash:       p.ImageHash,
		Quantity:        quantity,
		PricePerUnit:    p.PricePerUnit,
		CurrentOwner:    to,
		CreatedAt:       now,
		IsManufactured:  p.IsManufactured,
		OriginalCreator: p.OriginalCreator,
		Components: []ComponentSource{{
			ProductID:    p.ID,
			QuantityUsed: quantity,
			Supplier:     from,
			Timestamp:    now,
		}},
	}
	lot.OwnershipHistory = append(append([]string(nil), p.OwnershipHistory...), to)
	l.products = append(l.products, lot)
	return lot.ID, true, nil
}
