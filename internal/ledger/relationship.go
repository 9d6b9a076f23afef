package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RelationshipStatus is the negotiation lifecycle state.
type RelationshipStatus int

const (
	RelationshipRequested RelationshipStatus = iota
	RelationshipNegotiating
	RelationshipAccepted
	RelationshipRejected
)

// String returns the string representation
func (s RelationshipStatus) String() string {
	switch s {
	case RelationshipRequested:
		return "Requested"
	case RelationshipNegotiating:
		return "Negotiating"
	case RelationshipAccepted:
		return "Accepted"
	case RelationshipRejected:
		return "Rejected"
	default:
		return "Unknown"
	}
}

// Terminal reports whether no further transition is allowed.
func (s RelationshipStatus) Terminal() bool {
	return s == RelationshipAccepted || s == RelationshipRejected
}

// NegotiationStep is one round of the price/term negotiation. The log is
// append-only; the last entry holds the current terms.
type NegotiationStep struct {
	Step         int             `json:"step"`
	PricePerUnit decimal.Decimal `json:"pricePerUnit"`
	RequestFrom  string          `json:"requestFrom"`
	Timestamp    time.Time       `json:"timestamp"`
	EndDate      time.Time       `json:"endDate"`
}

// Relationship is a bilateral supplier/buyer agreement over one product.
type Relationship struct {
	ID        uint64             `json:"id"`
	Supplier  string             `json:"supplier"`
	Buyer     string             `json:"buyer"`
	ProductID uint64             `json:"productId"`
	StartDate time.Time          `json:"startDate"`
	EndDate   time.Time          `json:"endDate"`
	Status    RelationshipStatus `json:"status"`
	Steps     []NegotiationStep  `json:"steps"`
}

func (r *Relationship) clone() Relationship {
	out := *r
	out.Steps = append([]NegotiationStep(nil), r.Steps...)
	return out
}

// lastStep returns the most recent negotiation step. Every relationship has
// at least one (recorded at request time).
func (r *Relationship) lastStep() NegotiationStep {
	return r.Steps[len(r.Steps)-1]
}

// counterparty returns the other party of the relationship.
func (r *Relationship) counterparty(addr string) string {
	if addr == r.Supplier {
		return r.Buyer
	}
	return r.Supplier
}

func (r *Relationship) isParty(addr string) bool {
	return addr == r.Supplier || addr == r.Buyer
}

// RequestRelationship opens a supplier/buyer agreement in Requested state.
// The caller must be one of the two parties; the initial terms are recorded
// as negotiation step 1 with requestFrom = caller.
func (l *Ledger) RequestRelationship(actor, supplier, buyer string, productID uint64, pricePerUnit decimal.Decimal, startDate, endDate time.Time) (Relationship, error) {
	var events []Event
	defer func() { l.publish(events) }()
	l.mu.Lock()
	defer l.mu.Unlock()

	if actor != supplier && actor != buyer {
		return Relationship{}, fmt.Errorf("caller %s is neither supplier nor buyer: %w", actor, ErrUnauthorized)
	}
	if supplier == buyer {
		return Relationship{}, fmt.Errorf("supplier and buyer must differ: %w", ErrValidation)
	}
	if _, ok := l.companies[supplier]; !ok {
		return Relationship{}, fmt.Errorf("supplier %s: %w", supplier, ErrNotFound)
	}
	if _, ok := l.companies[buyer]; !ok {
		return Relationship{}, fmt.Errorf("buyer %s: %w", buyer, ErrNotFound)
	}
	if _, ok := l.productLocked(productID); !ok {
		return Relationship{}, fmt.Errorf("product %d: %w", productID, ErrNotFound)
	}
	if pricePerUnit.IsNegative() {
		return Relationship{}, fmt.Errorf("pricePerUnit must be non-negative: %w", ErrValidation)
	}
	if !endDate.After(startDate) {
		return Relationship{}, fmt.Errorf("endDate must be after startDate: %w", ErrValidation)
	}

	now := l.clock.Now()
	r := &Relationship{
		ID:        uint64(len(l.relationships) + 1),
		Supplier:  supplier,
		Buyer:     buyer,
		ProductID: productID,
		StartDate: startDate,
		EndDate:   endDate,
		Status:    RelationshipRequested,
		Steps: []NegotiationStep{{
			Step:         1,
			PricePerUnit: pricePerUnit,
			RequestFrom:  actor,
			Timestamp:    now,
			EndDate:      endDate,
		}},
	}
	l.relationships = append(l.relationships, r)

	l.logger.Info("relationship.requested",
		zap.Uint64("relationship_id", r.ID),
		zap.String("supplier", supplier),
		zap.String("buyer", buyer),
		zap.Uint64("product_id", productID))
	events = append(events, RelationshipRequestedEvent{
		RelationshipID: r.ID,
		Supplier:       supplier,
		Buyer:          buyer,
		ProductID:      productID,
		PricePerUnit:   pricePerUnit,
		RequestFrom:    actor,
	})
	return r.clone(), nil
}

// NegotiateRelationship counters the current terms. Turns strictly
// alternate: only the party that did not submit the last step may negotiate.
func (l *Ledger) NegotiateRelationship(actor string, relationshipID uint64, newPrice decimal.Decimal, newEndDate time.Time) (Relationship, error) {
	var events []Event
	defer func() { l.publish(events) }()
	l.mu.Lock()
	defer l.mu.Unlock()

	r, err := l.negotiableLocked(actor, relationshipID)
	if err != nil {
		return Relationship{}, err
	}
	if newPrice.IsNegative() {
		return Relationship{}, fmt.Errorf("pricePerUnit must be non-negative: %w", ErrValidation)
	}
	if !newEndDate.After(r.StartDate) {
		return Relationship{}, fmt.Errorf("endDate must be after startDate: %w", ErrValidation)
	}

	step := NegotiationStep{
		Step:         len(r.Steps) + 1,
		PricePerUnit: newPrice,
		RequestFrom:  actor,
		Timestamp:    l.clock.Now(),
		EndDate:      newEndDate,
	}
	r.Steps = append(r.Steps, step)
	r.Status = RelationshipNegotiating
	r.EndDate = newEndDate

	l.logger.Info("relationship.negotiated",
		zap.Uint64("relationship_id", r.ID),
		zap.Int("step", step.Step),
		zap.String("from", actor))
	events = append(events, RelationshipNegotiatedEvent{
		RelationshipID: r.ID,
		Step:           step.Step,
		PricePerUnit:   newPrice,
		RequestFrom:    actor,
	})
	return r.clone(), nil
}

// AcceptRelationship accepts the current terms. Only the counterparty to the
// last negotiation step may accept; the state becomes terminal.
func (l *Ledger) AcceptRelationship(actor string, relationshipID uint64) (Relationship, error) {
	var events []Event
	defer func() { l.publish(events) }()
	l.mu.Lock()
	defer l.mu.Unlock()

	r, err := l.negotiableLocked(actor, relationshipID)
	if err != nil {
		return Relationship{}, err
	}

	r.Status = RelationshipAccepted
	r.EndDate = r.lastStep().EndDate

	l.logger.Info("relationship.accepted",
		zap.Uint64("relationship_id", r.ID),
		zap.String("by", actor))
	events = append(events, RelationshipAcceptedEvent{
		RelationshipID: r.ID,
		AcceptedBy:     actor,
		PricePerUnit:   r.lastStep().PricePerUnit,
	})
	return r.clone(), nil
}

// RejectRelationship rejects the relationship. Either party may reject from
// any non-terminal state.
func (l *Ledger) RejectRelationship(actor string, relationshipID uint64) (Relationship, error) {
	var events []Event
	defer func() { l.publish(events) }()
	l.mu.Lock()
	defer l.mu.Unlock()

	r, ok := l.relationshipLocked(relationshipID)
	if !ok {
		return Relationship{}, fmt.Errorf("relationship %d: %w", relationshipID, ErrNotFound)
	}
	if !r.isParty(actor) {
		return Relationship{}, fmt.Errorf("caller %s is not a party to relationship %d: %w", actor, relationshipID, ErrUnauthorized)
	}
	if r.Status.Terminal() {
		return Relationship{}, fmt.Errorf("relationship %d is %s: %w", relationshipID, r.Status, ErrInvalidState)
	}

	r.Status = RelationshipRejected

	l.logger.Info("relationship.rejected",
		zap.Uint64("relationship_id", r.ID),
		zap.String("by", actor))
	events = append(events, RelationshipRejectedEvent{RelationshipID: r.ID, RejectedBy: actor})
	return r.clone(), nil
}

// GetRelationship returns a copy of the relationship with its full
// negotiation log.
func (l *Ledger) GetRelationship(id uint64) (Relationship, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.relationshipLocked(id)
	if !ok {
		return Relationship{}, fmt.Errorf("relationship %d: %w", id, ErrNotFound)
	}
	return r.clone(), nil
}

// RelationshipsByParty returns all relationships the address participates in.
func (l *Ledger) RelationshipsByParty(addr string) []Relationship {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Relationship
	for _, r := range l.relationships {
		if r.isParty(addr) {
			out = append(out, r.clone())
		}
	}
	return out
}

// negotiableLocked runs the checks shared by negotiate and accept: the
// relationship exists, is non-terminal, the caller is a party, and it is the
// caller's turn.
func (l *Ledger) negotiableLocked(actor string, relationshipID uint64) (*Relationship, error) {
	r, ok := l.relationshipLocked(relationshipID)
	if !ok {
		return nil, fmt.Errorf("relationship %d: %w", relationshipID, ErrNotFound)
	}
	if !r.isParty(actor) {
		return nil, fmt.Errorf("caller %s is not a party to relationship %d: %w", actor, relationshipID, ErrUnauthorized)
	}
	if r.Status.Terminal() {
		return nil, fmt.Errorf("relationship %d is %s: %w", relationshipID, r.Status, ErrInvalidState)
	}
	if r.lastStep().RequestFrom == actor {
		return nil, fmt.Errorf("waiting on %s to respond: %w", r.counterparty(actor), ErrNotYourTurn)
	}
	return r, nil
}
