package ledger

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Company is a registered participant. The wallet address is the identity
// key for every authorization check.
type Company struct {
	ID           uint64    `json:"id"`
	Address      string    `json:"address"`
	Name         string    `json:"name"`
	RegisteredAt time.Time `json:"registeredAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// RegisterCompany registers the calling address as a company. A given
// address can register exactly once.
func (l *Ledger) RegisterCompany(actor, name string) (Company, error) {
	var events []Event
	defer func() { l.publish(events) }()
	l.mu.Lock()
	defer l.mu.Unlock()

	if strings.TrimSpace(actor) == "" {
		return Company{}, fmt.Errorf("address is required: %w", ErrValidation)
	}
	if strings.TrimSpace(name) == "" {
		return Company{}, fmt.Errorf("company name is required: %w", ErrValidation)
	}
	if _, ok := l.companies[actor]; ok {
		return Company{}, fmt.Errorf("address %s: %w", actor, ErrDuplicateRegistration)
	}

	now := l.clock.Now()
	c := &Company{
		ID:           uint64(len(l.companies) + 1),
		Address:      actor,
		Name:         name,
		RegisteredAt: now,
		UpdatedAt:    now,
	}
	l.companies[actor] = c

	l.logger.Info("registry.company_registered",
		zap.String("address", actor),
		zap.String("name", name))
	events = append(events, CompanyRegisteredEvent{Address: actor, Name: name})
	return *c, nil
}

// UpdateCompanyDetails changes the company's name and, if newAddress is
// non-empty, re-keys the company to the new address. Products, relationships,
// orders and listings held by the company follow it to the new address. Only
// the currently registered address may update its own record.
func (l *Ledger) UpdateCompanyDetails(actor, newName, newAddress string) (Company, error) {
	var events []Event
	defer func() { l.publish(events) }()
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.companies[actor]
	if !ok {
		return Company{}, fmt.Errorf("address %s is not a registered company: %w", actor, ErrUnauthorized)
	}
	if strings.TrimSpace(newName) == "" {
		return Company{}, fmt.Errorf("company name is required: %w", ErrValidation)
	}
	if newAddress != "" && newAddress != actor {
		if _, taken := l.companies[newAddress]; taken {
			return Company{}, fmt.Errorf("address %s: %w", newAddress, ErrDuplicateRegistration)
		}
	}

	prev := c.Address
	c.Name = newName
	c.UpdatedAt = l.clock.Now()
	if newAddress != "" && newAddress != actor {
		delete(l.companies, actor)
		c.Address = newAddress
		l.companies[newAddress] = c
		l.rekeyActorLocked(actor, newAddress)
	}

	l.logger.Info("registry.company_updated",
		zap.String("address", c.Address),
		zap.String("name", newName))
	events = append(events, CompanyUpdatedEvent{Address: c.Address, PrevAddress: prev, Name: newName})
	return *c, nil
}

// rekeyActorLocked rewrites the live actor references held by entity state
// after a company changes address, so authorization keeps following the
// company and the freed address carries no residual rights. Current
// negotiation turn lives in the step log, so step actors are rewritten too.
// Pure history (ownership trails, component suppliers, transactions,
// delivery updates) keeps the address that acted at the time.
func (l *Ledger) rekeyActorLocked(old, updated string) {
	for _, p := range l.products {
		if p.CurrentOwner == old {
			p.CurrentOwner = updated
		}
	}
	for _, r := range l.relationships {
		if r.Supplier == old {
			r.Supplier = updated
		}
		if r.Buyer == old {
			r.Buyer = updated
		}
		for i := range r.Steps {
			if r.Steps[i].RequestFrom == old {
				r.Steps[i].RequestFrom = updated
			}
		}
	}
	for _, o := range l.orders {
		if o.Buyer == old {
			o.Buyer = updated
		}
		if o.Seller == old {
			o.Seller = updated
		}
	}
	for _, s := range l.listings {
		if s.Seller == old {
			s.Seller = updated
		}
	}
}

// IsRegistered reports whether the address belongs to a registered company.
func (l *Ledger) IsRegistered(address string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.companies[address]
	return ok
}

// GetCompany returns the company registered at address.
func (l *Ledger) GetCompany(address string) (Company, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	c, ok := l.companies[address]
	if !ok {
		return Company{}, fmt.Errorf("company %s: %w", address, ErrNotFound)
	}
	return *c, nil
}

// Companies returns all registered companies in registration order.
func (l *Ledger) Companies() []Company {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Company, 0, len(l.companies))
	for _, c := range l.companies {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
