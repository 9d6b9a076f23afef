package ledger

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/chainware/supplyledger/pkg/eventbus"
)

// Policy holds the deadline windows stamped onto new orders.
type Policy struct {
	// ApprovalWindow is how long a seller has to approve a pending order.
	ApprovalWindow time.Duration
	// PaymentWindow is how long a buyer has to pay an approved order.
	PaymentWindow time.Duration
}

// DefaultPolicy mirrors the windows used in production.
func DefaultPolicy() Policy {
	return Policy{
		ApprovalWindow: 24 * time.Hour,
		PaymentWindow:  48 * time.Hour,
	}
}

// Ledger owns all supply-chain state: companies, products, relationships,
// orders, spot listings, the transaction history and the per-order delivery
// trails. A single mutex totally orders operations; every mutating method
// validates all preconditions before touching state, so a failed call leaves
// no partial write behind. Re-entrant calls from event handlers simply queue
// behind the mutex as fresh operations.
type Ledger struct {
	mu     sync.Mutex
	clock  Clock
	bus    *eventbus.EventBus
	logger *zap.Logger
	policy Policy

	companies map[string]*Company // keyed by wallet address

	// Arena slices: id n lives at index n-1. Ids are assigned in creation
	// order, which is what makes provenance traversal terminate (a product
	// can only reference lower ids).
	products      []*Product
	relationships []*Relationship
	orders        []*Order
	listings      []*SpotListing
	transactions  []*Transaction

	deliveries map[uint64][]DeliveryEvent // order id -> trail
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the system clock (tests use ManualClock).
func WithClock(c Clock) Option {
	return func(l *Ledger) { l.clock = c }
}

// WithEventBus attaches an in-process bus; domain events are published on it
// after each successful operation.
func WithEventBus(bus *eventbus.EventBus) Option {
	return func(l *Ledger) { l.bus = bus }
}

// WithLogger attaches a structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

// WithPolicy overrides the order deadline windows.
func WithPolicy(p Policy) Option {
	return func(l *Ledger) { l.policy = p }
}

// New creates an empty ledger.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		clock:      SystemClock{},
		logger:     zap.NewNop(),
		policy:     DefaultPolicy(),
		companies:  make(map[string]*Company),
		deliveries: make(map[uint64][]DeliveryEvent),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// publish emits events after the operation's mutex section has ended. Every
// operation collects its events into a local slice and registers
// `defer func() { l.publish(events) }()` before taking the lock, so the
// deferred unlock runs first and subscribers never observe the lock held.
func (l *Ledger) publish(events []Event) {
	if l.bus == nil {
		return
	}
	for _, evt := range events {
		l.bus.PublishSync(evt)
	}
}

func (l *Ledger) productLocked(id uint64) (*Product, bool) {
	if id == 0 || id > uint64(len(l.products)) {
		return nil, false
	}
	return l.products[id-1], true
}

func (l *Ledger) relationshipLocked(id uint64) (*Relationship, bool) {
	if id == 0 || id > uint64(len(l.relationships)) {
		return nil, false
	}
	return l.relationships[id-1], true
}

func (l *Ledger) orderLocked(id uint64) (*Order, bool) {
	if id == 0 || id > uint64(len(l.orders)) {
		return nil, false
	}
	return l.orders[id-1], true
}

func (l *Ledger) listingLocked(id uint64) (*SpotListing, bool) {
	if id == 0 || id > uint64(len(l.listings)) {
		return nil, false
	}
	return l.listings[id-1], true
}
