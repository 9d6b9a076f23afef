package publisher

import (
	"context"
	"time"

	"github.com/chainware/supplyledger/internal/ledger"
	"github.com/chainware/supplyledger/pkg/eventbus"
)

// Forwarder bridges the in-process event bus to NATS. Every committed ledger
// event becomes one envelope on the wire, in commit order.
type Forwarder struct {
	pub     *Publisher
	timeout time.Duration
}

func NewForwarder(pub *Publisher, timeout time.Duration) *Forwarder {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Forwarder{pub: pub, timeout: timeout}
}

// Attach subscribes the forwarder to every ledger event type.
func (f *Forwarder) Attach(bus *eventbus.EventBus) {
	forward[ledger.CompanyRegisteredEvent](f, bus)
	forward[ledger.CompanyUpdatedEvent](f, bus)
	forward[ledger.ProductCreatedEvent](f, bus)
	forward[ledger.ProductManufacturedEvent](f, bus)
	forward[ledger.InventoryConsumedEvent](f, bus)
	forward[ledger.ProductTransferredEvent](f, bus)
	forward[ledger.RelationshipRequestedEvent](f, bus)
	forward[ledger.RelationshipNegotiatedEvent](f, bus)
	forward[ledger.RelationshipAcceptedEvent](f, bus)
	forward[ledger.RelationshipRejectedEvent](f, bus)
	forward[ledger.OrderPlacedEvent](f, bus)
	forward[ledger.OrderApprovedEvent](f, bus)
	forward[ledger.OrderRejectedEvent](f, bus)
	forward[ledger.OrderCompletedEvent](f, bus)
	forward[ledger.OrderExpiredEvent](f, bus)
	forward[ledger.SpotListingCreatedEvent](f, bus)
	forward[ledger.SpotListingRemovedEvent](f, bus)
	forward[ledger.SpotPurchaseEvent](f, bus)
	forward[ledger.TransactionCreatedEvent](f, bus)
	forward[ledger.DeliveryEventAddedEvent](f, bus)
}

// forward registers a typed bus handler that ships the event to NATS. Publish
// failures are logged and counted inside the publisher; the ledger itself
// never blocks on the wire.
func forward[T ledger.Event](f *Forwarder, bus *eventbus.EventBus) {
	bus.SubscribeFunc(func(ev T) {
		ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
		defer cancel()
		_ = f.pub.PublishEvent(ctx, ev)
	})
}
