package ledger

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DeliveryEvent is one entry of an order's delivery trail. The status is
// free text; the order's own lifecycle state stays authoritative, this log
// is an advisory audit trail.
type DeliveryEvent struct {
	Timestamp   time.Time `json:"timestamp"`
	Status      string    `json:"status"`
	Description string    `json:"description,omitempty"`
	UpdatedBy   string    `json:"updatedBy"`
}

// AddDeliveryEvent appends a delivery status update to the order's trail.
// Only the order's buyer or seller may post.
func (l *Ledger) AddDeliveryEvent(actor string, orderID uint64, status, description string) (DeliveryEvent, error) {
	var events []Event
	defer func() { l.publish(events) }()
	l.mu.Lock()
	defer l.mu.Unlock()

	o, ok := l.orderLocked(orderID)
	if !ok {
		return DeliveryEvent{}, fmt.Errorf("order %d: %w", orderID, ErrNotFound)
	}
	if actor != o.Buyer && actor != o.Seller {
		return DeliveryEvent{}, fmt.Errorf("caller %s is not a party to order %d: %w", actor, orderID, ErrUnauthorized)
	}
	if strings.TrimSpace(status) == "" {
		return DeliveryEvent{}, fmt.Errorf("status is required: %w", ErrValidation)
	}

	evt := DeliveryEvent{
		Timestamp:   l.clock.Now(),
		Status:      status,
		Description: description,
		UpdatedBy:   actor,
	}
	l.deliveries[orderID] = append(l.deliveries[orderID], evt)

	l.logger.Info("delivery.event_added",
		zap.Uint64("order_id", orderID),
		zap.String("status", status),
		zap.String("by", actor))
	events = append(events, DeliveryEventAddedEvent{
		OrderID:     orderID,
		Status:      status,
		Description: description,
		UpdatedBy:   actor,
		Timestamp:   evt.Timestamp,
	})
	return evt, nil
}

// DeliveryEvents returns the order's delivery trail in append order.
func (l *Ledger) DeliveryEvents(orderID uint64) ([]DeliveryEvent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.orderLocked(orderID); !ok {
		return nil, fmt.Errorf("order %d: %w", orderID, ErrNotFound)
	}
	return append([]DeliveryEvent(nil), l.deliveries[orderID]...), nil
}
