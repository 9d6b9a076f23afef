package store

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/chainware/supplyledger/internal/ledger"
	"github.com/chainware/supplyledger/internal/metrics"
	"github.com/chainware/supplyledger/pkg/eventbus"
)

// Recorder mirrors committed ledger events into the hybrid store. It is wired
// to the in-process event bus, so persistence lags the in-memory commit but
// never blocks it.
type Recorder struct {
	ledger  *ledger.Ledger
	store   Store
	logger  *zap.Logger
	timeout time.Duration
}

func NewRecorder(l *ledger.Ledger, st Store, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{
		ledger:  l,
		store:   st,
		logger:  logger,
		timeout: 5 * time.Second,
	}
}

// Attach registers the recorder's handlers on the bus.
func (r *Recorder) Attach(bus *eventbus.EventBus) {
	bus.SubscribeFunc(r.onTransactionCreated)
	bus.SubscribeFunc(r.onDeliveryEventAdded)
	bus.SubscribeFunc(r.onProductCreated)
	bus.SubscribeFunc(r.onProductManufactured)
	bus.SubscribeFunc(r.onProductTransferred)
}

func (r *Recorder) onTransactionCreated(ev ledger.TransactionCreatedEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	tx, err := r.ledger.GetTransaction(ev.TransactionID)
	if err != nil {
		r.logger.Error("recorder.transaction_lookup_failed",
			zap.Uint64("tx_id", ev.TransactionID), zap.Error(err))
		metrics.IncError("recorder", "lookup")
		return
	}
	if err := r.store.RecordTransaction(ctx, tx); err != nil {
		metrics.IncError("recorder", "persist")
	}
}

func (r *Recorder) onDeliveryEventAdded(ev ledger.DeliveryEventAddedEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	err := r.store.RecordDeliveryEvent(ctx, ev.OrderID, ledger.DeliveryEvent{
		Timestamp:   ev.Timestamp,
		Status:      ev.Status,
		Description: ev.Description,
		UpdatedBy:   ev.UpdatedBy,
	})
	if err != nil {
		metrics.IncError("recorder", "persist")
	}
}

func (r *Recorder) onProductCreated(ev ledger.ProductCreatedEvent) {
	r.snapshotProduct(ev.ProductID)
}

func (r *Recorder) onProductManufactured(ev ledger.ProductManufacturedEvent) {
	r.snapshotProduct(ev.ProductID)
	for _, id := range ev.IngredientIDs {
		r.snapshotProduct(id)
	}
}

func (r *Recorder) onProductTransferred(ev ledger.ProductTransferredEvent) {
	r.snapshotProduct(ev.ProductID)
	if ev.LotID != ev.ProductID {
		r.snapshotProduct(ev.LotID)
	}
}

func (r *Recorder) snapshotProduct(id uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	p, err := r.ledger.GetProduct(id)
	if err != nil {
		r.logger.Error("recorder.product_lookup_failed",
			zap.Uint64("product_id", id), zap.Error(err))
		metrics.IncError("recorder", "lookup")
		return
	}
	if err := r.store.UpsertProductSnapshot(ctx, p); err != nil {
		metrics.IncError("recorder", "persist")
	}
}
