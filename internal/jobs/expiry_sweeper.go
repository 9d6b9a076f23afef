package jobs

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/chainware/supplyledger/internal/ledger"
	"github.com/chainware/supplyledger/internal/metrics"
)

// SweeperLedger is the subset of ledger operations the sweeper needs.
type SweeperLedger interface {
	ExpiredOrderCandidates() []uint64
	CancelExpiredOrder(actor string, orderID uint64) (ledger.Order, error)
}

// sweeperActor marks sweeper-initiated cancellations in the event stream.
// Expiry is permissionless so any address would do.
const sweeperActor = "system:expiry-sweeper"

// ExpirySweeper periodically cancels orders whose approval or payment
// deadline has passed. It exists so reservations held by dead orders return
// to the market without waiting for a participant to notice.
type ExpirySweeper struct {
	logger   *zap.Logger
	ledger   SweeperLedger
	interval time.Duration
	stopCh   chan struct{}
}

// NewExpirySweeper constructs a background job that runs periodically.
func NewExpirySweeper(logger *zap.Logger, l SweeperLedger, interval time.Duration) *ExpirySweeper {
	return &ExpirySweeper{
		logger:   logger,
		ledger:   l,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start runs the sweep loop until Stop or context cancellation.
func (s *ExpirySweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("expiry_sweeper.started", zap.Duration("interval", s.interval))

	for {
		select {
		case <-ticker.C:
			s.RunOnce()
		case <-s.stopCh:
			s.logger.Info("expiry_sweeper.stopped (manual stop)")
			return
		case <-ctx.Done():
			s.logger.Info("expiry_sweeper.stopped (context canceled)")
			return
		}
	}
}

// Stop gracefully halts the sweeper.
func (s *ExpirySweeper) Stop() {
	close(s.stopCh)
}

// RunOnce executes one sweep cycle and returns the number of orders expired.
func (s *ExpirySweeper) RunOnce() int {
	start := time.Now()
	metrics.SweepRunsTotal.Inc()

	candidates := s.ledger.ExpiredOrderCandidates()
	if len(candidates) == 0 {
		return 0
	}

	expired := 0
	for _, id := range candidates {
		o, err := s.ledger.CancelExpiredOrder(sweeperActor, id)
		if err != nil {
			// Another caller may have expired or settled it between the scan
			// and this call; both are fine.
			if errors.Is(err, ledger.ErrInvalidState) || errors.Is(err, ledger.ErrNotYetExpired) {
				continue
			}
			s.logger.Error("expiry_sweeper.cancel_failed",
				zap.Uint64("order_id", id), zap.Error(err))
			metrics.IncError("expiry_sweeper", "cancel")
			continue
		}
		expired++
		metrics.SweepCancellationsTotal.Inc()
		s.logger.Info("expiry_sweeper.order_expired",
			zap.Uint64("order_id", id),
			zap.String("status", o.Status.String()))
	}

	s.logger.Info("expiry_sweeper.sweep_complete",
		zap.Int("candidates", len(candidates)),
		zap.Int("expired", expired),
		zap.Duration("duration", time.Since(start)))
	return expired
}
