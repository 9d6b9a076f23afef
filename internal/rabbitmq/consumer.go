package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/chainware/supplyledger/internal/ledger"
)

// PlaceOrderCommand is the wire form of an order placement request arriving
// over RabbitMQ from upstream systems.
type PlaceOrderCommand struct {
	Actor          string `json:"actor"`
	Origin         string `json:"origin"` // "relationship" | "marketplace"
	RelationshipID uint64 `json:"relationshipId,omitempty"`
	ListingID      uint64 `json:"listingId,omitempty"`
	Quantity       int64  `json:"quantity"`
	Notes          string `json:"notes,omitempty"`
}

// ExpireOrderCommand asks the ledger to cancel an order whose deadline passed.
type ExpireOrderCommand struct {
	Actor   string `json:"actor"`
	OrderID uint64 `json:"orderId"`
}

// LedgerService is the subset of ledger operations the consumer drives.
type LedgerService interface {
	PlaceOrder(actor string, in ledger.PlaceOrderInput) (ledger.Order, error)
	CancelExpiredOrder(actor string, orderID uint64) (ledger.Order, error)
}

// Consumer consumes order commands from RabbitMQ.
type Consumer struct {
	conn        *amqp.Connection
	channel     *amqp.Channel
	svc         LedgerService
	orderQueue  string
	expiryQueue string
	logger      *zap.Logger
	done        chan struct{}
}

// NewConsumer creates a new RabbitMQ consumer.
func NewConsumer(url, orderQueue, expiryQueue string, svc LedgerService, logger *zap.Logger) (*Consumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	return &Consumer{
		conn:        conn,
		channel:     channel,
		svc:         svc,
		orderQueue:  orderQueue,
		expiryQueue: expiryQueue,
		logger:      logger,
		done:        make(chan struct{}),
	}, nil
}

// Start declares the queues and begins consuming.
func (c *Consumer) Start(ctx context.Context) error {
	if _, err := c.channel.QueueDeclare(c.orderQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", c.orderQueue, err)
	}
	if _, err := c.channel.QueueDeclare(c.expiryQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", c.expiryQueue, err)
	}

	orderMsgs, err := c.channel.Consume(c.orderQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to consume from %s: %w", c.orderQueue, err)
	}
	expiryMsgs, err := c.channel.Consume(c.expiryQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to consume from %s: %w", c.expiryQueue, err)
	}

	c.logger.Info("Started consuming from RabbitMQ",
		zap.String("orderQueue", c.orderQueue),
		zap.String("expiryQueue", c.expiryQueue),
	)

	go c.consumeOrders(ctx, orderMsgs)
	go c.consumeExpiries(ctx, expiryMsgs)

	return nil
}

func (c *Consumer) consumeOrders(ctx context.Context, msgs <-chan amqp.Delivery) {
	for {
		select {
		case <-c.done:
			return
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				c.logger.Warn("Order command channel closed")
				return
			}

			var cmd PlaceOrderCommand
			if err := json.Unmarshal(msg.Body, &cmd); err != nil {
				c.logger.Error("Failed to unmarshal PlaceOrderCommand", zap.Error(err))
				msg.Nack(false, false)
				continue
			}

			origin, ok := ledger.OrderOriginFromString(cmd.Origin)
			if !ok {
				c.logger.Error("Unknown order origin", zap.String("origin", cmd.Origin))
				msg.Nack(false, false)
				continue
			}

			o, err := c.svc.PlaceOrder(cmd.Actor, ledger.PlaceOrderInput{
				Origin:         origin,
				RelationshipID: cmd.RelationshipID,
				ListingID:      cmd.ListingID,
				Quantity:       cmd.Quantity,
				Notes:          cmd.Notes,
			})
			if err != nil {
				c.logger.Error("Failed to place order", zap.Error(err))
				// Domain rejections are final; do not requeue.
				msg.Nack(false, false)
				continue
			}

			c.logger.Info("Order placed from command",
				zap.Uint64("order_id", o.ID),
				zap.String("buyer", cmd.Actor))
			msg.Ack(false)
		}
	}
}

func (c *Consumer) consumeExpiries(ctx context.Context, msgs <-chan amqp.Delivery) {
	for {
		select {
		case <-c.done:
			return
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				c.logger.Warn("Expiry command channel closed")
				return
			}

			var cmd ExpireOrderCommand
			if err := json.Unmarshal(msg.Body, &cmd); err != nil {
				c.logger.Error("Failed to unmarshal ExpireOrderCommand", zap.Error(err))
				msg.Nack(false, false)
				continue
			}

			if _, err := c.svc.CancelExpiredOrder(cmd.Actor, cmd.OrderID); err != nil {
				c.logger.Error("Failed to expire order",
					zap.Uint64("order_id", cmd.OrderID), zap.Error(err))
				msg.Nack(false, false)
				continue
			}

			msg.Ack(false)
		}
	}
}

// Close closes the consumer.
func (c *Consumer) Close() error {
	close(c.done)
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
