package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/chainware/supplyledger/internal/ledger"
)

// Store defines the contract for caching and persisting ledger read models.
// The in-memory ledger remains the source of truth; the store is a durable
// mirror fed from the event bus.
type Store interface {
	RecordTransaction(ctx context.Context, tx ledger.Transaction) error
	RecordDeliveryEvent(ctx context.Context, orderID uint64, ev ledger.DeliveryEvent) error
	UpsertProductSnapshot(ctx context.Context, p ledger.Product) error
	TransactionsByCompany(ctx context.Context, address string) ([]ledger.Transaction, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, dest any) error
	HealthCheck(ctx context.Context) error
	Close() error
}

type HybridStore struct {
	redis  *redis.Client
	PG     *pgxpool.Pool
	logger *zap.Logger
}

type PGPoolConfig struct {
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

// NewHybrid creates a Redis-first, Postgres-backed store.
func NewHybrid(redisAddr string, redisDB int, pgURL string, pgPoolConfig PGPoolConfig, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
		DB:   redisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	var pgPool *pgxpool.Pool
	if pgURL != "" {
		cfg, err := pgxpool.ParseConfig(pgURL)
		if err != nil {
			return nil, fmt.Errorf("invalid pg config: %w", err)
		}
		if pgPoolConfig.MaxConns > 0 {
			cfg.MaxConns = pgPoolConfig.MaxConns
		}
		if pgPoolConfig.MinConns > 0 {
			cfg.MinConns = pgPoolConfig.MinConns
		}
		if pgPoolConfig.MaxConnLifetime > 0 {
			cfg.MaxConnLifetime = pgPoolConfig.MaxConnLifetime
		}
		if pgPoolConfig.MaxConnIdleTime > 0 {
			cfg.MaxConnIdleTime = pgPoolConfig.MaxConnIdleTime
		}
		if pgPoolConfig.HealthCheckPeriod > 0 {
			cfg.HealthCheckPeriod = pgPoolConfig.HealthCheckPeriod
		}
		pgPool, err = pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
	}

	return &HybridStore{redis: rdb, PG: pgPool, logger: logger}, nil
}

// RecordTransaction inserts an immutable row into ledger.transaction_event.
func (s *HybridStore) RecordTransaction(ctx context.Context, tx ledger.Transaction) error {
	if s.PG == nil {
		return nil
	}
	_, err := s.PG.Exec(ctx, `
		INSERT INTO ledger.transaction_event (
			tx_id, tx_type, product_id,
			seller, buyer, quantity, total_price, status, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (tx_id) DO NOTHING
	`, tx.ID, tx.Type.String(), tx.ProductID,
		tx.Seller, tx.Buyer, tx.Quantity, tx.TotalPrice, tx.Status, tx.Timestamp)
	if err != nil {
		s.logger.Error("store.pg.insert_transaction_failed", zap.Error(err))
	}
	return err
}

// RecordDeliveryEvent appends a delivery status row for an order.
func (s *HybridStore) RecordDeliveryEvent(ctx context.Context, orderID uint64, ev ledger.DeliveryEvent) error {
	if s.PG == nil {
		return nil
	}
	_, err := s.PG.Exec(ctx, `
		INSERT INTO ledger.delivery_event (
			order_id, status, description, updated_by, recorded_at
		)
		VALUES ($1, $2, $3, $4, $5)
	`, orderID, ev.Status, ev.Description, ev.UpdatedBy, ev.Timestamp)
	if err != nil {
		s.logger.Error("store.pg.insert_delivery_failed", zap.Error(err))
	}
	return err
}

// UpsertProductSnapshot mirrors the latest product state into the projection table.
func (s *HybridStore) UpsertProductSnapshot(ctx context.Context, p ledger.Product) error {
	if s.PG == nil {
		return nil
	}
	_, err := s.PG.Exec(ctx, `
		INSERT INTO ledger.product_snapshot (
			product_id, name, owner, quantity, price_per_unit, is_manufactured, as_of
		)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (product_id)
		DO UPDATE SET
			owner = EXCLUDED.owner,
			quantity = EXCLUDED.quantity,
			price_per_unit = EXCLUDED.price_per_unit,
			as_of = NOW();
	`, p.ID, p.Name, p.CurrentOwner, p.Quantity, p.PricePerUnit, p.IsManufactured)
	if err != nil {
		s.logger.Error("store.pg.snapshot_update_failed", zap.Error(err))
	}
	return err
}

// TransactionsByCompany reads trade history from the projection, newest first.
func (s *HybridStore) TransactionsByCompany(ctx context.Context, address string) ([]ledger.Transaction, error) {
	if s.PG == nil {
		return nil, fmt.Errorf("postgres unavailable")
	}
	rows, err := s.PG.Query(ctx, `
		SELECT tx_id, tx_type, product_id,
		       seller, buyer, quantity, total_price, status, created_at
		FROM ledger.transaction_event
		WHERE seller = $1 OR buyer = $1
		ORDER BY created_at DESC;
	`, address)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []ledger.Transaction
	for rows.Next() {
		var tx ledger.Transaction
		var txType string
		if err := rows.Scan(&tx.ID, &txType, &tx.ProductID,
			&tx.Seller, &tx.Buyer, &tx.Quantity, &tx.TotalPrice, &tx.Status, &tx.Timestamp); err != nil {
			return nil, err
		}
		if tx.Type, err = ledger.TransactionTypeFromString(txType); err != nil {
			return nil, err
		}
		results = append(results, tx)
	}
	return results, rows.Err()
}

func (s *HybridStore) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, key, data, ttl).Err()
}

func (s *HybridStore) GetJSON(ctx context.Context, key string, dest any) error {
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// IsCacheMiss reports whether an error from GetJSON means the key was absent.
func IsCacheMiss(err error) bool {
	return errors.Is(err, redis.Nil)
}

func (s *HybridStore) HealthCheck(ctx context.Context) error {
	if s.redis == nil {
		return fmt.Errorf("redis not initialized")
	}
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	if s.PG != nil {
		if err := s.PG.Ping(ctx); err != nil {
			return fmt.Errorf("postgres ping failed: %w", err)
		}
	}
	return nil
}

func (s *HybridStore) Close() error {
	if s.PG != nil {
		s.PG.Close()
	}
	if s.redis != nil {
		return s.redis.Close()
	}
	return nil
}
