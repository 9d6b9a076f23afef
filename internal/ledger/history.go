package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies how a settlement came about.
type TransactionType int

const (
	TransactionDirect TransactionType = iota
	TransactionOrder
	TransactionSpot
)

// String returns the string representation
func (t TransactionType) String() string {
	switch t {
	case TransactionDirect:
		return "direct_transfer"
	case TransactionOrder:
		return "order_settlement"
	case TransactionSpot:
		return "spot_purchase"
	default:
		return "unknown"
	}
}

// TransactionTypeFromString parses the wire form produced by String.
func TransactionTypeFromString(s string) (TransactionType, error) {
	switch s {
	case "direct_transfer":
		return TransactionDirect, nil
	case "order_settlement":
		return TransactionOrder, nil
	case "spot_purchase":
		return TransactionSpot, nil
	default:
		return 0, fmt.Errorf("unknown transaction type %q: %w", s, ErrValidation)
	}
}

// Transaction is an immutable record appended whenever ownership of product
// quantity settles. It exists purely for audit and query.
type Transaction struct {
	ID         uint64          `json:"id"`
	Buyer      string          `json:"buyer"`
	Seller     string          `json:"seller"`
	ProductID  uint64          `json:"productId"`
	Quantity   int64           `json:"quantity"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Type       TransactionType `json:"type"`
	Timestamp  time.Time       `json:"timestamp"`
	Status     string          `json:"status"`
}

func (t *Transaction) createdEvent() TransactionCreatedEvent {
	return TransactionCreatedEvent{
		TransactionID: t.ID,
		Buyer:         t.Buyer,
		Seller:        t.Seller,
		ProductID:     t.ProductID,
		Quantity:      t.Quantity,
		TotalPrice:    t.TotalPrice,
		Type:          t.Type.String(),
	}
}

// appendTransactionLocked records a settled transfer. Cannot fail; callers
// invoke it only after all validation has passed.
func (l *Ledger) appendTransactionLocked(buyer, seller string, productID uint64, quantity int64, total decimal.Decimal, typ TransactionType, now time.Time) *Transaction {
	txn := &Transaction{
		ID:         uint64(len(l.transactions) + 1),
		Buyer:      buyer,
		Seller:     seller,
		ProductID:  productID,
		Quantity:   quantity,
		TotalPrice: total,
		Type:       typ,
		Timestamp:  now,
		Status:     "settled",
	}
	l.transactions = append(l.transactions, txn)
	return txn
}

// GetTransaction returns a copy of the transaction record.
func (l *Ledger) GetTransaction(id uint64) (Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if id == 0 || id > uint64(len(l.transactions)) {
		return Transaction{}, fmt.Errorf("transaction %d: %w", id, ErrNotFound)
	}
	return *l.transactions[id-1], nil
}

// TransactionsByCompany returns every transaction where the address is buyer
// or seller, oldest first.
func (l *Ledger) TransactionsByCompany(addr string) []Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Transaction
	for _, t := range l.transactions {
		if t.Buyer == addr || t.Seller == addr {
			out = append(out, *t)
		}
	}
	return out
}

// TransactionsByProduct returns every transaction touching the product,
// oldest first.
func (l *Ledger) TransactionsByProduct(productID uint64) []Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Transaction
	for _, t := range l.transactions {
		if t.ProductID == productID {
			out = append(out, *t)
		}
	}
	return out
}
