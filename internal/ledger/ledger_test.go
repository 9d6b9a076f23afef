package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// Addresses reused across the package tests.
const (
	addrMill    = "0xmill"
	addrBakery  = "0xbakery"
	addrGrocer  = "0xgrocer"
	addrFarm    = "0xfarm"
	addrUnknown = "0xnobody"
)

var testStart = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// newTestLedger returns a ledger on a manual clock with the standard test
// companies registered.
func newTestLedger(t *testing.T, opts ...Option) (*Ledger, *ManualClock) {
	t.Helper()
	clk := NewManualClock(testStart)
	l := New(append([]Option{WithClock(clk)}, opts...)...)
	for _, addr := range []string{addrMill, addrBakery, addrGrocer, addrFarm} {
		_, err := l.RegisterCompany(addr, "company "+addr)
		require.NoError(t, err)
	}
	return l, clk
}

func mustCreateProduct(t *testing.T, l *Ledger, owner, name string, qty int64, price int64) Product {
	t.Helper()
	p, err := l.CreateProduct(owner, ProductSpec{
		Name:         name,
		Quantity:     qty,
		PricePerUnit: decimal.NewFromInt(price),
	})
	require.NoError(t, err)
	return p
}

func mustAcceptedRelationship(t *testing.T, l *Ledger, supplier, buyer string, productID uint64, price int64) Relationship {
	t.Helper()
	rel, err := l.RequestRelationship(buyer, supplier, buyer, productID,
		decimal.NewFromInt(price), testStart, testStart.AddDate(0, 6, 0))
	require.NoError(t, err)
	rel, err = l.AcceptRelationship(supplier, rel.ID)
	require.NoError(t, err)
	return rel
}
