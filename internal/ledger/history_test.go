package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionHistory_AcrossSettlementPaths(t *testing.T) {
	l, _ := newTestLedger(t)
	p := mustCreateProduct(t, l, addrMill, "Flour", 200, 2)

	// Direct transfer.
	_, err := l.TransferProduct(addrMill, p.ID, addrBakery, 10)
	require.NoError(t, err)

	// Spot purchase.
	lst, err := l.ListProductForSale(addrMill, p.ID, 50, decimal.NewFromInt(3))
	require.NoError(t, err)
	_, err = l.BuyFromSpotMarket(addrGrocer, lst.ID, 20)
	require.NoError(t, err)

	// Order settlement.
	rel := mustAcceptedRelationship(t, l, addrMill, addrBakery, p.ID, 2)
	o, err := l.PlaceOrder(addrBakery, PlaceOrderInput{Origin: OriginRelationship, RelationshipID: rel.ID, Quantity: 30})
	require.NoError(t, err)
	_, err = l.ApproveOrder(addrMill, o.ID)
	require.NoError(t, err)
	_, err = l.PayForOrder(addrBakery, o.ID)
	require.NoError(t, err)

	all := l.TransactionsByProduct(p.ID)
	require.Len(t, all, 3)
	assert.Equal(t, TransactionDirect, all[0].Type)
	assert.Equal(t, TransactionSpot, all[1].Type)
	assert.Equal(t, TransactionOrder, all[2].Type)

	// Ids are assigned in settlement order.
	for i, txn := range all {
		assert.Equal(t, uint64(i+1), txn.ID)
	}

	assert.Len(t, l.TransactionsByCompany(addrMill), 3)
	assert.Len(t, l.TransactionsByCompany(addrBakery), 2)
	assert.Len(t, l.TransactionsByCompany(addrGrocer), 1)
	assert.Empty(t, l.TransactionsByCompany(addrFarm))
}

func TestGetTransaction(t *testing.T) {
	l, _ := newTestLedger(t)
	p := mustCreateProduct(t, l, addrMill, "Flour", 100, 2)

	_, err := l.TransferProduct(addrMill, p.ID, addrBakery, 10)
	require.NoError(t, err)

	txn, err := l.GetTransaction(1)
	require.NoError(t, err)
	assert.Equal(t, "settled", txn.Status)
	assert.Equal(t, p.ID, txn.ProductID)

	_, err = l.GetTransaction(0)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = l.GetTransaction(2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTransactionTypeFromString(t *testing.T) {
	for _, typ := range []TransactionType{TransactionDirect, TransactionOrder, TransactionSpot} {
		got, err := TransactionTypeFromString(typ.String())
		require.NoError(t, err)
		assert.Equal(t, typ, got)
	}

	_, err := TransactionTypeFromString("bogus")
	assert.ErrorIs(t, err, ErrValidation)
}
