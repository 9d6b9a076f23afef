package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildSupplyChain creates a two-level chain:
//
//	wheat (farm, raw) --40--> flour (mill) --25--> bread (bakery)
//	water (mill, raw) --10--^                 ^--5-- yeast (bakery, raw)
//
// flour is transferred in full from mill to bakery before baking.
func buildSupplyChain(t *testing.T, l *Ledger) (wheat, water, flour, yeast, bread Product) {
	t.Helper()

	wheat = mustCreateProduct(t, l, addrFarm, "Wheat", 500, 1)
	_, err := l.TransferProduct(addrFarm, wheat.ID, addrMill, 500)
	require.NoError(t, err)

	water = mustCreateProduct(t, l, addrMill, "Water", 100, 0)

	flour, err = l.ManufactureProduct(addrMill, ProductSpec{
		Name: "Flour", Quantity: 50, PricePerUnit: decimal.NewFromInt(2),
	}, []uint64{wheat.ID, water.ID}, []int64{40, 10})
	require.NoError(t, err)

	_, err = l.TransferProduct(addrMill, flour.ID, addrBakery, 50)
	require.NoError(t, err)

	yeast = mustCreateProduct(t, l, addrBakery, "Yeast", 20, 1)

	bread, err = l.ManufactureProduct(addrBakery, ProductSpec{
		Name: "Bread", Quantity: 100, PricePerUnit: decimal.NewFromInt(4),
	}, []uint64{flour.ID, yeast.ID}, []int64{25, 5})
	require.NoError(t, err)
	return
}

func TestGetProductTree(t *testing.T) {
	l, _ := newTestLedger(t)
	wheat, water, flour, yeast, bread := buildSupplyChain(t, l)

	tree, err := l.GetProductTree(bread.ID)
	require.NoError(t, err)

	assert.Equal(t, bread.ID, tree.Product.ID)
	assert.Zero(t, tree.QuantityUsed, "root has no inbound edge")
	require.Len(t, tree.Components, 2)

	flourNode := tree.Components[0]
	assert.Equal(t, flour.ID, flourNode.Product.ID)
	assert.Equal(t, int64(25), flourNode.QuantityUsed)
	assert.Equal(t, addrBakery, flourNode.Supplier)

	yeastNode := tree.Components[1]
	assert.Equal(t, yeast.ID, yeastNode.Product.ID)
	assert.Equal(t, int64(5), yeastNode.QuantityUsed)
	assert.Empty(t, yeastNode.Components)

	// Second level: flour was made from wheat and water.
	require.Len(t, flourNode.Components, 2)
	assert.Equal(t, wheat.ID, flourNode.Components[0].Product.ID)
	assert.Equal(t, int64(40), flourNode.Components[0].QuantityUsed)
	assert.Equal(t, water.ID, flourNode.Components[1].Product.ID)
}

func TestGetProductTree_RawProduct(t *testing.T) {
	l, _ := newTestLedger(t)
	wheat := mustCreateProduct(t, l, addrFarm, "Wheat", 500, 1)

	tree, err := l.GetProductTree(wheat.ID)
	require.NoError(t, err)
	assert.Equal(t, wheat.ID, tree.Product.ID)
	assert.Empty(t, tree.Components)
}

func TestGetProductTree_NotFound(t *testing.T) {
	l, _ := newTestLedger(t)
	_, err := l.GetProductTree(99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetRawMaterialSources(t *testing.T) {
	l, _ := newTestLedger(t)
	wheat, water, _, yeast, bread := buildSupplyChain(t, l)

	sources, err := l.GetRawMaterialSources(bread.ID)
	require.NoError(t, err)

	byID := make(map[uint64]RawMaterialSource)
	for _, s := range sources {
		byID[s.ProductID] = s
	}
	require.Len(t, byID, 3)
	assert.Equal(t, int64(40), byID[wheat.ID].QuantityUsed)
	assert.Equal(t, int64(10), byID[water.ID].QuantityUsed)
	assert.Equal(t, int64(5), byID[yeast.ID].QuantityUsed)
	assert.Equal(t, "Wheat", byID[wheat.ID].Name)
}

func TestGetRawMaterialSources_RawRoot(t *testing.T) {
	l, _ := newTestLedger(t)
	wheat := mustCreateProduct(t, l, addrFarm, "Wheat", 500, 1)

	sources, err := l.GetRawMaterialSources(wheat.ID)
	require.NoError(t, err)
	assert.Empty(t, sources)
}

// A split lot of a raw product is itself a component-bearing record; the
// traversal must follow it down to the original raw lot.
func TestGetRawMaterialSources_ThroughSplitLot(t *testing.T) {
	l, _ := newTestLedger(t)

	wheat := mustCreateProduct(t, l, addrFarm, "Wheat", 500, 1)
	lotID, err := l.TransferProduct(addrFarm, wheat.ID, addrMill, 200)
	require.NoError(t, err)

	flour, err := l.ManufactureProduct(addrMill, ProductSpec{
		Name: "Flour", Quantity: 50, PricePerUnit: decimal.NewFromInt(2),
	}, []uint64{lotID}, []int64{150})
	require.NoError(t, err)

	sources, err := l.GetRawMaterialSources(flour.ID)
	require.NoError(t, err)

	// The leaf is the original wheat record, not the intermediate split lot.
	require.Len(t, sources, 1)
	assert.Equal(t, wheat.ID, sources[0].ProductID)
}

// Aggregation: two paths from the same raw product sum their quantities.
func TestGetRawMaterialSources_AggregatesDuplicates(t *testing.T) {
	l, _ := newTestLedger(t)

	wheat := mustCreateProduct(t, l, addrMill, "Wheat", 500, 1)

	doughA, err := l.ManufactureProduct(addrMill, ProductSpec{
		Name: "Dough A", Quantity: 10, PricePerUnit: decimal.NewFromInt(2),
	}, []uint64{wheat.ID}, []int64{30})
	require.NoError(t, err)

	doughB, err := l.ManufactureProduct(addrMill, ProductSpec{
		Name: "Dough B", Quantity: 10, PricePerUnit: decimal.NewFromInt(2),
	}, []uint64{wheat.ID}, []int64{20})
	require.NoError(t, err)

	mixed, err := l.ManufactureProduct(addrMill, ProductSpec{
		Name: "Mixed Batch", Quantity: 5, PricePerUnit: decimal.NewFromInt(6),
	}, []uint64{doughA.ID, doughB.ID}, []int64{10, 10})
	require.NoError(t, err)

	sources, err := l.GetRawMaterialSources(mixed.ID)
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, wheat.ID, sources[0].ProductID)
	assert.Equal(t, int64(50), sources[0].QuantityUsed)
}

func TestGetRawMaterialSources_SplitsBySupplier(t *testing.T) {
	l, _ := newTestLedger(t)

	wheat := mustCreateProduct(t, l, addrMill, "Wheat", 100, 1)

	doughA, err := l.ManufactureProduct(addrMill, ProductSpec{
		Name: "Dough A", Quantity: 10, PricePerUnit: decimal.NewFromInt(2),
	}, []uint64{wheat.ID}, []int64{30})
	require.NoError(t, err)

	// The remaining wheat changes hands wholesale (same record id), so the
	// bakery's consumption edge carries a different supplier.
	_, err = l.TransferProduct(addrMill, wheat.ID, addrBakery, 70)
	require.NoError(t, err)
	doughB, err := l.ManufactureProduct(addrBakery, ProductSpec{
		Name: "Dough B", Quantity: 10, PricePerUnit: decimal.NewFromInt(2),
	}, []uint64{wheat.ID}, []int64{20})
	require.NoError(t, err)

	_, err = l.TransferProduct(addrMill, doughA.ID, addrGrocer, 10)
	require.NoError(t, err)
	_, err = l.TransferProduct(addrBakery, doughB.ID, addrGrocer, 10)
	require.NoError(t, err)

	mixed, err := l.ManufactureProduct(addrGrocer, ProductSpec{
		Name: "Mixed Batch", Quantity: 5, PricePerUnit: decimal.NewFromInt(6),
	}, []uint64{doughA.ID, doughB.ID}, []int64{10, 10})
	require.NoError(t, err)

	sources, err := l.GetRawMaterialSources(mixed.ID)
	require.NoError(t, err)
	require.Len(t, sources, 2)

	bySupplier := map[string]RawMaterialSource{}
	for _, s := range sources {
		assert.Equal(t, wheat.ID, s.ProductID)
		bySupplier[s.Supplier] = s
	}
	assert.Equal(t, int64(30), bySupplier[addrMill].QuantityUsed)
	assert.Equal(t, int64(20), bySupplier[addrBakery].QuantityUsed)
}
