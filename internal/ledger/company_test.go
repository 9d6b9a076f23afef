package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainware/supplyledger/pkg/eventbus"
)

func TestRegisterCompany(t *testing.T) {
	l := New(WithClock(NewManualClock(testStart)))

	c, err := l.RegisterCompany(addrMill, "Mill Co")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), c.ID)
	assert.Equal(t, addrMill, c.Address)
	assert.Equal(t, "Mill Co", c.Name)
	assert.Equal(t, testStart, c.RegisteredAt)
	assert.True(t, l.IsRegistered(addrMill))
}

func TestRegisterCompany_Validation(t *testing.T) {
	l := New()

	tests := []struct {
		name    string
		address string
		company string
		wantErr error
	}{
		{"empty address", "", "Mill Co", ErrValidation},
		{"empty name", addrMill, "", ErrValidation},
		{"blank name", addrMill, "   ", ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.RegisterCompany(tt.address, tt.company)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRegisterCompany_Duplicate(t *testing.T) {
	l := New()

	_, err := l.RegisterCompany(addrMill, "Mill Co")
	require.NoError(t, err)

	_, err = l.RegisterCompany(addrMill, "Other Name")
	assert.ErrorIs(t, err, ErrDuplicateRegistration)
}

func TestUpdateCompanyDetails(t *testing.T) {
	l, clk := newTestLedger(t)
	clk.Advance(time.Hour)

	c, err := l.UpdateCompanyDetails(addrMill, "Mill Co Renamed", "")
	require.NoError(t, err)
	assert.Equal(t, "Mill Co Renamed", c.Name)
	assert.Equal(t, addrMill, c.Address)
	assert.Equal(t, clk.Now(), c.UpdatedAt)
}

func TestUpdateCompanyDetails_Rekey(t *testing.T) {
	l, _ := newTestLedger(t)

	c, err := l.UpdateCompanyDetails(addrMill, "Mill Co", "0xmill-new")
	require.NoError(t, err)
	assert.Equal(t, "0xmill-new", c.Address)

	assert.False(t, l.IsRegistered(addrMill))
	assert.True(t, l.IsRegistered("0xmill-new"))

	// The record keeps its id across the re-key.
	got, err := l.GetCompany("0xmill-new")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
}

func TestUpdateCompanyDetails_RekeyFollowsOwnership(t *testing.T) {
	l, _ := newTestLedger(t)
	p := mustCreateProduct(t, l, addrMill, "Wheat", 100, 1)
	rel := mustAcceptedRelationship(t, l, addrMill, addrBakery, p.ID, 2)
	order, err := l.PlaceOrder(addrBakery, PlaceOrderInput{
		Origin:         OriginRelationship,
		RelationshipID: rel.ID,
		Quantity:       10,
	})
	require.NoError(t, err)

	_, err = l.UpdateCompanyDetails(addrMill, "Mill Co", "0xmill-new")
	require.NoError(t, err)

	// The company keeps control of its inventory at the new address.
	products := l.ProductsByOwner("0xmill-new")
	require.Len(t, products, 1)
	assert.Equal(t, p.ID, products[0].ID)

	_, err = l.ListProductForSale("0xmill-new", p.ID, 20, decimal.NewFromInt(2))
	require.NoError(t, err)

	// Open relationships and orders follow the company too.
	relAfter, err := l.GetRelationship(rel.ID)
	require.NoError(t, err)
	assert.Equal(t, "0xmill-new", relAfter.Supplier)

	orderAfter, err := l.GetOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, "0xmill-new", orderAfter.Seller)
	_, err = l.ApproveOrder("0xmill-new", order.ID)
	require.NoError(t, err)

	// The freed address can re-register but holds no residual rights over
	// the re-keyed company's entities.
	_, err = l.RegisterCompany(addrMill, "Mallory")
	require.NoError(t, err)
	_, err = l.TransferProduct(addrMill, p.ID, addrBakery, 100)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, l.ProductsByOwner(addrMill))
}

func TestUpdateCompanyDetails_Errors(t *testing.T) {
	l, _ := newTestLedger(t)

	_, err := l.UpdateCompanyDetails(addrUnknown, "Name", "")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = l.UpdateCompanyDetails(addrMill, "", "")
	assert.ErrorIs(t, err, ErrValidation)

	// Cannot re-key onto an address someone else holds.
	_, err = l.UpdateCompanyDetails(addrMill, "Mill Co", addrBakery)
	assert.ErrorIs(t, err, ErrDuplicateRegistration)
}

func TestGetCompany_NotFound(t *testing.T) {
	l := New()
	_, err := l.GetCompany(addrUnknown)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCompanies_RegistrationOrder(t *testing.T) {
	l, _ := newTestLedger(t)

	companies := l.Companies()
	require.Len(t, companies, 4)
	for i, c := range companies {
		assert.Equal(t, uint64(i+1), c.ID)
	}
}

func TestRegisterCompany_PublishesEvent(t *testing.T) {
	bus := eventbus.New()
	var got []CompanyRegisteredEvent
	bus.SubscribeFunc(func(ev CompanyRegisteredEvent) {
		got = append(got, ev)
	})

	l := New(WithEventBus(bus))
	_, err := l.RegisterCompany(addrMill, "Mill Co")
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, addrMill, got[0].Address)
	assert.Equal(t, "Mill Co", got[0].Name)
}

// A subscriber that calls back into the ledger must not deadlock: events are
// published after the operation's lock is released.
func TestEventHandler_ReentrantCall(t *testing.T) {
	bus := eventbus.New()
	l := New(WithEventBus(bus))

	var sawRegistered bool
	bus.SubscribeFunc(func(ev CompanyRegisteredEvent) {
		sawRegistered = l.IsRegistered(ev.Address)
	})

	_, err := l.RegisterCompany(addrMill, "Mill Co")
	require.NoError(t, err)
	assert.True(t, sawRegistered)
}
