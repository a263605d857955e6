package application

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	auth "github.com/marginalfriend/my-garage/internal/auth/domain"
	"github.com/marginalfriend/my-garage/internal/cart/domain"
	catalog "github.com/marginalfriend/my-garage/internal/catalog/domain"
)

type mockCartRepo struct {
	entries map[uint]*domain.CartEntry
	nextID  uint
}

func newMockCartRepo() *mockCartRepo {
	return &mockCartRepo{entries: make(map[uint]*domain.CartEntry), nextID: 1}
}

func (m *mockCartRepo) Save(_ context.Context, entry *domain.CartEntry) error {
	if entry.ID == 0 {
		entry.ID = m.nextID
		m.nextID++
	}
	m.entries[entry.ID] = entry
	return nil
}

func (m *mockCartRepo) GetEntry(_ context.Context, customerID, productID uint) (*domain.CartEntry, error) {
	for _, e := range m.entries {
		if e.CustomerID == customerID && e.ProductID == productID {
			return e, nil
		}
	}
	return nil, nil
}

func (m *mockCartRepo) ListByCustomer(_ context.Context, customerID uint) ([]*domain.CartEntry, error) {
	var out []*domain.CartEntry
	for _, e := range m.entries {
		if e.CustomerID == customerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockCartRepo) Delete(_ context.Context, entryID uint) error {
	delete(m.entries, entryID)
	return nil
}

func (m *mockCartRepo) ClearByCustomer(_ context.Context, customerID uint) error {
	for id, e := range m.entries {
		if e.CustomerID == customerID {
			delete(m.entries, id)
		}
	}
	return nil
}

type mockProductRepo struct {
	products map[uint]*catalog.Product
}

func (m *mockProductRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *mockProductRepo) SaveProduct(_ context.Context, product *catalog.Product) error {
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepo) GetProduct(_ context.Context, id uint) (*catalog.Product, error) {
	product, ok := m.products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return product, nil
}

func (m *mockProductRepo) ListProducts(_ context.Context, _ catalog.ProductFilter) ([]*catalog.Product, int64, error) {
	return nil, 0, nil
}
func (m *mockProductRepo) DeleteProduct(_ context.Context, _ uint) error         { return nil }
func (m *mockProductRepo) AddImages(_ context.Context, _ []catalog.Image) error  { return nil }
func (m *mockProductRepo) DeleteImages(_ context.Context, _ []uint) error        { return nil }
func (m *mockProductRepo) DeleteImagesByProduct(_ context.Context, _ uint) error { return nil }
func (m *mockProductRepo) CountOrderLines(_ context.Context, _ uint) (int64, error) {
	return 0, nil
}
func (m *mockProductRepo) DeleteCartEntriesByProduct(_ context.Context, _ uint) error { return nil }

type staticResolver struct{ customer *auth.Customer }

func (r staticResolver) ResolveCustomer(_ context.Context, identity auth.Identity) (*auth.Customer, error) {
	if r.customer == nil || r.customer.AccountID != identity.AccountID {
		return nil, auth.ErrCustomerNotFound
	}
	return r.customer, nil
}

func newCartFixture() (*CartService, *mockCartRepo, *mockProductRepo) {
	entries := newMockCartRepo()
	products := &mockProductRepo{products: map[uint]*catalog.Product{
		1: {Model: gorm.Model{ID: 1}, Name: "Spark Plug", Price: decimal.RequireFromString("4.50"), Stock: 5, IsActive: true},
		2: {Model: gorm.Model{ID: 2}, Name: "Old Bumper", Price: decimal.RequireFromString("80.00"), Stock: 5, IsActive: false},
	}}
	customer := &auth.Customer{Model: gorm.Model{ID: 7}, AccountID: 1, Name: "Tester"}
	svc := NewCartService(entries, products, staticResolver{customer: customer})
	return svc, entries, products
}

func identity() auth.Identity {
	return auth.Identity{AccountID: 1, Roles: []auth.RoleName{auth.RoleCustomer}}
}

func TestAddItem_MergesQuantity(t *testing.T) {
	svc, _, _ := newCartFixture()

	entry, err := svc.AddItem(context.Background(), identity(), 1, 2)
	require.NoError(t, err)
	require.Equal(t, 2, entry.Quantity)

	entry, err = svc.AddItem(context.Background(), identity(), 1, 3)
	require.NoError(t, err)
	require.Equal(t, 5, entry.Quantity)

	entries, err := svc.GetCart(context.Background(), identity())
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestAddItem_Validation(t *testing.T) {
	svc, _, _ := newCartFixture()

	_, err := svc.AddItem(context.Background(), identity(), 1, 0)
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = svc.AddItem(context.Background(), identity(), 99, 1)
	require.ErrorIs(t, err, domain.ErrProductUnavailable)

	// 下架商品不可加购
	_, err = svc.AddItem(context.Background(), identity(), 2, 1)
	require.ErrorIs(t, err, domain.ErrProductUnavailable)

	_, err = svc.AddItem(context.Background(), identity(), 1, 6)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	unknown := auth.Identity{AccountID: 42}
	_, err = svc.AddItem(context.Background(), unknown, 1, 1)
	require.ErrorIs(t, err, auth.ErrCustomerNotFound)
}

func TestUpdateItem_ZeroQuantityDeletes(t *testing.T) {
	svc, entries, _ := newCartFixture()

	_, err := svc.AddItem(context.Background(), identity(), 1, 2)
	require.NoError(t, err)

	entry, err := svc.UpdateItem(context.Background(), identity(), 1, 4)
	require.NoError(t, err)
	require.Equal(t, 4, entry.Quantity)

	entry, err = svc.UpdateItem(context.Background(), identity(), 1, 0)
	require.NoError(t, err)
	require.Nil(t, entry)
	require.Empty(t, entries.entries)

	_, err = svc.UpdateItem(context.Background(), identity(), 1, 1)
	require.ErrorIs(t, err, domain.ErrEntryNotFound)
}

func TestRemoveItem(t *testing.T) {
	svc, entries, _ := newCartFixture()

	_, err := svc.AddItem(context.Background(), identity(), 1, 1)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveItem(context.Background(), identity(), 1))
	require.Empty(t, entries.entries)

	err = svc.RemoveItem(context.Background(), identity(), 1)
	require.ErrorIs(t, err, domain.ErrEntryNotFound)
}

func TestGetItem_MissingEntryIsNil(t *testing.T) {
	svc, _, _ := newCartFixture()

	entry, err := svc.GetItem(context.Background(), identity(), 1)
	require.NoError(t, err)
	require.Nil(t, entry)
}
