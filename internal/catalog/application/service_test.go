package application

import (
	"context"
	"mime/multipart"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/marginalfriend/my-garage/internal/catalog/domain"
)

type mockCatalogRepo struct {
	categories map[uint]*domain.Category
	products   map[uint]*domain.Product
	orderLines map[uint]int64
	nextID     uint
}

func newMockCatalogRepo() *mockCatalogRepo {
	return &mockCatalogRepo{
		categories: make(map[uint]*domain.Category),
		products:   make(map[uint]*domain.Product),
		orderLines: make(map[uint]int64),
		nextID:     1,
	}
}

func (m *mockCatalogRepo) id() uint {
	id := m.nextID
	m.nextID++
	return id
}

func (m *mockCatalogRepo) SaveCategory(_ context.Context, category *domain.Category) error {
	if category.ID == 0 {
		category.ID = m.id()
	}
	m.categories[category.ID] = category
	return nil
}

func (m *mockCatalogRepo) GetCategory(_ context.Context, id uint) (*domain.Category, error) {
	category, ok := m.categories[id]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	return category, nil
}

func (m *mockCatalogRepo) ListCategories(_ context.Context) ([]*domain.Category, error) {
	var out []*domain.Category
	for _, c := range m.categories {
		out = append(out, c)
	}
	return out, nil
}

func (m *mockCatalogRepo) DeleteCategory(_ context.Context, id uint) error {
	delete(m.categories, id)
	return nil
}

func (m *mockCatalogRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *mockCatalogRepo) SaveProduct(_ context.Context, product *domain.Product) error {
	if product.ID == 0 {
		product.ID = m.id()
	}
	m.products[product.ID] = product
	return nil
}

func (m *mockCatalogRepo) GetProduct(_ context.Context, id uint) (*domain.Product, error) {
	product, ok := m.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return product, nil
}

func (m *mockCatalogRepo) ListProducts(_ context.Context, filter domain.ProductFilter) ([]*domain.Product, int64, error) {
	var out []*domain.Product
	for _, p := range m.products {
		if filter.CategoryID != 0 && p.CategoryID != filter.CategoryID {
			continue
		}
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (m *mockCatalogRepo) DeleteProduct(_ context.Context, id uint) error {
	delete(m.products, id)
	return nil
}

func (m *mockCatalogRepo) AddImages(_ context.Context, images []domain.Image) error {
	for _, image := range images {
		product, ok := m.products[image.ProductID]
		if !ok {
			return domain.ErrProductNotFound
		}
		image.ID = m.id()
		product.Images = append(product.Images, image)
	}
	return nil
}

func (m *mockCatalogRepo) DeleteImages(_ context.Context, imageIDs []uint) error {
	drop := make(map[uint]bool, len(imageIDs))
	for _, id := range imageIDs {
		drop[id] = true
	}
	for _, product := range m.products {
		kept := product.Images[:0]
		for _, image := range product.Images {
			if !drop[image.ID] {
				kept = append(kept, image)
			}
		}
		product.Images = kept
	}
	return nil
}

func (m *mockCatalogRepo) DeleteImagesByProduct(_ context.Context, productID uint) error {
	if product, ok := m.products[productID]; ok {
		product.Images = nil
	}
	return nil
}

func (m *mockCatalogRepo) CountOrderLines(_ context.Context, productID uint) (int64, error) {
	return m.orderLines[productID], nil
}

func (m *mockCatalogRepo) DeleteCartEntriesByProduct(_ context.Context, _ uint) error { return nil }

// mockFileStore 记录落盘与删除的文件名
type mockFileStore struct {
	saved   int
	removed []string
}

func (m *mockFileStore) Save(file *multipart.FileHeader) (string, error) {
	m.saved++
	return "/uploads/" + file.Filename, nil
}

func (m *mockFileStore) Remove(url string) error {
	m.removed = append(m.removed, url)
	return nil
}

func newCatalogFixture(t *testing.T) (*CatalogService, *mockCatalogRepo, *mockFileStore) {
	t.Helper()
	repo := newMockCatalogRepo()
	files := &mockFileStore{}
	svc := NewCatalogService(repo, repo, files)

	require.NoError(t, repo.SaveCategory(context.Background(), &domain.Category{Name: "Brakes", IsActive: true}))
	return svc, repo, files
}

func TestCreateProduct_Validation(t *testing.T) {
	svc, _, _ := newCatalogFixture(t)

	_, err := svc.CreateProduct(context.Background(), CreateProductCommand{
		CategoryID: 1, Name: "Pad", Price: decimal.Zero, Stock: 1,
	})
	require.ErrorIs(t, err, domain.ErrInvalidPrice)

	_, err = svc.CreateProduct(context.Background(), CreateProductCommand{
		CategoryID: 1, Name: "Pad", Price: decimal.RequireFromString("10"), Stock: -1,
	})
	require.ErrorIs(t, err, domain.ErrInvalidStock)

	_, err = svc.CreateProduct(context.Background(), CreateProductCommand{
		CategoryID: 99, Name: "Pad", Price: decimal.RequireFromString("10"), Stock: 1,
	})
	require.ErrorIs(t, err, domain.ErrCategoryNotFound)
}

func TestCreateProduct_SavesImagesAndActivates(t *testing.T) {
	svc, _, files := newCatalogFixture(t)

	product, err := svc.CreateProduct(context.Background(), CreateProductCommand{
		CategoryID: 1,
		Name:       "Brake Pad",
		Price:      decimal.RequireFromString("25.50"),
		Stock:      10,
		Files: []*multipart.FileHeader{
			{Filename: "front.jpg"},
			{Filename: "back.jpg"},
		},
	})
	require.NoError(t, err)
	require.True(t, product.IsActive)
	require.Len(t, product.Images, 2)
	require.Equal(t, 2, files.saved)
}

func TestUpdateProduct_KeepsOnlyListedImages(t *testing.T) {
	svc, repo, files := newCatalogFixture(t)

	product, err := svc.CreateProduct(context.Background(), CreateProductCommand{
		CategoryID: 1,
		Name:       "Brake Pad",
		Price:      decimal.RequireFromString("25.50"),
		Stock:      10,
		Files: []*multipart.FileHeader{
			{Filename: "front.jpg"},
			{Filename: "back.jpg"},
		},
	})
	require.NoError(t, err)

	keepID := product.Images[0].ID
	droppedURL := product.Images[1].URL

	updated, err := svc.UpdateProduct(context.Background(), UpdateProductCommand{
		ID:           product.ID,
		CategoryID:   1,
		Name:         "Brake Pad v2",
		Price:        decimal.RequireFromString("27.00"),
		Stock:        8,
		IsActive:     true,
		KeepImageIDs: []uint{keepID},
		Files:        []*multipart.FileHeader{{Filename: "side.jpg"}},
	})
	require.NoError(t, err)
	require.Equal(t, "Brake Pad v2", updated.Name)
	require.Len(t, updated.Images, 2)
	require.Contains(t, files.removed, droppedURL)

	stored, err := repo.GetProduct(context.Background(), product.ID)
	require.NoError(t, err)
	require.Equal(t, 8, stored.Stock)
}

func TestDeleteProduct_RefusedWhenOrderLinesExist(t *testing.T) {
	svc, repo, _ := newCatalogFixture(t)

	product, err := svc.CreateProduct(context.Background(), CreateProductCommand{
		CategoryID: 1, Name: "Pad", Price: decimal.RequireFromString("10"), Stock: 1,
	})
	require.NoError(t, err)

	repo.orderLines[product.ID] = 3
	err = svc.DeleteProduct(context.Background(), product.ID)
	require.ErrorIs(t, err, domain.ErrProductReferenced)
	_, err = repo.GetProduct(context.Background(), product.ID)
	require.NoError(t, err)

	repo.orderLines[product.ID] = 0
	require.NoError(t, svc.DeleteProduct(context.Background(), product.ID))
	_, err = repo.GetProduct(context.Background(), product.ID)
	require.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestDeleteProduct_RemovesImageFiles(t *testing.T) {
	svc, _, files := newCatalogFixture(t)

	product, err := svc.CreateProduct(context.Background(), CreateProductCommand{
		CategoryID: 1,
		Name:       "Pad",
		Price:      decimal.RequireFromString("10"),
		Stock:      1,
		Files:      []*multipart.FileHeader{{Filename: "front.jpg"}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(context.Background(), product.ID))
	require.Contains(t, files.removed, "/uploads/front.jpg")
}

func TestUpdateCategory(t *testing.T) {
	svc, _, _ := newCatalogFixture(t)

	category, err := svc.UpdateCategory(context.Background(), 1, "Suspension", false)
	require.NoError(t, err)
	require.Equal(t, "Suspension", category.Name)
	require.False(t, category.IsActive)

	_, err = svc.UpdateCategory(context.Background(), 99, "X", true)
	require.ErrorIs(t, err, domain.ErrCategoryNotFound)
}
