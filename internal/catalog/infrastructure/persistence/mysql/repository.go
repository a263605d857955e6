package mysql

import (
	"context"
	"errors"

	"github.com/wyfcoding/pkg/contextx"
	"gorm.io/gorm"

	"github.com/marginalfriend/my-garage/internal/catalog/domain"
)

type catalogRepository struct{ db *gorm.DB }

// NewCatalogRepository 创建分类与商品仓储实例
func NewCatalogRepository(db *gorm.DB) *catalogRepository {
	return &catalogRepository{db: db}
}

var (
	_ domain.CategoryRepository = (*catalogRepository)(nil)
	_ domain.ProductRepository  = (*catalogRepository)(nil)
)

func (r *catalogRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := contextx.WithTx(ctx, tx)
		return fn(txCtx)
	})
}

func (r *catalogRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextx.GetTx(ctx).(*gorm.DB); ok {
		return tx
	}
	return r.db
}

// --- Category ---

func (r *catalogRepository) SaveCategory(ctx context.Context, category *domain.Category) error {
	return r.getDB(ctx).WithContext(ctx).Save(category).Error
}

func (r *catalogRepository) GetCategory(ctx context.Context, id uint) (*domain.Category, error) {
	var category domain.Category
	err := r.getDB(ctx).WithContext(ctx).First(&category, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *catalogRepository) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	var categories []*domain.Category
	err := r.getDB(ctx).WithContext(ctx).Order("id").Find(&categories).Error
	return categories, err
}

func (r *catalogRepository) DeleteCategory(ctx context.Context, id uint) error {
	return r.getDB(ctx).WithContext(ctx).Delete(&domain.Category{}, id).Error
}

// --- Product ---

func (r *catalogRepository) SaveProduct(ctx context.Context, product *domain.Product) error {
	return r.getDB(ctx).WithContext(ctx).Omit("Images", "Category").Save(product).Error
}

func (r *catalogRepository) GetProduct(ctx context.Context, id uint) (*domain.Product, error) {
	var product domain.Product
	err := r.getDB(ctx).WithContext(ctx).Preload("Images").First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *catalogRepository) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, int64, error) {
	db := r.getDB(ctx).WithContext(ctx).Model(&domain.Product{})
	if filter.Name != "" {
		db = db.Where("name LIKE ?", "%"+filter.Name+"%")
	}
	if filter.CategoryID != 0 {
		db = db.Where("category_id = ?", filter.CategoryID)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if offset < 0 {
		offset = 0
	}

	var products []*domain.Product
	err := db.Preload("Images").Preload("Category").
		Order("id").Offset(offset).Limit(filter.Limit).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *catalogRepository) DeleteProduct(ctx context.Context, id uint) error {
	return r.getDB(ctx).WithContext(ctx).Unscoped().Delete(&domain.Product{}, id).Error
}

// --- Image ---

func (r *catalogRepository) AddImages(ctx context.Context, images []domain.Image) error {
	if len(images) == 0 {
		return nil
	}
	return r.getDB(ctx).WithContext(ctx).Create(&images).Error
}

func (r *catalogRepository) DeleteImages(ctx context.Context, imageIDs []uint) error {
	if len(imageIDs) == 0 {
		return nil
	}
	return r.getDB(ctx).WithContext(ctx).Unscoped().Delete(&domain.Image{}, imageIDs).Error
}

func (r *catalogRepository) DeleteImagesByProduct(ctx context.Context, productID uint) error {
	return r.getDB(ctx).WithContext(ctx).Unscoped().
		Where("product_id = ?", productID).Delete(&domain.Image{}).Error
}

// --- 跨上下文引用 ---

func (r *catalogRepository) CountOrderLines(ctx context.Context, productID uint) (int64, error) {
	var count int64
	err := r.getDB(ctx).WithContext(ctx).Table("order_lines").
		Where("product_id = ?", productID).Count(&count).Error
	return count, err
}

func (r *catalogRepository) DeleteCartEntriesByProduct(ctx context.Context, productID uint) error {
	return r.getDB(ctx).WithContext(ctx).
		Exec("DELETE FROM cart_entries WHERE product_id = ?", productID).Error
}
