package mysql

import (
	"context"
	"errors"

	"github.com/wyfcoding/pkg/contextx"
	"gorm.io/gorm"

	"github.com/marginalfriend/my-garage/internal/cart/domain"
)

type cartRepository struct{ db *gorm.DB }

func NewCartRepository(db *gorm.DB) domain.CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextx.GetTx(ctx).(*gorm.DB); ok {
		return tx
	}
	return r.db
}

func (r *cartRepository) Save(ctx context.Context, entry *domain.CartEntry) error {
	return r.getDB(ctx).WithContext(ctx).Omit("Product").Save(entry).Error
}

func (r *cartRepository) GetEntry(ctx context.Context, customerID, productID uint) (*domain.CartEntry, error) {
	var entry domain.CartEntry
	err := r.getDB(ctx).WithContext(ctx).
		Where("customer_id = ? AND product_id = ?", customerID, productID).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *cartRepository) ListByCustomer(ctx context.Context, customerID uint) ([]*domain.CartEntry, error) {
	var entries []*domain.CartEntry
	err := r.getDB(ctx).WithContext(ctx).
		Preload("Product").Preload("Product.Images").
		Where("customer_id = ?", customerID).
		Order("id").
		Find(&entries).Error
	return entries, err
}

func (r *cartRepository) Delete(ctx context.Context, entryID uint) error {
	return r.getDB(ctx).WithContext(ctx).Unscoped().Delete(&domain.CartEntry{}, entryID).Error
}

func (r *cartRepository) ClearByCustomer(ctx context.Context, customerID uint) error {
	return r.getDB(ctx).WithContext(ctx).Unscoped().
		Where("customer_id = ?", customerID).Delete(&domain.CartEntry{}).Error
}
