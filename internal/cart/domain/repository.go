package domain

import (
	"context"
	"errors"
)

var (
	ErrEntryNotFound = errors.New("cart item not found")
	// ErrProductUnavailable 商品不存在或已下架
	ErrProductUnavailable = errors.New("product not found or inactive")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInvalidQuantity    = errors.New("quantity must be positive")
)

// CartRepository 购物车仓储接口
type CartRepository interface {
	Save(ctx context.Context, entry *CartEntry) error
	// GetEntry 查 (customer, product) 条目，未找到返回 (nil, nil)
	GetEntry(ctx context.Context, customerID, productID uint) (*CartEntry, error)
	// ListByCustomer 返回条目并带出商品与图片
	ListByCustomer(ctx context.Context, customerID uint) ([]*CartEntry, error)
	Delete(ctx context.Context, entryID uint) error
	// ClearByCustomer 清空顾客整车，下单流程在事务内调用
	ClearByCustomer(ctx context.Context, customerID uint) error
}
