package domain

import (
	"context"
	"errors"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrProductNotFound  = errors.New("product not found")
	// ErrProductReferenced 商品仍被历史订单明细引用，禁止硬删除
	ErrProductReferenced = errors.New("product is referenced by order lines")
	ErrInvalidPrice      = errors.New("price must be positive")
	ErrInvalidStock      = errors.New("stock must not be negative")
)

// ProductFilter 商品分页查询条件
type ProductFilter struct {
	// 名称模糊匹配，空串不过滤
	Name string
	// 分类过滤，0 不过滤
	CategoryID uint
	Page       int
	Limit      int
}

type CategoryRepository interface {
	SaveCategory(ctx context.Context, category *Category) error
	GetCategory(ctx context.Context, id uint) (*Category, error)
	ListCategories(ctx context.Context) ([]*Category, error)
	DeleteCategory(ctx context.Context, id uint) error
}

type ProductRepository interface {
	// WithTx 在单个事务内执行 fn
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	SaveProduct(ctx context.Context, product *Product) error
	// GetProduct 加载商品及其图片，未找到返回 ErrProductNotFound
	GetProduct(ctx context.Context, id uint) (*Product, error)
	ListProducts(ctx context.Context, filter ProductFilter) ([]*Product, int64, error)
	DeleteProduct(ctx context.Context, id uint) error

	AddImages(ctx context.Context, images []Image) error
	DeleteImages(ctx context.Context, imageIDs []uint) error
	DeleteImagesByProduct(ctx context.Context, productID uint) error

	// CountOrderLines 统计引用该商品的订单明细行数，用于删除保护
	CountOrderLines(ctx context.Context, productID uint) (int64, error)
	// DeleteCartEntriesByProduct 清理引用该商品的购物车条目
	DeleteCartEntriesByProduct(ctx context.Context, productID uint) error
}
