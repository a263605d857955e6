package application

import (
	"context"
	"errors"

	auth "github.com/marginalfriend/my-garage/internal/auth/domain"
	"github.com/marginalfriend/my-garage/internal/cart/domain"
	catalog "github.com/marginalfriend/my-garage/internal/catalog/domain"
)

// CustomerResolver 把已验证身份解析为顾客档案
type CustomerResolver interface {
	ResolveCustomer(ctx context.Context, identity auth.Identity) (*auth.Customer, error)
}

// CartService 购物车操作。
// 每个操作先解析顾客档案，解析失败按 NotFound 处理。
type CartService struct {
	entries   domain.CartRepository
	products  catalog.ProductRepository
	customers CustomerResolver
}

func NewCartService(entries domain.CartRepository, products catalog.ProductRepository, customers CustomerResolver) *CartService {
	return &CartService{entries: entries, products: products, customers: customers}
}

// AddItem 加购。已有条目时数量累加，而不是覆盖。
func (s *CartService) AddItem(ctx context.Context, identity auth.Identity, productID uint, quantity int) (*domain.CartEntry, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	customer, err := s.customers.ResolveCustomer(ctx, identity)
	if err != nil {
		return nil, err
	}

	product, err := s.products.GetProduct(ctx, productID)
	if errors.Is(err, catalog.ErrProductNotFound) {
		return nil, domain.ErrProductUnavailable
	}
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, domain.ErrProductUnavailable
	}
	if product.Stock < quantity {
		return nil, domain.ErrInsufficientStock
	}

	entry, err := s.entries.GetEntry(ctx, customer.ID, productID)
	if err != nil {
		return nil, err
	}
	if entry != nil {
		entry.Quantity += quantity
	} else {
		entry = &domain.CartEntry{CustomerID: customer.ID, ProductID: productID, Quantity: quantity}
	}
	if err := s.entries.Save(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// UpdateItem 设置数量，数量小于等于 0 时删除条目（返回 nil 条目）
func (s *CartService) UpdateItem(ctx context.Context, identity auth.Identity, productID uint, quantity int) (*domain.CartEntry, error) {
	customer, err := s.customers.ResolveCustomer(ctx, identity)
	if err != nil {
		return nil, err
	}

	entry, err := s.entries.GetEntry(ctx, customer.ID, productID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, domain.ErrEntryNotFound
	}

	if quantity <= 0 {
		return nil, s.entries.Delete(ctx, entry.ID)
	}
	entry.Quantity = quantity
	if err := s.entries.Save(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// RemoveItem 删除条目
func (s *CartService) RemoveItem(ctx context.Context, identity auth.Identity, productID uint) error {
	customer, err := s.customers.ResolveCustomer(ctx, identity)
	if err != nil {
		return err
	}

	entry, err := s.entries.GetEntry(ctx, customer.ID, productID)
	if err != nil {
		return err
	}
	if entry == nil {
		return domain.ErrEntryNotFound
	}
	return s.entries.Delete(ctx, entry.ID)
}

// GetCart 返回顾客的全部条目，含商品与图片
func (s *CartService) GetCart(ctx context.Context, identity auth.Identity) ([]*domain.CartEntry, error) {
	customer, err := s.customers.ResolveCustomer(ctx, identity)
	if err != nil {
		return nil, err
	}
	return s.entries.ListByCustomer(ctx, customer.ID)
}

// GetItem 查单个条目，未加购返回 (nil, nil)
func (s *CartService) GetItem(ctx context.Context, identity auth.Identity, productID uint) (*domain.CartEntry, error) {
	customer, err := s.customers.ResolveCustomer(ctx, identity)
	if err != nil {
		return nil, err
	}
	return s.entries.GetEntry(ctx, customer.ID, productID)
}
