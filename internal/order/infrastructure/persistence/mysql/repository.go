package mysql

import (
	"context"
	"errors"

	"github.com/wyfcoding/pkg/contextx"
	"gorm.io/gorm"

	"github.com/marginalfriend/my-garage/internal/order/domain"
)

type orderRepository struct{ db *gorm.DB }

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) domain.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := contextx.WithTx(ctx, tx)
		return fn(txCtx)
	})
}

func (r *orderRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextx.GetTx(ctx).(*gorm.DB); ok {
		return tx
	}
	return r.db
}

func (r *orderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	return r.getDB(ctx).WithContext(ctx).Create(order).Error
}

func (r *orderRepository) GetOrder(ctx context.Context, id uint) (*domain.Order, error) {
	var order domain.Order
	err := r.getDB(ctx).WithContext(ctx).
		Preload("Lines").Preload("Lines.Product").Preload("Lines.Product.Images").
		First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) ListByCustomer(ctx context.Context, customerID uint) ([]*domain.Order, error) {
	var orders []*domain.Order
	err := r.getDB(ctx).WithContext(ctx).
		Preload("Lines").Preload("Lines.Product").Preload("Lines.Product.Images").
		Where("customer_id = ?", customerID).
		Order("order_date DESC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) ListAll(ctx context.Context) ([]*domain.Order, error) {
	var orders []*domain.Order
	err := r.getDB(ctx).WithContext(ctx).
		Preload("Lines").Preload("Lines.Product").Preload("Lines.Product.Images").
		Order("order_date DESC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) ListPaged(ctx context.Context, filter domain.ReportFilter) ([]*domain.Order, int64, error) {
	db := r.getDB(ctx).WithContext(ctx).Model(&domain.Order{})
	if filter.Status != "" {
		db = db.Where("payment_status = ?", filter.Status)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sort := "order_date DESC"
	if filter.SortAsc {
		sort = "order_date ASC"
	}

	var orders []*domain.Order
	err := db.Preload("Lines").Preload("Lines.Product").
		Order(sort).
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&orders).Error
	return orders, total, err
}

// MarkCancelled 带守卫的状态置换：终态订单行不会被命中，RowsAffected 为 0。
func (r *orderRepository) MarkCancelled(ctx context.Context, orderID uint) (bool, error) {
	result := r.getDB(ctx).WithContext(ctx).Model(&domain.Order{}).
		Where("id = ? AND payment_status NOT IN ?", orderID,
			[]domain.PaymentStatus{domain.PaymentStatusPaid, domain.PaymentStatusCancelled}).
		Update("payment_status", domain.PaymentStatusCancelled)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *orderRepository) UpdatePaymentStatus(ctx context.Context, orderID uint, status domain.PaymentStatus) error {
	return r.getDB(ctx).WithContext(ctx).Model(&domain.Order{}).
		Where("id = ?", orderID).
		Update("payment_status", status).Error
}

// DecrementStock 条件扣减，扣减与校验合并为一条 UPDATE，并发下不会超卖。
func (r *orderRepository) DecrementStock(ctx context.Context, productID uint, qty int) (bool, error) {
	result := r.getDB(ctx).WithContext(ctx).
		Exec("UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?", qty, productID, qty)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *orderRepository) RestockProduct(ctx context.Context, productID uint, qty int) error {
	return r.getDB(ctx).WithContext(ctx).
		Exec("UPDATE products SET stock = stock + ? WHERE id = ?", qty, productID).Error
}
