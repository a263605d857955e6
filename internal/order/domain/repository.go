package domain

import (
	"context"
	"errors"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	// ErrNotOwner 订单属于其他顾客
	ErrNotOwner = errors.New("order belongs to another customer")
	// ErrOrderAlreadyFinal 订单已处于终态，不可取消
	ErrOrderAlreadyFinal = errors.New("order is already in a terminal state")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptyOrder        = errors.New("order must contain at least one item")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrInvalidStatus     = errors.New("invalid payment status")
	ErrNotStaff          = errors.New("staff role required")
)

// ReportFilter 后台分页报表条件
type ReportFilter struct {
	// Status 为空不过滤
	Status PaymentStatus
	Page   int
	Limit  int
	// SortAsc 按下单时间升序，默认降序
	SortAsc bool
}

// OrderRepository 订单仓储接口。
// 库存修正也在这里：下单与取消都要求订单行与库存行落在同一个事务里。
type OrderRepository interface {
	// WithTx 在单个事务内执行 fn
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	// CreateOrder 创建订单及其明细
	CreateOrder(ctx context.Context, order *Order) error
	// GetOrder 加载订单与明细（含商品），未找到返回 ErrOrderNotFound
	GetOrder(ctx context.Context, id uint) (*Order, error)
	// ListByCustomer 顾客自己的订单，按下单时间降序
	ListByCustomer(ctx context.Context, customerID uint) ([]*Order, error)
	// ListAll 全部订单，按下单时间降序
	ListAll(ctx context.Context) ([]*Order, error)
	// ListPaged 后台分页报表
	ListPaged(ctx context.Context, filter ReportFilter) ([]*Order, int64, error)

	// MarkCancelled 仅当订单不处于终态时置为 CANCELLED。
	// 返回 false 表示订单已是终态，调用方不得回补库存。
	MarkCancelled(ctx context.Context, orderID uint) (bool, error)
	// UpdatePaymentStatus 直接改写支付状态，不触碰库存
	UpdatePaymentStatus(ctx context.Context, orderID uint, status PaymentStatus) error

	// DecrementStock 仅当 stock >= qty 时扣减，返回 false 表示库存不足
	DecrementStock(ctx context.Context, productID uint, qty int) (bool, error)
	// RestockProduct 回补库存
	RestockProduct(ctx context.Context, productID uint, qty int) error
}
