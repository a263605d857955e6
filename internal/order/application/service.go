package application

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/pkg/contextx"
	"github.com/wyfcoding/pkg/idgen"
	"github.com/wyfcoding/pkg/logging"

	auth "github.com/marginalfriend/my-garage/internal/auth/domain"
	catalog "github.com/marginalfriend/my-garage/internal/catalog/domain"
	"github.com/marginalfriend/my-garage/internal/order/domain"
)

// CustomerResolver 把已验证身份解析为顾客档案
type CustomerResolver interface {
	ResolveCustomer(ctx context.Context, identity auth.Identity) (*auth.Customer, error)
}

// CartGateway 清空顾客购物车，下单事务内调用
type CartGateway interface {
	ClearByCustomer(ctx context.Context, customerID uint) error
}

// OrderItem 下单请求里的一项
type OrderItem struct {
	ProductID uint
	Quantity  int
}

// OrderReport 后台分页报表
type OrderReport struct {
	Orders      []*domain.Order `json:"orders"`
	TotalOrders int64           `json:"totalOrders"`
	TotalPages  int             `json:"totalPages"`
	CurrentPage int             `json:"currentPage"`
}

// OrderService 订单工作流。
// 下单与取消都在单个数据库事务内完成：订单行、库存修正、购物车清空
// 与 outbox 事件要么全部落库，要么全部回滚。
type OrderService struct {
	orders    domain.OrderRepository
	products  catalog.ProductRepository
	carts     CartGateway
	customers CustomerResolver
	publisher domain.EventPublisher
	// threshold 低库存阈值，扣减后 stock <= threshold 触发补货事件
	threshold int
}

func NewOrderService(
	orders domain.OrderRepository,
	products catalog.ProductRepository,
	carts CartGateway,
	customers CustomerResolver,
	publisher domain.EventPublisher,
	lowStockThreshold int,
) *OrderService {
	return &OrderService{
		orders:    orders,
		products:  products,
		carts:     carts,
		customers: customers,
		publisher: publisher,
		threshold: lowStockThreshold,
	}
}

// PlaceOrder 按请求明细创建订单。
// 逐项加载商品、守卫式扣库存、按下单时刻单价冻结行总价；
// 无论下单的是购物车的哪个子集，整车都会被清空。
// 任一环节失败整体回滚。
func (s *OrderService) PlaceOrder(ctx context.Context, identity auth.Identity, items []OrderItem) (*domain.Order, error) {
	if len(items) == 0 {
		return nil, domain.ErrEmptyOrder
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
	}

	customer, err := s.customers.ResolveCustomer(ctx, identity)
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		OrderNo:       fmt.Sprintf("ORD-%d", idgen.GenID()),
		CustomerID:    customer.ID,
		OrderDate:     time.Now(),
		PaymentStatus: domain.PaymentStatusPending,
	}

	err = s.orders.WithTx(ctx, func(txCtx context.Context) error {
		total := decimal.Zero
		lines := make([]domain.OrderLine, 0, len(items))
		lowStock := make([]domain.LowStockDetectedEvent, 0)

		for _, item := range items {
			product, err := s.products.GetProduct(txCtx, item.ProductID)
			if err != nil {
				return err
			}

			ok, err := s.orders.DecrementStock(txCtx, product.ID, item.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %s", domain.ErrInsufficientStock, product.Name)
			}

			counted := product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
			total = total.Add(counted)
			lines = append(lines, domain.OrderLine{
				ProductID:    product.ID,
				Quantity:     item.Quantity,
				CountedPrice: counted,
			})

			if remaining := product.Stock - item.Quantity; remaining <= s.threshold {
				lowStock = append(lowStock, domain.LowStockDetectedEvent{
					ProductID:   product.ID,
					ProductName: product.Name,
					Stock:       remaining,
					Threshold:   s.threshold,
					OccurredOn:  time.Now(),
				})
			}
		}

		order.TotalPrice = total
		order.Lines = lines
		if err := s.orders.CreateOrder(txCtx, order); err != nil {
			return err
		}
		// 整车清空，未出现在明细里的条目也一并清掉
		if err := s.carts.ClearByCustomer(txCtx, customer.ID); err != nil {
			return err
		}

		tx := contextx.GetTx(txCtx)
		if err := s.publisher.PublishInTx(txCtx, tx, domain.OrderPlacedEventType, order.OrderNo, domain.OrderPlacedEvent{
			OrderNo:    order.OrderNo,
			CustomerID: order.CustomerID,
			TotalPrice: order.TotalPrice,
			LineCount:  len(order.Lines),
			OccurredOn: time.Now(),
		}); err != nil {
			return err
		}
		for _, ev := range lowStock {
			if err := s.publisher.PublishInTx(txCtx, tx, domain.LowStockDetectedEventType, strconv.FormatUint(uint64(ev.ProductID), 10), ev); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.Info(ctx, "order placed",
		"order_no", order.OrderNo,
		"customer_id", order.CustomerID,
		"total", order.TotalPrice.String(),
		"lines", len(order.Lines))
	return order, nil
}

// Cancel 顾客取消自己的订单并回补库存。
// 仅限订单所属顾客；后台修正走 UpdatePaymentStatus，不触碰库存。
// 状态置换走守卫式 UPDATE：终态订单不会被命中，并发重复取消也只回补一次。
func (s *OrderService) Cancel(ctx context.Context, identity auth.Identity, orderID uint) error {
	err := s.orders.WithTx(ctx, func(txCtx context.Context) error {
		order, err := s.orders.GetOrder(txCtx, orderID)
		if err != nil {
			return err
		}

		customer, err := s.customers.ResolveCustomer(txCtx, identity)
		if err != nil {
			return err
		}
		if order.CustomerID != customer.ID {
			return domain.ErrNotOwner
		}

		ok, err := s.orders.MarkCancelled(txCtx, order.ID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrOrderAlreadyFinal
		}

		for _, line := range order.Lines {
			if err := s.orders.RestockProduct(txCtx, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}

		return s.publisher.PublishInTx(txCtx, contextx.GetTx(txCtx), domain.OrderCancelledEventType, order.OrderNo, domain.OrderCancelledEvent{
			OrderNo:    order.OrderNo,
			CustomerID: order.CustomerID,
			OccurredOn: time.Now(),
		})
	})
	if err != nil {
		return err
	}

	logging.Info(ctx, "order cancelled", "order_id", orderID)
	return nil
}

// UpdatePaymentStatus 后台直接改写支付状态，不触碰库存。
// 与取消流程刻意分离：PAID -> CANCELLED 之类的修正由人工决定是否退货。
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, identity auth.Identity, orderID uint, status domain.PaymentStatus) (*domain.Order, error) {
	if !identity.IsStaff() {
		return nil, domain.ErrNotStaff
	}
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	var order *domain.Order
	err := s.orders.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		order, err = s.orders.GetOrder(txCtx, orderID)
		if err != nil {
			return err
		}
		old := order.PaymentStatus
		if err := s.orders.UpdatePaymentStatus(txCtx, order.ID, status); err != nil {
			return err
		}
		order.PaymentStatus = status

		return s.publisher.PublishInTx(txCtx, contextx.GetTx(txCtx), domain.PaymentStatusChangedEventType, order.OrderNo, domain.PaymentStatusChangedEvent{
			OrderNo:    order.OrderNo,
			OldStatus:  old,
			NewStatus:  status,
			OccurredOn: time.Now(),
		})
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// CheckLowStock 列出订单中当前库存不高于阈值的商品名
func (s *OrderService) CheckLowStock(ctx context.Context, identity auth.Identity, orderID uint) ([]string, error) {
	order, err := s.GetOrder(ctx, identity, orderID)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0)
	for _, line := range order.Lines {
		product := line.Product
		if product == nil {
			if product, err = s.products.GetProduct(ctx, line.ProductID); err != nil {
				return nil, err
			}
		}
		if product.Stock <= s.threshold {
			names = append(names, product.Name)
		}
	}
	return names, nil
}

// ListOrders 员工看全量，顾客只看自己的
func (s *OrderService) ListOrders(ctx context.Context, identity auth.Identity) ([]*domain.Order, error) {
	if identity.IsStaff() {
		return s.orders.ListAll(ctx)
	}
	customer, err := s.customers.ResolveCustomer(ctx, identity)
	if err != nil {
		return nil, err
	}
	return s.orders.ListByCustomer(ctx, customer.ID)
}

// GetOrder 加载单个订单，顾客只能读自己的
func (s *OrderService) GetOrder(ctx context.Context, identity auth.Identity, orderID uint) (*domain.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !identity.IsStaff() {
		customer, err := s.customers.ResolveCustomer(ctx, identity)
		if err != nil {
			return nil, err
		}
		if order.CustomerID != customer.ID {
			return nil, domain.ErrNotOwner
		}
	}
	return order, nil
}

// Report 员工分页报表，可按支付状态过滤、按下单时间排序
func (s *OrderService) Report(ctx context.Context, identity auth.Identity, filter domain.ReportFilter) (*OrderReport, error) {
	if !identity.IsStaff() {
		return nil, domain.ErrNotStaff
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 10
	}

	orders, total, err := s.orders.ListPaged(ctx, filter)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	return &OrderReport{
		Orders:      orders,
		TotalOrders: total,
		TotalPages:  totalPages,
		CurrentPage: filter.Page,
	}, nil
}
