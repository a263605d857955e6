package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// 事件类型，同时作为 Kafka topic
const (
	OrderPlacedEventType          = "order.placed"
	OrderCancelledEventType       = "order.cancelled"
	PaymentStatusChangedEventType = "order.payment_status_changed"
	LowStockDetectedEventType     = "inventory.low_stock"
)

// OrderPlacedEvent 下单成功事件
type OrderPlacedEvent struct {
	OrderNo    string          `json:"order_no"`
	CustomerID uint            `json:"customer_id"`
	TotalPrice decimal.Decimal `json:"total_price"`
	LineCount  int             `json:"line_count"`
	OccurredOn time.Time       `json:"occurred_on"`
}

// OrderCancelledEvent 订单取消事件，库存已按明细回补
type OrderCancelledEvent struct {
	OrderNo    string    `json:"order_no"`
	CustomerID uint      `json:"customer_id"`
	OccurredOn time.Time `json:"occurred_on"`
}

// PaymentStatusChangedEvent 后台改写支付状态事件
type PaymentStatusChangedEvent struct {
	OrderNo    string        `json:"order_no"`
	OldStatus  PaymentStatus `json:"old_status"`
	NewStatus  PaymentStatus `json:"new_status"`
	OccurredOn time.Time     `json:"occurred_on"`
}

// LowStockDetectedEvent 低库存事件，驱动带外补货提醒
type LowStockDetectedEvent struct {
	ProductID   uint      `json:"product_id"`
	ProductName string    `json:"product_name"`
	Stock       int       `json:"stock"`
	Threshold   int       `json:"threshold"`
	OccurredOn  time.Time `json:"occurred_on"`
}
