// Package domain 包含订单工作流的领域模型
package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	catalog "github.com/marginalfriend/my-garage/internal/catalog/domain"
)

// PaymentStatus 支付状态
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusPaid      PaymentStatus = "PAID"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
)

// Valid 是否为合法状态值
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusCancelled:
		return true
	}
	return false
}

// Terminal 是否为终态。终态订单不可再取消，也不再回补库存。
func (s PaymentStatus) Terminal() bool {
	return s == PaymentStatusPaid || s == PaymentStatusCancelled
}

// Order 订单聚合。创建后除 PaymentStatus 外不再变更。
type Order struct {
	gorm.Model
	// 订单号，对外展示用
	OrderNo string `gorm:"column:order_no;type:varchar(32);uniqueIndex;not null" json:"orderNo"`
	// 下单顾客
	CustomerID uint `gorm:"column:customer_id;index;not null" json:"customerId"`
	// 下单时间，服务端赋值
	OrderDate time.Time `gorm:"column:order_date;index;not null" json:"orderDate"`
	// 总价，各明细冻结价之和
	TotalPrice decimal.Decimal `gorm:"column:total_price;type:decimal(12,2);not null" json:"totalPrice"`
	// 支付状态
	PaymentStatus PaymentStatus `gorm:"column:payment_status;type:varchar(16);index;not null" json:"paymentStatus"`
	// 订单明细
	Lines []OrderLine `gorm:"foreignKey:OrderID" json:"orderDetails"`
}

func (Order) TableName() string { return "orders" }

// OrderLine 订单明细，创建后不可变
type OrderLine struct {
	gorm.Model
	OrderID   uint `gorm:"column:order_id;index;not null" json:"orderId"`
	ProductID uint `gorm:"column:product_id;index;not null" json:"productId"`
	Quantity  int  `gorm:"column:quantity;not null" json:"quantity"`
	// CountedPrice 下单时冻结的行总价（单价 x 数量），商品后续调价不影响它
	CountedPrice decimal.Decimal  `gorm:"column:counted_price;type:decimal(12,2);not null" json:"countedPrice"`
	Product      *catalog.Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (OrderLine) TableName() string { return "order_lines" }

// LinesTotal 按明细重算总价，用于校验总价不变式
func (o *Order) LinesTotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range o.Lines {
		total = total.Add(line.CountedPrice)
	}
	return total
}
