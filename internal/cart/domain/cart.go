package domain

import (
	"gorm.io/gorm"

	catalog "github.com/marginalfriend/my-garage/internal/catalog/domain"
)

// CartEntry 购物车条目，(customer, product) 最多一条
type CartEntry struct {
	gorm.Model
	CustomerID uint             `gorm:"column:customer_id;index:idx_cart_customer_product,unique;not null" json:"customerId"`
	ProductID  uint             `gorm:"column:product_id;index:idx_cart_customer_product,unique;not null" json:"productId"`
	Quantity   int              `gorm:"column:quantity;not null" json:"quantity"`
	Product    *catalog.Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (CartEntry) TableName() string { return "cart_entries" }
