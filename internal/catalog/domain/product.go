package domain

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Category struct {
	gorm.Model
	Name     string `gorm:"column:name;type:varchar(255);not null" json:"name"`
	IsActive bool   `gorm:"column:is_active;not null;default:true" json:"isActive"`
}

func (Category) TableName() string { return "categories" }

type Product struct {
	gorm.Model
	Name        string          `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Price       decimal.Decimal `gorm:"column:price;type:decimal(12,2);not null" json:"price"`
	Description string          `gorm:"column:description;type:text" json:"description"`
	Stock       int             `gorm:"column:stock;not null;default:0" json:"stock"`
	IsActive    bool            `gorm:"column:is_active;not null;default:true" json:"isActive"`
	CategoryID  uint            `gorm:"column:category_id;index;not null" json:"categoryId"`
	Category    *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Images      []Image         `gorm:"foreignKey:ProductID" json:"images"`
}

func (Product) TableName() string { return "products" }

type Image struct {
	gorm.Model
	URL       string `gorm:"column:url;type:varchar(512);not null" json:"url"`
	ProductID uint   `gorm:"column:product_id;index;not null" json:"productId"`
}

func (Image) TableName() string { return "images" }
