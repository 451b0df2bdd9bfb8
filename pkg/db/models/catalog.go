package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category ids follow the catalog documents that introduce them.
type Category struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string    `gorm:"column:name;type:varchar(128);not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// Product is the shop-independent identity of a good.
type Product struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name       string    `gorm:"column:name;type:varchar(255);not null;uniqueIndex:ux_products_name_category"`
	CategoryID int64     `gorm:"column:category_id;not null;uniqueIndex:ux_products_name_category"`
	Category   *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

// ProductInfo is one shop's listing of a product.
type ProductInfo struct {
	ID         int64              `gorm:"column:id;primaryKey;autoIncrement"`
	ProductID  int64              `gorm:"column:product_id;not null;uniqueIndex:ux_product_infos_product_shop"`
	Product    *Product           `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	ShopID     int64              `gorm:"column:shop_id;not null;uniqueIndex:ux_product_infos_product_shop;index"`
	Shop       *Shop              `gorm:"foreignKey:ShopID;constraint:OnDelete:CASCADE"`
	Model      string             `gorm:"column:model;type:varchar(128);not null;default:''"`
	Quantity   int                `gorm:"column:quantity;not null;default:0;check:chk_product_infos_quantity,quantity >= 0"`
	Price      decimal.Decimal    `gorm:"column:price;type:numeric(12,2);not null"`
	PriceRRC   decimal.Decimal    `gorm:"column:price_rrc;type:numeric(12,2);not null"`
	Parameters []ProductParameter `gorm:"foreignKey:ProductInfoID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// Parameter is a named product attribute such as "color".
type Parameter struct {
	ID   int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Name string `gorm:"column:name;type:varchar(64);not null;uniqueIndex:ux_parameters_name"`
}

// ProductParameter is the value of a parameter on one listing.
type ProductParameter struct {
	ID            int64      `gorm:"column:id;primaryKey;autoIncrement"`
	ProductInfoID int64      `gorm:"column:product_info_id;not null;uniqueIndex:ux_product_parameters_info_param"`
	ParameterID   int64      `gorm:"column:parameter_id;not null;uniqueIndex:ux_product_parameters_info_param"`
	Parameter     *Parameter `gorm:"foreignKey:ParameterID;constraint:OnDelete:CASCADE"`
	Value         string     `gorm:"column:value;type:varchar(255);not null"`
}
