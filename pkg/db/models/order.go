package models

import (
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Order is either a user's basket or a placed order. The partial unique
// index keeps at most one basket per user.
type Order struct {
	ID        int64             `gorm:"column:id;primaryKey;autoIncrement"`
	UserID    int64             `gorm:"column:user_id;not null;index:idx_orders_user;uniqueIndex:ux_orders_user_basket,where:status = 'basket'"`
	User      *User             `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Status    enums.OrderStatus `gorm:"column:status;type:varchar(16);not null;index:idx_orders_status_updated"`
	Items     []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime;index:idx_orders_status_updated"`
}

// OrderItem is one line of an order. Lines are unique per listing.
type OrderItem struct {
	ID            int64        `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID       int64        `gorm:"column:order_id;not null;uniqueIndex:ux_order_items_order_info"`
	ProductInfoID int64        `gorm:"column:product_info_id;not null;uniqueIndex:ux_order_items_order_info"`
	ProductInfo   *ProductInfo `gorm:"foreignKey:ProductInfoID;constraint:OnDelete:CASCADE"`
	ShopID        int64        `gorm:"column:shop_id;not null"`
	Quantity      int          `gorm:"column:quantity;not null;default:0;check:chk_order_items_quantity,quantity >= 0"`
}
