package payloads

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// OrderPlacedEvent is emitted when a basket is checked out.
type OrderPlacedEvent struct {
	OrderID   int64           `json:"order_id"`
	UserID    int64           `json:"user_id"`
	ItemCount int             `json:"item_count"`
	Total     decimal.Decimal `json:"total"`
	PlacedAt  time.Time       `json:"placed_at"`
}

// NotificationRequestedEvent asks the mailer to render Kind for the user.
type NotificationRequestedEvent struct {
	Kind     enums.NotificationKind `json:"kind"`
	UserID   int64                  `json:"user_id"`
	Email    string                 `json:"email"`
	Username string                 `json:"username"`
	OrderID  *int64                 `json:"order_id,omitempty"`
	Total    *decimal.Decimal       `json:"total,omitempty"`
}

// CatalogImportedEvent summarizes one catalog document ingestion.
type CatalogImportedEvent struct {
	ShopID     int64     `json:"shop_id"`
	ShopName   string    `json:"shop_name"`
	Source     string    `json:"source"`
	Categories int       `json:"categories"`
	Products   int       `json:"products"`
	Listings   int       `json:"listings"`
	Parameters int       `json:"parameters"`
	ImportedAt time.Time `json:"imported_at"`
}

// OrderStatusOverriddenEvent records an administrative status change.
type OrderStatusOverriddenEvent struct {
	OrderID     int64             `json:"order_id"`
	UserID      int64             `json:"user_id"`
	From        enums.OrderStatus `json:"from"`
	To          enums.OrderStatus `json:"to"`
	AdminUserID int64             `json:"admin_user_id"`
}
