package orders

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

// Repository defines persistence operations for orders and their items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetOrCreateBasket(ctx context.Context, userID int64) (*models.Order, error)
	FindBasket(ctx context.Context, userID int64) (*models.Order, error)
	FindByID(ctx context.Context, id int64) (*models.Order, error)
	FindForUser(ctx context.Context, id, userID int64) (*models.Order, error)
	ListForUser(ctx context.Context, userID int64, after *pagination.Cursor, limit int) ([]models.Order, error)
	LoadItems(ctx context.Context, orderID int64) ([]models.OrderItem, error)
	CountItems(ctx context.Context, orderID int64) (int64, error)
	UpsertItem(ctx context.Context, item *models.OrderItem) error
	FindItemsByProduct(ctx context.Context, orderID, productID, shopID int64) ([]models.OrderItem, error)
	SetItemQuantity(ctx context.Context, itemID int64, quantity int) error
	DeleteItem(ctx context.Context, itemID int64) error
	Touch(ctx context.Context, id int64) error
	TransitionStatus(ctx context.Context, id int64, from, to enums.OrderStatus) (bool, error)
	SetStatus(ctx context.Context, id int64, status enums.OrderStatus) error
	Delete(ctx context.Context, id int64) (int64, error)
	Totals(ctx context.Context, orderIDs []int64) (map[int64]decimal.Decimal, error)
	DeleteEmptyBasketsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type confirmationNotifier interface {
	OrderConfirmed(ctx context.Context, tx *gorm.DB, user *models.User, orderID int64, total decimal.Decimal) error
}

type orderMetrics interface {
	IncOrderPlaced()
	IncOrderConfirmed()
}
