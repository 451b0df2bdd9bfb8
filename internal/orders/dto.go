package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

// ItemDTO is one order line with the listing it refers to.
type ItemDTO struct {
	ID          int64               `json:"id"`
	ProductInfo *catalog.ListingDTO `json:"product_info,omitempty"`
	ShopID      int64               `json:"shop_id"`
	Quantity    int                 `json:"quantity"`
	LineTotal   decimal.Decimal     `json:"line_total"`
}

// OrderDTO is an order or basket with its computed total.
type OrderDTO struct {
	ID        int64             `json:"id"`
	UserID    int64             `json:"user_id"`
	Status    enums.OrderStatus `json:"status"`
	CreatedAt time.Time         `json:"dt"`
	UpdatedAt time.Time         `json:"updated_at"`
	Items     []ItemDTO         `json:"items,omitempty"`
	Total     decimal.Decimal   `json:"total_sum"`
}

type StatusOverrideRequest struct {
	Status string `json:"status" validate:"required"`
}

type ListParams struct {
	pagination.Params
}

// FromModel maps an order without items.
func FromModel(order *models.Order, total decimal.Decimal) OrderDTO {
	return OrderDTO{
		ID:        order.ID,
		UserID:    order.UserID,
		Status:    order.Status,
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
		Total:     total,
	}
}

// WithItems maps an order and its preloaded lines.
func WithItems(order *models.Order, items []models.OrderItem, total decimal.Decimal) OrderDTO {
	out := FromModel(order, total)
	out.Items = make([]ItemDTO, 0, len(items))
	for i := range items {
		item := items[i]
		dto := ItemDTO{ID: item.ID, ShopID: item.ShopID, Quantity: item.Quantity, LineTotal: decimal.Zero}
		if item.ProductInfo != nil {
			listing := catalog.ListingFromModel(item.ProductInfo)
			dto.ProductInfo = &listing
			dto.LineTotal = item.ProductInfo.PriceRRC.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2)
		}
		out.Items = append(out.Items, dto)
	}
	return out
}
