package orders

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// GetOrCreateBasket inserts a basket unless the partial unique index already
// holds one for the user, then reads whichever row won.
func (r *repository) GetOrCreateBasket(ctx context.Context, userID int64) (*models.Order, error) {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:     []clause.Column{{Name: "user_id"}},
		TargetWhere: clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "status = 'basket'"}}},
		DoNothing:   true,
	}).Create(&models.Order{UserID: userID, Status: enums.OrderStatusBasket}).Error
	if err != nil {
		return nil, err
	}
	return r.FindBasket(ctx, userID)
}

func (r *repository) FindBasket(ctx context.Context, userID int64) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, enums.OrderStatusBasket).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Preload("User").First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindForUser(ctx context.Context, id, userID int64) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Preload("User").
		Where("id = ? AND user_id = ?", id, userID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListForUser returns placed orders newest first.
func (r *repository) ListForUser(ctx context.Context, userID int64, after *pagination.Cursor, limit int) ([]models.Order, error) {
	q := r.db.WithContext(ctx).
		Where("user_id = ? AND status <> ?", userID, enums.OrderStatusBasket)
	if after != nil {
		at, err := after.Time()
		if err != nil {
			return nil, err
		}
		q = q.Where(pagination.KeysetCondition("created_at", true), at, at, after.ID)
	}
	var rows []models.Order
	err := q.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&rows).Error
	return rows, err
}

// LoadItems returns the order's lines with their listing, product, shop and
// parameters.
func (r *repository) LoadItems(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := r.db.WithContext(ctx).
		Preload("ProductInfo.Product.Category").
		Preload("ProductInfo.Shop").
		Preload("ProductInfo.Parameters", func(db *gorm.DB) *gorm.DB { return db.Order("parameter_id ASC") }).
		Preload("ProductInfo.Parameters.Parameter").
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&items).Error
	return items, err
}

func (r *repository) CountItems(ctx context.Context, orderID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.OrderItem{}).Where("order_id = ?", orderID).Count(&n).Error
	return n, err
}

// UpsertItem adds the quantity to an existing line for the same listing.
func (r *repository) UpsertItem(ctx context.Context, item *models.OrderItem) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "order_id"}, {Name: "product_info_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"quantity": gorm.Expr("order_items.quantity + excluded.quantity"),
		}),
	}).Create(item).Error
}

// FindItemsByProduct matches lines by product id, narrowed to one shop when
// shopID is set.
func (r *repository) FindItemsByProduct(ctx context.Context, orderID, productID, shopID int64) ([]models.OrderItem, error) {
	q := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Where("product_info_id IN (?)", r.db.Model(&models.ProductInfo{}).Select("id").Where("product_id = ?", productID))
	if shopID > 0 {
		q = q.Where("shop_id = ?", shopID)
	}
	var items []models.OrderItem
	err := q.Order("id ASC").Find(&items).Error
	return items, err
}

func (r *repository) SetItemQuantity(ctx context.Context, itemID int64, quantity int) error {
	return r.db.WithContext(ctx).Model(&models.OrderItem{}).Where("id = ?", itemID).Update("quantity", quantity).Error
}

func (r *repository) DeleteItem(ctx context.Context, itemID int64) error {
	return r.db.WithContext(ctx).Delete(&models.OrderItem{}, "id = ?", itemID).Error
}

// Touch bumps updated_at so basket activity keeps the basket alive.
func (r *repository) Touch(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("updated_at", time.Now().UTC()).Error
}

// TransitionStatus moves the order only while it is still in from. It
// reports false when another writer changed the status first.
func (r *repository) TransitionStatus(ctx context.Context, id int64, from, to enums.OrderStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return res.RowsAffected == 1, res.Error
}

func (r *repository) SetStatus(ctx context.Context, id int64, status enums.OrderStatus) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("status", status).Error
}

func (r *repository) Delete(ctx context.Context, id int64) (int64, error) {
	if err := r.db.WithContext(ctx).Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
		return 0, err
	}
	res := r.db.WithContext(ctx).Delete(&models.Order{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

type totalRow struct {
	OrderID int64
	Total   decimal.Decimal
}

// Totals sums quantity * price_rrc per order. Orders without items are
// absent from the result; callers treat them as zero.
func (r *repository) Totals(ctx context.Context, orderIDs []int64) (map[int64]decimal.Decimal, error) {
	out := make(map[int64]decimal.Decimal, len(orderIDs))
	if len(orderIDs) == 0 {
		return out, nil
	}
	var rows []totalRow
	err := r.db.WithContext(ctx).
		Table("order_items AS oi").
		Select("oi.order_id AS order_id, COALESCE(SUM(oi.quantity * pi.price_rrc), 0) AS total").
		Joins("JOIN product_infos AS pi ON pi.id = oi.product_info_id").
		Where("oi.order_id IN ?", orderIDs).
		Group("oi.order_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.OrderID] = row.Total.Round(2)
	}
	return out, nil
}

// DeleteEmptyBasketsBefore removes baskets without items that have not been
// touched since cutoff.
func (r *repository) DeleteEmptyBasketsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", enums.OrderStatusBasket, cutoff).
		Where("NOT EXISTS (SELECT 1 FROM order_items oi WHERE oi.order_id = orders.id)").
		Delete(&models.Order{})
	return res.RowsAffected, res.Error
}
