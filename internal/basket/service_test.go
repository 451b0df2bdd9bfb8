package basket

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, *db.Client) {
	t.Helper()
	client := dbtest.Open(t)
	svc, err := NewService(orders.NewRepository(client.DB()), client)
	require.NoError(t, err)
	return svc, client
}

func qty(n int) *int { return &n }

func TestAddAccumulatesAndTotals(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	buyer, _ := dbtest.SeedContact(t, client.DB(), enums.ContactTypeBuyer)
	_, shop := dbtest.SeedShop(t, client.DB())
	phone := dbtest.SeedListing(t, client.DB(), shop.ID, "116990")
	cover := dbtest.SeedListing(t, client.DB(), shop.ID, "1490.50")

	_, err := svc.Add(ctx, buyer.ID, AddItemRequest{ProductID: phone.ProductID, Quantity: 1})
	require.NoError(t, err)
	_, err = svc.Add(ctx, buyer.ID, AddItemRequest{ProductID: cover.ProductID, Quantity: 2})
	require.NoError(t, err)
	view, err := svc.Add(ctx, buyer.ID, AddItemRequest{ProductID: phone.ProductID, Quantity: 1})
	require.NoError(t, err)

	require.Len(t, view.Items, 2)
	assert.Equal(t, enums.OrderStatusBasket, view.Status)
	assert.True(t, view.Total.Equal(decimal.RequireFromString("236961")), "got %s", view.Total)

	var baskets int64
	require.NoError(t, client.DB().Model(&models.Order{}).Where("user_id = ?", buyer.ID).Count(&baskets).Error)
	assert.Equal(t, int64(1), baskets)

	var line models.OrderItem
	require.NoError(t, client.DB().Where("product_info_id = ?", phone.ID).First(&line).Error)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, shop.ID, line.ShopID)
}

func TestAddResolvesListing(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	buyer, _ := dbtest.SeedContact(t, client.DB(), enums.ContactTypeBuyer)
	_, shopA := dbtest.SeedShop(t, client.DB())
	_, shopB := dbtest.SeedShop(t, client.DB())
	listingA := dbtest.SeedListing(t, client.DB(), shopA.ID, "10.00")
	dbtest.SeedListingFor(t, client.DB(), listingA.ProductID, shopB.ID, "12.00")

	_, err := svc.Add(ctx, buyer.ID, AddItemRequest{ProductID: listingA.ProductID, Quantity: 1})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "ambiguous product needs shop_id: %v", err)

	view, err := svc.Add(ctx, buyer.ID, AddItemRequest{ProductID: listingA.ProductID, ShopID: shopB.ID, Quantity: 1})
	require.NoError(t, err)
	assert.True(t, view.Total.Equal(decimal.NewFromInt(12)))

	_, err = svc.Add(ctx, buyer.ID, AddItemRequest{ProductID: listingA.ProductID + 1000, Quantity: 1})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, shopC := dbtest.SeedShop(t, client.DB())
	_, err = svc.Add(ctx, buyer.ID, AddItemRequest{ProductID: listingA.ProductID, ShopID: shopC.ID, Quantity: 1})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	require.NoError(t, client.DB().Model(&models.Shop{}).Where("id = ?", shopA.ID).Update("state", false).Error)
	_, err = svc.Add(ctx, buyer.ID, AddItemRequest{ProductID: listingA.ProductID, ShopID: shopA.ID, Quantity: 1})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	_, err = svc.Add(ctx, buyer.ID, AddItemRequest{ProductID: listingA.ProductID, ShopID: shopB.ID, Quantity: 0})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestViewWithoutBasket(t *testing.T) {
	svc, client := newTestService(t)
	buyer, _ := dbtest.SeedContact(t, client.DB(), enums.ContactTypeBuyer)

	view, err := svc.View(context.Background(), buyer.ID)
	require.NoError(t, err)
	assert.Nil(t, view)
}

func TestUpdateAndRemove(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	buyer, _ := dbtest.SeedContact(t, client.DB(), enums.ContactTypeBuyer)
	_, shop := dbtest.SeedShop(t, client.DB())
	keep := dbtest.SeedListing(t, client.DB(), shop.ID, "4.00")
	drop := dbtest.SeedListing(t, client.DB(), shop.ID, "6.00")

	_, err := svc.Update(ctx, buyer.ID, UpdateItemRequest{ProductID: keep.ProductID, Quantity: qty(3)})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "no basket yet")

	for _, l := range []*models.ProductInfo{keep, drop} {
		_, err := svc.Add(ctx, buyer.ID, AddItemRequest{ProductID: l.ProductID, Quantity: 1})
		require.NoError(t, err)
	}

	view, err := svc.Update(ctx, buyer.ID, UpdateItemRequest{ProductID: keep.ProductID, Quantity: qty(5)})
	require.NoError(t, err)
	assert.True(t, view.Total.Equal(decimal.NewFromInt(26)))

	_, err = svc.Update(ctx, buyer.ID, UpdateItemRequest{ProductID: keep.ProductID, Quantity: qty(-1)})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Remove(ctx, buyer.ID, RemoveItemRequest{ProductID: keep.ProductID + 1000})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	unchanged, err := svc.View(ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, unchanged.Items, 2, "failed removal leaves the basket as it was")

	view, err = svc.Remove(ctx, buyer.ID, RemoveItemRequest{ProductID: drop.ProductID})
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.True(t, view.Total.Equal(decimal.NewFromInt(20)))
}
