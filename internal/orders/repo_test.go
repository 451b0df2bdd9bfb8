package orders

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

func TestGetOrCreateBasketIsIdempotent(t *testing.T) {
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())
	user := dbtest.SeedUser(t, client.DB())
	ctx := context.Background()

	first, err := repo.GetOrCreateBasket(ctx, user.ID)
	require.NoError(t, err)
	second, err := repo.GetOrCreateBasket(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var baskets int64
	require.NoError(t, client.DB().Model(&models.Order{}).
		Where("user_id = ? AND status = ?", user.ID, enums.OrderStatusBasket).Count(&baskets).Error)
	assert.Equal(t, int64(1), baskets)

	moved, err := repo.TransitionStatus(ctx, first.ID, enums.OrderStatusBasket, enums.OrderStatusNew)
	require.NoError(t, err)
	require.True(t, moved)

	fresh, err := repo.GetOrCreateBasket(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, fresh.ID, "a placed order frees the basket slot")
}

func TestUpsertItemAccumulatesQuantity(t *testing.T) {
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())
	user := dbtest.SeedUser(t, client.DB())
	_, shop := dbtest.SeedShop(t, client.DB())
	listing := dbtest.SeedListing(t, client.DB(), shop.ID, "19.99")
	ctx := context.Background()

	basket, err := repo.GetOrCreateBasket(ctx, user.ID)
	require.NoError(t, err)
	for _, qty := range []int{2, 3} {
		require.NoError(t, repo.UpsertItem(ctx, &models.OrderItem{
			OrderID: basket.ID, ProductInfoID: listing.ID, ShopID: shop.ID, Quantity: qty,
		}))
	}

	items, err := repo.LoadItems(ctx, basket.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	require.NotNil(t, items[0].ProductInfo)
	require.NotNil(t, items[0].ProductInfo.Product)

	totals, err := repo.Totals(ctx, []int64{basket.ID, basket.ID + 100})
	require.NoError(t, err)
	assert.True(t, totals[basket.ID].Equal(decimal.RequireFromString("99.95")), "got %s", totals[basket.ID])
	_, ok := totals[basket.ID+100]
	assert.False(t, ok)
}

func TestDeleteEmptyBasketsBefore(t *testing.T) {
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())
	ctx := context.Background()
	_, shop := dbtest.SeedShop(t, client.DB())
	listing := dbtest.SeedListing(t, client.DB(), shop.ID, "5.00")

	stale := dbtest.SeedUser(t, client.DB())
	staleBasket, err := repo.GetOrCreateBasket(ctx, stale.ID)
	require.NoError(t, err)

	filled := dbtest.SeedUser(t, client.DB())
	filledBasket, err := repo.GetOrCreateBasket(ctx, filled.ID)
	require.NoError(t, err)
	require.NoError(t, repo.UpsertItem(ctx, &models.OrderItem{
		OrderID: filledBasket.ID, ProductInfoID: listing.ID, ShopID: shop.ID, Quantity: 1,
	}))

	old := time.Now().UTC().Add(-48 * time.Hour)
	require.NoError(t, client.DB().Model(&models.Order{}).
		Where("id IN ?", []int64{staleBasket.ID, filledBasket.ID}).
		UpdateColumn("updated_at", old).Error)

	deleted, err := repo.DeleteEmptyBasketsBefore(ctx, time.Now().UTC().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = repo.FindBasket(ctx, stale.ID)
	assert.Error(t, err)
	_, err = repo.FindBasket(ctx, filled.ID)
	assert.NoError(t, err)
}
