package orders

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/internal/notifications"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/outbox"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

type stubMetrics struct {
	placed, confirmed int
}

func (m *stubMetrics) IncOrderPlaced()    { m.placed++ }
func (m *stubMetrics) IncOrderConfirmed() { m.confirmed++ }

func newTestService(t *testing.T, client *db.Client) (Service, *stubMetrics) {
	t.Helper()
	emitter := outbox.NewService(outbox.NewRepository(client.DB()), nil)
	notifier, err := notifications.NewNotifier(emitter)
	require.NoError(t, err)
	metrics := &stubMetrics{}
	svc, err := NewService(ServiceParams{
		Repo:     NewRepository(client.DB()),
		DB:       client,
		Outbox:   emitter,
		Notifier: notifier,
		Metrics:  metrics,
		Logger:   logger.Nop(),
	})
	require.NoError(t, err)
	return svc, metrics
}

// seedBasket fills a basket for a fresh buyer with the given price_rrc/qty pairs.
func seedBasket(t *testing.T, client *db.Client, lines map[string]int) (*models.User, *models.Order) {
	t.Helper()
	ctx := context.Background()
	user, _ := dbtest.SeedContact(t, client.DB(), enums.ContactTypeBuyer)
	_, shop := dbtest.SeedShop(t, client.DB())
	repo := NewRepository(client.DB())
	basket, err := repo.GetOrCreateBasket(ctx, user.ID)
	require.NoError(t, err)
	for price, qty := range lines {
		listing := dbtest.SeedListing(t, client.DB(), shop.ID, price)
		require.NoError(t, repo.UpsertItem(ctx, &models.OrderItem{
			OrderID: basket.ID, ProductInfoID: listing.ID, ShopID: shop.ID, Quantity: qty,
		}))
	}
	return user, basket
}

func outboxEvents(t *testing.T, client *db.Client, eventType enums.OutboxEventType) []models.OutboxEvent {
	t.Helper()
	var rows []models.OutboxEvent
	require.NoError(t, client.DB().Where("event_type = ?", eventType).Find(&rows).Error)
	return rows
}

func TestCheckoutPlacesBasket(t *testing.T) {
	client := dbtest.Open(t)
	svc, metrics := newTestService(t, client)
	user, basket := seedBasket(t, client, map[string]int{"10.50": 2, "3.00": 4})

	order, err := svc.Checkout(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, basket.ID, order.ID)
	assert.Equal(t, enums.OrderStatusNew, order.Status)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("33")), "got %s", order.Total)
	assert.Equal(t, 1, metrics.placed)

	events := outboxEvents(t, client, enums.EventOrderPlaced)
	require.Len(t, events, 1)
	assert.Equal(t, basket.ID, events[0].AggregateID)

	var envelope outbox.PayloadEnvelope
	require.NoError(t, json.Unmarshal(events[0].Payload, &envelope))
	var placed map[string]any
	require.NoError(t, json.Unmarshal(envelope.Data, &placed))
	assert.EqualValues(t, 2, placed["item_count"])
}

func TestCheckoutWithoutBasket(t *testing.T) {
	client := dbtest.Open(t)
	svc, _ := newTestService(t, client)
	user, _ := dbtest.SeedContact(t, client.DB(), enums.ContactTypeBuyer)

	_, err := svc.Checkout(context.Background(), user.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.Equal(t, "no basket", pkgerrors.As(err).Message())

	var orders int64
	require.NoError(t, client.DB().Model(&models.Order{}).Count(&orders).Error)
	assert.Zero(t, orders)
	assert.Empty(t, outboxEvents(t, client, enums.EventOrderPlaced))
}

func TestConfirmOrder(t *testing.T) {
	client := dbtest.Open(t)
	svc, metrics := newTestService(t, client)
	ctx := context.Background()
	user, basket := seedBasket(t, client, map[string]int{"7.25": 4})

	_, err := svc.Confirm(ctx, user.ID, basket.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict), "basket cannot be confirmed: %v", err)

	_, err = svc.Checkout(ctx, user.ID)
	require.NoError(t, err)

	stranger, _ := dbtest.SeedContact(t, client.DB(), enums.ContactTypeBuyer)
	_, err = svc.Confirm(ctx, stranger.ID, basket.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.Confirm(ctx, user.ID, basket.ID+999)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	confirmed, err := svc.Confirm(ctx, user.ID, basket.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusConfirmed, confirmed.Status)
	assert.True(t, confirmed.Total.Equal(decimal.RequireFromString("29")))
	assert.Equal(t, 1, metrics.confirmed)

	_, err = svc.Confirm(ctx, user.ID, basket.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	notices := outboxEvents(t, client, enums.EventNotificationRequested)
	require.Len(t, notices, 1, "exactly one confirmation notice")
	assert.Equal(t, user.ID, notices[0].AggregateID)
}

func TestListAndGetExcludeBasket(t *testing.T) {
	client := dbtest.Open(t)
	svc, _ := newTestService(t, client)
	ctx := context.Background()
	repo := NewRepository(client.DB())

	user, first := seedBasket(t, client, map[string]int{"1.00": 1})
	_, err := svc.Checkout(ctx, user.ID)
	require.NoError(t, err)

	second, err := repo.GetOrCreateBasket(ctx, user.ID)
	require.NoError(t, err)
	_, err = svc.Checkout(ctx, user.ID)
	require.NoError(t, err)

	open, err := repo.GetOrCreateBasket(ctx, user.ID)
	require.NoError(t, err)

	page, err := svc.List(ctx, user.ID, pagination.Params{Limit: 1})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.NotEmpty(t, page.NextCursor)
	assert.Equal(t, second.ID, page.Items[0].ID)
	assert.True(t, page.Items[0].Total.IsZero(), "empty order totals to zero")

	rest, err := svc.List(ctx, user.ID, pagination.Params{Limit: 1, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, rest.Items, 1)
	assert.Equal(t, first.ID, rest.Items[0].ID)
	assert.Empty(t, rest.NextCursor)

	detail, err := svc.Get(ctx, user.ID, first.ID)
	require.NoError(t, err)
	require.Len(t, detail.Items, 1)
	require.NotNil(t, detail.Items[0].ProductInfo)
	assert.True(t, detail.Total.Equal(decimal.NewFromInt(1)))

	_, err = svc.Get(ctx, user.ID, open.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestOverrideStatus(t *testing.T) {
	client := dbtest.Open(t)
	svc, _ := newTestService(t, client)
	ctx := context.Background()
	admin := dbtest.SeedUser(t, client.DB())

	user, basket := seedBasket(t, client, map[string]int{"2.00": 1})
	_, err := svc.OverrideStatus(ctx, admin.ID, basket.ID, "sent")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	_, err = svc.Checkout(ctx, user.ID)
	require.NoError(t, err)

	_, err = svc.OverrideStatus(ctx, admin.ID, basket.ID, "basket")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = svc.OverrideStatus(ctx, admin.ID, basket.ID, "lost")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	sent, err := svc.OverrideStatus(ctx, admin.ID, basket.ID, "SENT")
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusSent, sent.Status)

	_, err = svc.OverrideStatus(ctx, admin.ID, basket.ID, "sent")
	require.NoError(t, err)
	assert.Len(t, outboxEvents(t, client, enums.EventOrderStatusOverridden), 1, "no event when status is unchanged")

	require.NoError(t, svc.Delete(ctx, basket.ID))
	assert.True(t, pkgerrors.IsCode(svc.Delete(ctx, basket.ID), pkgerrors.CodeNotFound))

	var items int64
	require.NoError(t, client.DB().Model(&models.OrderItem{}).Where("order_id = ?", basket.ID).Count(&items).Error)
	assert.Zero(t, items)
}
