package registry

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/outbox"
	"github.com/angelmondragon/storefront-backend/pkg/outbox/payloads"
)

func TestEventRegistryResolveOrderPlaced(t *testing.T) {
	reg := newTestEventRegistry(t)

	payload := payloads.OrderPlacedEvent{
		OrderID:   42,
		UserID:    7,
		ItemCount: 2,
		Total:     decimal.RequireFromString("1500.00"),
		PlacedAt:  time.Now().UTC(),
	}
	event := models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventOrderPlaced,
		AggregateType: enums.AggregateOrder,
		AggregateID:   42,
		Payload:       mustEnvelope(t, mustMarshal(t, payload)),
	}

	resolved, err := reg.Resolve(event)
	require.NoError(t, err)
	assert.Equal(t, "orders-topic", resolved.Descriptor.Topic)

	decoded, ok := resolved.Payload.(*payloads.OrderPlacedEvent)
	require.True(t, ok, "expected *OrderPlacedEvent, got %T", resolved.Payload)
	assert.Equal(t, int64(42), decoded.OrderID)
	assert.True(t, decoded.Total.Equal(payload.Total))
}

func TestEventRegistryRoutesByFamily(t *testing.T) {
	reg := newTestEventRegistry(t)

	cases := []struct {
		eventType enums.OutboxEventType
		aggregate enums.OutboxAggregateType
		topic     string
	}{
		{enums.EventNotificationRequested, enums.AggregateUser, "notification-topic"},
		{enums.EventCatalogImported, enums.AggregateShop, "catalog-topic"},
		{enums.EventOrderStatusOverridden, enums.AggregateOrder, "orders-topic"},
	}
	for _, tc := range cases {
		t.Run(string(tc.eventType), func(t *testing.T) {
			resolved, err := reg.Resolve(models.OutboxEvent{
				EventType:     tc.eventType,
				AggregateType: tc.aggregate,
				AggregateID:   3,
				Payload:       mustEnvelope(t, []byte(`{}`)),
			})
			require.NoError(t, err)
			assert.Equal(t, tc.topic, resolved.Descriptor.Topic)
		})
	}
}

func TestEventRegistryResolveUnknownEvent(t *testing.T) {
	reg := newTestEventRegistry(t)

	_, err := reg.Resolve(models.OutboxEvent{
		EventType:     enums.OutboxEventType("shop_closed"),
		AggregateType: enums.AggregateShop,
		AggregateID:   1,
		Payload:       mustEnvelope(t, []byte(`{}`)),
	})
	assertNonRetryable(t, err)
}

func TestEventRegistryResolveAggregateMismatch(t *testing.T) {
	reg := newTestEventRegistry(t)

	_, err := reg.Resolve(models.OutboxEvent{
		EventType:     enums.EventOrderPlaced,
		AggregateType: enums.AggregateShop,
		AggregateID:   1,
		Payload:       mustEnvelope(t, []byte(`{"order_id":1}`)),
	})
	assertNonRetryable(t, err)
}

func TestEventRegistryResolveMissingAggregateID(t *testing.T) {
	reg := newTestEventRegistry(t)

	_, err := reg.Resolve(models.OutboxEvent{
		EventType:     enums.EventOrderPlaced,
		AggregateType: enums.AggregateOrder,
		Payload:       mustEnvelope(t, []byte(`{}`)),
	})
	assertNonRetryable(t, err)
}

func TestEventRegistryResolveNullPayload(t *testing.T) {
	reg := newTestEventRegistry(t)

	_, err := reg.Resolve(models.OutboxEvent{
		EventType:     enums.EventOrderPlaced,
		AggregateType: enums.AggregateOrder,
		AggregateID:   9,
		Payload:       mustEnvelope(t, []byte("null")),
	})
	assertNonRetryable(t, err)
}

func TestEventRegistryResolveCorruptEnvelope(t *testing.T) {
	reg := newTestEventRegistry(t)

	_, err := reg.Resolve(models.OutboxEvent{
		EventType:     enums.EventOrderPlaced,
		AggregateType: enums.AggregateOrder,
		AggregateID:   9,
		Payload:       json.RawMessage(`{"data":`),
	})
	assertNonRetryable(t, err)
}

func TestNewEventRegistryRequiresTopics(t *testing.T) {
	_, err := NewEventRegistry(Topics{Orders: "orders", Notifications: "notifications"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog")
}

func assertNonRetryable(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var nonRetry NonRetryableError
	assert.True(t, errors.As(err, &nonRetry), "expected non-retryable error, got %v", err)
}

func newTestEventRegistry(t *testing.T) *EventRegistry {
	t.Helper()
	reg, err := NewEventRegistry(Topics{
		Orders:        "orders-topic",
		Notifications: "notification-topic",
		Catalog:       "catalog-topic",
	})
	require.NoError(t, err)
	return reg
}

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func mustEnvelope(t *testing.T, payload []byte) json.RawMessage {
	t.Helper()
	envelope := outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       payload,
	}
	data, err := json.Marshal(envelope)
	require.NoError(t, err)
	return data
}
