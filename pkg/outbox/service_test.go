package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

func TestEmitStoresEnvelope(t *testing.T) {
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())
	svc := NewService(repo, logger.Nop())
	ctx := context.Background()

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		return svc.Emit(ctx, tx, DomainEvent{
			EventType:     enums.EventOrderPlaced,
			AggregateType: enums.AggregateOrder,
			AggregateID:   12,
			Actor:         &ActorRef{UserID: 3, ContactType: "buyer"},
			Data:          map[string]any{"order_id": 12},
		})
	})
	require.NoError(t, err)

	var rows []models.OutboxEvent
	require.NoError(t, client.DB().Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(12), rows[0].AggregateID)
	assert.Nil(t, rows[0].PublishedAt)

	var envelope PayloadEnvelope
	require.NoError(t, json.Unmarshal(rows[0].Payload, &envelope))
	assert.Equal(t, 1, envelope.Version)
	assert.NotEmpty(t, envelope.EventID)
	require.NotNil(t, envelope.Actor)
	assert.Equal(t, int64(3), envelope.Actor.UserID)
	assert.JSONEq(t, `{"order_id":12}`, string(envelope.Data))
}

func TestEmitRollsBackWithTransaction(t *testing.T) {
	client := dbtest.Open(t)
	svc := NewService(NewRepository(client.DB()), nil)
	ctx := context.Background()
	boom := errors.New("boom")

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := svc.Emit(ctx, tx, DomainEvent{
			EventType:     enums.EventCatalogImported,
			AggregateType: enums.AggregateShop,
			AggregateID:   1,
			Data:          struct{}{},
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, client.DB().Model(&models.OutboxEvent{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestEmitRejectsInvalidEvents(t *testing.T) {
	client := dbtest.Open(t)
	svc := NewService(NewRepository(client.DB()), nil)
	ctx := context.Background()

	cases := map[string]DomainEvent{
		"unknown type":      {EventType: "nope", AggregateType: enums.AggregateOrder, AggregateID: 1},
		"unknown aggregate": {EventType: enums.EventOrderPlaced, AggregateType: "cart", AggregateID: 1},
		"missing id":        {EventType: enums.EventOrderPlaced, AggregateType: enums.AggregateOrder},
	}
	for name, event := range cases {
		t.Run(name, func(t *testing.T) {
			err := client.WithTx(ctx, func(tx *gorm.DB) error {
				return svc.Emit(ctx, tx, event)
			})
			assert.Error(t, err)
		})
	}

	assert.Error(t, svc.Emit(ctx, nil, DomainEvent{}))
}

func TestRepositoryPublishLifecycle(t *testing.T) {
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())
	ctx := context.Background()

	first := seedEvent(t, client.DB(), repo, 1)
	second := seedEvent(t, client.DB(), repo, 2)

	var fetched []models.OutboxEvent
	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		fetched, err = repo.FetchUnpublishedForPublish(tx, 10, 3)
		return err
	}))
	require.Len(t, fetched, 2)

	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := repo.MarkPublishedTx(tx, first.ID); err != nil {
			return err
		}
		return repo.MarkFailedTx(tx, second.ID, errors.New("broker down"))
	}))

	pending, err := repo.Pending(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pending)

	var failed models.OutboxEvent
	require.NoError(t, client.DB().First(&failed, "id = ?", second.ID).Error)
	assert.Equal(t, 1, failed.AttemptCount)
	require.NotNil(t, failed.LastError)
	assert.Equal(t, "broker down", *failed.LastError)

	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		return repo.MarkTerminalTx(tx, second.ID, errors.New("gave up"), 3)
	}))
	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		fetched, err = repo.FetchUnpublishedForPublish(tx, 10, 3)
		return err
	}))
	assert.Empty(t, fetched)
}

func TestRepositoryDeletePublishedBefore(t *testing.T) {
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())
	ctx := context.Background()

	published := seedEvent(t, client.DB(), repo, 1)
	dead := seedEvent(t, client.DB(), repo, 2)
	live := seedEvent(t, client.DB(), repo, 3)

	old := time.Now().UTC().Add(-48 * time.Hour)
	require.NoError(t, client.DB().Model(&models.OutboxEvent{}).Where("id = ?", published.ID).
		Updates(map[string]any{"published_at": old, "created_at": old}).Error)
	require.NoError(t, client.DB().Model(&models.OutboxEvent{}).Where("id = ?", dead.ID).
		Updates(map[string]any{"attempt_count": 5, "created_at": old}).Error)

	var deleted int64
	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		deleted, err = repo.DeletePublishedBefore(ctx, tx, time.Now().UTC().Add(-24*time.Hour), 5)
		return err
	}))
	assert.Equal(t, int64(2), deleted)

	var remaining []models.OutboxEvent
	require.NoError(t, client.DB().Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, live.ID, remaining[0].ID)
}

func TestDLQRepositoryInsertAndFind(t *testing.T) {
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())
	dlq := NewDLQRepository(client.DB())
	ctx := context.Background()

	event := seedEvent(t, client.DB(), repo, 4)

	missing, err := dlq.FindByEventID(ctx, event.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)

	msg := "unsupported event type"
	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		return dlq.InsertTx(tx, models.OutboxDLQ{
			EventID:       event.ID,
			EventType:     event.EventType,
			AggregateType: event.AggregateType,
			AggregateID:   event.AggregateID,
			Payload:       event.Payload,
			ErrorReason:   enums.OutboxDLQReasonNonRetryable,
			ErrorMessage:  &msg,
			FailedAt:      time.Now().UTC(),
		})
	}))

	found, err := dlq.FindByEventID(ctx, event.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, enums.OutboxDLQReasonNonRetryable, found.ErrorReason)
}

func seedEvent(t *testing.T, conn *gorm.DB, repo *Repository, aggregateID int64) models.OutboxEvent {
	t.Helper()
	var out models.OutboxEvent
	require.NoError(t, conn.Transaction(func(tx *gorm.DB) error {
		if err := repo.Insert(tx, models.OutboxEvent{
			EventType:     enums.EventOrderPlaced,
			AggregateType: enums.AggregateOrder,
			AggregateID:   aggregateID,
			Payload:       json.RawMessage(`{"version":1,"data":{}}`),
		}); err != nil {
			return err
		}
		return tx.Where("aggregate_id = ?", aggregateID).First(&out).Error
	}))
	return out
}
