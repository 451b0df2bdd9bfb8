package auth

import (
	"context"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/internal/notifications"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/outbox"
	"github.com/angelmondragon/storefront-backend/pkg/security"
)

func TestRegisterCreatesUserAndQueuesWelcome(t *testing.T) {
	client := dbtest.Open(t)
	svc := newRegisterService(t, client)

	req := RegisterRequest{
		Username:  gofakeit.Username(),
		Email:     "  " + strings.ToUpper(gofakeit.Email()) + " ",
		Password:  "Tr1cky-pass",
		FirstName: gofakeit.FirstName(),
	}
	user, err := svc.Register(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, strings.ToLower(strings.TrimSpace(req.Email)), user.Email)
	assert.True(t, user.IsActive)

	var stored models.User
	require.NoError(t, client.DB().First(&stored, user.ID).Error)
	ok, err := security.VerifyPassword("Tr1cky-pass", stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	var events []models.OutboxEvent
	require.NoError(t, client.DB().Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, enums.EventNotificationRequested, events[0].EventType)
	assert.Equal(t, user.ID, events[0].AggregateID)
}

func TestRegisterDuplicateReturnsConflict(t *testing.T) {
	client := dbtest.Open(t)
	svc := newRegisterService(t, client)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "Tr1cky-pass"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterRequest{Username: "alice", Email: "other@example.com", Password: "Tr1cky-pass"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)

	_, err = svc.Register(ctx, RegisterRequest{Username: "alice2", Email: "ALICE@example.com", Password: "Tr1cky-pass"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)

	var count int64
	require.NoError(t, client.DB().Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	require.NoError(t, client.DB().Model(&models.OutboxEvent{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	client := dbtest.Open(t)
	svc := newRegisterService(t, client)

	for _, password := range []string{"short", "12345678901", "password1", "bob-the-builder"} {
		_, err := svc.Register(context.Background(), RegisterRequest{Username: "bob", Email: "bob@example.com", Password: password})
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "password %q: %v", password, err)
	}
}

func newRegisterService(t *testing.T, client *db.Client) RegisterService {
	t.Helper()
	notifier, err := notifications.NewNotifier(outbox.NewService(outbox.NewRepository(client.DB()), nil))
	require.NoError(t, err)
	svc, err := NewRegisterService(RegisterServiceParams{
		DB:             client,
		PasswordConfig: config.PasswordConfig{},
		Notifier:       notifier,
	})
	require.NoError(t, err)
	return svc
}
