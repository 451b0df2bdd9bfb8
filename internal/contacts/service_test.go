package contacts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

func TestContactLifecycle(t *testing.T) {
	client := dbtest.Open(t)
	user := dbtest.SeedUser(t, client.DB())
	svc, err := NewService(client)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.Get(ctx, user.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	created, err := svc.Create(ctx, user.ID, CreateContactRequest{Phone: "+7 900 000 00 00", City: "Moscow", Street: "Tverskaya"})
	require.NoError(t, err)
	assert.Equal(t, enums.ContactTypeBuyer, created.Type)

	_, err = svc.Create(ctx, user.ID, CreateContactRequest{Phone: "1", City: "x", Street: "y"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	shopType := "SHOP"
	apartment := " 12 "
	updated, err := svc.Update(ctx, user.ID, UpdateContactRequest{Type: &shopType, Apartment: &apartment})
	require.NoError(t, err)
	assert.Equal(t, enums.ContactTypeShop, updated.Type)
	assert.Equal(t, "12", updated.Apartment)
	assert.Equal(t, "Moscow", updated.City)

	require.NoError(t, svc.Delete(ctx, user.ID))
	assert.True(t, pkgerrors.IsCode(svc.Delete(ctx, user.ID), pkgerrors.CodeNotFound))
}

func TestCreateRejectsUnknownType(t *testing.T) {
	client := dbtest.Open(t)
	user := dbtest.SeedUser(t, client.DB())
	svc, err := NewService(client)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), user.ID, CreateContactRequest{Type: "courier", Phone: "1", City: "x", Street: "y"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestUpdateMissingContact(t *testing.T) {
	client := dbtest.Open(t)
	svc, err := NewService(client)
	require.NoError(t, err)

	city := "Kazan"
	_, err = svc.Update(context.Background(), 999, UpdateContactRequest{City: &city})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
