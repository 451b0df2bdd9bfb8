package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/security"
)

func TestUpdateProfilePartial(t *testing.T) {
	client := dbtest.Open(t)
	user := dbtest.SeedUser(t, client.DB())
	svc, err := NewService(ServiceParams{DB: client, PasswordConfig: config.PasswordConfig{}})
	require.NoError(t, err)

	first := "  Anna "
	email := "ANNA@Example.com"
	password := "n3w-Secret!"
	got, err := svc.UpdateProfile(context.Background(), user.ID, UpdateProfileRequest{
		FirstName: &first,
		Email:     &email,
		Password:  &password,
	})
	require.NoError(t, err)
	assert.Equal(t, "Anna", got.FirstName)
	assert.Equal(t, user.LastName, got.LastName)
	assert.Equal(t, "anna@example.com", got.Email)

	stored, err := NewRepository(client.DB()).FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	ok, err := security.VerifyPassword(password, stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUpdateProfileEmailTaken(t *testing.T) {
	client := dbtest.Open(t)
	user := dbtest.SeedUser(t, client.DB())
	other := dbtest.SeedUser(t, client.DB())
	svc, err := NewService(ServiceParams{DB: client})
	require.NoError(t, err)

	_, err = svc.UpdateProfile(context.Background(), user.ID, UpdateProfileRequest{Email: &other.Email})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}

func TestUpdateProfileWeakPassword(t *testing.T) {
	client := dbtest.Open(t)
	user := dbtest.SeedUser(t, client.DB())
	svc, err := NewService(ServiceParams{DB: client})
	require.NoError(t, err)

	weak := "1234"
	_, err = svc.UpdateProfile(context.Background(), user.ID, UpdateProfileRequest{Password: &weak})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestGetUnknownUser(t *testing.T) {
	client := dbtest.Open(t)
	svc, err := NewService(ServiceParams{DB: client})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), 404)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
