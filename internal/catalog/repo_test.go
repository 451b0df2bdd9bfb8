package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return NewRepository(gormDB), mock
}

func TestUpsertListingOverwritesStockAndPrices(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`INSERT INTO "product_infos" .* ON CONFLICT \("product_id","shop_id"\) DO UPDATE SET "model"="excluded"."model","quantity"="excluded"."quantity","price"="excluded"."price","price_rrc"="excluded"."price_rrc","updated_at"="excluded"."updated_at" RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(41))

	now := time.Now()
	mock.ExpectQuery(`SELECT \* FROM "product_infos" WHERE product_id = \$1 AND shop_id = \$2`).
		WithArgs(int64(7), int64(3), 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "product_id", "shop_id", "model", "quantity", "price", "price_rrc", "created_at", "updated_at"}).
			AddRow(41, 7, 3, "apple/iphone/xs-max", 14, "110000.00", "116990.00", now, now))

	stored, err := repo.UpsertListing(context.Background(), &models.ProductInfo{
		ProductID: 7,
		ShopID:    3,
		Model:     "apple/iphone/xs-max",
		Quantity:  14,
		Price:     decimal.RequireFromString("110000"),
		PriceRRC:  decimal.RequireFromString("116990"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(41), stored.ID)
	assert.True(t, stored.PriceRRC.Equal(decimal.RequireFromString("116990")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncCategorySequenceOnPostgres(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(`SELECT setval\(pg_get_serial_sequence\('categories', 'id'\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SyncCategorySequence(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
