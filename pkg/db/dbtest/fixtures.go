package dbtest

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// SeedUser inserts an active user with a random identity.
func SeedUser(t testing.TB, conn *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{
		Username:     gofakeit.Username() + gofakeit.DigitN(6),
		Email:        gofakeit.DigitN(6) + gofakeit.Email(),
		FirstName:    gofakeit.FirstName(),
		LastName:     gofakeit.LastName(),
		PasswordHash: "$argon2id$v=19$m=8,t=1,p=1$c2FsdHNhbHQ$a2V5a2V5a2V5a2V5a2V5a2V5",
		IsActive:     true,
	}
	if err := conn.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

// SeedContact attaches a contact of the given type to a fresh user.
func SeedContact(t testing.TB, conn *gorm.DB, contactType enums.ContactType) (*models.User, *models.Contact) {
	t.Helper()
	user := SeedUser(t, conn)
	contact := &models.Contact{
		UserID: user.ID,
		Type:   contactType,
		Phone:  gofakeit.Phone(),
		City:   gofakeit.City(),
		Street: gofakeit.Street(),
	}
	if err := conn.Create(contact).Error; err != nil {
		t.Fatalf("seed contact: %v", err)
	}
	return user, contact
}

// SeedShop creates a SHOP contact and the shop it owns.
func SeedShop(t testing.TB, conn *gorm.DB) (*models.User, *models.Shop) {
	t.Helper()
	user, contact := SeedContact(t, conn, enums.ContactTypeShop)
	shop := &models.Shop{
		Name:           gofakeit.Company() + " " + gofakeit.DigitN(4),
		OwnerContactID: contact.ID,
		State:          true,
	}
	if err := conn.Create(shop).Error; err != nil {
		t.Fatalf("seed shop: %v", err)
	}
	return user, shop
}

// SeedListing creates a category, product and the shop's listing of it.
func SeedListing(t testing.TB, conn *gorm.DB, shopID int64, priceRRC string) *models.ProductInfo {
	t.Helper()
	category := &models.Category{Name: gofakeit.ProductCategory()}
	if err := conn.Create(category).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	product := &models.Product{Name: gofakeit.ProductName() + " " + gofakeit.DigitN(4), CategoryID: category.ID}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return SeedListingFor(t, conn, product.ID, shopID, priceRRC)
}

// SeedListingFor lists an existing product in a shop.
func SeedListingFor(t testing.TB, conn *gorm.DB, productID, shopID int64, priceRRC string) *models.ProductInfo {
	t.Helper()
	rrc := decimal.RequireFromString(priceRRC)
	info := &models.ProductInfo{
		ProductID: productID,
		ShopID:    shopID,
		Model:     gofakeit.LetterN(3) + "-" + gofakeit.DigitN(3),
		Quantity:  10,
		Price:     rrc.Mul(decimal.RequireFromString("0.8")).Round(2),
		PriceRRC:  rrc,
	}
	if err := conn.Create(info).Error; err != nil {
		t.Fatalf("seed listing: %v", err)
	}
	return info
}
