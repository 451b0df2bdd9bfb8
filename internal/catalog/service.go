package catalog

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

// Service is the catalog surface used by the HTTP layer. Reads are public.
// Writes take the caller's user id and operate on the shop owned by the
// caller's contact.
type Service interface {
	ListShops(ctx context.Context, filter ShopFilter) (pagination.Page[ShopDTO], error)
	GetShop(ctx context.Context, id int64) (*ShopDTO, error)
	CreateShop(ctx context.Context, userID int64, req CreateShopRequest) (*ShopDTO, error)
	UpdateShop(ctx context.Context, userID, shopID int64, req UpdateShopRequest) (*ShopDTO, error)
	SetShopState(ctx context.Context, userID, shopID int64, state bool) (*ShopDTO, error)
	DeleteShop(ctx context.Context, userID, shopID int64) error

	ListCategories(ctx context.Context, filter CategoryFilter) (pagination.Page[CategoryDTO], error)
	GetCategory(ctx context.Context, id int64) (*CategoryDTO, error)
	CreateCategory(ctx context.Context, userID int64, req CategoryRequest) (*CategoryDTO, error)
	UpdateCategory(ctx context.Context, id int64, req CategoryRequest) (*CategoryDTO, error)
	DeleteCategory(ctx context.Context, id int64) error

	ListListings(ctx context.Context, filter ListingFilter) (pagination.Page[ListingDTO], error)
	GetListing(ctx context.Context, id int64) (*ListingDTO, error)
	CreateListing(ctx context.Context, userID int64, req CreateListingRequest) (*ListingDTO, error)
	UpdateListing(ctx context.Context, userID, id int64, req UpdateListingRequest) (*ListingDTO, error)
	DeleteListing(ctx context.Context, userID, id int64) error

	ListParameters(ctx context.Context, filter ParameterFilter) (pagination.Page[ParameterDTO], error)
	GetParameter(ctx context.Context, id int64) (*ParameterDTO, error)
	CreateParameter(ctx context.Context, req ParameterRequest) (*ParameterDTO, error)
	UpdateParameter(ctx context.Context, id int64, req ParameterRequest) (*ParameterDTO, error)
	DeleteParameter(ctx context.Context, id int64) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	tx txRunner
}

// NewService builds the catalog service.
func NewService(tx txRunner) (Service, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &service{tx: tx}, nil
}

// OwnedShop returns the shop owned by the user's contact.
func OwnedShop(ctx context.Context, repo *Repository, userID int64) (*models.Shop, error) {
	contactID, err := repo.ContactIDForUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "contact required")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load contact")
	}
	shop, err := repo.FindShopByOwner(ctx, contactID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "caller has no shop")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop")
	}
	return shop, nil
}

// requireOwnShop loads shopID and checks it belongs to the caller.
func requireOwnShop(ctx context.Context, repo *Repository, userID, shopID int64) (*models.Shop, error) {
	shop, err := repo.FindShop(ctx, shopID)
	if err != nil {
		return nil, notFoundOr(err, "shop not found", "load shop")
	}
	contactID, err := repo.ContactIDForUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "contact required")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load contact")
	}
	if shop.OwnerContactID != contactID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "shop belongs to another contact")
	}
	return shop, nil
}

func notFoundOr(err error, notFound, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFound)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}

func writeError(err error, conflict, op string) error {
	if db.IsUniqueViolation(err, "") {
		return pkgerrors.New(pkgerrors.CodeConflict, conflict)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}

func afterID(cursor string) (int64, error) {
	parsed, err := pagination.ParseCursor(cursor)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if parsed == nil {
		return 0, nil
	}
	return parsed.ID, nil
}

func idCursor(id int64) pagination.Cursor {
	return pagination.Cursor{SortKey: "id", ID: id}
}

func cleanName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	return trimmed, nil
}
