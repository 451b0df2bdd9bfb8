package catalog

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

// listingOrderings maps ?ordering= values to sort columns.
var listingOrderings = map[string]string{
	"":          "id",
	"price":     "price",
	"price_rrc": "price_rrc",
	"quantity":  "quantity",
}

func resolveListingQuery(filter ListingFilter) (listingQuery, error) {
	ordering := strings.TrimSpace(filter.Ordering)
	desc := strings.HasPrefix(ordering, "-")
	column, ok := listingOrderings[strings.TrimPrefix(ordering, "-")]
	if !ok || (column == "id" && desc) {
		return listingQuery{}, pkgerrors.Newf(pkgerrors.CodeValidation, "unsupported ordering %q", filter.Ordering)
	}
	lq := listingQuery{filter: filter, column: column, desc: desc, limit: pagination.LimitWithBuffer(filter.Limit)}

	cursor, err := pagination.ParseCursor(filter.Cursor)
	if err != nil {
		return listingQuery{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if cursor == nil {
		return lq, nil
	}
	lq.afterID = cursor.ID
	switch column {
	case "id":
	case "quantity":
		n, err := strconv.Atoi(cursor.SortKey)
		if err != nil {
			return listingQuery{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		lq.afterKey = n
	default:
		d, err := decimal.NewFromString(cursor.SortKey)
		if err != nil {
			return listingQuery{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		lq.afterKey = d
	}
	return lq, nil
}

func listingCursor(column string) func(ListingDTO) pagination.Cursor {
	return func(l ListingDTO) pagination.Cursor {
		switch column {
		case "price":
			return pagination.Cursor{SortKey: l.Price.String(), ID: l.ID}
		case "price_rrc":
			return pagination.Cursor{SortKey: l.PriceRRC.String(), ID: l.ID}
		case "quantity":
			return pagination.Cursor{SortKey: strconv.Itoa(l.Quantity), ID: l.ID}
		default:
			return idCursor(l.ID)
		}
	}
}

func (s *service) ListListings(ctx context.Context, filter ListingFilter) (pagination.Page[ListingDTO], error) {
	lq, err := resolveListingQuery(filter)
	if err != nil {
		return pagination.Page[ListingDTO]{}, err
	}
	var rows []models.ProductInfo
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		rows, err = NewRepository(tx).ListListings(ctx, lq)
		return err
	})
	if err != nil {
		return pagination.Page[ListingDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	dtos := make([]ListingDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, ListingFromModel(&rows[i]))
	}
	return pagination.Trim(dtos, filter.Limit, listingCursor(lq.column)), nil
}

func (s *service) GetListing(ctx context.Context, id int64) (*ListingDTO, error) {
	var out ListingDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		info, err := NewRepository(tx).FindListing(ctx, id)
		if err != nil {
			return notFoundOr(err, "product not found", "load product")
		}
		out = ListingFromModel(info)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *service) CreateListing(ctx context.Context, userID int64, req CreateListingRequest) (*ListingDTO, error) {
	name, err := cleanName(req.Name)
	if err != nil {
		return nil, err
	}
	if err := validatePrices(req.Price, req.PriceRRC); err != nil {
		return nil, err
	}
	if req.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative")
	}

	var out ListingDTO
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		shop, err := OwnedShop(ctx, repo, userID)
		if err != nil {
			return err
		}
		if _, err := repo.FindCategory(ctx, req.CategoryID); err != nil {
			return notFoundOr(err, "category not found", "load category")
		}
		product, err := repo.UpsertProduct(ctx, name, req.CategoryID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve product")
		}
		existing, err := repo.ListingsForProduct(ctx, product.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listings")
		}
		for _, listing := range existing {
			if listing.ShopID == shop.ID {
				return pkgerrors.New(pkgerrors.CodeConflict, "product already listed by this shop")
			}
		}

		info, err := repo.UpsertListing(ctx, &models.ProductInfo{
			ProductID: product.ID,
			ShopID:    shop.ID,
			Model:     strings.TrimSpace(req.Model),
			Quantity:  req.Quantity,
			Price:     req.Price,
			PriceRRC:  req.PriceRRC,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create listing")
		}
		if err := repo.LinkShopCategory(ctx, shop.ID, req.CategoryID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "link category")
		}
		if err := ReplaceParameters(ctx, repo, info.ID, req.Parameters); err != nil {
			return err
		}

		loaded, err := repo.FindListing(ctx, info.ID)
		if err != nil {
			return notFoundOr(err, "product not found", "load product")
		}
		out = ListingFromModel(loaded)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *service) UpdateListing(ctx context.Context, userID, id int64, req UpdateListingRequest) (*ListingDTO, error) {
	var out ListingDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		info, err := repo.FindListing(ctx, id)
		if err != nil {
			return notFoundOr(err, "product not found", "load product")
		}
		if _, err := requireOwnShop(ctx, repo, userID, info.ShopID); err != nil {
			return err
		}

		price, rrc := info.Price, info.PriceRRC
		changes := map[string]any{}
		if req.Model != nil {
			changes["model"] = strings.TrimSpace(*req.Model)
		}
		if req.Quantity != nil {
			if *req.Quantity < 0 {
				return pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative")
			}
			changes["quantity"] = *req.Quantity
		}
		if req.Price != nil {
			price = *req.Price
			changes["price"] = price
		}
		if req.PriceRRC != nil {
			rrc = *req.PriceRRC
			changes["price_rrc"] = rrc
		}
		if err := validatePrices(price, rrc); err != nil {
			return err
		}
		if err := repo.UpdateListing(ctx, id, changes); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update listing")
		}
		if req.Parameters != nil {
			if err := ReplaceParameters(ctx, repo, id, *req.Parameters); err != nil {
				return err
			}
		}

		loaded, err := repo.FindListing(ctx, id)
		if err != nil {
			return notFoundOr(err, "product not found", "load product")
		}
		out = ListingFromModel(loaded)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *service) DeleteListing(ctx context.Context, userID, id int64) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		info, err := repo.FindListing(ctx, id)
		if err != nil {
			return notFoundOr(err, "product not found", "load product")
		}
		if _, err := requireOwnShop(ctx, repo, userID, info.ShopID); err != nil {
			return err
		}
		if err := repo.DeleteListing(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete listing")
		}
		return nil
	})
}

// ReplaceParameters makes the listing's parameter set equal to params.
func ReplaceParameters(ctx context.Context, repo *Repository, infoID int64, params map[string]string) error {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	keep := make([]int64, 0, len(names))
	for _, name := range names {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "parameter name is required")
		}
		param, err := repo.UpsertParameter(ctx, trimmed)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve parameter")
		}
		if err := repo.SetListingParameter(ctx, infoID, param.ID, params[name]); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set parameter")
		}
		keep = append(keep, param.ID)
	}
	if err := repo.ClearListingParameters(ctx, infoID, keep); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear parameters")
	}
	return nil
}

func validatePrices(price, rrc decimal.Decimal) error {
	if price.IsNegative() || rrc.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "prices must not be negative")
	}
	return nil
}
