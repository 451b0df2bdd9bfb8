package catalog

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

func (s *service) ListShops(ctx context.Context, filter ShopFilter) (pagination.Page[ShopDTO], error) {
	after, err := afterID(filter.Cursor)
	if err != nil {
		return pagination.Page[ShopDTO]{}, err
	}
	var rows []models.Shop
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		rows, err = NewRepository(tx).ListShops(ctx, strings.TrimSpace(filter.Name), after, pagination.LimitWithBuffer(filter.Limit))
		return err
	})
	if err != nil {
		return pagination.Page[ShopDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shops")
	}
	dtos := make([]ShopDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, shopFromModel(&rows[i]))
	}
	return pagination.Trim(dtos, filter.Limit, func(s ShopDTO) pagination.Cursor { return idCursor(s.ID) }), nil
}

func (s *service) GetShop(ctx context.Context, id int64) (*ShopDTO, error) {
	var out ShopDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		shop, err := NewRepository(tx).FindShop(ctx, id)
		if err != nil {
			return notFoundOr(err, "shop not found", "load shop")
		}
		out = shopFromModel(shop)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *service) CreateShop(ctx context.Context, userID int64, req CreateShopRequest) (*ShopDTO, error) {
	name, err := cleanName(req.Name)
	if err != nil {
		return nil, err
	}
	var out ShopDTO
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		contactID, err := repo.ContactIDForUser(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeForbidden, "contact required")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load contact")
		}
		if _, err := repo.FindShopByOwner(ctx, contactID); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "contact already owns a shop")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop")
		}

		shop := &models.Shop{Name: name, URL: req.URL, OwnerContactID: contactID, State: true}
		if req.State != nil {
			shop.State = *req.State
		}
		if err := repo.CreateShop(ctx, shop); err != nil {
			return writeError(err, "shop name already taken", "create shop")
		}
		// gorm skips zero values that have a column default.
		if !shop.State {
			if err := repo.UpdateShop(ctx, shop.ID, map[string]any{"state": false}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update shop")
			}
		}
		out = shopFromModel(shop)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *service) UpdateShop(ctx context.Context, userID, shopID int64, req UpdateShopRequest) (*ShopDTO, error) {
	changes := map[string]any{}
	if req.Name != nil {
		name, err := cleanName(*req.Name)
		if err != nil {
			return nil, err
		}
		changes["name"] = name
	}
	if req.URL.Set {
		changes["url"] = req.URL.Value
	}
	return s.mutateShop(ctx, userID, shopID, changes)
}

func (s *service) SetShopState(ctx context.Context, userID, shopID int64, state bool) (*ShopDTO, error) {
	return s.mutateShop(ctx, userID, shopID, map[string]any{"state": state})
}

func (s *service) mutateShop(ctx context.Context, userID, shopID int64, changes map[string]any) (*ShopDTO, error) {
	var out ShopDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		if _, err := requireOwnShop(ctx, repo, userID, shopID); err != nil {
			return err
		}
		if err := repo.UpdateShop(ctx, shopID, changes); err != nil {
			return writeError(err, "shop name already taken", "update shop")
		}
		shop, err := repo.FindShop(ctx, shopID)
		if err != nil {
			return notFoundOr(err, "shop not found", "load shop")
		}
		out = shopFromModel(shop)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *service) DeleteShop(ctx context.Context, userID, shopID int64) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		if _, err := requireOwnShop(ctx, repo, userID, shopID); err != nil {
			return err
		}
		if err := repo.DeleteShop(ctx, shopID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete shop")
		}
		return nil
	})
}
