// Package basket manages the buyer's open order.
package basket

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/visibility"
)

type Service interface {
	Add(ctx context.Context, userID int64, req AddItemRequest) (*orders.OrderDTO, error)
	View(ctx context.Context, userID int64) (*orders.OrderDTO, error)
	Update(ctx context.Context, userID int64, req UpdateItemRequest) (*orders.OrderDTO, error)
	Remove(ctx context.Context, userID int64, req RemoveItemRequest) (*orders.OrderDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo orders.Repository
	tx   txRunner
}

func NewService(repo orders.Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// Add resolves or creates the basket and adds quantity to the line for the
// resolved listing.
func (s *service) Add(ctx context.Context, userID int64, req AddItemRequest) (*orders.OrderDTO, error) {
	if req.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	var out orders.OrderDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		listing, err := resolveListing(ctx, catalog.NewRepository(tx), req.ProductID, req.ShopID)
		if err != nil {
			return err
		}
		repo := s.repo.WithTx(tx)
		basket, err := repo.GetOrCreateBasket(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve basket")
		}
		err = repo.UpsertItem(ctx, &models.OrderItem{
			OrderID:       basket.ID,
			ProductInfoID: listing.ID,
			ShopID:        listing.ShopID,
			Quantity:      req.Quantity,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add basket item")
		}
		if err := repo.Touch(ctx, basket.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "touch basket")
		}
		out, err = orders.Detail(ctx, repo, basket)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// View returns nil when the caller has no basket.
func (s *service) View(ctx context.Context, userID int64) (*orders.OrderDTO, error) {
	var out *orders.OrderDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		basket, err := repo.FindBasket(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load basket")
		}
		detail, err := orders.Detail(ctx, repo, basket)
		if err != nil {
			return err
		}
		out = &detail
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, userID int64, req UpdateItemRequest) (*orders.OrderDTO, error) {
	if req.Quantity == nil || *req.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative")
	}
	return s.withItem(ctx, userID, req.ProductID, req.ShopID, func(repo orders.Repository, item models.OrderItem) error {
		if err := repo.SetItemQuantity(ctx, item.ID, *req.Quantity); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update basket item")
		}
		return nil
	})
}

func (s *service) Remove(ctx context.Context, userID int64, req RemoveItemRequest) (*orders.OrderDTO, error) {
	return s.withItem(ctx, userID, req.ProductID, req.ShopID, func(repo orders.Repository, item models.OrderItem) error {
		if err := repo.DeleteItem(ctx, item.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove basket item")
		}
		return nil
	})
}

// withItem locates the basket line for the product and applies fn to it.
func (s *service) withItem(ctx context.Context, userID, productID, shopID int64, fn func(orders.Repository, models.OrderItem) error) (*orders.OrderDTO, error) {
	if productID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_id is required")
	}
	var out orders.OrderDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		basket, err := repo.FindBasket(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product is not in the basket")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load basket")
		}
		items, err := repo.FindItemsByProduct(ctx, basket.ID, productID, shopID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load basket item")
		}
		switch len(items) {
		case 0:
			return pkgerrors.New(pkgerrors.CodeNotFound, "product is not in the basket")
		case 1:
		default:
			return pkgerrors.New(pkgerrors.CodeValidation, "shop_id is required: the basket holds this product from several shops")
		}
		if err := fn(repo, items[0]); err != nil {
			return err
		}
		if err := repo.Touch(ctx, basket.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "touch basket")
		}
		out, err = orders.Detail(ctx, repo, basket)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// resolveListing picks the listing a buyer means by product and optional shop.
func resolveListing(ctx context.Context, repo *catalog.Repository, productID, shopID int64) (*models.ProductInfo, error) {
	if productID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_id is required")
	}
	listings, err := repo.ListingsForProduct(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listings")
	}
	if len(listings) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	var chosen *models.ProductInfo
	switch {
	case shopID > 0:
		for i := range listings {
			if listings[i].ShopID == shopID {
				chosen = &listings[i]
				break
			}
		}
		if chosen == nil {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product is not sold by this shop")
		}
	case len(listings) == 1:
		chosen = &listings[0]
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop_id is required: product is sold by several shops")
	}

	shop, err := repo.FindShop(ctx, chosen.ShopID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop")
	}
	if err := visibility.EnsureOrderable(shop, chosen); err != nil {
		return nil, err
	}
	return chosen, nil
}
