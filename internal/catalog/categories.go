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

func (s *service) ListCategories(ctx context.Context, filter CategoryFilter) (pagination.Page[CategoryDTO], error) {
	after, err := afterID(filter.Cursor)
	if err != nil {
		return pagination.Page[CategoryDTO]{}, err
	}
	filter.Name = strings.TrimSpace(filter.Name)
	var rows []models.Category
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		rows, err = NewRepository(tx).ListCategories(ctx, filter, after, pagination.LimitWithBuffer(filter.Limit))
		return err
	})
	if err != nil {
		return pagination.Page[CategoryDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	dtos := make([]CategoryDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, categoryFromModel(&rows[i]))
	}
	return pagination.Trim(dtos, filter.Limit, func(c CategoryDTO) pagination.Cursor { return idCursor(c.ID) }), nil
}

func (s *service) GetCategory(ctx context.Context, id int64) (*CategoryDTO, error) {
	var out CategoryDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		category, err := NewRepository(tx).FindCategory(ctx, id)
		if err != nil {
			return notFoundOr(err, "category not found", "load category")
		}
		out = categoryFromModel(category)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateCategory adds a category and links it to the caller's shop when the
// caller owns one.
func (s *service) CreateCategory(ctx context.Context, userID int64, req CategoryRequest) (*CategoryDTO, error) {
	name, err := cleanName(req.Name)
	if err != nil {
		return nil, err
	}
	var out CategoryDTO
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		category := &models.Category{Name: name}
		if req.ID != nil {
			if _, err := repo.FindCategory(ctx, *req.ID); err == nil {
				return pkgerrors.New(pkgerrors.CodeConflict, "category id already taken")
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
			}
			category.ID = *req.ID
		}
		if err := repo.CreateCategory(ctx, category); err != nil {
			return writeError(err, "category id already taken", "create category")
		}
		if req.ID != nil {
			if err := repo.SyncCategorySequence(ctx); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sync category sequence")
			}
		}

		shop, err := OwnedShop(ctx, repo, userID)
		switch {
		case err == nil:
			if err := repo.LinkShopCategory(ctx, shop.ID, category.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "link category")
			}
		case !pkgerrors.IsCode(err, pkgerrors.CodeForbidden):
			return err
		}

		out = categoryFromModel(category)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *service) UpdateCategory(ctx context.Context, id int64, req CategoryRequest) (*CategoryDTO, error) {
	name, err := cleanName(req.Name)
	if err != nil {
		return nil, err
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		affected, err := NewRepository(tx).RenameCategory(ctx, id, name)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update category")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &CategoryDTO{ID: id, Name: name}, nil
}

func (s *service) DeleteCategory(ctx context.Context, id int64) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		affected, err := NewRepository(tx).DeleteCategory(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil
	})
}
