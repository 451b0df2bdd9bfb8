package catalog

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

func (s *service) ListParameters(ctx context.Context, filter ParameterFilter) (pagination.Page[ParameterDTO], error) {
	after, err := afterID(filter.Cursor)
	if err != nil {
		return pagination.Page[ParameterDTO]{}, err
	}
	var rows []models.Parameter
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		rows, err = NewRepository(tx).ListParameters(ctx, strings.TrimSpace(filter.Name), after, pagination.LimitWithBuffer(filter.Limit))
		return err
	})
	if err != nil {
		return pagination.Page[ParameterDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list parameters")
	}
	dtos := make([]ParameterDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, parameterFromModel(&rows[i]))
	}
	return pagination.Trim(dtos, filter.Limit, func(p ParameterDTO) pagination.Cursor { return idCursor(p.ID) }), nil
}

func (s *service) GetParameter(ctx context.Context, id int64) (*ParameterDTO, error) {
	var out ParameterDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		param, err := NewRepository(tx).FindParameter(ctx, id)
		if err != nil {
			return notFoundOr(err, "parameter not found", "load parameter")
		}
		out = parameterFromModel(param)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *service) CreateParameter(ctx context.Context, req ParameterRequest) (*ParameterDTO, error) {
	name, err := cleanName(req.Name)
	if err != nil {
		return nil, err
	}
	param := &models.Parameter{Name: name}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := NewRepository(tx).CreateParameter(ctx, param); err != nil {
			return writeError(err, "parameter already exists", "create parameter")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := parameterFromModel(param)
	return &out, nil
}

func (s *service) UpdateParameter(ctx context.Context, id int64, req ParameterRequest) (*ParameterDTO, error) {
	name, err := cleanName(req.Name)
	if err != nil {
		return nil, err
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		affected, err := NewRepository(tx).RenameParameter(ctx, id, name)
		if err != nil {
			return writeError(err, "parameter already exists", "update parameter")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "parameter not found")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ParameterDTO{ID: id, Name: name}, nil
}

func (s *service) DeleteParameter(ctx context.Context, id int64) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		affected, err := NewRepository(tx).DeleteParameter(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete parameter")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "parameter not found")
		}
		return nil
	})
}
