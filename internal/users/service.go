package users

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/security"
)

// Service exposes the profile operations of the authenticated user.
type Service interface {
	Get(ctx context.Context, userID int64) (*UserDTO, error)
	UpdateProfile(ctx context.Context, userID int64, req UpdateProfileRequest) (*UserDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams bundles the dependencies of the profile service.
type ServiceParams struct {
	DB             txRunner
	PasswordConfig config.PasswordConfig
}

type service struct {
	tx          txRunner
	passwordCfg config.PasswordConfig
}

// NewService builds the profile service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &service{tx: params.DB, passwordCfg: params.PasswordConfig}, nil
}

func (s *service) Get(ctx context.Context, userID int64) (*UserDTO, error) {
	var out *UserDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		user, err := NewRepository(tx).FindByID(ctx, userID)
		if err != nil {
			return mapLookupError(err)
		}
		out = FromModel(user)
		return nil
	})
	return out, err
}

func (s *service) UpdateProfile(ctx context.Context, userID int64, req UpdateProfileRequest) (*UserDTO, error) {
	var out *UserDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		user, err := repo.FindByID(ctx, userID)
		if err != nil {
			return mapLookupError(err)
		}

		changes := map[string]any{}
		if req.FirstName != nil {
			changes["first_name"] = strings.TrimSpace(*req.FirstName)
		}
		if req.LastName != nil {
			changes["last_name"] = strings.TrimSpace(*req.LastName)
		}
		if req.Email != nil {
			email := NormalizeEmail(*req.Email)
			if email == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "email cannot be empty")
			}
			if email != user.Email {
				if _, err := repo.FindByEmail(ctx, email); err == nil {
					return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
				} else if !errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check user email")
				}
				changes["email"] = email
			}
		}
		if req.Password != nil {
			if err := security.ValidateStrength(*req.Password, user.Username); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
			}
			hash, err := security.HashPassword(*req.Password, s.passwordCfg)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
			}
			changes["password_hash"] = hash
		}

		if err := repo.Update(ctx, userID, changes); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
		}

		updated, err := repo.FindByID(ctx, userID)
		if err != nil {
			return mapLookupError(err)
		}
		out = FromModel(updated)
		return nil
	})
	return out, err
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func mapLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
}
