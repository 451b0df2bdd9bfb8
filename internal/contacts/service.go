package contacts

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

const contactNotFoundMessage = "contact not found"

// Service manages the caller's own contact.
type Service interface {
	Get(ctx context.Context, userID int64) (*ContactDTO, error)
	Create(ctx context.Context, userID int64, req CreateContactRequest) (*ContactDTO, error)
	Update(ctx context.Context, userID int64, req UpdateContactRequest) (*ContactDTO, error)
	Delete(ctx context.Context, userID int64) error
	// Resolve loads the contact for role checks.
	Resolve(ctx context.Context, userID int64) (*models.Contact, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	tx txRunner
}

func NewService(tx txRunner) (Service, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &service{tx: tx}, nil
}

func (s *service) Get(ctx context.Context, userID int64) (*ContactDTO, error) {
	contact, err := s.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	return FromModel(contact), nil
}

func (s *service) Resolve(ctx context.Context, userID int64) (*models.Contact, error) {
	var out *models.Contact
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		contact, err := NewRepository(tx).FindByUserID(ctx, userID)
		if err != nil {
			return mapLookupError(err)
		}
		out = contact
		return nil
	})
	return out, err
}

func (s *service) Create(ctx context.Context, userID int64, req CreateContactRequest) (*ContactDTO, error) {
	contactType := enums.ContactTypeBuyer
	if strings.TrimSpace(req.Type) != "" {
		parsed, err := enums.ParseContactType(req.Type)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid contact type")
		}
		contactType = parsed
	}

	contact := &models.Contact{
		UserID:    userID,
		Type:      contactType,
		Phone:     strings.TrimSpace(req.Phone),
		City:      strings.TrimSpace(req.City),
		Street:    strings.TrimSpace(req.Street),
		House:     strings.TrimSpace(req.House),
		Structure: strings.TrimSpace(req.Structure),
		Building:  strings.TrimSpace(req.Building),
		Apartment: strings.TrimSpace(req.Apartment),
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		if _, err := repo.FindByUserID(ctx, userID); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "contact already exists")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load contact")
		}
		if err := repo.Create(ctx, contact); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "contact already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create contact")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(contact), nil
}

func (s *service) Update(ctx context.Context, userID int64, req UpdateContactRequest) (*ContactDTO, error) {
	var out *ContactDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		contact, err := repo.FindByUserID(ctx, userID)
		if err != nil {
			return mapLookupError(err)
		}

		changes := map[string]any{}
		if req.Type != nil {
			parsed, err := enums.ParseContactType(*req.Type)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid contact type")
			}
			changes["type"] = parsed
		}
		for column, value := range map[string]*string{
			"phone":     req.Phone,
			"city":      req.City,
			"street":    req.Street,
			"house":     req.House,
			"structure": req.Structure,
			"building":  req.Building,
			"apartment": req.Apartment,
		} {
			if value != nil {
				changes[column] = strings.TrimSpace(*value)
			}
		}

		if err := repo.Update(ctx, contact.ID, changes); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update contact")
		}
		updated, err := repo.FindByUserID(ctx, userID)
		if err != nil {
			return mapLookupError(err)
		}
		out = FromModel(updated)
		return nil
	})
	return out, err
}

func (s *service) Delete(ctx context.Context, userID int64) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		removed, err := NewRepository(tx).DeleteByUserID(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete contact")
		}
		if removed == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, contactNotFoundMessage)
		}
		return nil
	})
}

func mapLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, contactNotFoundMessage)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load contact")
}
