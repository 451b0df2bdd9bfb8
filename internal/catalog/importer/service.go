// Package importer ingests shop price lists into the catalog.
package importer

import (
	"bytes"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/catalog/source"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/outbox"
	"github.com/angelmondragon/storefront-backend/pkg/outbox/payloads"
)

const sourceRequest = "request"

// Result counts what a document touched. Re-importing the same document
// reports the same counts without adding rows.
type Result struct {
	ShopID     int64  `json:"shop_id"`
	Shop       string `json:"shop"`
	Source     string `json:"source"`
	Categories int    `json:"categories"`
	Products   int    `json:"products"`
	Listings   int    `json:"listings"`
	Parameters int    `json:"parameters"`
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type importMetrics interface {
	IncCatalogImport(ok bool)
}

type ServiceParams struct {
	DB      txRunner
	Source  source.Source
	Emitter outbox.Emitter
	Metrics importMetrics
	Logger  *logger.Logger
}

type Service struct {
	tx      txRunner
	source  source.Source
	emitter outbox.Emitter
	metrics importMetrics
	logg    *logger.Logger
}

func NewService(p ServiceParams) (*Service, error) {
	if p.DB == nil {
		return nil, errors.New("database client required")
	}
	if p.Source == nil {
		return nil, errors.New("catalog source required")
	}
	if p.Emitter == nil {
		return nil, errors.New("outbox emitter required")
	}
	return &Service{tx: p.DB, source: p.Source, emitter: p.Emitter, metrics: p.Metrics, logg: p.Logger}, nil
}

// Import loads fileName from the source, or uses body when it is not
// blank, and upserts the document for the caller's shop in one transaction.
func (s *Service) Import(ctx context.Context, userID int64, fileName string, body []byte) (*Result, error) {
	result, err := s.importDocument(ctx, userID, fileName, body)
	if s.metrics != nil {
		s.metrics.IncCatalogImport(err == nil)
	}
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "file_name", fileName), "catalog import rejected")
		}
		return nil, err
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"shop_id":  result.ShopID,
			"source":   result.Source,
			"products": result.Products,
			"listings": result.Listings,
		}), "catalog imported")
	}
	return result, nil
}

func (s *Service) importDocument(ctx context.Context, userID int64, fileName string, body []byte) (*Result, error) {
	data, kind, err := s.load(ctx, fileName, body)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}

	result := &Result{Source: kind}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := catalog.NewRepository(tx)
		shop, err := s.resolveShop(ctx, repo, userID, doc.Shop)
		if err != nil {
			return err
		}
		result.ShopID, result.Shop = shop.ID, shop.Name

		for _, entry := range doc.Categories {
			category, err := repo.UpsertCategory(ctx, entry.ID, entry.Name)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert category")
			}
			if err := repo.LinkShopCategory(ctx, shop.ID, category.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "link category")
			}
		}
		if len(doc.Categories) > 0 {
			if err := repo.SyncCategorySequence(ctx); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sync category sequence")
			}
		}
		result.Categories = len(doc.Categories)

		products := map[int64]struct{}{}
		params := map[string]struct{}{}
		for _, good := range doc.Goods {
			if _, err := repo.FindCategory(ctx, good.Category); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.Newf(pkgerrors.CodeValidation, "good %q references unknown category %d", good.Name, good.Category)
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
			}
			product, err := repo.UpsertProduct(ctx, good.Name, good.Category)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert product")
			}
			products[product.ID] = struct{}{}

			info, err := repo.UpsertListing(ctx, &models.ProductInfo{
				ProductID: product.ID,
				ShopID:    shop.ID,
				Model:     good.Model,
				Quantity:  *good.Quantity,
				Price:     good.Price.Decimal,
				PriceRRC:  good.PriceRRC.Decimal,
			})
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert listing")
			}
			if err := repo.LinkShopCategory(ctx, shop.ID, good.Category); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "link category")
			}
			result.Listings++

			values, err := good.ParameterValues()
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid parameters")
			}
			if err := catalog.ReplaceParameters(ctx, repo, info.ID, values); err != nil {
				return err
			}
			for name := range values {
				params[name] = struct{}{}
			}
		}
		result.Products = len(products)
		result.Parameters = len(params)

		return s.emitter.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCatalogImported,
			AggregateType: enums.AggregateShop,
			AggregateID:   shop.ID,
			Actor:         &outbox.ActorRef{UserID: userID, ContactType: string(enums.ContactTypeShop)},
			Data: payloads.CatalogImportedEvent{
				ShopID:     shop.ID,
				ShopName:   shop.Name,
				Source:     kind,
				Categories: result.Categories,
				Products:   result.Products,
				Listings:   result.Listings,
				Parameters: result.Parameters,
				ImportedAt: time.Now().UTC(),
			},
		})
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "import catalog")
	}
	return result, nil
}

func (s *Service) load(ctx context.Context, fileName string, body []byte) ([]byte, string, error) {
	if len(bytes.TrimSpace(body)) > 0 {
		return body, sourceRequest, nil
	}
	data, err := s.source.Fetch(ctx, fileName)
	switch {
	case err == nil:
		return data, s.source.Kind(), nil
	case errors.Is(err, source.ErrNotFound):
		return nil, "", pkgerrors.New(pkgerrors.CodeNotFound, "catalog document not found")
	case errors.Is(err, source.ErrInvalidName):
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "invalid file name")
	case errors.Is(err, source.ErrTooLarge):
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "catalog document too large")
	default:
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch catalog document")
	}
}

// resolveShop finds the document's shop by name or creates it for the
// caller. A contact owns at most one shop.
func (s *Service) resolveShop(ctx context.Context, repo *catalog.Repository, userID int64, name string) (*models.Shop, error) {
	contactID, err := repo.ContactIDForUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "contact required")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load contact")
	}

	shop, err := repo.FindShopByName(ctx, name)
	switch {
	case err == nil:
		if shop.OwnerContactID != contactID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "shop belongs to another contact")
		}
		return shop, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop")
	}

	if owned, err := repo.FindShopByOwner(ctx, contactID); err == nil {
		return nil, pkgerrors.Newf(pkgerrors.CodeConflict, "contact already owns shop %q", owned.Name)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop")
	}

	shop = &models.Shop{Name: name, OwnerContactID: contactID, State: true}
	if err := repo.CreateShop(ctx, shop); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create shop")
	}
	return shop, nil
}
