package catalog

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

// ShopDTO is the API view of a shop.
type ShopDTO struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	URL            *string   `json:"url,omitempty"`
	OwnerContactID int64     `json:"owner_contact_id"`
	State          bool      `json:"state"`
	CreatedAt      time.Time `json:"created_at"`
}

// CategoryDTO is the API view of a category.
type CategoryDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ParameterDTO is the API view of a parameter name.
type ParameterDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ListingParameterDTO is one parameter value on a listing.
type ListingParameterDTO struct {
	ParameterID int64  `json:"parameter_id"`
	Name        string `json:"name"`
	Value       string `json:"value"`
}

// ListingShopDTO is the shop summary embedded in a listing.
type ListingShopDTO struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	State bool   `json:"state"`
}

// ListingDTO is a product as sold by one shop.
type ListingDTO struct {
	ID         int64                 `json:"id"`
	ProductID  int64                 `json:"product_id"`
	Name       string                `json:"name"`
	Category   *CategoryDTO          `json:"category,omitempty"`
	Shop       *ListingShopDTO       `json:"shop,omitempty"`
	Model      string                `json:"model"`
	Quantity   int                   `json:"quantity"`
	Price      decimal.Decimal       `json:"price"`
	PriceRRC   decimal.Decimal       `json:"price_rrc"`
	Parameters []ListingParameterDTO `json:"parameters"`
}

type CreateShopRequest struct {
	Name  string  `json:"name" validate:"required,max=128"`
	URL   *string `json:"url,omitempty" validate:"omitempty,url,max=512"`
	State *bool   `json:"state,omitempty"`
}

type UpdateShopRequest struct {
	Name *string                `json:"name,omitempty" validate:"omitempty,max=128"`
	URL  types.Optional[string] `json:"url"`
}

type ShopStateRequest struct {
	State *bool `json:"state" validate:"required"`
}

type ShopFilter struct {
	Name string
	pagination.Params
}

type CategoryRequest struct {
	ID   *int64 `json:"id,omitempty" validate:"omitempty,gt=0"`
	Name string `json:"name" validate:"required,max=128"`
}

type CategoryFilter struct {
	Name   string
	ShopID int64
	pagination.Params
}

type ParameterRequest struct {
	Name string `json:"name" validate:"required,max=64"`
}

type ParameterFilter struct {
	Name string
	pagination.Params
}

// CreateListingRequest lists a product in the caller's shop. The product is
// matched by (name, category) and created when absent.
type CreateListingRequest struct {
	Name       string            `json:"name" validate:"required,max=255"`
	CategoryID int64             `json:"category_id" validate:"required,gt=0"`
	Model      string            `json:"model" validate:"omitempty,max=128"`
	Quantity   int               `json:"quantity" validate:"gte=0"`
	Price      decimal.Decimal   `json:"price"`
	PriceRRC   decimal.Decimal   `json:"price_rrc"`
	Parameters map[string]string `json:"parameters,omitempty"`
}

// UpdateListingRequest patches a listing. Parameters, when present,
// replace the listing's full parameter set.
type UpdateListingRequest struct {
	Model      *string            `json:"model,omitempty" validate:"omitempty,max=128"`
	Quantity   *int               `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	Price      *decimal.Decimal   `json:"price,omitempty"`
	PriceRRC   *decimal.Decimal   `json:"price_rrc,omitempty"`
	Parameters *map[string]string `json:"parameters,omitempty"`
}

// ListingFilter selects listings for GET /products/.
type ListingFilter struct {
	ProductID   int64
	ShopID      int64
	CategoryID  int64
	ParameterID int64
	Model       string
	Search      string
	Ordering    string
	pagination.Params
}

func shopFromModel(s *models.Shop) ShopDTO {
	return ShopDTO{
		ID:             s.ID,
		Name:           s.Name,
		URL:            s.URL,
		OwnerContactID: s.OwnerContactID,
		State:          s.State,
		CreatedAt:      s.CreatedAt,
	}
}

func categoryFromModel(c *models.Category) CategoryDTO {
	return CategoryDTO{ID: c.ID, Name: c.Name}
}

func parameterFromModel(p *models.Parameter) ParameterDTO {
	return ParameterDTO{ID: p.ID, Name: p.Name}
}

// ListingFromModel expects Product.Category, Shop and Parameters.Parameter
// to be preloaded; missing associations are omitted.
func ListingFromModel(info *models.ProductInfo) ListingDTO {
	out := ListingDTO{
		ID:         info.ID,
		ProductID:  info.ProductID,
		Model:      info.Model,
		Quantity:   info.Quantity,
		Price:      info.Price,
		PriceRRC:   info.PriceRRC,
		Parameters: make([]ListingParameterDTO, 0, len(info.Parameters)),
	}
	if info.Product != nil {
		out.Name = info.Product.Name
		if info.Product.Category != nil {
			category := categoryFromModel(info.Product.Category)
			out.Category = &category
		}
	}
	if info.Shop != nil {
		out.Shop = &ListingShopDTO{ID: info.Shop.ID, Name: info.Shop.Name, State: info.Shop.State}
	}
	for _, pp := range info.Parameters {
		param := ListingParameterDTO{ParameterID: pp.ParameterID, Value: pp.Value}
		if pp.Parameter != nil {
			param.Name = pp.Parameter.Name
		}
		out.Parameters = append(out.Parameters, param)
	}
	return out
}
