package visibility

import (
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// EnsureOrderable rejects listings buyers must not put in a basket: a listing
// without its shop, or one whose shop has stopped accepting orders.
func EnsureOrderable(shop *models.Shop, listing *models.ProductInfo) error {
	if listing == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if shop == nil || shop.ID != listing.ShopID {
		return pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
	}
	if !shop.State {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "shop is not accepting orders")
	}
	return nil
}
