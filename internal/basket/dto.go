package basket

// AddItemRequest puts a product in the caller's basket. ShopID picks the
// listing when more than one shop sells the product.
type AddItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	ShopID    int64 `json:"shop_id,omitempty" validate:"omitempty,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gte=1"`
}

type UpdateItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	ShopID    int64 `json:"shop_id,omitempty" validate:"omitempty,gt=0"`
	Quantity  *int  `json:"quantity" validate:"required,gte=0"`
}

type RemoveItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	ShopID    int64 `json:"shop_id,omitempty" validate:"omitempty,gt=0"`
}
