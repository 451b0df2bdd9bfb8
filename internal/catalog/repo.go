package catalog

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

// Repository holds catalog persistence, including the keyed upserts shared
// by CRUD handlers and the document importer.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ContactIDForUser returns gorm.ErrRecordNotFound when the user has no contact.
func (r *Repository) ContactIDForUser(ctx context.Context, userID int64) (int64, error) {
	var contact models.Contact
	if err := r.db.WithContext(ctx).Select("id").Where("user_id = ?", userID).First(&contact).Error; err != nil {
		return 0, err
	}
	return contact.ID, nil
}

func (r *Repository) FindShop(ctx context.Context, id int64) (*models.Shop, error) {
	var shop models.Shop
	if err := r.db.WithContext(ctx).First(&shop, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *Repository) FindShopByName(ctx context.Context, name string) (*models.Shop, error) {
	var shop models.Shop
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&shop).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *Repository) FindShopByOwner(ctx context.Context, contactID int64) (*models.Shop, error) {
	var shop models.Shop
	if err := r.db.WithContext(ctx).Where("owner_contact_id = ?", contactID).First(&shop).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *Repository) CreateShop(ctx context.Context, shop *models.Shop) error {
	return r.db.WithContext(ctx).Create(shop).Error
}

func (r *Repository) UpdateShop(ctx context.Context, id int64, changes map[string]any) error {
	if len(changes) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.Shop{}).Where("id = ?", id).Updates(changes).Error
}

func (r *Repository) DeleteShop(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.Shop{}, "id = ?", id).Error
}

// ListShops returns up to limit shops with id greater than afterID.
func (r *Repository) ListShops(ctx context.Context, name string, afterID int64, limit int) ([]models.Shop, error) {
	q := r.db.WithContext(ctx).Model(&models.Shop{})
	if name != "" {
		q = q.Where("name = ?", name)
	}
	if afterID > 0 {
		q = q.Where("id > ?", afterID)
	}
	var rows []models.Shop
	err := q.Order("id ASC").Limit(limit).Find(&rows).Error
	return rows, err
}

func (r *Repository) FindCategory(ctx context.Context, id int64) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *Repository) CreateCategory(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *Repository) ListCategories(ctx context.Context, filter CategoryFilter, afterID int64, limit int) ([]models.Category, error) {
	q := r.db.WithContext(ctx).Model(&models.Category{})
	if filter.Name != "" {
		q = q.Where("name = ?", filter.Name)
	}
	if filter.ShopID > 0 {
		q = q.Where("id IN (?)", r.db.Model(&models.ShopCategory{}).Select("category_id").Where("shop_id = ?", filter.ShopID))
	}
	if afterID > 0 {
		q = q.Where("id > ?", afterID)
	}
	var rows []models.Category
	err := q.Order("id ASC").Limit(limit).Find(&rows).Error
	return rows, err
}

func (r *Repository) RenameCategory(ctx context.Context, id int64, name string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Update("name", name)
	return res.RowsAffected, res.Error
}

func (r *Repository) DeleteCategory(ctx context.Context, id int64) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.Category{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

// UpsertCategory creates the category under its external id or renames it.
func (r *Repository) UpsertCategory(ctx context.Context, id int64, name string) (*models.Category, error) {
	category := &models.Category{ID: id, Name: name}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name"}),
	}).Create(category).Error
	if err != nil {
		return nil, err
	}
	return category, nil
}

// SyncCategorySequence moves the postgres id sequence past ids written
// explicitly from catalog documents. Other dialects track this themselves.
func (r *Repository) SyncCategorySequence(ctx context.Context) error {
	if r.db.Dialector.Name() != db.DriverPostgres {
		return nil
	}
	return r.db.WithContext(ctx).
		Exec("SELECT setval(pg_get_serial_sequence('categories', 'id'), GREATEST((SELECT MAX(id) FROM categories), 1))").Error
}

// LinkShopCategory records that the shop carries the category.
func (r *Repository) LinkShopCategory(ctx context.Context, shopID, categoryID int64) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.ShopCategory{ShopID: shopID, CategoryID: categoryID}).Error
}

// UpsertProduct resolves the product by (name, category), creating it when absent.
func (r *Repository) UpsertProduct(ctx context.Context, name string, categoryID int64) (*models.Product, error) {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}, {Name: "category_id"}},
		DoNothing: true,
	}).Create(&models.Product{Name: name, CategoryID: categoryID}).Error
	if err != nil {
		return nil, err
	}
	var product models.Product
	if err := r.db.WithContext(ctx).Where("name = ? AND category_id = ?", name, categoryID).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// UpsertListing writes the shop's offer for a product, overwriting stock and
// prices when the listing already exists.
func (r *Repository) UpsertListing(ctx context.Context, info *models.ProductInfo) (*models.ProductInfo, error) {
	row := *info
	row.ID = 0
	row.Parameters = nil
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}, {Name: "shop_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"model", "quantity", "price", "price_rrc", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return nil, err
	}
	var stored models.ProductInfo
	if err := r.db.WithContext(ctx).Where("product_id = ? AND shop_id = ?", info.ProductID, info.ShopID).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

// UpsertParameter resolves a parameter by name, creating it when absent.
func (r *Repository) UpsertParameter(ctx context.Context, name string) (*models.Parameter, error) {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&models.Parameter{Name: name}).Error
	if err != nil {
		return nil, err
	}
	var param models.Parameter
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&param).Error; err != nil {
		return nil, err
	}
	return &param, nil
}

// SetListingParameter writes one parameter value on a listing.
func (r *Repository) SetListingParameter(ctx context.Context, infoID, parameterID int64, value string) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_info_id"}, {Name: "parameter_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&models.ProductParameter{ProductInfoID: infoID, ParameterID: parameterID, Value: value}).Error
}

// ClearListingParameters drops every parameter value except the kept ids.
func (r *Repository) ClearListingParameters(ctx context.Context, infoID int64, keep []int64) error {
	q := r.db.WithContext(ctx).Where("product_info_id = ?", infoID)
	if len(keep) > 0 {
		q = q.Where("parameter_id NOT IN ?", keep)
	}
	return q.Delete(&models.ProductParameter{}).Error
}

func (r *Repository) FindParameter(ctx context.Context, id int64) (*models.Parameter, error) {
	var param models.Parameter
	if err := r.db.WithContext(ctx).First(&param, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &param, nil
}

func (r *Repository) CreateParameter(ctx context.Context, param *models.Parameter) error {
	return r.db.WithContext(ctx).Create(param).Error
}

func (r *Repository) RenameParameter(ctx context.Context, id int64, name string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Parameter{}).Where("id = ?", id).Update("name", name)
	return res.RowsAffected, res.Error
}

func (r *Repository) DeleteParameter(ctx context.Context, id int64) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.Parameter{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

func (r *Repository) ListParameters(ctx context.Context, name string, afterID int64, limit int) ([]models.Parameter, error) {
	q := r.db.WithContext(ctx).Model(&models.Parameter{})
	if name != "" {
		q = q.Where("name = ?", name)
	}
	if afterID > 0 {
		q = q.Where("id > ?", afterID)
	}
	var rows []models.Parameter
	err := q.Order("id ASC").Limit(limit).Find(&rows).Error
	return rows, err
}

func (r *Repository) preloadListing(q *gorm.DB) *gorm.DB {
	return q.Preload("Product.Category").
		Preload("Shop").
		Preload("Parameters", func(db *gorm.DB) *gorm.DB { return db.Order("parameter_id ASC") }).
		Preload("Parameters.Parameter")
}

// FindListing loads a listing with its product, shop and parameters.
func (r *Repository) FindListing(ctx context.Context, id int64) (*models.ProductInfo, error) {
	var info models.ProductInfo
	if err := r.preloadListing(r.db.WithContext(ctx)).First(&info, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &info, nil
}

// ListingsForProduct returns every listing of a product.
func (r *Repository) ListingsForProduct(ctx context.Context, productID int64) ([]models.ProductInfo, error) {
	var rows []models.ProductInfo
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *Repository) UpdateListing(ctx context.Context, id int64, changes map[string]any) error {
	if len(changes) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.ProductInfo{}).Where("id = ?", id).Updates(changes).Error
}

func (r *Repository) DeleteListing(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.ProductInfo{}, "id = ?", id).Error
}

// listingQuery is a resolved ListingFilter: the sort column and the typed
// keyset value decoded from the cursor.
type listingQuery struct {
	filter   ListingFilter
	column   string
	desc     bool
	afterKey any
	afterID  int64
	limit    int
}

// ListListings applies the filters, ordering and keyset to product_infos.
// Listings of shops that are not accepting orders are hidden.
func (r *Repository) ListListings(ctx context.Context, lq listingQuery) ([]models.ProductInfo, error) {
	f := lq.filter
	q := r.db.WithContext(ctx).Model(&models.ProductInfo{}).
		Where("shop_id IN (?)", r.db.Model(&models.Shop{}).Select("id").Where("state = ?", true))
	if f.ProductID > 0 {
		q = q.Where("product_id = ?", f.ProductID)
	}
	if f.ShopID > 0 {
		q = q.Where("shop_id = ?", f.ShopID)
	}
	if f.CategoryID > 0 {
		q = q.Where("product_id IN (?)", r.db.Model(&models.Product{}).Select("id").Where("category_id = ?", f.CategoryID))
	}
	if f.ParameterID > 0 {
		q = q.Where("id IN (?)", r.db.Model(&models.ProductParameter{}).Select("product_info_id").Where("parameter_id = ?", f.ParameterID))
	}
	if f.Model != "" {
		q = q.Where("model = ?", f.Model)
	}
	if search := strings.ToLower(strings.TrimSpace(f.Search)); search != "" {
		like := "%" + search + "%"
		q = q.Where("(LOWER(model) LIKE ? OR product_id IN (?))", like,
			r.db.Model(&models.Product{}).Select("id").Where("LOWER(name) LIKE ?", like))
	}

	if lq.afterID > 0 {
		if lq.column == "id" {
			q = q.Where("id > ?", lq.afterID)
		} else {
			q = q.Where(pagination.KeysetCondition(lq.column, lq.desc), lq.afterKey, lq.afterKey, lq.afterID)
		}
	}

	direction := "ASC"
	if lq.desc {
		direction = "DESC"
	}
	if lq.column != "id" {
		q = q.Order(lq.column + " " + direction)
	}
	q = q.Order("id " + direction)

	var rows []models.ProductInfo
	err := r.preloadListing(q).Limit(lq.limit).Find(&rows).Error
	return rows, err
}
