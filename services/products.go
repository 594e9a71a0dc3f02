package services

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront-api/models"
)

type ProductInput struct {
	Name        string
	Description string
	Category    string
	Price       decimal.Decimal
	Discount    decimal.Decimal
	Quantity    int
	IsActive    *bool
}

// ProductUpdate carries the fields an admin wants to change. TotalOrdered is
// never set directly.
type ProductUpdate struct {
	Name        *string
	Description *string
	Category    *string
	Price       *decimal.Decimal
	Discount    *decimal.Decimal
	Quantity    *int
	IsActive    *bool
}

type ProductFilter struct {
	Category        string
	Search          string
	IncludeInactive bool
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

var hundred = decimal.NewFromInt(100)

func validatePricing(price, discount *decimal.Decimal, quantity *int) error {
	if price != nil && !price.IsPositive() {
		return Validation("price", "price must be greater than 0")
	}
	if discount != nil && (discount.IsNegative() || discount.GreaterThan(hundred)) {
		return Validation("discount", "discount must be between 0 and 100")
	}
	if quantity != nil && *quantity < 0 {
		return Validation("quantity", "quantity cannot be negative")
	}
	return nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, Validation("name", "name is required")
	}
	if err := validatePricing(&in.Price, &in.Discount, &in.Quantity); err != nil {
		return nil, err
	}
	product := &models.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Category:    strings.TrimSpace(in.Category),
		Price:       in.Price,
		Discount:    in.Discount,
		Quantity:    in.Quantity,
		IsActive:    true,
	}
	if err := s.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, wrap("create product", err)
	}
	// a false IsActive is a zero value, so gorm would let the column default win
	if in.IsActive != nil && !*in.IsActive {
		if err := s.db.WithContext(ctx).Model(product).Update("is_active", false).Error; err != nil {
			return nil, wrap("deactivate product", err)
		}
	}
	return product, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, upd ProductUpdate) (*models.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validatePricing(upd.Price, upd.Discount, upd.Quantity); err != nil {
		return nil, err
	}
	changes := map[string]any{}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, Validation("name", "name cannot be empty")
		}
		changes["name"] = name
	}
	if upd.Description != nil {
		changes["description"] = *upd.Description
	}
	if upd.Category != nil {
		changes["category"] = strings.TrimSpace(*upd.Category)
	}
	if upd.Price != nil {
		changes["price"] = *upd.Price
	}
	if upd.Discount != nil {
		changes["discount"] = *upd.Discount
	}
	if upd.Quantity != nil {
		changes["quantity"] = *upd.Quantity
	}
	if upd.IsActive != nil {
		changes["is_active"] = *upd.IsActive
	}
	if len(changes) == 0 {
		return product, nil
	}
	if err := s.db.WithContext(ctx).Model(product).Updates(changes).Error; err != nil {
		return nil, wrap("update product", err)
	}
	return s.GetProduct(ctx, id)
}

// DeleteProduct hides a product that has been ordered before, since past
// orders keep their snapshot, and removes it outright otherwise.
func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return err
	}
	var lines int64
	if err := s.db.WithContext(ctx).Model(&models.OrderItem{}).Where("product_id = ?", id).Count(&lines).Error; err != nil {
		return wrap("count order lines", err)
	}
	if lines > 0 {
		if err := s.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Update("is_active", false).Error; err != nil {
			return wrap("deactivate product", err)
		}
		return nil
	}
	if err := s.db.WithContext(ctx).Delete(&models.Product{}, id).Error; err != nil {
		return wrap("delete product", err)
	}
	return nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, id).Error; err != nil {
		if isNotFound(err) {
			return nil, NotFound("product")
		}
		return nil, wrap("get product", err)
	}
	return &product, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	q := s.db.WithContext(ctx).Order("name asc")
	if !f.IncludeInactive {
		q = q.Where("is_active = ?", true)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	var products []models.Product
	if err := q.Find(&products).Error; err != nil {
		return nil, wrap("list products", err)
	}
	return products, nil
}

// ListCategories returns every category of active products with its size.
func (s *CatalogService) ListCategories(ctx context.Context) ([]CategoryCount, error) {
	var out []CategoryCount
	if err := s.db.WithContext(ctx).Model(&models.Product{}).
		Select("category, count(*) as count").
		Where("is_active = ? AND category <> ''", true).
		Group("category").
		Order("category asc").
		Scan(&out).Error; err != nil {
		return nil, wrap("list categories", err)
	}
	return out, nil
}
