package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"storefront-api/services"
)

type CreateProductRequest struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description"`
	Category    string          `json:"category" validate:"max=100"`
	Price       decimal.Decimal `json:"price"`
	Discount    decimal.Decimal `json:"discount"`
	Quantity    int             `json:"quantity" validate:"gte=0"`
	IsActive    *bool           `json:"is_active"`
}

type UpdateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,max=200"`
	Description *string          `json:"description"`
	Category    *string          `json:"category" validate:"omitempty,max=100"`
	Price       *decimal.Decimal `json:"price"`
	Discount    *decimal.Decimal `json:"discount"`
	Quantity    *int             `json:"quantity" validate:"omitempty,gte=0"`
	IsActive    *bool            `json:"is_active"`
}

// ListProducts returns the catalog (public)
func (h *Handler) ListProducts(c *gin.Context) {
	filter := services.ProductFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}
	h.listProducts(c, filter)
}

// AdminListProducts includes hidden products
func (h *Handler) AdminListProducts(c *gin.Context) {
	h.listProducts(c, services.ProductFilter{
		Category:        c.Query("category"),
		Search:          c.Query("search"),
		IncludeInactive: true,
	})
}

func (h *Handler) listProducts(c *gin.Context, filter services.ProductFilter) {
	products, err := h.Catalog.ListProducts(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Products loaded", gin.H{"count": len(products), "products": products})
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	product, err := h.Catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !product.IsActive {
		fail(c, http.StatusNotFound, "product not found", nil)
		return
	}
	respond(c, http.StatusOK, "Product loaded", gin.H{
		"product":          product,
		"discounted_price": product.DiscountedPrice(),
	})
}

func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.Catalog.ListCategories(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Categories loaded", gin.H{"count": len(categories), "categories": categories})
}

// CreateProduct adds a catalog entry (admin only)
func (h *Handler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if !h.bind(c, &req) {
		return
	}
	product, err := h.Catalog.CreateProduct(c.Request.Context(), services.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Discount:    req.Discount,
		Quantity:    req.Quantity,
		IsActive:    req.IsActive,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Product created", gin.H{"product": product})
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req UpdateProductRequest
	if !h.bind(c, &req) {
		return
	}
	product, err := h.Catalog.UpdateProduct(c.Request.Context(), id, services.ProductUpdate{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Discount:    req.Discount,
		Quantity:    req.Quantity,
		IsActive:    req.IsActive,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Product updated", gin.H{"product": product})
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.Catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Product deleted", gin.H{"product_id": id})
}
