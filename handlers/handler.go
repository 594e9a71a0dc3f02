// Package handlers exposes the storefront services over HTTP.
package handlers

import (
	validatorv10 "github.com/go-playground/validator/v10"

	"storefront-api/services"
)

type Handler struct {
	Accounts *services.AccountService
	Orders   *services.OrderService
	Reviews  *services.ReviewService
	Catalog  *services.CatalogService
	Content  *services.ContentService

	validate     *validatorv10.Validate
	exposeErrors bool
}

// New builds the handler set. exposeErrors puts internal error text into 500
// responses and is meant for development only.
func New(accounts *services.AccountService, orders *services.OrderService, reviews *services.ReviewService,
	catalog *services.CatalogService, content *services.ContentService, exposeErrors bool) *Handler {
	return &Handler{
		Accounts:     accounts,
		Orders:       orders,
		Reviews:      reviews,
		Catalog:      catalog,
		Content:      content,
		validate:     newValidator(),
		exposeErrors: exposeErrors,
	}
}
