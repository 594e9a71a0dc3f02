package routes

import (
	"github.com/gin-gonic/gin"

	"storefront-api/handlers"
	"storefront-api/middleware"
	"storefront-api/models"
)

func SetupRoutes(r *gin.Engine, h *handlers.Handler, issuer *middleware.TokenIssuer) {
	r.GET("/health", h.Health)

	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		// Auth: one endpoint signs in or registers; the old names stay as aliases
		public.POST("/auth/resolve", h.Resolve)
		public.POST("/auth/register", h.Resolve)
		public.POST("/auth/login", h.Resolve)

		// Catalog
		public.GET("/products", h.ListProducts)
		public.GET("/products/:id", h.GetProduct)
		public.GET("/products/:id/reviews", h.ListProductReviews)
		public.GET("/categories", h.ListCategories)
		public.POST("/orders/quote", h.QuoteOrder)

		// Static content
		public.GET("/pages/:slug", h.GetPage)
		public.POST("/contact", h.SubmitContact)

		public.GET("/state-machine", h.GetStateMachineInfo)
	}

	// ── Authenticated routes ───────────────────────────────────────
	auth := r.Group("/api")
	auth.Use(middleware.AuthRequired(issuer))
	{
		auth.GET("/profile", h.GetProfile)
		auth.PUT("/profile", h.UpdateProfile)

		auth.POST("/reviews", h.CreateReview)
		auth.DELETE("/reviews/:id", h.DeleteReview)
		auth.POST("/reviews/:id/vote", h.VoteReview)
	}

	// ── Customer routes ────────────────────────────────────────────
	customer := r.Group("/api/orders")
	customer.Use(middleware.AuthRequired(issuer), middleware.RoleRequired(models.RoleCustomer))
	{
		customer.POST("", h.PlaceOrder)
		customer.GET("", h.GetMyOrders)
		customer.GET("/:id", h.GetOrderDetail)
		customer.PUT("/:id/cancel", h.CancelOrder)
	}

	// ── Admin routes ───────────────────────────────────────────────
	admin := r.Group("/api/admin")
	admin.Use(middleware.AuthRequired(issuer), middleware.RoleRequired(models.RoleAdmin))
	{
		admin.GET("/accounts", h.AdminListAccounts)
		admin.POST("/accounts", h.AdminCreateAccount)
		admin.DELETE("/accounts/:id", h.AdminDeleteAccount)

		admin.GET("/products", h.AdminListProducts)
		admin.POST("/products", h.CreateProduct)
		admin.PUT("/products/:id", h.UpdateProduct)
		admin.DELETE("/products/:id", h.DeleteProduct)

		admin.GET("/orders", h.AdminListOrders)
		admin.GET("/orders/:id", h.AdminGetOrder)
		admin.PUT("/orders/:id/status", h.AdminUpdateOrderStatus)
		admin.PUT("/orders/:id/payment", h.AdminUpdatePayment)
		admin.DELETE("/orders/:id", h.AdminDeleteOrder)

		admin.PUT("/pages/:slug", h.AdminUpsertPage)
		admin.GET("/contact-messages", h.AdminListContactMessages)
	}
}
