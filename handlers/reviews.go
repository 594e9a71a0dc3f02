package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-api/middleware"
	"storefront-api/services"
)

type CreateReviewRequest struct {
	ProductID uint   `json:"product_id" validate:"required"`
	OrderID   uint   `json:"order_id" validate:"required"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment" validate:"max=2000"`
}

type VoteRequest struct {
	Helpful *bool `json:"helpful" validate:"required"`
}

// ListProductReviews returns a product's reviews with the average rating (public)
func (h *Handler) ListProductReviews(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	reviews, stats, err := h.Reviews.ListReviews(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Reviews loaded", gin.H{
		"count":          stats.Count,
		"average_rating": stats.Average,
		"reviews":        reviews,
	})
}

// CreateReview rates a product from one of the caller's delivered orders
func (h *Handler) CreateReview(c *gin.Context) {
	var req CreateReviewRequest
	if !h.bind(c, &req) {
		return
	}
	review, err := h.Reviews.CreateReview(c.Request.Context(), middleware.GetAccountID(c), services.ReviewInput{
		ProductID: req.ProductID,
		OrderID:   req.OrderID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Review submitted", gin.H{"review": review})
}

func (h *Handler) DeleteReview(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.Reviews.DeleteReview(c.Request.Context(), middleware.GetAccountID(c), middleware.IsAdmin(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Review deleted", gin.H{"review_id": id})
}

// VoteReview toggles the caller's helpfulness vote
func (h *Handler) VoteReview(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req VoteRequest
	if !h.bind(c, &req) {
		return
	}
	res, err := h.Reviews.Vote(c.Request.Context(), id, middleware.GetAccountID(c), *req.Helpful)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Vote recorded", gin.H{
		"review":        res.Review,
		"helpful_count": res.Review.HelpfulCount,
		"your_vote":     res.Helpful,
	})
}
