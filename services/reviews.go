package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"storefront-api/models"
)

type ReviewInput struct {
	ProductID uint
	OrderID   uint
	Rating    int
	Comment   string
}

type ReviewStats struct {
	Count   int64   `json:"count"`
	Average float64 `json:"average"`
}

// VoteResult reports the review after a vote and the caller's standing vote,
// which is nil once a vote has been withdrawn.
type VoteResult struct {
	Review  *models.Review `json:"review"`
	Helpful *bool          `json:"helpful"`
}

// ReviewService gates reviews on delivered orders and keeps helpfulness
// counts.
type ReviewService struct {
	db *gorm.DB
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{db: db}
}

// CreateReview accepts one review per (account, product, order) for a
// delivered order that contains the product.
func (s *ReviewService) CreateReview(ctx context.Context, accountID uint, in ReviewInput) (*models.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, Validation("rating", "rating must be between 1 and 5")
	}
	if in.ProductID == 0 {
		return nil, Validation("product_id", "product_id is required")
	}
	if in.OrderID == 0 {
		return nil, Validation("order_id", "order_id is required")
	}
	db := s.db.WithContext(ctx)

	var order models.Order
	if err := db.First(&order, in.OrderID).Error; err != nil {
		if isNotFound(err) {
			return nil, NotFound("order")
		}
		return nil, wrap("load order", err)
	}
	if order.AccountID != accountID {
		return nil, Forbidden("this order does not belong to you")
	}
	if order.Status != models.StatusDelivered {
		return nil, Validation("order_id", "only products from delivered orders can be reviewed")
	}

	var lines int64
	if err := db.Model(&models.OrderItem{}).
		Where("order_id = ? AND product_id = ?", in.OrderID, in.ProductID).
		Count(&lines).Error; err != nil {
		return nil, wrap("check order items", err)
	}
	if lines == 0 {
		return nil, Validation("product_id", "this order does not contain the product")
	}

	var existing int64
	if err := db.Model(&models.Review{}).
		Where("account_id = ? AND product_id = ? AND order_id = ?", accountID, in.ProductID, in.OrderID).
		Count(&existing).Error; err != nil {
		return nil, wrap("check existing review", err)
	}
	if existing > 0 {
		return nil, Conflict("you have already reviewed this product for this order")
	}

	review := &models.Review{
		AccountID: accountID,
		ProductID: in.ProductID,
		OrderID:   in.OrderID,
		Rating:    in.Rating,
		Comment:   strings.TrimSpace(in.Comment),
	}
	if err := db.Create(review).Error; err != nil {
		return nil, wrap("create review", err)
	}
	return review, nil
}

// ListReviews returns the active reviews of a product, most helpful first.
func (s *ReviewService) ListReviews(ctx context.Context, productID uint) ([]models.Review, ReviewStats, error) {
	var stats ReviewStats
	db := s.db.WithContext(ctx)

	var product models.Product
	if err := db.Select("id").First(&product, productID).Error; err != nil {
		if isNotFound(err) {
			return nil, stats, NotFound("product")
		}
		return nil, stats, wrap("load product", err)
	}

	var reviews []models.Review
	if err := db.Preload("Account", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name") }).
		Where("product_id = ?", productID).
		Order("helpful_count desc, created_at desc").
		Find(&reviews).Error; err != nil {
		return nil, stats, wrap("list reviews", err)
	}

	var agg struct {
		Count   int64
		Average *float64
	}
	if err := db.Model(&models.Review{}).
		Select("count(*) as count, avg(rating) as average").
		Where("product_id = ?", productID).
		Scan(&agg).Error; err != nil {
		return nil, stats, wrap("review stats", err)
	}
	stats.Count = agg.Count
	if agg.Average != nil {
		stats.Average = *agg.Average
	}
	return reviews, stats, nil
}

// DeleteReview soft-deletes a review. Only its author or an admin may do so.
func (s *ReviewService) DeleteReview(ctx context.Context, actorID uint, isAdmin bool, reviewID uint) error {
	var review models.Review
	if err := s.db.WithContext(ctx).First(&review, reviewID).Error; err != nil {
		if isNotFound(err) {
			return NotFound("review")
		}
		return wrap("load review", err)
	}
	if review.AccountID != actorID && !isAdmin {
		return Forbidden("you can only delete your own reviews")
	}
	if err := s.db.WithContext(ctx).Delete(&review).Error; err != nil {
		return wrap("delete review", err)
	}
	return nil
}

// Vote records whether voterID found a review helpful. A first vote moves the
// count by one, switching sides moves it by two, and repeating the same vote
// withdraws it.
func (s *ReviewService) Vote(ctx context.Context, reviewID, voterID uint, helpful bool) (*VoteResult, error) {
	result := &VoteResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var review models.Review
		if err := tx.First(&review, reviewID).Error; err != nil {
			if isNotFound(err) {
				return NotFound("review")
			}
			return wrap("load review", err)
		}
		if review.AccountID == voterID {
			return Forbidden("you cannot vote on your own review")
		}

		sign := 1
		if !helpful {
			sign = -1
		}

		var vote models.ReviewVote
		err := tx.Where("review_id = ? AND voter_id = ?", reviewID, voterID).First(&vote).Error
		var delta int
		switch {
		case isNotFound(err):
			vote = models.ReviewVote{ReviewID: reviewID, VoterID: voterID, Helpful: helpful}
			if err := tx.Create(&vote).Error; err != nil {
				if isUniqueViolation(err) {
					return Conflict("vote already recorded")
				}
				return wrap("create vote", err)
			}
			delta = sign
			result.Helpful = &helpful
		case err != nil:
			return wrap("load vote", err)
		case vote.Helpful == helpful:
			if err := tx.Delete(&vote).Error; err != nil {
				return wrap("withdraw vote", err)
			}
			delta = -sign
		default:
			if err := tx.Model(&vote).Update("helpful", helpful).Error; err != nil {
				return wrap("change vote", err)
			}
			delta = 2 * sign
			result.Helpful = &helpful
		}

		if err := tx.Model(&review).Update("helpful_count", gorm.Expr("helpful_count + ?", delta)).Error; err != nil {
			return wrap("update helpful count", err)
		}
		if err := tx.First(&review, reviewID).Error; err != nil {
			return wrap("reload review", err)
		}
		result.Review = &review
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
