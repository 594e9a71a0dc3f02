package models

import (
	"time"

	"gorm.io/gorm"
)

// Review is one rating per (account, product, order). Soft-deleted reviews
// no longer count as active.
type Review struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	AccountID    uint           `json:"account_id" gorm:"not null;index"`
	Account      *Account       `json:"account,omitempty" gorm:"foreignKey:AccountID"`
	ProductID    uint           `json:"product_id" gorm:"not null;index"`
	OrderID      uint           `json:"order_id" gorm:"not null;index"`
	Rating       int            `json:"rating" gorm:"not null"`
	Comment      string         `json:"comment"`
	HelpfulCount int            `json:"helpful_count" gorm:"not null;default:0"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

type ReviewVote struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ReviewID  uint      `json:"review_id" gorm:"not null;uniqueIndex:idx_review_voter"`
	VoterID   uint      `json:"voter_id" gorm:"not null;uniqueIndex:idx_review_voter"`
	Helpful   bool      `json:"helpful"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
