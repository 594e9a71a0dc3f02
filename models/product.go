package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry. TotalOrdered counts units sitting in orders
// that have not been delivered yet.
type Product struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	Name         string          `json:"name" gorm:"not null"`
	Description  string          `json:"description"`
	Category     string          `json:"category" gorm:"index"`
	Price        decimal.Decimal `json:"price" gorm:"not null;type:decimal(10,2)"`
	Discount     decimal.Decimal `json:"discount" gorm:"not null;type:decimal(5,2);default:0"` // percent off
	Quantity     int             `json:"quantity" gorm:"not null;default:0"`
	TotalOrdered int             `json:"total_ordered" gorm:"not null;default:0"`
	IsActive     bool            `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// DiscountedPrice returns the unit price after the percentage discount,
// rounded to cents.
func (p Product) DiscountedPrice() decimal.Decimal {
	return ApplyDiscount(p.Price, p.Discount)
}

// ApplyDiscount takes percent off price.
func ApplyDiscount(price, percent decimal.Decimal) decimal.Decimal {
	if percent.IsZero() {
		return price
	}
	factor := decimal.NewFromInt(100).Sub(percent).Div(decimal.NewFromInt(100))
	return price.Mul(factor).Round(2)
}
