package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents all possible states of an order
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusAccepted  OrderStatus = "accepted"
	StatusPreparing OrderStatus = "preparing"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// AllStatuses lists the statuses in lifecycle order.
var AllStatuses = []OrderStatus{
	StatusPending,
	StatusAccepted,
	StatusPreparing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
}

type DeliveryMethod string

const (
	DeliveryPickup   DeliveryMethod = "pickup"
	DeliveryDelivery DeliveryMethod = "delivery"
)

type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

type Order struct {
	ID              uint                 `json:"id" gorm:"primaryKey"`
	OrderNumber     string               `json:"order_number" gorm:"uniqueIndex;not null"`
	AccountID       uint                 `json:"account_id" gorm:"not null;index"`
	Account         *Account             `json:"account,omitempty" gorm:"foreignKey:AccountID"`
	Status          OrderStatus          `json:"status" gorm:"not null;default:'pending';index"`
	DeliveryMethod  DeliveryMethod       `json:"delivery_method" gorm:"not null"`
	DeliveryAddress string               `json:"delivery_address"`
	PreferredTime   string               `json:"preferred_time"`
	PreferredDay    string               `json:"preferred_day"`
	Notes           string               `json:"notes"`
	Subtotal        decimal.Decimal      `json:"subtotal" gorm:"type:decimal(12,2)"`
	ListSubtotal    decimal.Decimal      `json:"list_subtotal" gorm:"type:decimal(12,2)"`
	PaymentMethod   string               `json:"payment_method"`
	PaymentStatus   PaymentStatus        `json:"payment_status" gorm:"not null;default:'unpaid'"`
	PaymentRef      string               `json:"payment_ref"`
	PaidAt          *time.Time           `json:"paid_at"`
	Items           []OrderItem          `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	StatusHistory   []OrderStatusHistory `json:"status_history,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// OrderItem is the line-item snapshot taken at checkout. Name, UnitPrice and
// Discount are copied from the product and never change afterwards.
type OrderItem struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	OrderID   uint            `json:"order_id" gorm:"not null;index"`
	ProductID uint            `json:"product_id" gorm:"not null;index"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price" gorm:"not null;type:decimal(10,2)"`
	Discount  decimal.Decimal `json:"discount" gorm:"type:decimal(5,2)"`
	Quantity  int             `json:"quantity" gorm:"not null"`
}

// LineTotal is the discounted price times quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return ApplyDiscount(i.UnitPrice, i.Discount).Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderStatusHistory tracks every status change
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    uint        `json:"order_id" gorm:"not null;index"`
	FromStatus OrderStatus `json:"from_status"`
	ToStatus   OrderStatus `json:"to_status" gorm:"not null"`
	ChangedBy  uint        `json:"changed_by"`
	Note       string      `json:"note"`
	CreatedAt  time.Time   `json:"created_at"`
}
