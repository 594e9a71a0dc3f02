package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront-api/idgen"
	"storefront-api/models"
	"storefront-api/notify"
	"storefront-api/statemachine"
)

type OrderItemInput struct {
	ProductID uint
	Quantity  int
}

type CreateOrderInput struct {
	Items           []OrderItemInput
	DeliveryMethod  models.DeliveryMethod
	DeliveryAddress string
	PreferredTime   string
	PreferredDay    string
	Notes           string
	PaymentMethod   string
}

type PaymentUpdate struct {
	Method *string
	Status *models.PaymentStatus
	Ref    *string
}

// QuoteLine prices one cart line at current catalog prices.
type QuoteLine struct {
	ProductID       uint            `json:"product_id"`
	Name            string          `json:"name"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Discount        decimal.Decimal `json:"discount"`
	DiscountedPrice decimal.Decimal `json:"discounted_price"`
	LineTotal       decimal.Decimal `json:"line_total"`
	ListTotal       decimal.Decimal `json:"list_total"`
	Available       int             `json:"available"`
}

type Quote struct {
	Lines        []QuoteLine     `json:"lines"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	ListSubtotal decimal.Decimal `json:"list_subtotal"`
	Savings      decimal.Decimal `json:"savings"`
}

type OrderFilter struct {
	Status    models.OrderStatus
	AccountID uint
}

// OrderSummary counts orders per status.
type OrderSummary map[models.OrderStatus]int64

// OrderService runs the order lifecycle: checkout, status changes and their
// inventory side effects.
type OrderService struct {
	db       *gorm.DB
	ids      idgen.Generator
	notifier notify.Notifier
	now      func() time.Time
}

func NewOrderService(db *gorm.DB, ids idgen.Generator, notifier notify.Notifier) *OrderService {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &OrderService{db: db, ids: ids, notifier: notifier, now: time.Now}
}

func validateItems(items []OrderItemInput) error {
	if len(items) == 0 {
		return Validation("items", "at least one item is required")
	}
	for i, it := range items {
		if it.ProductID == 0 {
			return Validation(fmt.Sprintf("items[%d].product_id", i), "product_id is required")
		}
		if it.Quantity < 1 {
			return Validation(fmt.Sprintf("items[%d].quantity", i), "quantity must be at least 1")
		}
	}
	return nil
}

// mergeItems folds repeated products into one line, keeping first-seen order.
func mergeItems(items []OrderItemInput) []OrderItemInput {
	index := make(map[uint]int, len(items))
	merged := make([]OrderItemInput, 0, len(items))
	for _, it := range items {
		if i, ok := index[it.ProductID]; ok {
			merged[i].Quantity += it.Quantity
			continue
		}
		index[it.ProductID] = len(merged)
		merged = append(merged, it)
	}
	return merged
}

func (s *OrderService) loadProducts(ctx context.Context, items []OrderItemInput) (map[uint]models.Product, error) {
	ids := make([]uint, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	var products []models.Product
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, wrap("load products", err)
	}
	byID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	for _, it := range items {
		p, ok := byID[it.ProductID]
		if !ok {
			return nil, NotFound(fmt.Sprintf("product %d", it.ProductID))
		}
		if !p.IsActive {
			return nil, Validation("items", fmt.Sprintf("product %q is not available", p.Name))
		}
	}
	return byID, nil
}

// Quote prices a cart without touching stock or counters.
func (s *OrderService) Quote(ctx context.Context, items []OrderItemInput) (*Quote, error) {
	if err := validateItems(items); err != nil {
		return nil, err
	}
	items = mergeItems(items)
	products, err := s.loadProducts(ctx, items)
	if err != nil {
		return nil, err
	}
	q := &Quote{Subtotal: decimal.Zero, ListSubtotal: decimal.Zero}
	for _, it := range items {
		p := products[it.ProductID]
		qty := decimal.NewFromInt(int64(it.Quantity))
		line := QuoteLine{
			ProductID:       p.ID,
			Name:            p.Name,
			Quantity:        it.Quantity,
			UnitPrice:       p.Price,
			Discount:        p.Discount,
			DiscountedPrice: p.DiscountedPrice(),
			LineTotal:       p.DiscountedPrice().Mul(qty),
			ListTotal:       p.Price.Mul(qty),
			Available:       p.Quantity,
		}
		q.Lines = append(q.Lines, line)
		q.Subtotal = q.Subtotal.Add(line.LineTotal)
		q.ListSubtotal = q.ListSubtotal.Add(line.ListTotal)
	}
	q.Savings = q.ListSubtotal.Sub(q.Subtotal)
	return q, nil
}

// Create places an order for accountID. Nothing is written unless every
// product exists and has enough stock.
func (s *OrderService) Create(ctx context.Context, accountID uint, in CreateOrderInput) (*models.Order, error) {
	if err := validateItems(in.Items); err != nil {
		return nil, err
	}
	switch in.DeliveryMethod {
	case models.DeliveryPickup:
	case models.DeliveryDelivery:
		if strings.TrimSpace(in.DeliveryAddress) == "" {
			return nil, Validation("delivery_address", "delivery_address is required for delivery")
		}
	default:
		return nil, Validation("delivery_method", "delivery_method must be pickup or delivery")
	}

	items := mergeItems(in.Items)
	products, err := s.loadProducts(ctx, items)
	if err != nil {
		return nil, err
	}

	lines := make([]models.OrderItem, 0, len(items))
	subtotal, listSubtotal := decimal.Zero, decimal.Zero
	for _, it := range items {
		p := products[it.ProductID]
		if p.Quantity < it.Quantity {
			return nil, Validation("items", fmt.Sprintf("only %d of %q left in stock", p.Quantity, p.Name))
		}
		line := models.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.Price,
			Discount:  p.Discount,
			Quantity:  it.Quantity,
		}
		lines = append(lines, line)
		subtotal = subtotal.Add(line.LineTotal())
		listSubtotal = listSubtotal.Add(p.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	build := func() *models.Order {
		snapshot := make([]models.OrderItem, len(lines))
		copy(snapshot, lines)
		return &models.Order{
			OrderNumber:     s.ids.NewOrderNumber(),
			AccountID:       accountID,
			Status:          models.StatusPending,
			DeliveryMethod:  in.DeliveryMethod,
			DeliveryAddress: strings.TrimSpace(in.DeliveryAddress),
			PreferredTime:   in.PreferredTime,
			PreferredDay:    in.PreferredDay,
			Notes:           in.Notes,
			Subtotal:        subtotal,
			ListSubtotal:    listSubtotal,
			PaymentMethod:   in.PaymentMethod,
			PaymentStatus:   models.PaymentUnpaid,
			Items:           snapshot,
		}
	}

	order := build()
	err = s.insert(ctx, order)
	if err != nil && isUniqueViolation(err) {
		log.Warn().Str("order_number", order.OrderNumber).Msg("order number collision, retrying")
		order = build()
		err = s.insert(ctx, order)
		if err != nil && isUniqueViolation(err) {
			return nil, Conflict("could not allocate a unique order number, please retry")
		}
	}
	if err != nil {
		return nil, err
	}

	created, err := s.Get(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, created, "", "order placed")
	return created, nil
}

func (s *OrderService) insert(ctx context.Context, order *models.Order) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.OrderStatusHistory{
			OrderID:   order.ID,
			ToStatus:  models.StatusPending,
			ChangedBy: order.AccountID,
			Note:      "Order placed",
		}).Error; err != nil {
			return wrap("record history", err)
		}
		for _, it := range order.Items {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND quantity >= ?", it.ProductID, it.Quantity).
				Updates(map[string]any{
					"quantity":      gorm.Expr("quantity - ?", it.Quantity),
					"total_ordered": gorm.Expr("total_ordered + ?", it.Quantity),
				})
			if res.Error != nil {
				return wrap("reserve stock", res.Error)
			}
			if res.RowsAffected == 0 {
				return Validation("items", fmt.Sprintf("%q is no longer in stock", it.Name))
			}
		}
		return nil
	})
}

// UpdateStatus moves an order to status. Crossing the delivered boundary
// adjusts each product's ordered counter; setting the current status again
// changes nothing.
func (s *OrderService) UpdateStatus(ctx context.Context, actorID, orderID uint, status models.OrderStatus, note string) (*models.Order, error) {
	if !statemachine.IsValidStatus(status) {
		return nil, Validation("status", fmt.Sprintf("unknown status %q", status))
	}
	from, changed, err := s.transition(ctx, actorID, orderID, status, note, "")
	if err != nil {
		return nil, err
	}
	order, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if changed {
		s.notify(ctx, order, from, note)
	}
	return order, nil
}

// Cancel lets a customer withdraw their own order while the lifecycle
// still allows it.
func (s *OrderService) Cancel(ctx context.Context, accountID, orderID uint) (*models.Order, error) {
	from, changed, err := s.transition(ctx, accountID, orderID, models.StatusCancelled, "Order cancelled by customer", statemachine.ActorCustomer)
	if err != nil {
		return nil, err
	}
	order, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if changed {
		s.notify(ctx, order, from, "cancelled by customer")
	}
	return order, nil
}

// transition applies a status change inside one transaction. An empty actor
// means an admin override that skips the lifecycle table; the customer actor
// must own the order and follow it.
func (s *OrderService) transition(ctx context.Context, actorID, orderID uint, to models.OrderStatus, note, actor string) (models.OrderStatus, bool, error) {
	var from models.OrderStatus
	changed := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Preload("Items").First(&order, orderID).Error; err != nil {
			if isNotFound(err) {
				return NotFound("order")
			}
			return wrap("load order", err)
		}
		from = order.Status
		if actor == statemachine.ActorCustomer {
			if order.AccountID != actorID {
				return Forbidden("this order does not belong to you")
			}
			if err := statemachine.CanTransition(order.Status, to, actor); err != nil {
				return Validation("status", err.Error())
			}
		}
		if order.Status == to {
			return nil
		}
		for _, it := range order.Items {
			delta := statemachine.CounterDelta(order.Status, to, it.Quantity)
			if delta == 0 {
				continue
			}
			if err := tx.Model(&models.Product{}).Where("id = ?", it.ProductID).
				Update("total_ordered", gorm.Expr("total_ordered + ?", delta)).Error; err != nil {
				return wrap("adjust ordered counter", err)
			}
		}
		if err := tx.Model(&order).Update("status", to).Error; err != nil {
			return wrap("update status", err)
		}
		if err := tx.Create(&models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: from,
			ToStatus:   to,
			ChangedBy:  actorID,
			Note:       note,
		}).Error; err != nil {
			return wrap("record history", err)
		}
		changed = true
		return nil
	})
	return from, changed, err
}

// UpdatePayment changes payment fields only. Marking an order paid stamps
// PaidAt.
func (s *OrderService) UpdatePayment(ctx context.Context, orderID uint, upd PaymentUpdate) (*models.Order, error) {
	order, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	changes := map[string]any{}
	if upd.Method != nil {
		changes["payment_method"] = *upd.Method
	}
	if upd.Ref != nil {
		changes["payment_ref"] = *upd.Ref
	}
	if upd.Status != nil {
		switch *upd.Status {
		case models.PaymentUnpaid, models.PaymentRefunded:
		case models.PaymentPaid:
			if order.PaymentStatus != models.PaymentPaid {
				changes["paid_at"] = s.now()
			}
		default:
			return nil, Validation("payment_status", "payment_status must be unpaid, paid or refunded")
		}
		changes["payment_status"] = *upd.Status
	}
	if len(changes) == 0 {
		return order, nil
	}
	if err := s.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", orderID).Updates(changes).Error; err != nil {
		return nil, wrap("update payment", err)
	}
	return s.Get(ctx, orderID)
}

// Delete removes an order. Stock and ordered counters are given back unless
// the order was already delivered.
func (s *OrderService) Delete(ctx context.Context, orderID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Preload("Items").First(&order, orderID).Error; err != nil {
			if isNotFound(err) {
				return NotFound("order")
			}
			return wrap("load order", err)
		}
		if order.Status != models.StatusDelivered {
			for _, it := range order.Items {
				if err := tx.Model(&models.Product{}).Where("id = ?", it.ProductID).
					Updates(map[string]any{
						"quantity":      gorm.Expr("quantity + ?", it.Quantity),
						"total_ordered": gorm.Expr("total_ordered - ?", it.Quantity),
					}).Error; err != nil {
					return wrap("restore stock", err)
				}
			}
		}
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return wrap("delete items", err)
		}
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderStatusHistory{}).Error; err != nil {
			return wrap("delete history", err)
		}
		if err := tx.Delete(&order).Error; err != nil {
			return wrap("delete order", err)
		}
		return nil
	})
}

func (s *OrderService) Get(ctx context.Context, orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("Account").
		First(&order, orderID).Error
	if err != nil {
		if isNotFound(err) {
			return nil, NotFound("order")
		}
		return nil, wrap("get order", err)
	}
	return &order, nil
}

// GetForAccount returns the order only if accountID owns it.
func (s *OrderService) GetForAccount(ctx context.Context, accountID, orderID uint) (*models.Order, error) {
	order, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.AccountID != accountID {
		return nil, Forbidden("this order does not belong to you")
	}
	return order, nil
}

func (s *OrderService) ListForAccount(ctx context.Context, accountID uint) ([]models.Order, error) {
	return s.List(ctx, OrderFilter{AccountID: accountID})
}

// List returns orders newest first.
func (s *OrderService) List(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	q := s.db.WithContext(ctx).Preload("Items").Order("created_at desc, id desc")
	if f.Status != "" {
		if !statemachine.IsValidStatus(f.Status) {
			return nil, Validation("status", fmt.Sprintf("unknown status %q", f.Status))
		}
		q = q.Where("status = ?", f.Status)
	}
	if f.AccountID != 0 {
		q = q.Where("account_id = ?", f.AccountID)
	}
	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, wrap("list orders", err)
	}
	return orders, nil
}

// Summary counts all orders by status.
func (s *OrderService) Summary(ctx context.Context) (OrderSummary, error) {
	var rows []struct {
		Status models.OrderStatus
		Count  int64
	}
	if err := s.db.WithContext(ctx).Model(&models.Order{}).
		Select("status, count(*) as count").Group("status").Scan(&rows).Error; err != nil {
		return nil, wrap("summarize orders", err)
	}
	summary := make(OrderSummary, len(models.AllStatuses))
	for _, st := range models.AllStatuses {
		summary[st] = 0
	}
	for _, r := range rows {
		summary[r.Status] = r.Count
	}
	return summary, nil
}

func (s *OrderService) notify(ctx context.Context, order *models.Order, from models.OrderStatus, note string) {
	ev := notify.OrderEvent{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		AccountID:   order.AccountID,
		FromStatus:  string(from),
		ToStatus:    string(order.Status),
		Note:        note,
		OccurredAt:  s.now(),
	}
	if order.Account != nil {
		ev.Name = order.Account.Name
		ev.Phone = order.Account.Phone
		ev.Email = order.Account.Email
	}
	if err := s.notifier.OrderStatusChanged(ctx, ev); err != nil {
		log.Error().Err(err).Str("order_number", order.OrderNumber).Msg("order notification failed")
	}
}
