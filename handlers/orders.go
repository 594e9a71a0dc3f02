package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-api/middleware"
	"storefront-api/models"
	"storefront-api/services"
	"storefront-api/statemachine"
)

type OrderLine struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity" validate:"required,min=1"`
}

type QuoteRequest struct {
	Items []OrderLine `json:"items" validate:"required,min=1,dive"`
}

type PlaceOrderRequest struct {
	Items           []OrderLine           `json:"items" validate:"required,min=1,dive"`
	DeliveryMethod  models.DeliveryMethod `json:"delivery_method" validate:"required,oneof=pickup delivery"`
	DeliveryAddress string                `json:"delivery_address" validate:"required_if=DeliveryMethod delivery,max=300"`
	PreferredTime   string                `json:"preferred_time" validate:"max=50"`
	PreferredDay    string                `json:"preferred_day" validate:"max=50"`
	Notes           string                `json:"notes" validate:"max=1000"`
	PaymentMethod   string                `json:"payment_method" validate:"max=50"`
}

func toItemInputs(lines []OrderLine) []services.OrderItemInput {
	items := make([]services.OrderItemInput, len(lines))
	for i, l := range lines {
		items[i] = services.OrderItemInput{ProductID: l.ProductID, Quantity: l.Quantity}
	}
	return items
}

// QuoteOrder prices a cart without placing it (public)
func (h *Handler) QuoteOrder(c *gin.Context) {
	var req QuoteRequest
	if !h.bind(c, &req) {
		return
	}
	quote, err := h.Orders.Quote(c.Request.Context(), toItemInputs(req.Items))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Quote calculated", gin.H{"quote": quote})
}

// PlaceOrder creates a new order (customer only)
func (h *Handler) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if !h.bind(c, &req) {
		return
	}
	order, err := h.Orders.Create(c.Request.Context(), middleware.GetAccountID(c), services.CreateOrderInput{
		Items:           toItemInputs(req.Items),
		DeliveryMethod:  req.DeliveryMethod,
		DeliveryAddress: req.DeliveryAddress,
		PreferredTime:   req.PreferredTime,
		PreferredDay:    req.PreferredDay,
		Notes:           req.Notes,
		PaymentMethod:   req.PaymentMethod,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Order placed successfully", gin.H{"order": order})
}

// GetMyOrders returns all orders for the logged-in customer
func (h *Handler) GetMyOrders(c *gin.Context) {
	orders, err := h.Orders.ListForAccount(c.Request.Context(), middleware.GetAccountID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Orders loaded", gin.H{"count": len(orders), "orders": orders})
}

// GetOrderDetail returns one of the caller's orders with its history
func (h *Handler) GetOrderDetail(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	order, err := h.Orders.GetForAccount(c.Request.Context(), middleware.GetAccountID(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Order loaded", gin.H{
		"order":             order,
		"valid_next_states": statemachine.ValidTransitionsFrom(order.Status),
	})
}

// CancelOrder withdraws a pending order
func (h *Handler) CancelOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	order, err := h.Orders.Cancel(c.Request.Context(), middleware.GetAccountID(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Order cancelled successfully", gin.H{"order": order})
}
