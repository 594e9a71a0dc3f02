package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-api/middleware"
	"storefront-api/models"
	"storefront-api/services"
	"storefront-api/statemachine"
)

type CreateAccountRequest struct {
	Name    string      `json:"name" validate:"required,max=100"`
	Phone   string      `json:"phone" validate:"required,phone"`
	Email   string      `json:"email" validate:"omitempty,email"`
	Address string      `json:"address" validate:"max=300"`
	Role    models.Role `json:"role" validate:"required,oneof=customer admin"`
}

type UpdateStatusRequest struct {
	Status models.OrderStatus `json:"status" validate:"required"`
	Note   string             `json:"note" validate:"max=500"`
}

type UpdatePaymentRequest struct {
	PaymentMethod *string               `json:"payment_method" validate:"omitempty,max=50"`
	PaymentStatus *models.PaymentStatus `json:"payment_status" validate:"omitempty,oneof=unpaid paid refunded"`
	PaymentRef    *string               `json:"payment_ref" validate:"omitempty,max=100"`
}

type UpsertPageRequest struct {
	Title string `json:"title" validate:"required,max=200"`
	Body  string `json:"body"`
}

// AdminListAccounts returns all accounts, optionally filtered by role
func (h *Handler) AdminListAccounts(c *gin.Context) {
	accounts, err := h.Accounts.ListAccounts(c.Request.Context(), models.Role(c.Query("role")))
	if err != nil {
		h.respondError(c, err)
		return
	}
	views := make([]gin.H, len(accounts))
	for i := range accounts {
		views[i] = accountView(&accounts[i])
	}
	respond(c, http.StatusOK, "Accounts loaded", gin.H{"count": len(views), "accounts": views})
}

// AdminCreateAccount is the only way to create another admin
func (h *Handler) AdminCreateAccount(c *gin.Context) {
	var req CreateAccountRequest
	if !h.bind(c, &req) {
		return
	}
	account, err := h.Accounts.CreateAccount(c.Request.Context(), services.ResolveInput{
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
	}, req.Role)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Account created", gin.H{"account": accountView(account)})
}

func (h *Handler) AdminDeleteAccount(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.Accounts.DeleteAccount(c.Request.Context(), middleware.GetAccountID(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Account deleted", gin.H{"account_id": id})
}

// AdminListOrders returns orders plus a per-status summary for the dashboard
func (h *Handler) AdminListOrders(c *gin.Context) {
	ctx := c.Request.Context()
	filter := services.OrderFilter{Status: models.OrderStatus(c.Query("status"))}
	if raw := c.Query("account_id"); raw != "" {
		id, ok := parseID(c, "account_id", raw)
		if !ok {
			return
		}
		filter.AccountID = id
	}
	orders, err := h.Orders.List(ctx, filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	summary, err := h.Orders.Summary(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Orders loaded", gin.H{
		"order_summary": summary,
		"count":         len(orders),
		"orders":        orders,
	})
}

func (h *Handler) AdminGetOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	order, err := h.Orders.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Order loaded", gin.H{
		"order":             order,
		"valid_next_states": statemachine.ValidTransitionsFrom(order.Status),
	})
}

// AdminUpdateOrderStatus sets any status in the lifecycle, including
// corrections that step backwards
func (h *Handler) AdminUpdateOrderStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if !h.bind(c, &req) {
		return
	}
	order, err := h.Orders.UpdateStatus(c.Request.Context(), middleware.GetAccountID(c), id, req.Status, req.Note)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Order status updated", gin.H{
		"order":             order,
		"valid_next_states": statemachine.ValidTransitionsFrom(order.Status),
	})
}

func (h *Handler) AdminUpdatePayment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req UpdatePaymentRequest
	if !h.bind(c, &req) {
		return
	}
	order, err := h.Orders.UpdatePayment(c.Request.Context(), id, services.PaymentUpdate{
		Method: req.PaymentMethod,
		Status: req.PaymentStatus,
		Ref:    req.PaymentRef,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Payment updated", gin.H{"order": order})
}

// AdminDeleteOrder removes an order and gives back its stock unless delivered
func (h *Handler) AdminDeleteOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.Orders.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Order deleted", gin.H{"order_id": id})
}

func (h *Handler) AdminUpsertPage(c *gin.Context) {
	var req UpsertPageRequest
	if !h.bind(c, &req) {
		return
	}
	page, err := h.Content.UpsertPage(c.Request.Context(), middleware.GetAccountID(c), c.Param("slug"), req.Title, req.Body)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Page saved", gin.H{"page": page})
}

func (h *Handler) AdminListContactMessages(c *gin.Context) {
	msgs, err := h.Content.ListContactMessages(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Messages loaded", gin.H{"count": len(msgs), "messages": msgs})
}
