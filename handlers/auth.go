package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-api/middleware"
	"storefront-api/models"
	"storefront-api/services"
)

type ResolveRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Phone   string `json:"phone" validate:"required,phone"`
	Email   string `json:"email" validate:"omitempty,email"`
	Address string `json:"address" validate:"max=300"`
}

type UpdateProfileRequest struct {
	Email   *string `json:"email" validate:"omitempty,email"`
	Address *string `json:"address" validate:"omitempty,max=300"`
}

func accountView(a *models.Account) gin.H {
	return gin.H{
		"id":      a.ID,
		"name":    a.Name,
		"phone":   a.Phone,
		"email":   a.Email,
		"address": a.Address,
		"role":    a.Role,
	}
}

// Resolve signs a customer in, registering them on first use
func (h *Handler) Resolve(c *gin.Context) {
	var req ResolveRequest
	if !h.bind(c, &req) {
		return
	}
	account, token, created, err := h.Accounts.Resolve(c.Request.Context(), services.ResolveInput{
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	status, msg := http.StatusOK, "Login successful"
	if created {
		status, msg = http.StatusCreated, "Account created successfully"
	}
	respond(c, status, msg, gin.H{
		"token":   token,
		"created": created,
		"account": accountView(account),
	})
}

// GetProfile returns the authenticated account's profile
func (h *Handler) GetProfile(c *gin.Context) {
	account, err := h.Accounts.GetAccount(c.Request.Context(), middleware.GetAccountID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Profile loaded", gin.H{"account": accountView(account)})
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if !h.bind(c, &req) {
		return
	}
	account, err := h.Accounts.UpdateProfile(c.Request.Context(), middleware.GetAccountID(c), services.ProfileUpdate{
		Email:   req.Email,
		Address: req.Address,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Profile updated", gin.H{"account": accountView(account)})
}
