package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-api/models"
	"storefront-api/services"
	"storefront-api/statemachine"
)

type ContactRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Phone   string `json:"phone" validate:"omitempty,phone"`
	Email   string `json:"email" validate:"omitempty,email"`
	Message string `json:"message" validate:"required,max=5000"`
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "Storefront API",
		"version": "1.0.0",
	})
}

// GetStateMachineInfo returns the full order lifecycle for informational purposes
func (h *Handler) GetStateMachineInfo(c *gin.Context) {
	var terminal []models.OrderStatus
	for _, s := range models.AllStatuses {
		if statemachine.IsTerminal(s) {
			terminal = append(terminal, s)
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"statuses":        models.AllStatuses,
		"state_machine":   statemachine.GetAllTransitions(),
		"terminal_states": terminal,
		"description":     "Order lifecycle. Admins may also set any status directly to correct mistakes.",
	})
}

func (h *Handler) GetPage(c *gin.Context) {
	page, err := h.Content.GetPage(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Page loaded", gin.H{"page": page})
}

// SubmitContact stores a message from the contact page (public)
func (h *Handler) SubmitContact(c *gin.Context) {
	var req ContactRequest
	if !h.bind(c, &req) {
		return
	}
	msg, err := h.Content.SubmitContactMessage(c.Request.Context(), services.ContactInput{
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Message: req.Message,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Thanks, we will get back to you", gin.H{"id": msg.ID})
}
