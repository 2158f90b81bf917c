package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/nishad-backend/internal/domain"
	domainagg "github.com/yungbote/nishad-backend/internal/domain/aggregates"
	"github.com/yungbote/nishad-backend/internal/http/response"
	"github.com/yungbote/nishad-backend/internal/services"
)

type CheckoutHandler struct {
	checkouts services.CheckoutService
}

func NewCheckoutHandler(checkouts services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkouts: checkouts}
}

type locationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Notes     string   `json:"notes"`
}

// Mine lists the caller's checkouts; ?open=true drops closed ones.
func (h *CheckoutHandler) Mine(c *gin.Context) {
	rows, err := h.checkouts.Mine(c.Request.Context(), c.Query("open") == "true")
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"checkouts": rows})
}

func (h *CheckoutHandler) Overdue(c *gin.Context) {
	rows, err := h.checkouts.Overdue(c.Request.Context())
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"checkouts": rows})
}

func (h *CheckoutHandler) Get(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	v, err := h.checkouts.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"checkout": v})
}

func (h *CheckoutHandler) Accept(c *gin.Context) {
	h.located(c, h.checkouts.Accept)
}

func (h *CheckoutHandler) InUse(c *gin.Context) {
	h.located(c, h.checkouts.MarkInUse)
}

func (h *CheckoutHandler) located(c *gin.Context, fn func(ctx context.Context, in domainagg.CheckoutActionInput) (domainagg.CheckoutTransitionResult, error)) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req locationRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	res, err := fn(c.Request.Context(), domainagg.CheckoutActionInput{
		CheckoutID: id,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		Notes:      req.Notes,
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, res)
}

func (h *CheckoutHandler) Reject(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	res, err := h.checkouts.Reject(c.Request.Context(), domainagg.RejectCheckoutInput{CheckoutID: id, Reason: req.Reason})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, res)
}

func (h *CheckoutHandler) Return(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req struct {
		locationRequest
		Condition         types.AssetCondition `json:"condition" binding:"omitempty,enum"`
		Damaged           bool                 `json:"damage_reported"`
		DamageDescription string               `json:"damage_description"`
		DamageCost        *float64             `json:"damage_cost"`
	}
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	res, err := h.checkouts.Return(c.Request.Context(), domainagg.ReturnAssetInput{
		CheckoutID:        id,
		Condition:         req.Condition,
		Notes:             req.Notes,
		Damaged:           req.Damaged,
		DamageDescription: req.DamageDescription,
		DamageCost:        req.DamageCost,
		Latitude:          req.Latitude,
		Longitude:         req.Longitude,
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, res)
}

func (h *CheckoutHandler) Lost(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Notes string `json:"notes"`
	}
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	res, err := h.checkouts.MarkLost(c.Request.Context(), domainagg.MarkLostInput{CheckoutID: id, Notes: req.Notes})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, res)
}
