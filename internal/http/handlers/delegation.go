package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/nishad-backend/internal/domain"
	"github.com/yungbote/nishad-backend/internal/http/response"
	"github.com/yungbote/nishad-backend/internal/services"
)

type DelegationHandler struct {
	delegations services.DelegationService
}

func NewDelegationHandler(delegations services.DelegationService) *DelegationHandler {
	return &DelegationHandler{delegations: delegations}
}

func (h *DelegationHandler) List(c *gin.Context) {
	rows, err := h.delegations.List(c.Request.Context())
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"delegations": rows})
}

func (h *DelegationHandler) Grant(c *gin.Context)  { h.apply(c, h.delegations.Grant) }
func (h *DelegationHandler) Revoke(c *gin.Context) { h.apply(c, h.delegations.Revoke) }
func (h *DelegationHandler) Toggle(c *gin.Context) { h.apply(c, h.delegations.Toggle) }

func (h *DelegationHandler) apply(c *gin.Context, fn func(context.Context, uuid.UUID) (*types.GatePassDelegation, error)) {
	userID, ok := paramUUID(c, "user_id")
	if !ok {
		return
	}
	d, err := fn(c.Request.Context(), userID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"delegation": d})
}
