package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/nishad-backend/internal/http/response"
	"github.com/yungbote/nishad-backend/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) GetMe(c *gin.Context) {
	u, d, err := h.userService.GetMe(c.Request.Context())
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	canCreate := d != nil && d.CanCreateGatePass
	response.RespondOK(c, gin.H{"user": u, "can_create_gatepass": canCreate})
}

// ListUsers accepts ?role=MEMBER,VOLUNTEER.
func (h *UserHandler) ListUsers(c *gin.Context) {
	var roles []string
	if raw := c.Query("role"); raw != "" {
		roles = strings.Split(raw, ",")
	}
	users, err := h.userService.ListUsers(c.Request.Context(), roles)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"users": users})
}

func (h *UserHandler) ChangeRole(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.userService.ChangeRole(c.Request.Context(), id, req.Role)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"user": u})
}
