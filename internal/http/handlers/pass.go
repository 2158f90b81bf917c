package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/nishad-backend/internal/http/response"
	"github.com/yungbote/nishad-backend/internal/services"
)

// PassHandler serves event passes by their printed code.
type PassHandler struct {
	passes services.EventPassService
}

func NewPassHandler(passes services.EventPassService) *PassHandler {
	return &PassHandler{passes: passes}
}

func (h *PassHandler) Get(c *gin.Context) {
	pass, err := h.passes.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"pass": pass})
}

func (h *PassHandler) Mine(c *gin.Context) {
	rows, err := h.passes.Mine(c.Request.Context())
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"passes": rows})
}

// Use admits the holder at a gate. Refusals come back as 422 invalid_pass.
func (h *PassHandler) Use(c *gin.Context) {
	var req struct {
		Gate string `json:"gate"`
	}
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	res, err := h.passes.Use(c.Request.Context(), c.Param("code"), req.Gate)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, res)
}

func (h *PassHandler) QR(c *gin.Context) {
	png, err := h.passes.QRCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondPNG(c, png)
}

func (h *PassHandler) Card(c *gin.Context) {
	png, err := h.passes.Card(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	if c.Query("download") == "1" {
		c.Header("Content-Disposition", `attachment; filename="`+c.Param("code")+`.png"`)
	}
	response.RespondPNG(c, png)
}
