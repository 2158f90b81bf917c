package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/yungbote/nishad-backend/internal/data/repos"
	types "github.com/yungbote/nishad-backend/internal/domain"
	"github.com/yungbote/nishad-backend/internal/http/response"
	"github.com/yungbote/nishad-backend/internal/services"
)

type VisitorPassHandler struct {
	passes services.VisitorPassService
}

func NewVisitorPassHandler(passes services.VisitorPassService) *VisitorPassHandler {
	return &VisitorPassHandler{passes: passes}
}

type createVisitorPassRequest struct {
	VisitorName     string         `json:"visitor_name" binding:"required"`
	VisitorPhone    string         `json:"visitor_phone" binding:"required"`
	VisitorEmail    string         `json:"visitor_email" binding:"omitempty,email"`
	VisitorIDProof  string         `json:"visitor_id_proof"`
	VisitorCompany  string         `json:"visitor_company"`
	PassType        types.PassType `json:"pass_type" binding:"omitempty,enum"`
	Purpose         string         `json:"purpose" binding:"required"`
	HostDepartment  string         `json:"host_department"`
	AuthorizedAreas datatypes.JSON `json:"authorized_areas"`
	ValidFrom       time.Time      `json:"valid_from" binding:"required"`
	ValidUntil      time.Time      `json:"valid_until" binding:"required"`
	EscortRequired  bool           `json:"escort_required"`
	EscortName      string         `json:"escort_name"`
	EscortPhone     string         `json:"escort_phone"`
	Notes           string         `json:"notes"`
}

func (h *VisitorPassHandler) Create(c *gin.Context) {
	var req createVisitorPassRequest
	if !bindJSON(c, &req) {
		return
	}
	v, err := h.passes.Create(c.Request.Context(), types.VisitorPass{
		VisitorName:     req.VisitorName,
		VisitorPhone:    req.VisitorPhone,
		VisitorEmail:    req.VisitorEmail,
		VisitorIDProof:  req.VisitorIDProof,
		VisitorCompany:  req.VisitorCompany,
		PassType:        req.PassType,
		Purpose:         req.Purpose,
		HostDepartment:  req.HostDepartment,
		AuthorizedAreas: req.AuthorizedAreas,
		ValidFrom:       req.ValidFrom.UTC(),
		ValidUntil:      req.ValidUntil.UTC(),
		EscortRequired:  req.EscortRequired,
		EscortName:      req.EscortName,
		EscortPhone:     req.EscortPhone,
		Notes:           req.Notes,
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"pass": v})
}

func (h *VisitorPassHandler) List(c *gin.Context) {
	var q struct {
		Status   types.ApprovalStatus `form:"status"`
		PassType types.PassType       `form:"pass_type"`
		Search   string               `form:"search"`
		Active   bool                 `form:"active"`
		Limit    int                  `form:"limit"`
		Offset   int                  `form:"offset"`
	}
	if !bindQuery(c, &q) {
		return
	}
	f := repos.VisitorPassFilter{
		Status:   q.Status,
		PassType: q.PassType,
		Search:   q.Search,
		Limit:    q.Limit,
		Offset:   q.Offset,
	}
	if q.Active {
		now := time.Now().UTC()
		f.ActiveAt = &now
	}
	rows, total, err := h.passes.List(c.Request.Context(), f)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, response.Page[*services.VisitorPassView]{Items: rows, Total: total, Limit: q.Limit, Offset: q.Offset})
}

func (h *VisitorPassHandler) Stats(c *gin.Context) {
	stats, err := h.passes.Stats(c.Request.Context())
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, stats)
}

func (h *VisitorPassHandler) Get(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	v, err := h.passes.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"pass": v})
}

func (h *VisitorPassHandler) Approve(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	res, err := h.passes.Approve(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, res)
}

func (h *VisitorPassHandler) Reject(c *gin.Context) {
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
	res, err := h.passes.Reject(c.Request.Context(), id, req.Reason)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, res)
}

func (h *VisitorPassHandler) Logs(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	rows, err := h.passes.Logs(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"logs": rows})
}

func (h *VisitorPassHandler) QR(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	png, err := h.passes.QRCode(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondPNG(c, png)
}

func (h *VisitorPassHandler) Card(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	png, err := h.passes.Card(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondPNG(c, png)
}
