package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/nishad-backend/internal/data/repos"
	types "github.com/yungbote/nishad-backend/internal/domain"
	domainagg "github.com/yungbote/nishad-backend/internal/domain/aggregates"
	"github.com/yungbote/nishad-backend/internal/http/response"
	"github.com/yungbote/nishad-backend/internal/services"
)

type AssetHandler struct {
	assets    services.AssetService
	checkouts services.CheckoutService
}

func NewAssetHandler(assets services.AssetService, checkouts services.CheckoutService) *AssetHandler {
	return &AssetHandler{assets: assets, checkouts: checkouts}
}

type createAssetRequest struct {
	Name         string               `json:"name" binding:"required"`
	Description  string               `json:"description"`
	AssetType    types.AssetType      `json:"asset_type" binding:"required,enum"`
	Condition    types.AssetCondition `json:"condition" binding:"omitempty,enum"`
	PurchaseDate *time.Time           `json:"purchase_date"`
	PurchaseCost *float64             `json:"purchase_cost"`
	CurrentValue *float64             `json:"current_value"`
	Location     string               `json:"location"`
	Constituency string               `json:"constituency"`
	SerialNumber string               `json:"serial_number"`
	Model        string               `json:"model"`
	Manufacturer string               `json:"manufacturer"`
	Warranty     *time.Time           `json:"warranty_expiry"`
	Notes        string               `json:"notes"`
}

func (h *AssetHandler) Create(c *gin.Context) {
	var req createAssetRequest
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.assets.Register(c.Request.Context(), types.Asset{
		Name:           req.Name,
		Description:    req.Description,
		AssetType:      req.AssetType,
		Condition:      req.Condition,
		PurchaseDate:   req.PurchaseDate,
		PurchaseCost:   req.PurchaseCost,
		CurrentValue:   req.CurrentValue,
		Location:       req.Location,
		Constituency:   req.Constituency,
		SerialNumber:   req.SerialNumber,
		Model:          req.Model,
		Manufacturer:   req.Manufacturer,
		WarrantyExpiry: req.Warranty,
		Notes:          req.Notes,
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"asset": a})
}

// updateAssetRequest has no status field; status moves through checkouts
// and maintenance only.
type updateAssetRequest struct {
	Name         *string               `json:"name"`
	Description  *string               `json:"description"`
	AssetType    *types.AssetType      `json:"asset_type" binding:"omitempty,enum"`
	Condition    *types.AssetCondition `json:"condition" binding:"omitempty,enum"`
	PurchaseDate *time.Time            `json:"purchase_date"`
	PurchaseCost *float64              `json:"purchase_cost"`
	CurrentValue *float64              `json:"current_value"`
	Location     *string               `json:"location"`
	Constituency *string               `json:"constituency"`
	SerialNumber *string               `json:"serial_number"`
	Model        *string               `json:"model"`
	Manufacturer *string               `json:"manufacturer"`
	Warranty     *time.Time            `json:"warranty_expiry"`
	Notes        *string               `json:"notes"`
}

func (h *AssetHandler) Update(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req updateAssetRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.assets.Update(c.Request.Context(), id, domainagg.AssetPatch{
		Name:           req.Name,
		Description:    req.Description,
		AssetType:      req.AssetType,
		Condition:      req.Condition,
		PurchaseDate:   req.PurchaseDate,
		PurchaseCost:   req.PurchaseCost,
		CurrentValue:   req.CurrentValue,
		Location:       req.Location,
		Constituency:   req.Constituency,
		SerialNumber:   req.SerialNumber,
		Model:          req.Model,
		Manufacturer:   req.Manufacturer,
		WarrantyExpiry: req.Warranty,
		Notes:          req.Notes,
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, res)
}

func (h *AssetHandler) Dashboard(c *gin.Context) {
	board, err := h.assets.Dashboard(c.Request.Context())
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, board)
}

func (h *AssetHandler) List(c *gin.Context) {
	var q struct {
		Status       types.AssetStatus `form:"status" binding:"omitempty,enum"`
		AssetType    types.AssetType   `form:"asset_type" binding:"omitempty,enum"`
		Constituency string            `form:"constituency"`
		Search       string            `form:"search"`
		Limit        int               `form:"limit"`
		Offset       int               `form:"offset"`
	}
	if !bindQuery(c, &q) {
		return
	}
	rows, total, err := h.assets.List(c.Request.Context(), repos.AssetFilter{
		Status:       q.Status,
		AssetType:    q.AssetType,
		Constituency: q.Constituency,
		Search:       q.Search,
		Limit:        q.Limit,
		Offset:       q.Offset,
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, response.Page[*types.Asset]{Items: rows, Total: total, Limit: q.Limit, Offset: q.Offset})
}

func (h *AssetHandler) Get(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	a, err := h.assets.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"asset": a})
}

func (h *AssetHandler) Delete(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.assets.Delete(c.Request.Context(), id); err != nil {
		response.RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AssetHandler) History(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	hist, err := h.assets.History(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, hist)
}

func (h *AssetHandler) QR(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	png, err := h.assets.QRCode(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondPNG(c, png)
}

func (h *AssetHandler) RecordMaintenance(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req struct {
		MaintenanceType string               `json:"maintenance_type" binding:"required"`
		Description     string               `json:"description"`
		Cost            *float64             `json:"cost"`
		PerformedBy     string               `json:"performed_by"`
		PerformedAt     *time.Time           `json:"performed_at"`
		NextDue         *time.Time           `json:"next_due"`
		Start           bool                 `json:"start"`
		Complete        bool                 `json:"complete"`
		Condition       types.AssetCondition `json:"condition" binding:"omitempty,enum"`
	}
	if !bindJSON(c, &req) {
		return
	}
	in := domainagg.RecordMaintenanceInput{
		AssetID:          id,
		MaintenanceType:  req.MaintenanceType,
		Description:      req.Description,
		Cost:             req.Cost,
		PerformedBy:      req.PerformedBy,
		NextDue:          req.NextDue,
		StartMaintenance: req.Start,
		Complete:         req.Complete,
		Condition:        req.Condition,
	}
	if req.PerformedAt != nil {
		in.PerformedAt = req.PerformedAt.UTC()
	}
	res, err := h.assets.RecordMaintenance(c.Request.Context(), in)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, res)
}

func (h *AssetHandler) ListMaintenance(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	rows, err := h.assets.ListMaintenance(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"maintenance": rows})
}

// Assign hands the asset to a member; the checkout starts PENDING.
func (h *AssetHandler) Assign(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req struct {
		AssigneeID     uuid.UUID `json:"assignee_id" binding:"required"`
		ExpectedReturn time.Time `json:"expected_return_date" binding:"required"`
		Purpose        string    `json:"purpose" binding:"required"`
		Destination    string    `json:"destination"`
		Notes          string    `json:"notes"`
	}
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.checkouts.Assign(c.Request.Context(), domainagg.AssignAssetInput{
		AssetID:        id,
		AssigneeID:     req.AssigneeID,
		ExpectedReturn: req.ExpectedReturn.UTC(),
		Purpose:        req.Purpose,
		Destination:    req.Destination,
		Notes:          req.Notes,
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, res)
}
