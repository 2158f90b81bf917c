package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/nishad-backend/internal/domain"
	domainagg "github.com/yungbote/nishad-backend/internal/domain/aggregates"
	"github.com/yungbote/nishad-backend/internal/domain/events"
	"github.com/yungbote/nishad-backend/internal/http/response"
	"github.com/yungbote/nishad-backend/internal/services"
)

type EventHandler struct {
	events services.EventService
	passes services.EventPassService
}

func NewEventHandler(events services.EventService, passes services.EventPassService) *EventHandler {
	return &EventHandler{events: events, passes: passes}
}

func (h *EventHandler) Create(c *gin.Context) {
	var req struct {
		Title       string             `json:"title" binding:"required"`
		Description string             `json:"description"`
		Venue       string             `json:"venue"`
		StartsAt    time.Time          `json:"starts_at" binding:"required"`
		EndsAt      *time.Time         `json:"ends_at"`
		Status      events.EventStatus `json:"status"`
	}
	if !bindJSON(c, &req) {
		return
	}
	e, err := h.events.Create(c.Request.Context(), types.Event{
		Title:       req.Title,
		Description: req.Description,
		Venue:       req.Venue,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Status:      req.Status,
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"event": e})
}

// List returns upcoming events; ?since=RFC3339 moves the window.
func (h *EventHandler) List(c *gin.Context) {
	var q struct {
		Since time.Time `form:"since" time_format:"2006-01-02T15:04:05Z07:00"`
		Limit int       `form:"limit"`
	}
	if !bindQuery(c, &q) {
		return
	}
	rows, err := h.events.List(c.Request.Context(), q.Since, q.Limit)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"events": rows})
}

func (h *EventHandler) Get(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	e, err := h.events.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"event": e})
}

func (h *EventHandler) IssuePass(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req struct {
		AttendeeID          uuid.UUID         `json:"attendee_id" binding:"required"`
		Access              types.AccessLevel `json:"access_level" binding:"omitempty,enum"`
		ValidFrom           *time.Time        `json:"valid_from"`
		ValidUntil          *time.Time        `json:"valid_until"`
		SpecialInstructions string            `json:"special_instructions"`
		CompanionCount      int               `json:"companion_count" binding:"min=0"`
	}
	if !bindJSON(c, &req) {
		return
	}
	in := domainagg.IssueEventPassInput{
		EventID:             id,
		AttendeeID:          req.AttendeeID,
		Access:              req.Access,
		SpecialInstructions: req.SpecialInstructions,
		CompanionCount:      req.CompanionCount,
	}
	if req.ValidFrom != nil {
		in.ValidFrom = req.ValidFrom.UTC()
	}
	if req.ValidUntil != nil {
		in.ValidUntil = req.ValidUntil.UTC()
	}
	pass, err := h.passes.Issue(c.Request.Context(), in)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"pass": pass})
}

func (h *EventHandler) ListPasses(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	rows, err := h.passes.ListForEvent(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"passes": rows})
}
