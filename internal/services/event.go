package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/nishad-backend/internal/data/repos"
	types "github.com/yungbote/nishad-backend/internal/domain"
	"github.com/yungbote/nishad-backend/internal/domain/access"
	domainagg "github.com/yungbote/nishad-backend/internal/domain/aggregates"
	"github.com/yungbote/nishad-backend/internal/domain/events"
	"github.com/yungbote/nishad-backend/internal/platform/dbctx"
	"github.com/yungbote/nishad-backend/internal/platform/logger"
)

type EventService interface {
	Create(ctx context.Context, in types.Event) (*types.Event, error)
	List(ctx context.Context, since time.Time, limit int) ([]*types.Event, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Event, error)
}

type eventService struct {
	log    *logger.Logger
	events repos.EventRepo
	now    func() time.Time
}

func NewEventService(log *logger.Logger, events repos.EventRepo) EventService {
	return &eventService{
		log:    log.With("service", "EventService"),
		events: events,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *eventService) Create(ctx context.Context, in types.Event) (*types.Event, error) {
	const op = "Events.Create"
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if !access.CanManageEvents(actor) {
		return nil, domainagg.Forbidden(op, string(access.CapManageEvents))
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Venue = strings.TrimSpace(in.Venue)
	if in.Title == "" {
		return nil, invalid(op, "title is required")
	}
	if in.StartsAt.IsZero() {
		return nil, invalid(op, "starts_at is required")
	}
	if in.EndsAt != nil && !in.EndsAt.After(in.StartsAt) {
		return nil, invalid(op, "ends_at must be after starts_at")
	}
	if in.Status == "" {
		in.Status = events.EventStatusPlanned
	}
	in.ID = uuid.New()
	in.StartsAt = in.StartsAt.UTC()
	in.CreatedBy = actor.UserID
	created, err := s.events.Create(dbctx.Context{Ctx: ctx}, []*types.Event{&in})
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	s.log.Info("event created", "event_id", in.ID, "starts_at", in.StartsAt)
	return created[0], nil
}

// List returns events starting at or after since; zero since means now.
func (s *eventService) List(ctx context.Context, since time.Time, limit int) ([]*types.Event, error) {
	if _, err := actorFromContext(ctx); err != nil {
		return nil, err
	}
	if since.IsZero() {
		since = s.now()
	}
	limit, _ = clampPage(limit, 0)
	return s.events.ListUpcoming(dbctx.Context{Ctx: ctx}, since, limit)
}

func (s *eventService) Get(ctx context.Context, id uuid.UUID) (*types.Event, error) {
	if _, err := actorFromContext(ctx); err != nil {
		return nil, err
	}
	e, err := s.events.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load event: %w", err)
	}
	if e == nil {
		return nil, notFound("Events.Get", "event %s not found", id)
	}
	return e, nil
}
