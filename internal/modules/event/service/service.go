package event

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"ramplog.app/backend/internal/entity"
	eventRepo "ramplog.app/backend/internal/modules/event/repository"
	"ramplog.app/backend/pkg/apperror"
)

type EventService interface {
	List(ctx context.Context) ([]entity.Event, error)
	Join(ctx context.Context, userID, eventID uuid.UUID) error
	Leave(ctx context.Context, userID, eventID uuid.UUID) error

	// Admin surface. Events are always read fresh, so writes need no
	// cache invalidation.
	Save(ctx context.Context, event *entity.Event) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type eventService struct {
	repo eventRepo.EventRepository
}

func NewEventService(repo eventRepo.EventRepository) EventService {
	return &eventService{repo: repo}
}

func (s *eventService) List(ctx context.Context) ([]entity.Event, error) {
	return s.repo.All(ctx)
}

func (s *eventService) Join(ctx context.Context, userID, eventID uuid.UUID) error {
	event, err := s.repo.Find(ctx, eventID)
	if err != nil {
		return err
	}
	if event == nil {
		return apperror.ErrNotFound
	}

	joined, err := s.repo.Join(ctx, userID, eventID)
	if err != nil {
		return err
	}
	if !joined {
		return fmt.Errorf("%w: already joined this event", apperror.ErrConflict)
	}
	return nil
}

func (s *eventService) Leave(ctx context.Context, userID, eventID uuid.UUID) error {
	return s.repo.Leave(ctx, userID, eventID)
}

func (s *eventService) Save(ctx context.Context, event *entity.Event) error {
	return s.repo.Save(ctx, event)
}

func (s *eventService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
