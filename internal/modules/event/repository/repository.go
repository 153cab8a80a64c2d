package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"ramplog.app/backend/internal/entity"
)

type EventRepository interface {
	All(ctx context.Context) ([]entity.Event, error)
	Find(ctx context.Context, id uuid.UUID) (*entity.Event, error)
	Save(ctx context.Context, event *entity.Event) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Join registers the user; a duplicate join reports joined=false.
	Join(ctx context.Context, userID, eventID uuid.UUID) (bool, error)
	Leave(ctx context.Context, userID, eventID uuid.UUID) error
	RegistrationIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	CountRegistrations(ctx context.Context, userID uuid.UUID) (int64, error)
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) All(ctx context.Context) ([]entity.Event, error) {
	var events []entity.Event
	err := r.db.WithContext(ctx).
		Preload("Park").
		Order("starts_at asc").
		Find(&events).Error
	return events, err
}

func (r *eventRepository) Find(ctx context.Context, id uuid.UUID) (*entity.Event, error) {
	var event entity.Event
	err := r.db.WithContext(ctx).Preload("Park").First(&event, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) Save(ctx context.Context, event *entity.Event) error {
	return r.db.WithContext(ctx).Save(event).Error
}

func (r *eventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Event{}, "id = ?", id).Error
}

func (r *eventRepository) Join(ctx context.Context, userID, eventID uuid.UUID) (bool, error) {
	registration := entity.EventRegistration{UserID: userID, EventID: eventID}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&registration)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *eventRepository) Leave(ctx context.Context, userID, eventID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		Delete(&entity.EventRegistration{}).Error
}

func (r *eventRepository) RegistrationIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&entity.EventRegistration{}).
		Where("user_id = ?", userID).
		Pluck("event_id", &ids).Error
	return ids, err
}

func (r *eventRepository) CountRegistrations(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.EventRegistration{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}
