package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"ramplog.app/backend/internal/entity"
)

// FeedRepository reads the three activity sources. Each query is scoped to
// the actor set, ordered newest first and capped by the caller's limit; no
// user rows are joined here, actor display data is attached once after the
// merge.
type FeedRepository interface {
	ProgressEvents(ctx context.Context, actorIDs []uuid.UUID, limit int) ([]entity.TrickProgress, error)
	EventJoins(ctx context.Context, actorIDs []uuid.UUID, limit int) ([]entity.EventRegistration, error)
	AchievementEvents(ctx context.Context, actorIDs []uuid.UUID, limit int) ([]entity.UserAchievement, error)
}

type feedRepository struct {
	db *gorm.DB
}

func NewFeedRepository(db *gorm.DB) FeedRepository {
	return &feedRepository{db: db}
}

func (r *feedRepository) ProgressEvents(ctx context.Context, actorIDs []uuid.UUID, limit int) ([]entity.TrickProgress, error) {
	var rows []entity.TrickProgress
	err := r.db.WithContext(ctx).
		Where("user_id IN ?", actorIDs).
		Order("updated_at desc").
		Limit(limit).
		Preload("Trick").
		Find(&rows).Error
	return rows, err
}

func (r *feedRepository) EventJoins(ctx context.Context, actorIDs []uuid.UUID, limit int) ([]entity.EventRegistration, error) {
	var rows []entity.EventRegistration
	err := r.db.WithContext(ctx).
		Where("user_id IN ?", actorIDs).
		Order("created_at desc").
		Limit(limit).
		Preload("Event").
		Find(&rows).Error
	return rows, err
}

func (r *feedRepository) AchievementEvents(ctx context.Context, actorIDs []uuid.UUID, limit int) ([]entity.UserAchievement, error) {
	var rows []entity.UserAchievement
	err := r.db.WithContext(ctx).
		Where("user_id IN ?", actorIDs).
		Order("earned_at desc").
		Limit(limit).
		Preload("Achievement").
		Find(&rows).Error
	return rows, err
}
