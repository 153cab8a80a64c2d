package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"ramplog.app/backend/internal/entity"
)

type AchievementRepository interface {
	FindByCode(ctx context.Context, code string) (*entity.Achievement, error)
	// Award grants the achievement to the user. Idempotent: a duplicate
	// grant is a no-op and reports awarded=false.
	Award(ctx context.Context, userID, achievementID uuid.UUID) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.UserAchievement, error)
	CountMastered(ctx context.Context, userID uuid.UUID) (int64, error)
}

type achievementRepository struct {
	db *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) AchievementRepository {
	return &achievementRepository{db: db}
}

func (r *achievementRepository) FindByCode(ctx context.Context, code string) (*entity.Achievement, error) {
	var achievement entity.Achievement
	err := r.db.WithContext(ctx).First(&achievement, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &achievement, nil
}

func (r *achievementRepository) Award(ctx context.Context, userID, achievementID uuid.UUID) (bool, error) {
	grant := entity.UserAchievement{UserID: userID, AchievementID: achievementID}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&grant)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *achievementRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.UserAchievement, error) {
	var grants []entity.UserAchievement
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("earned_at desc").
		Preload("Achievement").
		Find(&grants).Error
	return grants, err
}

func (r *achievementRepository) CountMastered(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.TrickProgress{}).
		Where("user_id = ? AND status = ?", userID, entity.ProgressMastered).
		Count(&count).Error
	return count, err
}
