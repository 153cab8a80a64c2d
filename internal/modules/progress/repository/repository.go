package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"ramplog.app/backend/internal/entity"
)

type ProgressRepository interface {
	// Upsert sets the user's status on a trick, bumping UpdatedAt so the
	// change shows up in the feed and the fingerprint.
	Upsert(ctx context.Context, userID, trickID uuid.UUID, status string) error
	ByUser(ctx context.Context, userID uuid.UUID) ([]entity.TrickProgress, error)
	MaxUpdatedAt(ctx context.Context, userID uuid.UUID) (time.Time, error)
}

type progressRepository struct {
	db *gorm.DB
}

func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) Upsert(ctx context.Context, userID, trickID uuid.UUID, status string) error {
	progress := entity.TrickProgress{
		UserID:  userID,
		TrickID: trickID,
		Status:  status,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "trick_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
		}).
		Create(&progress).Error
}

func (r *progressRepository) ByUser(ctx context.Context, userID uuid.UUID) ([]entity.TrickProgress, error) {
	var progress []entity.TrickProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at desc").
		Find(&progress).Error
	return progress, err
}

// MaxUpdatedAt is the user's most recent progress change, zero when the
// user has none. One indexed row read, never a scan.
func (r *progressRepository) MaxUpdatedAt(ctx context.Context, userID uuid.UUID) (time.Time, error) {
	var rows []entity.TrickProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at desc").
		Limit(1).
		Find(&rows).Error
	if err != nil || len(rows) == 0 {
		return time.Time{}, err
	}
	return rows[0].UpdatedAt, nil
}
