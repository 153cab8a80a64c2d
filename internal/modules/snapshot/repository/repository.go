package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"ramplog.app/backend/internal/entity"
)

// CatalogSignal pairs a catalog's newest write with its row count. The count
// is what makes hard deletes observable: removing any row but the newest
// moves no timestamp.
type CatalogSignal struct {
	UpdatedAt time.Time
	Count     int64
}

// SignalRepository reads the cheap change markers the fingerprint hashes.
// Every read is a single indexed row or an indexed COUNT, never a table scan.
type SignalRepository interface {
	TricksSignal(ctx context.Context) (CatalogSignal, error)
	ArticlesSignal(ctx context.Context) (CatalogSignal, error)
	ProductsSignal(ctx context.Context) (CatalogSignal, error)
	ParksSignal(ctx context.Context) (CatalogSignal, error)
	EventsSignal(ctx context.Context) (CatalogSignal, error)
	LastAchievementAt(ctx context.Context, userID uuid.UUID) (time.Time, error)
}

type signalRepository struct {
	db *gorm.DB
}

func NewSignalRepository(db *gorm.DB) SignalRepository {
	return &signalRepository{db: db}
}

// catalogSignal reads one catalog's newest row and its count. UpdatedAt is
// zero when the table is empty.
func catalogSignal[T any](ctx context.Context, db *gorm.DB, extract func(T) time.Time) (CatalogSignal, error) {
	var signal CatalogSignal
	if err := db.WithContext(ctx).Model(new(T)).Count(&signal.Count).Error; err != nil {
		return signal, err
	}

	var rows []T
	err := db.WithContext(ctx).
		Order("updated_at desc").
		Limit(1).
		Find(&rows).Error
	if err != nil || len(rows) == 0 {
		return signal, err
	}
	signal.UpdatedAt = extract(rows[0])
	return signal, nil
}

func (r *signalRepository) TricksSignal(ctx context.Context) (CatalogSignal, error) {
	return catalogSignal(ctx, r.db, func(t entity.Trick) time.Time { return t.UpdatedAt })
}

func (r *signalRepository) ArticlesSignal(ctx context.Context) (CatalogSignal, error) {
	return catalogSignal(ctx, r.db, func(a entity.Article) time.Time { return a.UpdatedAt })
}

func (r *signalRepository) ProductsSignal(ctx context.Context) (CatalogSignal, error) {
	return catalogSignal(ctx, r.db, func(p entity.Product) time.Time { return p.UpdatedAt })
}

func (r *signalRepository) ParksSignal(ctx context.Context) (CatalogSignal, error) {
	return catalogSignal(ctx, r.db, func(p entity.Park) time.Time { return p.UpdatedAt })
}

func (r *signalRepository) EventsSignal(ctx context.Context) (CatalogSignal, error) {
	return catalogSignal(ctx, r.db, func(e entity.Event) time.Time { return e.UpdatedAt })
}

func (r *signalRepository) LastAchievementAt(ctx context.Context, userID uuid.UUID) (time.Time, error) {
	var rows []entity.UserAchievement
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("earned_at desc").
		Limit(1).
		Find(&rows).Error
	if err != nil || len(rows) == 0 {
		return time.Time{}, err
	}
	return rows[0].EarnedAt, nil
}
