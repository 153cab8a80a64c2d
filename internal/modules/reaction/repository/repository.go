package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"ramplog.app/backend/internal/entity"
)

// LikeAggregate is one row of the grouped like query: total edges for the
// subject plus whether the viewer contributed one of them.
type LikeAggregate struct {
	SubjectID   uuid.UUID
	LikesCount  int64
	ViewerLiked int
}

type ReactionRepository interface {
	// Toggle flips the (subject, actor) like edge and returns the new state
	// with the recomputed count. Runs as a single transaction.
	Toggle(ctx context.Context, subjectType string, subjectID, actorID uuid.UUID) (bool, int64, error)
	// LikeAggregates returns counts and viewer flags for all subjects in one
	// round trip. Pass uuid.Nil for an anonymous viewer.
	LikeAggregates(ctx context.Context, viewerID uuid.UUID, subjectType string, subjectIDs []uuid.UUID) ([]LikeAggregate, error)
	// ActiveComments returns all non-tombstoned comments for the subjects,
	// oldest first, with the author projection preloaded.
	ActiveComments(ctx context.Context, subjectType string, subjectIDs []uuid.UUID) ([]entity.Comment, error)
	CreateComment(ctx context.Context, comment *entity.Comment) error
	FindComment(ctx context.Context, id uuid.UUID) (*entity.Comment, error)
	TombstoneComment(ctx context.Context, id uuid.UUID) error
	// RecomputeCounter rederives both counts from source rows and writes
	// them through to the denormalized mirror.
	RecomputeCounter(ctx context.Context, subjectType string, subjectID uuid.UUID) (likes, comments int64, err error)
}

type reactionRepository struct {
	db *gorm.DB
}

func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

// Toggle deletes the edge first; the delete's RowsAffected is the sole
// branch decision, so two racing toggles from the same actor cannot both
// observe the same prior state. If nothing was deleted, the edge is
// inserted with conflict-tolerant semantics.
func (r *reactionRepository) Toggle(ctx context.Context, subjectType string, subjectID, actorID uuid.UUID) (bool, int64, error) {
	var (
		liked bool
		likes int64
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.
			Where("subject_type = ? AND subject_id = ? AND user_id = ?", subjectType, subjectID, actorID).
			Delete(&entity.LikeEdge{})
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			edge := entity.LikeEdge{
				SubjectType: subjectType,
				SubjectID:   subjectID,
				UserID:      actorID,
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&edge).Error; err != nil {
				return err
			}
			liked = true
		}

		var err error
		likes, _, err = recomputeCounter(tx, subjectType, subjectID)
		return err
	})

	return liked, likes, err
}

func (r *reactionRepository) LikeAggregates(ctx context.Context, viewerID uuid.UUID, subjectType string, subjectIDs []uuid.UUID) ([]LikeAggregate, error) {
	if len(subjectIDs) == 0 {
		return nil, nil
	}

	var aggregates []LikeAggregate
	err := r.db.WithContext(ctx).
		Model(&entity.LikeEdge{}).
		Select("subject_id, COUNT(*) AS likes_count, MAX(CASE WHEN user_id = ? THEN 1 ELSE 0 END) AS viewer_liked", viewerID).
		Where("subject_type = ? AND subject_id IN ?", subjectType, subjectIDs).
		Group("subject_id").
		Scan(&aggregates).Error
	return aggregates, err
}

func (r *reactionRepository) ActiveComments(ctx context.Context, subjectType string, subjectIDs []uuid.UUID) ([]entity.Comment, error) {
	if len(subjectIDs) == 0 {
		return nil, nil
	}

	var comments []entity.Comment
	err := r.db.WithContext(ctx).
		Where("subject_type = ? AND subject_id IN ? AND deleted = ?", subjectType, subjectIDs, false).
		Order("created_at asc").
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username", "avatar_url")
		}).
		Find(&comments).Error
	return comments, err
}

func (r *reactionRepository) CreateComment(ctx context.Context, comment *entity.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *reactionRepository) FindComment(ctx context.Context, id uuid.UUID) (*entity.Comment, error) {
	var comments []entity.Comment
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username", "avatar_url")
		}).
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	if len(comments) == 0 {
		return nil, nil
	}
	return &comments[0], nil
}

func (r *reactionRepository) TombstoneComment(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&entity.Comment{}).
		Where("id = ?", id).
		Update("deleted", true).Error
}

func (r *reactionRepository) RecomputeCounter(ctx context.Context, subjectType string, subjectID uuid.UUID) (int64, int64, error) {
	var (
		likes    int64
		comments int64
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		likes, comments, err = recomputeCounter(tx, subjectType, subjectID)
		return err
	})
	return likes, comments, err
}

// recomputeCounter counts edges and non-tombstoned comments from source
// rows and upserts the mirror. Counts are never adjusted arithmetically.
func recomputeCounter(tx *gorm.DB, subjectType string, subjectID uuid.UUID) (int64, int64, error) {
	var likes int64
	if err := tx.Model(&entity.LikeEdge{}).
		Where("subject_type = ? AND subject_id = ?", subjectType, subjectID).
		Count(&likes).Error; err != nil {
		return 0, 0, err
	}

	var comments int64
	if err := tx.Model(&entity.Comment{}).
		Where("subject_type = ? AND subject_id = ? AND deleted = ?", subjectType, subjectID, false).
		Count(&comments).Error; err != nil {
		return 0, 0, err
	}

	counter := entity.ReactionCounter{
		SubjectType:   subjectType,
		SubjectID:     subjectID,
		LikesCount:    likes,
		CommentsCount: comments,
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "subject_type"}, {Name: "subject_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"likes_count", "comments_count", "updated_at"}),
	}).Create(&counter).Error
	return likes, comments, err
}
