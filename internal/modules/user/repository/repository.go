package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"ramplog.app/backend/internal/entity"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	// FindByIDs returns a display projection for the given users in one
	// query, keyed by ID.
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]entity.User, error)
	SaveProfile(ctx context.Context, profile *entity.Profile) error
	UpdateAvatar(ctx context.Context, userID uuid.UUID, avatarURL string) error

	// Social preferences scoped to one viewer.
	ToggleFavorite(ctx context.Context, userID, targetUserID uuid.UUID) (bool, error)
	FavoriteTargetIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	CountFavorites(ctx context.Context, userID uuid.UUID) (int64, error)
	HideFeedItem(ctx context.Context, userID uuid.UUID, itemID string) error
	HiddenItemIDs(ctx context.Context, userID uuid.UUID) ([]string, error)
	MarkArticleRead(ctx context.Context, userID, articleID uuid.UUID) error
	CountArticleReads(ctx context.Context, userID uuid.UUID) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).
		Preload("Role").
		Preload("Profile").
		First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).
		Preload("Role").
		First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).
		Preload("Role").
		Preload("Profile").
		First(&user, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]entity.User, error) {
	result := make(map[uuid.UUID]entity.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var users []entity.User
	err := r.db.WithContext(ctx).
		Select("id", "username", "avatar_url", "role_id").
		Preload("Role").
		Where("id IN ?", ids).
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	for _, u := range users {
		result[u.ID] = u
	}
	return result, nil
}

func (r *userRepository) SaveProfile(ctx context.Context, profile *entity.Profile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

func (r *userRepository) UpdateAvatar(ctx context.Context, userID uuid.UUID, avatarURL string) error {
	return r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("id = ?", userID).
		Update("avatar_url", avatarURL).Error
}

// ToggleFavorite uses the same delete-then-insert shape as the like toggle:
// the delete's RowsAffected decides the branch.
func (r *userRepository) ToggleFavorite(ctx context.Context, userID, targetUserID uuid.UUID) (bool, error) {
	var favorited bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.
			Where("user_id = ? AND target_user_id = ?", userID, targetUserID).
			Delete(&entity.Favorite{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}

		favorite := entity.Favorite{UserID: userID, TargetUserID: targetUserID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&favorite).Error; err != nil {
			return err
		}
		favorited = true
		return nil
	})
	return favorited, err
}

func (r *userRepository) FavoriteTargetIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&entity.Favorite{}).
		Where("user_id = ?", userID).
		Pluck("target_user_id", &ids).Error
	return ids, err
}

func (r *userRepository) CountFavorites(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Favorite{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *userRepository) HideFeedItem(ctx context.Context, userID uuid.UUID, itemID string) error {
	hidden := entity.HiddenFeedItem{UserID: userID, ItemID: itemID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&hidden).Error
}

func (r *userRepository) HiddenItemIDs(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&entity.HiddenFeedItem{}).
		Where("user_id = ?", userID).
		Pluck("item_id", &ids).Error
	return ids, err
}

func (r *userRepository) MarkArticleRead(ctx context.Context, userID, articleID uuid.UUID) error {
	read := entity.ArticleRead{UserID: userID, ArticleID: articleID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&read).Error
}

func (r *userRepository) CountArticleReads(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.ArticleRead{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}
