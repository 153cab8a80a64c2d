package user

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	userRepo "ramplog.app/backend/internal/modules/user/repository"
	"ramplog.app/backend/pkg/apperror"
)

// SocialService owns the viewer-scoped preferences the snapshot and feed
// read: favorites (the followed set), hidden feed items, article read marks.
type SocialService interface {
	ToggleFavorite(ctx context.Context, userID, targetUserID uuid.UUID) (bool, error)
	HideFeedItem(ctx context.Context, userID uuid.UUID, itemID string) error
	MarkArticleRead(ctx context.Context, userID, articleID uuid.UUID) error
}

type socialService struct {
	repo userRepo.UserRepository
}

func NewSocialService(repo userRepo.UserRepository) SocialService {
	return &socialService{repo: repo}
}

func (s *socialService) ToggleFavorite(ctx context.Context, userID, targetUserID uuid.UUID) (bool, error) {
	if userID == targetUserID {
		return false, fmt.Errorf("%w: cannot favorite yourself", apperror.ErrInvalidInput)
	}

	target, err := s.repo.FindByID(ctx, targetUserID)
	if err != nil {
		return false, err
	}
	if target == nil {
		return false, apperror.ErrNotFound
	}

	return s.repo.ToggleFavorite(ctx, userID, targetUserID)
}

func (s *socialService) HideFeedItem(ctx context.Context, userID uuid.UUID, itemID string) error {
	return s.repo.HideFeedItem(ctx, userID, itemID)
}

func (s *socialService) MarkArticleRead(ctx context.Context, userID, articleID uuid.UUID) error {
	return s.repo.MarkArticleRead(ctx, userID, articleID)
}
