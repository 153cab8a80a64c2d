package progress

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"ramplog.app/backend/internal/entity"
	achievementService "ramplog.app/backend/internal/modules/achievement/service"
	catalogRepo "ramplog.app/backend/internal/modules/catalog/repository"
	progressRepo "ramplog.app/backend/internal/modules/progress/repository"
	"ramplog.app/backend/pkg/apperror"
)

type ProgressService interface {
	SetStatus(ctx context.Context, userID, trickID uuid.UUID, status string) error
	ByUser(ctx context.Context, userID uuid.UUID) ([]entity.TrickProgress, error)
}

type progressService struct {
	repo               progressRepo.ProgressRepository
	catalogRepo        catalogRepo.CatalogRepository
	achievementService achievementService.AchievementService
}

func NewProgressService(repo progressRepo.ProgressRepository, catalogRepository catalogRepo.CatalogRepository, achievements achievementService.AchievementService) ProgressService {
	return &progressService{
		repo:               repo,
		catalogRepo:        catalogRepository,
		achievementService: achievements,
	}
}

func (s *progressService) SetStatus(ctx context.Context, userID, trickID uuid.UUID, status string) error {
	if status != entity.ProgressStarted && status != entity.ProgressMastered {
		return fmt.Errorf("%w: unknown progress status %q", apperror.ErrInvalidInput, status)
	}

	trick, err := s.catalogRepo.FindTrick(ctx, trickID)
	if err != nil {
		return err
	}
	if trick == nil {
		return apperror.ErrNotFound
	}

	if err := s.repo.Upsert(ctx, userID, trickID, status); err != nil {
		return err
	}

	if status == entity.ProgressMastered && s.achievementService != nil {
		go func() {
			if err := s.achievementService.CheckMasteryMilestones(context.Background(), userID); err != nil {
				log.Printf("failed to check mastery milestones for %s: %v", userID, err)
			}
		}()
	}

	return nil
}

func (s *progressService) ByUser(ctx context.Context, userID uuid.UUID) ([]entity.TrickProgress, error) {
	return s.repo.ByUser(ctx, userID)
}
