package achievement

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"ramplog.app/backend/internal/entity"
	achievementRepo "ramplog.app/backend/internal/modules/achievement/repository"
	notifService "ramplog.app/backend/internal/modules/notification/service"
)

// Achievement codes seeded at boot. Mastery milestones are checked after
// every progress mutation.
const (
	CodeFirstMastery = "first_mastery"
	CodeTenMastered  = "ten_mastered"
)

type AchievementService interface {
	// CheckMasteryMilestones awards any milestone the user's mastered-trick
	// count has just crossed. Safe to call repeatedly.
	CheckMasteryMilestones(ctx context.Context, userID uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.UserAchievement, error)
}

type achievementService struct {
	repo                achievementRepo.AchievementRepository
	notificationService notifService.NotificationService
}

func NewAchievementService(repo achievementRepo.AchievementRepository, notificationService notifService.NotificationService) AchievementService {
	return &achievementService{
		repo:                repo,
		notificationService: notificationService,
	}
}

func (s *achievementService) CheckMasteryMilestones(ctx context.Context, userID uuid.UUID) error {
	mastered, err := s.repo.CountMastered(ctx, userID)
	if err != nil {
		return err
	}

	if mastered >= 1 {
		if err := s.award(ctx, userID, CodeFirstMastery); err != nil {
			return err
		}
	}
	if mastered >= 10 {
		if err := s.award(ctx, userID, CodeTenMastered); err != nil {
			return err
		}
	}
	return nil
}

func (s *achievementService) award(ctx context.Context, userID uuid.UUID, code string) error {
	achievement, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return err
	}
	if achievement == nil {
		return fmt.Errorf("achievement %q is not seeded", code)
	}

	awarded, err := s.repo.Award(ctx, userID, achievement.ID)
	if err != nil {
		return err
	}
	if !awarded || s.notificationService == nil {
		return nil
	}

	notif := &entity.Notification{
		UserID:     userID,
		ActorID:    userID,
		EntityID:   achievement.ID,
		EntityType: entity.SubjectAchievement,
		Type:       "achievement",
		Message:    fmt.Sprintf("You earned the %q achievement", achievement.Title),
	}
	if err := s.notificationService.CreateNotification(ctx, notif); err != nil {
		log.Printf("failed to create achievement notification: %v", err)
	}
	return nil
}

func (s *achievementService) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.UserAchievement, error) {
	return s.repo.ListByUser(ctx, userID)
}
