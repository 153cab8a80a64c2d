package view

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	catalogRepo "ramplog.app/backend/internal/modules/catalog/repository"
)

const (
	pendingKey   = "pending:trick_views"
	dedupeWindow = time.Hour
	syncInterval = time.Minute
)

// ViewService buffers trick view counts in redis and folds them into the
// DB on a timer. A viewer only counts once per dedupe window.
type ViewService interface {
	IncrementView(ctx context.Context, trickID, userID uuid.UUID) error
	StartViewSyncWorker(ctx context.Context)
}

type viewService struct {
	redisClient *redis.Client
	catalogRepo catalogRepo.CatalogRepository
}

func NewViewService(redisClient *redis.Client, catalogRepository catalogRepo.CatalogRepository) ViewService {
	return &viewService{
		redisClient: redisClient,
		catalogRepo: catalogRepository,
	}
}

func (s *viewService) IncrementView(ctx context.Context, trickID, userID uuid.UUID) error {
	if s.redisClient == nil {
		return nil
	}

	dedupeKey := fmt.Sprintf("trick:user_view:%s:%s", trickID, userID)
	seen, err := s.redisClient.Exists(ctx, dedupeKey).Result()
	if err != nil {
		return fmt.Errorf("failed to check view dedupe: %w", err)
	}
	if seen == 1 {
		return nil
	}

	viewKey := fmt.Sprintf("trick:views:%s", trickID)
	if err := s.redisClient.Incr(ctx, viewKey).Err(); err != nil {
		return fmt.Errorf("failed to increment view: %w", err)
	}
	if err := s.redisClient.SAdd(ctx, pendingKey, trickID.String()).Err(); err != nil {
		return fmt.Errorf("failed to mark view pending: %w", err)
	}
	if err := s.redisClient.SetEx(ctx, dedupeKey, "viewed", dedupeWindow).Err(); err != nil {
		return fmt.Errorf("failed to set view dedupe: %w", err)
	}

	return nil
}

func (s *viewService) syncViewsToDB(ctx context.Context) {
	trickIDs, err := s.redisClient.SMembers(ctx, pendingKey).Result()
	if err != nil {
		log.Printf("failed to read pending trick views: %v", err)
		return
	}
	if len(trickIDs) == 0 {
		return
	}

	synced := 0
	for _, raw := range trickIDs {
		trickID, err := uuid.Parse(raw)
		if err != nil {
			log.Printf("invalid trick id in pending views: %s", raw)
			continue
		}

		viewKey := fmt.Sprintf("trick:views:%s", trickID)
		countStr, err := s.redisClient.Get(ctx, viewKey).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			log.Printf("failed to read view count for trick %s: %v", trickID, err)
			continue
		}

		count, err := strconv.ParseInt(countStr, 10, 64)
		if err != nil || count <= 0 {
			continue
		}

		if err := s.catalogRepo.AddTrickViews(ctx, trickID, count); err != nil {
			log.Printf("failed to sync views for trick %s: %v", trickID, err)
			continue
		}
		if err := s.redisClient.Del(ctx, viewKey).Err(); err != nil {
			log.Printf("failed to reset view counter for trick %s: %v", trickID, err)
		}
		synced++
	}

	if err := s.redisClient.Del(ctx, pendingKey).Err(); err != nil {
		log.Printf("failed to clear pending view set: %v", err)
	}

	if synced > 0 {
		log.Printf("synced views for %d tricks", synced)
	}
}

func (s *viewService) StartViewSyncWorker(ctx context.Context) {
	ticker := time.NewTicker(syncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.syncViewsToDB(ctx)
		case <-ctx.Done():
			return
		}
	}
}
