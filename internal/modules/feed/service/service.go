package feed

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"ramplog.app/backend/internal/entity"
	feedDto "ramplog.app/backend/internal/modules/feed/dto"
	feedRepo "ramplog.app/backend/internal/modules/feed/repository"
	reactionService "ramplog.app/backend/internal/modules/reaction/service"
	userRepo "ramplog.app/backend/internal/modules/user/repository"
	commonDto "ramplog.app/backend/pkg/dto"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

type FeedService interface {
	// BuildFeed merges the viewer's activity sources into a single page of
	// at most limit items, newest first.
	BuildFeed(ctx context.Context, viewerID uuid.UUID, limit int) (*feedDto.FeedResponse, error)
}

type feedService struct {
	repo            feedRepo.FeedRepository
	userRepo        userRepo.UserRepository
	reactionService reactionService.ReactionService
}

func NewFeedService(repo feedRepo.FeedRepository, users userRepo.UserRepository, reactions reactionService.ReactionService) FeedService {
	return &feedService{
		repo:            repo,
		userRepo:        users,
		reactionService: reactions,
	}
}

// FeedItemID derives a stable identifier from the item's content. Rebuilding
// the feed never changes it, which is what makes the hidden set durable.
func FeedItemID(itemType string, actorID uuid.UUID, subjectRef uuid.UUID) string {
	return fmt.Sprintf("%s:%s:%s", itemType, actorID, subjectRef)
}

func (s *feedService) BuildFeed(ctx context.Context, viewerID uuid.UUID, limit int) (*feedDto.FeedResponse, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	favorites, err := s.userRepo.FavoriteTargetIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	actorIDs := append([]uuid.UUID{viewerID}, favorites...)

	hiddenIDs, err := s.userRepo.HiddenItemIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	hidden := make(map[string]struct{}, len(hiddenIDs))
	for _, id := range hiddenIDs {
		hidden[id] = struct{}{}
	}

	// Each source over-fetches by one so the merged set can still prove
	// there is a next page, plus one per hidden item so a hide inside the
	// window cannot swallow the proof row.
	fetch := limit + 1 + len(hidden)

	progress, err := s.repo.ProgressEvents(ctx, actorIDs, fetch)
	if err != nil {
		return nil, err
	}
	joins, err := s.repo.EventJoins(ctx, actorIDs, fetch)
	if err != nil {
		return nil, err
	}
	grants, err := s.repo.AchievementEvents(ctx, actorIDs, fetch)
	if err != nil {
		return nil, err
	}

	items := make([]feedDto.FeedItem, 0, len(progress)+len(joins)+len(grants))
	for _, p := range progress {
		itemType := feedDto.TypeProgressStarted
		if p.Status == entity.ProgressMastered {
			itemType = feedDto.TypeProgressMastered
		}
		items = append(items, feedDto.FeedItem{
			ID:          FeedItemID(itemType, p.UserID, p.TrickID),
			Type:        itemType,
			Actor:       commonDto.AuthorResponse{ID: p.UserID},
			SubjectType: entity.SubjectTrick,
			SubjectID:   p.TrickID,
			Title:       p.Trick.Name,
			OccurredAt:  p.UpdatedAt,
		})
	}
	for _, j := range joins {
		items = append(items, feedDto.FeedItem{
			ID:          FeedItemID(feedDto.TypeEventJoined, j.UserID, j.EventID),
			Type:        feedDto.TypeEventJoined,
			Actor:       commonDto.AuthorResponse{ID: j.UserID},
			SubjectType: entity.SubjectEvent,
			SubjectID:   j.EventID,
			Title:       j.Event.Title,
			OccurredAt:  j.CreatedAt,
		})
	}
	for _, g := range grants {
		items = append(items, feedDto.FeedItem{
			ID:          FeedItemID(feedDto.TypeAchievementEarned, g.UserID, g.AchievementID),
			Type:        feedDto.TypeAchievementEarned,
			Actor:       commonDto.AuthorResponse{ID: g.UserID},
			SubjectType: entity.SubjectAchievement,
			SubjectID:   g.AchievementID,
			Title:       g.Achievement.Title,
			OccurredAt:  g.EarnedAt,
		})
	}

	// Newest first; an item with no usable timestamp sinks to the end
	// instead of masquerading as current.
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].OccurredAt, items[j].OccurredAt
		if a.IsZero() {
			return false
		}
		if b.IsZero() {
			return true
		}
		return a.After(b)
	})

	// Hidden items drop out before the boundary cut, so hasMore and the
	// page size both describe what the viewer actually sees.
	visible := items[:0]
	for _, item := range items {
		if _, ok := hidden[item.ID]; ok {
			continue
		}
		visible = append(visible, item)
	}

	hasMore := len(visible) > limit
	if hasMore {
		visible = visible[:limit]
	}

	if err := s.attachReactions(ctx, viewerID, visible); err != nil {
		return nil, err
	}
	if err := s.attachActors(ctx, visible); err != nil {
		return nil, err
	}

	return &feedDto.FeedResponse{Items: visible, HasMore: hasMore}, nil
}

// attachReactions batches one loader call per subject type present on the
// page rather than one per item.
func (s *feedService) attachReactions(ctx context.Context, viewerID uuid.UUID, items []feedDto.FeedItem) error {
	byType := make(map[string][]uuid.UUID)
	for _, item := range items {
		byType[item.SubjectType] = append(byType[item.SubjectType], item.SubjectID)
	}

	summaries := make(map[string]map[uuid.UUID]commonDto.ReactionSummary, len(byType))
	for subjectType, ids := range byType {
		loaded, err := s.reactionService.LoadReactions(ctx, viewerID, subjectType, ids)
		if err != nil {
			return err
		}
		summaries[subjectType] = loaded
	}

	for i := range items {
		if summary, ok := summaries[items[i].SubjectType][items[i].SubjectID]; ok {
			items[i].Reactions = summary
		} else {
			items[i].Reactions = commonDto.ReactionSummary{Comments: []commonDto.CommentResponse{}}
		}
	}
	return nil
}

func (s *feedService) attachActors(ctx context.Context, items []feedDto.FeedItem) error {
	actorIDs := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item.Actor.ID]; ok {
			continue
		}
		seen[item.Actor.ID] = struct{}{}
		actorIDs = append(actorIDs, item.Actor.ID)
	}

	actors, err := s.userRepo.FindByIDs(ctx, actorIDs)
	if err != nil {
		return err
	}

	for i := range items {
		if actor, ok := actors[items[i].Actor.ID]; ok {
			items[i].Actor = commonDto.AuthorResponse{
				ID:        actor.ID,
				Username:  actor.Username,
				AvatarURL: actor.AvatarURL,
				Role:      actor.Role.Name,
			}
		}
	}
	return nil
}
