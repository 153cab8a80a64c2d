package reaction

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"ramplog.app/backend/internal/entity"
	notifService "ramplog.app/backend/internal/modules/notification/service"
	reactionDto "ramplog.app/backend/internal/modules/reaction/dto"
	reactionRepo "ramplog.app/backend/internal/modules/reaction/repository"
	commonDto "ramplog.app/backend/pkg/dto"
	"ramplog.app/backend/pkg/apperror"
	"ramplog.app/backend/pkg/ratelimiter"
)

type ReactionService interface {
	// Toggle flips the viewer's like on a subject and returns the new state.
	Toggle(ctx context.Context, actorID uuid.UUID, subjectType string, subjectID uuid.UUID) (*reactionDto.ToggleResponse, error)
	// LoadReactions batches like counts, viewer flags and comment threads
	// for a whole subject set in three store round trips.
	LoadReactions(ctx context.Context, viewerID uuid.UUID, subjectType string, subjectIDs []uuid.UUID) (map[uuid.UUID]commonDto.ReactionSummary, error)
	AddComment(ctx context.Context, actorID uuid.UUID, subjectType string, subjectID uuid.UUID, content string) (*commonDto.CommentResponse, error)
	DeleteComment(ctx context.Context, actorID uuid.UUID, commentID uuid.UUID) error
}

type reactionService struct {
	repo                reactionRepo.ReactionRepository
	redisClient         *redis.Client
	notificationService notifService.NotificationService
	commentCooldown     time.Duration
}

func NewReactionService(repo reactionRepo.ReactionRepository, redisClient *redis.Client, notificationService notifService.NotificationService, commentCooldown time.Duration) ReactionService {
	return &reactionService{
		repo:                repo,
		redisClient:         redisClient,
		notificationService: notificationService,
		commentCooldown:     commentCooldown,
	}
}

func (s *reactionService) Toggle(ctx context.Context, actorID uuid.UUID, subjectType string, subjectID uuid.UUID) (*reactionDto.ToggleResponse, error) {
	if !entity.ValidSubjectType(subjectType) {
		return nil, fmt.Errorf("%w: unknown subject type %q", apperror.ErrInvalidInput, subjectType)
	}

	liked, likes, err := s.repo.Toggle(ctx, subjectType, subjectID, actorID)
	if err != nil {
		return nil, err
	}

	// Mirror the derived count into redis for cheap reads elsewhere.
	// Non-fatal: the DB row is already consistent.
	if s.redisClient != nil {
		key := fmt.Sprintf("counts:%s:%s", subjectType, subjectID.String())
		if err := s.redisClient.HSet(ctx, key, "likes", likes).Err(); err != nil {
			log.Printf("redis like count mirror failed: %v", err)
		}
	}

	// Liking a comment pings the comment author. Other subjects are shared
	// catalog rows without an owner.
	if liked && subjectType == entity.SubjectComment {
		go s.notifyCommentLiked(subjectID, actorID)
	}

	return &reactionDto.ToggleResponse{ViewerLiked: liked, LikesCount: likes}, nil
}

func (s *reactionService) notifyCommentLiked(commentID, actorID uuid.UUID) {
	ctx := context.Background()

	comment, err := s.repo.FindComment(ctx, commentID)
	if err != nil || comment == nil || comment.UserID == actorID {
		return
	}

	if s.notificationService == nil {
		return
	}

	notif := &entity.Notification{
		UserID:     comment.UserID,
		ActorID:    actorID,
		EntityID:   commentID,
		EntityType: entity.SubjectComment,
		Type:       "like",
		Message:    "Someone liked your comment",
	}
	if err := s.notificationService.CreateNotification(ctx, notif); err != nil {
		log.Printf("failed to create like notification: %v", err)
	}
}

// LoadReactions joins three batched fetches in memory: grouped like
// aggregates per subject, the non-tombstoned comment set, and grouped like
// aggregates for those comments. Empty input returns an empty map without
// touching the store.
func (s *reactionService) LoadReactions(ctx context.Context, viewerID uuid.UUID, subjectType string, subjectIDs []uuid.UUID) (map[uuid.UUID]commonDto.ReactionSummary, error) {
	result := make(map[uuid.UUID]commonDto.ReactionSummary, len(subjectIDs))
	if len(subjectIDs) == 0 {
		return result, nil
	}

	aggregates, err := s.repo.LikeAggregates(ctx, viewerID, subjectType, subjectIDs)
	if err != nil {
		return nil, err
	}

	comments, err := s.repo.ActiveComments(ctx, subjectType, subjectIDs)
	if err != nil {
		return nil, err
	}

	commentIDs := make([]uuid.UUID, 0, len(comments))
	for _, c := range comments {
		commentIDs = append(commentIDs, c.ID)
	}

	commentAggs, err := s.repo.LikeAggregates(ctx, viewerID, entity.SubjectComment, commentIDs)
	if err != nil {
		return nil, err
	}
	commentLikes := make(map[uuid.UUID]reactionRepo.LikeAggregate, len(commentAggs))
	for _, agg := range commentAggs {
		commentLikes[agg.SubjectID] = agg
	}

	for _, id := range subjectIDs {
		result[id] = commonDto.ReactionSummary{Comments: []commonDto.CommentResponse{}}
	}

	for _, agg := range aggregates {
		summary := result[agg.SubjectID]
		summary.LikesCount = agg.LikesCount
		summary.ViewerLiked = agg.ViewerLiked > 0
		result[agg.SubjectID] = summary
	}

	for _, c := range comments {
		summary := result[c.SubjectID]
		summary.CommentsCount++
		summary.Comments = append(summary.Comments, buildCommentResponse(c, commentLikes[c.ID]))
		result[c.SubjectID] = summary
	}

	return result, nil
}

func buildCommentResponse(c entity.Comment, likes reactionRepo.LikeAggregate) commonDto.CommentResponse {
	return commonDto.CommentResponse{
		ID: c.ID,
		Author: commonDto.AuthorResponse{
			ID:        c.User.ID,
			Username:  c.User.Username,
			AvatarURL: c.User.AvatarURL,
		},
		Content:     c.Content,
		CreatedAt:   c.CreatedAt,
		LikesCount:  likes.LikesCount,
		ViewerLiked: likes.ViewerLiked > 0,
	}
}

func (s *reactionService) AddComment(ctx context.Context, actorID uuid.UUID, subjectType string, subjectID uuid.UUID, content string) (*commonDto.CommentResponse, error) {
	if !entity.ValidSubjectType(subjectType) || subjectType == entity.SubjectComment {
		return nil, fmt.Errorf("%w: cannot comment on subject type %q", apperror.ErrInvalidInput, subjectType)
	}

	allowed, err := ratelimiter.CheckAndSet(ctx, s.redisClient, actorID, ratelimiter.ScopeComment, s.commentCooldown)
	if err != nil {
		return nil, err
	}
	if !allowed {
		ttl, _ := ratelimiter.TTL(ctx, s.redisClient, actorID, ratelimiter.ScopeComment)
		return nil, &ratelimiter.RateLimitError{
			Message:    fmt.Sprintf("you are commenting too fast. Please wait %.0f seconds", ttl.Seconds()),
			RetryAfter: ttl,
		}
	}

	comment := &entity.Comment{
		SubjectType: subjectType,
		SubjectID:   subjectID,
		UserID:      actorID,
		Content:     content,
	}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		_ = ratelimiter.Clear(ctx, s.redisClient, actorID, ratelimiter.ScopeComment)
		return nil, err
	}

	if _, _, err := s.repo.RecomputeCounter(ctx, subjectType, subjectID); err != nil {
		return nil, err
	}

	// Reload for the author projection; the response carries zeroed like
	// state since a fresh comment cannot have edges yet.
	created, err := s.repo.FindComment(ctx, comment.ID)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, apperror.ErrInternal
	}

	resp := buildCommentResponse(*created, reactionRepo.LikeAggregate{})
	return &resp, nil
}

func (s *reactionService) DeleteComment(ctx context.Context, actorID uuid.UUID, commentID uuid.UUID) error {
	comment, err := s.repo.FindComment(ctx, commentID)
	if err != nil {
		return err
	}
	if comment == nil || comment.Deleted {
		return apperror.ErrNotFound
	}
	if comment.UserID != actorID {
		return apperror.ErrForbidden
	}

	if err := s.repo.TombstoneComment(ctx, commentID); err != nil {
		return err
	}

	_, _, err = s.repo.RecomputeCounter(ctx, comment.SubjectType, comment.SubjectID)
	return err
}
