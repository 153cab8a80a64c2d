package reaction

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"ramplog.app/backend/internal/entity"
	reactionRepo "ramplog.app/backend/internal/modules/reaction/repository"
	"ramplog.app/backend/pkg/apperror"
	"ramplog.app/backend/pkg/ratelimiter"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&entity.Role{},
		&entity.User{},
		&entity.Trick{},
		&entity.LikeEdge{},
		&entity.Comment{},
		&entity.ReactionCounter{},
	))
	return db
}

func newTestUser(t *testing.T, db *gorm.DB, username string) *entity.User {
	t.Helper()
	user := &entity.User{
		Username:     username,
		Email:        username + "@ramplog.test",
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func newTestService(t *testing.T, db *gorm.DB) ReactionService {
	t.Helper()
	return NewReactionService(reactionRepo.NewReactionRepository(db), nil, nil, 0)
}

func counterRow(t *testing.T, db *gorm.DB, subjectType string, subjectID uuid.UUID) entity.ReactionCounter {
	t.Helper()
	var counter entity.ReactionCounter
	require.NoError(t, db.
		Where("subject_type = ? AND subject_id = ?", subjectType, subjectID).
		First(&counter).Error)
	return counter
}

func TestToggleLikeUnlike(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	actor := newTestUser(t, db, "rider1")
	trickID := uuid.New()

	result, err := svc.Toggle(ctx, actor.ID, entity.SubjectTrick, trickID)
	require.NoError(t, err)
	assert.True(t, result.ViewerLiked)
	assert.Equal(t, int64(1), result.LikesCount)

	result, err = svc.Toggle(ctx, actor.ID, entity.SubjectTrick, trickID)
	require.NoError(t, err)
	assert.False(t, result.ViewerLiked)
	assert.Equal(t, int64(0), result.LikesCount)

	counter := counterRow(t, db, entity.SubjectTrick, trickID)
	assert.Equal(t, int64(0), counter.LikesCount)
}

func TestToggleUnknownSubjectType(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)

	_, err := svc.Toggle(context.Background(), uuid.New(), "park_bench", uuid.New())
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestToggleManyActors(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	trickID := uuid.New()
	const actors = 5
	actorIDs := make([]uuid.UUID, 0, actors)
	for i := 0; i < actors; i++ {
		actor := newTestUser(t, db, fmt.Sprintf("rider%d", i))
		actorIDs = append(actorIDs, actor.ID)

		result, err := svc.Toggle(ctx, actor.ID, entity.SubjectTrick, trickID)
		require.NoError(t, err)
		assert.True(t, result.ViewerLiked)
		assert.Equal(t, int64(i+1), result.LikesCount)
	}

	counter := counterRow(t, db, entity.SubjectTrick, trickID)
	assert.Equal(t, int64(actors), counter.LikesCount)

	// One actor backs out; the count drops by exactly one and everyone
	// else's flag is untouched.
	_, err := svc.Toggle(ctx, actorIDs[0], entity.SubjectTrick, trickID)
	require.NoError(t, err)

	summaries, err := svc.LoadReactions(ctx, actorIDs[1], entity.SubjectTrick, []uuid.UUID{trickID})
	require.NoError(t, err)
	summary := summaries[trickID]
	assert.Equal(t, int64(actors-1), summary.LikesCount)
	assert.True(t, summary.ViewerLiked)

	summaries, err = svc.LoadReactions(ctx, actorIDs[0], entity.SubjectTrick, []uuid.UUID{trickID})
	require.NoError(t, err)
	assert.False(t, summaries[trickID].ViewerLiked)
}

type countingRepo struct {
	reactionRepo.ReactionRepository
	calls atomic.Int32
}

func (r *countingRepo) LikeAggregates(ctx context.Context, viewerID uuid.UUID, subjectType string, subjectIDs []uuid.UUID) ([]reactionRepo.LikeAggregate, error) {
	r.calls.Add(1)
	return nil, nil
}

func (r *countingRepo) ActiveComments(ctx context.Context, subjectType string, subjectIDs []uuid.UUID) ([]entity.Comment, error) {
	r.calls.Add(1)
	return nil, nil
}

func TestLoadReactionsEmptyInput(t *testing.T) {
	repo := &countingRepo{}
	svc := NewReactionService(repo, nil, nil, 0)

	summaries, err := svc.LoadReactions(context.Background(), uuid.New(), entity.SubjectTrick, nil)
	require.NoError(t, err)
	assert.Empty(t, summaries)
	assert.Equal(t, int32(0), repo.calls.Load())
}

func TestLoadReactionsBatch(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	viewer := newTestUser(t, db, "viewer")
	commenter := newTestUser(t, db, "commenter")

	liked := uuid.New()
	commented := uuid.New()
	untouched := uuid.New()

	_, err := svc.Toggle(ctx, viewer.ID, entity.SubjectTrick, liked)
	require.NoError(t, err)

	comment, err := svc.AddComment(ctx, commenter.ID, entity.SubjectTrick, commented, "clean landing")
	require.NoError(t, err)

	_, err = svc.Toggle(ctx, viewer.ID, entity.SubjectComment, comment.ID)
	require.NoError(t, err)

	summaries, err := svc.LoadReactions(ctx, viewer.ID, entity.SubjectTrick, []uuid.UUID{liked, commented, untouched})
	require.NoError(t, err)
	require.Len(t, summaries, 3)

	assert.Equal(t, int64(1), summaries[liked].LikesCount)
	assert.True(t, summaries[liked].ViewerLiked)
	assert.Equal(t, int64(0), summaries[liked].CommentsCount)

	withComment := summaries[commented]
	assert.Equal(t, int64(1), withComment.CommentsCount)
	require.Len(t, withComment.Comments, 1)
	assert.Equal(t, "clean landing", withComment.Comments[0].Content)
	assert.Equal(t, "commenter", withComment.Comments[0].Author.Username)
	assert.Equal(t, int64(1), withComment.Comments[0].LikesCount)
	assert.True(t, withComment.Comments[0].ViewerLiked)

	// A requested subject with no activity still gets a zero-value summary
	// with a non-nil comment slice.
	blank := summaries[untouched]
	assert.Equal(t, int64(0), blank.LikesCount)
	assert.False(t, blank.ViewerLiked)
	assert.NotNil(t, blank.Comments)
	assert.Empty(t, blank.Comments)
}

func TestDeletedCommentExcludedFromBatch(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	author := newTestUser(t, db, "author")
	trickID := uuid.New()

	keep, err := svc.AddComment(ctx, author.ID, entity.SubjectTrick, trickID, "first")
	require.NoError(t, err)
	drop, err := svc.AddComment(ctx, author.ID, entity.SubjectTrick, trickID, "second")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteComment(ctx, author.ID, drop.ID))

	summaries, err := svc.LoadReactions(ctx, author.ID, entity.SubjectTrick, []uuid.UUID{trickID})
	require.NoError(t, err)

	summary := summaries[trickID]
	assert.Equal(t, int64(1), summary.CommentsCount)
	require.Len(t, summary.Comments, 1)
	assert.Equal(t, keep.ID, summary.Comments[0].ID)

	// The tombstoned row is retained, not deleted.
	var stored entity.Comment
	require.NoError(t, db.First(&stored, "id = ?", drop.ID).Error)
	assert.True(t, stored.Deleted)

	counter := counterRow(t, db, entity.SubjectTrick, trickID)
	assert.Equal(t, int64(1), counter.CommentsCount)
}

func TestAddCommentOnCommentRejected(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)

	_, err := svc.AddComment(context.Background(), uuid.New(), entity.SubjectComment, uuid.New(), "nope")
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestAddCommentCooldown(t *testing.T) {
	db := newTestDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	svc := NewReactionService(reactionRepo.NewReactionRepository(db), rdb, nil, time.Minute)
	ctx := context.Background()

	author := newTestUser(t, db, "chatty")
	trickID := uuid.New()

	_, err := svc.AddComment(ctx, author.ID, entity.SubjectTrick, trickID, "first")
	require.NoError(t, err)

	_, err = svc.AddComment(ctx, author.ID, entity.SubjectTrick, trickID, "second")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrRateLimitExceeded)

	var rateErr *ratelimiter.RateLimitError
	require.ErrorAs(t, err, &rateErr)
	assert.Greater(t, rateErr.RetryAfter, time.Duration(0))

	// Once the cooldown lapses the author can comment again.
	mr.FastForward(2 * time.Minute)
	_, err = svc.AddComment(ctx, author.ID, entity.SubjectTrick, trickID, "third")
	require.NoError(t, err)
}

func TestDeleteCommentAuthorOnly(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	author := newTestUser(t, db, "author")
	stranger := newTestUser(t, db, "stranger")

	comment, err := svc.AddComment(ctx, author.ID, entity.SubjectTrick, uuid.New(), "mine")
	require.NoError(t, err)

	err = svc.DeleteComment(ctx, stranger.ID, comment.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	require.NoError(t, svc.DeleteComment(ctx, author.ID, comment.ID))

	// Deleting again reports not found, same as a never-existing comment.
	err = svc.DeleteComment(ctx, author.ID, comment.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	err = svc.DeleteComment(ctx, author.ID, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
