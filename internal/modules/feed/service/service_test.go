package feed

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"ramplog.app/backend/internal/entity"
	feedDto "ramplog.app/backend/internal/modules/feed/dto"
	feedRepo "ramplog.app/backend/internal/modules/feed/repository"
	reactionRepo "ramplog.app/backend/internal/modules/reaction/repository"
	reactionService "ramplog.app/backend/internal/modules/reaction/service"
	userRepo "ramplog.app/backend/internal/modules/user/repository"
	commonDto "ramplog.app/backend/pkg/dto"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&entity.Role{},
		&entity.User{},
		&entity.Trick{},
		&entity.Park{},
		&entity.Event{},
		&entity.EventRegistration{},
		&entity.TrickProgress{},
		&entity.Achievement{},
		&entity.UserAchievement{},
		&entity.LikeEdge{},
		&entity.Comment{},
		&entity.ReactionCounter{},
		&entity.Favorite{},
		&entity.HiddenFeedItem{},
	))
	return db
}

func newTestService(t *testing.T, db *gorm.DB) FeedService {
	t.Helper()
	users := userRepo.NewUserRepository(db)
	reactions := reactionService.NewReactionService(reactionRepo.NewReactionRepository(db), nil, nil, 0)
	return NewFeedService(feedRepo.NewFeedRepository(db), users, reactions)
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

func favorite(t *testing.T, db *gorm.DB, userID, targetID uuid.UUID) {
	t.Helper()
	require.NoError(t, db.Create(&entity.Favorite{UserID: userID, TargetUserID: targetID}).Error)
}

func masterTrick(t *testing.T, db *gorm.DB, userID uuid.UUID, trick *entity.Trick, at time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&entity.TrickProgress{
		UserID:    userID,
		TrickID:   trick.ID,
		Status:    entity.ProgressMastered,
		CreatedAt: at,
		UpdatedAt: at,
	}).Error)
}

func joinEvent(t *testing.T, db *gorm.DB, userID uuid.UUID, event *entity.Event, at time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&entity.EventRegistration{
		UserID:    userID,
		EventID:   event.ID,
		CreatedAt: at,
	}).Error)
}

func TestBuildFeedTwoUserOrdering(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	viewer := newTestUser(t, db, "viewer")
	actor := newTestUser(t, db, "actor")
	favorite(t, db, viewer.ID, actor.ID)

	trick := &entity.Trick{Name: "kickflip", Category: "flip", Difficulty: 3}
	require.NoError(t, db.Create(trick).Error)
	event := &entity.Event{Title: "Bowl Jam", StartsAt: time.Now().Add(24 * time.Hour)}
	require.NoError(t, db.Create(event).Error)

	t1 := time.Now().Add(-2 * time.Hour).Truncate(time.Second)
	t2 := t1.Add(time.Hour)
	masterTrick(t, db, actor.ID, trick, t1)
	joinEvent(t, db, actor.ID, event, t2)

	// Page of one: only the newest item, with more behind it.
	page, err := svc.BuildFeed(ctx, viewer.ID, 1)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.True(t, page.HasMore)
	assert.Equal(t, feedDto.TypeEventJoined, page.Items[0].Type)
	assert.Equal(t, "Bowl Jam", page.Items[0].Title)
	assert.Equal(t, "actor", page.Items[0].Actor.Username)

	// Page of two: both items, newest first, nothing left over.
	page, err = svc.BuildFeed(ctx, viewer.ID, 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.False(t, page.HasMore)
	assert.Equal(t, feedDto.TypeEventJoined, page.Items[0].Type)
	assert.Equal(t, feedDto.TypeProgressMastered, page.Items[1].Type)
	assert.Equal(t, "kickflip", page.Items[1].Title)
	assert.True(t, page.Items[0].OccurredAt.After(page.Items[1].OccurredAt))

	// Reaction summaries are attached even when empty.
	assert.NotNil(t, page.Items[0].Reactions.Comments)
	assert.Equal(t, int64(0), page.Items[0].Reactions.LikesCount)
}

func TestBuildFeedScopedToFollowedSet(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	viewer := newTestUser(t, db, "viewer")
	followed := newTestUser(t, db, "followed")
	stranger := newTestUser(t, db, "stranger")
	favorite(t, db, viewer.ID, followed.ID)

	trick := &entity.Trick{Name: "ollie", Category: "flat", Difficulty: 1}
	require.NoError(t, db.Create(trick).Error)

	now := time.Now().Truncate(time.Second)
	masterTrick(t, db, viewer.ID, trick, now.Add(-3*time.Hour))
	masterTrick(t, db, followed.ID, trick, now.Add(-2*time.Hour))
	masterTrick(t, db, stranger.ID, trick, now.Add(-1*time.Hour))

	page, err := svc.BuildFeed(ctx, viewer.ID, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)

	// The viewer's own activity shows up; the stranger's never does.
	actors := []string{page.Items[0].Actor.Username, page.Items[1].Actor.Username}
	assert.ElementsMatch(t, []string{"viewer", "followed"}, actors)
}

func TestBuildFeedHiddenItemsFilteredBeforeCut(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	viewer := newTestUser(t, db, "viewer")
	actor := newTestUser(t, db, "actor")
	favorite(t, db, viewer.ID, actor.ID)

	trick := &entity.Trick{Name: "heelflip", Category: "flip", Difficulty: 4}
	require.NoError(t, db.Create(trick).Error)
	event := &entity.Event{Title: "Street Sesh", StartsAt: time.Now()}
	require.NoError(t, db.Create(event).Error)

	now := time.Now().Truncate(time.Second)
	masterTrick(t, db, actor.ID, trick, now.Add(-2*time.Hour))
	joinEvent(t, db, actor.ID, event, now.Add(-1*time.Hour))

	// Hide the newest item by its stable ID.
	hiddenID := FeedItemID(feedDto.TypeEventJoined, actor.ID, event.ID)
	require.NoError(t, db.Create(&entity.HiddenFeedItem{UserID: viewer.ID, ItemID: hiddenID}).Error)

	// With the newest item hidden only one visible row remains, so a page
	// of one is complete: hasMore describes what the viewer can see.
	page, err := svc.BuildFeed(ctx, viewer.ID, 1)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.False(t, page.HasMore)
	assert.Equal(t, feedDto.TypeProgressMastered, page.Items[0].Type)

	// The hide is viewer-scoped.
	page, err = svc.BuildFeed(ctx, actor.ID, 10)
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
}

func TestBuildFeedHiddenItemInsideFetchWindow(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	viewer := newTestUser(t, db, "viewer")
	now := time.Now().Truncate(time.Second)

	// Four masteries, newest first: hidden, v1, v2, v3.
	tricks := make([]*entity.Trick, 4)
	for i := range tricks {
		trick := &entity.Trick{Name: fmt.Sprintf("trick%d", i), Category: "flip", Difficulty: 1}
		require.NoError(t, db.Create(trick).Error)
		masterTrick(t, db, viewer.ID, trick, now.Add(-time.Duration(i)*time.Hour))
		tricks[i] = trick
	}

	hiddenID := FeedItemID(feedDto.TypeProgressMastered, viewer.ID, tricks[0].ID)
	require.NoError(t, db.Create(&entity.HiddenFeedItem{UserID: viewer.ID, ItemID: hiddenID}).Error)

	// The hidden row sits inside the fetch window. With limit=2 the page is
	// v1 and v2, and v3 beyond the boundary must still prove a next page.
	page, err := svc.BuildFeed(ctx, viewer.ID, 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "trick1", page.Items[0].Title)
	assert.Equal(t, "trick2", page.Items[1].Title)
	assert.True(t, page.HasMore)

	page, err = svc.BuildFeed(ctx, viewer.ID, 3)
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.False(t, page.HasMore)
}

func TestBuildFeedPaginationBoundary(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	viewer := newTestUser(t, db, "viewer")
	now := time.Now().Truncate(time.Second)
	const total = 4
	for i := 0; i < total; i++ {
		trick := &entity.Trick{Name: fmt.Sprintf("trick%d", i), Category: "flip", Difficulty: 1}
		require.NoError(t, db.Create(trick).Error)
		masterTrick(t, db, viewer.ID, trick, now.Add(-time.Duration(i)*time.Hour))
	}

	page, err := svc.BuildFeed(ctx, viewer.ID, total)
	require.NoError(t, err)
	assert.Len(t, page.Items, total)
	assert.False(t, page.HasMore)

	page, err = svc.BuildFeed(ctx, viewer.ID, total-1)
	require.NoError(t, err)
	assert.Len(t, page.Items, total-1)
	assert.True(t, page.HasMore)
}

func TestFeedItemIDStable(t *testing.T) {
	actorID := uuid.MustParse("0198c6a1-0000-7000-8000-000000000001")
	subjectID := uuid.MustParse("0198c6a1-0000-7000-8000-000000000002")

	a := FeedItemID(feedDto.TypeEventJoined, actorID, subjectID)
	b := FeedItemID(feedDto.TypeEventJoined, actorID, subjectID)
	assert.Equal(t, a, b)
	assert.Equal(t, "event_joined:"+actorID.String()+":"+subjectID.String(), a)

	assert.NotEqual(t, a, FeedItemID(feedDto.TypeProgressMastered, actorID, subjectID))
	assert.NotEqual(t, a, FeedItemID(feedDto.TypeEventJoined, subjectID, actorID))
}

type zeroTimeFeedRepo struct {
	progress []entity.TrickProgress
}

func (r *zeroTimeFeedRepo) ProgressEvents(ctx context.Context, actorIDs []uuid.UUID, limit int) ([]entity.TrickProgress, error) {
	return r.progress, nil
}

func (r *zeroTimeFeedRepo) EventJoins(ctx context.Context, actorIDs []uuid.UUID, limit int) ([]entity.EventRegistration, error) {
	return nil, nil
}

func (r *zeroTimeFeedRepo) AchievementEvents(ctx context.Context, actorIDs []uuid.UUID, limit int) ([]entity.UserAchievement, error) {
	return nil, nil
}

type noopUsers struct {
	userRepo.UserRepository
}

func (noopUsers) FavoriteTargetIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return nil, nil
}

func (noopUsers) HiddenItemIDs(ctx context.Context, userID uuid.UUID) ([]string, error) {
	return nil, nil
}

func (noopUsers) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]entity.User, error) {
	return map[uuid.UUID]entity.User{}, nil
}

type noopReactions struct {
	reactionService.ReactionService
}

func (noopReactions) LoadReactions(ctx context.Context, viewerID uuid.UUID, subjectType string, subjectIDs []uuid.UUID) (map[uuid.UUID]commonDto.ReactionSummary, error) {
	return map[uuid.UUID]commonDto.ReactionSummary{}, nil
}

func TestBuildFeedZeroTimestampSortsLast(t *testing.T) {
	actorID := uuid.New()
	timed := entity.TrickProgress{
		UserID:    actorID,
		TrickID:   uuid.New(),
		Status:    entity.ProgressStarted,
		UpdatedAt: time.Now(),
	}
	untimed := entity.TrickProgress{
		UserID:  actorID,
		TrickID: uuid.New(),
		Status:  entity.ProgressStarted,
	}

	svc := NewFeedService(&zeroTimeFeedRepo{progress: []entity.TrickProgress{untimed, timed}}, noopUsers{}, noopReactions{})

	page, err := svc.BuildFeed(context.Background(), actorID, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, timed.TrickID, page.Items[0].SubjectID)
	assert.Equal(t, untimed.TrickID, page.Items[1].SubjectID)
	assert.True(t, page.Items[1].OccurredAt.IsZero())
}
