package snapshot

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"ramplog.app/backend/internal/entity"
	eventRepo "ramplog.app/backend/internal/modules/event/repository"
	feedDto "ramplog.app/backend/internal/modules/feed/dto"
	notifService "ramplog.app/backend/internal/modules/notification/service"
	progressRepo "ramplog.app/backend/internal/modules/progress/repository"
	snapshotRepo "ramplog.app/backend/internal/modules/snapshot/repository"
	userRepo "ramplog.app/backend/internal/modules/user/repository"
)

// The stubs embed the interfaces they fake so only the methods the
// assembler actually uses need bodies; an unexpected call panics, which is
// exactly what the short-circuit tests rely on.

type stubSignals struct {
	catalogTime  time.Time
	catalogCount int64
	err          error
	calls        atomic.Int32
}

func (s *stubSignals) read() (snapshotRepo.CatalogSignal, error) {
	s.calls.Add(1)
	return snapshotRepo.CatalogSignal{UpdatedAt: s.catalogTime, Count: s.catalogCount}, s.err
}

func (s *stubSignals) TricksSignal(ctx context.Context) (snapshotRepo.CatalogSignal, error) {
	return s.read()
}

func (s *stubSignals) ArticlesSignal(ctx context.Context) (snapshotRepo.CatalogSignal, error) {
	return s.read()
}

func (s *stubSignals) ProductsSignal(ctx context.Context) (snapshotRepo.CatalogSignal, error) {
	return s.read()
}

func (s *stubSignals) ParksSignal(ctx context.Context) (snapshotRepo.CatalogSignal, error) {
	return s.read()
}

func (s *stubSignals) EventsSignal(ctx context.Context) (snapshotRepo.CatalogSignal, error) {
	return s.read()
}

func (s *stubSignals) LastAchievementAt(ctx context.Context, userID uuid.UUID) (time.Time, error) {
	s.calls.Add(1)
	return s.catalogTime, s.err
}

type stubCatalog struct {
	calls atomic.Int32
}

func (s *stubCatalog) Tricks(ctx context.Context) ([]entity.Trick, error) {
	s.calls.Add(1)
	return []entity.Trick{{Name: "kickflip"}}, nil
}

func (s *stubCatalog) Articles(ctx context.Context) ([]entity.Article, error) {
	s.calls.Add(1)
	return nil, nil
}

func (s *stubCatalog) Products(ctx context.Context) ([]entity.Product, error) {
	s.calls.Add(1)
	return nil, nil
}

func (s *stubCatalog) Parks(ctx context.Context) ([]entity.Park, error) {
	s.calls.Add(1)
	return nil, nil
}

func (s *stubCatalog) SaveTrick(ctx context.Context, trick *entity.Trick) error       { panic("unexpected") }
func (s *stubCatalog) SaveArticle(ctx context.Context, article *entity.Article) error { panic("unexpected") }
func (s *stubCatalog) SaveProduct(ctx context.Context, product *entity.Product) error { panic("unexpected") }
func (s *stubCatalog) SavePark(ctx context.Context, park *entity.Park) error          { panic("unexpected") }
func (s *stubCatalog) DeleteTrick(ctx context.Context, id uuid.UUID) error            { panic("unexpected") }
func (s *stubCatalog) DeleteArticle(ctx context.Context, id uuid.UUID) error          { panic("unexpected") }
func (s *stubCatalog) DeleteProduct(ctx context.Context, id uuid.UUID) error          { panic("unexpected") }
func (s *stubCatalog) DeletePark(ctx context.Context, id uuid.UUID) error             { panic("unexpected") }

type stubProgress struct {
	progressRepo.ProgressRepository
	maxUpdated time.Time
	listCalls  atomic.Int32
}

func (s *stubProgress) MaxUpdatedAt(ctx context.Context, userID uuid.UUID) (time.Time, error) {
	return s.maxUpdated, nil
}

func (s *stubProgress) ByUser(ctx context.Context, userID uuid.UUID) ([]entity.TrickProgress, error) {
	s.listCalls.Add(1)
	return nil, nil
}

type stubEvents struct {
	eventRepo.EventRepository
}

func (s *stubEvents) CountRegistrations(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 2, nil
}

func (s *stubEvents) RegistrationIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return nil, nil
}

type stubUsers struct {
	userRepo.UserRepository
}

func (s *stubUsers) CountFavorites(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 1, nil
}

func (s *stubUsers) CountArticleReads(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 4, nil
}

func (s *stubUsers) FavoriteTargetIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return nil, nil
}

type stubNotifications struct {
	notifService.NotificationService
	calls atomic.Int32
}

func (s *stubNotifications) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	s.calls.Add(1)
	return 3, nil
}

type stubFeed struct {
	calls atomic.Int32
	err   error
}

func (s *stubFeed) BuildFeed(ctx context.Context, viewerID uuid.UUID, limit int) (*feedDto.FeedResponse, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return &feedDto.FeedResponse{Items: []feedDto.FeedItem{}}, nil
}

type fixture struct {
	signals       *stubSignals
	catalog       *stubCatalog
	notifications *stubNotifications
	feed          *stubFeed
	service       SnapshotService
}

func newFixture() *fixture {
	f := &fixture{
		signals:       &stubSignals{catalogTime: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), catalogCount: 10},
		catalog:       &stubCatalog{},
		notifications: &stubNotifications{},
		feed:          &stubFeed{},
	}
	f.service = NewSnapshotService(
		f.signals,
		f.catalog,
		&stubProgress{maxUpdated: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)},
		&stubEvents{},
		&stubUsers{},
		f.notifications,
		f.feed,
		20,
	)
	return f
}

func TestBuildFullSnapshot(t *testing.T) {
	f := newFixture()
	viewer := uuid.New()

	resp, notModified, err := f.service.Build(context.Background(), viewer, "")
	require.NoError(t, err)
	assert.False(t, notModified)
	require.NotNil(t, resp)

	assert.NotEmpty(t, resp.Token)
	assert.Len(t, resp.Catalogs.Tricks, 1)
	assert.NotNil(t, resp.Feed)
	assert.Equal(t, int64(3), resp.UnreadNotifications)
	assert.Equal(t, int32(4), f.catalog.calls.Load())
	assert.Equal(t, int32(1), f.feed.calls.Load())

	// The unread count collected as a signal is reused in the payload
	// rather than queried a second time by the fan-out.
	assert.Equal(t, int32(1), f.notifications.calls.Load())
}

func TestBuildRebuildsWhenCatalogShrinks(t *testing.T) {
	f := newFixture()
	viewer := uuid.New()

	first, _, err := f.service.Build(context.Background(), viewer, "")
	require.NoError(t, err)

	// A hard delete of a non-newest row moves no timestamp; only the count
	// changes. The old token must stop matching.
	f.signals.catalogCount--

	resp, notModified, err := f.service.Build(context.Background(), viewer, first.Token)
	require.NoError(t, err)
	assert.False(t, notModified)
	require.NotNil(t, resp)
	assert.NotEqual(t, first.Token, resp.Token)
}

func TestBuildShortCircuitsOnMatchingToken(t *testing.T) {
	f := newFixture()
	viewer := uuid.New()

	first, notModified, err := f.service.Build(context.Background(), viewer, "")
	require.NoError(t, err)
	require.False(t, notModified)

	catalogCalls := f.catalog.calls.Load()
	feedCalls := f.feed.calls.Load()

	resp, notModified, err := f.service.Build(context.Background(), viewer, first.Token)
	require.NoError(t, err)
	assert.True(t, notModified)
	assert.Nil(t, resp)

	// Only the signal reads ran; no catalog fill and no feed build.
	assert.Equal(t, catalogCalls, f.catalog.calls.Load())
	assert.Equal(t, feedCalls, f.feed.calls.Load())
}

func TestBuildRebuildsWhenSignalsMove(t *testing.T) {
	f := newFixture()
	viewer := uuid.New()

	first, _, err := f.service.Build(context.Background(), viewer, "")
	require.NoError(t, err)

	f.signals.catalogTime = f.signals.catalogTime.Add(time.Minute)

	resp, notModified, err := f.service.Build(context.Background(), viewer, first.Token)
	require.NoError(t, err)
	assert.False(t, notModified)
	require.NotNil(t, resp)
	assert.NotEqual(t, first.Token, resp.Token)
}

func TestBuildTokenIsPerViewer(t *testing.T) {
	f := newFixture()

	first, _, err := f.service.Build(context.Background(), uuid.New(), "")
	require.NoError(t, err)

	// Another viewer presenting the first viewer's token must not get a 304.
	resp, notModified, err := f.service.Build(context.Background(), uuid.New(), first.Token)
	require.NoError(t, err)
	assert.False(t, notModified)
	require.NotNil(t, resp)
	assert.NotEqual(t, first.Token, resp.Token)
}

func TestBuildFailsOpenOnSignalError(t *testing.T) {
	f := newFixture()
	viewer := uuid.New()

	first, _, err := f.service.Build(context.Background(), viewer, "")
	require.NoError(t, err)

	f.signals.err = errors.New("signal store down")

	// Even a previously valid token cannot short-circuit when the signals
	// are unreadable; the snapshot is rebuilt unconditionally.
	resp, notModified, err := f.service.Build(context.Background(), viewer, first.Token)
	require.NoError(t, err)
	assert.False(t, notModified)
	require.NotNil(t, resp)
	assert.Empty(t, resp.Token)
}

func TestBuildFailsWhenAnyBranchFails(t *testing.T) {
	f := newFixture()
	f.feed.err = errors.New("feed store down")

	resp, notModified, err := f.service.Build(context.Background(), uuid.New(), "")
	assert.Error(t, err)
	assert.False(t, notModified)
	assert.Nil(t, resp)
}
