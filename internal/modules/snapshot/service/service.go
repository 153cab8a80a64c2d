package snapshot

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	catalogService "ramplog.app/backend/internal/modules/catalog/service"
	eventRepo "ramplog.app/backend/internal/modules/event/repository"
	feedService "ramplog.app/backend/internal/modules/feed/service"
	notifService "ramplog.app/backend/internal/modules/notification/service"
	progressRepo "ramplog.app/backend/internal/modules/progress/repository"
	snapshotDto "ramplog.app/backend/internal/modules/snapshot/dto"
	snapshotRepo "ramplog.app/backend/internal/modules/snapshot/repository"
	userRepo "ramplog.app/backend/internal/modules/user/repository"
)

type SnapshotService interface {
	// Build assembles the viewer's boot payload. When previousToken still
	// matches the current fingerprint it reports notModified=true without
	// fetching anything else.
	Build(ctx context.Context, viewerID uuid.UUID, previousToken string) (*snapshotDto.SnapshotResponse, bool, error)
}

type snapshotService struct {
	signals             snapshotRepo.SignalRepository
	catalogService      catalogService.CatalogService
	progressRepo        progressRepo.ProgressRepository
	eventRepo           eventRepo.EventRepository
	userRepo            userRepo.UserRepository
	notificationService notifService.NotificationService
	feedService         feedService.FeedService
	feedLimit           int
}

func NewSnapshotService(
	signals snapshotRepo.SignalRepository,
	catalogs catalogService.CatalogService,
	progress progressRepo.ProgressRepository,
	events eventRepo.EventRepository,
	users userRepo.UserRepository,
	notifications notifService.NotificationService,
	feed feedService.FeedService,
	feedLimit int,
) SnapshotService {
	if feedLimit <= 0 {
		feedLimit = feedService.DefaultLimit
	}
	return &snapshotService{
		signals:             signals,
		catalogService:      catalogs,
		progressRepo:        progress,
		eventRepo:           events,
		userRepo:            users,
		notificationService: notifications,
		feedService:         feed,
		feedLimit:           feedLimit,
	}
}

func (s *snapshotService) Build(ctx context.Context, viewerID uuid.UUID, previousToken string) (*snapshotDto.SnapshotResponse, bool, error) {
	started := time.Now()

	// A broken signal read must never freeze a client on stale data, so it
	// downgrades the request to an unconditional rebuild.
	token := ""
	signals, sigErr := s.collectSignals(ctx, viewerID)
	if sigErr != nil {
		log.Printf("snapshot signals unavailable, skipping conditional check: %v", sigErr)
	} else {
		token = Fingerprint(viewerID, signals)
		if previousToken != "" && previousToken == token {
			return nil, true, nil
		}
	}

	resp := &snapshotDto.SnapshotResponse{Token: token}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tricks, err := s.catalogService.Tricks(gctx)
		resp.Catalogs.Tricks = tricks
		return err
	})
	g.Go(func() error {
		articles, err := s.catalogService.Articles(gctx)
		resp.Catalogs.Articles = articles
		return err
	})
	g.Go(func() error {
		products, err := s.catalogService.Products(gctx)
		resp.Catalogs.Products = products
		return err
	})
	g.Go(func() error {
		parks, err := s.catalogService.Parks(gctx)
		resp.Catalogs.Parks = parks
		return err
	})
	g.Go(func() error {
		progress, err := s.progressRepo.ByUser(gctx, viewerID)
		resp.Progress = progress
		return err
	})
	g.Go(func() error {
		registrations, err := s.eventRepo.RegistrationIDs(gctx, viewerID)
		resp.Registrations = registrations
		return err
	})
	g.Go(func() error {
		favorites, err := s.userRepo.FavoriteTargetIDs(gctx, viewerID)
		resp.Favorites = favorites
		return err
	})
	if sigErr == nil {
		// The unread count was already read as a signal; no second query.
		resp.UnreadNotifications = signals.UnreadNotifications
	} else {
		g.Go(func() error {
			unread, err := s.notificationService.UnreadCount(gctx, viewerID)
			resp.UnreadNotifications = unread
			return err
		})
	}
	g.Go(func() error {
		feed, err := s.feedService.BuildFeed(gctx, viewerID, s.feedLimit)
		resp.Feed = feed
		return err
	})

	// A half-assembled snapshot is worse than an error: the client would
	// cache the gaps under a valid token.
	if err := g.Wait(); err != nil {
		return nil, false, err
	}

	resp.GeneratedAt = time.Now()
	resp.ElapsedMs = time.Since(started).Milliseconds()
	return resp, false, nil
}

func (s *snapshotService) collectSignals(ctx context.Context, viewerID uuid.UUID) (Signals, error) {
	var (
		signals Signals
		err     error
	)

	if signals.Tricks, err = s.signals.TricksSignal(ctx); err != nil {
		return signals, err
	}
	if signals.Articles, err = s.signals.ArticlesSignal(ctx); err != nil {
		return signals, err
	}
	if signals.Products, err = s.signals.ProductsSignal(ctx); err != nil {
		return signals, err
	}
	if signals.Parks, err = s.signals.ParksSignal(ctx); err != nil {
		return signals, err
	}
	if signals.Events, err = s.signals.EventsSignal(ctx); err != nil {
		return signals, err
	}
	if signals.ProgressUpdatedAt, err = s.progressRepo.MaxUpdatedAt(ctx, viewerID); err != nil {
		return signals, err
	}
	if signals.RegistrationCount, err = s.eventRepo.CountRegistrations(ctx, viewerID); err != nil {
		return signals, err
	}
	if signals.FavoriteCount, err = s.userRepo.CountFavorites(ctx, viewerID); err != nil {
		return signals, err
	}
	if signals.ArticleReadCount, err = s.userRepo.CountArticleReads(ctx, viewerID); err != nil {
		return signals, err
	}
	if signals.LastAchievementAt, err = s.signals.LastAchievementAt(ctx, viewerID); err != nil {
		return signals, err
	}
	if signals.UnreadNotifications, err = s.notificationService.UnreadCount(ctx, viewerID); err != nil {
		return signals, err
	}

	return signals, nil
}
