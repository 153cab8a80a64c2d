package server

import (
	"context"
	"log"
	"strings"
	"time"

	"ramplog.app/backend/internal/config"
	"ramplog.app/backend/internal/middleware"
	"ramplog.app/backend/pkg/cache"
	"ramplog.app/backend/pkg/storage"

	achievementHttp "ramplog.app/backend/internal/modules/achievement/delivery/http"
	achievementRepo "ramplog.app/backend/internal/modules/achievement/repository"
	achievementService "ramplog.app/backend/internal/modules/achievement/service"

	catalogHttp "ramplog.app/backend/internal/modules/catalog/delivery/http"
	catalogRepo "ramplog.app/backend/internal/modules/catalog/repository"
	catalogService "ramplog.app/backend/internal/modules/catalog/service"

	eventHttp "ramplog.app/backend/internal/modules/event/delivery/http"
	eventRepo "ramplog.app/backend/internal/modules/event/repository"
	eventService "ramplog.app/backend/internal/modules/event/service"

	feedHttp "ramplog.app/backend/internal/modules/feed/delivery/http"
	feedRepo "ramplog.app/backend/internal/modules/feed/repository"
	feedService "ramplog.app/backend/internal/modules/feed/service"

	notiHttp "ramplog.app/backend/internal/modules/notification/delivery/http"
	notifRepo "ramplog.app/backend/internal/modules/notification/repository"
	notifService "ramplog.app/backend/internal/modules/notification/service"

	progressHttp "ramplog.app/backend/internal/modules/progress/delivery/http"
	progressRepo "ramplog.app/backend/internal/modules/progress/repository"
	progressService "ramplog.app/backend/internal/modules/progress/service"

	reactionHttp "ramplog.app/backend/internal/modules/reaction/delivery/http"
	reactionRepo "ramplog.app/backend/internal/modules/reaction/repository"
	reactionService "ramplog.app/backend/internal/modules/reaction/service"

	searchService "ramplog.app/backend/internal/modules/search/service"

	snapshotHttp "ramplog.app/backend/internal/modules/snapshot/delivery/http"
	snapshotRepo "ramplog.app/backend/internal/modules/snapshot/repository"
	snapshotService "ramplog.app/backend/internal/modules/snapshot/service"

	userHttp "ramplog.app/backend/internal/modules/user/delivery/http"
	userRepo "ramplog.app/backend/internal/modules/user/repository"
	userService "ramplog.app/backend/internal/modules/user/service"

	viewHttp "ramplog.app/backend/internal/modules/view/delivery/http"
	viewService "ramplog.app/backend/internal/modules/view/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	users := userRepo.NewUserRepository(db)

	imageStorage, err := storage.NewCloudinaryStorage()
	if err != nil {
		log.Fatalf("failed to initialize cloudinary storage: %v", err)
	}

	meiliHost := cfg.MeiliSearchHost
	if !strings.HasPrefix(meiliHost, "http") {
		meiliHost = "http://" + meiliHost + ":7700"
	}
	meiliClient := meilisearch.New(meiliHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	searchSvc := searchService.NewSearchService(meiliClient)

	catalogCache := cache.New()

	catalogRepository := catalogRepo.NewCatalogRepository(db)
	catalogSvc := catalogService.NewCatalogService(catalogRepository, catalogCache, searchSvc, cfg.CatalogCacheTTL)
	catalogHandler := catalogHttp.NewCatalogHandler(catalogSvc, searchSvc)

	notificationRepository := notifRepo.NewNotificationRepository(db)
	notificationSvc := notifService.NewNotificationService(notificationRepository, redisClient)
	notificationHandler := notiHttp.NewNotificationHandler(notificationSvc, redisClient)

	reactionRepository := reactionRepo.NewReactionRepository(db)
	reactionSvc := reactionService.NewReactionService(reactionRepository, redisClient, notificationSvc, cfg.CommentCooldown)
	reactionHandler := reactionHttp.NewReactionHandler(reactionSvc)

	achievementRepository := achievementRepo.NewAchievementRepository(db)
	achievementSvc := achievementService.NewAchievementService(achievementRepository, notificationSvc)
	achievementHandler := achievementHttp.NewAchievementHandler(achievementSvc)

	progressRepository := progressRepo.NewProgressRepository(db)
	progressSvc := progressService.NewProgressService(progressRepository, catalogRepository, achievementSvc)
	progressHandler := progressHttp.NewProgressHandler(progressSvc)

	eventRepository := eventRepo.NewEventRepository(db)
	eventSvc := eventService.NewEventService(eventRepository)
	eventHandler := eventHttp.NewEventHandler(eventSvc)

	feedRepository := feedRepo.NewFeedRepository(db)
	feedSvc := feedService.NewFeedService(feedRepository, users, reactionSvc)
	feedHandler := feedHttp.NewFeedHandler(feedSvc)

	signalRepository := snapshotRepo.NewSignalRepository(db)
	snapshotSvc := snapshotService.NewSnapshotService(
		signalRepository,
		catalogSvc,
		progressRepository,
		eventRepository,
		users,
		notificationSvc,
		feedSvc,
		cfg.SnapshotFeedLimit,
	)
	snapshotHandler := snapshotHttp.NewSnapshotHandler(snapshotSvc)

	viewSvc := viewService.NewViewService(redisClient, catalogRepository)
	if redisClient != nil {
		go viewSvc.StartViewSyncWorker(context.Background())
	}
	viewHandler := viewHttp.NewViewHandler(viewSvc)

	authSvc := userService.NewAuthService(users, cfg.JWTSecret, cfg.TokenTTL)
	profileSvc := userService.NewProfileService(users, imageStorage)
	socialSvc := userService.NewSocialService(users)
	userHandler := userHttp.NewUserHandler(authSvc, profileSvc, socialSvc)

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	authMiddleware := middleware.NewAuthMiddleware(users, cfg.JWTSecret)

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/login", userHandler.Login)
	}

	// Protected routes (apply auth middleware explicitly)
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		// Admin routes
		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireAdmin())
		{
			adminGroup.POST("/tricks", catalogHandler.UpsertTrick)
			adminGroup.PUT("/tricks/:id", catalogHandler.UpsertTrick)
			adminGroup.DELETE("/tricks/:id", catalogHandler.DeleteTrick)
			adminGroup.POST("/articles", catalogHandler.UpsertArticle)
			adminGroup.PUT("/articles/:id", catalogHandler.UpsertArticle)
			adminGroup.DELETE("/articles/:id", catalogHandler.DeleteArticle)
			adminGroup.POST("/products", catalogHandler.UpsertProduct)
			adminGroup.PUT("/products/:id", catalogHandler.UpsertProduct)
			adminGroup.DELETE("/products/:id", catalogHandler.DeleteProduct)
			adminGroup.POST("/parks", catalogHandler.UpsertPark)
			adminGroup.PUT("/parks/:id", catalogHandler.UpsertPark)
			adminGroup.DELETE("/parks/:id", catalogHandler.DeletePark)
			adminGroup.POST("/events", eventHandler.UpsertEvent)
			adminGroup.PUT("/events/:id", eventHandler.UpsertEvent)
			adminGroup.DELETE("/events/:id", eventHandler.DeleteEvent)
		}

		// One-call boot payload with conditional rebuild
		protected.GET("/snapshot", snapshotHandler.GetSnapshot)

		// Reaction routes
		protected.POST("/reactions/:subject_type/:subject_id/like", reactionHandler.ToggleLike)
		protected.POST("/reactions/:subject_type/:subject_id/comments", reactionHandler.CreateComment)
		protected.DELETE("/reactions/:subject_type/:subject_id/comments/:comment_id", reactionHandler.DeleteComment)

		// Feed routes
		protected.GET("/feed", feedHandler.GetFeed)
		protected.POST("/feed/hide", userHandler.HideFeedItem)

		// Catalog routes
		protected.GET("/tricks", catalogHandler.GetTricks)
		protected.GET("/articles", catalogHandler.GetArticles)
		protected.GET("/products", catalogHandler.GetProducts)
		protected.GET("/parks", catalogHandler.GetParks)
		protected.GET("/search", catalogHandler.Search)

		// Trick routes
		protected.PUT("/tricks/:id/progress", progressHandler.SetStatus)
		protected.POST("/tricks/:id/view", viewHandler.TrackTrickView)
		protected.GET("/progress/me", progressHandler.MyProgress)

		// Event routes
		protected.GET("/events", eventHandler.List)
		protected.POST("/events/:id/join", eventHandler.Join)
		protected.DELETE("/events/:id/join", eventHandler.Leave)

		// Social routes
		protected.POST("/users/:id/favorite", userHandler.ToggleFavorite)
		protected.POST("/articles/:id/read", userHandler.MarkArticleRead)
		protected.GET("/achievements/me", achievementHandler.MyAchievements)

		// Profile routes
		protected.GET("/profile/:username", userHandler.GetProfileByUsername)
		protected.GET("/profile/me", userHandler.Me)
		protected.PUT("/profile", userHandler.UpdateProfile)
		protected.PUT("/profile/avatar", userHandler.UpdateAvatar)

		// Notification routes
		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "If-None-Match"},
		ExposeHeaders:    []string{"Content-Length", "ETag"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
