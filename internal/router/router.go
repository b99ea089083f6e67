package router

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"github.com/yopdevs/platform/backend/internal/events"
	"github.com/yopdevs/platform/backend/internal/handlers"
	"github.com/yopdevs/platform/backend/internal/metrics"
	"github.com/yopdevs/platform/backend/internal/middleware"
	"github.com/yopdevs/platform/backend/internal/models"
	"github.com/yopdevs/platform/backend/internal/realtime"
	"github.com/yopdevs/platform/backend/internal/repositories"
	"github.com/yopdevs/platform/backend/internal/services"
	"github.com/yopdevs/platform/backend/internal/storage"
	"github.com/yopdevs/platform/backend/pkg/config"
	"github.com/yopdevs/platform/backend/pkg/email"
	"github.com/yopdevs/platform/backend/pkg/firebase"
	"github.com/yopdevs/platform/backend/pkg/logger"
)

// Dependencies are the connections and settings the routes are built from.
type Dependencies struct {
	Config   *config.Config
	Postgres *gorm.DB
	Mongo    *mongo.Client
	Redis    *redis.Client
	Firebase *firebase.App
	Metrics  *metrics.Metrics
}

// App exposes the services background jobs need.
type App struct {
	Notifications *services.NotificationService
	Hub           *realtime.Hub
}

// SetupRoutes migrates the schema, wires repositories, services and handlers,
// and registers every route on e.
func SetupRoutes(e *echo.Echo, deps Dependencies) (*App, error) {
	cfg := deps.Config

	err := deps.Postgres.AutoMigrate(
		&models.Profile{},
		&models.FriendRequest{},
		&models.Message{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.CommentLike{},
		&models.Project{},
		&models.ProjectInterest{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to auto migrate models: %w", err)
	}
	logger.Log.Info("PostgreSQL auto-migrations completed for all models.")

	// Health check and metrics - always accessible
	e.GET("/health", handlers.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// --- Initialize Repositories ---
	profileRepo := repositories.NewPostgresProfileRepository(deps.Postgres)
	friendshipRepo := repositories.NewPostgresFriendshipRepository(deps.Postgres)
	messageRepo := repositories.NewPostgresMessageRepository(deps.Postgres)
	postRepo := repositories.NewPostgresPostRepository(deps.Postgres)
	commentRepo := repositories.NewPostgresCommentRepository(deps.Postgres)
	likeRepo := repositories.NewPostgresLikeRepository(deps.Postgres)
	commentLikeRepo := repositories.NewPostgresCommentLikeRepository(deps.Postgres)
	projectRepo := repositories.NewPostgresProjectRepository(deps.Postgres)
	interestRepo := repositories.NewPostgresInterestRepository(deps.Postgres)
	quotaRepo := repositories.NewPostgresQuotaRepository(deps.Postgres)

	notificationRepo := repositories.NewMongoNotificationRepository(deps.Mongo.Database(cfg.MongoDatabase))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := notificationRepo.EnsureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to create notification indexes: %w", err)
	}

	var identityCache repositories.IdentityCache
	if deps.Redis != nil {
		identityCache = repositories.NewRedisIdentityCache(deps.Redis, cfg.IdentityCacheTTL)
		logger.Log.Info("Identity cache enabled on Redis.")
	}

	// --- Realtime ---
	hub := realtime.NewHub(32, deps.Metrics)
	bus := events.NewBus[events.NotificationsChanged]()
	bus.Subscribe(func(ev events.NotificationsChanged) {
		hub.Publish(realtime.NotificationTopic(ev.UserID), uuid.NewString(), ev)
	})

	// --- Initialize Services ---
	identities := services.NewIdentityResolver(profileRepo, identityCache)
	notifications := services.NewNotificationService(notificationRepo, friendshipRepo, identities, bus, deps.Metrics)
	limiter := services.NewRateLimiter(quotaRepo, cfg.Location, deps.Metrics)
	relationships := services.NewRelationshipService(friendshipRepo, identities, notifications)
	messaging := services.NewMessagingService(messageRepo, relationships, identities, notifications, hub, deps.Metrics)
	engagement := services.NewEngagementService(postRepo, commentRepo, likeRepo, commentLikeRepo, identities, notifications, deps.Metrics)
	forum := services.NewForumService(postRepo, commentRepo, profileRepo, engagement, limiter, identities, notifications, cfg.PostsPerDay)
	projects := services.NewProjectService(projectRepo, interestRepo, profileRepo, limiter, identities, notifications, cfg.ProjectsPerDay)
	admin := services.NewAdminService(profileRepo, identities, notifications)
	portfolios := services.NewPortfolioService(profileRepo, projectRepo)

	var avatars services.AvatarUploader
	if deps.Firebase != nil && deps.Firebase.Bucket != nil {
		avatars = storage.NewAvatarStore(storage.NewBucketSink(deps.Firebase.Bucket), deps.Firebase.BucketName)
	} else {
		logger.Log.Warn("FIREBASE_STORAGE_BUCKET not set, avatar uploads disabled")
	}
	profiles := services.NewProfileService(profileRepo, identities, avatars)

	var contact handlers.ContactForm
	if cfg.SMTP.Host != "" && cfg.SMTP.ContactInbox != "" {
		mailer := email.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.Sender)
		contact = services.NewContactService(mailer, cfg.SMTP.ContactInbox)
	} else {
		logger.Log.Warn("SMTP not configured, contact form disabled")
	}

	sessions := middleware.NewSessionIssuer(cfg.JWTSecret, cfg.SessionTTL)
	var verifier middleware.TokenVerifier
	if deps.Firebase != nil && deps.Firebase.AuthClient != nil {
		verifier = deps.Firebase.AuthClient
	}
	secureCookie := cfg.Env == "production"

	// --- Public routes ---
	public := e.Group("/api")
	handlers.NewPublicHandler(portfolios, contact).RegisterPublicRoutes(public)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	handlers.NewAuthHandler(profiles, verifier, sessions, secureCookie).RegisterAuthRoutes(authGroup)
	logger.Log.Info("Auth routes configured.")

	// --- Protected routes (require a session or Firebase ID token) ---
	api := e.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(sessions, verifier))

	handlers.NewProfileHandler(profiles).RegisterProfileRoutes(api)
	handlers.NewFriendshipHandler(relationships).RegisterFriendshipRoutes(api)
	handlers.NewMessageHandler(messaging).RegisterMessageRoutes(api)
	handlers.NewNotificationHandler(notifications).RegisterNotificationRoutes(api)
	handlers.NewPostHandler(forum).RegisterPostRoutes(api)
	handlers.NewCommentHandler(forum).RegisterCommentRoutes(api)
	handlers.NewLikeHandler(engagement).RegisterLikeRoutes(api)
	handlers.NewProjectHandler(projects).RegisterProjectRoutes(api)
	handlers.NewQuotaHandler(forum, projects).RegisterQuotaRoutes(api)
	handlers.NewWSHandler(hub, notifications, cfg.CORSOrigins).RegisterWSRoutes(api)

	// --- Staff routes ---
	adminGroup := api.Group("/admin", middleware.RequireStaff(profiles))
	handlers.NewAdminHandler(admin, forum).RegisterAdminRoutes(adminGroup)

	logger.Log.Info("All routes configured.")
	return &App{Notifications: notifications, Hub: hub}, nil
}
