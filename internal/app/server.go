// internal/app/server.go
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"leadflow-service/internal/config"
	"leadflow-service/internal/db"
	authHandler "leadflow-service/internal/handlers/auth"
	dashboardHandler "leadflow-service/internal/handlers/dashboard"
	leadHandler "leadflow-service/internal/handlers/lead"
	notifyH "leadflow-service/internal/handlers/notification"
	userHandler "leadflow-service/internal/handlers/user"
	wsHandler "leadflow-service/internal/handlers/ws"
	"leadflow-service/internal/middleware"
	"leadflow-service/internal/pkg/jwt"
	"leadflow-service/internal/pkg/session"
	"leadflow-service/internal/repository/postgres"
	assignmentUsecase "leadflow-service/internal/service/assignment"
	authUsecase "leadflow-service/internal/service/auth"
	dashboardUsecase "leadflow-service/internal/service/dashboard"
	leadUsecase "leadflow-service/internal/service/lead"
	notifyUsecase "leadflow-service/internal/service/notification"
	userUsecase "leadflow-service/internal/service/user"
	"leadflow-service/internal/ws"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.New()
	return &Server{cfg: cfg, engine: engine}
}

func (s *Server) Start() error {
	ctx := context.Background()

	// ----- Logger -----
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()
	s.logger = logger

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB(ctx, s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       s.cfg.RedisDB,
		PoolSize: 10,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	logger.Info("connected to Redis", zap.String("addr", s.cfg.RedisAddr))

	// ----- JWT Manager -----
	jwtManager, err := jwt.NewManager(s.cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to build JWT manager: %w", err)
	}

	// ----- Session Manager & Rate Limiter -----
	sessionManager := session.NewManager(redisClient)
	rateLimiter := session.NewRateLimiter(redisClient, s.cfg.LoginMaxAttempts, s.cfg.LoginWindow)

	// ----- Repositories -----
	userRepo := postgres.NewUserRepository(pool)
	leadRepo := postgres.NewLeadRepository(pool)
	historyRepo := postgres.NewAssignmentHistoryRepository(pool)
	noteRepo := postgres.NewNoteRepository(pool)
	notifyRepo := postgres.NewNotificationRepository(pool)

	// ----- WebSocket Hub -----
	hub := ws.NewHub(logger)
	go hub.Run(ctx)

	// ----- Services (Usecases) -----
	authService := authUsecase.NewAuthService(userRepo, jwtManager, sessionManager, rateLimiter, logger)
	notifService := notifyUsecase.NewService(notifyRepo, hub, logger)
	assignService := assignmentUsecase.NewService(userRepo, leadRepo, historyRepo, notifService, logger)
	leadService := leadUsecase.NewService(leadRepo, noteRepo, assignService, logger)
	userService := userUsecase.NewService(userRepo, logger)
	dashboardService := dashboardUsecase.NewService(leadRepo, userRepo, historyRepo, logger)

	// ----- Seed Users -----
	if err := s.seedUsers(authService, userRepo); err != nil {
		logger.Error("failed to seed users", zap.Error(err))
		// Startup continues, operators can create users manually
	}

	// ----- Handlers -----
	authHandlerInst := authHandler.NewAuthHandler(authService, logger)
	userHandlerInst := userHandler.NewUserHandler(userService, logger)
	leadHandlerInst := leadHandler.NewLeadHandler(leadService, assignService, logger)
	notifHandlerInst := notifyH.NewNotificationHandler(notifService, logger)
	dashboardHandlerInst := dashboardHandler.NewDashboardHandler(dashboardService, logger)
	wsHandlerInst := wsHandler.NewWebSocketHandler(hub, logger)

	// ----- Middlewares -----
	authMiddleware := middleware.NewAuthMiddleware(authService)

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(),
	)

	// ----- Router -----
	handlers := &Handlers{
		AuthHandler:      authHandlerInst,
		UserHandler:      userHandlerInst,
		LeadHandler:      leadHandlerInst,
		NotifHandler:     notifHandlerInst,
		DashboardHandler: dashboardHandlerInst,
		WSHandler:        wsHandlerInst,
		AuthMiddleware:   authMiddleware,
	}
	SetupRouter(s.engine, handlers)

	// ----- Start HTTP -----
	log.Printf("server running on %s", s.cfg.HTTPAddr)
	return s.engine.Run(s.cfg.HTTPAddr)
}

func (s *Server) seedUsers(authService *authUsecase.AuthService, store authUsecase.SeedStore) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return authService.EnsureSeedUsers(ctx, store, authUsecase.SeedConfig{
		AdminUsername: s.cfg.SeedAdminUsername,
		AdminPassword: s.cfg.SeedAdminPassword,
		AdminName:     s.cfg.SeedAdminName,
		AdminEmail:    s.cfg.SeedAdminEmail,
	})
}
