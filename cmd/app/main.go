package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "kamba-santa-backend/docs"
	"kamba-santa-backend/internal/common/config"
	"kamba-santa-backend/internal/common/logger"
	"kamba-santa-backend/internal/common/middleware"
	chatHTTP "kamba-santa-backend/internal/features/chat/delivery/http"
	chatRedisRepo "kamba-santa-backend/internal/features/chat/repository/redis"
	chatService "kamba-santa-backend/internal/features/chat/service"
	groupHTTP "kamba-santa-backend/internal/features/group/delivery/http"
	groupWS "kamba-santa-backend/internal/features/group/delivery/ws"
	groupRedisRepo "kamba-santa-backend/internal/features/group/repository/redis"
	groupService "kamba-santa-backend/internal/features/group/service"
	matchHTTP "kamba-santa-backend/internal/features/matchmaking/delivery/http"
	matchRedisRepo "kamba-santa-backend/internal/features/matchmaking/repository/redis"
	matchService "kamba-santa-backend/internal/features/matchmaking/service"
	userHTTP "kamba-santa-backend/internal/features/user/delivery/http"
	userRedisRepo "kamba-santa-backend/internal/features/user/repository/redis"
	userService "kamba-santa-backend/internal/features/user/service"
	firebasePlatform "kamba-santa-backend/internal/platform/firebase"
	redisPlatform "kamba-santa-backend/internal/platform/redis"
	"kamba-santa-backend/internal/realtime"
)

// @title           Kamba Santa API
// @version         1.0
// @description     API server for the Kamba Santa gift exchange. All endpoints require a Firebase ID token.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Firebase ID token as "Bearer <token>"

// @tag.name users
// @tag.description User profiles and gift preferences

// @tag.name groups
// @tag.description Group lifecycle - creation, admission, settings and the draw

// @tag.name chat
// @tag.description Per-group chat feeds

// @tag.name matchmaking
// @tag.description Public queue that auto-forms groups of four

func main() {
	cfg := config.Load()

	logger.Init("kamba-santa-backend", cfg.Debug)
	logger.Info().Bool("debug", cfg.Debug).Msg("Starting Kamba Santa Backend")

	redisClient, err := redisPlatform.NewClient(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()
	logger.Info().Msg("Redis connection established")

	ctx := context.Background()
	firebaseClient, err := firebasePlatform.NewClient(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize Firebase")
	}

	hub := realtime.NewHub(redisClient)

	userRepository := userRedisRepo.NewRedisUserRepository(redisClient)
	groupRepository := groupRedisRepo.NewRedisGroupRepository(redisClient)
	chatRepository := chatRedisRepo.NewRedisMessageRepository(redisClient)
	queueRepository := matchRedisRepo.NewRedisQueueRepository(redisClient)

	userSvc := userService.NewUserService(userRepository)
	chatSvc := chatService.NewChatService(chatRepository, groupRepository, userSvc, hub)
	groupSvc := groupService.NewGroupService(groupRepository, userSvc, chatSvc, hub)
	matchSvc := matchService.NewMatchmakingService(queueRepository, groupSvc)

	logger.Info().Msg("Services initialized")

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.Origin}
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", "Accept"}
	router.Use(cors.New(corsConfig))

	v1 := router.Group("/api/v1")
	v1.Use(middleware.Authenticate(firebaseClient))
	{
		userHTTP.NewUserHandler(userSvc).RegisterRoutes(v1)
		groupHTTP.NewGroupHandler(groupSvc, userSvc).RegisterRoutes(v1)
		chatHTTP.NewChatHandler(chatSvc).RegisterRoutes(v1)
		matchHTTP.NewMatchmakingHandler(matchSvc).RegisterRoutes(v1)
		groupWS.NewGroupStreamHandler(groupSvc, hub).RegisterRoutes(v1)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   "kamba-santa-backend",
		})
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unready",
				"error":   "redis unavailable",
				"details": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "ready",
			"timestamp": time.Now().UTC(),
			"service":   "kamba-santa-backend",
		})
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited")
}
