package api

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/skingway/HeadshotAirBattle-sub001/internal/api/handlers"
	"github.com/skingway/HeadshotAirBattle-sub001/internal/api/middleware"
	"github.com/skingway/HeadshotAirBattle-sub001/internal/config"
	"github.com/skingway/HeadshotAirBattle-sub001/internal/repository"
	"github.com/skingway/HeadshotAirBattle-sub001/internal/service"
	"github.com/skingway/HeadshotAirBattle-sub001/internal/websocket"
	"github.com/skingway/HeadshotAirBattle-sub001/pkg/database"
	"github.com/skingway/HeadshotAirBattle-sub001/pkg/logger"
	"github.com/skingway/HeadshotAirBattle-sub001/pkg/ratelimit"
	"github.com/skingway/HeadshotAirBattle-sub001/pkg/realtime"
)

// SetupRouter API 라우터 설정
//
// 반환된 cleanup 서비스는 호출 측에서 종료 시 Stop해야 한다.
func SetupRouter(cfg *config.Config, db *database.DB, redisClient *redis.Client) (*gin.Engine, *service.CleanupService) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 전역 미들웨어
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	// 실시간 스토어 + 프레즌스
	store := realtime.NewStore(redisClient, cfg.OpTimeout, logger.Named("store"))
	presence := realtime.NewPresenceTracker(logger.Named("presence"))

	// Rate Limiter (Redis 클라이언트 공유)
	limiter := ratelimit.NewRedisRateLimiter(store.Client(), "ratelimit:")

	// Repository 초기화
	userRepo := repository.NewUserRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	// WebSocket Hub 초기화 및 시작
	wsHub := websocket.NewHub(logger.Named("ws"))

	// Service 초기화
	userService := service.NewUserService(userRepo)
	statsService := service.NewStatsService(statsRepo, logger.Named("stats"))
	sessionService := service.NewSessionService(store, presence, statsService, wsHub, logger.Named("session"))
	matchmakingService := service.NewMatchmakingService(
		store,
		sessionService,
		wsHub,
		cfg.QueueTimeout,
		cfg.ProbeInterval,
		cfg.MatchClaimCAS,
		logger.Named("matchmaking"),
	)
	roomService := service.NewRoomService(store, sessionService, presence, cfg.RoomCodeTTL, logger.Named("room"))

	// 연결 수명 훅: 연결 = 생존 신호
	wsHub.OnConnect(sessionService.HandleConnect)
	wsHub.OnDisconnect(presence.Fire)
	go wsHub.Run()

	// 청소 스위퍼
	cleanupService := service.NewCleanupService(
		sessionService,
		matchmakingService,
		cfg.CleanupInterval,
		cfg.AbandonAfter,
		logger.Named("cleanup"),
	)
	if err := cleanupService.Start(); err != nil {
		logger.Error("Failed to start cleanup sweeper", "error", err)
	}

	// Handler 초기화
	authHandler := handlers.NewAuthHandler(userService, cfg)
	gameHandler := handlers.NewGameHandler(sessionService)
	matchmakingHandler := handlers.NewMatchmakingHandler(matchmakingService)
	roomHandler := handlers.NewRoomHandler(roomService)
	leaderboardHandler := handlers.NewLeaderboardHandler(statsService)
	wsHandler := handlers.NewWebSocketHandler(wsHub, logger.Named("ws"))

	// Health check
	router.GET("/health", handlers.HealthCheck)

	// API v1
	v1 := router.Group("/api/v1")
	{
		// WebSocket endpoint
		v1.GET("/ws", middleware.Auth(cfg), wsHandler.HandleWebSocket)

		// Auth routes
		auth := v1.Group("/auth")
		auth.Use(middleware.RedisAuthRateLimit(limiter))
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/register", authHandler.Register)
			auth.POST("/guest", authHandler.Guest)
		}

		// Game routes
		games := v1.Group("/games")
		games.Use(middleware.Auth(cfg))
		{
			games.POST("", middleware.RedisGameCreationRateLimit(limiter), gameHandler.CreateGame)
			games.POST("/join", gameHandler.JoinGame)
			games.GET("/current", gameHandler.GetCurrentGame)
			games.POST("/ready", gameHandler.SetReady)
			games.POST("/board", gameHandler.SubmitBoard)
			games.POST("/attack", middleware.RedisAttackRateLimit(limiter), gameHandler.Attack)
			games.POST("/end", gameHandler.EndGame)
			games.POST("/leave", gameHandler.LeaveGame)
		}

		// Matchmaking routes
		queue := v1.Group("/matchmaking")
		queue.Use(middleware.Auth(cfg), middleware.RedisQueueRateLimit(limiter))
		{
			queue.POST("/join", matchmakingHandler.JoinQueue)
			queue.POST("/leave", matchmakingHandler.LeaveQueue)
			queue.GET("/status", matchmakingHandler.Status)
		}

		// Room routes
		rooms := v1.Group("/rooms")
		rooms.Use(middleware.Auth(cfg))
		{
			rooms.POST("", middleware.RedisGameCreationRateLimit(limiter), roomHandler.CreateRoom)
			rooms.POST("/join", roomHandler.JoinRoom)
			rooms.GET("/validate/:code", roomHandler.ValidateCode)
			rooms.DELETE("/:code", roomHandler.DeleteRoom)
		}

		// Leaderboard routes
		leaderboard := v1.Group("/leaderboard")
		{
			leaderboard.GET("", leaderboardHandler.GetLeaderboard)
			leaderboard.GET("/me", middleware.Auth(cfg), leaderboardHandler.GetMyStats)
			leaderboard.GET("/me/games", middleware.Auth(cfg), leaderboardHandler.GetMyRecentGames)
		}
	}

	return router, cleanupService
}
