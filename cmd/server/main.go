package main

import (
	"context"
	"fmt"
	"log"

	"github.com/mihintamu/scholarai-server/config"
	"github.com/mihintamu/scholarai-server/internal/api"
	"github.com/mihintamu/scholarai-server/internal/api/handler"
	"github.com/mihintamu/scholarai-server/internal/database"
	"github.com/mihintamu/scholarai-server/internal/pkg/cron"
	"github.com/mihintamu/scholarai-server/internal/pkg/email"
	"github.com/mihintamu/scholarai-server/internal/pkg/llm"
	"github.com/mihintamu/scholarai-server/internal/pkg/oauth"
	"github.com/mihintamu/scholarai-server/internal/pkg/oss"
	"github.com/mihintamu/scholarai-server/internal/pkg/pubsub"
	"github.com/mihintamu/scholarai-server/internal/pkg/ws"
	"github.com/mihintamu/scholarai-server/internal/repository"
	"github.com/mihintamu/scholarai-server/internal/service"
)

func main() {
	// 加载配置
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	log.Println("Database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	log.Println("Redis connected")

	// 初始化 OSS
	ossClient, err := oss.NewClient(&cfg.OSS)
	if err != nil {
		log.Fatalf("Failed to create OSS client: %v", err)
	}

	// 初始化 WebSocket Hub
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	knowledgeRepo := repository.NewKnowledgeRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	contentRepo := repository.NewContentRepository(db)
	accessCodeRepo := repository.NewAccessCodeRepository(db)

	// 初始化基础组件
	emailService := email.NewService(&cfg.Email)
	llmClient := llm.NewClient(&cfg.LLM)
	publisher := pubsub.NewPublisher(rdb)
	stateStore := oauth.NewStateStore(rdb)

	// 初始化 Service
	authService := service.NewAuthService(userRepo, subRepo, accessCodeRepo, emailService, cfg)
	subjectService := service.NewSubjectService(subjectRepo, knowledgeRepo)
	parserService := service.NewParserService(ossClient, llmClient)
	knowledgeService := service.NewKnowledgeService(knowledgeRepo, subjectRepo, ossClient, parserService, &cfg.Upload)
	subService := service.NewSubscriptionService(subRepo, userRepo, emailService, cfg)
	generationService := service.NewGenerationService(contentRepo, knowledgeRepo, subjectService, subService, llmClient, publisher)
	contentService := service.NewContentService(contentRepo)
	analyticsService := service.NewAnalyticsService(userRepo, subRepo, contentRepo, rdb)

	// 初始化 Handler
	authHandler := handler.NewAuthHandler(authService, stateStore)
	userHandler := handler.NewUserHandler(authService, ossClient)
	subjectHandler := handler.NewSubjectHandler(subjectService)
	knowledgeHandler := handler.NewKnowledgeHandler(knowledgeService)
	contentHandler := handler.NewContentHandler(generationService, contentService)
	subscriptionHandler := handler.NewSubscriptionHandler(subService)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService)
	websocketHandler := handler.NewWebSocketHandler(wsHub, cfg.JWT.Secret)

	// 订阅生成事件，推送到用户的 WebSocket 连接
	subscriber := pubsub.NewSubscriber(rdb)
	go func() {
		err := subscriber.Subscribe(context.Background(), func(event *pubsub.GenerationEvent) {
			_ = wsHub.SendToUser(event.UserID, &ws.Message{
				Type: event.Type,
				Data: event,
			})
		})
		if err != nil {
			log.Printf("Event subscriber stopped: %v", err)
		}
	}()

	// 启动定时任务
	cronService := cron.NewService(userRepo, analyticsService)
	cronService.Start()
	defer cronService.Stop()

	// 初始化 Router
	router := api.NewRouter(
		authHandler,
		userHandler,
		subjectHandler,
		knowledgeHandler,
		contentHandler,
		subscriptionHandler,
		analyticsHandler,
		websocketHandler,
		cfg,
	)
	engine := router.Setup()

	// 启动服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
