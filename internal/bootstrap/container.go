package bootstrap

import (
	"context"
	"log"

	"ai-consultancy-be/internal/config"
	"ai-consultancy-be/internal/controller"
	"ai-consultancy-be/internal/handler"
	"ai-consultancy-be/internal/pkg/logger"
	"ai-consultancy-be/internal/repository/unitofwork"
	"ai-consultancy-be/internal/service"
	"ai-consultancy-be/internal/websocket"
	"ai-consultancy-be/pkg/llm/factory"
	"ai-consultancy-be/pkg/workflow"

	pktNats "ai-consultancy-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController    controller.IAuthController
	ConsultController controller.IConsultController

	// Background services (exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Change feed infrastructure
	FeedHandler  *handler.FeedHandler
	WebSocketHub *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. LLM provider
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.GoogleGemini,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Infrastructure
	// NATS mirror of the change feed. The app runs without it.
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	}

	// Redis relay for multi-instance fan-out.
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket hub
	feedLogger := logger.NewIsolatedLogger("logs/feed.log")
	wsHub := websocket.NewHub(rdb, feedLogger)
	go wsHub.Run()

	// 5. Services
	publisherService := service.NewPublisherService(cfg.App.SessionTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.SessionTopic,
		uowFactory,
		wsHub,
		natsPub,
		feedLogger,
	)

	runner := workflow.NewRunner(llmProvider, sysLogger)

	authService := service.NewAuthService()
	consultService := service.NewConsultService(uowFactory, runner, publisherService, sysLogger)

	// 6. Handlers & controllers
	feedHandler := handler.NewFeedHandler(consultService, wsHub, feedLogger)

	return &Container{
		AuthController:    controller.NewAuthController(authService),
		ConsultController: controller.NewConsultController(consultService),

		ConsumerService: consumerService,

		FeedHandler:  feedHandler,
		WebSocketHub: wsHub,
	}
}
