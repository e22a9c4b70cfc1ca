package bootstrap

import (
	"context"
	"log"

	"docchat-be/internal/config"
	"docchat-be/internal/controller"
	"docchat-be/internal/handler"
	"docchat-be/internal/pkg/logger"
	"docchat-be/internal/repository/memory"
	"docchat-be/internal/repository/unitofwork"
	"docchat-be/internal/service"
	"docchat-be/internal/websocket"
	"docchat-be/pkg/embedding"
	"docchat-be/pkg/llm/factory"
	"docchat-be/pkg/retrieval"

	pktNats "docchat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController controller.IChatController

	// Background Services (Exposed for main.go to run)
	TitleConsumerService service.ITitleConsumerService
	TurnEventService     service.ITurnEventService

	// WebSockets
	StreamHandler *handler.StreamHandler
	WebSocketHub  *websocket.Hub

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	var retriever retrieval.Retriever
	if !cfg.Ai.RetrievalDisabled {
		embeddingProvider := embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.EmbeddingModel)
		retriever = retrieval.NewPgVectorRetriever(db, embeddingProvider)
		log.Printf("[INFO] Document retrieval enabled (%s)", cfg.Ai.EmbeddingModel)
	}

	// In-memory draft staging
	draftRepo := memory.NewDraftRepository()

	// 4. Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
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

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/stream.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 5. Services
	publisherService := service.NewPublisherService(cfg.Topics.TurnCompleted, pubSub)
	titleConsumer := service.NewTitleConsumerService(
		pubSub,
		cfg.Topics.TurnCompleted,
		uowFactory,
		llmProvider,
	)

	chatService := service.NewChatService(
		uowFactory,
		llmProvider,
		retriever,
		draftRepo,
		wsHub,
		publisherService,
		natsPub,
		sysLogger,
	)

	var turnEvents service.ITurnEventService
	if natsSub != nil {
		turnEvents = service.NewTurnEventService(natsSub, sysLogger)
	}

	streamHandler := handler.NewStreamHandler(wsHub, wsLogger)

	return &Container{
		ChatController:       controller.NewChatController(chatService),
		TitleConsumerService: titleConsumer,
		TurnEventService:     turnEvents,
		StreamHandler:        streamHandler,
		WebSocketHub:         wsHub,
		Logger:               sysLogger,
	}
}
