package bootstrap

import (
	"context"
	"log"

	"ideaforge-be/internal/config"
	"ideaforge-be/internal/controller"
	"ideaforge-be/internal/handler"
	"ideaforge-be/internal/pkg/logger"
	"ideaforge-be/internal/pkg/mailer"
	"ideaforge-be/internal/repository/memory"
	"ideaforge-be/internal/repository/unitofwork"
	"ideaforge-be/internal/service"
	"ideaforge-be/internal/websocket"
	"ideaforge-be/pkg/llm/factory"

	pktNats "ideaforge-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	SessionController    controller.ISessionController
	GenerationController controller.IGenerationController
	ChatController       controller.IChatController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets & Progress
	ProgressHandler *handler.ProgressHandler
	WebSocketHub    *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Providers
	defaultModel := ""
	if len(cfg.Ai.Models) > 0 {
		defaultModel = cfg.Ai.Models[0]
	}
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		defaultModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.GoogleGemini,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (models: %v)", cfg.Ai.LLMProvider, cfg.Ai.Models)

	// In-memory conversation storage for the chat context window
	conversationRepo := memory.NewConversationRepository()

	// 3.5 Infrastructure
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
	wsLogger := logger.NewIsolatedLogger("logs/progress.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 4. Services
	publisherService := service.NewPublisherService(cfg.Keys.AttemptTopic, pubSub)
	consumerService := service.NewConsumerService(pubSub, cfg.Keys.AttemptTopic)
	attemptRecorder := service.NewAttemptRecorder(publisherService)

	sessionService := service.NewSessionService(uowFactory, natsPub)
	generationService := service.NewGenerationService(
		uowFactory,
		llmProvider,
		cfg.Ai.Models,
		attemptRecorder,
		natsPub,
		rdb,
		consumerService,
	)
	chatService := service.NewChatService(
		uowFactory,
		llmProvider,
		cfg.Ai.Models,
		attemptRecorder,
		conversationRepo,
	)

	// Progress fan-out worker
	notifService := service.NewNotificationService(natsSub, wsHub, emailService, sysLogger)
	if natsSub != nil {
		go notifService.Start()
	}

	progressHandler := handler.NewProgressHandler(wsHub, wsLogger)

	return &Container{
		SessionController:    controller.NewSessionController(sessionService),
		GenerationController: controller.NewGenerationController(generationService),
		ChatController:       controller.NewChatController(chatService),

		ConsumerService: consumerService,

		ProgressHandler: progressHandler,
		WebSocketHub:    wsHub,
	}
}
