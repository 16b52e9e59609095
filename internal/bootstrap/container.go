package bootstrap

import (
	"time"

	"presto-copilot-be/internal/config"
	"presto-copilot-be/internal/controller"
	"presto-copilot-be/internal/pkg/logger"
	"presto-copilot-be/internal/repository/memory"
	"presto-copilot-be/internal/service"
	"presto-copilot-be/pkg/admin/usage"
	"presto-copilot-be/pkg/events"
	"presto-copilot-be/pkg/genai"
	"presto-copilot-be/pkg/rag/executor"
	"presto-copilot-be/pkg/rag/throttle"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type Container struct {
	// Controllers
	ChatbotController controller.IChatbotController
	CatalogController controller.ICatalogController
	AdminController   controller.IAdminController
	HealthController  controller.IHealthController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	usageLogger := logger.NewIsolatedLogger(cfg.App.UsageLogFilePath)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Domain Components
	genaiClient := genai.NewClient(cfg.Keys.GoogleAPIKey)
	sessionRepo := memory.NewSessionRepository(cfg.Chat.SessionTTL, 10*time.Minute)
	queryExecutor := executor.NewQueryExecutor(genaiClient, cfg.Chat.MaxAttempts, cfg.Chat.RetryDelay)
	requestGuard := throttle.NewGuard(cfg.Chat.MinRequestInterval)
	usageTracker := usage.NewTracker(usageLogger)

	// 4. Services
	publisherService := service.NewPublisherService(events.TypeQueryCompleted, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		events.TypeQueryCompleted,
		usageTracker,
		usageLogger,
	)

	storeService := service.NewStoreService(genaiClient, &cfg.Chat, sysLogger)
	chatbotService := service.NewChatbotService(
		&cfg.Chat,
		storeService,
		sessionRepo,
		queryExecutor,
		requestGuard,
		publisherService,
		sysLogger,
	)

	// 5. Controllers
	return &Container{
		ChatbotController: controller.NewChatbotController(chatbotService),
		CatalogController: controller.NewCatalogController(storeService),
		AdminController:   controller.NewAdminController(usageTracker, sysLogger),
		HealthController:  controller.NewHealthController(),

		ConsumerService: consumerService,
	}
}
