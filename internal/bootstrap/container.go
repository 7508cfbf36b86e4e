package bootstrap

import (
	"log"
	"os"

	"contextllm-be/internal/config"
	"contextllm-be/internal/controller"
	"contextllm-be/internal/pkg/logger"
	"contextllm-be/internal/pkg/mailer"
	"contextllm-be/internal/repository/memory"
	"contextllm-be/internal/service"
	"contextllm-be/pkg/agent"
	"contextllm-be/pkg/calendar"
	"contextllm-be/pkg/embedding"
	"contextllm-be/pkg/llm"
	"contextllm-be/pkg/llm/factory"
	"contextllm-be/pkg/routing"
	"contextllm-be/pkg/vectorstore"

	pktNats "contextllm-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController controller.IChatController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	routerLogger := log.New(os.Stdout, "", log.LstdFlags)

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

	// 3. Embedding Provider
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.Gemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	// 4. Similarity Index + Ingestion Pipeline
	index := vectorstore.NewPgVectorStore(db, embeddingProvider)
	publisherService := service.NewPublisherService(cfg.App.IngestTopic, pubSub)
	consumerService := service.NewConsumerService(pubSub, cfg.App.IngestTopic, index)

	// 5. Completion Providers
	creds := factory.Credentials{
		APIKeys: map[string]string{
			"gpt":    cfg.Keys.OpenAI,
			"gemini": cfg.Keys.Gemini,
			"claude": cfg.Keys.Anthropic,
			"groq":   cfg.Keys.Groq,
		},
		Models: map[string]string{
			"agent": cfg.Keys.AgentModel,
		},
	}

	providers := make(map[routing.Family]llm.Provider)
	for _, family := range routing.KnownFamilies {
		provider, err := factory.NewProvider(string(family), creds)
		if err != nil {
			log.Printf("[WARN] Backend %s unavailable: %v", family, err)
			continue
		}
		providers[family] = provider
	}
	if _, ok := providers[routing.DefaultFamily]; !ok {
		log.Fatalf("[FATAL] Default backend %s is required: set OPENAI_API_KEY", routing.DefaultFamily)
	}

	toolProvider, err := factory.NewToolProvider(creds)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize agent provider: %v", err)
	}

	// 6. Catalog + Classifier
	catalog := routing.LoadCatalog(cfg.App.CatalogPath, routerLogger)
	var classifier routing.Classifier
	if cfg.Ai.ClassifierMode == "embedding" {
		classifier = routing.NewEmbeddingClassifier(catalog, embeddingProvider, routerLogger)
		log.Printf("[INFO] Using Classifier: EMBEDDING (%d categories)", catalog.Len())
	} else {
		classifier = routing.NewCompletionClassifier(providers[routing.DefaultFamily], catalog, routerLogger)
		log.Printf("[INFO] Using Classifier: COMPLETION (%d categories)", catalog.Len())
	}

	// 7. Side-Effect Executors
	var scheduler agent.SchedulingExecutor
	scheduler, err = calendar.NewScheduler(
		cfg.Google.ClientID,
		cfg.Google.ClientSecret,
		cfg.Google.RefreshToken,
	)
	if err != nil {
		log.Printf("[WARN] Calendar executor unavailable: %v", err)
		scheduler = unconfiguredScheduler{}
	}

	// 8. Event Bus (NATS)
	var eventPublisher agent.EventPublisher
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		eventPublisher = natsPub
	}

	// 9. Services
	routerRepo := memory.NewRouterRepository()
	chatService := service.NewChatService(
		routerRepo,
		classifier,
		providers,
		toolProvider,
		cfg.Keys.AgentModel,
		index,
		publisherService,
		scheduler,
		emailService,
		eventPublisher,
		sysLogger,
		routerLogger,
	)

	// 10. Controllers
	return &Container{
		ChatController:  controller.NewChatController(chatService),
		ConsumerService: consumerService,
	}
}
