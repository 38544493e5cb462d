package http

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"docuchat/internal/ai"
	"docuchat/internal/app"
	"docuchat/internal/bootstrap"
	"docuchat/internal/cache"
	"docuchat/internal/platform/rabbitmq"
	"docuchat/internal/repository"
	"docuchat/internal/transport/http/handler"
	"docuchat/internal/transport/http/middleware"
)

// NewRouter wires repositories, services and handlers onto a gin engine.
func NewRouter(a *bootstrap.App) *gin.Engine {
	cfg := a.Config

	gin.SetMode(cfg.App.GinMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), middleware.RequestID())

	userRepo := repository.NewUserRepository(a.MySQL)
	sessionRepo := repository.NewSessionRepository(a.MySQL)
	messageRepo := repository.NewMessageRepository(a.MySQL)
	docRepo := repository.NewDocumentRepository(a.MySQL)

	historyCache := cache.NewHistoryCache(
		a.Redis,
		time.Duration(cfg.Redis.HistoryTTLSeconds)*time.Second,
		time.Duration(cfg.Redis.HistoryDirtyTTLSeconds)*time.Second,
	)
	turnPublisher := rabbitmq.NewTurnPublisher(a.MQConn, cfg.RabbitMQ.MessagePersistQueue)
	llmClient := ai.NewOpenAICompatibleClient()

	defaultLLM := ai.ChatConfig{
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
	}
	if !cfg.ChatEnabled() {
		log.Println("LLM API key not configured, chat endpoints will return service unavailable")
	}

	authService := app.NewAuthService(
		userRepo,
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.JWTExpireMinute)*time.Minute,
	)
	chatService := app.NewChatService(
		sessionRepo,
		messageRepo,
		docRepo,
		turnPublisher,
		historyCache,
		llmClient,
		defaultLLM,
	)
	docService := app.NewDocumentService(sessionRepo, messageRepo, docRepo, historyCache)
	quizService := app.NewQuizService(
		sessionRepo,
		docRepo,
		turnPublisher,
		historyCache,
		llmClient,
		defaultLLM,
	)

	healthHandler := handler.NewHealthHandler(a)
	authHandler := handler.NewAuthHandler(authService)
	chatHandler := handler.NewChatHandler(chatService)
	docHandler := handler.NewDocumentHandler(docService, cfg.MaxUploadBytes())
	quizHandler := handler.NewQuizHandler(quizService)

	r.GET("/healthz", healthHandler.Check)

	v1 := r.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.GET("/me", middleware.AuthJWT(cfg.Auth.JWTSecret), authHandler.Me)
	}

	chat := v1.Group("/chat", middleware.AuthJWT(cfg.Auth.JWTSecret))
	{
		chat.POST("/sessions", chatHandler.CreateSession)
		chat.GET("/sessions", chatHandler.ListSessions)
		chat.DELETE("/sessions/:id", chatHandler.DeleteSession)
		chat.POST("/messages", chatHandler.Ask)
		chat.POST("/messages/stream", chatHandler.StreamAsk)
		chat.GET("/history", chatHandler.History)
		chat.POST("/reset", chatHandler.ResetConversation)
		chat.POST("/quiz", quizHandler.Generate)
	}

	documents := v1.Group("/documents", middleware.AuthJWT(cfg.Auth.JWTSecret))
	{
		documents.POST("", docHandler.Upload)
		documents.GET("/current", docHandler.Current)
		documents.DELETE("/current", docHandler.Clear)
	}

	return r
}
