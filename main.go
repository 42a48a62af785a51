package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/sidelinehq/coach-backend/internal/chatlog"
	"github.com/sidelinehq/coach-backend/internal/config"
	"github.com/sidelinehq/coach-backend/internal/handlers"
	"github.com/sidelinehq/coach-backend/internal/limits"
	"github.com/sidelinehq/coach-backend/internal/logger"
	"github.com/sidelinehq/coach-backend/internal/middleware"
	"github.com/sidelinehq/coach-backend/internal/providers"
	"github.com/sidelinehq/coach-backend/internal/quota"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or defaults")
	}

	envCfg := config.NewEnvConfig()

	// Logging must come up before anything else writes through log.
	logCfg := &logger.Config{
		LogDir:     envCfg.LogDir,
		LogFile:    envCfg.LogFile,
		MaxSize:    envCfg.LogMaxSize,
		MaxBackups: envCfg.LogMaxBackups,
		MaxAge:     envCfg.LogMaxAge,
		Compress:   envCfg.LogCompress,
		Console:    envCfg.LogToConsole,
	}
	if err := logger.Setup(logCfg); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}

	if envCfg.ProviderAPIKey == "" {
		log.Println("⚠️ PROVIDER_API_KEY is not set; chat requests will fail upstream")
	}

	quotaSvc := quota.NewService(quota.Limits{
		Daily:        envCfg.DailyLimit,
		Conversation: envCfg.ConversationLimit,
	})

	// The limits file can be edited (or PUT via /api/limits) while the
	// server runs; changes apply to the next request, counts are kept.
	limitsManager, err := limits.NewManager(".config/limits.json", limits.Config{
		DailyLimit:        envCfg.DailyLimit,
		ConversationLimit: envCfg.ConversationLimit,
	})
	if err != nil {
		log.Fatalf("Failed to initialize limits manager: %v", err)
	}
	defer limitsManager.Close()

	applyLimits := func(cfg limits.Config) {
		quotaSvc.UpdateLimits(quota.Limits{
			Daily:        cfg.DailyLimit,
			Conversation: cfg.ConversationLimit,
		})
	}
	applyLimits(limitsManager.GetConfig())
	limitsManager.SetOnChangeCallback(applyLimits)
	log.Printf("✅ Quota service initialized (daily: %d, per conversation: %d)",
		limitsManager.GetConfig().DailyLimit, limitsManager.GetConfig().ConversationLimit)

	chatLogManager, err := chatlog.NewManager(envCfg.ChatLogDB)
	if err != nil {
		log.Printf("⚠️ Chat log initialization failed: %v (logging disabled)", err)
		chatLogManager = nil
	} else {
		log.Printf("✅ Chat log initialized")
		stop := make(chan struct{})
		defer close(stop)
		go chatLogManager.StartCleanupLoop(envCfg.ChatLogRetained, stop)
	}

	client := providers.NewClient(envCfg)

	// No gin.Default(): the request logger is too noisy, keep Recovery only.
	r := gin.New()
	r.Use(gin.Recovery())

	// Client identity comes from the connecting IP, so proxy trust matters.
	if len(envCfg.TrustedProxies) > 0 {
		if err := r.SetTrustedProxies(envCfg.TrustedProxies); err != nil {
			log.Printf("⚠️ Failed to set trusted proxies: %v", err)
		} else {
			log.Printf("✅ Trusted proxies configured: %v", envCfg.TrustedProxies)
		}
	} else if envCfg.IsProduction() {
		if err := r.SetTrustedProxies(nil); err != nil {
			log.Printf("⚠️ Failed to disable proxy trust: %v", err)
		}
	}

	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.CORSMiddleware(envCfg))
	r.Use(middleware.IdentityMiddleware())

	r.GET("/health", handlers.HealthCheck())

	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/chat", handlers.ChatHandler(quotaSvc, client, chatLogManager))
		apiGroup.GET("/usage", handlers.UsageHandler(quotaSvc))
		apiGroup.POST("/upload", handlers.UploadHandler(envCfg))

		apiGroup.GET("/limits", handlers.GetLimitsConfig(limitsManager))
		apiGroup.PUT("/limits", handlers.UpdateLimitsConfig(limitsManager))

		if chatLogManager != nil {
			chatLogHandler := handlers.NewChatLogHandler(chatLogManager)
			apiGroup.GET("/logs", chatLogHandler.GetLogs)
		}
	}

	addr := fmt.Sprintf(":%d", envCfg.Port)
	fmt.Printf("\n🚀 Sideline coach backend started\n")
	fmt.Printf("🌐 API: http://localhost:%d/api\n", envCfg.Port)
	fmt.Printf("📋 Chat: POST /api/chat\n")
	fmt.Printf("📊 Usage: GET /api/usage\n")
	fmt.Printf("💚 Health: GET /health\n")
	fmt.Printf("📊 Environment: %s\n", envCfg.Env)
	fmt.Printf("\n")

	if err := r.Run(addr); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
