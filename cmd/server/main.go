package main

import (
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"tripagent/internal/app"
	"tripagent/internal/config"
	"tripagent/internal/server"
	"tripagent/internal/util"
	"tripagent/pkg/ai"
	"tripagent/pkg/mail"
	"tripagent/pkg/planner"
	"tripagent/pkg/store"
	"tripagent/pkg/travel/flights"
	"tripagent/pkg/travel/hotels"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := util.InitLogger(cfg.LogLevel)

	st, err := store.NewGormStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}

	// Redis backs the token revoker, refresh index, search cache, and rate
	// limiters when configured; otherwise everything runs in-process.
	var redisClient *redis.Client
	var revoker store.TokenRevoker
	var refreshIndex store.RefreshIndex
	var cache store.SearchCache
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		revoker = store.NewRedisTokenRevoker(cfg.RedisAddr, cfg.RedisPassword)
		refreshIndex = store.NewRedisRefreshIndex(cfg.RedisAddr, cfg.RedisPassword)
		cache = store.NewRedisSearchCache(cfg.RedisAddr, cfg.RedisPassword,
			time.Duration(cfg.SearchResultTTLSeconds)*time.Second)
	} else {
		revoker = store.NewMemoryTokenRevoker()
		refreshIndex = store.NewMemoryRefreshIndex()
		cache = store.NewMemorySearchCache()
	}
	sessions := store.NewJWTSessionStore(cfg.SecretKey, revoker)

	flightClient := flights.NewClient(cfg.AmadeusBaseURL, cfg.AmadeusAPIKey, cfg.AmadeusAPISecret)
	hotelClient := hotels.NewClient("", cfg.RapidAPIKey, cfg.RapidAPIHost)

	var generator ai.TextGenerator
	if cfg.AnthropicAPIKey != "" {
		generator = ai.NewAnthropicGenerator("", cfg.AnthropicAPIKey, "")
	}

	var mailer app.RecommendationMailer
	if cfg.MailjetAPIKey != "" {
		mailer = mail.NewSender("", cfg.MailjetAPIKey, cfg.MailjetAPISecret,
			cfg.ShareSenderEmail, cfg.ShareSenderName)
	}

	appCore := app.New(st, cache, sessions, refreshIndex,
		flightClient, hotelClient, planner.New(generator), mailer)

	httpServer, err := server.New(server.Config{
		App:         appCore,
		RedisClient: redisClient,
	})
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}
