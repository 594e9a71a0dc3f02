package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"storefront-api/awsclient"
	"storefront-api/config"
	"storefront-api/handlers"
	"storefront-api/idgen"
	"storefront-api/middleware"
	"storefront-api/notify"
	"storefront-api/ratelimit"
	"storefront-api/routes"
	"storefront-api/services"
)

type app struct {
	router   *gin.Engine
	accounts *services.AccountService
}

func buildApp(ctx context.Context, cfg *config.Config, db *gorm.DB) (*app, error) {
	var clients *awsclient.Clients
	awsClients := func() (*awsclient.Clients, error) {
		if clients != nil {
			return clients, nil
		}
		var err error
		clients, err = awsclient.New(ctx, cfg.AWSRegion)
		return clients, err
	}

	var store ratelimit.Store = ratelimit.NewMemoryStore()
	if cfg.CounterBackend == "dynamodb" {
		c, err := awsClients()
		if err != nil {
			return nil, fmt.Errorf("aws clients: %w", err)
		}
		store = ratelimit.NewDynamoStore(c.DynamoDB, cfg.CounterTable)
		log.Info().Str("table", cfg.CounterTable).Msg("using DynamoDB counters")
	}

	notifiers := notify.Multi{}
	if cfg.OrderEventsQueueURL != "" {
		c, err := awsClients()
		if err != nil {
			return nil, fmt.Errorf("aws clients: %w", err)
		}
		notifiers = append(notifiers, notify.NewSQSNotifier(c.SQS, cfg.OrderEventsQueueURL))
	}
	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 {
		tg, err := notify.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Error().Err(err).Msg("telegram alerts disabled")
		} else {
			notifiers = append(notifiers, tg)
		}
	}
	var notifier notify.Notifier = notify.Nop{}
	if len(notifiers) > 0 {
		notifier = notifiers
	}

	issuer := middleware.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	lockout := ratelimit.NewLockout(store, cfg.LoginMaxFailures, cfg.LoginLockoutWindow)
	limiter := ratelimit.NewLimiter(store, cfg.RateLimitRequests, cfg.RateLimitWindow)

	accounts := services.NewAccountService(db, issuer, lockout)
	h := handlers.New(
		accounts,
		services.NewOrderService(db, idgen.NewUUIDGenerator(), notifier),
		services.NewReviewService(db),
		services.NewCatalogService(db),
		services.NewContentService(db),
		cfg.IsDevelopment(),
	)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.CORS(), middleware.RateLimit(limiter))
	routes.SetupRoutes(r, h, issuer)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Welcome to the Storefront API",
			"docs":    "/api/state-machine",
			"health":  "/health",
			"roles":   []string{"customer", "admin"},
		})
	})

	return &app{router: r, accounts: accounts}, nil
}
