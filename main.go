package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"storefront-api/config"
)

const usage = `usage: storefront-api [command]

commands:
  serve                       run the API (default)
  migrate                     create or update the database schema
  create-admin <name> <phone> create the first admin account`

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	setupLogger(cfg)

	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	if cmd == "help" || cmd == "-h" || cmd == "--help" {
		fmt.Println(usage)
		return
	}

	db, err := config.OpenDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	ctx := context.Background()
	switch cmd {
	case "migrate":
		if err := config.Migrate(db); err != nil {
			log.Fatal().Err(err).Msg("Migration failed")
		}
		log.Info().Msg("Database migrated")

	case "create-admin":
		if len(os.Args) != 4 {
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(2)
		}
		if err := config.Migrate(db); err != nil {
			log.Fatal().Err(err).Msg("Migration failed")
		}
		a, err := buildApp(ctx, cfg, db)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialise")
		}
		admin, created, err := a.accounts.EnsureAdmin(ctx, os.Args[2], os.Args[3])
		if err != nil {
			log.Fatal().Err(err).Msg("Could not create admin")
		}
		if !created {
			log.Warn().Uint("account_id", admin.ID).Str("role", string(admin.Role)).Msg("Phone already registered, nothing created")
			return
		}
		log.Info().Uint("account_id", admin.ID).Str("name", admin.Name).Msg("Admin created")

	case "serve":
		if err := config.Migrate(db); err != nil {
			log.Fatal().Err(err).Msg("Migration failed")
		}
		a, err := buildApp(ctx, cfg, db)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialise")
		}
		if cfg.RunMode == "lambda" {
			serveLambda(a.router)
			return
		}
		serveHTTP(cfg, a.router)

	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	log.Logger = log.With().Str("service", "storefront-api").Logger()

	switch {
	case cfg.GinMode != "":
		gin.SetMode(cfg.GinMode)
	case cfg.IsDevelopment():
		gin.SetMode(gin.DebugMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}
}

func serveHTTP(cfg *config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Shutdown failed")
	}
	log.Info().Msg("Server stopped")
}

func serveLambda(r *gin.Engine) {
	adapter := ginadapter.New(r)
	log.Info().Msg("Starting Lambda handler")
	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
