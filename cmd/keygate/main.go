package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/redis/go-redis/v9"

	"github.com/layer-3/keygate/adapters/events"
	"github.com/layer-3/keygate/adapters/store"
	"github.com/layer-3/keygate/adapters/tokenizer"
	"github.com/layer-3/keygate/config"
	"github.com/layer-3/keygate/service"
	transport "github.com/layer-3/keygate/transport/http"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	signKey, ephemeral, err := cfg.SessionSigningKey()
	if err != nil {
		slog.Error("failed to load session signing key", "error", err)
		os.Exit(1)
	}
	if ephemeral {
		slog.Warn("SESSION_KEY_PEM not set, using an ephemeral signing key; sessions will not survive restarts")
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		slog.Error("failed to parse redis URL", "error", err)
		os.Exit(1)
	}
	redisClient := redis.NewClient(opts)
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		slog.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}

	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{Client: redisClient},
		watermill.NewStdLogger(false, false),
	)
	if err != nil {
		slog.Error("failed to create event publisher", "error", err)
		os.Exit(1)
	}

	redisStore := store.NewRedisStore(redisClient, cfg.KeyPartition(), cfg.NonceTTL)
	eventPub := events.NewWatermillPublisher(publisher)

	authService := service.NewAuthService(redisStore, tokenizer.NewJWTTokenizer(signKey), eventPub, service.AuthConfig{
		Domain:        cfg.ServiceDomain,
		SessionTTL:    cfg.SessionTTL,
		MessageMaxAge: cfg.MessageMaxAge,
	})
	keyService := service.NewKeyService(redisStore, eventPub)
	recordService := service.NewRecordService(redisStore, cfg.KeyPartition())

	handlers := transport.NewHandlers(authService, keyService, recordService, cfg.SessionTTL, cfg.SecureCookies)
	router := transport.SetupRouter(handlers, authService)

	slog.Info("starting server",
		"addr", cfg.ListenAddr,
		"environment", cfg.Environment,
		"partition", cfg.KeyPartition(),
	)
	if err := router.Run(cfg.ListenAddr); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}
