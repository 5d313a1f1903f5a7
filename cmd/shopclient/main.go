package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/waveshop/shopclient/internal/api"
	"github.com/waveshop/shopclient/internal/cart"
	"github.com/waveshop/shopclient/internal/checkout"
	"github.com/waveshop/shopclient/internal/config"
	"github.com/waveshop/shopclient/internal/storage"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := newBackend(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open cart storage: %v", err)
	}

	store := cart.NewStore(backend, cfg.CartKey)
	if err := store.Load(ctx); err != nil {
		log.Printf("Starting with an empty cart: %v", err)
	}

	client, err := api.NewClient(cfg.ServerURL, cfg.Timeout())
	if err != nil {
		log.Fatalf("Failed to create API client: %v", err)
	}

	session := api.NewSessionClient(client)
	app := &app{
		catalog:     api.NewCatalogClient(client),
		session:     session,
		cart:        store,
		coordinator: checkout.NewCoordinator(store, session, api.NewCheckoutClient(client)),
		out:         os.Stdout,
	}

	if err := app.run(ctx, os.Stdin); err != nil {
		log.Fatalf("Client stopped: %v", err)
	}
}

func newBackend(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.StorageBackend {
	case "file":
		return storage.NewFileStore(cfg.StoragePath)
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDBIndex(),
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		return storage.NewRedisStore(client), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
