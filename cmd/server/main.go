package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gabconcours.ga/backend/internal/config"
	"gabconcours.ga/backend/internal/entity"
	"gabconcours.ga/backend/internal/seed"
	"gabconcours.ga/backend/internal/server"
	"gabconcours.ga/backend/pkg/database"
	"gabconcours.ga/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	response.SetDebug(cfg.IsDevelopment())
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(database.Options{
		Host:         cfg.DBHost,
		Port:         cfg.DBPort,
		User:         cfg.DBUser,
		Password:     cfg.DBPassword,
		Name:         cfg.DBName,
		MaxOpenConns: 25,
		MaxIdleConns: 10,
	})
	if err != nil {
		log.Fatalf("Error connecting database: %v", err)
	}
	if err := entity.AutoMigrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := seed.SeedProvinces(ctx, db); err != nil {
		log.Fatalf("failed to seed provinces: %v", err)
	}
	if cfg.IsDevelopment() {
		if err := seed.Development(ctx, db, "admin@gabconcours.ga"); err != nil {
			log.Fatalf("failed to seed super admin: %v", err)
		}
	}

	redisClient := connectRedis(ctx, cfg.RedisURL)
	if redisClient != nil {
		defer redisClient.Close()
	}

	srv, err := server.NewServer(cfg, db, redisClient)
	if err != nil {
		log.Fatalf("failed to build server: %v", err)
	}

	if err := srv.Run(ctx, ":"+cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
	log.Println("Server stopped")
}

// connectRedis returns nil when REDIS_URL is unset or unreachable; the API then
// runs with an in-memory outbox and without rate limiting or live notifications.
func connectRedis(ctx context.Context, url string) *redis.Client {
	if url == "" {
		log.Println("REDIS_URL not set, running without Redis")
		return nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("Invalid REDIS_URL, running without Redis: %v", err)
		return nil
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Redis unreachable, running without Redis: %v", err)
		_ = client.Close()
		return nil
	}

	log.Println("Connected to Redis")
	return client
}
