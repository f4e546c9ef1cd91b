package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/cliplearn/backend/internal/config"
	"github.com/cliplearn/backend/internal/infrastructure/dynamo"
	"github.com/cliplearn/backend/internal/infrastructure/ffmpeg"
	jwtinfra "github.com/cliplearn/backend/internal/infrastructure/jwt"
	s3infra "github.com/cliplearn/backend/internal/infrastructure/s3"
	transporthttp "github.com/cliplearn/backend/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Every token operation needs the signing secret, so a missing one is
	// fatal rather than a degraded mode.
	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		log.Fatalf("jwt provider: %v", err)
	}

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	s3Client := s3infra.NewClient(cfg)

	deps := &transporthttp.Deps{
		UserRepo:        dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		ClipRepo:        dynamo.NewClipRepo(dynamoClient, cfg.DynamoTables.Clips),
		QuizAttemptRepo: dynamo.NewQuizAttemptRepo(dynamoClient, cfg.DynamoTables.QuizAttempts),
		SettingsRepo:    dynamo.NewSettingsRepo(dynamoClient, cfg.DynamoTables.Settings),
		CounterRepo:     dynamo.NewCounterRepo(dynamoClient, cfg.DynamoTables.Counters),
		MediaStore:      s3infra.NewStore(s3Client, cfg.S3BucketName),
		Thumbnailer:     ffmpeg.NewThumbnailer(cfg.FFmpegPath),
		JWTProvider:     jwtProvider,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
