package main

import (
	"context"
	"encoding/base64"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/zlutov/notepad/api"
	"github.com/zlutov/notepad/api/rest"
	"github.com/zlutov/notepad/cache/redis"
	"github.com/zlutov/notepad/store/dynamo"
)

const DynamoDBTable = "Notepad"

func main() {
	godotenv.Load()

	ctx := context.Background()
	devMode := os.Getenv("DEV_MODE") == "true"

	notepadStore, err := dynamo.NewDynamoNotepadStore(ctx, devMode, os.Getenv("DYNAMODB_ENDPOINT"), DynamoDBTable)
	if err != nil {
		log.Fatalf("Failed to create dynamodb store: %v", err)
	}

	notepadCache, err := redis.NewRedisNotepadCache(ctx, devMode, os.Getenv("REDIS_ENDPOINT"))
	if err != nil {
		log.Fatalf("Failed to create redis cache: %v", err)
	}

	accessSecret, err := base64.StdEncoding.DecodeString(os.Getenv("ACCESS_TOKEN_SECRET"))
	if err != nil {
		log.Fatalf("Failed to decode base64 ACCESS_TOKEN_SECRET: %v", err)
	}
	refreshSecret, err := base64.StdEncoding.DecodeString(os.Getenv("REFRESH_TOKEN_SECRET"))
	if err != nil {
		log.Fatalf("Failed to decode base64 REFRESH_TOKEN_SECRET: %v", err)
	}

	// Cross-origin deployments need SameSite=None, which browsers only
	// accept together with Secure
	cookies := rest.CookieConfig{
		Secure:   os.Getenv("COOKIE_SECURE") == "true",
		SameSite: http.SameSiteLaxMode,
	}
	if os.Getenv("COOKIE_SAMESITE_NONE") == "true" {
		cookies.SameSite = http.SameSiteNoneMode
		cookies.Secure = true
	}

	notepadAPI, err := api.NewNotepadAPI(notepadStore, notepadCache, accessSecret, refreshSecret, cookies)
	if err != nil {
		log.Fatalf("Failed to create notepad api: %v", err)
	}

	mux := http.NewServeMux()
	notepadAPI.RegisterRoutes(mux)

	handler := api.CORSMiddleware(os.Getenv("ALLOWED_ORIGIN"), mux)

	hostPort := "8080"
	if p := os.Getenv("HOST_PORT"); p != "" {
		hostPort = p
	}

	shutdownCtx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	server := &http.Server{Addr: ":" + hostPort, Handler: handler}

	go func() {
		log.Printf("Starting server on host port: %s\n", hostPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-shutdownCtx.Done()
	log.Printf("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
