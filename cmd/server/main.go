package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/joho/godotenv"

	"github.com/yusukek05/simplechat/internal/config"
	"github.com/yusukek05/simplechat/internal/integrations/bedrock"
	"github.com/yusukek05/simplechat/internal/integrations/llmapi"
	"github.com/yusukek05/simplechat/internal/server"
	"github.com/yusukek05/simplechat/internal/usecase"
)

func main() {
	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Info("Starting the chat relay service...")

	generator, err := newGenerator(cfg)
	if err != nil {
		log.Fatalf("Failed to create generation backend %q: %v", cfg.Backend, err)
	}

	chatService, err := usecase.NewChatService(generator)
	if err != nil {
		log.Fatalf("Failed to create chat service: %v", err)
	}

	chatHandler, err := server.NewChatHandler(chatService)
	if err != nil {
		log.Fatalf("Failed to create chat handler: %v", err)
	}

	router := server.NewRouter(chatHandler)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Infof("Chat relay listening on port %s (backend: %s)", cfg.Port, cfg.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("Forced shutdown: %v", err)
	}
	log.Info("Server stopped")
}

func newGenerator(cfg config.Config) (usecase.Generator, error) {
	if cfg.Backend == config.BackendBedrock {
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
		if err != nil {
			return nil, err
		}
		return bedrock.New(bedrockruntime.NewFromConfig(awsCfg), cfg.ModelID)
	}
	return llmapi.NewClient(cfg.LLMAPIURL, llmapi.WithTimeout(cfg.Timeout()))
}
