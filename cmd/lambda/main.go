package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/yusukek05/simplechat/handler"
	"github.com/yusukek05/simplechat/internal/config"
	"github.com/yusukek05/simplechat/internal/integrations/bedrock"
	"github.com/yusukek05/simplechat/internal/integrations/llmapi"
	"github.com/yusukek05/simplechat/internal/usecase"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}

	// ---- Generation backend ----
	generator, err := newGenerator(ctx, cfg)
	if err != nil {
		slog.Error("failed to create generation backend", "backend", cfg.Backend, "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	chatService, err := usecase.NewChatService(generator)
	if err != nil {
		slog.Error("failed to create chat service", "err", err)
		os.Exit(1)
	}

	h, err := handler.NewHandler(chatService)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}

func newGenerator(ctx context.Context, cfg config.Config) (usecase.Generator, error) {
	if cfg.Backend == config.BackendBedrock {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, err
		}
		return bedrock.New(bedrockruntime.NewFromConfig(awsCfg), cfg.ModelID)
	}
	return llmapi.NewClient(cfg.LLMAPIURL, llmapi.WithTimeout(cfg.Timeout()))
}
