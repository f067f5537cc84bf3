package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

// Backend names accepted in LLM_BACKEND.
const (
	BackendAPI     = "api"
	BackendBedrock = "bedrock"
)

// Config is the process-wide relay configuration. It is read from the
// environment exactly once at startup and never mutated afterwards.
type Config struct {
	// LLMAPIURL is the self-hosted generation endpoint (POST /generate).
	LLMAPIURL string `env:"LLM_API_URL" envDefault:"https://YOUR_NGROK_URL.ngrok-free.app/generate" validate:"required,url"`
	// LLMAPITimeout bounds the outbound generation call, in seconds.
	LLMAPITimeout int `env:"LLM_API_TIMEOUT" envDefault:"60" validate:"gt=0"`
	// Backend selects the generation backend at startup.
	Backend string `env:"LLM_BACKEND" envDefault:"api" validate:"oneof=api bedrock"`
	// ModelID is the Bedrock model identifier, used only when Backend is "bedrock".
	ModelID string `env:"MODEL_ID" envDefault:"us.amazon.nova-lite-v1:0" validate:"required"`
	// Port is the listen port for the standalone server binary.
	Port string `env:"PORT" envDefault:"8080" validate:"required"`
}

var validate = validator.New()

// Load reads the configuration from the environment and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse environment: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("config: validate: %w", err)
	}
	return cfg, nil
}

// Timeout returns LLMAPITimeout as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.LLMAPITimeout) * time.Second
}
