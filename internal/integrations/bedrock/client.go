package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

// Fixed text generation configuration sent with every invocation.
const (
	maxTokenCount = 512
	temperature   = 0.7
	topP          = 0.9
)

// bedrockAPI is the minimal Bedrock Runtime interface required by Client.
// Defined here for testability.
type bedrockAPI interface {
	InvokeModel(ctx context.Context, in *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// invokeRequest is the Titan-family text generation request body.
type invokeRequest struct {
	InputText            string               `json:"inputText"`
	TextGenerationConfig textGenerationConfig `json:"textGenerationConfig"`
}

type textGenerationConfig struct {
	MaxTokenCount int     `json:"maxTokenCount"`
	Temperature   float64 `json:"temperature"`
	TopP          float64 `json:"topP"`
}

// invokeResponse is the minimal response shape for text generation models.
type invokeResponse struct {
	Results []struct {
		OutputText string `json:"outputText"`
	} `json:"results"`
}

// Client generates text through Amazon Bedrock. It satisfies the same
// generate capability as the HTTP relay client.
type Client struct {
	api     bedrockAPI
	modelID string
}

// New creates a new Bedrock-backed generation client.
func New(api bedrockAPI, modelID string) (*Client, error) {
	if api == nil {
		return nil, errors.New("bedrock: api must not be nil")
	}
	if strings.TrimSpace(modelID) == "" {
		return nil, errors.New("bedrock: model id must not be empty")
	}
	return &Client{api: api, modelID: modelID}, nil
}

// Generate invokes the configured model with the prompt and returns the
// first result's output text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(invokeRequest{
		InputText: prompt,
		TextGenerationConfig: textGenerationConfig{
			MaxTokenCount: maxTokenCount,
			Temperature:   temperature,
			TopP:          topP,
		},
	})
	if err != nil {
		return "", fmt.Errorf("bedrock: marshal request: %w", err)
	}

	out, err := c.api.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return "", fmt.Errorf("bedrock: invoke model: %w", err)
	}

	var payload invokeResponse
	if decErr := json.Unmarshal(out.Body, &payload); decErr != nil {
		return "", fmt.Errorf("bedrock: decode response: %w", decErr)
	}
	if len(payload.Results) == 0 {
		return "", errors.New("bedrock: no results in response")
	}

	return payload.Results[0].OutputText, nil
}
