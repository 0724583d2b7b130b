package provider

import (
	"context"
	"fmt"
	"time"

	"nutrition-assistant/internal/infra/logger"

	openaigo "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	// Gemini's OpenAI-compatible chat completions endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultModel   = "gemini-2.0-flash"

	maxRetries = 2
)

// GeminiProvider implements ITextGenerator on top of the OpenAI-compatible
// chat completions API exposed by Gemini.
type GeminiProvider struct {
	Logger *logger.Logger
	Model  string

	client openaigo.Client
}

func NewGeminiProvider(logger *logger.Logger, apiKey string, baseURL string, model string, requestTimeout time.Duration) *GeminiProvider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}

	client := openaigo.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(maxRetries),
		option.WithRequestTimeout(requestTimeout),
	)

	return &GeminiProvider{Logger: logger, Model: model, client: client}
}

func (gp *GeminiProvider) Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
	completion, err := gp.client.Chat.Completions.New(ctx, openaigo.ChatCompletionNewParams{
		Model: openaigo.ChatModel(gp.Model),
		Messages: []openaigo.ChatCompletionMessageParamUnion{
			openaigo.SystemMessage(systemPrompt),
			openaigo.UserMessage(userPrompt),
		},
	})
	if err != nil {
		gp.Logger.Error(fmt.Sprintf("Text generation request failed: %s", err.Error()))
		return "", err
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("text generation returned no choices")
	}

	return completion.Choices[0].Message.Content, nil
}
