package aiprovider

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/stockfortress/stockfortress/internal/config"
)

const perplexityBaseURL = "https://api.perplexity.ai"

// universalGenerator — стратегия для любых OpenAI-совместимых бэкендов.
// Бэкенд выбирается по соглашению об имени модели: префикс "perplexity/"
// направляет запрос в Perplexity, всё остальное — в OpenAI.
// Параметр useGrounding этой стратегией игнорируется.
type universalGenerator struct {
	openaiKey     string
	perplexityKey string
}

func newUniversal(cfg config.AI) *universalGenerator {
	return &universalGenerator{
		openaiKey:     cfg.OpenAIAPIKey,
		perplexityKey: cfg.PerplexityAPIKey,
	}
}

func (u *universalGenerator) clientFor(model string) (*openai.Client, string) {
	if name, ok := strings.CutPrefix(model, "perplexity/"); ok {
		clientCfg := openai.DefaultConfig(u.perplexityKey)
		clientCfg.BaseURL = perplexityBaseURL
		return openai.NewClientWithConfig(clientCfg), name
	}
	return openai.NewClient(u.openaiKey), model
}

func (u *universalGenerator) Generate(ctx context.Context, model, systemPrompt, userPrompt string, temperature float32, _ bool) (string, error) {
	const op = "aiprovider.universal.Generate"

	client, modelName := u.clientFor(model)

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: modelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: empty response from model", op)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
