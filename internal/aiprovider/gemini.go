package aiprovider

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// geminiGenerator — нативная стратегия поверх Google GenAI SDK.
// Единственная стратегия, поддерживающая grounding через Google Search.
type geminiGenerator struct {
	apiKey string
}

func newGemini(apiKey string) *geminiGenerator {
	return &geminiGenerator{apiKey: apiKey}
}

func (g *geminiGenerator) Generate(ctx context.Context, model, systemPrompt, userPrompt string, temperature float32, useGrounding bool) (string, error) {
	const op = "aiprovider.gemini.Generate"

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr(temperature),
	}
	if useGrounding {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(userPrompt), cfg)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%s: empty response from model", op)
	}
	return text, nil
}
