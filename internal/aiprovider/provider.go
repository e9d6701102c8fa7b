// Package aiprovider нормализует вызовы разнородных генеративных бэкендов
// в одну сигнатуру. Стратегия выбирается один раз при старте из конфига:
// "gemini" — нативный клиент с поддержкой grounding через поиск,
// любое другое значение — универсальный OpenAI-совместимый клиент.
package aiprovider

import (
	"context"
	"errors"
	"strings"

	"github.com/stockfortress/stockfortress/internal/config"
)

// ErrNotConfigured возвращается, когда у выбранной стратегии нет API-ключа.
var ErrNotConfigured = errors.New("ai provider is not configured")

// teaserTemperature — температура для тизеров, чуть выше отчётной.
const teaserTemperature = 0.6

// Generator описывает один бэкенд генерации текста.
type Generator interface {
	Generate(ctx context.Context, model, systemPrompt, userPrompt string, temperature float32, useGrounding bool) (string, error)
}

// Provider выбирает бэкенд и предоставляет два профиля вызова:
// отчётный (температура из конфига, grounding разрешён) и
// тизерный (фиксированная температура, grounding выключен).
type Provider struct {
	gen         Generator
	reportModel string
	teaserModel string
	temperature float32
	configured  bool
}

// New создает Provider по конфигурации. Ошибки конфигурации не фатальны:
// непроинициализированный провайдер возвращает ErrNotConfigured при вызове.
func New(cfg config.AI) *Provider {
	p := &Provider{
		reportModel: cfg.Model,
		teaserModel: cfg.TeaserModel(),
		temperature: cfg.Temperature,
	}

	switch strings.ToLower(cfg.Provider) {
	case "gemini":
		if cfg.GeminiAPIKey != "" {
			p.gen = newGemini(cfg.GeminiAPIKey)
			p.configured = true
		}
	default:
		key := cfg.OpenAIAPIKey
		if key == "" {
			key = cfg.PerplexityAPIKey
		}
		if key != "" {
			p.gen = newUniversal(cfg)
			p.configured = true
		}
	}
	return p
}

// Configured сообщает, доступен ли провайдер (для health-эндпоинта).
func (p *Provider) Configured() bool {
	return p.configured
}

// GenerateReport вызывает отчётный профиль: модель отчётов,
// температура из конфига, grounding включён.
func (p *Provider) GenerateReport(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if !p.configured {
		return "", ErrNotConfigured
	}
	text, err := p.gen.Generate(ctx, p.reportModel, systemPrompt, userPrompt, p.temperature, true)
	if err != nil {
		return "", err
	}
	return stripFences(text), nil
}

// GenerateTeaser вызывает тизерный профиль: модель тизеров,
// фиксированная температура, grounding выключен.
func (p *Provider) GenerateTeaser(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if !p.configured {
		return "", ErrNotConfigured
	}
	text, err := p.gen.Generate(ctx, p.teaserModel, systemPrompt, userPrompt, teaserTemperature, false)
	if err != nil {
		return "", err
	}
	return stripFences(text), nil
}

// stripFences убирает обрамление markdown-кодблока, если модель
// проигнорировала запрет и вернула ответ в ```-заборе.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	if idx := strings.Index(text, "\n"); idx >= 0 {
		text = text[idx+1:]
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
