package services

import (
	"context"
	"fmt"
	"log"

	"ShopAssist/pkg/config"
)

// NewGenerator builds the generator selected by LLM_PROVIDER and applies
// the fallback reply when LLM_FALLBACK_ENABLED is set.
func NewGenerator(ctx context.Context, cfg *config.Config) (Generator, error) {
	var g Generator
	switch cfg.LLMProvider {
	case "gemini":
		if !cfg.IsGeminiEnabled {
			log.Printf("[llm] gemini disabled via config (IS_GEMINI_ENABLED=0); using local replies")
			g = LocalGenerator{}
			break
		}
		g = NewGeminiService(GeminiConfig{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.GeminiModel,
			BaseURL: cfg.GeminiBaseURL,
			Enabled: true,
			Timeout: cfg.LLMTimeout(),
		})
	case "ark":
		arkSvc, err := NewArkService(ctx, ArkConfig{APIKey: cfg.ArkAPIKey, Model: cfg.ArkModel, BaseURL: cfg.ArkBaseURL})
		if err != nil {
			return nil, err
		}
		g = arkSvc
	case "local":
		g = LocalGenerator{}
	default:
		return nil, fmt.Errorf("llm: unsupported provider %q", cfg.LLMProvider)
	}

	if cfg.LLMFallbackEnabled {
		g = WithFallback(g, cfg.LLMFallbackReply)
	}
	log.Printf("[llm] provider=%s fallback=%v", cfg.LLMProvider, cfg.LLMFallbackEnabled)
	return g, nil
}
