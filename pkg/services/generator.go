package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
)

// ErrUpstreamUnavailable marks every failure of the language model backend:
// transport errors, non-2xx answers, blocked or empty completions, timeouts.
var ErrUpstreamUnavailable = errors.New("LLM unavailable")

// Generator turns a prompt into a completion.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a plain function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func upstreamError(provider string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUpstreamUnavailable, provider, err)
}

type fallbackGenerator struct {
	next  Generator
	reply string
}

// WithFallback wraps g so that any failure yields reply instead of an error.
// Callers that wrap their generator this way always get a turn persisted.
func WithFallback(g Generator, reply string) Generator {
	return &fallbackGenerator{next: g, reply: reply}
}

func (f *fallbackGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	text, err := f.next.Generate(ctx, prompt)
	if err == nil && strings.TrimSpace(text) != "" {
		return text, nil
	}
	if err != nil {
		log.Printf("[llm] generation failed, using fallback reply: %v", err)
	} else {
		log.Printf("[llm] empty completion, using fallback reply")
	}
	return f.reply, nil
}
