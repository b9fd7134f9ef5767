package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// ArkService generates replies through a Volcengine Ark chat model.
type ArkService struct {
	chatModel model.BaseChatModel
	modelName string
}

type ArkConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

func NewArkService(ctx context.Context, cfg ArkConfig) (*ArkService, error) {
	if strings.TrimSpace(cfg.APIKey) == "" || strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("ark: ARK_API_KEY and ARK_MODEL are required")
	}
	maxTokens := 1024
	temperature := float32(0.6)
	cm, err := ark.NewChatModel(ctx, &ark.ChatModelConfig{
		BaseURL:     cfg.BaseURL,
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("ark: create chat model: %w", err)
	}
	return &ArkService{chatModel: cm, modelName: cfg.Model}, nil
}

// NewArkServiceWithModel wraps an already constructed eino chat model.
func NewArkServiceWithModel(cm model.BaseChatModel, name string) *ArkService {
	return &ArkService{chatModel: cm, modelName: name}
}

func (s *ArkService) Generate(ctx context.Context, prompt string) (string, error) {
	log.Printf("[ark] generate model=%s promptLen=%d", s.modelName, len(prompt))
	msg, err := s.chatModel.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return "", upstreamError("ark", err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return "", upstreamError("ark", errors.New("empty completion"))
	}
	return strings.TrimSpace(msg.Content), nil
}
