package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"ShopAssist/models"
	"ShopAssist/pkg/store"
)

// ChatService runs customer support turns and the read-only conversation queries.
type ChatService struct {
	store      *store.Store
	gen        Generator
	llmTimeout time.Duration
	now        func() time.Time
}

type ChatOption func(*ChatService)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) ChatOption {
	return func(s *ChatService) { s.now = now }
}

// WithLLMTimeout bounds every generator call.
func WithLLMTimeout(d time.Duration) ChatOption {
	return func(s *ChatService) { s.llmTimeout = d }
}

func NewChatService(st *store.Store, gen Generator, opts ...ChatOption) *ChatService {
	s := &ChatService{
		store:      st,
		gen:        gen,
		llmTimeout: 30 * time.Second,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type ChatRequest struct {
	UserID         uint
	Message        string
	ConversationID *uint
}

type ChatResult struct {
	ConversationID uint   `json:"conversation_id"`
	UserMessage    string `json:"user_message"`
	AIResponse     string `json:"ai_response"`
}

// Chat answers one customer message. The conversation (when new) and both
// messages are written together after the model replied; if anything
// fails before that, nothing is stored.
//
// The conversation named by ConversationID must belong to UserID.
func (s *ChatService) Chat(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	if req.UserID == 0 {
		return nil, fmt.Errorf("%w: user_id is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, fmt.Errorf("%w: message is required", ErrInvalidRequest)
	}

	// A client hanging up must not abandon a turn halfway.
	ctx = context.WithoutCancel(ctx)
	started := s.now().UTC()

	if _, err := s.store.GetUser(ctx, req.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	var (
		conv    *models.Conversation
		history []models.Message
	)
	if req.ConversationID != nil {
		found, err := s.store.GetUserConversation(ctx, req.UserID, *req.ConversationID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, ErrConversationNotFound
			}
			return nil, fmt.Errorf("load conversation: %w", err)
		}
		conv = found
		if history, err = s.store.ListMessages(ctx, conv.ID); err != nil {
			return nil, fmt.Errorf("load history: %w", err)
		}
	} else {
		conv = &models.Conversation{
			UserID:    req.UserID,
			Title:     models.DefaultConversationTitle,
			CreatedAt: started,
		}
	}

	userMsg := &models.Message{Role: models.RoleUser, Content: req.Message, CreatedAt: started}
	transcript := RenderTranscript(append(history, *userMsg))
	prompt := BuildSupportPrompt(transcript, req.Message)

	reply, err := s.generate(ctx, prompt)
	if err != nil {
		log.Printf("[chat] user=%d conversation=%d generation failed: %v", req.UserID, conv.ID, err)
		return nil, err
	}

	answered := s.now().UTC()
	if answered.Before(started) {
		answered = started
	}
	aiMsg := &models.Message{Role: models.RoleAI, Content: reply, CreatedAt: answered}

	if err := s.store.CommitTurn(ctx, store.Turn{Conversation: conv, User: userMsg, AI: aiMsg}); err != nil {
		return nil, fmt.Errorf("save turn: %w", err)
	}
	log.Printf("[chat] user=%d conversation=%d turn stored history=%d replyLen=%d", req.UserID, conv.ID, len(history), len(reply))

	return &ChatResult{
		ConversationID: conv.ID,
		UserMessage:    req.Message,
		AIResponse:     reply,
	}, nil
}

func (s *ChatService) generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.llmTimeout)
	defer cancel()

	reply, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		if !errors.Is(err, ErrUpstreamUnavailable) {
			err = fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
		}
		return "", err
	}
	if strings.TrimSpace(reply) == "" {
		return "", fmt.Errorf("%w: empty completion", ErrUpstreamUnavailable)
	}
	return reply, nil
}

// Transcript renders the stored messages of a conversation.
func (s *ChatService) Transcript(ctx context.Context, conversationID uint) (string, error) {
	msgs, err := s.ListMessages(ctx, conversationID)
	if err != nil {
		return "", err
	}
	return RenderTranscript(msgs), nil
}

// ListConversations returns the user's conversations, newest first.
func (s *ChatService) ListConversations(ctx context.Context, userID uint) ([]models.Conversation, error) {
	if userID == 0 {
		return nil, fmt.Errorf("%w: user_id is required", ErrInvalidRequest)
	}
	return s.store.ListConversations(ctx, userID)
}

// ListMessages returns the conversation's messages, oldest first. An existing
// conversation without messages yields an empty slice, not an error.
func (s *ChatService) ListMessages(ctx context.Context, conversationID uint) ([]models.Message, error) {
	if _, err := s.GetConversation(ctx, conversationID); err != nil {
		return nil, err
	}
	return s.store.ListMessages(ctx, conversationID)
}

func (s *ChatService) GetConversation(ctx context.Context, id uint) (*models.Conversation, error) {
	conv, err := s.store.GetConversation(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	return conv, nil
}

func (s *ChatService) DeleteConversation(ctx context.Context, id uint) error {
	if err := s.store.DeleteConversation(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrConversationNotFound
		}
		return err
	}
	log.Printf("[chat] conversation=%d deleted", id)
	return nil
}

func (s *ChatService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}
