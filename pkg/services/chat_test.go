package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"ShopAssist/models"
	"ShopAssist/pkg/database/dbtest"
	"ShopAssist/pkg/store"

	"gorm.io/gorm"
)

type recordingGenerator struct {
	mu      sync.Mutex
	prompts []string
	reply   string
	err     error
}

func (g *recordingGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	return g.reply, g.err
}

func (g *recordingGenerator) last() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.prompts) == 0 {
		return ""
	}
	return g.prompts[len(g.prompts)-1]
}

// steppingClock advances one second on every call.
func steppingClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func newChatService(t *testing.T, gen Generator) (*ChatService, *gorm.DB) {
	t.Helper()
	db := dbtest.Open(t)
	dbtest.SeedUser(t, db, 1, "one@example.com")
	dbtest.SeedUser(t, db, 2, "two@example.com")
	return NewChatService(store.New(db), gen, WithClock(steppingClock()), WithLLMTimeout(time.Second)), db
}

func uintPtr(v uint) *uint { return &v }

func TestChatCreatesConversationAndTwoMessages(t *testing.T) {
	gen := &recordingGenerator{reply: "Yes, size M is in stock."}
	svc, db := newChatService(t, gen)
	ctx := context.Background()

	res, err := svc.Chat(ctx, ChatRequest{UserID: 1, Message: "Do you have size M?"})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if res.UserMessage != "Do you have size M?" {
		t.Errorf("unexpected user_message %q", res.UserMessage)
	}
	if res.AIResponse == "" {
		t.Error("expected non-empty ai_response")
	}
	if n := dbtest.Count(t, db, &models.Conversation{}); n != 1 {
		t.Fatalf("expected 1 conversation, got %d", n)
	}

	msgs, err := svc.ListMessages(ctx, res.ConversationID)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != models.RoleUser || msgs[1].Role != models.RoleAI {
		t.Fatalf("expected user then ai, got %s then %s", msgs[0].Role, msgs[1].Role)
	}
	if !strings.Contains(gen.last(), "User: Do you have size M?") {
		t.Errorf("prompt should carry the new user turn:\n%s", gen.last())
	}

	conv, err := svc.GetConversation(ctx, res.ConversationID)
	if err != nil {
		t.Fatal(err)
	}
	if conv.Title != models.DefaultConversationTitle || conv.UserID != 1 {
		t.Errorf("unexpected conversation %+v", conv)
	}
}

func TestChatSecondTurnSeesHistory(t *testing.T) {
	gen := &recordingGenerator{reply: "We have it."}
	svc, _ := newChatService(t, gen)
	ctx := context.Background()

	first, err := svc.Chat(ctx, ChatRequest{UserID: 1, Message: "Do you have size M?"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Chat(ctx, ChatRequest{UserID: 1, Message: "What about size L?", ConversationID: uintPtr(first.ConversationID)}); err != nil {
		t.Fatal(err)
	}

	prompt := gen.last()
	want := "User: Do you have size M?\nAI: We have it.\nUser: What about size L?"
	if !strings.Contains(prompt, want) {
		t.Fatalf("prompt missing ordered transcript %q:\n%s", want, prompt)
	}

	transcript, err := svc.Transcript(ctx, first.ConversationID)
	if err != nil {
		t.Fatal(err)
	}
	if transcript != want+"\nAI: We have it." {
		t.Fatalf("unexpected transcript:\n%s", transcript)
	}
}

func TestChatUnknownUser(t *testing.T) {
	gen := &recordingGenerator{reply: "hi"}
	svc, db := newChatService(t, gen)

	_, err := svc.Chat(context.Background(), ChatRequest{UserID: 404, Message: "hello"})
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if n := dbtest.Count(t, db, &models.Message{}); n != 0 {
		t.Errorf("expected nothing persisted, got %d messages", n)
	}
	if len(gen.prompts) != 0 {
		t.Error("generator should not be called")
	}
}

func TestChatUnknownConversation(t *testing.T) {
	svc, db := newChatService(t, &recordingGenerator{reply: "hi"})

	_, err := svc.Chat(context.Background(), ChatRequest{UserID: 1, Message: "hello", ConversationID: uintPtr(999)})
	if !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("expected ErrConversationNotFound, got %v", err)
	}
	if n := dbtest.Count(t, db, &models.Message{}); n != 0 {
		t.Errorf("expected nothing persisted, got %d messages", n)
	}
}

func TestChatRejectsForeignConversation(t *testing.T) {
	svc, db := newChatService(t, &recordingGenerator{reply: "hi"})
	ctx := context.Background()

	res, err := svc.Chat(ctx, ChatRequest{UserID: 1, Message: "mine"})
	if err != nil {
		t.Fatal(err)
	}
	_, err = svc.Chat(ctx, ChatRequest{UserID: 2, Message: "not mine", ConversationID: uintPtr(res.ConversationID)})
	if !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("expected ErrConversationNotFound, got %v", err)
	}
	if n := dbtest.Count(t, db, &models.Message{}); n != 2 {
		t.Errorf("expected only the first turn stored, got %d messages", n)
	}
}

func TestChatUpstreamFailurePersistsNothing(t *testing.T) {
	gen := &recordingGenerator{err: errors.New("quota exceeded")}
	svc, db := newChatService(t, gen)

	_, err := svc.Chat(context.Background(), ChatRequest{UserID: 1, Message: "hello"})
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
	if n := dbtest.Count(t, db, &models.Conversation{}); n != 0 {
		t.Errorf("expected no conversation, got %d", n)
	}
	if n := dbtest.Count(t, db, &models.Message{}); n != 0 {
		t.Errorf("expected no messages, got %d", n)
	}
}

func TestChatEmptyReplyIsUpstreamFailure(t *testing.T) {
	svc, _ := newChatService(t, &recordingGenerator{reply: "   "})
	_, err := svc.Chat(context.Background(), ChatRequest{UserID: 1, Message: "hello"})
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestChatWithFallbackAlwaysPersists(t *testing.T) {
	gen := WithFallback(&recordingGenerator{err: errors.New("boom")}, "sorry")
	svc, db := newChatService(t, gen)

	res, err := svc.Chat(context.Background(), ChatRequest{UserID: 1, Message: "hello"})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if res.AIResponse != "sorry" {
		t.Errorf("expected fallback reply, got %q", res.AIResponse)
	}
	if n := dbtest.Count(t, db, &models.Message{}); n != 2 {
		t.Errorf("expected 2 messages, got %d", n)
	}
}

func TestChatValidation(t *testing.T) {
	svc, _ := newChatService(t, &recordingGenerator{reply: "hi"})
	cases := []ChatRequest{
		{UserID: 0, Message: "hello"},
		{UserID: 1, Message: "   "},
	}
	for _, req := range cases {
		if _, err := svc.Chat(context.Background(), req); !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("request %+v: expected ErrInvalidRequest, got %v", req, err)
		}
	}
}

func TestChatIgnoresCallerCancellation(t *testing.T) {
	gen := GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return "done", nil
	})
	svc, db := newChatService(t, gen)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.Chat(ctx, ChatRequest{UserID: 1, Message: "hello"}); err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if n := dbtest.Count(t, db, &models.Message{}); n != 2 {
		t.Errorf("expected 2 messages, got %d", n)
	}
}

func TestChatLLMTimeout(t *testing.T) {
	gen := GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	db := dbtest.Open(t)
	dbtest.SeedUser(t, db, 1, "one@example.com")
	svc := NewChatService(store.New(db), gen, WithLLMTimeout(20*time.Millisecond))

	_, err := svc.Chat(context.Background(), ChatRequest{UserID: 1, Message: "hello"})
	if !errors.Is(err, ErrUpstreamUnavailable) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected upstream deadline error, got %v", err)
	}
}

func TestListConversationsNewestFirstAndIdempotent(t *testing.T) {
	svc, _ := newChatService(t, &recordingGenerator{reply: "ok"})
	ctx := context.Background()

	a, err := svc.Chat(ctx, ChatRequest{UserID: 1, Message: "first"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := svc.Chat(ctx, ChatRequest{UserID: 1, Message: "second"})
	if err != nil {
		t.Fatal(err)
	}

	convs, err := svc.ListConversations(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(convs) != 2 || convs[0].ID != b.ConversationID || convs[1].ID != a.ConversationID {
		t.Fatalf("expected newest first, got %+v", convs)
	}

	again, err := svc.ListConversations(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	for i := range convs {
		if convs[i].ID != again[i].ID || !convs[i].CreatedAt.Equal(again[i].CreatedAt) {
			t.Fatalf("repeated listing differs at %d: %+v vs %+v", i, convs[i], again[i])
		}
	}
}

func TestListMessagesEmptyConversationIsValid(t *testing.T) {
	svc, db := newChatService(t, &recordingGenerator{reply: "ok"})
	conv := &models.Conversation{UserID: 1, Title: models.DefaultConversationTitle}
	if err := db.Create(conv).Error; err != nil {
		t.Fatal(err)
	}

	msgs, err := svc.ListMessages(context.Background(), conv.ID)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("expected no messages, got %d", len(msgs))
	}

	if _, err := svc.ListMessages(context.Background(), 12345); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("expected ErrConversationNotFound, got %v", err)
	}
}

func TestDeleteConversation(t *testing.T) {
	svc, db := newChatService(t, &recordingGenerator{reply: "ok"})
	ctx := context.Background()

	res, err := svc.Chat(ctx, ChatRequest{UserID: 1, Message: "bye"})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteConversation(ctx, res.ConversationID); err != nil {
		t.Fatalf("DeleteConversation: %v", err)
	}
	if n := dbtest.Count(t, db, &models.Message{}); n != 0 {
		t.Errorf("expected messages removed, got %d", n)
	}
	if err := svc.DeleteConversation(ctx, res.ConversationID); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("expected ErrConversationNotFound, got %v", err)
	}
}
