package store

import (
	"context"
	"errors"
	"fmt"

	"ShopAssist/models"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("record not found")

// Store is the gorm-backed persistence for users, conversations and messages.
// Every call scopes its session to the caller's context.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) session(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.session(ctx).First(&u, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.session(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *Store) GetConversation(ctx context.Context, id uint) (*models.Conversation, error) {
	var conv models.Conversation
	if err := s.session(ctx).First(&conv, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &conv, nil
}

// GetUserConversation only finds the conversation when userID owns it.
func (s *Store) GetUserConversation(ctx context.Context, userID, id uint) (*models.Conversation, error) {
	var conv models.Conversation
	if err := s.session(ctx).Where("id = ? AND user_id = ?", id, userID).First(&conv).Error; err != nil {
		return nil, notFound(err)
	}
	return &conv, nil
}

// ListConversations returns the user's conversations, newest first.
func (s *Store) ListConversations(ctx context.Context, userID uint) ([]models.Conversation, error) {
	convs := []models.Conversation{}
	err := s.session(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&convs).Error
	if err != nil {
		return nil, err
	}
	return convs, nil
}

// ListMessages returns a conversation's messages in transcript order.
// Equal timestamps fall back to insertion order.
func (s *Store) ListMessages(ctx context.Context, conversationID uint) ([]models.Message, error) {
	msgs := []models.Message{}
	err := s.session(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").Order("id ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

// Turn is one exchange to be written atomically. A Conversation with a zero
// ID is created inside the same transaction.
type Turn struct {
	Conversation *models.Conversation
	User         *models.Message
	AI           *models.Message
}

// CommitTurn writes the (optional) conversation and both messages in one
// transaction. On error nothing is persisted.
func (s *Store) CommitTurn(ctx context.Context, turn Turn) error {
	if turn.Conversation == nil || turn.User == nil || turn.AI == nil {
		return fmt.Errorf("commit turn: incomplete turn")
	}
	if turn.User.Role != models.RoleUser || turn.AI.Role != models.RoleAI {
		return fmt.Errorf("commit turn: expected user then ai roles, got %q and %q", turn.User.Role, turn.AI.Role)
	}
	return s.session(ctx).Transaction(func(tx *gorm.DB) error {
		if turn.Conversation.ID == 0 {
			if err := tx.Create(turn.Conversation).Error; err != nil {
				return fmt.Errorf("create conversation: %w", err)
			}
		}
		turn.User.ConversationID = turn.Conversation.ID
		turn.AI.ConversationID = turn.Conversation.ID
		if err := tx.Create(turn.User).Error; err != nil {
			return fmt.Errorf("save user message: %w", err)
		}
		if err := tx.Create(turn.AI).Error; err != nil {
			return fmt.Errorf("save ai message: %w", err)
		}
		return nil
	})
}

// DeleteConversation removes the conversation and all of its messages.
func (s *Store) DeleteConversation(ctx context.Context, id uint) error {
	return s.session(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ?", id).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Conversation{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
