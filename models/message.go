package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Role tags who authored a message. Only RoleUser and RoleAI exist.
type Role string

const (
	RoleUser Role = "user"
	RoleAI   Role = "ai"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAI
}

// Label is the speaker prefix used when rendering transcripts.
func (r Role) Label() string {
	if r == RoleAI {
		return "AI"
	}
	return "User"
}

// Value refuses to write anything outside the two known roles.
func (r Role) Value() (driver.Value, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid message role %q", string(r))
	}
	return string(r), nil
}

func (r *Role) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Role", src)
	}
	role := Role(s)
	if !role.Valid() {
		return fmt.Errorf("invalid message role %q", s)
	}
	*r = role
	return nil
}

// Message is one immutable turn of a conversation.
type Message struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ConversationID uint      `gorm:"index;not null" json:"conversation_id"`
	Role           Role      `gorm:"type:varchar(8);not null;check:role IN ('user','ai')" json:"role"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
}
