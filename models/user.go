package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User is a storefront customer. Rows are seeded by cmd/loaddata and are
// never written by the chat flow.
type User struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	FirstName     string    `gorm:"size:100" json:"first_name"`
	LastName      string    `gorm:"size:100" json:"last_name"`
	Email         string    `gorm:"size:120;index" json:"email"`
	Age           int       `json:"age"`
	Gender        string    `gorm:"size:10" json:"gender"`
	State         string    `gorm:"size:100" json:"state"`
	StreetAddress string    `gorm:"size:255" json:"street_address"`
	PostalCode    string    `gorm:"size:20" json:"postal_code"`
	City          string    `gorm:"size:100" json:"city"`
	Country       string    `gorm:"size:100" json:"country"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	TrafficSource string    `gorm:"size:50" json:"traffic_source"`
	PasswordHash  string    `gorm:"size:255" json:"-"`
	CreatedAt     time.Time `json:"created_at"`

	Conversations []Conversation `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword reports false for users that never had a password set.
func (u *User) CheckPassword(password string) bool {
	if u.PasswordHash == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}
