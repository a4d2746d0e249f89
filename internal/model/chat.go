package model

import (
	"time"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Conversation is one chat thread between a learner and a persona agent.
// AgentID is immutable after creation.
type Conversation struct {
	ID            uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID        uint64    `json:"user_id" gorm:"not null;index:idx_user"`
	AgentID       string    `json:"agent_id" gorm:"size:64;not null"`
	HeroName      string    `json:"hero_name" gorm:"size:128;not null;default:''"`
	Topic         *string   `json:"topic" gorm:"size:255"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
	LastMessageAt time.Time `json:"last_message_at" gorm:"index:idx_last_message;autoCreateTime"`
}

// TableName returns the table name for GORM.
func (c *Conversation) TableName() string {
	return "conversations"
}

// ConversationMessage is one turn stored in a conversation. Append-only.
type ConversationMessage struct {
	ID             uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	ConversationID uint64    `json:"conversation_id" gorm:"not null;index:idx_conversation"`
	Role           string    `json:"role" gorm:"size:16;not null"`
	Content        string    `json:"content" gorm:"type:text;not null"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName returns the table name for GORM.
func (m *ConversationMessage) TableName() string {
	return "conversation_messages"
}
