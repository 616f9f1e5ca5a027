// Package domain defines the typed records exchanged between the HTTP layer,
// the services, and the document store: users, conversations, messages, and
// mood entries. The GORM tags describe the SQLite mapping used for local
// development; the Firestore mapping lives in the repo package.
package domain

import "time"

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultConversationTitle is the title of a conversation before its first
// exchange renames it.
const DefaultConversationTitle = "New Conversation"

// User is the identity extracted from a verified bearer token. It is owned by
// the identity provider and read-only here.
type User struct {
	UID     string `json:"uid"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// Conversation is a chat thread owned by exactly one user.
//
// Fields:
//   - ID: document id (UUID for SQLite, auto id for Firestore).
//   - UserID: owner; every lookup is scoped by it.
//   - Title: "New Conversation" until the first exchange renames it.
//   - MessageCount: incremented once per appended message.
//   - CreatedAt / UpdatedAt: UpdatedAt moves on every append and rename.
type Conversation struct {
	ID           string    `json:"id"            gorm:"type:varchar(64);primaryKey"`
	UserID       string    `json:"-"             gorm:"type:varchar(128);not null;index:idx_user_conversations,priority:1"`
	Title        string    `json:"title"         gorm:"type:varchar(255);not null"`
	MessageCount int       `json:"message_count" gorm:"not null;default:0"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"    gorm:"index:idx_user_conversations,priority:2"`
}

// TableName returns the database table name for Conversation.
func (Conversation) TableName() string { return "conversations" }

// Message is a single immutable utterance within a conversation. Messages are
// append-only and ordered by CreatedAt ascending.
type Message struct {
	ID             string    `json:"id"         gorm:"type:varchar(64);primaryKey"`
	ConversationID string    `json:"-"          gorm:"type:varchar(64);not null;index:idx_conversation_msgs,priority:1"`
	Role           string    `json:"role"       gorm:"type:varchar(16);not null;check:role IN ('user','assistant')"`
	Content        string    `json:"content"    gorm:"type:text;not null"`
	CreatedAt      time.Time `json:"created_at" gorm:"index:idx_conversation_msgs,priority:2"`

	// Conversation is the parent thread; messages go with it.
	Conversation Conversation `json:"-" gorm:"foreignKey:ConversationID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Message.
func (Message) TableName() string { return "messages" }

// MoodEntry is a dated mood score recorded by the client apps. This service
// only reads mood entries.
type MoodEntry struct {
	ID     string    `json:"id"             gorm:"type:varchar(64);primaryKey"`
	UserID string    `json:"-"              gorm:"type:varchar(128);not null;index:idx_user_moods,priority:1"`
	Date   time.Time `json:"date"           gorm:"not null;index:idx_user_moods,priority:2"`
	Score  float64   `json:"score"          gorm:"not null"`
	Note   string    `json:"note,omitempty" gorm:"type:text"`
}

// TableName returns the database table name for MoodEntry.
func (MoodEntry) TableName() string { return "moods" }

// Trend is the coarse direction of a mood series.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)
