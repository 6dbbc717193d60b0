// ABOUTME: Store interface and data types for expert-gateway persistence
// ABOUTME: Defines Conversation, Message, UserProfile and the Store interface

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist.
// Ownership mismatches surface as ErrNotFound too, so callers cannot
// distinguish "missing" from "belongs to someone else".
var ErrNotFound = errors.New("not found")

// ErrEmptyContent is returned when appending a message with no content.
var ErrEmptyContent = errors.New("message content is empty")

// ErrInvalidRole is returned when a message role is outside the closed set.
var ErrInvalidRole = errors.New("invalid message role")

// Message roles. The set is closed: every stored message is one of these.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Conversation is the thread of messages between one user and one agent.
// There is no uniqueness constraint on (UserID, AgentID): several
// conversations may exist for the same pair, and lookup-by-pair returns
// the most recently updated one.
type Conversation struct {
	ID        string
	UserID    string
	AgentID   string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Message is a single exchange entry within a conversation. Messages are
// append-only: once stored they are never mutated or deleted.
type Message struct {
	ID             string
	ConversationID string
	Role           string // "user" or "assistant"
	Content        string
	CreatedAt      time.Time
}

// UserProfile holds per-user preferences. Absence is valid; callers fall
// back to the identity provider's display name.
type UserProfile struct {
	UserID        string
	PreferredName string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Store defines the interface for conversation, message, and profile persistence.
type Store interface {
	// Conversations
	CreateConversation(ctx context.Context, userID, agentID, title string) (*Conversation, error)
	FindLatestForPair(ctx context.Context, userID, agentID string) (*Conversation, error)
	GetOwnedConversation(ctx context.Context, conversationID, userID string) (*Conversation, error)
	TouchConversation(ctx context.Context, conversationID string) error

	// Messages (append-only log, ordered by creation time)
	AppendMessage(ctx context.Context, conversationID, role, content string) (*Message, error)
	ListMessages(ctx context.Context, conversationID string, limit int) ([]*Message, error)

	// Profiles
	GetProfile(ctx context.Context, userID string) (*UserProfile, error)
	UpsertProfile(ctx context.Context, userID, preferredName string) (*UserProfile, error)

	// Close releases any resources held by the store
	Close() error
}
