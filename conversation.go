package pilot

import (
	"context"
	"time"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultConversationTitle names a conversation created before its first message.
const DefaultConversationTitle = "Nouvelle conversation"

// Conversation represents an append-only thread of messages owned by one user.
type Conversation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// MessageCount is only populated by FindConversations.
	MessageCount int `json:"messageCount,omitempty"`
}

// Validate returns an error if the conversation contains invalid fields.
func (c *Conversation) Validate() error {
	if c.UserID == "" {
		return Errorf(EINVALID, "conversation user ID required")
	}
	return nil
}

// Message represents a single turn of a conversation. Messages are never
// revised once created.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	Context        string    `json:"context,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Validate returns an error if the message contains invalid fields.
func (m *Message) Validate() error {
	if m.ConversationID == "" {
		return Errorf(EINVALID, "message conversation ID required")
	}
	if m.Role != RoleUser && m.Role != RoleAssistant {
		return Errorf(EINVALID, "invalid message role %q", m.Role)
	}
	if m.Content == "" {
		return Errorf(EINVALID, "message content required")
	}
	return nil
}

// ConversationService represents a service for managing conversations and
// their messages.
type ConversationService interface {
	// CreateConversation creates a new conversation.
	CreateConversation(ctx context.Context, conv *Conversation) error

	// FindConversationByID retrieves a conversation owned by userID.
	// Returns ENOTFOUND if the conversation does not exist or belongs to
	// another user.
	FindConversationByID(ctx context.Context, userID, id string) (*Conversation, error)

	// FindConversations retrieves a user's conversations, most recently
	// updated first.
	FindConversations(ctx context.Context, userID string) ([]*Conversation, error)

	// TouchConversation bumps the conversation's updated time.
	// Returns ENOTFOUND if the conversation does not exist.
	TouchConversation(ctx context.Context, id string) error

	// CreateMessage appends a message to a conversation.
	CreateMessage(ctx context.Context, msg *Message) error

	// FindMessages retrieves a conversation's messages in creation order.
	FindMessages(ctx context.Context, conversationID string) ([]*Message, error)
}
