package sqlite

import (
	"context"
	"database/sql"

	"github.com/fwojciec/pilot"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ pilot.ConversationService = (*ConversationService)(nil)

// ConversationService implements pilot.ConversationService using SQLite.
type ConversationService struct {
	db *DB
}

// NewConversationService creates a new ConversationService.
func NewConversationService(db *DB) *ConversationService {
	return &ConversationService{db: db}
}

// CreateConversation creates a new conversation.
func (s *ConversationService) CreateConversation(ctx context.Context, conv *pilot.Conversation) error {
	if err := conv.Validate(); err != nil {
		return err
	}

	conv.ID = uuid.New().String()
	t := now()
	conv.CreatedAt = t
	conv.UpdatedAt = t

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversations (id, user_id, title, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, conv.ID, conv.UserID, conv.Title, formatTime(conv.CreatedAt), formatTime(conv.UpdatedAt))

	return err
}

// FindConversationByID retrieves a conversation owned by userID.
func (s *ConversationService) FindConversationByID(ctx context.Context, userID, id string) (*pilot.Conversation, error) {
	var conv pilot.Conversation
	var createdAt, updatedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, created_at, updated_at
		FROM conversations
		WHERE id = ? AND user_id = ?
	`, id, userID).Scan(&conv.ID, &conv.UserID, &conv.Title, &createdAt, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, pilot.Errorf(pilot.ENOTFOUND, "conversation not found")
	}
	if err != nil {
		return nil, err
	}

	if err := scanTimes(&conv, createdAt, updatedAt); err != nil {
		return nil, err
	}
	return &conv, nil
}

// FindConversations retrieves a user's conversations with their message
// counts, most recently updated first.
func (s *ConversationService) FindConversations(ctx context.Context, userID string) ([]*pilot.Conversation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.user_id, c.title, c.created_at, c.updated_at,
		       (SELECT COUNT(*) FROM messages m WHERE m.conversation_id = c.id)
		FROM conversations c
		WHERE c.user_id = ?
		ORDER BY c.updated_at DESC, c.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []*pilot.Conversation
	for rows.Next() {
		var conv pilot.Conversation
		var createdAt, updatedAt string

		if err := rows.Scan(&conv.ID, &conv.UserID, &conv.Title, &createdAt, &updatedAt,
			&conv.MessageCount); err != nil {
			return nil, err
		}
		if err := scanTimes(&conv, createdAt, updatedAt); err != nil {
			return nil, err
		}

		convs = append(convs, &conv)
	}

	return convs, rows.Err()
}

// TouchConversation bumps the conversation's updated time. The stored time
// never moves backwards.
func (s *ConversationService) TouchConversation(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE conversations SET updated_at = MAX(updated_at, ?) WHERE id = ?
	`, formatTime(now()), id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return pilot.Errorf(pilot.ENOTFOUND, "conversation not found")
	}

	return nil
}

// CreateMessage appends a message to a conversation.
func (s *ConversationService) CreateMessage(ctx context.Context, msg *pilot.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	s.db.appendMu.Lock()
	defer s.db.appendMu.Unlock()

	msg.ID = uuid.New().String()
	msg.CreatedAt = now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, conversation_id, role, content, context, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, msg.ID, msg.ConversationID, msg.Role, msg.Content, msg.Context, formatTime(msg.CreatedAt))

	return err
}

// FindMessages retrieves a conversation's messages in creation order.
func (s *ConversationService) FindMessages(ctx context.Context, conversationID string) ([]*pilot.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, conversation_id, role, content, context, created_at
		FROM messages
		WHERE conversation_id = ?
		ORDER BY seq ASC
	`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []*pilot.Message
	for rows.Next() {
		var msg pilot.Message
		var createdAt string

		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.Role, &msg.Content,
			&msg.Context, &createdAt); err != nil {
			return nil, err
		}

		msg.CreatedAt, err = parseTime(createdAt, "created_at")
		if err != nil {
			return nil, err
		}

		msgs = append(msgs, &msg)
	}

	return msgs, rows.Err()
}

func scanTimes(conv *pilot.Conversation, createdAt, updatedAt string) error {
	var err error
	if conv.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return err
	}
	if conv.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return err
	}
	return nil
}

