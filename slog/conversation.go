package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/pilot"
)

// Ensure LoggingConversationService implements pilot.ConversationService.
var _ pilot.ConversationService = (*LoggingConversationService)(nil)

// LoggingConversationService wraps a ConversationService with debug logging
// of writes. Reads are delegated as is.
type LoggingConversationService struct {
	next   pilot.ConversationService
	logger *slog.Logger
}

// NewLoggingConversationService creates a new LoggingConversationService.
func NewLoggingConversationService(next pilot.ConversationService, logger *slog.Logger) *LoggingConversationService {
	return &LoggingConversationService{next: next, logger: logger}
}

// CreateConversation delegates to the wrapped service and logs the operation.
func (s *LoggingConversationService) CreateConversation(ctx context.Context, conv *pilot.Conversation) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("create conversation",
			"id", conv.ID,
			"user", conv.UserID,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.CreateConversation(ctx, conv)
}

// FindConversationByID delegates to the wrapped service.
func (s *LoggingConversationService) FindConversationByID(ctx context.Context, userID, id string) (*pilot.Conversation, error) {
	return s.next.FindConversationByID(ctx, userID, id)
}

// FindConversations delegates to the wrapped service.
func (s *LoggingConversationService) FindConversations(ctx context.Context, userID string) ([]*pilot.Conversation, error) {
	return s.next.FindConversations(ctx, userID)
}

// TouchConversation delegates to the wrapped service and logs the operation.
func (s *LoggingConversationService) TouchConversation(ctx context.Context, id string) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("touch conversation",
			"id", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.TouchConversation(ctx, id)
}

// CreateMessage delegates to the wrapped service and logs the operation.
func (s *LoggingConversationService) CreateMessage(ctx context.Context, msg *pilot.Message) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("create message",
			"conversation", msg.ConversationID,
			"role", msg.Role,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.CreateMessage(ctx, msg)
}

// FindMessages delegates to the wrapped service.
func (s *LoggingConversationService) FindMessages(ctx context.Context, conversationID string) ([]*pilot.Message, error) {
	return s.next.FindMessages(ctx, conversationID)
}
