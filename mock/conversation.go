package mock

import (
	"context"

	"github.com/fwojciec/pilot"
)

var _ pilot.ConversationService = (*ConversationService)(nil)

// ConversationService is a mock implementation of pilot.ConversationService.
type ConversationService struct {
	CreateConversationFn   func(ctx context.Context, conv *pilot.Conversation) error
	FindConversationByIDFn func(ctx context.Context, userID, id string) (*pilot.Conversation, error)
	FindConversationsFn    func(ctx context.Context, userID string) ([]*pilot.Conversation, error)
	TouchConversationFn    func(ctx context.Context, id string) error
	CreateMessageFn        func(ctx context.Context, msg *pilot.Message) error
	FindMessagesFn         func(ctx context.Context, conversationID string) ([]*pilot.Message, error)
}

func (s *ConversationService) CreateConversation(ctx context.Context, conv *pilot.Conversation) error {
	return s.CreateConversationFn(ctx, conv)
}

func (s *ConversationService) FindConversationByID(ctx context.Context, userID, id string) (*pilot.Conversation, error) {
	return s.FindConversationByIDFn(ctx, userID, id)
}

func (s *ConversationService) FindConversations(ctx context.Context, userID string) ([]*pilot.Conversation, error) {
	return s.FindConversationsFn(ctx, userID)
}

func (s *ConversationService) TouchConversation(ctx context.Context, id string) error {
	return s.TouchConversationFn(ctx, id)
}

func (s *ConversationService) CreateMessage(ctx context.Context, msg *pilot.Message) error {
	return s.CreateMessageFn(ctx, msg)
}

func (s *ConversationService) FindMessages(ctx context.Context, conversationID string) ([]*pilot.Message, error) {
	return s.FindMessagesFn(ctx, conversationID)
}
