// Package assistant orchestrates chat turns: it persists the user's message,
// assembles the system prompt from the user's checklist, asks the responder
// for a reply and persists it.
package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fwojciec/pilot"
)

// TitleLength is the number of characters of the first message kept in the
// title of a conversation it creates.
const TitleLength = 50

// Request is a single chat turn submitted by a user.
type Request struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId,omitempty"`
	Context        string `json:"context,omitempty"`
}

// Reply is the outcome of a chat turn.
type Reply struct {
	ConversationID string `json:"conversationId"`
	Response       string `json:"response"`
}

// Session runs chat turns against the conversation store.
//
// Resubmitting a turn after a late failure persists the user message again:
// delivery is at-least-once.
type Session struct {
	Conversations pilot.ConversationService
	Checklist     pilot.ChecklistService
	Responder     pilot.Responder
	Logger        *slog.Logger
}

// turn carries the state of one chat turn between stages.
type turn struct {
	userID string
	req    Request

	conv    *pilot.Conversation
	history []*pilot.Message
	prompt  string
	reply   string
}

// stage is one named step of a chat turn.
type stage struct {
	name string
	run  func(ctx context.Context, t *turn) error
}

func (s *Session) stages() []stage {
	return []stage{
		{"validate", s.validate},
		{"resolve conversation", s.resolveConversation},
		{"append user message", s.appendUserMessage},
		{"load history", s.loadHistory},
		{"assemble context", s.assembleContext},
		{"respond", s.respond},
		{"append reply", s.appendReply},
		{"touch conversation", s.touchConversation},
	}
}

// Send runs one chat turn for userID. Stages run strictly in order; a failing
// stage aborts the turn without undoing messages already written.
//
// Returns EINVALID for a blank message and ENOTFOUND for a conversation the
// user does not own, both before anything is written. Store failures are
// reported as EINTERNAL.
func (s *Session) Send(ctx context.Context, userID string, req Request) (*Reply, error) {
	t := &turn{userID: userID, req: req}
	for _, st := range s.stages() {
		if err := st.run(ctx, t); err != nil {
			s.logger().Error("chat turn failed",
				"stage", st.name,
				"user", userID,
				"conversation", t.req.ConversationID,
				"err", err,
			)
			return nil, stageError(st.name, err)
		}
	}
	return &Reply{ConversationID: t.conv.ID, Response: t.reply}, nil
}

// NewConversation creates an empty conversation for userID.
func (s *Session) NewConversation(ctx context.Context, userID string) (*pilot.Conversation, error) {
	conv := &pilot.Conversation{UserID: userID, Title: pilot.DefaultConversationTitle}
	if err := s.Conversations.CreateConversation(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// Conversation returns a conversation owned by userID with its messages.
// Returns ENOTFOUND if the user does not own the conversation.
func (s *Session) Conversation(ctx context.Context, userID, id string) (*pilot.Conversation, []*pilot.Message, error) {
	conv, err := s.Conversations.FindConversationByID(ctx, userID, id)
	if err != nil {
		return nil, nil, err
	}
	msgs, err := s.Conversations.FindMessages(ctx, conv.ID)
	if err != nil {
		return nil, nil, err
	}
	return conv, msgs, nil
}

// History lists the conversations of userID, most recently updated first.
func (s *Session) History(ctx context.Context, userID string) ([]*pilot.Conversation, error) {
	return s.Conversations.FindConversations(ctx, userID)
}

func (s *Session) validate(_ context.Context, t *turn) error {
	if t.userID == "" {
		return pilot.Errorf(pilot.EUNAUTHORIZED, "user required")
	}
	if strings.TrimSpace(t.req.Message) == "" {
		return pilot.Errorf(pilot.EINVALID, "message required")
	}
	return nil
}

func (s *Session) resolveConversation(ctx context.Context, t *turn) error {
	if t.req.ConversationID != "" {
		conv, err := s.Conversations.FindConversationByID(ctx, t.userID, t.req.ConversationID)
		if err != nil {
			return err
		}
		t.conv = conv
		return nil
	}

	conv := &pilot.Conversation{UserID: t.userID, Title: Title(t.req.Message)}
	if err := s.Conversations.CreateConversation(ctx, conv); err != nil {
		return err
	}
	t.conv = conv
	return nil
}

func (s *Session) appendUserMessage(ctx context.Context, t *turn) error {
	return s.Conversations.CreateMessage(ctx, &pilot.Message{
		ConversationID: t.conv.ID,
		Role:           pilot.RoleUser,
		Content:        t.req.Message,
		Context:        t.req.Context,
	})
}

func (s *Session) loadHistory(ctx context.Context, t *turn) error {
	history, err := s.Conversations.FindMessages(ctx, t.conv.ID)
	if err != nil {
		return err
	}
	t.history = history
	return nil
}

func (s *Session) assembleContext(ctx context.Context, t *turn) error {
	responses, err := s.Checklist.FindChecklistResponses(ctx, t.userID)
	if err != nil {
		return err
	}
	t.prompt = pilot.BuildSystemPrompt(t.req.Context, responses)
	return nil
}

func (s *Session) respond(ctx context.Context, t *turn) error {
	t.reply = s.Responder.Respond(ctx, t.req.Message, t.history, t.prompt)
	return nil
}

func (s *Session) appendReply(ctx context.Context, t *turn) error {
	return s.Conversations.CreateMessage(ctx, &pilot.Message{
		ConversationID: t.conv.ID,
		Role:           pilot.RoleAssistant,
		Content:        t.reply,
		Context:        t.req.Context,
	})
}

func (s *Session) touchConversation(ctx context.Context, t *turn) error {
	return s.Conversations.TouchConversation(ctx, t.conv.ID)
}

func (s *Session) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}

// Title derives a conversation title from its first message.
func Title(message string) string {
	r := []rune(message)
	if len(r) > TitleLength {
		r = r[:TitleLength]
	}
	return string(r) + pilot.Ellipsis
}

// stageError keeps application errors as they are and reports anything else
// as an internal failure of the named stage.
func stageError(name string, err error) error {
	switch pilot.ErrorCode(err) {
	case pilot.EINVALID, pilot.ENOTFOUND, pilot.EUNAUTHORIZED:
		return err
	}
	return fmt.Errorf("%s: %w", name, &pilot.Error{
		Code:    pilot.EINTERNAL,
		Message: err.Error(),
	})
}
