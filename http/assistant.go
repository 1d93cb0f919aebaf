package http

import (
	"github.com/fwojciec/pilot"
	"github.com/fwojciec/pilot/assistant"
	"github.com/gofiber/fiber/v2"
)

// MessageResponse is the body of a successful chat turn.
type MessageResponse struct {
	Success        bool   `json:"success"`
	ConversationID string `json:"conversationId"`
	Response       string `json:"response"`
}

// ConversationResponse is the body of a conversation lookup.
type ConversationResponse struct {
	Conversation *pilot.Conversation `json:"conversation"`
	Messages     []*pilot.Message    `json:"messages"`
}

// handleMessage handles POST /api/assistant/message.
func (s *Server) handleMessage(c *fiber.Ctx) error {
	var req assistant.Request
	if err := c.BodyParser(&req); err != nil {
		return s.Error(c, pilot.Errorf(pilot.EINVALID, "Requête invalide"))
	}

	reply, err := s.Assistant.Send(c.UserContext(), currentUser(c).ID, req)
	if err != nil {
		if pilot.ErrorCode(err) == pilot.EINVALID {
			return s.Error(c, pilot.Errorf(pilot.EINVALID, "Message requis"))
		}
		return s.Error(c, err)
	}

	return c.JSON(MessageResponse{
		Success:        true,
		ConversationID: reply.ConversationID,
		Response:       reply.Response,
	})
}

// handleConversation handles GET /api/assistant/conversation/:id.
func (s *Server) handleConversation(c *fiber.Ctx) error {
	conv, msgs, err := s.Assistant.Conversation(c.UserContext(), currentUser(c).ID, c.Params("id"))
	if err != nil {
		return s.Error(c, err)
	}
	if msgs == nil {
		msgs = []*pilot.Message{}
	}
	return c.JSON(ConversationResponse{Conversation: conv, Messages: msgs})
}

// handleNewConversation handles POST /api/assistant/new.
func (s *Server) handleNewConversation(c *fiber.Ctx) error {
	conv, err := s.Assistant.NewConversation(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return s.Error(c, err)
	}
	return c.JSON(MessageResponse{Success: true, ConversationID: conv.ID})
}

// handleHistory handles GET /api/assistant/history.
func (s *Server) handleHistory(c *fiber.Ctx) error {
	convs, err := s.Assistant.History(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return s.Error(c, err)
	}
	if convs == nil {
		convs = []*pilot.Conversation{}
	}
	return c.JSON(convs)
}
