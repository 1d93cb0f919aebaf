package pilot

import "context"

// Responder produces the assistant's reply to a message.
//
// Implementations never fail: any internal error is absorbed and answered
// with a fallback reply.
type Responder interface {
	// Respond returns a reply to message given the conversation history in
	// creation order and the system prompt built by BuildSystemPrompt.
	Respond(ctx context.Context, message string, history []*Message, systemPrompt string) string
}
