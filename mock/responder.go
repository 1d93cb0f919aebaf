package mock

import (
	"context"

	"github.com/fwojciec/pilot"
)

var _ pilot.Responder = (*Responder)(nil)

// Responder is a mock implementation of pilot.Responder.
type Responder struct {
	RespondFn func(ctx context.Context, message string, history []*pilot.Message, systemPrompt string) string
}

func (r *Responder) Respond(ctx context.Context, message string, history []*pilot.Message, systemPrompt string) string {
	return r.RespondFn(ctx, message, history, systemPrompt)
}
