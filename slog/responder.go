// Package slog provides logging decorators for pilot services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/pilot"
)

// Ensure LoggingResponder implements pilot.Responder.
var _ pilot.Responder = (*LoggingResponder)(nil)

// LoggingResponder wraps a Responder with logging of each reply.
type LoggingResponder struct {
	next   pilot.Responder
	logger *slog.Logger
}

// NewLoggingResponder creates a new LoggingResponder.
func NewLoggingResponder(next pilot.Responder, logger *slog.Logger) *LoggingResponder {
	return &LoggingResponder{next: next, logger: logger}
}

// Respond delegates to the wrapped responder and logs the operation.
func (r *LoggingResponder) Respond(ctx context.Context, message string, history []*pilot.Message, systemPrompt string) (reply string) {
	defer func(begin time.Time) {
		r.logger.Info("assistant reply",
			"history", len(history),
			"prompt_len", len(systemPrompt),
			"reply_len", len(reply),
			"duration", time.Since(begin),
		)
	}(time.Now())
	return r.next.Respond(ctx, message, history, systemPrompt)
}
