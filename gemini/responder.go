// Package gemini provides a pilot.Responder backed by Google Gemini.
package gemini

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/fwojciec/pilot"
	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// DefaultTimeout bounds a single model call.
const DefaultTimeout = 30 * time.Second

// Ensure Responder implements pilot.Responder at compile time.
var _ pilot.Responder = (*Responder)(nil)

// Generator generates content from a model. *genai.Models satisfies it.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Responder implements pilot.Responder using Google Gemini. Each reply is a
// single attempt; when it fails, times out or comes back empty the message
// is answered by Fallback instead.
type Responder struct {
	gen      Generator
	model    string
	fallback pilot.Responder

	// Timeout bounds each model call. Zero means DefaultTimeout.
	Timeout time.Duration

	// Logger receives model failures. Nil discards them.
	Logger *slog.Logger
}

// NewResponder creates a new Responder using client's models service.
func NewResponder(client *genai.Client, model string, fallback pilot.Responder) *Responder {
	return NewResponderWithGenerator(client.Models, model, fallback)
}

// NewResponderWithGenerator creates a new Responder on top of gen.
func NewResponderWithGenerator(gen Generator, model string, fallback pilot.Responder) *Responder {
	if model == "" {
		model = DefaultModel
	}
	return &Responder{gen: gen, model: model, fallback: fallback}
}

// Respond asks the model for a reply, falling back on any failure.
func (r *Responder) Respond(ctx context.Context, message string, history []*pilot.Message, systemPrompt string) string {
	text, err := r.generate(ctx, message, history, systemPrompt)
	if err != nil {
		r.logger().Warn("gemini call failed, using fallback",
			"model", r.model,
			"err", err,
		)
		return r.fallback.Respond(ctx, message, history, systemPrompt)
	}
	return text
}

func (r *Responder) generate(ctx context.Context, message string, history []*pilot.Message, systemPrompt string) (string, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := r.gen.GenerateContent(ctx, r.model, BuildContents(message, history), BuildConfig(systemPrompt))
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", pilot.Errorf(pilot.EINTERNAL, "gemini returned nil result")
	}

	text := result.Text()
	if strings.TrimSpace(text) == "" {
		return "", pilot.Errorf(pilot.EINTERNAL, "gemini returned empty text")
	}
	return text, nil
}

func (r *Responder) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.Logger
}

// BuildConfig returns the GenerateContentConfig carrying the system prompt.
func BuildConfig(systemPrompt string) *genai.GenerateContentConfig {
	temp := float32(0.4)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		},
		Temperature:     &temp,
		MaxOutputTokens: 1024,
	}
}

// BuildContents converts the history into model contents in chronological
// order. The message is appended unless it already is the last entry of the
// history, as it is when the caller persisted it before asking.
func BuildContents(message string, history []*pilot.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, m := range history {
		contents = append(contents, genai.NewContentFromText(m.Content, role(m.Role)))
	}
	if len(history) == 0 || history[len(history)-1].Content != message {
		contents = append(contents, genai.NewContentFromText(message, genai.RoleUser))
	}
	return contents
}

// role maps a message role to its Gemini equivalent.
func role(r string) genai.Role {
	if r == pilot.RoleAssistant {
		return genai.RoleModel
	}
	return genai.RoleUser
}
