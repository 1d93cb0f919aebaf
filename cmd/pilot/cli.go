package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/pilot"
	"github.com/fwojciec/pilot/assistant"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx          context.Context
	Stdout       io.Writer
	Stderr       io.Writer
	Logger       *slog.Logger
	Index        *pilot.Index
	Converter    pilot.Converter
	Assistant    *assistant.Session
	Checklist    pilot.ChecklistService
	ChecklistDef *pilot.Checklist
	Users        pilot.UserService
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	DB           string `name:"db" env:"PILOT_DB" default:"${default_db}" help:"SQLite database path"`
	DataDir      string `name:"data-dir" env:"PILOT_DATA_DIR" default:"data" help:"Directory holding etude-<version>.json and checklist.json"`
	Env          string `name:"env" env:"PILOT_ENV" default:"development" help:"Environment (prod switches to JSON logs)"`
	GeminiAPIKey string `name:"gemini-api-key" env:"GEMINI_API_KEY" help:"Gemini API key; offline responses are used when empty"`
	Model        string `name:"model" env:"PILOT_MODEL" default:"gemini-2.5-flash" help:"Gemini model"`
	Verbose      bool   `short:"V" help:"Enable debug logging"`

	Serve   ServeCmd   `cmd:"" help:"Serve the HTTP API"`
	Search  SearchCmd  `cmd:"" help:"Search the market studies"`
	Section SectionCmd `cmd:"" help:"Show a study section as Markdown"`
	Ask     AskCmd     `cmd:"" help:"Ask the assistant a question"`
	History HistoryCmd `cmd:"" help:"List a user's conversations"`
	User    UserCmd    `cmd:"" help:"Manage users"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr string `env:"PILOT_ADDR" default:":3000" help:"Listen address"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Query   string `arg:"" help:"Text to search for"`
	Version string `short:"v" help:"Restrict the search to one study version"`
}

// SectionCmd is the "section" subcommand.
type SectionCmd struct {
	Version string `arg:"" help:"Study version"`
	ID      string `arg:"" help:"Section ID"`
}

// AskCmd is the "ask" subcommand.
type AskCmd struct {
	Message      string `arg:"" help:"Message to send"`
	Conversation string `short:"c" help:"Continue an existing conversation"`
	Context      string `help:"Page or section the question is about"`
	User         string `short:"u" default:"local" help:"User ID owning the conversation"`
}

// HistoryCmd is the "history" subcommand.
type HistoryCmd struct {
	User string `short:"u" default:"local" help:"User ID"`
}

// UserCmd groups the user subcommands.
type UserCmd struct {
	Create UserCreateCmd `cmd:"" help:"Create a user"`
}

// UserCreateCmd is the "user create" subcommand.
type UserCreateCmd struct {
	Email    string `arg:"" help:"Email address"`
	Password string `arg:"" help:"Password"`
	Name     string `arg:"" help:"Display name"`
}
