package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/pilot"
	"github.com/fwojciec/pilot/assistant"
	"github.com/fwojciec/pilot/fs"
	"github.com/fwojciec/pilot/gemini"
	"github.com/fwojciec/pilot/htmltomarkdown"
	pilotslog "github.com/fwojciec/pilot/slog"
	"github.com/fwojciec/pilot/sqlite"
	"github.com/joho/godotenv"
	"google.golang.org/genai"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing.
	ConversationService pilot.ConversationService
	ChecklistService    pilot.ChecklistService
	UserService         pilot.UserService
}

// NewMain returns a new instance of Main.
func NewMain() *Main {
	return &Main{}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("pilot"),
		kong.Description("Market-study browser, checklist tracker and assistant."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
		kong.Vars{"default_db": defaultDBPath()},
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'pilot --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd = strings.Fields(kongCtx.Command())[0]

	deps.Logger = NewLogger(cli.Env, stderr, cli.Verbose)

	// Study-only commands need no database.
	if cmd == "search" || cmd == "section" || cmd == "serve" {
		idx, err := pilot.LoadIndex(ctx, fs.NewStudyStore(cli.DataDir))
		if err != nil {
			return fmt.Errorf("failed to load studies from %q: %w", cli.DataDir, err)
		}
		for _, v := range idx.Versions() {
			doc, _ := idx.Document(v)
			deps.Logger.Debug("study loaded",
				"version", doc.Version,
				"sections", len(doc.Sections),
				"checksum", doc.Checksum,
			)
		}
		deps.Index = idx
		deps.Converter = htmltomarkdown.NewConverter()
	}
	if cmd == "search" || cmd == "section" {
		return kongCtx.Run(deps)
	}

	m.DB = sqlite.NewDB(cli.DB)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set PILOT_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", cli.DB, err)
	}
	defer m.Close()

	m.ConversationService = pilotslog.NewLoggingConversationService(
		sqlite.NewConversationService(m.DB), deps.Logger)
	m.ChecklistService = sqlite.NewChecklistService(m.DB)
	m.UserService = sqlite.NewUserService(m.DB)
	deps.Users = m.UserService
	deps.Checklist = m.ChecklistService

	deps.Assistant = &assistant.Session{
		Conversations: m.ConversationService,
		Checklist:     m.ChecklistService,
		Logger:        deps.Logger,
	}

	// Only commands that send messages need a responder.
	if cmd == "ask" || cmd == "serve" {
		responder, err := NewResponder(ctx, cli.GeminiAPIKey, cli.Model, deps.Logger)
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
			return err
		}
		deps.Assistant.Responder = pilotslog.NewLoggingResponder(responder, deps.Logger)
	}

	if cmd == "serve" {
		checklist, err := fs.LoadChecklist(filepath.Join(cli.DataDir, fs.ChecklistFile))
		if err != nil {
			return fmt.Errorf("failed to load checklist: %w", err)
		}
		deps.ChecklistDef = checklist
	}

	return kongCtx.Run(deps)
}

// NewResponder selects the responder for the process: Gemini backed by the
// keyword matcher when an API key is configured, the matcher alone otherwise.
func NewResponder(ctx context.Context, apiKey, model string, logger *slog.Logger) (pilot.Responder, error) {
	matcher := pilot.NewMatcher()
	if apiKey == "" {
		logger.Info("GEMINI_API_KEY not set, using offline responses")
		return matcher, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
	}

	responder := gemini.NewResponder(client, model, matcher)
	responder.Logger = logger
	return responder, nil
}

// NewLogger returns a JSON logger in production and a text logger otherwise.
func NewLogger(env string, w io.Writer, verbose bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	if env == "prod" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "pilot.db"
	}
	dir := filepath.Join(home, ".pilot")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "pilot.db")
}
