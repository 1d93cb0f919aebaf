package main

import (
	"context"
	"time"

	pilothttp "github.com/fwojciec/pilot/http"
	"golang.org/x/sync/errgroup"
)

// shutdownTimeout bounds the graceful shutdown of the HTTP server.
const shutdownTimeout = 10 * time.Second

// Run executes the serve command. It serves until the context is canceled.
func (c *ServeCmd) Run(deps *Dependencies) error {
	server := pilothttp.NewServer(pilothttp.WithRequestLog(deps.Stderr))
	server.Index = deps.Index
	server.Assistant = deps.Assistant
	server.Checklist = deps.Checklist
	server.ChecklistDef = deps.ChecklistDef
	server.Users = deps.Users
	server.Logger = deps.Logger

	g, ctx := errgroup.WithContext(deps.Ctx)
	g.Go(func() error {
		return server.Listen(c.Addr)
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
