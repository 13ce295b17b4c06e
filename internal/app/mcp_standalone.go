package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"stylusnotes/internal/config"
	mcpserver "stylusnotes/internal/mcp"
)

// ServeMCP runs the app as an MCP server on stdin/stdout until the client
// disconnects or the process is interrupted.
func ServeMCP(cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a := New(cfg)
	if err := a.Startup(ctx); err != nil {
		return fmt.Errorf("startup: %w", err)
	}
	defer a.Shutdown(context.Background())

	mcpSrv := mcpserver.New(mcpserver.Deps{Stylus: a.Stylus()})
	a.AttachEvents(mcpSrv)

	if err := a.StartBackground(ctx); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- mcpSrv.ServeStdio() }()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("mcp server: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Println("[MCP] Interrupted, shutting down")
		return nil
	}
}
