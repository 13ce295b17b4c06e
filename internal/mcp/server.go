package mcpserver

import (
	"context"
	"log"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"stylusnotes/internal/service"
)

// NotificationMethod carries stylus and canvas events to MCP clients.
const NotificationMethod = "notifications/stylus/event"

// maxDwell bounds how long draw_stroke may hold the pointer at one point.
const maxDwell = 5 * time.Second

// Server is the MCP server for the stylus canvas.
// It exposes the toolbar, pointer and note operations as tools so agents can draw.
type Server struct {
	mcp    *server.MCPServer
	stylus *service.StylusService
	sleep  func(time.Duration)
}

// Deps holds the services passed from the App layer to the MCP server.
type Deps struct {
	Stylus *service.StylusService
}

// New creates and configures the MCP server with all tools, resources and prompts.
func New(deps Deps) *Server {
	s := &Server{
		stylus: deps.Stylus,
		sleep:  time.Sleep,
	}

	s.mcp = server.NewMCPServer(
		"stylusnotes-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerToolTools()
	s.registerDrawTools()
	s.registerCanvasTools()
	s.registerNoteTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	log.Println("[MCP] Starting stdio server...")
	return server.ServeStdio(s.mcp)
}

// Emit implements service.EventEmitter by forwarding events to every connected client.
func (s *Server) Emit(_ context.Context, event string, data any) {
	s.mcp.SendNotificationToAllClients(NotificationMethod, map[string]any{
		"event": event,
		"data":  data,
	})
}
