package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("sketch",
		mcp.WithPromptDescription("Guide through sketching a figure on the stylus canvas and saving it as a note"),
		mcp.WithArgument("subject",
			mcp.ArgumentDescription("What to draw"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("folder",
			mcp.ArgumentDescription("Folder to save the note in (optional)"),
		),
	), s.handleSketchPrompt)
}

func (s *Server) handleSketchPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	subject := req.Params.Arguments["subject"]
	folder := req.Params.Arguments["folder"]
	if folder == "" {
		folder = "Default"
	}
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Sketch: %s", subject),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Sketch "%s" on the stylus canvas. Follow these steps:

1. Call get_tool_state to learn the canvas size, then new_canvas if something unrelated is already drawn
2. Block out the main forms with draw_shape (rectangle, circle, line, arrow)
3. Add detail with set_brush + draw_stroke; use pencil for fine lines, marker for fills, spray with dwellMs for texture
4. Use set_style to change colors between parts, and undo if a stroke goes wrong
5. Check the result with export_png, then save_note with title "%s" and folder "%s"

Keep every coordinate inside the canvas bounds.`, subject, subject, folder),
				},
			},
		},
	}, nil
}
