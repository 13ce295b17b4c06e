package mcpserver

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"stylusnotes/internal/domain"
)

func (s *Server) registerNoteTools() {
	s.mcp.AddTool(mcp.NewTool("new_canvas",
		mcp.WithDescription("Start a fresh blank canvas not bound to any note. Unsaved drawing is discarded."),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleNewCanvas)

	s.mcp.AddTool(mcp.NewTool("open_note",
		mcp.WithDescription("Load a saved note into the canvas so it can be edited and saved back"),
		mcp.WithString("noteId", mcp.Description("Note ID"), mcp.Required()),
	), s.handleOpenNote)

	s.mcp.AddTool(mcp.NewTool("save_note",
		mcp.WithDescription("Save the canvas. Updates the open note, or creates a new note (and clears the canvas) when none is open or asNew is set."),
		mcp.WithString("title", mcp.Description("Note title (defaults to Untitled on create, unchanged on update)")),
		mcp.WithString("folder", mcp.Description("Folder, e.g. Default, Work, Personal")),
		mcp.WithString("noteId", mcp.Description("Note to update (optional, defaults to the open note)")),
		mcp.WithBoolean("asNew", mcp.Description("Always create a new note")),
	), s.handleSaveNote)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List saved notes, pinned first then newest"),
		mcp.WithString("folder", mcp.Description("Only notes in this folder (optional)")),
	), s.handleListNotes)

	s.mcp.AddTool(mcp.NewTool("delete_note",
		mcp.WithDescription("🛑 DESTRUCTIVE: Delete a note and its image"),
		mcp.WithString("noteId", mcp.Description("Note ID to delete"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteNote)

	s.mcp.AddTool(mcp.NewTool("pin_note",
		mcp.WithDescription("Pin or unpin a note"),
		mcp.WithString("noteId", mcp.Description("Note ID"), mcp.Required()),
		mcp.WithBoolean("pinned", mcp.Description("true to pin, false to unpin"), mcp.Required()),
	), s.handlePinNote)

	s.mcp.AddTool(mcp.NewTool("tag_note",
		mcp.WithDescription("Replace a note's tags"),
		mcp.WithString("noteId", mcp.Description("Note ID"), mcp.Required()),
		mcp.WithString("tags", mcp.Description("Comma-separated tags; empty clears them"), mcp.Required()),
	), s.handleTagNote)

	s.mcp.AddTool(mcp.NewTool("export_png",
		mcp.WithDescription("Return a note's image, or the live canvas when noteId is omitted, as PNG"),
		mcp.WithString("noteId", mcp.Description("Note ID (optional)")),
	), s.handleExportPNG)
}

type noteSummary struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Folder string   `json:"folder"`
	Tags   []string `json:"tags"`
	Pinned bool     `json:"pinned"`
	Width  int      `json:"width"`
	Height int      `json:"height"`
}

func summarize(n domain.StylusNote) noteSummary {
	return noteSummary{
		ID:     n.ID,
		Title:  n.Title,
		Folder: n.Folder,
		Tags:   n.Tags,
		Pinned: n.Pinned,
		Width:  n.Width,
		Height: n.Height,
	}
}

func (s *Server) handleNewCanvas(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.stylus.NewCanvas(ctx))
}

func (s *Server) handleOpenNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireString(req.GetArguments(), "noteId")
	if err != nil {
		return nil, err
	}
	note, err := s.stylus.OpenNote(ctx, id)
	if err != nil {
		return nil, err
	}
	return jsonResult(summarize(*note))
}

func (s *Server) handleSaveNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	meta := domain.NoteMetadata{
		Title:  stringArg(args, "title"),
		Folder: stringArg(args, "folder"),
		NoteID: stringArg(args, "noteId"),
	}
	if meta.NoteID == "" && !boolArg(args, "asNew") {
		meta.NoteID = s.stylus.CurrentNoteID()
	}
	if boolArg(args, "asNew") {
		meta.NoteID = ""
	}

	note, err := s.stylus.Save(ctx, meta)
	if err != nil {
		return nil, fmt.Errorf("save note: %w", err)
	}
	return jsonResult(map[string]any{
		"created": meta.IsCreate(),
		"note":    summarize(*note),
	})
}

func (s *Server) handleListNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	notes, err := s.stylus.ListNotes(ctx, stringArg(req.GetArguments(), "folder"))
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	out := make([]noteSummary, 0, len(notes))
	for _, n := range notes {
		out = append(out, summarize(n))
	}
	return jsonResult(out)
}

func (s *Server) handleDeleteNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireString(req.GetArguments(), "noteId")
	if err != nil {
		return nil, err
	}
	if err := s.stylus.DeleteNote(ctx, id); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Note %s deleted", id)), nil
}

func (s *Server) handlePinNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := requireString(args, "noteId")
	if err != nil {
		return nil, err
	}
	note, err := s.stylus.SetPinned(ctx, id, boolArg(args, "pinned"))
	if err != nil {
		return nil, err
	}
	return jsonResult(summarize(*note))
}

func (s *Server) handleTagNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := requireString(args, "noteId")
	if err != nil {
		return nil, err
	}
	note, err := s.stylus.SetTags(ctx, id, splitTags(stringArg(args, "tags")))
	if err != nil {
		return nil, err
	}
	return jsonResult(summarize(*note))
}

func (s *Server) handleExportPNG(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := stringArg(req.GetArguments(), "noteId")
	data, err := s.stylus.ExportPNG(ctx, id)
	if err != nil {
		return nil, err
	}
	label := "Live canvas"
	if id != "" {
		label = "Note " + id
	}
	return mcp.NewToolResultImage(label, base64.StdEncoding.EncodeToString(data), "image/png"), nil
}
