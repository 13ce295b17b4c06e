package mcpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	notesURI        = "stylus://notes"
	noteImagePrefix = "stylus://notes/"
	noteImageSuffix = "/image"
)

func (s *Server) registerResources() {
	// ── stylus://notes ─────────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		notesURI,
		"All Stylus Notes",
		mcp.WithMIMEType("application/json"),
	), s.handleNotesResource)

	// ── stylus://notes/{noteId}/image ──────────────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			noteImagePrefix+"{noteId}"+noteImageSuffix,
			"Note Image",
			mcp.WithTemplateMIMEType("image/png"),
		),
		s.handleNoteImageResource,
	)
}

func (s *Server) handleNotesResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	notes, err := s.stylus.ListNotes(ctx, "")
	if err != nil {
		return nil, err
	}
	summaries := make([]noteSummary, 0, len(notes))
	for _, n := range notes {
		summaries = append(summaries, summarize(n))
	}

	data, _ := json.MarshalIndent(summaries, "", "  ")
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      notesURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleNoteImageResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	id, ok := noteIDFromImageURI(uri)
	if !ok {
		return nil, fmt.Errorf("invalid note image URI: %s", uri)
	}
	data, err := s.stylus.ExportPNG(ctx, id)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.BlobResourceContents{
			URI:      uri,
			MIMEType: "image/png",
			Blob:     base64.StdEncoding.EncodeToString(data),
		},
	}, nil
}

// noteIDFromImageURI extracts {noteId} from stylus://notes/{noteId}/image.
func noteIDFromImageURI(uri string) (string, bool) {
	rest, ok := strings.CutPrefix(uri, noteImagePrefix)
	if !ok {
		return "", false
	}
	id, ok := strings.CutSuffix(rest, noteImageSuffix)
	if !ok || id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}
