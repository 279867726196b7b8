// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes note rendering and sharing tools via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/noteshare/internal/apperr"
	"github.com/starford/noteshare/internal/share"
	"github.com/starford/noteshare/internal/storage"
)

// Server wraps the MCP server with the share tools.
type Server struct {
	mcp               *server.MCPServer
	svc               *share.Service
	out               *storage.FS
	defaultExpiration int
}

// New creates a new MCP server with all tools registered. Exports are written
// below out.
func New(svc *share.Service, out *storage.FS, defaultExpiration int) *Server {
	if defaultExpiration == 0 {
		defaultExpiration = share.DefaultExpirationDays
	}
	s := &Server{svc: svc, out: out, defaultExpiration: defaultExpiration}

	s.mcp = server.NewMCPServer(
		"Noteshare",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("render_note_html",
		mcp.WithDescription("Render a note to a standalone HTML document with attachments embedded. "+
			"Nothing is saved."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id (32 lowercase hex characters)")),
		mcp.WithString("type", mcp.Description("Share type: public (default) or encrypted"), mcp.Enum(share.TypePublic, share.TypeEncrypted)),
		mcp.WithString("password", mcp.Description("Password for encrypted output; generated when empty")),
	), s.renderNoteHTML)

	s.mcp.AddTool(mcp.NewTool("share_note",
		mcp.WithDescription("Render a note and save it as an HTML file in the share directory. "+
			"Read "+ShareGuideURI+" for the meaning of the settings."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id (32 lowercase hex characters)")),
		mcp.WithString("type", mcp.Description("Share type: public (default) or encrypted"), mcp.Enum(share.TypePublic, share.TypeEncrypted)),
		mcp.WithNumber("expiration", mcp.Description("Validity in days (1-365)")),
		mcp.WithString("path", mcp.Description("File name relative to the share directory")),
		mcp.WithString("password", mcp.Description("Password for encrypted shares; generated when empty")),
	), s.shareNote)

	s.mcp.AddTool(mcp.NewTool("export_note_json",
		mcp.WithDescription("Export the raw note, its attachment metadata and attachment files as JSON."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id (32 lowercase hex characters)")),
		mcp.WithString("dir", mcp.Description("Directory relative to the share directory; defaults to the note id")),
	), s.exportNoteJSON)

	s.mcp.AddResource(
		mcp.NewResource(ShareGuideURI, "Note Share Guide",
			mcp.WithResourceDescription("How shared notes are rendered and what the share settings mean."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readShareGuide,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) settings(req mcp.CallToolRequest) (share.Settings, error) {
	days := req.GetInt("expiration", 0)
	if days == 0 {
		days = s.defaultExpiration
	}
	return share.ParseSettings(req.GetString("type", ""), strconv.Itoa(days))
}

func (s *Server) renderNoteHTML(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	settings, err := s.settings(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Build(ctx, id, settings, req.GetString("password", ""))
	if err != nil {
		return toolError(id, err), nil
	}
	if res.Password != "" {
		return mcp.NewToolResultText(fmt.Sprintf("password: %s\n\n%s", res.Password, res.HTML)), nil
	}
	return mcp.NewToolResultText(res.HTML), nil
}

func (s *Server) shareNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	settings, err := s.settings(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Share(ctx, id, settings, share.Options{
		Path:     req.GetString("path", ""),
		Password: req.GetString("password", ""),
	})
	if err != nil {
		return toolError(id, err), nil
	}
	out, _ := json.MarshalIndent(res, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) exportNoteJSON(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dir := req.GetString("dir", id)
	abs, err := s.out.Abs(dir)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sink, err := storage.EnsureFS(abs)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.ExportJSON(ctx, id, sink)
	if err != nil {
		return toolError(id, err), nil
	}
	out, _ := json.MarshalIndent(struct {
		Dir string `json:"dir"`
		*share.ExportResult
	}{Dir: abs, ExportResult: res}, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readShareGuide(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ShareGuideURI,
			MIMEType: "text/markdown",
			Text:     ShareGuide,
		},
	}, nil
}

func toolError(id string, err error) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("note not found: %s", id))
	}
	return mcp.NewToolResultError(err.Error())
}
