// Package mcpserver exposes the AI endpoints as MCP tools so other agents can
// summarize, tag and chat through the notes backend.
package mcpserver

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/comigor/notesai/internal/aiclient"
	"github.com/comigor/notesai/internal/logger"
	"github.com/comigor/notesai/internal/render"
)

// Name is the server name announced to MCP clients.
const Name = "notesai"

// Backend is the part of *aiclient.Client the tools call.
type Backend interface {
	Chat(ctx context.Context, req aiclient.ChatRequest) (*aiclient.ChatResponse, error)
	Analyze(ctx context.Context, action aiclient.Action, content string) (*aiclient.AnalysisResponse, error)
	Status(ctx context.Context) (aiclient.Status, error)
}

type tool struct {
	def     mcp.Tool
	handler server.ToolHandlerFunc
}

// Server wraps an MCP server whose tools forward to Backend. Backend failures
// are reported as tool errors, never as protocol errors.
type Server struct {
	backend Backend
	mcp     *server.MCPServer
	tools   []tool
	log     *slog.Logger
}

// New registers every tool on a fresh MCP server.
func New(backend Backend, version string) *Server {
	s := &Server{
		backend: backend,
		mcp:     server.NewMCPServer(Name, version, server.WithToolCapabilities(false)),
		log:     logger.L.With(slog.String("component", "mcpserver")),
	}

	s.register(mcp.NewTool("chat",
		mcp.WithDescription("Send a message to the notes AI assistant. Pass the returned session_id to continue the conversation."),
		mcp.WithString("message", mcp.Required(), mcp.Description("The user message")),
		mcp.WithString("session_id", mcp.Description("Session id from a previous chat call")),
	), s.chat)

	for _, action := range aiclient.Actions {
		s.register(mcp.NewTool(toolName(action),
			mcp.WithDescription(action.Title()+" for the given note content."),
			mcp.WithString("content", mcp.Required(), mcp.Description("Note content to analyze")),
		), s.analyze(action))
	}

	s.register(mcp.NewTool("ai_status",
		mcp.WithDescription("Report the AI service status and model."),
	), s.status)

	return s
}

// toolName maps an action to a tool name: suggest-tags becomes suggest_tags.
func toolName(a aiclient.Action) string {
	return strings.ReplaceAll(string(a), "-", "_")
}

func (s *Server) register(def mcp.Tool, h server.ToolHandlerFunc) {
	s.tools = append(s.tools, tool{def: def, handler: h})
	s.mcp.AddTool(def, h)
}

// Tools lists the registered tool definitions.
func (s *Server) Tools() []mcp.Tool {
	out := make([]mcp.Tool, len(s.tools))
	for i, t := range s.tools {
		out[i] = t.def
	}
	return out
}

// MCP returns the underlying server, e.g. for a non-stdio transport.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// ServeStdio blocks serving MCP over stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) chat(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message, err := request.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sessionID := request.GetString("session_id", "")

	res, err := s.backend.Chat(ctx, aiclient.ChatRequest{Message: message, SessionID: sessionID})
	if err == nil {
		err = res.Err()
	}
	if err != nil {
		return s.toolError("chat", err), nil
	}

	result := mcp.NewToolResultText(res.Content)
	if res.SessionID != "" {
		result.Content = append(result.Content, mcp.NewTextContent("session_id: "+res.SessionID))
	}
	return result, nil
}

func (s *Server) analyze(action aiclient.Action) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		content, err := request.RequireString("content")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		res, err := s.backend.Analyze(ctx, action, content)
		if err == nil {
			err = res.Err()
		}
		if err != nil {
			return s.toolError(toolName(action), err), nil
		}

		md, err := render.AnalysisMarkdown(action, res)
		if err != nil {
			return s.toolError(toolName(action), err), nil
		}
		return mcp.NewToolResultText(md), nil
	}
}

func (s *Server) status(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := s.backend.Status(ctx)
	if err != nil {
		return s.toolError("ai_status", err), nil
	}
	md, err := render.StatusMarkdown(st)
	if err != nil {
		return s.toolError("ai_status", err), nil
	}
	return mcp.NewToolResultText(md), nil
}

func (s *Server) toolError(name string, err error) *mcp.CallToolResult {
	s.log.Warn("tool call failed", "tool", name, "error", err)
	return mcp.NewToolResultError(err.Error())
}
