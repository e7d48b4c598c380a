// Package mcp exposes the library over the Model Context Protocol so
// external AI agents can search documents and talk to saved assistants.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	agentspkg "github.com/libroteca/libroteca/internal/agents"
	"github.com/libroteca/libroteca/internal/chat"
	"github.com/libroteca/libroteca/internal/library"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes library tools.
type Server struct {
	lib    *library.Registry
	agents *agentspkg.Registry
	chat   *chat.Service
	mcp    *server.MCPServer
}

// NewServer creates an MCP server over the given stores.
func NewServer(lib *library.Registry, agents *agentspkg.Registry, chatService *chat.Service) *Server {
	s := &Server{
		lib:    lib,
		agents: agents,
		chat:   chatService,
	}

	s.mcp = server.NewMCPServer(
		"libroteca",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers.
func (s *Server) registerTools() {
	s.mcp.AddTool(searchLibraryTool, s.handleSearchLibrary)
	s.mcp.AddTool(getDocumentTool, s.handleGetDocument)
	s.mcp.AddTool(listAgentsTool, s.handleListAgents)
	s.mcp.AddTool(askAgentTool, s.handleAskAgent)
}

// Serve starts the MCP server on stdio. Stdout carries MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
