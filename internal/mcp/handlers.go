package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/libroteca/libroteca/internal/library"
)

// handleSearchLibrary runs a filtered text search over the registry.
func (s *Server) handleSearchLibrary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := request.GetString("query", "")
	filters := library.Filters{
		Category: request.GetString("category", ""),
		Type:     request.GetString("type", ""),
		Level:    request.GetString("level", ""),
	}

	results := s.lib.Search(query, filters)
	if len(results) == 0 {
		return mcp.NewToolResultText("No documents matched."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d document(s):\n", len(results))
	for _, rec := range results {
		fmt.Fprintf(&sb, "\n- %s (%s, %d)\n  id: %s\n  category: %s, type: %s, level: %s\n",
			rec.Title, rec.Author, rec.Year, rec.ID, rec.Category, rec.Type, rec.Level)
		if rec.Description != "" {
			fmt.Fprintf(&sb, "  %s\n", rec.Description)
		}
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleGetDocument returns the full record for an id.
func (s *Server) handleGetDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: id"), nil
	}

	rec := s.lib.Get(id)
	if rec == nil {
		return mcp.NewToolResultError(fmt.Sprintf("no document with id %q", id)), nil
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding document: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// handleListAgents lists saved agents and their document references.
func (s *Server) handleListAgents(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	agents := s.agents.List()
	if len(agents) == 0 {
		return mcp.NewToolResultText("No saved agents."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d saved agent(s):\n", len(agents))
	for _, a := range agents {
		fmt.Fprintf(&sb, "\n- %s (%s)\n  role: %s\n  documents:\n", a.Name, a.ID, a.Role)
		for _, d := range a.Docs {
			fmt.Fprintf(&sb, "    - %s (%s)\n", d.Title, d.ID)
		}
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleAskAgent runs one chat exchange through a saved agent.
func (s *Server) handleAskAgent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	agentID, err := request.RequireString("agent_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: agent_id"), nil
	}
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: question"), nil
	}

	session := s.chat.SessionFor(agentID)
	if session == nil {
		return mcp.NewToolResultError(fmt.Sprintf("no agent with id %q", agentID)), nil
	}

	reply, err := session.Ask(ctx, question)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("asking agent: %v", err)), nil
	}
	return mcp.NewToolResultText(reply.Content), nil
}
