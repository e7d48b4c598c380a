package mcp

import "github.com/mark3labs/mcp-go/mcp"

// searchLibraryTool defines the search_library MCP tool.
var searchLibraryTool = mcp.NewTool("search_library",
	mcp.WithDescription("Search the document library by free text and metadata filters. Returns matching documents with their ids."),
	mcp.WithString("query",
		mcp.Description("Case-insensitive text matched against title, description, author and tags"),
	),
	mcp.WithString("category",
		mcp.Description("Filter by category name"),
	),
	mcp.WithString("type",
		mcp.Description("Filter by document type"),
	),
	mcp.WithString("level",
		mcp.Description("Filter by difficulty level"),
	),
)

// getDocumentTool defines the get_document MCP tool.
var getDocumentTool = mcp.NewTool("get_document",
	mcp.WithDescription("Get the full metadata record of a library document by id."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Document id as returned by search_library"),
	),
)

// listAgentsTool defines the list_agents MCP tool.
var listAgentsTool = mcp.NewTool("list_agents",
	mcp.WithDescription("List the saved chat agents with their document references."),
)

// askAgentTool defines the ask_agent MCP tool.
var askAgentTool = mcp.NewTool("ask_agent",
	mcp.WithDescription("Ask a saved agent a question. Retrieval runs over the agent's documents and the exchange is recorded in its transcript."),
	mcp.WithString("agent_id",
		mcp.Required(),
		mcp.Description("Agent id as returned by list_agents"),
	),
	mcp.WithString("question",
		mcp.Required(),
		mcp.Description("The question to ask"),
	),
)
