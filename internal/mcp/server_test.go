package mcp

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	agentspkg "github.com/libroteca/libroteca/internal/agents"
	"github.com/libroteca/libroteca/internal/chat"
	"github.com/libroteca/libroteca/internal/library"
	"github.com/libroteca/libroteca/internal/llm"
	"github.com/libroteca/libroteca/internal/vectordb"
)

type fakeProvider struct{}

func (fakeProvider) Name() string { return "fake" }
func (fakeProvider) Complete(_ context.Context, _ llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return &llm.CompletionResponse{Content: "respuesta", FinishReason: "stop"}, nil
}

type emptyIndex struct{}

func (emptyIndex) Add(context.Context, []vectordb.Chunk) error { return nil }
func (emptyIndex) Retrieve(context.Context, string, int) ([]vectordb.Retrieved, error) {
	return nil, nil
}
func (emptyIndex) Persist(context.Context, string) error { return nil }
func (emptyIndex) Count() int                            { return 0 }

func newTestServer(t *testing.T) (*Server, *library.Registry, *agentspkg.Registry) {
	t.Helper()
	dir := t.TempDir()

	lib, err := library.Open(filepath.Join(dir, "metadata.json"), nil)
	if err != nil {
		t.Fatalf("opening library: %v", err)
	}
	agents, err := agentspkg.Open(filepath.Join(dir, "saved_agents.json"))
	if err != nil {
		t.Fatalf("opening agents: %v", err)
	}
	transcripts, err := chat.NewTranscriptStore(filepath.Join(dir, "chat_history"))
	if err != nil {
		t.Fatalf("opening transcripts: %v", err)
	}

	opener := func(string) (vectordb.Index, error) { return emptyIndex{}, nil }
	chatService := chat.NewService(agents, lib, opener, fakeProvider{}, transcripts, nil)

	return NewServer(lib, agents, chatService), lib, agents
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		tool     mcp.Tool
		wantName string
	}{
		{searchLibraryTool, "search_library"},
		{getDocumentTool, "get_document"},
		{listAgentsTool, "list_agents"},
		{askAgentTool, "ask_agent"},
	}

	for _, tt := range tests {
		t.Run(tt.wantName, func(t *testing.T) {
			if tt.tool.Name != tt.wantName {
				t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.wantName)
			}
			if tt.tool.Description == "" {
				t.Error("tool description should not be empty")
			}
		})
	}
}

func TestHandleSearchLibrary(t *testing.T) {
	srv, lib, _ := newTestServer(t)
	ctx := context.Background()

	if _, err := lib.Insert(
		library.Draft{Title: "Calc I", Author: "Rivas", Year: 2020, Category: "Matemáticas"},
		library.Artifacts{},
	); err != nil {
		t.Fatalf("inserting document: %v", err)
	}

	t.Run("match", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"query": "calc"}

		result, err := srv.handleSearchLibrary(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
	})

	t.Run("no match", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"query": "química"}

		result, err := srv.handleSearchLibrary(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Error("empty results should not be an error")
		}
	})
}

func TestHandleGetDocument(t *testing.T) {
	srv, lib, _ := newTestServer(t)
	ctx := context.Background()

	id, err := lib.Insert(
		library.Draft{Title: "Calc I", Author: "Rivas", Year: 2020},
		library.Artifacts{},
	)
	if err != nil {
		t.Fatalf("inserting document: %v", err)
	}

	t.Run("existing", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"id": id}

		result, err := srv.handleGetDocument(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
	})

	t.Run("absent", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"id": "deadbeef"}

		result, err := srv.handleGetDocument(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for absent document")
		}
	})

	t.Run("missing id", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{}

		result, err := srv.handleGetDocument(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for missing id")
		}
	})
}

func TestHandleListAgents(t *testing.T) {
	srv, _, agents := newTestServer(t)
	ctx := context.Background()

	t.Run("empty", func(t *testing.T) {
		result, err := srv.handleListAgents(ctx, mcp.CallToolRequest{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Error("empty agent list should not be an error")
		}
	})

	t.Run("with agents", func(t *testing.T) {
		if _, err := agents.Save(agentspkg.Draft{
			Name: "Tutor",
			Docs: []agentspkg.DocRef{{Title: "Calc I", ID: "abc"}},
		}); err != nil {
			t.Fatalf("saving agent: %v", err)
		}

		result, err := srv.handleListAgents(ctx, mcp.CallToolRequest{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
	})
}

func TestHandleAskAgentUnknown(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{
		"agent_id": "agent_missing",
		"question": "¿qué es la derivada?",
	}

	result, err := srv.handleAskAgent(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("expected error for unknown agent")
	}
}

func TestHandleAskAgent(t *testing.T) {
	srv, lib, agents := newTestServer(t)
	dir := t.TempDir()

	indexPath := filepath.Join(dir, "index.gob.gz")
	if err := os.WriteFile(indexPath, []byte("index"), 0o644); err != nil {
		t.Fatalf("writing index file: %v", err)
	}

	id, err := lib.Insert(
		library.Draft{Title: "Calc I", Author: "Rivas", Year: 2020},
		library.Artifacts{IndexPath: indexPath},
	)
	if err != nil {
		t.Fatalf("inserting document: %v", err)
	}

	cfg, err := agents.Save(agentspkg.Draft{
		Name: "Tutor",
		Docs: []agentspkg.DocRef{{Title: "Calc I", ID: id}},
	})
	if err != nil {
		t.Fatalf("saving agent: %v", err)
	}

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{
		"agent_id": cfg.ID,
		"question": "¿qué es la derivada?",
	}

	result, err := srv.handleAskAgent(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %v", result.Content)
	}
	if text := resultText(result); !strings.Contains(text, "respuesta") {
		t.Errorf("reply missing provider answer: %q", text)
	}
}

func resultText(res *mcp.CallToolResult) string {
	for _, c := range res.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}
