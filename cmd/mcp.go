package cmd

import (
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/libroteca/libroteca/internal/agents"
	"github.com/libroteca/libroteca/internal/chat"
	"github.com/libroteca/libroteca/internal/library"
	"github.com/libroteca/libroteca/internal/mcp"
	"github.com/libroteca/libroteca/internal/taxonomy"
	"github.com/libroteca/libroteca/internal/vectordb"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the library over the Model Context Protocol on stdio",
	Long: `Starts an MCP server on stdin/stdout exposing the library to MCP
clients: search_library, get_document, list_agents and ask_agent.
Stdout carries protocol messages, so all logging goes to stderr.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log.SetOutput(os.Stderr)

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		embedder, err := createEmbedderFromConfig(cfg)
		if err != nil {
			return err
		}
		provider, err := createLLMProviderFromConfig(cfg)
		if err != nil {
			return err
		}

		tax, err := taxonomy.Open(filepath.Join(cfg.DataDir, "categories.json"))
		if err != nil {
			return err
		}
		lib, err := library.Open(filepath.Join(cfg.DataDir, "metadata.json"), tax)
		if err != nil {
			return err
		}
		agentReg, err := agents.Open(filepath.Join(cfg.DataDir, "saved_agents.json"))
		if err != nil {
			return err
		}
		transcripts, err := chat.NewTranscriptStore(filepath.Join(cfg.DataDir, "chat_history"))
		if err != nil {
			return err
		}

		opener := func(path string) (vectordb.Index, error) {
			return vectordb.OpenChromemIndex(path, embedder)
		}
		chatService := chat.NewService(agentReg, lib, opener, provider, transcripts, nil)

		mcp.Version = Version
		return mcp.NewServer(lib, agentReg, chatService).Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
