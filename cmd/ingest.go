package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/libroteca/libroteca/internal/ingest"
	"github.com/libroteca/libroteca/internal/library"
	"github.com/libroteca/libroteca/internal/progress"
	"github.com/libroteca/libroteca/internal/taxonomy"
)

var (
	ingestGlob     string
	ingestAuthor   string
	ingestCategory string
	ingestLanguage string
	ingestType     string
	ingestLevel    string
	ingestYear     int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <directory>",
	Short: "Bulk-ingest documents from a directory",
	Long: `Walks a directory, matches files against a glob pattern and ingests
every supported document into the library. Metadata flags apply to all
files in the batch; the title is derived from each filename.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestGlob, "glob", "**/*", "glob pattern relative to the directory")
	ingestCmd.Flags().StringVar(&ingestAuthor, "author", "", "author for all ingested documents (required)")
	ingestCmd.Flags().StringVar(&ingestCategory, "category", "General", "category for all ingested documents")
	ingestCmd.Flags().StringVar(&ingestLanguage, "language", "Español", "language for all ingested documents")
	ingestCmd.Flags().StringVar(&ingestType, "type", "", "document type for all ingested documents")
	ingestCmd.Flags().StringVar(&ingestLevel, "level", "", "difficulty level for all ingested documents")
	ingestCmd.Flags().IntVar(&ingestYear, "year", time.Now().Year(), "publication year for all ingested documents")
	ingestCmd.MarkFlagRequired("author")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	embedder, err := createEmbedderFromConfig(cfg)
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
	coordinator := ingest.NewCoordinator(lib, embedder, cfg.DataDir, cfg.ChunkSize, cfg.ChunkOverlap, nil)

	root := args[0]
	matches, err := doublestar.Glob(os.DirFS(root), ingestGlob)
	if err != nil {
		return fmt.Errorf("matching glob %q: %w", ingestGlob, err)
	}

	var files []string
	for _, rel := range matches {
		if _, ok := ingest.FormatOf(rel); ok {
			files = append(files, rel)
		}
	}
	if len(files) == 0 {
		return fmt.Errorf("no supported documents under %s match %q (supported: %s)",
			root, ingestGlob, strings.Join(ingest.SupportedExtensions(), ", "))
	}

	reporter := progress.NewReporter("Ingesting")
	reporter.Start(len(files))

	var failed int
	for i, rel := range files {
		reporter.Update(i, filepath.Base(rel))

		content, err := os.ReadFile(filepath.Join(root, rel))
		if err != nil {
			log.Printf("cmd: reading %s: %v", rel, err)
			failed++
			continue
		}

		draft := library.Draft{
			Title:    titleFromFilename(rel),
			Author:   ingestAuthor,
			Year:     ingestYear,
			Language: ingestLanguage,
			Category: ingestCategory,
			Type:     ingestType,
			Level:    ingestLevel,
		}
		if _, err := coordinator.Ingest(cmd.Context(), filepath.Base(rel), content, draft); err != nil {
			log.Printf("cmd: ingesting %s: %v", rel, err)
			failed++
			continue
		}
		reporter.Update(i+1, filepath.Base(rel))
	}
	reporter.Finish()

	fmt.Printf("Ingested %d document(s), %d failed.\n", len(files)-failed, failed)
	if failed > 0 {
		return fmt.Errorf("%d document(s) failed to ingest", failed)
	}
	return nil
}

// titleFromFilename turns "notes/calculo_diferencial.md" into
// "calculo diferencial".
func titleFromFilename(rel string) string {
	base := filepath.Base(rel)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.ReplaceAll(base, "_", " ")
	base = strings.ReplaceAll(base, "-", " ")
	return strings.Join(strings.Fields(base), " ")
}
