// Package ingest turns uploaded document files into registered library
// entries: text extraction, chunking, embedding into a per-document
// vector index, preview rendering and artifact storage. A document is
// only registered once every one of those steps has succeeded.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/libroteca/libroteca/internal/embeddings"
	"github.com/libroteca/libroteca/internal/library"
	"github.com/libroteca/libroteca/internal/vectordb"
)

// Tagged ingestion failures, distinguishable by errors.Is.
var (
	ErrUnsupportedFormat  = errors.New("unsupported document format")
	ErrEmptyDocument      = errors.New("document has no extractable text")
	ErrIncompleteMetadata = errors.New("title, author and year are required")
)

// charsPerPage is the rough character count of one printed page, used
// to estimate page counts for formats that carry no pagination.
const charsPerPage = 1800

// EventRecorder receives a notification for each registered document.
// The activity log satisfies this.
type EventRecorder interface {
	Record(action, scope, scopeID, summary string)
}

// Coordinator runs the ingestion pipeline and registers the result.
type Coordinator struct {
	registry *library.Registry
	embedder embeddings.Embedder
	dataDir  string
	chunker  *Chunker
	events   EventRecorder
}

// NewCoordinator wires the pipeline together. Artifacts are written
// under dataDir/processed_docs. events may be nil.
func NewCoordinator(registry *library.Registry, embedder embeddings.Embedder, dataDir string, chunkSize, chunkOverlap int, events EventRecorder) *Coordinator {
	return &Coordinator{
		registry: registry,
		embedder: embedder,
		dataDir:  dataDir,
		chunker:  NewChunker(chunkSize, chunkOverlap),
		events:   events,
	}
}

// Ingest processes one uploaded file and registers it in the library.
// The registry is only touched after extraction, chunking, embedding
// and artifact persistence have all succeeded; any failure before that
// leaves the library unchanged and removes partial artifacts.
func (c *Coordinator) Ingest(ctx context.Context, filename string, content []byte, draft library.Draft) (*library.Record, error) {
	format, ok := FormatOf(filename)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}
	if draft.Title == "" || draft.Author == "" || draft.Year == 0 {
		return nil, ErrIncompleteMetadata
	}

	text, err := ExtractText(format, content)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, ErrEmptyDocument
	}

	docID := library.ComputeID(draft.Title, draft.Author, draft.Year)
	pieces := c.chunker.Split(text)

	chunks := make([]vectordb.Chunk, len(pieces))
	for i, p := range pieces {
		chunks[i] = vectordb.Chunk{
			ID:      docID + ":" + strconv.Itoa(i),
			Content: p,
			Metadata: vectordb.ChunkMetadata{
				DocumentID: docID,
				Title:      draft.Title,
				Position:   i,
			},
		}
	}

	index, err := vectordb.NewChromemIndex(c.embedder)
	if err != nil {
		return nil, err
	}
	if err := index.Add(ctx, chunks); err != nil {
		return nil, fmt.Errorf("embedding chunks: %w", err)
	}

	// Artifacts are written to a staging directory first so a failed
	// re-ingest never clobbers the committed artifacts of an earlier run.
	parent := filepath.Join(c.dataDir, "processed_docs")
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return nil, fmt.Errorf("creating document directory: %w", err)
	}
	staging, err := os.MkdirTemp(parent, ".staging-")
	if err != nil {
		return nil, fmt.Errorf("creating staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	originalName := "original_" + filepath.Base(filename)
	if err := os.WriteFile(filepath.Join(staging, originalName), content, 0o644); err != nil {
		return nil, fmt.Errorf("storing original file: %w", err)
	}

	preview, err := RenderPreview(format, draft.Title, content)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(staging, "preview.html"), preview, 0o644); err != nil {
		return nil, fmt.Errorf("storing preview: %w", err)
	}

	if err := index.Persist(ctx, filepath.Join(staging, vectordb.IndexFileName)); err != nil {
		return nil, err
	}

	// Swap the staged artifacts into place, keeping any previous version
	// aside until the registry write has succeeded.
	docDir := filepath.Join(parent, safeTitle(draft.Title))
	prevDir := docDir + ".prev"
	hadPrev := false
	if _, err := os.Stat(docDir); err == nil {
		os.RemoveAll(prevDir)
		if err := os.Rename(docDir, prevDir); err != nil {
			return nil, fmt.Errorf("moving previous artifacts aside: %w", err)
		}
		hadPrev = true
	}
	if err := os.Rename(staging, docDir); err != nil {
		if hadPrev {
			os.Rename(prevDir, docDir)
		}
		return nil, fmt.Errorf("installing document artifacts: %w", err)
	}

	id, err := c.registry.Insert(draft, library.Artifacts{
		IndexPath:    filepath.Join(docDir, vectordb.IndexFileName),
		OriginalPath: filepath.Join(docDir, originalName),
		PreviewPath:  filepath.Join(docDir, "preview.html"),
		Pages:        len(text)/charsPerPage + 1,
		Chunks:       len(chunks),
		FileSize:     int64(len(content)),
	})
	if err != nil {
		os.RemoveAll(docDir)
		if hadPrev {
			os.Rename(prevDir, docDir)
		}
		return nil, err
	}
	if hadPrev {
		os.RemoveAll(prevDir)
	}

	log.Printf("ingest: registered %q (%s, %d chunks)", draft.Title, id, len(chunks))
	if c.events != nil {
		c.events.Record("document_ingested", "document", id, draft.Title)
	}
	return c.registry.Get(id), nil
}

// safeTitle converts a document title into a filesystem-friendly
// directory name.
func safeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "untitled"
	}
	return b.String()
}
