package vectordb

import (
	"context"
	"fmt"
	"strconv"

	chromem "github.com/philippgille/chromem-go"

	"github.com/libroteca/libroteca/internal/embeddings"
)

const collectionName = "document"

// addConcurrency bounds parallel embedding calls while adding chunks.
const addConcurrency = 4

// ChromemIndex implements Index using chromem-go, one collection per
// document, persisted as a compressed gob file.
type ChromemIndex struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedFunc  chromem.EmbeddingFunc
}

// NewChromemIndex creates an empty in-memory index for a document.
func NewChromemIndex(embedder embeddings.Embedder) (*ChromemIndex, error) {
	db := chromem.NewDB()
	ef := embeddings.ToChromemFunc(embedder)

	col, err := db.GetOrCreateCollection(collectionName, nil, ef)
	if err != nil {
		return nil, fmt.Errorf("creating collection: %w", err)
	}

	return &ChromemIndex{db: db, collection: col, embedFunc: ef}, nil
}

// OpenChromemIndex restores a persisted document index from path.
func OpenChromemIndex(path string, embedder embeddings.Embedder) (*ChromemIndex, error) {
	db := chromem.NewDB()
	ef := embeddings.ToChromemFunc(embedder)

	if err := db.ImportFromFile(path, ""); err != nil {
		return nil, fmt.Errorf("importing index from %s: %w", path, err)
	}

	col := db.GetCollection(collectionName, ef)
	if col == nil {
		return nil, fmt.Errorf("collection %q not found in %s", collectionName, path)
	}

	return &ChromemIndex{db: db, collection: col, embedFunc: ef}, nil
}

func (x *ChromemIndex) Add(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	docs := make([]chromem.Document, len(chunks))
	for i, c := range chunks {
		docs[i] = chromem.Document{
			ID:      c.ID,
			Content: c.Content,
			Metadata: map[string]string{
				"document_id": c.Metadata.DocumentID,
				"title":       c.Metadata.Title,
				"position":    strconv.Itoa(c.Metadata.Position),
			},
		}
	}

	return x.collection.AddDocuments(ctx, docs, addConcurrency)
}

func (x *ChromemIndex) Retrieve(ctx context.Context, query string, limit int) ([]Retrieved, error) {
	if limit <= 0 {
		limit = 5
	}

	// chromem-go requires nResults <= collection size.
	count := x.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if limit > count {
		limit = count
	}

	results, err := x.collection.Query(ctx, query, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}

	retrieved := make([]Retrieved, len(results))
	for i, r := range results {
		position, _ := strconv.Atoi(r.Metadata["position"])
		retrieved[i] = Retrieved{
			Chunk: Chunk{
				ID:      r.ID,
				Content: r.Content,
				Metadata: ChunkMetadata{
					DocumentID: r.Metadata["document_id"],
					Title:      r.Metadata["title"],
					Position:   position,
				},
			},
			Similarity: r.Similarity,
		}
	}

	return retrieved, nil
}

func (x *ChromemIndex) Persist(ctx context.Context, path string) error {
	if err := x.db.ExportToFile(path, true, ""); err != nil {
		return fmt.Errorf("exporting index to %s: %w", path, err)
	}
	return nil
}

func (x *ChromemIndex) Count() int {
	return x.collection.Count()
}
