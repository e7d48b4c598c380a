// Package vectordb maintains one similarity index per ingested document.
package vectordb

import "context"

// IndexFileName is the file each persisted document index is stored under,
// inside the document's artifact directory.
const IndexFileName = "index.gob.gz"

// Chunk is one retrievable text fragment of a document.
type Chunk struct {
	ID       string
	Content  string
	Metadata ChunkMetadata
}

// ChunkMetadata ties a chunk back to its source document.
type ChunkMetadata struct {
	DocumentID string
	Title      string
	Position   int
}

// Retrieved pairs a chunk with its similarity score for a query.
type Retrieved struct {
	Chunk
	Similarity float32
}

// Index is the retrieval handle over one document's chunks.
type Index interface {
	// Add inserts or updates chunks in the index.
	Add(ctx context.Context, chunks []Chunk) error

	// Retrieve returns the top limit chunks most similar to the query.
	Retrieve(ctx context.Context, query string, limit int) ([]Retrieved, error)

	// Persist writes the index to the given file path.
	Persist(ctx context.Context, path string) error

	// Count returns the number of chunks in the index.
	Count() int
}
