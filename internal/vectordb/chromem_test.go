package vectordb

import (
	"context"
	"math"
	"path/filepath"
	"testing"
)

// mockEmbedder returns deterministic embeddings based on text content,
// so tests run without any external embedding service.
type mockEmbedder struct {
	dims int
}

func (m *mockEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))
	for i, text := range texts {
		results[i] = m.deterministicVector(text)
	}
	return results, nil
}

func (m *mockEmbedder) Dimensions() int { return m.dims }
func (m *mockEmbedder) Name() string    { return "mock" }

// deterministicVector produces a normalized vector from text. Shared
// characters contribute to the same positions, so similar texts yield
// similar vectors.
func (m *mockEmbedder) deterministicVector(text string) []float32 {
	vec := make([]float32, m.dims)
	for i, ch := range text {
		idx := (int(ch) + i) % m.dims
		vec[idx] += 1.0
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v * v)
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}
	return vec
}

func sampleChunks() []Chunk {
	return []Chunk{
		{
			ID:      "doc:0",
			Content: "La derivada mide la tasa de cambio instantánea de una función",
			Metadata: ChunkMetadata{DocumentID: "doc", Title: "Calc I", Position: 0},
		},
		{
			ID:      "doc:1",
			Content: "La integral definida calcula el área bajo la curva",
			Metadata: ChunkMetadata{DocumentID: "doc", Title: "Calc I", Position: 1},
		},
		{
			ID:      "doc:2",
			Content: "Los límites describen el comportamiento de una función cerca de un punto",
			Metadata: ChunkMetadata{DocumentID: "doc", Title: "Calc I", Position: 2},
		},
	}
}

func TestChromemIndexAddAndRetrieve(t *testing.T) {
	ctx := context.Background()

	idx, err := NewChromemIndex(&mockEmbedder{dims: 64})
	if err != nil {
		t.Fatalf("NewChromemIndex: %v", err)
	}

	if err := idx.Add(ctx, sampleChunks()); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if idx.Count() != 3 {
		t.Errorf("Count = %d, want 3", idx.Count())
	}

	results, err := idx.Retrieve(ctx, "la derivada de una función", 2)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if r.Metadata.DocumentID != "doc" || r.Metadata.Title != "Calc I" {
			t.Errorf("metadata lost in round trip: %+v", r.Metadata)
		}
	}
}

func TestChromemIndexRetrieveEmpty(t *testing.T) {
	idx, err := NewChromemIndex(&mockEmbedder{dims: 16})
	if err != nil {
		t.Fatalf("NewChromemIndex: %v", err)
	}

	results, err := idx.Retrieve(context.Background(), "anything", 5)
	if err != nil {
		t.Fatalf("Retrieve on empty index: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestChromemIndexLimitClampedToSize(t *testing.T) {
	ctx := context.Background()
	idx, err := NewChromemIndex(&mockEmbedder{dims: 64})
	if err != nil {
		t.Fatalf("NewChromemIndex: %v", err)
	}
	if err := idx.Add(ctx, sampleChunks()); err != nil {
		t.Fatalf("Add: %v", err)
	}

	results, err := idx.Retrieve(ctx, "función", 50)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("expected limit clamped to 3, got %d", len(results))
	}
}

func TestChromemIndexPersistAndReopen(t *testing.T) {
	ctx := context.Background()
	embedder := &mockEmbedder{dims: 64}

	idx, err := NewChromemIndex(embedder)
	if err != nil {
		t.Fatalf("NewChromemIndex: %v", err)
	}
	if err := idx.Add(ctx, sampleChunks()); err != nil {
		t.Fatalf("Add: %v", err)
	}

	path := filepath.Join(t.TempDir(), IndexFileName)
	if err := idx.Persist(ctx, path); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	reopened, err := OpenChromemIndex(path, embedder)
	if err != nil {
		t.Fatalf("OpenChromemIndex: %v", err)
	}
	if reopened.Count() != 3 {
		t.Errorf("Count after reopen = %d, want 3", reopened.Count())
	}

	results, err := reopened.Retrieve(ctx, "área bajo la curva", 1)
	if err != nil {
		t.Fatalf("Retrieve after reopen: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
}

func TestOpenChromemIndexMissingFile(t *testing.T) {
	_, err := OpenChromemIndex(filepath.Join(t.TempDir(), "missing.gob.gz"), &mockEmbedder{dims: 8})
	if err == nil {
		t.Error("expected error opening a missing index file")
	}
}
